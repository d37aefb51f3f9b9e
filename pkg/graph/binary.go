package graph

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "RTPLNRRD"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes a road network to path. The file is written to a
// temporary sibling and renamed into place.
func WriteBinary(path string, g *Road) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	w := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	hdr := fileHeader{Version: version, NumNodes: g.NumNodes, NumEdges: g.NumEdges}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sections := []struct {
		name string
		data []byte
	}{
		{"FirstOut", uint32Bytes(g.FirstOut)},
		{"Head", uint32Bytes(g.Head)},
		{"Weight", float64Bytes(g.Weight)},
		{"NodeLat", float64Bytes(g.NodeLat)},
		{"NodeLon", float64Bytes(g.NodeLon)},
	}
	for _, s := range sections {
		if _, err := w.Write(s.data); err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}

	// The checksum trailer is written past the CRC writer.
	if err := binary.Write(f, binary.LittleEndian, w.hash.Sum32()); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary loads a road network written by WriteBinary and validates its
// checksum and CSR invariants.
func ReadBinary(path string) (*Road, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	n, m := int(hdr.NumNodes), int(hdr.NumEdges)
	g := &Road{
		NumNodes: hdr.NumNodes,
		NumEdges: hdr.NumEdges,
		FirstOut: make([]uint32, n+1),
		Head:     make([]uint32, m),
		Weight:   make([]float64, m),
		NodeLat:  make([]float64, n),
		NodeLon:  make([]float64, n),
	}
	sections := []struct {
		name string
		data []byte
	}{
		{"FirstOut", uint32Bytes(g.FirstOut)},
		{"Head", uint32Bytes(g.Head)},
		{"Weight", float64Bytes(g.Weight)},
		{"NodeLat", float64Bytes(g.NodeLat)},
		{"NodeLon", float64Bytes(g.NodeLon)},
	}
	for _, s := range sections {
		if _, err := io.ReadFull(r, s.data); err != nil {
			return nil, fmt.Errorf("read %s: %w", s.name, err)
		}
	}

	expectedCRC := r.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, g.Head, g.NumNodes); err != nil {
		return nil, fmt.Errorf("CSR invalid: %w", err)
	}
	if err := Validate[uint32](g); err != nil {
		return nil, err
	}
	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0] = %d, want 0", firstOut[0])
	}
	if numEdges := firstOut[numNodes]; uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy views of numeric slices for I/O. The file format is
// little-endian, matching every platform this is deployed on.

func uint32Bytes(s []uint32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}

func float64Bytes(s []float64) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
}

type crc32Writer struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash hash.Hash32
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
