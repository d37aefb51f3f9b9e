// Package config loads route planner settings from YAML or JSON files.
// Fields absent from the file keep their defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string such as "5s" in config
// files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the full server configuration.
type Config struct {
	Server  Server  `yaml:"server" json:"server"`
	Graph   Graph   `yaml:"graph" json:"graph"`
	Routing Routing `yaml:"routing" json:"routing"`
}

// Server holds HTTP settings.
type Server struct {
	Addr           string   `yaml:"addr" json:"addr"`
	ReadTimeout    Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   Duration `yaml:"write_timeout" json:"write_timeout"`
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxConcurrent  int      `yaml:"max_concurrent" json:"max_concurrent"`
	CORSOrigin     string   `yaml:"cors_origin" json:"cors_origin"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// Graph says where the road network comes from. Input, when set, is an
// .osm.pbf extract parsed at startup instead of loading the binary at Path.
type Graph struct {
	Path  string `yaml:"path" json:"path"`
	Input string `yaml:"input" json:"input"`
}

// Routing holds query settings.
type Routing struct {
	MaxSnapMeters float64 `yaml:"max_snap_meters" json:"max_snap_meters"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			ReadTimeout:    Duration(5 * time.Second),
			WriteTimeout:   Duration(5 * time.Second),
			RequestTimeout: Duration(5 * time.Second),
			MaxConcurrent:  runtime.NumCPU() * 2,
			MaxBodyBytes:   1024,
		},
		Graph: Graph{
			Path: "graph.bin",
		},
		Routing: Routing{
			MaxSnapMeters: 500,
		},
	}
}

// FromFile loads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data over the defaults. Unknown keys are rejected.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, cfg.Validate()
}

// FromJSON parses JSON data over the defaults. Unknown keys are rejected.
func FromJSON(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	if c.Server.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Graph.Path == "" && c.Graph.Input == "" {
		errs = append(errs, errors.New("one of graph.path or graph.input is required"))
	}
	if c.Routing.MaxSnapMeters <= 0 {
		errs = append(errs, fmt.Errorf("routing.max_snap_meters must be positive, got %v", c.Routing.MaxSnapMeters))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
