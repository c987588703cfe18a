package io

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/alecthomas/units"
	"gopkg.in/yaml.v3"

	"github.com/slok/pcp/internal/model"
)

// DefaultsYAMLRepository loads copy defaults from YAML files.
type DefaultsYAMLRepository struct {
	fs fs.FS
}

// NewDefaultsYAMLRepository creates a new YAML defaults repository.
func NewDefaultsYAMLRepository(filesystem fs.FS) *DefaultsYAMLRepository {
	return &DefaultsYAMLRepository{fs: filesystem}
}

// GetDefaults loads copy defaults from a YAML file and returns a validated
// domain model.
func (r *DefaultsYAMLRepository) GetDefaults(ctx context.Context, path string) (model.CopyDefaults, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.CopyDefaults{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.CopyDefaults{}, ctx.Err()
	}

	var cfg copyDefaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.CopyDefaults{}, fmt.Errorf("parsing YAML: %w", err)
	}

	m, err := cfg.toModel()
	if err != nil {
		return model.CopyDefaults{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// copyDefaults represents the YAML structure for copy defaults.
// Sizes accept base 2 units (e.g. "64MiB", "1MiB").
type copyDefaults struct {
	Slices      int    `yaml:"slices"`
	SliceSize   string `yaml:"slice_size"`
	Concurrency int    `yaml:"concurrency"`
	ChunkSize   string `yaml:"chunk_size"`
	NoHistory   bool   `yaml:"no_history"`
}

func (c copyDefaults) toModel() (model.CopyDefaults, error) {
	if c.Slices < 0 {
		return model.CopyDefaults{}, fmt.Errorf("slices can't be negative")
	}
	if c.Concurrency < 0 {
		return model.CopyDefaults{}, fmt.Errorf("concurrency can't be negative")
	}
	if c.Slices > 0 && c.SliceSize != "" {
		return model.CopyDefaults{}, fmt.Errorf("slices and slice_size are mutually exclusive")
	}

	m := model.CopyDefaults{
		SliceCount:  c.Slices,
		Concurrency: c.Concurrency,
		NoHistory:   c.NoHistory,
	}

	if c.SliceSize != "" {
		size, err := units.ParseBase2Bytes(c.SliceSize)
		if err != nil {
			return model.CopyDefaults{}, fmt.Errorf("invalid slice_size: %w", err)
		}
		m.SliceSize = int64(size)
	}

	if c.ChunkSize != "" {
		size, err := units.ParseBase2Bytes(c.ChunkSize)
		if err != nil {
			return model.CopyDefaults{}, fmt.Errorf("invalid chunk_size: %w", err)
		}
		if size <= 0 {
			return model.CopyDefaults{}, fmt.Errorf("chunk_size must be greater than zero")
		}
		m.ChunkSize = int64(size)
	}

	if m.SliceSize < 0 {
		return model.CopyDefaults{}, fmt.Errorf("slice_size can't be negative")
	}

	return m, nil
}
