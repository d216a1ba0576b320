package spatial

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DefaultCellSize is used when a configured cell size is not a positive number.
const DefaultCellSize = 10000.0

// Config describes one index. It can be written in JSON or YAML.
type Config struct {
	CellSize float64  `json:"cell_size,omitempty" yaml:"cell_size,omitempty"`
	Types    []string `json:"types" yaml:"types"`
}

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode spatial config: %w", err)
	}
	return c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode spatial config: %w", err)
	}
	return c, nil
}

// WithDefaults returns a copy with the cell size filled in.
func (c Config) WithDefaults() Config {
	c.CellSize = normalizeCellSize(c.CellSize)
	return c
}

// Validate checks that the type list builds a registry.
func (c Config) Validate() error {
	_, err := NewTypeRegistry(c.Types...)
	return err
}

func normalizeCellSize(size float64) float64 {
	if !finite(size) || size <= 0 {
		return DefaultCellSize
	}
	return size
}
