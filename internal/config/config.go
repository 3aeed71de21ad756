package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOrder    = 4
	DefaultElements = 16
	DefaultXMin     = 0.0
	DefaultXMax     = 1.0
)

// Fields lists the analytic fields a run can sample
var Fields = []string{"sine", "poly", "wave"}

type Config struct {
	Mesh           MeshConfig   `yaml:"mesh"`
	Field          string       `yaml:"field"`
	Faces          bool         `yaml:"faces"`
	Workers        int          `yaml:"workers"`
	Postprocessors []string     `yaml:"postprocessors"`
	Output         OutputConfig `yaml:"output"`
}

type MeshConfig struct {
	Order    int     `yaml:"order"`
	Elements int     `yaml:"elements"`
	XMin     float64 `yaml:"xmin"`
	XMax     float64 `yaml:"xmax"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"` // empty writes to stdout
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{
			Order:    DefaultOrder,
			Elements: DefaultElements,
			XMin:     DefaultXMin,
			XMax:     DefaultXMax,
		},
		Field:          "sine",
		Postprocessors: []string{"magnitude", "grad_magnitude"},
		Output:         OutputConfig{Format: "csv"},
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Mesh.Order < 1:
		return fmt.Errorf("mesh order must be >= 1, got %d", c.Mesh.Order)
	case c.Mesh.Elements < 1:
		return fmt.Errorf("mesh needs at least one element, got %d", c.Mesh.Elements)
	case c.Mesh.XMax <= c.Mesh.XMin:
		return fmt.Errorf("mesh interval [%g, %g] is empty", c.Mesh.XMin, c.Mesh.XMax)
	case c.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	case len(c.Postprocessors) == 0:
		return fmt.Errorf("no postprocessors configured")
	}
	for _, f := range Fields {
		if f == c.Field {
			return nil
		}
	}
	return fmt.Errorf("unknown field %q, want one of %v", c.Field, Fields)
}
