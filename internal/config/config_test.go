package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sine", cfg.Field)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.False(t, cfg.Faces)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mesh:
  order: 2
  elements: 3
field: wave
faces: true
postprocessors: [norm, components]
output:
  format: yaml
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	want := DefaultConfig()
	want.Mesh.Order = 2
	want.Mesh.Elements = 3
	want.Field = "wave"
	want.Faces = true
	want.Postprocessors = []string{"norm", "components"}
	want.Output.Format = "yaml"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Workers = 3
	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"order", func(c *Config) { c.Mesh.Order = 0 }, "mesh order"},
		{"elements", func(c *Config) { c.Mesh.Elements = 0 }, "at least one element"},
		{"interval", func(c *Config) { c.Mesh.XMax = c.Mesh.XMin }, "is empty"},
		{"workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"postprocessors", func(c *Config) { c.Postprocessors = nil }, "no postprocessors"},
		{"field", func(c *Config) { c.Field = "tsunami" }, "unknown field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mesh: [1, 2"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse")
}
