package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "src/shaders", cfg.SourceDir)
	assert.Equal(t, "src/shaders/compiled", cfg.OutDir)
	assert.Equal(t, 1, cfg.Jobs)
	assert.False(t, cfg.CreateOutDir)
	assert.True(t, cfg.VerifyOutput)
	assert.False(t, cfg.Reflect)
	assert.Equal(t, "glslc", cfg.Compiler.Binary)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`
source_dir = "shaders"
jobs = 4
reflect = true

[compiler]
extra_args = "-O -DDEBUG=1"
`), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "shaders", cfg.SourceDir)
	assert.Equal(t, "src/shaders/compiled", cfg.OutDir, "missing keys keep defaults")
	assert.Equal(t, 4, cfg.Jobs)
	assert.True(t, cfg.Reflect)
	assert.True(t, cfg.VerifyOutput)
	assert.Equal(t, "glslc", cfg.Compiler.Binary)
	assert.Equal(t, "-O -DDEBUG=1", cfg.Compiler.ExtraArgs)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "source_dir = \"a\"\nsrc = \"b\"\n", "unknown keys"},
		{"unknown table key", "[compiler]\npath = \"glslc\"\n", "unknown keys"},
		{"wrong type", "jobs = \"many\"\n", ""},
		{"syntax", "jobs = \n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode([]byte(tt.data), &cfg)
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.SourceDir = ""
	cfg.Jobs = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_dir is empty")
	assert.Contains(t, err.Error(), "jobs must be at least 1, got 0")
}

func TestMarshalDecodes(t *testing.T) {
	cfg := Default()
	cfg.Jobs = 8
	data, err := cfg.Marshal()
	require.NoError(t, err)

	var back Config
	require.NoError(t, Decode(data, &back))
	assert.Equal(t, cfg, back)
}
