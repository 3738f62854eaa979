// Package config loads the wgslgen.toml build configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "wgslgen.toml"

// Config is the build configuration. Keys missing from the file keep their
// defaults.
type Config struct {
	SourceDir    string   `toml:"source_dir"`
	OutDir       string   `toml:"out_dir"`
	Jobs         int      `toml:"jobs"`
	CreateOutDir bool     `toml:"create_out_dir"`
	VerifyOutput bool     `toml:"verify_output"`
	Reflect      bool     `toml:"reflect"`
	Compiler     Compiler `toml:"compiler"`
}

// Compiler configures the glslc invocation.
type Compiler struct {
	Binary    string `toml:"binary"`
	ExtraArgs string `toml:"extra_args"`
}

// Default returns the configuration of the original build step: shaders in
// src/shaders, outputs in src/shaders/compiled, one file at a time.
func Default() Config {
	return Config{
		SourceDir:    "src/shaders",
		OutDir:       "src/shaders/compiled",
		Jobs:         1,
		VerifyOutput: true,
		Compiler: Compiler{
			Binary: "glslc",
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults unless mustExist is set.
func Load(path string, mustExist bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes TOML into cfg. Unknown keys are an error.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return err
	}
	return nil
}

// Validate reports settings the translator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.SourceDir == "" {
		errs = append(errs, errors.New("source_dir is empty"))
	}
	if c.OutDir == "" {
		errs = append(errs, errors.New("out_dir is empty"))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.Compiler.Binary == "" {
		errs = append(errs, errors.New("compiler.binary is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
