// Package glslc drives the shaderc command line compiler to turn GLSL
// source into SPIR-V.
//
// The driver pins the profile the WGSL pipeline expects: a Vulkan 1.2
// target, automatic binding and location assignment and a forced
// "460core" version. Each compilation runs a fresh glslc process on a
// temporary copy of the source.
package glslc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/gogpu/wgslgen"
)

// Compiler compiles one GLSL shader to a SPIR-V binary.
type Compiler interface {
	Compile(ctx context.Context, source string, stage wgslgen.Stage) ([]byte, error)
}

// Options configures the glslc invocation.
type Options struct {
	// Binary is the compiler executable, looked up in PATH when it has no
	// directory part.
	Binary string

	// TargetEnv is passed as --target-env.
	TargetEnv string

	// AutoBindUniforms assigns bindings to uniforms without one.
	AutoBindUniforms bool

	// AutoMapLocations assigns locations to inputs and outputs without one.
	AutoMapLocations bool

	// ForcedVersion overrides the #version of the source, e.g. "460core".
	ForcedVersion string

	// ExtraArgs holds additional arguments in shell syntax.
	ExtraArgs string

	// FileName is the name the source is compiled under. It shows up in
	// diagnostics.
	FileName string

	// EntryPoint is the entry point name. glslc only honors it for HLSL
	// input, so it is passed only when it differs from "main".
	EntryPoint string
}

// DefaultOptions returns the profile used by the build step.
func DefaultOptions() Options {
	return Options{
		Binary:           "glslc",
		TargetEnv:        "vulkan1.2",
		AutoBindUniforms: true,
		AutoMapLocations: true,
		ForcedVersion:    "460core",
		FileName:         "shader.glsl",
		EntryPoint:       "main",
	}
}

// Diagnostic is returned when glslc exits with an error. Output holds what
// the compiler printed on stderr.
type Diagnostic struct {
	Args   []string
	Output string
	Err    error
}

func (d *Diagnostic) Error() string {
	out := strings.TrimRight(d.Output, "\n")
	if out == "" {
		return fmt.Sprintf("failed to run %v: %v", d.Args, d.Err)
	}
	return fmt.Sprintf("%s\nfailed to run %v: %v", out, d.Args, d.Err)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// Driver runs glslc. It implements Compiler.
type Driver struct {
	opts Options
}

var _ Compiler = (*Driver)(nil)

// New returns a driver for opts. Empty fields fall back to DefaultOptions.
func New(opts Options) *Driver {
	def := DefaultOptions()
	if opts.Binary == "" {
		opts.Binary = def.Binary
	}
	if opts.FileName == "" {
		opts.FileName = def.FileName
	}
	if opts.EntryPoint == "" {
		opts.EntryPoint = def.EntryPoint
	}
	return &Driver{opts: opts}
}

// Options returns the driver options after defaults were applied.
func (d *Driver) Options() Options { return d.opts }

// Args returns the compiler arguments for a shader of the given stage
// stored at input. The binary name is not included.
func (d *Driver) Args(stage wgslgen.Stage, input string) ([]string, error) {
	args := []string{"-fshader-stage=" + stage.String()}
	if d.opts.TargetEnv != "" {
		args = append(args, "--target-env="+d.opts.TargetEnv)
	}
	if d.opts.AutoBindUniforms {
		args = append(args, "-fauto-bind-uniforms")
	}
	if d.opts.AutoMapLocations {
		args = append(args, "-fauto-map-locations")
	}
	if d.opts.ForcedVersion != "" {
		args = append(args, "-std="+d.opts.ForcedVersion)
	}
	if d.opts.EntryPoint != "main" {
		args = append(args, "-fentry-point="+d.opts.EntryPoint)
	}
	if d.opts.ExtraArgs != "" {
		extra, err := shellwords.Parse(d.opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("glslc: parse extra arguments %q: %w", d.opts.ExtraArgs, err)
		}
		args = append(args, extra...)
	}
	return append(args, "-o", "-", input), nil
}

// Compile writes source to a temporary file named after Options.FileName,
// runs glslc on it and returns the SPIR-V written to stdout.
func (d *Driver) Compile(ctx context.Context, source string, stage wgslgen.Stage) ([]byte, error) {
	bin, err := exec.LookPath(d.opts.Binary)
	if err != nil {
		return nil, fmt.Errorf("glslc: %w", err)
	}

	dir, err := os.MkdirTemp("", "wgslgen-glslc-")
	if err != nil {
		return nil, fmt.Errorf("glslc: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, d.opts.FileName)
	if err := os.WriteFile(input, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("glslc: %w", err)
	}

	args, err := d.Args(stage, d.opts.FileName)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	wgslgen.Logger().Debug("running glslc", "args", cmd.Args)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("glslc: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &Diagnostic{Args: cmd.Args, Output: stderr.String(), Err: err}
		}
		return nil, fmt.Errorf("glslc: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, &Diagnostic{Args: cmd.Args, Output: stderr.String(), Err: errors.New("no output")}
	}
	return stdout.Bytes(), nil
}
