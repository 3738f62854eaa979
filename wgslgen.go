// Package wgslgen translates GLSL vertex and fragment shaders to WGSL at
// build time.
//
// A shader goes through three stages:
//   - front-end compile: GLSL text to SPIR-V through glslc (package glslc)
//   - parse and validate: SPIR-V to naga IR (packages spirv and valid)
//   - back-end emit: IR to WGSL text (package wgsl)
//
// This package holds the stage type, the error taxonomy shared by every
// stage and [Translate], which runs the last two stages for one module.
// Package translator drives whole directories.
//
// Example usage:
//
//	spv, err := glslc.New(glslc.DefaultOptions()).Compile(ctx, source, wgslgen.StageVertex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := wgslgen.Translate("shader.vert", spv, wgslgen.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.WGSL)
package wgslgen

import (
	"fmt"
	"time"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/spirv"
	"github.com/gogpu/wgslgen/valid"
	"github.com/gogpu/wgslgen/wgsl"
)

// Options configures the SPIR-V to WGSL stages.
type Options struct {
	// Front configures the SPIR-V front end.
	Front spirv.Options

	// Flags selects the validation passes.
	Flags valid.ValidationFlags

	// Capabilities is the set of optional features the output may use.
	Capabilities valid.Capabilities

	// Writer configures the WGSL writer.
	Writer wgsl.Options

	// Verify re-parses the produced WGSL with naga's WGSL front end.
	Verify bool
}

// DefaultOptions returns the fixed profile of the build step: no coordinate
// space adjustment, lenient capabilities, every validation pass, the
// default capability mask and verified output.
func DefaultOptions() Options {
	return Options{
		Front:        spirv.Options{AdjustCoordinateSpace: false, StrictCapabilities: false},
		Flags:        valid.FlagsAll,
		Capabilities: valid.DefaultCapabilities,
		Writer:       wgsl.Options{Flags: wgsl.WriterFlagNone},
		Verify:       true,
	}
}

// Result is the outcome of translating one SPIR-V module.
type Result struct {
	// WGSL is the shader text.
	WGSL string

	// Module is the IR the text was written from.
	Module *ir.Module

	// Info is the validation info of Module.
	Info *valid.ModuleInfo

	// EntryPoints maps IR entry point names to their WGSL names.
	EntryPoints map[string]string
}

// Translate parses and validates a SPIR-V binary and writes it as WGSL.
// Parse and validation failures are a *ValidationError, writer and
// verification failures an *EmitError. path only labels errors.
func Translate(path string, data []byte, opts Options) (*Result, error) {
	log := Logger().With("path", path)

	start := time.Now()
	module, err := spirv.Parse(data, opts.Front)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	info, err := valid.New(opts.Flags, opts.Capabilities).Validate(module)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	log.Debug("validated SPIR-V module", "elapsed", time.Since(start))

	start = time.Now()
	source, ti, err := wgsl.Compile(module, info, opts.Writer)
	if err != nil {
		return nil, &EmitError{Path: path, Err: err}
	}
	if opts.Verify {
		if err := Verify(source); err != nil {
			return nil, &EmitError{Path: path, Err: err}
		}
	}
	log.Debug("wrote WGSL", "elapsed", time.Since(start), "bytes", len(source))

	return &Result{
		WGSL:        source,
		Module:      module,
		Info:        info,
		EntryPoints: ti.EntryPointNames,
	}, nil
}

// Verify checks that source is valid WGSL by parsing and lowering it with
// naga's WGSL front end.
func Verify(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if _, err := naga.LowerWithSource(ast, source); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return nil
}
