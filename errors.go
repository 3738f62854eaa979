package wgslgen

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/wgslgen/spirv"
)

// ReadError reports a shader source that could not be read or is not UTF-8.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: read: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// CompileError reports a GLSL source rejected by the front-end compiler.
// Err carries the compiler diagnostics.
type CompileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: compile %s shader: %v", e.Path, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// MagicMismatchError reports compiler output that does not start with the
// SPIR-V magic number. The compiler guarantees the magic, so this is an
// internal error.
type MagicMismatchError struct {
	Path string
	Got  uint32
}

func (e *MagicMismatchError) Error() string {
	return fmt.Sprintf("%s: internal error: SPIR-V output starts with %#08x, want %#08x", e.Path, e.Got, spirv.MagicNumber)
}

// Internal reports that the error is a broken invariant rather than bad input.
func (e *MagicMismatchError) Internal() bool { return true }

// ValidationError reports a SPIR-V module that failed to parse or validate.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: failed to validate SPIR-V module: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// EmitError reports a validated module the WGSL writer could not express,
// or WGSL output that failed verification.
type EmitError struct {
	Path string
	Err  error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: emit WGSL: %v", e.Path, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }

// WriteError reports an output file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: write: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UnknownStageError reports an extension that passed the recognized set but
// has no stage mapping.
type UnknownStageError struct {
	Path string
	Ext  string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("%s: internal error: unrecognized shader extension %q", e.Path, e.Ext)
}

// Internal reports that the error is a broken invariant rather than bad input.
func (e *UnknownStageError) Internal() bool { return true }

// IsInternal reports whether err (or an error it wraps) is an internal error.
func IsInternal(err error) bool {
	for err != nil {
		if i, ok := err.(interface{ Internal() bool }); ok && i.Internal() {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// CheckMagic verifies that compiler output begins with the SPIR-V magic
// number in little-endian order.
func CheckMagic(path string, data []byte) error {
	if len(data) < 4 {
		return &MagicMismatchError{Path: path}
	}
	if got := binary.LittleEndian.Uint32(data); got != spirv.MagicNumber {
		return &MagicMismatchError{Path: path, Got: got}
	}
	return nil
}
