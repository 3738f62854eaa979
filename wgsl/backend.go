// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/valid"
)

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagExplicitTypes writes the type of every let binding.
	WriterFlagExplicitTypes WriterFlags = 1 << iota
)

// Options configures WGSL code generation.
type Options struct {
	// Flags control output formatting.
	Flags WriterFlags
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// EntryPointNames maps IR entry point names to the names written.
	EntryPointNames map[string]string

	// Enables lists the enable directives written at the top of the output.
	Enables []string
}

// ErrInfoMismatch is returned when the validation info passed to Compile was
// computed for a different module.
var ErrInfoMismatch = errors.New("validation info belongs to a different module")

// Compile generates WGSL source code from a validated IR module.
// Returns the WGSL source as a string, translation info, or an error.
func Compile(module *ir.Module, info *valid.ModuleInfo, options Options) (string, TranslationInfo, error) {
	if module == nil {
		return "", TranslationInfo{}, errors.New("wgsl: module is nil")
	}
	if info == nil || info.Module() != module {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", ErrInfoMismatch)
	}

	w := newWriter(module, info, &options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("wgsl: %w", err)
	}

	return w.String(), TranslationInfo{
		EntryPointNames: w.entryPointNames,
		Enables:         w.enables,
	}, nil
}
