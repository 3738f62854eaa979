// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl provides a WGSL (WebGPU Shading Language) backend for naga IR.
//
// The writer consumes a module produced by the SPIR-V front end together with
// the [valid.ModuleInfo] computed for that same module. The info supplies
// expression types and reference counts, which decide where intermediate
// values are bound with let.
//
// # Basic Usage
//
//	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(module)
//	if err != nil {
//	    return err
//	}
//	source, _, err := wgsl.Compile(module, info, wgsl.Options{})
//
// # Layout
//
// Struct member offsets from SPIR-V are reproduced with @size attributes
// where they exceed the natural WGSL layout. Array strides must match the
// natural WGSL stride of their element.
//
// # Reserved Words
//
// Identifiers that collide with WGSL keywords, reserved words or builtin
// functions get an underscore suffix.
package wgsl
