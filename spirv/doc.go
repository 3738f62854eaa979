// Package spirv reads SPIR-V binaries and lowers them to naga IR.
//
// SPIR-V is the intermediate language produced by the GLSL front end
// (glslc). This package decodes the binary, rebuilds structured control
// flow from the block graph and produces an [ir.Module] that the
// validator and the WGSL writer consume.
//
// # SPIR-V to IR Front End
//
//	module, err := spirv.Parse(words, spirv.Options{
//		AdjustCoordinateSpace: false,
//		StrictCapabilities:    false,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Each SPIR-V entry point becomes two IR functions: the original body as a
// regular function (main becomes main_1) and a wrapper entry point that
// receives the pipeline inputs as bound arguments, stores them into
// private globals, calls the body and returns the outputs as a struct.
//
// The front end currently supports:
//   - Vertex, fragment and compute execution models
//   - Scalar, vector, matrix, array, struct, image and sampler types
//   - Uniform, storage, push constant, workgroup and private variables
//   - Structured selection, loops (including continuing blocks) and switch
//   - GLSL.std.450 extended instructions
//   - Texture sampling, fetches and queries
//
// # Binary Builder
//
// ModuleBuilder assembles SPIR-V binaries programmatically. It is used to
// construct test fixtures:
//
//	b := spirv.NewModuleBuilder(spirv.Version1_0)
//	b.AddCapability(spirv.CapabilityShader)
//	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//	// ... types, variables, functions
//	binary := b.Build()
//
// # Disassembly
//
// Disassemble renders a binary in the textual .spvasm form used by
// cmd/spvdis.
package spirv
