// Package valid validates naga IR modules produced by the SPIR-V front end
// and computes the per-function information the WGSL writer relies on.
//
//	v := valid.New(valid.FlagsAll, valid.DefaultCapabilities)
//	info, err := v.Validate(module)
//	if err != nil {
//		return fmt.Errorf("failed to validate SPIR-V module: %w", err)
//	}
//
// The returned [ModuleInfo] records expression types, reference counts and
// global usage. It stays tied to the module it was computed from.
package valid
