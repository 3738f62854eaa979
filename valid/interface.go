package valid

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

var builtinNames = map[ir.BuiltinValue]string{
	ir.BuiltinPosition:             "position",
	ir.BuiltinVertexIndex:          "vertex_index",
	ir.BuiltinInstanceIndex:        "instance_index",
	ir.BuiltinFrontFacing:          "front_facing",
	ir.BuiltinFragDepth:            "frag_depth",
	ir.BuiltinSampleIndex:          "sample_index",
	ir.BuiltinSampleMask:           "sample_mask",
	ir.BuiltinLocalInvocationID:    "local_invocation_id",
	ir.BuiltinLocalInvocationIndex: "local_invocation_index",
	ir.BuiltinGlobalInvocationID:   "global_invocation_id",
	ir.BuiltinWorkGroupID:          "workgroup_id",
	ir.BuiltinNumWorkGroups:        "num_workgroups",
	ir.BuiltinViewIndex:            "view_index",
	ir.BuiltinPrimitiveIndex:       "primitive_index",
	ir.BuiltinPointSize:            "point_size",
	ir.BuiltinClipDistance:         "clip_distances",
}

func builtinName(b ir.BuiltinValue) string {
	if n, ok := builtinNames[b]; ok {
		return n
	}
	return fmt.Sprintf("builtin(%d)", b)
}

// builtinAllowed reports whether a builtin may appear on the given side of
// a stage's interface.
func builtinAllowed(b ir.BuiltinValue, stage ir.ShaderStage, output bool) bool {
	switch b {
	case ir.BuiltinPosition:
		return (stage == ir.StageVertex && output) || (stage == ir.StageFragment && !output)
	case ir.BuiltinVertexIndex, ir.BuiltinInstanceIndex:
		return stage == ir.StageVertex && !output
	case ir.BuiltinPointSize, ir.BuiltinClipDistance:
		return stage == ir.StageVertex && output
	case ir.BuiltinViewIndex:
		return (stage == ir.StageVertex || stage == ir.StageFragment) && !output
	case ir.BuiltinFrontFacing, ir.BuiltinSampleIndex, ir.BuiltinPrimitiveIndex:
		return stage == ir.StageFragment && !output
	case ir.BuiltinFragDepth:
		return stage == ir.StageFragment && output
	case ir.BuiltinSampleMask:
		return stage == ir.StageFragment
	case ir.BuiltinLocalInvocationID, ir.BuiltinLocalInvocationIndex, ir.BuiltinGlobalInvocationID,
		ir.BuiltinWorkGroupID, ir.BuiltinNumWorkGroups:
		return stage == ir.StageCompute && !output
	}
	return false
}

// ioVar is one bound value of an entry point interface.
type ioVar struct {
	name    string
	ty      ir.TypeHandle
	binding ir.Binding
}

// flatten expands an argument or result into its bound values. A struct
// without a binding contributes its members, each of which must be bound.
func (c *checker) flatten(scope, what string, ty ir.TypeHandle, binding *ir.Binding) []ioVar {
	if binding != nil && *binding != nil {
		return []ioVar{{name: what, ty: ty, binding: *binding}}
	}
	if int(ty) >= len(c.module.Types) {
		return nil
	}
	st, ok := c.module.Types[ty].Inner.(ir.StructType)
	if !ok {
		c.addError(scope, fmt.Sprintf("%s has no binding", what))
		return nil
	}
	out := make([]ioVar, 0, len(st.Members))
	for _, m := range st.Members {
		if m.Binding == nil || *m.Binding == nil {
			c.addError(scope, fmt.Sprintf("%s: member %q has no binding", what, m.Name))
			continue
		}
		out = append(out, ioVar{name: m.Name, ty: m.Type, binding: *m.Binding})
	}
	return out
}

func (c *checker) bindings() {
	for i := range c.module.EntryPoints {
		ep := &c.module.EntryPoints[i]
		scope := entryPointScope(ep.Name)

		var inputs []ioVar
		for j, arg := range ep.Function.Arguments {
			name := arg.Name
			if name == "" {
				name = fmt.Sprintf("argument %d", j)
			}
			inputs = append(inputs, c.flatten(scope, name, arg.Type, arg.Binding)...)
		}
		c.checkInterface(scope, ep.Stage, false, inputs)

		if r := ep.Function.Result; r != nil {
			outputs := c.flatten(scope, "result", r.Type, r.Binding)
			c.checkInterface(scope, ep.Stage, true, outputs)
			if ep.Stage == ir.StageCompute {
				c.addError(scope, "compute entry points cannot return a value")
			}
		}
	}
}

type locationKey struct {
	location uint32
	blendSrc uint32
}

func (c *checker) checkInterface(scope string, stage ir.ShaderStage, output bool, vars []ioVar) {
	side := "input"
	if output {
		side = "output"
	}
	locations := make(map[locationKey]string)
	builtins := make(map[ir.BuiltinValue]bool)
	for _, v := range vars {
		switch b := v.binding.(type) {
		case ir.BuiltinBinding:
			if !builtinAllowed(b.Builtin, stage, output) {
				c.addError(scope, fmt.Sprintf("builtin %s is not a valid %s here", builtinName(b.Builtin), side))
			}
			if builtins[b.Builtin] {
				c.addError(scope, fmt.Sprintf("builtin %s is bound twice", builtinName(b.Builtin)))
			}
			builtins[b.Builtin] = true
		case ir.LocationBinding:
			if stage == ir.StageCompute {
				c.addError(scope, fmt.Sprintf("%q: compute shaders have no user %ss", v.name, side))
				continue
			}
			key := locationKey{location: b.Location}
			if b.BlendSrc != nil {
				key.blendSrc = *b.BlendSrc
			}
			if prev, ok := locations[key]; ok {
				c.addError(scope, fmt.Sprintf("%s location %d is used by both %q and %q", side, b.Location, prev, v.name))
			}
			locations[key] = v.name
			if b.Interpolation != nil && b.Interpolation.Kind != ir.InterpolationFlat && !c.isFloat(v.ty) {
				c.addError(scope, fmt.Sprintf("%q: integer %ss must use flat interpolation", v.name, side))
			}
		}
	}
}

func (c *checker) isFloat(ty ir.TypeHandle) bool {
	if int(ty) >= len(c.module.Types) {
		return false
	}
	switch t := c.module.Types[ty].Inner.(type) {
	case ir.ScalarType:
		return t.Kind == ir.ScalarFloat
	case ir.VectorType:
		return t.Scalar.Kind == ir.ScalarFloat
	}
	return false
}

// require records a diagnostic when cap is missing from the allowed set.
func (c *checker) require(scope string, cap Capabilities, what string) {
	if !c.v.capabilities.Contains(cap) {
		c.addError(scope, fmt.Sprintf("%s requires capability %s", what, cap))
	}
}

func (c *checker) capabilityChecks() {
	for i, t := range c.module.Types {
		c.typeCapabilities(fmt.Sprintf("type %d", i), t.Inner)
	}
	for i := range c.module.GlobalVariables {
		gv := &c.module.GlobalVariables[i]
		if gv.Space == ir.SpacePushConstant {
			c.require(fmt.Sprintf("global %q", gv.Name), CapabilityPushConstant, "push constant storage")
		}
	}
	for i := range c.module.EntryPoints {
		ep := &c.module.EntryPoints[i]
		scope := entryPointScope(ep.Name)
		if ep.EarlyDepthTest != nil {
			c.require(scope, CapabilityEarlyDepthTest, "early depth test")
		}
		var vars []ioVar
		for _, arg := range ep.Function.Arguments {
			vars = append(vars, c.bound(arg.Type, arg.Binding)...)
		}
		if r := ep.Function.Result; r != nil {
			vars = append(vars, c.bound(r.Type, r.Binding)...)
		}
		for _, v := range vars {
			c.bindingCapabilities(scope, v.binding)
		}
	}
}

// bound is flatten without diagnostics.
func (c *checker) bound(ty ir.TypeHandle, binding *ir.Binding) []ioVar {
	if binding != nil && *binding != nil {
		return []ioVar{{ty: ty, binding: *binding}}
	}
	if int(ty) >= len(c.module.Types) {
		return nil
	}
	st, ok := c.module.Types[ty].Inner.(ir.StructType)
	if !ok {
		return nil
	}
	var out []ioVar
	for _, m := range st.Members {
		if m.Binding != nil && *m.Binding != nil {
			out = append(out, ioVar{name: m.Name, ty: m.Type, binding: *m.Binding})
		}
	}
	return out
}

func (c *checker) bindingCapabilities(scope string, binding ir.Binding) {
	switch b := binding.(type) {
	case ir.BuiltinBinding:
		switch b.Builtin {
		case ir.BuiltinClipDistance:
			c.require(scope, CapabilityClipDistance, "builtin clip_distances")
		case ir.BuiltinPrimitiveIndex:
			c.require(scope, CapabilityPrimitiveIndex, "builtin primitive_index")
		case ir.BuiltinViewIndex:
			c.require(scope, CapabilityMultiview, "builtin view_index")
		case ir.BuiltinSampleIndex:
			c.require(scope, CapabilityMultisampledShading, "builtin sample_index")
		}
	case ir.LocationBinding:
		if b.Interpolation != nil && b.Interpolation.Sampling == ir.SamplingSample {
			c.require(scope, CapabilityMultisampledShading, fmt.Sprintf("per-sample interpolation at location %d", b.Location))
		}
		if b.BlendSrc != nil {
			c.require(scope, CapabilityDualSourceBlending, fmt.Sprintf("blend_src at location %d", b.Location))
		}
	}
}

func (c *checker) scalarCapabilities(scope string, s ir.ScalarType) {
	switch {
	case s.Kind == ir.ScalarFloat && s.Width == 8:
		c.require(scope, CapabilityFloat64, "f64")
	case s.Kind == ir.ScalarFloat && s.Width == 2:
		c.require(scope, CapabilityShaderFloat16, "f16")
	case (s.Kind == ir.ScalarSint || s.Kind == ir.ScalarUint) && s.Width == 8:
		c.require(scope, CapabilityShaderInt64, "64-bit integers")
	}
}

func (c *checker) typeCapabilities(scope string, inner ir.TypeInner) {
	switch t := inner.(type) {
	case ir.ScalarType:
		c.scalarCapabilities(scope, t)
	case ir.VectorType:
		c.scalarCapabilities(scope, t.Scalar)
	case ir.MatrixType:
		c.scalarCapabilities(scope, t.Scalar)
	case ir.AtomicType:
		c.scalarCapabilities(scope, t.Scalar)
	case ir.ImageType:
		if t.Dim == ir.DimCube && t.Arrayed {
			c.require(scope, CapabilityCubeArrayTextures, "cube array textures")
		}
	}
}
