package spirv

import (
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/layout"
)

// ioSlot is one pipeline input or output of an entry point. Struct blocks
// contribute one slot per member.
type ioSlot struct {
	v      *spvVar
	name   string
	typeID uint32
	dec    decoration
	path   []uint32
}

var builtinMap = map[BuiltIn]ir.BuiltinValue{
	BuiltInPosition:             ir.BuiltinPosition,
	BuiltInFragCoord:            ir.BuiltinPosition,
	BuiltInPointSize:            ir.BuiltinPointSize,
	BuiltInClipDistance:         ir.BuiltinClipDistance,
	BuiltInVertexIndex:          ir.BuiltinVertexIndex,
	BuiltInInstanceIndex:        ir.BuiltinInstanceIndex,
	BuiltInFrontFacing:          ir.BuiltinFrontFacing,
	BuiltInFragDepth:            ir.BuiltinFragDepth,
	BuiltInSampleID:             ir.BuiltinSampleIndex,
	BuiltInPrimitiveID:          ir.BuiltinPrimitiveIndex,
	BuiltInViewIndex:            ir.BuiltinViewIndex,
	BuiltInLocalInvocationID:    ir.BuiltinLocalInvocationID,
	BuiltInLocalInvocationIndex: ir.BuiltinLocalInvocationIndex,
	BuiltInGlobalInvocationID:   ir.BuiltinGlobalInvocationID,
	BuiltInWorkgroupID:          ir.BuiltinWorkGroupID,
	BuiltInNumWorkgroups:        ir.BuiltinNumWorkGroups,
}

// indexBuiltins are integer builtins declared as int in GLSL and u32 in WGSL.
var indexBuiltins = map[BuiltIn]bool{
	BuiltInVertexIndex:   true,
	BuiltInInstanceIndex: true,
	BuiltInSampleID:      true,
	BuiltInPrimitiveID:   true,
	BuiltInViewIndex:     true,
}

func stageOf(model ExecutionModel) (ir.ShaderStage, error) {
	switch model {
	case ExecutionModelVertex:
		return ir.StageVertex, nil
	case ExecutionModelFragment:
		return ir.StageFragment, nil
	case ExecutionModelGLCompute:
		return ir.StageCompute, nil
	}
	return 0, parseErrorf(-1, "unsupported execution model %s", model)
}

// ioSlots flattens an interface variable into its slots.
func (p *parser) ioSlots(v *spvVar, output bool) ([]ioSlot, error) {
	pt, err := p.pointee(v.typeID)
	if err != nil {
		return nil, err
	}
	vdec := *p.decorationOf(v.id)
	if pt.kind != kindStruct || vdec.builtin != nil {
		return []ioSlot{{v: v, name: p.names[v.id], typeID: pt.id, dec: vdec}}, nil
	}

	perVertex := p.isPerVertexBlock(pt)
	var slots []ioSlot
	for i, m := range pt.members {
		idx := uint32(i)
		mdec := *p.memberDecorationOf(pt.id, idx)
		if perVertex {
			keep := p.usedMembers[memberKey{pt.id, idx}]
			if output && *mdec.builtin == BuiltInPosition {
				keep = true
			}
			if !keep {
				continue
			}
		} else if mdec.location == nil {
			if vdec.location == nil {
				return nil, parseErrorf(-1, "interface block %q: member %d has no location", p.names[v.id], i)
			}
			loc := *vdec.location + idx
			mdec.location = &loc
		}
		mdec.flat = mdec.flat || vdec.flat
		mdec.noPerspective = mdec.noPerspective || vdec.noPerspective
		mdec.centroid = mdec.centroid || vdec.centroid
		mdec.sample = mdec.sample || vdec.sample
		mdec.invariant = mdec.invariant || vdec.invariant
		slots = append(slots, ioSlot{
			v:      v,
			name:   p.memberNames[memberKey{pt.id, idx}],
			typeID: m,
			dec:    mdec,
			path:   []uint32{idx},
		})
	}
	return slots, nil
}

// ioBinding builds the IR binding of a slot.
func (p *parser) ioBinding(s ioSlot, stage ir.ShaderStage, output bool) (ir.Binding, error) {
	if s.dec.builtin != nil {
		b := *s.dec.builtin
		switch b {
		case BuiltInSampleMask, BuiltInCullDistance, BuiltInPointCoord:
			return nil, parseErrorf(-1, "builtin %s is not supported", b)
		}
		value, ok := builtinMap[b]
		if !ok {
			return nil, parseErrorf(-1, "builtin %s is not supported", b)
		}
		return ir.BuiltinBinding{Builtin: value, Invariant: s.dec.invariant && value == ir.BuiltinPosition}, nil
	}
	if s.dec.location == nil {
		return nil, parseErrorf(-1, "interface variable %q has no location", s.name)
	}
	lb := ir.LocationBinding{Location: *s.dec.location}
	if s.dec.index != nil && *s.dec.index > 0 {
		idx := *s.dec.index
		lb.BlendSrc = &idx
	}

	// Interpolation only applies between the vertex and fragment stages.
	if (stage == ir.StageVertex && output) || (stage == ir.StageFragment && !output) {
		interp := &ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCenter}
		if sc, ok := p.scalarOf(s.typeID); ok && sc.Kind != ir.ScalarFloat {
			interp.Kind = ir.InterpolationFlat
		}
		switch {
		case s.dec.flat:
			interp.Kind = ir.InterpolationFlat
		case s.dec.noPerspective:
			interp.Kind = ir.InterpolationLinear
		}
		switch {
		case s.dec.centroid:
			interp.Sampling = ir.SamplingCentroid
		case s.dec.sample:
			interp.Sampling = ir.SamplingSample
		}
		lb.Interpolation = interp
	}
	return lb, nil
}

// lowerEntryPoint builds the IR entry point wrapping a SPIR-V entry
// function: it copies the pipeline inputs into their private globals, calls
// the body and returns the outputs.
func (p *parser) lowerEntryPoint(ep *entryPointDecl) error {
	sf, ok := p.funcByID[ep.function]
	if !ok {
		return parseErrorf(-1, "entry point %q: unknown function %%%d", ep.name, ep.function)
	}
	stage, err := stageOf(ep.model)
	if err != nil {
		return err
	}

	fn := ir.Function{Name: ep.name}
	e := &emitter{fn: &fn, block: (*ir.Block)(&fn.Body)}

	var inputs, outputs []ioSlot
	for _, id := range ep.interfaces {
		v, ok := p.vars[id]
		if !ok {
			continue
		}
		switch v.class {
		case StorageClassInput:
			slots, err := p.ioSlots(v, false)
			if err != nil {
				return err
			}
			inputs = append(inputs, slots...)
		case StorageClassOutput:
			slots, err := p.ioSlots(v, true)
			if err != nil {
				return err
			}
			outputs = append(outputs, slots...)
		}
	}

	for i, s := range inputs {
		binding, err := p.ioBinding(s, stage, false)
		if err != nil {
			return fmt.Errorf("entry point %q: %w", ep.name, err)
		}
		ty, err := p.irType(s.typeID)
		if err != nil {
			return err
		}
		convert := false
		if s.dec.builtin != nil && indexBuiltins[*s.dec.builtin] {
			if sc, ok := p.scalarOf(s.typeID); ok && sc.Kind == ir.ScalarSint {
				ty = p.addType("", ir.ScalarType{Kind: ir.ScalarUint, Width: 4})
				convert = true
			}
		}
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{Name: s.name, Type: ty, Binding: &binding})
		val := e.add(ir.ExprFunctionArgument{Index: uint32(i)})
		if convert {
			val = e.add(ir.ExprAs{Expr: val, Kind: ir.ScalarSint, Convert: width(4)})
		}
		ptr := e.add(ir.ExprGlobalVariable{Variable: s.v.handle})
		for _, idx := range s.path {
			ptr = e.add(ir.ExprAccessIndex{Base: ptr, Index: idx})
		}
		e.push(ir.StmtStore{Pointer: ptr, Value: val})
	}

	e.push(ir.StmtCall{Function: sf.handle})

	if len(outputs) == 0 {
		e.push(ir.StmtReturn{})
		return p.addEntryPoint(ep, stage, fn)
	}

	members := make([]ir.StructMember, 0, len(outputs))
	values := make([]ir.ExpressionHandle, 0, len(outputs))
	used := make(map[string]bool)
	for i, s := range outputs {
		binding, err := p.ioBinding(s, stage, true)
		if err != nil {
			return fmt.Errorf("entry point %q: %w", ep.name, err)
		}
		ty, err := p.irType(s.typeID)
		if err != nil {
			return err
		}
		name := s.name
		if name == "" {
			name = fmt.Sprintf("member_%d", i)
		}
		for base, n := name, 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		members = append(members, ir.StructMember{Name: name, Type: ty, Binding: &binding})

		ptr := e.add(ir.ExprGlobalVariable{Variable: s.v.handle})
		for _, idx := range s.path {
			ptr = e.add(ir.ExprAccessIndex{Base: ptr, Index: idx})
		}
		if bb, ok := binding.(ir.BuiltinBinding); ok && bb.Builtin == ir.BuiltinPosition &&
			stage == ir.StageVertex && p.opts.AdjustCoordinateSpace {
			y := e.add(ir.ExprAccessIndex{Base: ptr, Index: 1})
			loaded := e.add(ir.ExprLoad{Pointer: y})
			neg := e.add(ir.ExprUnary{Op: ir.UnaryNegate, Expr: loaded})
			e.push(ir.StmtStore{Pointer: y, Value: neg})
			ptr = e.add(ir.ExprGlobalVariable{Variable: s.v.handle})
			for _, idx := range s.path {
				ptr = e.add(ir.ExprAccessIndex{Base: ptr, Index: idx})
			}
		}
		values = append(values, e.add(ir.ExprLoad{Pointer: ptr}))
	}
	layout.NaturalOffsets(p.module, members)
	name := "VertexOutput"
	if stage == ir.StageFragment {
		name = "FragmentOutput"
	}
	result := p.addType(name, ir.StructType{Members: members, Span: layout.StructSpan(p.module, members)})
	fn.Result = &ir.FunctionResult{Type: result}
	out := e.add(ir.ExprCompose{Type: result, Components: values})
	e.push(ir.StmtReturn{Value: &out})
	return p.addEntryPoint(ep, stage, fn)
}

func (p *parser) addEntryPoint(ep *entryPointDecl, stage ir.ShaderStage, fn ir.Function) error {
	entry := ir.EntryPoint{Name: ep.name, Stage: stage, Function: fn}
	if args, ok := ep.modes[ExecutionModeLocalSize]; ok {
		for i := 0; i < 3 && i < len(args); i++ {
			entry.Workgroup[i] = args[i]
		}
	}
	if stage == ir.StageCompute && entry.Workgroup[0] == 0 {
		return parseErrorf(-1, "compute entry point %q has no LocalSize", ep.name)
	}
	if stage == ir.StageFragment {
		switch {
		case has(ep.modes, ExecutionModeEarlyFragmentTests), has(ep.modes, ExecutionModeDepthUnchanged):
			entry.EarlyDepthTest = &ir.EarlyDepthTest{Conservative: ir.ConservativeDepthUnchanged}
		case has(ep.modes, ExecutionModeDepthGreater):
			entry.EarlyDepthTest = &ir.EarlyDepthTest{Conservative: ir.ConservativeDepthGreaterEqual}
		case has(ep.modes, ExecutionModeDepthLess):
			entry.EarlyDepthTest = &ir.EarlyDepthTest{Conservative: ir.ConservativeDepthLessEqual}
		}
	}
	p.module.EntryPoints = append(p.module.EntryPoints, entry)
	return nil
}

func has(modes map[ExecutionMode][]uint32, m ExecutionMode) bool {
	_, ok := modes[m]
	return ok
}
