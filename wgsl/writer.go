// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/layout"
	"github.com/gogpu/wgslgen/valid"
)

// Writer generates WGSL source code from IR.
type Writer struct {
	module  *ir.Module
	info    *valid.ModuleInfo
	options *Options

	out    strings.Builder
	indent int

	// Naming
	names           map[nameKey]string
	namer           *namer
	entryPointNames map[string]string
	enables         []string

	// Current function context
	currentFunction  *ir.Function
	currentInfo      *valid.FunctionInfo
	currentEntry     int // entry point index, or -1 inside a regular function
	currentHandle    ir.FunctionHandle
	namedExpressions map[ir.ExpressionHandle]string
}

// nameKey identifies a named IR entity.
type nameKey struct {
	kind    nameKeyKind
	handle1 uint32
	handle2 uint32
}

type nameKeyKind uint8

const (
	nameKeyType nameKeyKind = iota
	nameKeyStructMember
	nameKeyConstant
	nameKeyGlobalVariable
	nameKeyFunction
	nameKeyFunctionArgument
	nameKeyFunctionLocal
	nameKeyEntryPoint
	nameKeyEntryPointArgument
	nameKeyEntryPointLocal
)

// namer hands out unique identifiers. Clashes get a numeric suffix counted
// per base name.
type namer struct {
	used   map[string]struct{}
	counts map[string]int
}

func newNamer() *namer {
	return &namer{
		used:   make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

func (n *namer) call(name, fallback string) string {
	base := sanitize(name, fallback)
	if _, taken := n.used[base]; !taken {
		n.used[base] = struct{}{}
		return base
	}
	for {
		n.counts[base]++
		candidate := fmt.Sprintf("%s_%d", base, n.counts[base])
		if _, taken := n.used[candidate]; !taken {
			n.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func newWriter(module *ir.Module, info *valid.ModuleInfo, options *Options) *Writer {
	return &Writer{
		module:          module,
		info:            info,
		options:         options,
		names:           make(map[nameKey]string),
		namer:           newNamer(),
		entryPointNames: make(map[string]string),
		currentEntry:    -1,
	}
}

// String returns the generated source. The output always ends with exactly
// one newline.
func (w *Writer) String() string {
	return strings.TrimRight(w.out.String(), "\n") + "\n"
}

func (w *Writer) writeModule() error {
	if err := w.checkModule(); err != nil {
		return err
	}
	w.registerNames()

	if len(w.enables) > 0 {
		for _, e := range w.enables {
			w.writeLine("enable %s;", e)
		}
		w.out.WriteString("\n")
	}

	if err := w.writeTypes(); err != nil {
		return err
	}
	if err := w.writeConstants(); err != nil {
		return err
	}
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}
	if err := w.writeFunctions(); err != nil {
		return err
	}
	return w.writeEntryPoints()
}

// checkModule rejects IR that has no WGSL rendition and collects the enable
// directives the output needs.
func (w *Writer) checkModule() error {
	needF16 := false
	for i, t := range w.module.Types {
		var scalars []ir.ScalarType
		switch inner := t.Inner.(type) {
		case ir.ScalarType:
			scalars = append(scalars, inner)
		case ir.VectorType:
			scalars = append(scalars, inner.Scalar)
		case ir.MatrixType:
			scalars = append(scalars, inner.Scalar)
		case ir.AtomicType:
			scalars = append(scalars, inner.Scalar)
		case ir.ArrayType:
			natural := layout.ArrayStride(w.module, inner.Base)
			if inner.Stride != 0 && inner.Stride != natural {
				return fmt.Errorf("type %d: array stride %d differs from the natural WGSL stride %d", i, inner.Stride, natural)
			}
		}
		for _, s := range scalars {
			if s.Width == 8 {
				return fmt.Errorf("type %d: 64-bit %s is not supported", i, scalarKindName(s.Kind))
			}
			if s.Kind == ir.ScalarFloat && s.Width == 2 {
				needF16 = true
			}
		}
	}
	if needF16 {
		w.enables = append(w.enables, "f16")
	}

	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		var bindings []*ir.Binding
		for _, arg := range ep.Function.Arguments {
			bindings = append(bindings, arg.Binding)
		}
		if r := ep.Function.Result; r != nil {
			bindings = append(bindings, r.Binding)
			if st, ok := w.module.Types[r.Type].Inner.(ir.StructType); ok {
				for _, m := range st.Members {
					bindings = append(bindings, m.Binding)
				}
			}
		}
		for _, b := range bindings {
			if b == nil {
				continue
			}
			if bb, ok := (*b).(ir.BuiltinBinding); ok && bb.Builtin == ir.BuiltinPointSize {
				return fmt.Errorf("entry point %q: point size output is not supported", ep.Name)
			}
		}
	}
	return nil
}

func scalarKindName(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarSint:
		return "signed integers"
	case ir.ScalarUint:
		return "unsigned integers"
	case ir.ScalarFloat:
		return "floats"
	}
	return "scalars"
}

// registerNames assigns identifiers in a fixed order so that the output is
// deterministic: types, entry points, functions, globals, constants.
func (w *Writer) registerNames() {
	for h, t := range w.module.Types {
		st, ok := t.Inner.(ir.StructType)
		if !ok {
			continue
		}
		w.names[nameKey{kind: nameKeyType, handle1: uint32(h)}] = w.namer.call(t.Name, "type")
		members := newNamer()
		for i, m := range st.Members {
			fallback := fmt.Sprintf("member_%d", i)
			w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(h), handle2: uint32(i)}] = members.call(m.Name, fallback)
		}
	}

	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		name := w.namer.call(ep.Name, "main")
		w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(i)}] = name
		w.entryPointNames[ep.Name] = name
		for j, arg := range ep.Function.Arguments {
			w.names[nameKey{kind: nameKeyEntryPointArgument, handle1: uint32(i), handle2: uint32(j)}] = w.namer.call(arg.Name, "param")
		}
		for j, local := range ep.Function.LocalVars {
			w.names[nameKey{kind: nameKeyEntryPointLocal, handle1: uint32(i), handle2: uint32(j)}] = w.namer.call(local.Name, "local")
		}
	}

	for h := range w.module.Functions {
		fn := &w.module.Functions[h]
		w.names[nameKey{kind: nameKeyFunction, handle1: uint32(h)}] = w.namer.call(fn.Name, "function")
		for j, arg := range fn.Arguments {
			w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(h), handle2: uint32(j)}] = w.namer.call(arg.Name, "param")
		}
		for j, local := range fn.LocalVars {
			w.names[nameKey{kind: nameKeyFunctionLocal, handle1: uint32(h), handle2: uint32(j)}] = w.namer.call(local.Name, "local")
		}
	}

	for h := range w.module.GlobalVariables {
		w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(h)}] = w.namer.call(w.module.GlobalVariables[h].Name, "global")
	}

	// Unnamed constants are written inline and need no identifier.
	for h := range w.module.Constants {
		c := &w.module.Constants[h]
		if c.Name == "" {
			continue
		}
		w.names[nameKey{kind: nameKeyConstant, handle1: uint32(h)}] = w.namer.call(c.Name, "const")
	}
}

// writeTypes writes struct declarations. Other types are written inline.
func (w *Writer) writeTypes() error {
	for h, t := range w.module.Types {
		st, ok := t.Inner.(ir.StructType)
		if !ok {
			continue
		}
		if err := w.writeStruct(ir.TypeHandle(h), st); err != nil {
			return err
		}
	}
	return nil
}

// memberSizes computes the @size attribute each member needs to reproduce
// the offsets recorded in the IR. Zero means no attribute.
func (w *Writer) memberSizes(h ir.TypeHandle, st ir.StructType) ([]uint32, error) {
	sizes := make([]uint32, len(st.Members))
	var end, align uint32 = 0, 1
	for i, m := range st.Members {
		l := layout.Of(w.module, m.Type)
		if l.Align > align {
			align = l.Align
		}
		natural := layout.RoundUp(l.Align, end)
		switch {
		case m.Offset < natural:
			return nil, fmt.Errorf("struct %s: member %q at offset %d overlaps the previous member (natural offset %d)",
				w.names[nameKey{kind: nameKeyType, handle1: uint32(h)}], m.Name, m.Offset, natural)
		case m.Offset > natural && i == 0:
			return nil, fmt.Errorf("struct %s: first member %q starts at offset %d",
				w.names[nameKey{kind: nameKeyType, handle1: uint32(h)}], m.Name, m.Offset)
		case m.Offset > natural:
			sizes[i-1] = m.Offset - st.Members[i-1].Offset
		}
		end = m.Offset + l.Size
	}

	if n := len(st.Members); n > 0 && st.Span > layout.RoundUp(align, end) {
		last := st.Members[n-1]
		if arr, ok := w.module.Types[last.Type].Inner.(ir.ArrayType); !ok || arr.Size.Constant != nil {
			sizes[n-1] = st.Span - last.Offset
		}
	}
	return sizes, nil
}

func (w *Writer) writeStruct(h ir.TypeHandle, st ir.StructType) error {
	sizes, err := w.memberSizes(h, st)
	if err != nil {
		return err
	}
	w.writeLine("struct %s {", w.names[nameKey{kind: nameKeyType, handle1: uint32(h)}])
	w.pushIndent()
	for i, m := range st.Members {
		w.writeIndent()
		if m.Binding != nil {
			if err := w.writeBinding(*m.Binding); err != nil {
				return err
			}
		}
		if sizes[i] != 0 {
			fmt.Fprintf(&w.out, "@size(%d) ", sizes[i])
		}
		tn, err := w.typeName(m.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(&w.out, "%s: %s,\n", w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(h), handle2: uint32(i)}], tn)
	}
	w.popIndent()
	w.writeLine("}")
	w.out.WriteString("\n")
	return nil
}

// writeConstants writes named module constants. Unnamed ones are inlined
// at their use sites.
func (w *Writer) writeConstants() error {
	wrote := false
	for h := range w.module.Constants {
		c := &w.module.Constants[h]
		name, ok := w.names[nameKey{kind: nameKeyConstant, handle1: uint32(h)}]
		if !ok {
			continue
		}
		tn, err := w.typeName(c.Type)
		if err != nil {
			return err
		}
		value, err := w.constantValue(ir.ConstantHandle(h))
		if err != nil {
			return err
		}
		w.writeLine("const %s: %s = %s;", name, tn, value)
		wrote = true
	}
	if wrote {
		w.out.WriteString("\n")
	}
	return nil
}

// constantRef returns the identifier of a named constant or the inline
// value of an unnamed one.
func (w *Writer) constantRef(h ir.ConstantHandle) (string, error) {
	if name, ok := w.names[nameKey{kind: nameKeyConstant, handle1: uint32(h)}]; ok {
		return name, nil
	}
	return w.constantValue(h)
}

func (w *Writer) constantValue(h ir.ConstantHandle) (string, error) {
	if int(h) >= len(w.module.Constants) {
		return "", fmt.Errorf("invalid constant handle %d", h)
	}
	c := &w.module.Constants[h]
	switch v := c.Value.(type) {
	case ir.ScalarValue:
		s, ok := w.module.Types[c.Type].Inner.(ir.ScalarType)
		if !ok {
			return "", fmt.Errorf("constant %d: scalar value with a non-scalar type", h)
		}
		return scalarValueLiteral(s, v.Bits)
	case ir.CompositeValue:
		tn, err := w.typeName(c.Type)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(v.Components))
		for i, comp := range v.Components {
			s, err := w.constantRef(comp)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return tn + "(" + strings.Join(parts, ", ") + ")", nil
	case ir.ZeroConstantValue:
		tn, err := w.typeName(c.Type)
		if err != nil {
			return "", err
		}
		return tn + "()", nil
	}
	if int(c.Init) < len(w.module.GlobalExpressions) {
		return w.globalExpression(c.Init)
	}
	return "", fmt.Errorf("constant %d has no value", h)
}

// globalExpression renders a constant expression from the module's global
// expression arena.
func (w *Writer) globalExpression(h ir.ExpressionHandle) (string, error) {
	if int(h) >= len(w.module.GlobalExpressions) {
		return "", fmt.Errorf("invalid global expression handle %d", h)
	}
	switch e := w.module.GlobalExpressions[h].Kind.(type) {
	case ir.Literal:
		return literal(e.Value)
	case ir.ExprConstant:
		return w.constantRef(e.Constant)
	case ir.ExprZeroValue:
		tn, err := w.typeName(e.Type)
		if err != nil {
			return "", err
		}
		return tn + "()", nil
	case ir.ExprCompose:
		tn, err := w.typeName(e.Type)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(e.Components))
		for i, comp := range e.Components {
			s, err := w.globalExpression(comp)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return tn + "(" + strings.Join(parts, ", ") + ")", nil
	case ir.ExprSplat:
		v, err := w.globalExpression(e.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vec%d(%s)", e.Size, v), nil
	default:
		return "", fmt.Errorf("unsupported constant expression %T", e)
	}
}

func (w *Writer) writeGlobalVariables() error {
	for h := range w.module.GlobalVariables {
		gv := &w.module.GlobalVariables[h]
		name := w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(h)}]
		tn, err := w.typeName(gv.Type)
		if err != nil {
			return err
		}
		if gv.Binding != nil {
			fmt.Fprintf(&w.out, "@group(%d) @binding(%d) ", gv.Binding.Group, gv.Binding.Binding)
		}
		space, err := addressSpaceQualifier(gv.Space, gv.Access)
		if err != nil {
			return fmt.Errorf("global %s: %w", name, err)
		}
		fmt.Fprintf(&w.out, "var%s %s: %s", space, name, tn)

		switch {
		case gv.Init != nil:
			init, err := w.constantRef(*gv.Init)
			if err != nil {
				return err
			}
			fmt.Fprintf(&w.out, " = %s", init)
		case gv.InitExpr != nil:
			init, err := w.globalExpression(*gv.InitExpr)
			if err != nil {
				return err
			}
			fmt.Fprintf(&w.out, " = %s", init)
		}
		w.out.WriteString(";\n")
	}
	if len(w.module.GlobalVariables) > 0 {
		w.out.WriteString("\n")
	}
	return nil
}

func addressSpaceQualifier(space ir.AddressSpace, access ir.StorageAccessMode) (string, error) {
	switch space {
	case ir.SpaceHandle:
		return "", nil
	case ir.SpacePrivate:
		return "<private>", nil
	case ir.SpaceWorkGroup:
		return "<workgroup>", nil
	case ir.SpaceUniform:
		return "<uniform>", nil
	case ir.SpaceStorage:
		if access == ir.StorageRead {
			return "<storage, read>", nil
		}
		return "<storage, read_write>", nil
	case ir.SpacePushConstant:
		return "<push_constant>", nil
	}
	return "", fmt.Errorf("address space %d is not valid for globals", space)
}

func (w *Writer) writeFunctions() error {
	for h := range w.module.Functions {
		fn := &w.module.Functions[h]
		w.currentFunction = fn
		w.currentInfo = w.info.Function(ir.FunctionHandle(h))
		w.currentEntry = -1
		w.currentHandle = ir.FunctionHandle(h)
		w.namedExpressions = make(map[ir.ExpressionHandle]string)

		if err := w.writeFunction(w.names[nameKey{kind: nameKeyFunction, handle1: uint32(h)}]); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	return nil
}

func (w *Writer) writeEntryPoints() error {
	for i := range w.module.EntryPoints {
		ep := &w.module.EntryPoints[i]
		w.currentFunction = &ep.Function
		w.currentInfo = w.info.EntryPoint(i)
		w.currentEntry = i
		w.namedExpressions = make(map[ir.ExpressionHandle]string)

		switch ep.Stage {
		case ir.StageVertex:
			w.writeLine("@vertex")
		case ir.StageFragment:
			w.writeLine("@fragment")
		case ir.StageCompute:
			w.writeLine("@compute @workgroup_size(%d, %d, %d)", ep.Workgroup[0], ep.Workgroup[1], ep.Workgroup[2])
		default:
			return fmt.Errorf("entry point %q: unsupported stage %d", ep.Name, ep.Stage)
		}
		if err := w.writeFunction(w.names[nameKey{kind: nameKeyEntryPoint, handle1: uint32(i)}]); err != nil {
			return fmt.Errorf("entry point %s: %w", ep.Name, err)
		}
	}
	return nil
}

func (w *Writer) argumentName(index int) string {
	if w.currentEntry >= 0 {
		return w.names[nameKey{kind: nameKeyEntryPointArgument, handle1: uint32(w.currentEntry), handle2: uint32(index)}]
	}
	return w.names[nameKey{kind: nameKeyFunctionArgument, handle1: uint32(w.currentHandle), handle2: uint32(index)}]
}

func (w *Writer) localName(index uint32) string {
	if w.currentEntry >= 0 {
		return w.names[nameKey{kind: nameKeyEntryPointLocal, handle1: uint32(w.currentEntry), handle2: index}]
	}
	return w.names[nameKey{kind: nameKeyFunctionLocal, handle1: uint32(w.currentHandle), handle2: index}]
}

func (w *Writer) writeFunction(name string) error {
	fn := w.currentFunction
	fmt.Fprintf(&w.out, "fn %s(", name)
	for i, arg := range fn.Arguments {
		if i > 0 {
			w.out.WriteString(", ")
		}
		if arg.Binding != nil {
			if err := w.writeBinding(*arg.Binding); err != nil {
				return err
			}
		}
		tn, err := w.typeName(arg.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(&w.out, "%s: %s", w.argumentName(i), tn)
	}
	w.out.WriteString(")")
	if fn.Result != nil {
		w.out.WriteString(" -> ")
		if fn.Result.Binding != nil {
			if err := w.writeBinding(*fn.Result.Binding); err != nil {
				return err
			}
		}
		tn, err := w.typeName(fn.Result.Type)
		if err != nil {
			return err
		}
		w.out.WriteString(tn)
	}
	w.out.WriteString(" {\n")
	w.pushIndent()

	if err := w.writeLocalVars(); err != nil {
		return err
	}
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	w.out.WriteString("\n")
	return nil
}

func (w *Writer) writeLocalVars() error {
	fn := w.currentFunction
	for i, local := range fn.LocalVars {
		tn, err := w.typeName(local.Type)
		if err != nil {
			return err
		}
		w.writeIndent()
		fmt.Fprintf(&w.out, "var %s: %s", w.localName(uint32(i)), tn)
		if local.Init != nil {
			init, err := w.expressionString(*local.Init)
			if err != nil {
				return err
			}
			fmt.Fprintf(&w.out, " = %s", init)
		}
		w.out.WriteString(";\n")
	}
	if len(fn.LocalVars) > 0 {
		w.out.WriteString("\n")
	}
	return nil
}

// writeBinding writes IO attributes followed by a space.
func (w *Writer) writeBinding(binding ir.Binding) error {
	switch b := binding.(type) {
	case ir.BuiltinBinding:
		name, ok := builtinNames[b.Builtin]
		if !ok {
			return fmt.Errorf("unsupported builtin %d", b.Builtin)
		}
		fmt.Fprintf(&w.out, "@builtin(%s) ", name)
		if b.Invariant {
			w.out.WriteString("@invariant ")
		}
	case ir.LocationBinding:
		fmt.Fprintf(&w.out, "@location(%d) ", b.Location)
		if b.BlendSrc != nil {
			fmt.Fprintf(&w.out, "@blend_src(%d) ", *b.BlendSrc)
		}
		if b.Interpolation != nil {
			if attr := interpolationAttribute(*b.Interpolation); attr != "" {
				w.out.WriteString(attr + " ")
			}
		}
	default:
		return fmt.Errorf("unsupported binding %T", binding)
	}
	return nil
}

// interpolationAttribute omits the WGSL default of perspective-correct
// center sampling.
func interpolationAttribute(interp ir.Interpolation) string {
	sampling := ""
	switch interp.Sampling {
	case ir.SamplingCentroid:
		sampling = "centroid"
	case ir.SamplingSample:
		sampling = "sample"
	}
	switch interp.Kind {
	case ir.InterpolationFlat:
		return "@interpolate(flat)"
	case ir.InterpolationLinear:
		if sampling == "" {
			return "@interpolate(linear)"
		}
		return "@interpolate(linear, " + sampling + ")"
	default:
		if sampling == "" {
			return ""
		}
		return "@interpolate(perspective, " + sampling + ")"
	}
}

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
	ir.BuiltinClipDistance:         "clip_distances",
}

// Output helpers

//nolint:goprintffuncname // matches fmt.Printf
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	fmt.Fprintf(&w.out, format, args...)
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *Writer) pushIndent() { w.indent++ }

func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Literals

func literal(v ir.LiteralValue) (string, error) {
	switch v := v.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		return formatI32(int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralF32:
		return formatFloat(float64(v), 32, "f")
	case ir.LiteralF16:
		return formatFloat(float64(v), 32, "h")
	case ir.LiteralAbstractInt:
		return fmt.Sprintf("%d", int64(v)), nil
	case ir.LiteralAbstractFloat:
		return formatFloat(float64(v), 64, "")
	case ir.LiteralF64, ir.LiteralI64, ir.LiteralU64:
		return "", fmt.Errorf("64-bit literal %v is not supported", v)
	}
	return "", fmt.Errorf("unsupported literal %T", v)
}

// scalarValueLiteral renders the bit pattern of a scalar constant.
func scalarValueLiteral(s ir.ScalarType, bits uint64) (string, error) {
	switch {
	case s.Kind == ir.ScalarBool:
		return literal(ir.LiteralBool(bits != 0))
	case s.Kind == ir.ScalarSint && s.Width == 4:
		return literal(ir.LiteralI32(int32(uint32(bits)))) //nolint:gosec // G115: two's complement reinterpretation
	case s.Kind == ir.ScalarUint && s.Width == 4:
		return literal(ir.LiteralU32(uint32(bits))) //nolint:gosec // G115: low 32 bits hold the value
	case s.Kind == ir.ScalarFloat && s.Width == 4:
		return literal(ir.LiteralF32(math.Float32frombits(uint32(bits)))) //nolint:gosec // G115: low 32 bits hold the value
	case s.Kind == ir.ScalarFloat && s.Width == 2:
		return literal(ir.LiteralF16(halfBitsToFloat(uint16(bits)))) //nolint:gosec // G115: low 16 bits hold the value
	}
	return "", fmt.Errorf("unsupported scalar constant (kind %d, width %d)", s.Kind, s.Width)
}

// formatI32 writes an i32 literal. The minimum value has no literal form
// because the lexer reads the magnitude before the negation.
func formatI32(v int32) string {
	if v == math.MinInt32 {
		return "i32(-2147483647 - 1)"
	}
	return fmt.Sprintf("%di", v)
}

// formatFloat writes the shortest representation that round-trips at the
// given precision.
func formatFloat(v float64, bitSize int, suffix string) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("non-finite float literal %v", v)
	}
	s := strconv.FormatFloat(v, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s + suffix, nil
}

func halfBitsToFloat(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := int32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)
	switch exp {
	case 0:
		// Zero or subnormal: exact in float32.
		f := float32(mant) / (1 << 24)
		if sign != 0 {
			f = -f
		}
		return f
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | uint32(exp+112)<<23 | mant<<13) //nolint:gosec // G115: exp+112 is in [113, 142]
}
