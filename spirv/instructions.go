package spirv

import (
	"github.com/gogpu/naga/ir"
)

func exprPtr(h ir.ExpressionHandle) *ir.ExpressionHandle { return &h }

func width(n uint8) *uint8 { return &n }

var binaryOps = map[OpCode]ir.BinaryOperator{
	OpIAdd:              ir.BinaryAdd,
	OpFAdd:              ir.BinaryAdd,
	OpISub:              ir.BinarySubtract,
	OpFSub:              ir.BinarySubtract,
	OpIMul:              ir.BinaryMultiply,
	OpFMul:              ir.BinaryMultiply,
	OpVectorTimesScalar: ir.BinaryMultiply,
	OpMatrixTimesScalar: ir.BinaryMultiply,
	OpVectorTimesMatrix: ir.BinaryMultiply,
	OpMatrixTimesVector: ir.BinaryMultiply,
	OpMatrixTimesMatrix: ir.BinaryMultiply,
	OpUDiv:              ir.BinaryDivide,
	OpSDiv:              ir.BinaryDivide,
	OpFDiv:              ir.BinaryDivide,
	OpUMod:              ir.BinaryModulo,
	OpSRem:              ir.BinaryModulo,
	OpFRem:              ir.BinaryModulo,
	OpBitwiseAnd:        ir.BinaryAnd,
	OpBitwiseOr:         ir.BinaryInclusiveOr,
	OpBitwiseXor:        ir.BinaryExclusiveOr,
}

// comparisonOps maps comparisons to their operator and the scalar kind the
// operands must have; a negative kind keeps the operands as they are.
var comparisonOps = map[OpCode]struct {
	op   ir.BinaryOperator
	kind int
}{
	OpIEqual:                 {ir.BinaryEqual, -1},
	OpINotEqual:              {ir.BinaryNotEqual, -1},
	OpUGreaterThan:           {ir.BinaryGreater, int(ir.ScalarUint)},
	OpSGreaterThan:           {ir.BinaryGreater, int(ir.ScalarSint)},
	OpUGreaterThanEqual:      {ir.BinaryGreaterEqual, int(ir.ScalarUint)},
	OpSGreaterThanEqual:      {ir.BinaryGreaterEqual, int(ir.ScalarSint)},
	OpULessThan:              {ir.BinaryLess, int(ir.ScalarUint)},
	OpSLessThan:              {ir.BinaryLess, int(ir.ScalarSint)},
	OpULessThanEqual:         {ir.BinaryLessEqual, int(ir.ScalarUint)},
	OpSLessThanEqual:         {ir.BinaryLessEqual, int(ir.ScalarSint)},
	OpFOrdEqual:              {ir.BinaryEqual, -1},
	OpFUnordEqual:            {ir.BinaryEqual, -1},
	OpFOrdNotEqual:           {ir.BinaryNotEqual, -1},
	OpFUnordNotEqual:         {ir.BinaryNotEqual, -1},
	OpFOrdLessThan:           {ir.BinaryLess, -1},
	OpFUnordLessThan:         {ir.BinaryLess, -1},
	OpFOrdGreaterThan:        {ir.BinaryGreater, -1},
	OpFUnordGreaterThan:      {ir.BinaryGreater, -1},
	OpFOrdLessThanEqual:      {ir.BinaryLessEqual, -1},
	OpFUnordLessThanEqual:    {ir.BinaryLessEqual, -1},
	OpFOrdGreaterThanEqual:   {ir.BinaryGreaterEqual, -1},
	OpFUnordGreaterThanEqual: {ir.BinaryGreaterEqual, -1},
	OpLogicalEqual:           {ir.BinaryEqual, -1},
	OpLogicalNotEqual:        {ir.BinaryNotEqual, -1},
}

var derivatives = map[OpCode]ir.ExprDerivative{
	OpDPdx:         {Axis: ir.DerivativeX, Control: ir.DerivativeNone},
	OpDPdy:         {Axis: ir.DerivativeY, Control: ir.DerivativeNone},
	OpFwidth:       {Axis: ir.DerivativeWidth, Control: ir.DerivativeNone},
	OpDPdxFine:     {Axis: ir.DerivativeX, Control: ir.DerivativeFine},
	OpDPdyFine:     {Axis: ir.DerivativeY, Control: ir.DerivativeFine},
	OpFwidthFine:   {Axis: ir.DerivativeWidth, Control: ir.DerivativeFine},
	OpDPdxCoarse:   {Axis: ir.DerivativeX, Control: ir.DerivativeCoarse},
	OpDPdyCoarse:   {Axis: ir.DerivativeY, Control: ir.DerivativeCoarse},
	OpFwidthCoarse: {Axis: ir.DerivativeWidth, Control: ir.DerivativeCoarse},
}

// castTo reinterprets v as the given scalar kind when it differs.
func (f *funcLowerer) castTo(v value, kind ir.ScalarKind) ir.ExpressionHandle {
	s, ok := f.p.scalarOf(v.typeID)
	if !ok || s.Kind == kind || s.Kind == ir.ScalarBool || s.Kind == ir.ScalarFloat {
		return v.expr
	}
	return f.add(ir.ExprAs{Expr: v.expr, Kind: kind})
}

// unify casts the operands of an integer operation to the result kind.
func (f *funcLowerer) unify(resultType uint32, vs ...value) []ir.ExpressionHandle {
	out := make([]ir.ExpressionHandle, len(vs))
	rs, ok := f.p.scalarOf(resultType)
	for i, v := range vs {
		if ok && (rs.Kind == ir.ScalarSint || rs.Kind == ir.ScalarUint) {
			out[i] = f.castTo(v, rs.Kind)
		} else {
			out[i] = v.expr
		}
	}
	return out
}

func (f *funcLowerer) lowerInst(inst rawInst) error {
	w := inst.Words
	need := func(n int) error {
		if len(w) < n {
			return parseErrorf(inst.offset, "%s: expected at least %d operands, got %d", inst.Opcode, n, len(w))
		}
		return nil
	}
	if err := need(1); err != nil {
		return err
	}

	if op, ok := binaryOps[inst.Opcode]; ok {
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		hs := f.unify(w[0], vs...)
		f.define(w[1], value{f.add(ir.ExprBinary{Op: op, Left: hs[0], Right: hs[1]}), w[0]})
		return nil
	}
	if cmp, ok := comparisonOps[inst.Opcode]; ok {
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		l, r := vs[0].expr, vs[1].expr
		if cmp.kind >= 0 {
			l, r = f.castTo(vs[0], ir.ScalarKind(cmp.kind)), f.castTo(vs[1], ir.ScalarKind(cmp.kind))
		} else if s, ok := f.p.scalarOf(vs[0].typeID); ok {
			r = f.castTo(vs[1], s.Kind)
		}
		f.define(w[1], value{f.add(ir.ExprBinary{Op: cmp.op, Left: l, Right: r}), w[0]})
		return nil
	}
	if d, ok := derivatives[inst.Opcode]; ok {
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		d.Expr = v.expr
		f.define(w[1], value{f.add(d), w[0]})
		return nil
	}

	switch inst.Opcode {
	case OpUndef:
		if err := need(2); err != nil {
			return err
		}
		ty, err := f.p.irType(w[0])
		if err != nil {
			return err
		}
		f.define(w[1], value{f.add(ir.ExprZeroValue{Type: ty}), w[0]})

	case OpLoad:
		if err := need(3); err != nil {
			return err
		}
		ptr, err := f.operand(w[2])
		if err != nil {
			return err
		}
		if t, ok := f.p.types[w[0]]; ok && (t.kind == kindImage || t.kind == kindSampler) {
			f.define(w[1], value{ptr.expr, w[0]})
			return nil
		}
		if t, ok := f.p.types[w[0]]; ok && t.kind == kindSampledImage {
			return parseErrorf(inst.offset, "combined image samplers are not supported")
		}
		f.define(w[1], value{f.add(ir.ExprLoad{Pointer: ptr.expr}), w[0]})

	case OpStore:
		if err := need(2); err != nil {
			return err
		}
		vs, err := f.operands(w[0], w[1])
		if err != nil {
			return err
		}
		f.push(ir.StmtStore{Pointer: vs[0].expr, Value: vs[1].expr})

	case OpCopyMemory:
		if err := need(2); err != nil {
			return err
		}
		vs, err := f.operands(w[0], w[1])
		if err != nil {
			return err
		}
		loaded := f.add(ir.ExprLoad{Pointer: vs[1].expr})
		f.push(ir.StmtStore{Pointer: vs[0].expr, Value: loaded})

	case OpCopyObject:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		if s, ok := f.sampled[w[2]]; ok {
			f.sampled[w[1]] = s
		}
		f.define(w[1], value{v.expr, w[0]})

	case OpAccessChain, OpInBoundsAccessChain:
		if err := need(3); err != nil {
			return err
		}
		return f.lowerAccessChain(w[0], w[1], w[2], w[3:])

	case OpArrayLength:
		if err := need(4); err != nil {
			return err
		}
		base, err := f.operand(w[2])
		if err != nil {
			return err
		}
		member := f.add(ir.ExprAccessIndex{Base: base.expr, Index: w[3]})
		f.define(w[1], value{f.add(ir.ExprArrayLength{Array: member}), w[0]})

	case OpCompositeConstruct:
		if err := need(2); err != nil {
			return err
		}
		ty, err := f.p.irType(w[0])
		if err != nil {
			return err
		}
		vs, err := f.operands(w[2:]...)
		if err != nil {
			return err
		}
		comps := make([]ir.ExpressionHandle, len(vs))
		for i, v := range vs {
			comps[i] = v.expr
		}
		f.define(w[1], value{f.add(ir.ExprCompose{Type: ty, Components: comps}), w[0]})

	case OpCompositeExtract:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		h := v.expr
		for _, idx := range w[3:] {
			h = f.add(ir.ExprAccessIndex{Base: h, Index: idx})
		}
		f.define(w[1], value{h, w[0]})

	case OpCompositeInsert:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		h, err := f.insert(vs[1].expr, w[0], w[4:], vs[0].expr)
		if err != nil {
			return err
		}
		f.define(w[1], value{h, w[0]})

	case OpVectorShuffle:
		if err := need(4); err != nil {
			return err
		}
		return f.lowerShuffle(w)

	case OpVectorExtractDynamic:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		f.define(w[1], value{f.add(ir.ExprAccess{Base: vs[0].expr, Index: vs[1].expr}), w[0]})

	case OpVectorInsertDynamic:
		if err := need(5); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3], w[4])
		if err != nil {
			return err
		}
		tmp, err := f.newLocal(w[0], "")
		if err != nil {
			return err
		}
		f.push(ir.StmtStore{Pointer: f.localExpr(tmp), Value: vs[0].expr})
		elem := f.add(ir.ExprAccess{Base: f.localExpr(tmp), Index: vs[2].expr})
		f.push(ir.StmtStore{Pointer: elem, Value: vs[1].expr})
		f.define(w[1], value{f.add(ir.ExprLoad{Pointer: f.localExpr(tmp)}), w[0]})

	case OpTranspose, OpDot, OpOuterProduct:
		if err := need(3); err != nil {
			return err
		}
		vs, err := f.operands(w[2:]...)
		if err != nil {
			return err
		}
		m := ir.ExprMath{Arg: vs[0].expr}
		switch inst.Opcode {
		case OpTranspose:
			m.Fun = ir.MathTranspose
		case OpDot:
			m.Fun = ir.MathDot
		default:
			m.Fun = ir.MathOuter
		}
		if len(vs) > 1 {
			m.Arg1 = exprPtr(vs[1].expr)
		}
		f.define(w[1], value{f.add(m), w[0]})

	case OpSNegate, OpFNegate, OpNot, OpLogicalNot:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		op := ir.UnaryNegate
		switch inst.Opcode {
		case OpNot:
			op = ir.UnaryBitwiseNot
		case OpLogicalNot:
			op = ir.UnaryLogicalNot
		}
		h := v.expr
		if inst.Opcode != OpFNegate && inst.Opcode != OpLogicalNot {
			h = f.unify(w[0], v)[0]
		}
		f.define(w[1], value{f.add(ir.ExprUnary{Op: op, Expr: h}), w[0]})

	case OpSMod:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		hs := f.unify(w[0], vs...)
		rem := f.add(ir.ExprBinary{Op: ir.BinaryModulo, Left: hs[0], Right: hs[1]})
		sum := f.add(ir.ExprBinary{Op: ir.BinaryAdd, Left: rem, Right: hs[1]})
		f.define(w[1], value{f.add(ir.ExprBinary{Op: ir.BinaryModulo, Left: sum, Right: hs[1]}), w[0]})

	case OpFMod:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		a, b := vs[0].expr, vs[1].expr
		div := f.add(ir.ExprBinary{Op: ir.BinaryDivide, Left: a, Right: b})
		floor := f.add(ir.ExprMath{Fun: ir.MathFloor, Arg: div})
		mul := f.add(ir.ExprBinary{Op: ir.BinaryMultiply, Left: b, Right: floor})
		f.define(w[1], value{f.add(ir.ExprBinary{Op: ir.BinarySubtract, Left: a, Right: mul}), w[0]})

	case OpShiftLeftLogical, OpShiftRightLogical, OpShiftRightArithmetic:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		amount := f.castTo(vs[1], ir.ScalarUint)
		rs, _ := f.p.scalarOf(w[0])
		op, kind := ir.BinaryShiftLeft, rs.Kind
		base := f.unify(w[0], vs[0])[0]
		switch inst.Opcode {
		case OpShiftRightLogical:
			op, kind = ir.BinaryShiftRight, ir.ScalarUint
			base = f.castTo(vs[0], kind)
		case OpShiftRightArithmetic:
			op, kind = ir.BinaryShiftRight, ir.ScalarSint
			base = f.castTo(vs[0], kind)
		}
		h := f.add(ir.ExprBinary{Op: op, Left: base, Right: amount})
		if kind != rs.Kind {
			h = f.add(ir.ExprAs{Expr: h, Kind: rs.Kind})
		}
		f.define(w[1], value{h, w[0]})

	case OpLogicalAnd, OpLogicalOr:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		op := ir.BinaryLogicalAnd
		if inst.Opcode == OpLogicalOr {
			op = ir.BinaryLogicalOr
		}
		if f.p.vectorSize(w[0]) > 0 {
			op = ir.BinaryAnd
			if inst.Opcode == OpLogicalOr {
				op = ir.BinaryInclusiveOr
			}
		}
		f.define(w[1], value{f.add(ir.ExprBinary{Op: op, Left: vs[0].expr, Right: vs[1].expr}), w[0]})

	case OpSelect:
		if err := need(5); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3], w[4])
		if err != nil {
			return err
		}
		f.define(w[1], value{f.add(ir.ExprSelect{Condition: vs[0].expr, Accept: vs[1].expr, Reject: vs[2].expr}), w[0]})

	case OpAny, OpAll, OpIsNan, OpIsInf:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		fun := map[OpCode]ir.RelationalFunction{
			OpAny:   ir.RelationalAny,
			OpAll:   ir.RelationalAll,
			OpIsNan: ir.RelationalIsNan,
			OpIsInf: ir.RelationalIsInf,
		}[inst.Opcode]
		f.define(w[1], value{f.add(ir.ExprRelational{Fun: fun, Argument: v.expr}), w[0]})

	case OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF,
		OpUConvert, OpSConvert, OpFConvert:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		rs, ok := f.p.scalarOf(w[0])
		if !ok {
			return parseErrorf(inst.offset, "%s: non-scalar result type", inst.Opcode)
		}
		src := v.expr
		switch inst.Opcode {
		case OpConvertSToF, OpSConvert:
			src = f.castTo(v, ir.ScalarSint)
		case OpConvertUToF, OpUConvert:
			src = f.castTo(v, ir.ScalarUint)
		}
		f.define(w[1], value{f.add(ir.ExprAs{Expr: src, Kind: rs.Kind, Convert: width(rs.Width)}), w[0]})

	case OpBitcast:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		rs, ok := f.p.scalarOf(w[0])
		if !ok {
			return parseErrorf(inst.offset, "OpBitcast: non-scalar result type")
		}
		f.define(w[1], value{f.add(ir.ExprAs{Expr: v.expr, Kind: rs.Kind}), w[0]})

	case OpQuantizeToF16:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		f.define(w[1], value{f.add(ir.ExprMath{Fun: ir.MathQuantizeF16, Arg: v.expr}), w[0]})

	case OpBitCount, OpBitReverse:
		if err := need(3); err != nil {
			return err
		}
		v, err := f.operand(w[2])
		if err != nil {
			return err
		}
		fun := ir.MathCountOneBits
		if inst.Opcode == OpBitReverse {
			fun = ir.MathReverseBits
		}
		h := f.unify(w[0], v)[0]
		f.define(w[1], value{f.add(ir.ExprMath{Fun: fun, Arg: h}), w[0]})

	case OpBitFieldInsert:
		if err := need(6); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3], w[4], w[5])
		if err != nil {
			return err
		}
		hs := f.unify(w[0], vs[0], vs[1])
		f.define(w[1], value{f.add(ir.ExprMath{
			Fun:  ir.MathInsertBits,
			Arg:  hs[0],
			Arg1: exprPtr(hs[1]),
			Arg2: exprPtr(f.castTo(vs[2], ir.ScalarUint)),
			Arg3: exprPtr(f.castTo(vs[3], ir.ScalarUint)),
		}), w[0]})

	case OpBitFieldSExtract, OpBitFieldUExtract:
		if err := need(5); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3], w[4])
		if err != nil {
			return err
		}
		kind := ir.ScalarSint
		if inst.Opcode == OpBitFieldUExtract {
			kind = ir.ScalarUint
		}
		h := f.add(ir.ExprMath{
			Fun:  ir.MathExtractBits,
			Arg:  f.castTo(vs[0], kind),
			Arg1: exprPtr(f.castTo(vs[1], ir.ScalarUint)),
			Arg2: exprPtr(f.castTo(vs[2], ir.ScalarUint)),
		})
		if rs, ok := f.p.scalarOf(w[0]); ok && rs.Kind != kind {
			h = f.add(ir.ExprAs{Expr: h, Kind: rs.Kind})
		}
		f.define(w[1], value{h, w[0]})

	case OpFunctionCall:
		if err := need(3); err != nil {
			return err
		}
		return f.lowerCall(w)

	case OpExtInst:
		if err := need(4); err != nil {
			return err
		}
		if w[2] != f.p.glslExt || f.p.glslExt == 0 {
			return parseErrorf(inst.offset, "unsupported extended instruction set %q", f.p.extInstSets[w[2]])
		}
		return f.lowerGLSL(inst)

	case OpControlBarrier:
		if err := need(3); err != nil {
			return err
		}
		f.push(ir.StmtBarrier{Flags: f.barrierFlags(w[2])})

	case OpMemoryBarrier:
		if err := need(2); err != nil {
			return err
		}
		f.push(ir.StmtBarrier{Flags: f.barrierFlags(w[1])})

	case OpDemoteToHelperInvocation:
		f.push(ir.StmtKill{})

	case OpSampledImage, OpImage,
		OpImageSampleImplicitLod, OpImageSampleExplicitLod,
		OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod,
		OpImageGather, OpImageDrefGather,
		OpImageFetch, OpImageRead, OpImageWrite,
		OpImageQuerySize, OpImageQuerySizeLod, OpImageQueryLevels, OpImageQuerySamples:
		return f.lowerImageInst(inst)

	default:
		return parseErrorf(inst.offset, "function %q: unsupported instruction %s", f.fn.Name, inst.Opcode)
	}
	return nil
}

func (f *funcLowerer) barrierFlags(semanticsID uint32) ir.BarrierFlags {
	sem, err := f.p.constUint(semanticsID)
	if err != nil {
		return ir.BarrierWorkGroup
	}
	var flags ir.BarrierFlags
	if sem&MemorySemanticsUniformMemory != 0 {
		flags |= ir.BarrierStorage
	}
	if sem&MemorySemanticsWorkgroupMemory != 0 {
		flags |= ir.BarrierWorkGroup
	}
	if sem&MemorySemanticsImageMemory != 0 {
		flags |= ir.BarrierTexture
	}
	return flags
}

func (f *funcLowerer) lowerAccessChain(resultType, id, baseID uint32, indices []uint32) error {
	base, err := f.operand(baseID)
	if err != nil {
		return err
	}
	cur, err := f.p.pointee(base.typeID)
	if err != nil {
		return err
	}
	h := base.expr
	for _, idxID := range indices {
		switch cur.kind {
		case kindStruct:
			idx, err := f.p.constUint(idxID)
			if err != nil {
				return err
			}
			if int(idx) >= len(cur.members) {
				return parseErrorf(-1, "access chain: member %d out of range", idx)
			}
			f.p.usedMembers[memberKey{cur.id, idx}] = true
			h = f.add(ir.ExprAccessIndex{Base: h, Index: idx})
			cur = f.p.types[cur.members[idx]]
		case kindVector, kindMatrix, kindArray, kindRuntimeArray:
			if idx, err := f.p.constUint(idxID); err == nil {
				h = f.add(ir.ExprAccessIndex{Base: h, Index: idx})
			} else {
				iv, err := f.operand(idxID)
				if err != nil {
					return err
				}
				h = f.add(ir.ExprAccess{Base: h, Index: iv.expr})
			}
			cur = f.p.types[cur.elem]
		default:
			return parseErrorf(-1, "access chain: cannot index type %%%d", cur.id)
		}
		if cur == nil {
			return parseErrorf(-1, "access chain: unknown element type")
		}
	}
	f.define(id, value{h, resultType})
	return nil
}

// insert rebuilds composite with obj placed at the given index path.
func (f *funcLowerer) insert(composite ir.ExpressionHandle, typeID uint32, path []uint32, obj ir.ExpressionHandle) (ir.ExpressionHandle, error) {
	if len(path) == 0 {
		return obj, nil
	}
	t, err := f.p.typeByID(typeID)
	if err != nil {
		return 0, err
	}
	var count uint32
	elemType := func(i uint32) uint32 { return t.elem }
	switch t.kind {
	case kindVector, kindMatrix:
		count = t.count
	case kindArray:
		if count, err = f.p.constUint(t.count); err != nil {
			return 0, err
		}
	case kindStruct:
		count = uint32(len(t.members))
		elemType = func(i uint32) uint32 { return t.members[i] }
	default:
		return 0, parseErrorf(-1, "OpCompositeInsert: type %%%d is not a composite", typeID)
	}
	if path[0] >= count {
		return 0, parseErrorf(-1, "OpCompositeInsert: index %d out of range", path[0])
	}
	ty, err := f.p.irType(typeID)
	if err != nil {
		return 0, err
	}
	comps := make([]ir.ExpressionHandle, count)
	for i := uint32(0); i < count; i++ {
		if i == path[0] && len(path) == 1 {
			comps[i] = obj
			continue
		}
		part := f.add(ir.ExprAccessIndex{Base: composite, Index: i})
		if i == path[0] {
			if part, err = f.insert(part, elemType(i), path[1:], obj); err != nil {
				return 0, err
			}
		}
		comps[i] = part
	}
	return f.add(ir.ExprCompose{Type: ty, Components: comps}), nil
}

func (f *funcLowerer) lowerShuffle(w []uint32) error {
	vs, err := f.operands(w[2], w[3])
	if err != nil {
		return err
	}
	n1 := f.p.vectorSize(vs[0].typeID)
	comps := w[4:]
	for i, c := range comps {
		if c == 0xFFFFFFFF {
			comps[i] = 0
		}
	}
	allFirst, allSecond := true, true
	for _, c := range comps {
		if c >= n1 {
			allFirst = false
		} else {
			allSecond = false
		}
	}
	if len(comps) >= 2 && len(comps) <= 4 && (allFirst || allSecond) {
		src := vs[0].expr
		offset := uint32(0)
		if allSecond {
			src, offset = vs[1].expr, n1
		}
		var pattern [4]ir.SwizzleComponent
		for i, c := range comps {
			pattern[i] = ir.SwizzleComponent(c - offset)
		}
		f.define(w[1], value{f.add(ir.ExprSwizzle{Size: ir.VectorSize(len(comps)), Vector: src, Pattern: pattern}), w[0]})
		return nil
	}
	ty, err := f.p.irType(w[0])
	if err != nil {
		return err
	}
	parts := make([]ir.ExpressionHandle, len(comps))
	for i, c := range comps {
		if c < n1 {
			parts[i] = f.add(ir.ExprAccessIndex{Base: vs[0].expr, Index: c})
		} else {
			parts[i] = f.add(ir.ExprAccessIndex{Base: vs[1].expr, Index: c - n1})
		}
	}
	f.define(w[1], value{f.add(ir.ExprCompose{Type: ty, Components: parts}), w[0]})
	return nil
}

func (f *funcLowerer) lowerCall(w []uint32) error {
	callee, ok := f.p.funcByID[w[2]]
	if !ok {
		return parseErrorf(-1, "OpFunctionCall: unknown function %%%d", w[2])
	}
	vs, err := f.operands(w[3:]...)
	if err != nil {
		return err
	}
	args := make([]ir.ExpressionHandle, len(vs))
	for i, v := range vs {
		args[i] = v.expr
	}
	call := ir.StmtCall{Function: callee.handle, Arguments: args}
	rt, err := f.p.typeByID(w[0])
	if err != nil {
		return err
	}
	if rt.kind != kindVoid {
		h := f.add(ir.ExprCallResult{Function: callee.handle})
		call.Result = &h
		f.push(call)
		f.define(w[1], value{h, w[0]})
		return nil
	}
	f.push(call)
	return nil
}
