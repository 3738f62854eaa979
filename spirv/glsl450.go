package spirv

import (
	"github.com/gogpu/naga/ir"
)

// glslMath maps GLSL.std.450 instructions onto IR math functions. The kind
// field names the scalar kind the operands are cast to, if any.
var glslMath = map[uint32]struct {
	fun  ir.MathFunction
	args int
	kind int
}{
	GLSLstd450Round:           {ir.MathRound, 1, -1},
	GLSLstd450RoundEven:       {ir.MathRound, 1, -1},
	GLSLstd450Trunc:           {ir.MathTrunc, 1, -1},
	GLSLstd450FAbs:            {ir.MathAbs, 1, -1},
	GLSLstd450SAbs:            {ir.MathAbs, 1, int(ir.ScalarSint)},
	GLSLstd450FSign:           {ir.MathSign, 1, -1},
	GLSLstd450SSign:           {ir.MathSign, 1, int(ir.ScalarSint)},
	GLSLstd450Floor:           {ir.MathFloor, 1, -1},
	GLSLstd450Ceil:            {ir.MathCeil, 1, -1},
	GLSLstd450Fract:           {ir.MathFract, 1, -1},
	GLSLstd450Radians:         {ir.MathRadians, 1, -1},
	GLSLstd450Degrees:         {ir.MathDegrees, 1, -1},
	GLSLstd450Sin:             {ir.MathSin, 1, -1},
	GLSLstd450Cos:             {ir.MathCos, 1, -1},
	GLSLstd450Tan:             {ir.MathTan, 1, -1},
	GLSLstd450Asin:            {ir.MathAsin, 1, -1},
	GLSLstd450Acos:            {ir.MathAcos, 1, -1},
	GLSLstd450Atan:            {ir.MathAtan, 1, -1},
	GLSLstd450Sinh:            {ir.MathSinh, 1, -1},
	GLSLstd450Cosh:            {ir.MathCosh, 1, -1},
	GLSLstd450Tanh:            {ir.MathTanh, 1, -1},
	GLSLstd450Asinh:           {ir.MathAsinh, 1, -1},
	GLSLstd450Acosh:           {ir.MathAcosh, 1, -1},
	GLSLstd450Atanh:           {ir.MathAtanh, 1, -1},
	GLSLstd450Atan2:           {ir.MathAtan2, 2, -1},
	GLSLstd450Pow:             {ir.MathPow, 2, -1},
	GLSLstd450Exp:             {ir.MathExp, 1, -1},
	GLSLstd450Log:             {ir.MathLog, 1, -1},
	GLSLstd450Exp2:            {ir.MathExp2, 1, -1},
	GLSLstd450Log2:            {ir.MathLog2, 1, -1},
	GLSLstd450Sqrt:            {ir.MathSqrt, 1, -1},
	GLSLstd450InverseSqrt:     {ir.MathInverseSqrt, 1, -1},
	GLSLstd450Determinant:     {ir.MathDeterminant, 1, -1},
	GLSLstd450MatrixInverse:   {ir.MathInverse, 1, -1},
	GLSLstd450FMin:            {ir.MathMin, 2, -1},
	GLSLstd450UMin:            {ir.MathMin, 2, int(ir.ScalarUint)},
	GLSLstd450SMin:            {ir.MathMin, 2, int(ir.ScalarSint)},
	GLSLstd450FMax:            {ir.MathMax, 2, -1},
	GLSLstd450UMax:            {ir.MathMax, 2, int(ir.ScalarUint)},
	GLSLstd450SMax:            {ir.MathMax, 2, int(ir.ScalarSint)},
	GLSLstd450FClamp:          {ir.MathClamp, 3, -1},
	GLSLstd450UClamp:          {ir.MathClamp, 3, int(ir.ScalarUint)},
	GLSLstd450SClamp:          {ir.MathClamp, 3, int(ir.ScalarSint)},
	GLSLstd450NMin:            {ir.MathMin, 2, -1},
	GLSLstd450NMax:            {ir.MathMax, 2, -1},
	GLSLstd450NClamp:          {ir.MathClamp, 3, -1},
	GLSLstd450FMix:            {ir.MathMix, 3, -1},
	GLSLstd450Step:            {ir.MathStep, 2, -1},
	GLSLstd450SmoothStep:      {ir.MathSmoothStep, 3, -1},
	GLSLstd450Fma:             {ir.MathFma, 3, -1},
	GLSLstd450Ldexp:           {ir.MathLdexp, 2, -1},
	GLSLstd450PackSnorm4x8:    {ir.MathPack4x8snorm, 1, -1},
	GLSLstd450PackUnorm4x8:    {ir.MathPack4x8unorm, 1, -1},
	GLSLstd450PackSnorm2x16:   {ir.MathPack2x16snorm, 1, -1},
	GLSLstd450PackUnorm2x16:   {ir.MathPack2x16unorm, 1, -1},
	GLSLstd450PackHalf2x16:    {ir.MathPack2x16float, 1, -1},
	GLSLstd450UnpackSnorm2x16: {ir.MathUnpack2x16snorm, 1, -1},
	GLSLstd450UnpackUnorm2x16: {ir.MathUnpack2x16unorm, 1, -1},
	GLSLstd450UnpackHalf2x16:  {ir.MathUnpack2x16float, 1, -1},
	GLSLstd450UnpackSnorm4x8:  {ir.MathUnpack4x8snorm, 1, -1},
	GLSLstd450UnpackUnorm4x8:  {ir.MathUnpack4x8unorm, 1, -1},
	GLSLstd450Length:          {ir.MathLength, 1, -1},
	GLSLstd450Distance:        {ir.MathDistance, 2, -1},
	GLSLstd450Cross:           {ir.MathCross, 2, -1},
	GLSLstd450Normalize:       {ir.MathNormalize, 1, -1},
	GLSLstd450FaceForward:     {ir.MathFaceForward, 3, -1},
	GLSLstd450Reflect:         {ir.MathReflect, 2, -1},
	GLSLstd450Refract:         {ir.MathRefract, 3, -1},
	GLSLstd450FindILsb:        {ir.MathFirstTrailingBit, 1, -1},
	GLSLstd450FindSMsb:        {ir.MathFirstLeadingBit, 1, int(ir.ScalarSint)},
	GLSLstd450FindUMsb:        {ir.MathFirstLeadingBit, 1, int(ir.ScalarUint)},
}

func (f *funcLowerer) lowerGLSL(inst rawInst) error {
	w := inst.Words
	m, ok := glslMath[w[3]]
	if !ok {
		return parseErrorf(inst.offset, "function %q: unsupported GLSL.std.450 instruction %d", f.fn.Name, w[3])
	}
	if len(w) < 4+m.args {
		return parseErrorf(inst.offset, "GLSL.std.450 instruction %d: expected %d arguments", w[3], m.args)
	}
	vs, err := f.operands(w[4 : 4+m.args]...)
	if err != nil {
		return err
	}
	args := make([]ir.ExpressionHandle, len(vs))
	for i, v := range vs {
		if m.kind >= 0 {
			args[i] = f.castTo(v, ir.ScalarKind(m.kind))
		} else {
			args[i] = v.expr
		}
	}
	expr := ir.ExprMath{Fun: m.fun, Arg: args[0]}
	if len(args) > 1 {
		expr.Arg1 = exprPtr(args[1])
	}
	if len(args) > 2 {
		expr.Arg2 = exprPtr(args[2])
	}
	h := f.add(expr)

	// Integer variants compute in the operand kind; restore the result kind.
	if m.kind >= 0 {
		if rs, ok := f.p.scalarOf(w[0]); ok && rs.Kind != ir.ScalarKind(m.kind) {
			h = f.add(ir.ExprAs{Expr: h, Kind: rs.Kind})
		}
	}
	f.define(w[1], value{h, w[0]})
	return nil
}
