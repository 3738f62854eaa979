// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

// pointerClass tells how the text of an expression behaves in WGSL.
type pointerClass uint8

const (
	// notPointer expressions are plain values.
	notPointer pointerClass = iota
	// reference expressions name memory and load implicitly when read.
	reference
	// pointerValue expressions are ptr<...> values that need a dereference.
	pointerValue
)

func (w *Writer) pointerClass(h ir.ExpressionHandle) pointerClass {
	fn := w.currentFunction
	if int(h) >= len(fn.Expressions) {
		return notPointer
	}
	switch e := fn.Expressions[h].Kind.(type) {
	case ir.ExprGlobalVariable:
		if w.module.GlobalVariables[e.Variable].Space == ir.SpaceHandle {
			return notPointer
		}
		return reference
	case ir.ExprLocalVariable:
		return reference
	case ir.ExprFunctionArgument:
		if int(e.Index) < len(fn.Arguments) {
			if _, ok := w.module.Types[fn.Arguments[e.Index].Type].Inner.(ir.PointerType); ok {
				return pointerValue
			}
		}
	case ir.ExprAccess:
		if w.pointerClass(e.Base) != notPointer {
			return reference
		}
	case ir.ExprAccessIndex:
		if w.pointerClass(e.Base) != notPointer {
			return reference
		}
	}
	return notPointer
}

// referenceString returns text denoting the memory a pointer expression
// refers to.
func (w *Writer) referenceString(h ir.ExpressionHandle) (string, error) {
	s, err := w.expressionString(h)
	if err != nil {
		return "", err
	}
	if w.pointerClass(h) == pointerValue {
		return "(*" + s + ")", nil
	}
	return s, nil
}

// pointerString returns text usable where WGSL expects a ptr value.
func (w *Writer) pointerString(h ir.ExpressionHandle) (string, error) {
	s, err := w.expressionString(h)
	if err != nil {
		return "", err
	}
	if w.pointerClass(h) == reference {
		return "&" + s, nil
	}
	return s, nil
}

// isAtomicPointer reports whether h points to an atomic value.
func (w *Writer) isAtomicPointer(h ir.ExpressionHandle) bool {
	inner, _ := w.pointeeInner(w.expressionInner(h))
	_, ok := inner.(ir.AtomicType)
	return ok
}

// expressionString returns the text of an expression, using the name of a
// baked or named expression when one was assigned.
func (w *Writer) expressionString(h ir.ExpressionHandle) (string, error) {
	if name, ok := w.namedExpressions[h]; ok {
		return name, nil
	}
	return w.expressionKindString(h)
}

func (w *Writer) expressionList(handles []ir.ExpressionHandle) (string, error) {
	parts := make([]string, len(handles))
	for i, h := range handles {
		s, err := w.expressionString(h)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

//nolint:gocyclo,cyclop,funlen // one case per expression kind
func (w *Writer) expressionKindString(h ir.ExpressionHandle) (string, error) {
	fn := w.currentFunction
	if int(h) >= len(fn.Expressions) {
		return "", fmt.Errorf("invalid expression handle [%d]", h)
	}
	switch e := fn.Expressions[h].Kind.(type) {
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
		args, err := w.expressionList(e.Components)
		if err != nil {
			return "", err
		}
		return tn + "(" + args + ")", nil

	case ir.ExprSplat:
		scalar, _, ok := scalarOf(w.expressionInner(e.Value))
		if !ok {
			return "", fmt.Errorf("[%d]: splat of a non-scalar value", h)
		}
		sn, err := scalarName(scalar)
		if err != nil {
			return "", err
		}
		v, err := w.expressionString(e.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vec%d<%s>(%s)", e.Size, sn, v), nil

	case ir.ExprAccess:
		base, err := w.accessBase(e.Base)
		if err != nil {
			return "", err
		}
		index, err := w.expressionString(e.Index)
		if err != nil {
			return "", err
		}
		return base + "[" + index + "]", nil

	case ir.ExprAccessIndex:
		return w.accessIndexString(e)

	case ir.ExprSwizzle:
		base, err := w.accessBase(e.Vector)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for i := 0; i < int(e.Size); i++ {
			sb.WriteByte("xyzw"[e.Pattern[i]])
		}
		return base + "." + sb.String(), nil

	case ir.ExprFunctionArgument:
		return w.argumentName(int(e.Index)), nil

	case ir.ExprGlobalVariable:
		return w.names[nameKey{kind: nameKeyGlobalVariable, handle1: uint32(e.Variable)}], nil

	case ir.ExprLocalVariable:
		return w.localName(e.Variable), nil

	case ir.ExprLoad:
		if w.isAtomicPointer(e.Pointer) {
			p, err := w.pointerString(e.Pointer)
			if err != nil {
				return "", err
			}
			return "atomicLoad(" + p + ")", nil
		}
		return w.referenceString(e.Pointer)

	case ir.ExprImageSample:
		return w.imageSampleString(e)

	case ir.ExprImageLoad:
		return w.imageLoadString(e)

	case ir.ExprImageQuery:
		return w.imageQueryString(e)

	case ir.ExprUnary:
		v, err := w.expressionString(e.Expr)
		if err != nil {
			return "", err
		}
		switch e.Op {
		case ir.UnaryNegate:
			return "-(" + v + ")", nil
		case ir.UnaryLogicalNot:
			return "!(" + v + ")", nil
		case ir.UnaryBitwiseNot:
			return "~(" + v + ")", nil
		}
		return "", fmt.Errorf("[%d]: unsupported unary operator %d", h, e.Op)

	case ir.ExprBinary:
		return w.binaryString(e)

	case ir.ExprSelect:
		reject, err := w.expressionString(e.Reject)
		if err != nil {
			return "", err
		}
		accept, err := w.expressionString(e.Accept)
		if err != nil {
			return "", err
		}
		cond, err := w.expressionString(e.Condition)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("select(%s, %s, %s)", reject, accept, cond), nil

	case ir.ExprDerivative:
		v, err := w.expressionString(e.Expr)
		if err != nil {
			return "", err
		}
		var name string
		switch e.Axis {
		case ir.DerivativeX:
			name = "dpdx"
		case ir.DerivativeY:
			name = "dpdy"
		default:
			name = "fwidth"
		}
		switch e.Control {
		case ir.DerivativeCoarse:
			name += "Coarse"
		case ir.DerivativeFine:
			name += "Fine"
		}
		return name + "(" + v + ")", nil

	case ir.ExprRelational:
		v, err := w.expressionString(e.Argument)
		if err != nil {
			return "", err
		}
		switch e.Fun {
		case ir.RelationalAll:
			return "all(" + v + ")", nil
		case ir.RelationalAny:
			return "any(" + v + ")", nil
		case ir.RelationalIsNan:
			// WGSL has no isNan builtin.
			return fmt.Sprintf("(%s != %s)", v, v), nil
		case ir.RelationalIsInf:
			return fmt.Sprintf("((%s == %s) & ((%s - %s) != (%s - %s)))", v, v, v, v, v, v), nil
		}
		return "", fmt.Errorf("[%d]: unsupported relational function %d", h, e.Fun)

	case ir.ExprMath:
		return w.mathString(e)

	case ir.ExprAs:
		return w.asString(e)

	case ir.ExprArrayLength:
		p, err := w.pointerString(e.Array)
		if err != nil {
			return "", err
		}
		return "arrayLength(" + p + ")", nil

	case ir.ExprCallResult, ir.ExprAtomicResult, ir.ExprWorkGroupUniformLoadResult:
		return "", fmt.Errorf("[%d]: result used before the statement producing it", h)

	default:
		return "", fmt.Errorf("[%d]: unsupported expression %T", h, e)
	}
}

// accessBase returns the text of a composite being indexed. Pointer values
// are dereferenced first.
func (w *Writer) accessBase(h ir.ExpressionHandle) (string, error) {
	return w.referenceString(h)
}

func (w *Writer) accessIndexString(e ir.ExprAccessIndex) (string, error) {
	base, err := w.accessBase(e.Base)
	if err != nil {
		return "", err
	}

	res := w.currentInfo.Type(e.Base)
	inner := w.resolveInner(res)
	var structHandle *ir.TypeHandle
	if res.Handle != nil {
		structHandle = res.Handle
	}
	if pointee, sh := w.pointeeInner(inner); pointee != nil {
		inner, structHandle = pointee, sh
	}

	switch inner.(type) {
	case ir.StructType:
		if structHandle == nil {
			return "", fmt.Errorf("member access on an unnamed struct")
		}
		member := w.names[nameKey{kind: nameKeyStructMember, handle1: uint32(*structHandle), handle2: e.Index}]
		return base + "." + member, nil
	case ir.VectorType:
		if e.Index > 3 {
			return "", fmt.Errorf("vector component %d out of range", e.Index)
		}
		return base + "." + string("xyzw"[e.Index]), nil
	}
	return fmt.Sprintf("%s[%d]", base, e.Index), nil
}

var binaryOperators = map[ir.BinaryOperator]string{
	ir.BinaryAdd:          "+",
	ir.BinarySubtract:     "-",
	ir.BinaryMultiply:     "*",
	ir.BinaryDivide:       "/",
	ir.BinaryModulo:       "%",
	ir.BinaryEqual:        "==",
	ir.BinaryNotEqual:     "!=",
	ir.BinaryLess:         "<",
	ir.BinaryLessEqual:    "<=",
	ir.BinaryGreater:      ">",
	ir.BinaryGreaterEqual: ">=",
	ir.BinaryAnd:          "&",
	ir.BinaryExclusiveOr:  "^",
	ir.BinaryInclusiveOr:  "|",
	ir.BinaryLogicalAnd:   "&&",
	ir.BinaryLogicalOr:    "||",
	ir.BinaryShiftLeft:    "<<",
	ir.BinaryShiftRight:   ">>",
}

func (w *Writer) binaryString(e ir.ExprBinary) (string, error) {
	op, ok := binaryOperators[e.Op]
	if !ok {
		return "", fmt.Errorf("unsupported binary operator %d", e.Op)
	}
	left, err := w.expressionString(e.Left)
	if err != nil {
		return "", err
	}
	right, err := w.expressionString(e.Right)
	if err != nil {
		return "", err
	}

	switch e.Op {
	case ir.BinaryLogicalAnd, ir.BinaryLogicalOr:
		// Short-circuit operators only take scalars.
		if _, isVector := w.expressionInner(e.Left).(ir.VectorType); isVector {
			op = op[:1]
		}
	case ir.BinaryShiftLeft, ir.BinaryShiftRight:
		// Shift amounts must be unsigned.
		if scalar, size, ok := scalarOf(w.expressionInner(e.Right)); ok && scalar.Kind == ir.ScalarSint {
			if size != 0 {
				right = fmt.Sprintf("vec%d<u32>(%s)", size, right)
			} else {
				right = "u32(" + right + ")"
			}
		}
	}
	return "(" + left + " " + op + " " + right + ")", nil
}

func (w *Writer) asString(e ir.ExprAs) (string, error) {
	v, err := w.expressionString(e.Expr)
	if err != nil {
		return "", err
	}
	src := w.expressionInner(e.Expr)
	if m, ok := src.(ir.MatrixType); ok && e.Convert != nil {
		target := ir.ScalarType{Kind: e.Kind, Width: *e.Convert}
		sn, err := scalarName(target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mat%dx%d<%s>(%s)", m.Columns, m.Rows, sn, v), nil
	}
	scalar, size, ok := scalarOf(src)
	if !ok {
		return "", fmt.Errorf("conversion of a non-scalar value")
	}
	target := ir.ScalarType{Kind: e.Kind, Width: scalar.Width}
	if e.Convert != nil {
		target.Width = *e.Convert
	}
	tn, err := scalarName(target)
	if err != nil {
		return "", err
	}
	if size != 0 {
		tn = fmt.Sprintf("vec%d<%s>", size, tn)
	}
	if e.Convert == nil {
		return "bitcast<" + tn + ">(" + v + ")", nil
	}
	return tn + "(" + v + ")", nil
}

var mathFunctions = map[ir.MathFunction]string{
	ir.MathAbs:                "abs",
	ir.MathMin:                "min",
	ir.MathMax:                "max",
	ir.MathClamp:              "clamp",
	ir.MathSaturate:           "saturate",
	ir.MathCos:                "cos",
	ir.MathCosh:               "cosh",
	ir.MathSin:                "sin",
	ir.MathSinh:               "sinh",
	ir.MathTan:                "tan",
	ir.MathTanh:               "tanh",
	ir.MathAcos:               "acos",
	ir.MathAsin:               "asin",
	ir.MathAtan:               "atan",
	ir.MathAtan2:              "atan2",
	ir.MathAsinh:              "asinh",
	ir.MathAcosh:              "acosh",
	ir.MathAtanh:              "atanh",
	ir.MathRadians:            "radians",
	ir.MathDegrees:            "degrees",
	ir.MathCeil:               "ceil",
	ir.MathFloor:              "floor",
	ir.MathRound:              "round",
	ir.MathFract:              "fract",
	ir.MathTrunc:              "trunc",
	ir.MathModf:               "modf",
	ir.MathFrexp:              "frexp",
	ir.MathLdexp:              "ldexp",
	ir.MathExp:                "exp",
	ir.MathExp2:               "exp2",
	ir.MathLog:                "log",
	ir.MathLog2:               "log2",
	ir.MathPow:                "pow",
	ir.MathDot:                "dot",
	ir.MathDot4I8Packed:       "dot4I8Packed",
	ir.MathDot4U8Packed:       "dot4U8Packed",
	ir.MathCross:              "cross",
	ir.MathDistance:           "distance",
	ir.MathLength:             "length",
	ir.MathNormalize:          "normalize",
	ir.MathFaceForward:        "faceForward",
	ir.MathReflect:            "reflect",
	ir.MathRefract:            "refract",
	ir.MathSign:               "sign",
	ir.MathFma:                "fma",
	ir.MathMix:                "mix",
	ir.MathStep:               "step",
	ir.MathSmoothStep:         "smoothstep",
	ir.MathSqrt:               "sqrt",
	ir.MathInverseSqrt:        "inverseSqrt",
	ir.MathTranspose:          "transpose",
	ir.MathDeterminant:        "determinant",
	ir.MathQuantizeF16:        "quantizeToF16",
	ir.MathCountTrailingZeros: "countTrailingZeros",
	ir.MathCountLeadingZeros:  "countLeadingZeros",
	ir.MathCountOneBits:       "countOneBits",
	ir.MathReverseBits:        "reverseBits",
	ir.MathExtractBits:        "extractBits",
	ir.MathInsertBits:         "insertBits",
	ir.MathFirstTrailingBit:   "firstTrailingBit",
	ir.MathFirstLeadingBit:    "firstLeadingBit",
	ir.MathPack4x8snorm:       "pack4x8snorm",
	ir.MathPack4x8unorm:       "pack4x8unorm",
	ir.MathPack2x16snorm:      "pack2x16snorm",
	ir.MathPack2x16unorm:      "pack2x16unorm",
	ir.MathPack2x16float:      "pack2x16float",
	ir.MathPack4xI8:           "pack4xI8",
	ir.MathPack4xU8:           "pack4xU8",
	ir.MathPack4xI8Clamp:      "pack4xI8Clamp",
	ir.MathPack4xU8Clamp:      "pack4xU8Clamp",
	ir.MathUnpack4x8snorm:     "unpack4x8snorm",
	ir.MathUnpack4x8unorm:     "unpack4x8unorm",
	ir.MathUnpack2x16snorm:    "unpack2x16snorm",
	ir.MathUnpack2x16unorm:    "unpack2x16unorm",
	ir.MathUnpack2x16float:    "unpack2x16float",
	ir.MathUnpack4xI8:         "unpack4xI8",
	ir.MathUnpack4xU8:         "unpack4xU8",
}

func (w *Writer) mathString(e ir.ExprMath) (string, error) {
	name, ok := mathFunctions[e.Fun]
	if !ok {
		switch e.Fun {
		case ir.MathOuter:
			return "", fmt.Errorf("outer product has no WGSL builtin")
		case ir.MathInverse:
			return "", fmt.Errorf("matrix inverse has no WGSL builtin")
		}
		return "", fmt.Errorf("unsupported math function %d", e.Fun)
	}
	args := []ir.ExpressionHandle{e.Arg}
	for _, extra := range []*ir.ExpressionHandle{e.Arg1, e.Arg2, e.Arg3} {
		if extra != nil {
			args = append(args, *extra)
		}
	}
	list, err := w.expressionList(args)
	if err != nil {
		return "", err
	}
	return name + "(" + list + ")", nil
}

// imageSampleString picks the WGSL sampling builtin from the level, depth
// reference and gather settings.
//
//nolint:gocyclo,cyclop,funlen // WGSL splits sampling across many builtins
func (w *Writer) imageSampleString(e ir.ExprImageSample) (string, error) {
	img, ok := w.imageOf(e.Image)
	if !ok {
		return "", fmt.Errorf("sampling a non-image expression")
	}
	depth := img.Class == ir.ImageClassDepth

	image, err := w.expressionString(e.Image)
	if err != nil {
		return "", err
	}
	sampler, err := w.expressionString(e.Sampler)
	if err != nil {
		return "", err
	}
	coord, err := w.expressionString(e.Coordinate)
	if err != nil {
		return "", err
	}
	args := []string{image, sampler, coord}
	if e.ArrayIndex != nil {
		s, err := w.expressionString(*e.ArrayIndex)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}

	var fun string
	switch {
	case e.ClampToEdge:
		return "textureSampleBaseClampToEdge(" + strings.Join(args[:3], ", ") + ")", nil

	case e.Gather != nil:
		if e.DepthRef != nil {
			fun = "textureGatherCompare"
			ref, err := w.expressionString(*e.DepthRef)
			if err != nil {
				return "", err
			}
			args = append(args, ref)
		} else {
			fun = "textureGather"
			if !depth {
				args = append([]string{fmt.Sprintf("%d", *e.Gather)}, args...)
			}
		}

	case e.DepthRef != nil:
		ref, err := w.expressionString(*e.DepthRef)
		if err != nil {
			return "", err
		}
		args = append(args, ref)
		switch e.Level.(type) {
		case ir.SampleLevelAuto:
			fun = "textureSampleCompare"
		case ir.SampleLevelZero:
			fun = "textureSampleCompareLevel"
		default:
			return "", fmt.Errorf("depth comparison at an explicit level other than zero")
		}

	default:
		switch level := e.Level.(type) {
		case ir.SampleLevelAuto:
			fun = "textureSample"
		case ir.SampleLevelZero:
			fun = "textureSampleLevel"
			if depth {
				args = append(args, "0i")
			} else {
				args = append(args, "0.0f")
			}
		case ir.SampleLevelExact:
			fun = "textureSampleLevel"
			s, err := w.expressionString(level.Level)
			if err != nil {
				return "", err
			}
			if depth {
				s = "i32(" + s + ")"
			}
			args = append(args, s)
		case ir.SampleLevelBias:
			fun = "textureSampleBias"
			s, err := w.expressionString(level.Bias)
			if err != nil {
				return "", err
			}
			args = append(args, s)
		case ir.SampleLevelGradient:
			fun = "textureSampleGrad"
			x, err := w.expressionString(level.X)
			if err != nil {
				return "", err
			}
			y, err := w.expressionString(level.Y)
			if err != nil {
				return "", err
			}
			args = append(args, x, y)
		default:
			return "", fmt.Errorf("unsupported sample level %T", e.Level)
		}
	}

	if e.Offset != nil {
		s, err := w.expressionString(*e.Offset)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	return fun + "(" + strings.Join(args, ", ") + ")", nil
}

func (w *Writer) imageLoadString(e ir.ExprImageLoad) (string, error) {
	img, ok := w.imageOf(e.Image)
	if !ok {
		return "", fmt.Errorf("loading from a non-image expression")
	}
	handles := []ir.ExpressionHandle{e.Image, e.Coordinate}
	if e.ArrayIndex != nil {
		handles = append(handles, *e.ArrayIndex)
	}
	switch {
	case e.Sample != nil:
		handles = append(handles, *e.Sample)
	case e.Level != nil:
		handles = append(handles, *e.Level)
	}
	args, err := w.expressionList(handles)
	if err != nil {
		return "", err
	}
	// Sampled and depth textures always take a level or sample index.
	if e.Sample == nil && e.Level == nil && img.Class != ir.ImageClassStorage && img.Class != ir.ImageClassExternal {
		args += ", 0"
	}
	return "textureLoad(" + args + ")", nil
}

func (w *Writer) imageQueryString(e ir.ExprImageQuery) (string, error) {
	image, err := w.expressionString(e.Image)
	if err != nil {
		return "", err
	}
	switch q := e.Query.(type) {
	case ir.ImageQuerySize:
		if q.Level != nil {
			level, err := w.expressionString(*q.Level)
			if err != nil {
				return "", err
			}
			return "textureDimensions(" + image + ", " + level + ")", nil
		}
		return "textureDimensions(" + image + ")", nil
	case ir.ImageQueryNumLevels:
		return "textureNumLevels(" + image + ")", nil
	case ir.ImageQueryNumLayers:
		return "textureNumLayers(" + image + ")", nil
	case ir.ImageQueryNumSamples:
		return "textureNumSamples(" + image + ")", nil
	}
	return "", fmt.Errorf("unsupported image query %T", e.Query)
}
