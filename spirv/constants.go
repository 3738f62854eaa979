package spirv

import (
	"math"

	"github.com/gogpu/naga/ir"
)

// lowerConstant adds a constant and its init expression to the module.
// Composite constituents are lowered first.
func (p *parser) lowerConstant(c *spvConst) (ir.ConstantHandle, error) {
	if c.done {
		return c.handle, nil
	}
	if c.visiting {
		return 0, parseErrorf(-1, "cyclic reference to constant %%%d", c.id)
	}
	c.visiting = true
	defer func() { c.visiting = false }()
	ty, err := p.irType(c.typeID)
	if err != nil {
		return 0, err
	}
	var (
		value ir.ConstantValue
		init  ir.ExpressionKind
	)
	switch c.op {
	case OpConstantTrue, OpSpecConstantTrue, OpConstantFalse, OpSpecConstantFalse:
		v := c.op == OpConstantTrue || c.op == OpSpecConstantTrue
		var bits uint64
		if v {
			bits = 1
		}
		value = ir.ScalarValue{Bits: bits, Kind: ir.ScalarBool}
		init = ir.Literal{Value: ir.LiteralBool(v)}
	case OpConstant, OpSpecConstant:
		s, ok := p.scalarOf(c.typeID)
		if !ok {
			return 0, parseErrorf(-1, "constant %%%d has a non-scalar type", c.id)
		}
		bits, lit, err := scalarLiteral(s, c.operands)
		if err != nil {
			return 0, err
		}
		value = ir.ScalarValue{Bits: bits, Kind: s.Kind}
		init = lit
	case OpConstantComposite, OpSpecConstantComposite:
		comps := make([]ir.ConstantHandle, len(c.operands))
		exprs := make([]ir.ExpressionHandle, len(c.operands))
		for i, id := range c.operands {
			sub, ok := p.consts[id]
			if !ok {
				return 0, parseErrorf(-1, "constant %%%d: constituent %%%d is not a constant", c.id, id)
			}
			h, err := p.lowerConstant(sub)
			if err != nil {
				return 0, err
			}
			comps[i] = h
			exprs[i] = p.module.Constants[h].Init
		}
		value = ir.CompositeValue{Components: comps}
		init = ir.ExprCompose{Type: ty, Components: exprs}
	case OpConstantNull:
		value = ir.ZeroConstantValue{}
		init = ir.ExprZeroValue{Type: ty}
	default:
		return 0, parseErrorf(-1, "unsupported constant instruction %s", c.op)
	}

	initHandle := ir.ExpressionHandle(len(p.module.GlobalExpressions))
	p.module.GlobalExpressions = append(p.module.GlobalExpressions, ir.Expression{Kind: init})
	c.handle = ir.ConstantHandle(len(p.module.Constants))
	c.done = true
	p.module.Constants = append(p.module.Constants, ir.Constant{
		Name:  p.names[c.id],
		Type:  ty,
		Value: value,
		Init:  initHandle,
	})
	return c.handle, nil
}

// scalarLiteral decodes the literal words of a scalar constant.
func scalarLiteral(s ir.ScalarType, words []uint32) (uint64, ir.Literal, error) {
	if len(words) == 0 {
		return 0, ir.Literal{}, parseErrorf(-1, "scalar constant without a value")
	}
	bits := uint64(words[0])
	if s.Width == 8 {
		if len(words) < 2 {
			return 0, ir.Literal{}, parseErrorf(-1, "64-bit constant with a single word")
		}
		bits |= uint64(words[1]) << 32
	}
	var v ir.LiteralValue
	switch {
	case s.Kind == ir.ScalarFloat && s.Width == 4:
		v = ir.LiteralF32(math.Float32frombits(uint32(bits)))
	case s.Kind == ir.ScalarFloat && s.Width == 8:
		v = ir.LiteralF64(math.Float64frombits(bits))
	case s.Kind == ir.ScalarFloat && s.Width == 2:
		v = ir.LiteralF16(halfToFloat(uint16(bits)))
	case s.Kind == ir.ScalarSint && s.Width == 4:
		v = ir.LiteralI32(int32(uint32(bits)))
	case s.Kind == ir.ScalarSint && s.Width == 8:
		v = ir.LiteralI64(int64(bits))
	case s.Kind == ir.ScalarUint && s.Width == 4:
		v = ir.LiteralU32(uint32(bits))
	case s.Kind == ir.ScalarUint && s.Width == 8:
		v = ir.LiteralU64(bits)
	default:
		return 0, ir.Literal{}, parseErrorf(-1, "unsupported scalar constant %v", s)
	}
	return bits, ir.Literal{Value: v}, nil
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h) & 0x3ff
	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3ff
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}

// constUint returns the value of an integer constant.
func (p *parser) constUint(id uint32) (uint32, error) {
	c, ok := p.consts[id]
	if !ok || (c.op != OpConstant && c.op != OpSpecConstant) || len(c.operands) == 0 {
		return 0, parseErrorf(-1, "%%%d is not an integer constant", id)
	}
	if s, ok := p.scalarOf(c.typeID); !ok || s.Kind == ir.ScalarFloat {
		return 0, parseErrorf(-1, "%%%d is not an integer constant", id)
	}
	return c.operands[0], nil
}

// isZeroConstant reports whether id is a float or integer constant zero.
func (p *parser) isZeroConstant(id uint32) bool {
	c, ok := p.consts[id]
	if !ok {
		return false
	}
	if c.op == OpConstantNull {
		return true
	}
	if c.op != OpConstant || len(c.operands) == 0 {
		return false
	}
	for _, w := range c.operands {
		if w != 0 && w != 0x80000000 {
			return false
		}
	}
	return true
}
