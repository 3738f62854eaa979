package spirv

import (
	"github.com/gogpu/naga/ir"
)

// imageOperands holds the optional operands that follow an image operand
// mask.
type imageOperands struct {
	bias, lod        *value
	gradX, gradY     *value
	offset           *value
	sample           *value
	lodIsZeroLiteral bool
}

func (f *funcLowerer) parseImageOperands(ops []uint32) (imageOperands, error) {
	var io imageOperands
	if len(ops) == 0 {
		return io, nil
	}
	mask, rest := ops[0], ops[1:]
	next := func() (*value, error) {
		if len(rest) == 0 {
			return nil, parseErrorf(-1, "image operands: missing operand for mask %#x", mask)
		}
		v, err := f.operand(rest[0])
		if err != nil {
			return nil, err
		}
		rest = rest[1:]
		return &v, nil
	}
	var err error
	if mask&ImageOperandsBias != 0 {
		if io.bias, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsLod != 0 {
		io.lodIsZeroLiteral = len(rest) > 0 && f.p.isZeroConstant(rest[0])
		if io.lod, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsGrad != 0 {
		if io.gradX, err = next(); err != nil {
			return io, err
		}
		if io.gradY, err = next(); err != nil {
			return io, err
		}
	}
	if mask&(ImageOperandsConstOffset|ImageOperandsOffset) != 0 {
		if io.offset, err = next(); err != nil {
			return io, err
		}
	}
	if mask&ImageOperandsConstOffsets != 0 {
		return io, parseErrorf(-1, "image operands: ConstOffsets is not supported")
	}
	if mask&ImageOperandsSample != 0 {
		if io.sample, err = next(); err != nil {
			return io, err
		}
	}
	return io, nil
}

// sampledImageOf returns the image and sampler combined by OpSampledImage.
func (f *funcLowerer) sampledImageOf(id uint32) (sampledImage, error) {
	if s, ok := f.sampled[id]; ok {
		return s, nil
	}
	if inst, ok := f.insts[id]; ok && inst.Opcode == OpSampledImage {
		if err := f.rematerialize(id, inst); err != nil {
			return sampledImage{}, err
		}
		return f.sampled[id], nil
	}
	return sampledImage{}, parseErrorf(-1, "%%%d is not a sampled image", id)
}

func coordinateCount(t *spvType) uint32 {
	switch t.dim {
	case Dim1D:
		return 1
	case Dim2D:
		return 2
	default:
		return 3
	}
}

// splitCoordinate separates the array layer from the coordinate of an
// arrayed image access.
func (f *funcLowerer) splitCoordinate(img *spvType, coord value) (ir.ExpressionHandle, *ir.ExpressionHandle) {
	if !img.arrayed {
		return coord.expr, nil
	}
	n := coordinateCount(img)
	var c ir.ExpressionHandle
	if n == 1 {
		c = f.add(ir.ExprAccessIndex{Base: coord.expr, Index: 0})
	} else {
		pattern := [4]ir.SwizzleComponent{ir.SwizzleX, ir.SwizzleY, ir.SwizzleZ, ir.SwizzleW}
		c = f.add(ir.ExprSwizzle{Size: ir.VectorSize(n), Vector: coord.expr, Pattern: pattern})
	}
	layer := f.add(ir.ExprAccessIndex{Base: coord.expr, Index: n})
	s, _ := f.p.scalarOf(coord.typeID)
	if s.Kind != ir.ScalarSint {
		var conv *uint8
		if s.Kind == ir.ScalarFloat {
			conv = width(4)
		}
		layer = f.add(ir.ExprAs{Expr: layer, Kind: ir.ScalarSint, Convert: conv})
	}
	return c, &layer
}

func (f *funcLowerer) globalOf(h ir.ExpressionHandle) (ir.GlobalVariableHandle, bool) {
	if g, ok := f.fn.Expressions[h].Kind.(ir.ExprGlobalVariable); ok {
		return g.Variable, true
	}
	return 0, false
}

func (f *funcLowerer) imageType(v value) (*spvType, error) {
	t, err := f.p.typeByID(v.typeID)
	if err != nil {
		return nil, err
	}
	if t.kind != kindImage {
		return nil, parseErrorf(-1, "%%%d is not an image", v.typeID)
	}
	return t, nil
}

func (f *funcLowerer) lowerImageInst(inst rawInst) error {
	w := inst.Words
	need := func(n int) error {
		if len(w) < n {
			return parseErrorf(inst.offset, "%s: expected at least %d operands, got %d", inst.Opcode, n, len(w))
		}
		return nil
	}

	switch inst.Opcode {
	case OpSampledImage:
		if err := need(4); err != nil {
			return err
		}
		vs, err := f.operands(w[2], w[3])
		if err != nil {
			return err
		}
		f.sampled[w[1]] = sampledImage{image: vs[0], sampler: vs[1]}
		f.define(w[1], vs[0])
		return nil

	case OpImage:
		if err := need(3); err != nil {
			return err
		}
		s, err := f.sampledImageOf(w[2])
		if err != nil {
			return err
		}
		f.define(w[1], s.image)
		return nil

	case OpImageSampleImplicitLod, OpImageSampleExplicitLod,
		OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod,
		OpImageGather, OpImageDrefGather:
		return f.lowerSample(inst)

	case OpImageFetch, OpImageRead:
		if err := need(4); err != nil {
			return err
		}
		img, err := f.operand(w[2])
		if err != nil {
			return err
		}
		t, err := f.imageType(img)
		if err != nil {
			return err
		}
		coord, err := f.operand(w[3])
		if err != nil {
			return err
		}
		io, err := f.parseImageOperands(w[4:])
		if err != nil {
			return err
		}
		c, layer := f.splitCoordinate(t, coord)
		load := ir.ExprImageLoad{Image: img.expr, Coordinate: c, ArrayIndex: layer}
		if io.sample != nil {
			load.Sample = &io.sample.expr
		}
		switch {
		case io.lod != nil:
			load.Level = &io.lod.expr
		case t.sampled != 2 && !t.ms:
			zero := f.add(ir.Literal{Value: ir.LiteralI32(0)})
			load.Level = &zero
		}
		f.define(w[1], value{f.add(load), w[0]})
		return nil

	case OpImageWrite:
		if err := need(3); err != nil {
			return err
		}
		vs, err := f.operands(w[0], w[1], w[2])
		if err != nil {
			return err
		}
		t, err := f.imageType(vs[0])
		if err != nil {
			return err
		}
		c, layer := f.splitCoordinate(t, vs[1])
		f.push(ir.StmtImageStore{Image: vs[0].expr, Coordinate: c, ArrayIndex: layer, Value: vs[2].expr})
		return nil

	case OpImageQuerySize, OpImageQuerySizeLod:
		if err := need(3); err != nil {
			return err
		}
		img, err := f.operand(w[2])
		if err != nil {
			return err
		}
		t, err := f.imageType(img)
		if err != nil {
			return err
		}
		query := ir.ImageQuerySize{}
		if inst.Opcode == OpImageQuerySizeLod {
			if err := need(4); err != nil {
				return err
			}
			lod, err := f.operand(w[3])
			if err != nil {
				return err
			}
			query.Level = &lod.expr
		}
		h := f.add(ir.ExprImageQuery{Image: img.expr, Query: query})
		if t.arrayed {
			dims := coordinateCount(t)
			if t.dim == DimCube {
				dims = 2
			}
			comps := make([]ir.ExpressionHandle, 0, dims+1)
			if dims == 1 {
				comps = append(comps, h)
			} else {
				for i := uint32(0); i < dims; i++ {
					comps = append(comps, f.add(ir.ExprAccessIndex{Base: h, Index: i}))
				}
			}
			comps = append(comps, f.add(ir.ExprImageQuery{Image: img.expr, Query: ir.ImageQueryNumLayers{}}))
			vec := f.p.addType("", ir.VectorType{
				Size:   ir.VectorSize(dims + 1),
				Scalar: ir.ScalarType{Kind: ir.ScalarUint, Width: 4},
			})
			h = f.add(ir.ExprCompose{Type: vec, Components: comps})
		}
		f.define(w[1], value{f.fromUint(h, w[0]), w[0]})
		return nil

	case OpImageQueryLevels, OpImageQuerySamples:
		if err := need(3); err != nil {
			return err
		}
		img, err := f.operand(w[2])
		if err != nil {
			return err
		}
		var q ir.ImageQuery = ir.ImageQueryNumLevels{}
		if inst.Opcode == OpImageQuerySamples {
			q = ir.ImageQueryNumSamples{}
		}
		h := f.add(ir.ExprImageQuery{Image: img.expr, Query: q})
		f.define(w[1], value{f.fromUint(h, w[0]), w[0]})
		return nil
	}
	return parseErrorf(inst.offset, "unsupported image instruction %s", inst.Opcode)
}

// fromUint converts an unsigned query result to the instruction's type.
func (f *funcLowerer) fromUint(h ir.ExpressionHandle, resultType uint32) ir.ExpressionHandle {
	rs, ok := f.p.scalarOf(resultType)
	if !ok || rs.Kind == ir.ScalarUint {
		return h
	}
	return f.add(ir.ExprAs{Expr: h, Kind: rs.Kind, Convert: width(rs.Width)})
}

func (f *funcLowerer) lowerSample(inst rawInst) error {
	w := inst.Words
	if len(w) < 4 {
		return parseErrorf(inst.offset, "%s: missing operands", inst.Opcode)
	}
	si, err := f.sampledImageOf(w[2])
	if err != nil {
		return err
	}
	t, err := f.imageType(si.image)
	if err != nil {
		return err
	}
	coord, err := f.operand(w[3])
	if err != nil {
		return err
	}
	rest := w[4:]

	sample := ir.ExprImageSample{Image: si.image.expr, Sampler: si.sampler.expr, Level: ir.SampleLevelAuto{}}
	sample.Coordinate, sample.ArrayIndex = f.splitCoordinate(t, coord)

	var dref bool
	switch inst.Opcode {
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod, OpImageDrefGather:
		if len(rest) == 0 {
			return parseErrorf(inst.offset, "%s: missing depth reference", inst.Opcode)
		}
		d, err := f.operand(rest[0])
		if err != nil {
			return err
		}
		sample.DepthRef = &d.expr
		rest = rest[1:]
		dref = true
	case OpImageGather:
		if len(rest) == 0 {
			return parseErrorf(inst.offset, "OpImageGather: missing component")
		}
		comp, err := f.p.constUint(rest[0])
		if err != nil {
			return err
		}
		c := ir.SwizzleComponent(comp)
		sample.Gather = &c
		rest = rest[1:]
	}
	if inst.Opcode == OpImageDrefGather {
		c := ir.SwizzleX
		sample.Gather = &c
	}

	io, err := f.parseImageOperands(rest)
	if err != nil {
		return err
	}
	switch {
	case io.bias != nil:
		sample.Level = ir.SampleLevelBias{Bias: io.bias.expr}
	case io.lod != nil && io.lodIsZeroLiteral:
		sample.Level = ir.SampleLevelZero{}
	case io.lod != nil:
		sample.Level = ir.SampleLevelExact{Level: io.lod.expr}
	case io.gradX != nil:
		sample.Level = ir.SampleLevelGradient{X: io.gradX.expr, Y: io.gradY.expr}
	case sample.Gather != nil:
		sample.Level = ir.SampleLevelZero{}
	}
	if io.offset != nil {
		sample.Offset = &io.offset.expr
	}

	if dref {
		if g, ok := f.globalOf(si.sampler.expr); ok {
			f.p.comparisonSamplers[g] = true
		}
		if g, ok := f.globalOf(si.image.expr); ok {
			f.p.depthImages[g] = true
		}
	}
	f.define(w[1], value{f.add(sample), w[0]})
	return nil
}
