package spirv

import (
	"fmt"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/layout"
)

type typeKind uint8

const (
	kindVoid typeKind = iota
	kindBool
	kindInt
	kindFloat
	kindVector
	kindMatrix
	kindArray
	kindRuntimeArray
	kindStruct
	kindPointer
	kindFunction
	kindImage
	kindSampler
	kindSampledImage
)

// spvType is a SPIR-V type declaration.
type spvType struct {
	id   uint32
	kind typeKind

	width  uint32 // int, float
	signed bool   // int

	// element: vector component, matrix column, array element, pointer
	// pointee, sampled image's image type
	elem  uint32
	count uint32 // vector size, matrix columns, array length constant id

	members []uint32 // struct
	class   StorageClass
	ret     uint32   // function
	params  []uint32 // function

	// image
	dim     Dim
	depth   uint32
	arrayed bool
	ms      bool
	sampled uint32
	format  uint32

	lowered  bool
	lowering bool
	handle   ir.TypeHandle
}

func decodeType(inst rawInst) (*spvType, error) {
	w := inst.Words
	if len(w) < 1 {
		return nil, parseErrorf(inst.offset, "%s: missing result id", inst.Opcode)
	}
	t := &spvType{id: w[0]}
	need := func(n int) error {
		if len(w) < n {
			return parseErrorf(inst.offset, "%s: expected %d operands, got %d", inst.Opcode, n, len(w))
		}
		return nil
	}
	var err error
	switch inst.Opcode {
	case OpTypeVoid:
		t.kind = kindVoid
	case OpTypeBool:
		t.kind = kindBool
	case OpTypeInt:
		if err = need(3); err == nil {
			t.kind, t.width, t.signed = kindInt, w[1], w[2] != 0
		}
	case OpTypeFloat:
		if err = need(2); err == nil {
			t.kind, t.width = kindFloat, w[1]
		}
	case OpTypeVector:
		if err = need(3); err == nil {
			t.kind, t.elem, t.count = kindVector, w[1], w[2]
		}
	case OpTypeMatrix:
		if err = need(3); err == nil {
			t.kind, t.elem, t.count = kindMatrix, w[1], w[2]
		}
	case OpTypeArray:
		if err = need(3); err == nil {
			t.kind, t.elem, t.count = kindArray, w[1], w[2]
		}
	case OpTypeRuntimeArray:
		if err = need(2); err == nil {
			t.kind, t.elem = kindRuntimeArray, w[1]
		}
	case OpTypeStruct:
		t.kind = kindStruct
		t.members = append([]uint32(nil), w[1:]...)
	case OpTypePointer:
		if err = need(3); err == nil {
			t.kind, t.class, t.elem = kindPointer, StorageClass(w[1]), w[2]
		}
	case OpTypeFunction:
		if err = need(2); err == nil {
			t.kind, t.ret = kindFunction, w[1]
			t.params = append([]uint32(nil), w[2:]...)
		}
	case OpTypeImage:
		if err = need(8); err == nil {
			t.kind = kindImage
			t.elem = w[1]
			t.dim = Dim(w[2])
			t.depth = w[3]
			t.arrayed = w[4] != 0
			t.ms = w[5] != 0
			t.sampled = w[6]
			t.format = w[7]
		}
	case OpTypeSampler:
		t.kind = kindSampler
	case OpTypeSampledImage:
		if err = need(2); err == nil {
			t.kind, t.elem = kindSampledImage, w[1]
		}
	}
	return t, err
}

func (p *parser) typeByID(id uint32) (*spvType, error) {
	t, ok := p.types[id]
	if !ok {
		return nil, parseErrorf(-1, "unknown type %%%d", id)
	}
	return t, nil
}

// pointee returns the pointee type of a pointer type id.
func (p *parser) pointee(ptrType uint32) (*spvType, error) {
	t, err := p.typeByID(ptrType)
	if err != nil {
		return nil, err
	}
	if t.kind != kindPointer {
		return nil, parseErrorf(-1, "type %%%d is not a pointer", ptrType)
	}
	return p.typeByID(t.elem)
}

// scalarOf returns the scalar of a scalar or vector type.
func (p *parser) scalarOf(id uint32) (ir.ScalarType, bool) {
	t, ok := p.types[id]
	if !ok {
		return ir.ScalarType{}, false
	}
	switch t.kind {
	case kindBool:
		return ir.ScalarType{Kind: ir.ScalarBool, Width: 1}, true
	case kindInt:
		k := ir.ScalarUint
		if t.signed {
			k = ir.ScalarSint
		}
		return ir.ScalarType{Kind: k, Width: uint8(t.width / 8)}, true
	case kindFloat:
		return ir.ScalarType{Kind: ir.ScalarFloat, Width: uint8(t.width / 8)}, true
	case kindVector:
		if e, ok := p.types[t.elem]; !ok || e.kind == kindVector {
			return ir.ScalarType{}, false
		}
		return p.scalarOf(t.elem)
	}
	return ir.ScalarType{}, false
}

// vectorSize returns the component count of a vector type, or 0 for scalars.
func (p *parser) vectorSize(id uint32) uint32 {
	if t, ok := p.types[id]; ok && t.kind == kindVector {
		return t.count
	}
	return 0
}

// addType registers inner under name, reusing an identical unnamed or
// equally named type. Structs are never deduplicated.
func (p *parser) addType(name string, inner ir.TypeInner) ir.TypeHandle {
	key := ""
	if _, isStruct := inner.(ir.StructType); !isStruct {
		key = name + "|" + typeKey(inner)
		if h, ok := p.typeKeys[key]; ok {
			return h
		}
	}
	h := ir.TypeHandle(len(p.module.Types))
	p.module.Types = append(p.module.Types, ir.Type{Name: name, Inner: inner})
	if key != "" {
		p.typeKeys[key] = h
	}
	return h
}

func typeKey(inner ir.TypeInner) string {
	switch t := inner.(type) {
	case ir.ArrayType:
		size := "rt"
		if t.Size.Constant != nil {
			size = fmt.Sprint(*t.Size.Constant)
		}
		return fmt.Sprintf("array(%d,%s,%d)", t.Base, size, t.Stride)
	case ir.ValuePointerType:
		size := "s"
		if t.Size != nil {
			size = fmt.Sprint(*t.Size)
		}
		return fmt.Sprintf("vptr(%s,%v,%d)", size, t.Scalar, t.Space)
	default:
		return fmt.Sprintf("%T%+v", inner, inner)
	}
}

// irType lowers a SPIR-V type to an IR type handle.
func (p *parser) irType(id uint32) (ir.TypeHandle, error) {
	t, err := p.typeByID(id)
	if err != nil {
		return 0, err
	}
	if t.lowered {
		return t.handle, nil
	}
	if t.lowering {
		return 0, parseErrorf(-1, "cyclic reference to type %%%d", id)
	}
	t.lowering = true
	inner, name, err := p.lowerTypeInner(t)
	t.lowering = false
	if err != nil {
		return 0, err
	}
	h := p.addType(name, inner)
	t.lowered, t.handle = true, h
	return h, nil
}

func (p *parser) lowerTypeInner(t *spvType) (ir.TypeInner, string, error) {
	switch t.kind {
	case kindVoid:
		return nil, "", parseErrorf(-1, "void type %%%d has no value representation", t.id)
	case kindBool, kindInt, kindFloat:
		s, _ := p.scalarOf(t.id)
		return s, "", nil
	case kindVector:
		s, ok := p.scalarOf(t.elem)
		if !ok {
			return nil, "", parseErrorf(-1, "vector %%%d has a non-scalar component", t.id)
		}
		return ir.VectorType{Size: ir.VectorSize(t.count), Scalar: s}, "", nil
	case kindMatrix:
		col, err := p.typeByID(t.elem)
		if err != nil {
			return nil, "", err
		}
		if col.kind != kindVector {
			return nil, "", parseErrorf(-1, "matrix %%%d has a non-vector column", t.id)
		}
		s, _ := p.scalarOf(col.elem)
		return ir.MatrixType{Columns: ir.VectorSize(t.count), Rows: ir.VectorSize(col.count), Scalar: s}, "", nil
	case kindArray, kindRuntimeArray:
		base, err := p.irType(t.elem)
		if err != nil {
			return nil, "", err
		}
		arr := ir.ArrayType{Base: base, Stride: p.decorationOf(t.id).arrayStride}
		if arr.Stride == 0 {
			arr.Stride = layout.ArrayStride(p.module, base)
		}
		if t.kind == kindArray {
			n, err := p.constUint(t.count)
			if err != nil {
				return nil, "", err
			}
			arr.Size = ir.ArraySize{Constant: &n}
		}
		return arr, "", nil
	case kindStruct:
		return p.lowerStruct(t)
	case kindPointer:
		base, err := p.irType(t.elem)
		if err != nil {
			return nil, "", err
		}
		return ir.PointerType{Base: base, Space: p.addressSpace(t.class, 0)}, "", nil
	case kindImage:
		img, err := p.lowerImage(t, ir.StorageAccessReadWrite)
		return img, "", err
	case kindSampler:
		return ir.SamplerType{}, "", nil
	case kindSampledImage:
		return nil, "", parseErrorf(-1, "combined image samplers are not supported")
	}
	return nil, "", parseErrorf(-1, "type %%%d cannot be lowered", t.id)
}

func (p *parser) lowerStruct(t *spvType) (ir.TypeInner, string, error) {
	members := make([]ir.StructMember, len(t.members))
	used := make(map[string]bool)
	explicit := true
	for i, m := range t.members {
		h, err := p.irType(m)
		if err != nil {
			return nil, "", err
		}
		name := p.memberNames[memberKey{t.id, uint32(i)}]
		if name == "" {
			name = fmt.Sprintf("member_%d", i)
		}
		for base, n := name, 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		members[i] = ir.StructMember{Name: name, Type: h}
		if off := p.memberDecorationOf(t.id, uint32(i)).offset; off != nil {
			members[i].Offset = *off
		} else {
			explicit = false
		}
	}
	if !explicit {
		layout.NaturalOffsets(p.module, members)
	}
	return ir.StructType{Members: members, Span: layout.StructSpan(p.module, members)}, p.names[t.id], nil
}

func (p *parser) lowerImage(t *spvType, access ir.StorageAccess) (ir.ImageType, error) {
	img := ir.ImageType{Arrayed: t.arrayed, Multisampled: t.ms}
	switch t.dim {
	case Dim1D:
		img.Dim = ir.Dim1D
	case Dim2D:
		img.Dim = ir.Dim2D
	case Dim3D:
		img.Dim = ir.Dim3D
	case DimCube:
		img.Dim = ir.DimCube
	default:
		return img, parseErrorf(-1, "unsupported image dimension %d", t.dim)
	}
	if t.sampled == 2 {
		format, ok := storageFormats[t.format]
		if !ok {
			return img, parseErrorf(-1, "unsupported storage image format %d", t.format)
		}
		img.Class = ir.ImageClassStorage
		img.StorageFormat = format
		img.StorageAccess = access
		return img, nil
	}
	s, ok := p.scalarOf(t.elem)
	if !ok {
		return img, parseErrorf(-1, "image %%%d has a non-scalar sampled type", t.id)
	}
	img.Class = ir.ImageClassSampled
	img.SampledKind = s.Kind
	return img, nil
}

// storageFormats maps SPIR-V image formats to IR storage formats.
var storageFormats = map[uint32]ir.StorageFormat{
	1:  ir.StorageFormatRgba32Float,
	2:  ir.StorageFormatRgba16Float,
	3:  ir.StorageFormatR32Float,
	4:  ir.StorageFormatRgba8Unorm,
	5:  ir.StorageFormatRgba8Snorm,
	6:  ir.StorageFormatRg32Float,
	7:  ir.StorageFormatRg16Float,
	8:  ir.StorageFormatRg11b10Ufloat,
	9:  ir.StorageFormatR16Float,
	10: ir.StorageFormatRgba16Unorm,
	11: ir.StorageFormatRgb10a2Unorm,
	12: ir.StorageFormatRg16Unorm,
	13: ir.StorageFormatRg8Unorm,
	14: ir.StorageFormatR16Unorm,
	15: ir.StorageFormatR8Unorm,
	16: ir.StorageFormatRgba16Snorm,
	17: ir.StorageFormatRg16Snorm,
	18: ir.StorageFormatRg8Snorm,
	19: ir.StorageFormatR16Snorm,
	20: ir.StorageFormatR8Snorm,
	21: ir.StorageFormatRgba32Sint,
	22: ir.StorageFormatRgba16Sint,
	23: ir.StorageFormatRgba8Sint,
	24: ir.StorageFormatR32Sint,
	25: ir.StorageFormatRg32Sint,
	26: ir.StorageFormatRg16Sint,
	27: ir.StorageFormatRg8Sint,
	28: ir.StorageFormatR16Sint,
	29: ir.StorageFormatR8Sint,
	30: ir.StorageFormatRgba32Uint,
	31: ir.StorageFormatRgba16Uint,
	32: ir.StorageFormatRgba8Uint,
	33: ir.StorageFormatR32Uint,
	34: ir.StorageFormatRgb10a2Uint,
	35: ir.StorageFormatRg32Uint,
	36: ir.StorageFormatRg16Uint,
	37: ir.StorageFormatRg8Uint,
	38: ir.StorageFormatR16Uint,
	39: ir.StorageFormatR8Uint,
}

// addressSpace maps a storage class to an IR address space. decorated is
// the pointee struct type id used to tell uniform blocks from buffer blocks.
func (p *parser) addressSpace(class StorageClass, decorated uint32) ir.AddressSpace {
	switch class {
	case StorageClassUniformConstant:
		return ir.SpaceHandle
	case StorageClassUniform:
		if decorated != 0 && p.decorationOf(decorated).bufferBlock {
			return ir.SpaceStorage
		}
		return ir.SpaceUniform
	case StorageClassStorageBuffer:
		return ir.SpaceStorage
	case StorageClassPushConstant:
		return ir.SpacePushConstant
	case StorageClassWorkgroup:
		return ir.SpaceWorkGroup
	case StorageClassFunction:
		return ir.SpaceFunction
	default:
		return ir.SpacePrivate
	}
}
