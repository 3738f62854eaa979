// Package layout computes WGSL host-shareable sizes and alignments for IR
// types. Both the SPIR-V front end (to derive struct spans) and the WGSL
// writer (to decide when explicit @size/@align attributes are needed) use it.
package layout

import "github.com/gogpu/naga/ir"

// TypeLayout is the size and alignment of a type in bytes.
type TypeLayout struct {
	Size  uint32
	Align uint32
}

// RoundUp rounds v up to a multiple of align. align must be a power of two
// or zero.
func RoundUp(align, v uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// Of returns the layout of the type behind handle. Unknown handles and
// opaque types yield a zero layout.
func Of(module *ir.Module, handle ir.TypeHandle) TypeLayout {
	if int(handle) >= len(module.Types) {
		return TypeLayout{}
	}
	return OfInner(module, module.Types[handle].Inner)
}

// OfInner returns the layout of an inner type.
func OfInner(module *ir.Module, inner ir.TypeInner) TypeLayout {
	switch t := inner.(type) {
	case ir.ScalarType:
		w := uint32(t.Width)
		return TypeLayout{Size: w, Align: w}
	case ir.AtomicType:
		w := uint32(t.Scalar.Width)
		return TypeLayout{Size: w, Align: w}
	case ir.VectorType:
		return vector(t.Size, t.Scalar)
	case ir.MatrixType:
		col := vector(t.Rows, t.Scalar)
		stride := RoundUp(col.Align, col.Size)
		return TypeLayout{Size: stride * uint32(t.Columns), Align: col.Align}
	case ir.ArrayType:
		elem := Of(module, t.Base)
		stride := ArrayStride(module, t.Base)
		if t.Stride != 0 {
			stride = t.Stride
		}
		count := uint32(1)
		if t.Size.Constant != nil {
			count = *t.Size.Constant
		}
		return TypeLayout{Size: stride * count, Align: elem.Align}
	case ir.StructType:
		align := uint32(1)
		for _, m := range t.Members {
			if a := Of(module, m.Type).Align; a > align {
				align = a
			}
		}
		size := t.Span
		if size == 0 {
			size = StructSpan(module, t.Members)
		}
		return TypeLayout{Size: RoundUp(align, size), Align: align}
	default:
		return TypeLayout{}
	}
}

// ArrayStride is the natural element stride of an array of base.
func ArrayStride(module *ir.Module, base ir.TypeHandle) uint32 {
	l := Of(module, base)
	return RoundUp(l.Align, l.Size)
}

// StructSpan computes the span of a struct whose members carry offsets.
// The result covers the last member and is rounded up to the struct
// alignment.
func StructSpan(module *ir.Module, members []ir.StructMember) uint32 {
	var end, align uint32 = 0, 1
	for _, m := range members {
		l := Of(module, m.Type)
		if e := m.Offset + l.Size; e > end {
			end = e
		}
		if l.Align > align {
			align = l.Align
		}
	}
	return RoundUp(align, end)
}

// NaturalOffsets assigns offsets to members following the WGSL layout rules.
func NaturalOffsets(module *ir.Module, members []ir.StructMember) {
	var offset uint32
	for i := range members {
		l := Of(module, members[i].Type)
		offset = RoundUp(l.Align, offset)
		members[i].Offset = offset
		offset += l.Size
	}
}

func vector(size ir.VectorSize, scalar ir.ScalarType) TypeLayout {
	w := uint32(scalar.Width)
	switch size {
	case ir.Vec2:
		return TypeLayout{Size: 2 * w, Align: 2 * w}
	case ir.Vec3:
		return TypeLayout{Size: 3 * w, Align: 4 * w}
	default:
		return TypeLayout{Size: 4 * w, Align: 4 * w}
	}
}
