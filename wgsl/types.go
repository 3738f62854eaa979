// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

// typeName returns the WGSL spelling of a type. Structs are referenced by
// their registered name.
func (w *Writer) typeName(handle ir.TypeHandle) (string, error) {
	if int(handle) >= len(w.module.Types) {
		return "", fmt.Errorf("invalid type handle %d", handle)
	}
	if _, ok := w.module.Types[handle].Inner.(ir.StructType); ok {
		return w.names[nameKey{kind: nameKeyType, handle1: uint32(handle)}], nil
	}
	return w.typeInnerName(w.module.Types[handle].Inner)
}

//nolint:gocyclo,cyclop // one case per type kind
func (w *Writer) typeInnerName(inner ir.TypeInner) (string, error) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarName(t)
	case ir.VectorType:
		s, err := scalarName(t.Scalar)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("vec%d<%s>", t.Size, s), nil
	case ir.MatrixType:
		s, err := scalarName(t.Scalar)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, s), nil
	case ir.AtomicType:
		s, err := scalarName(t.Scalar)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("atomic<%s>", s), nil
	case ir.ArrayType:
		base, err := w.typeName(t.Base)
		if err != nil {
			return "", err
		}
		if t.Size.Constant != nil {
			return fmt.Sprintf("array<%s, %d>", base, *t.Size.Constant), nil
		}
		return fmt.Sprintf("array<%s>", base), nil
	case ir.BindingArrayType:
		base, err := w.typeName(t.Base)
		if err != nil {
			return "", err
		}
		if t.Size != nil {
			return fmt.Sprintf("binding_array<%s, %d>", base, *t.Size), nil
		}
		return fmt.Sprintf("binding_array<%s>", base), nil
	case ir.PointerType:
		base, err := w.typeName(t.Base)
		if err != nil {
			return "", err
		}
		return pointerTypeName(t.Space, base)
	case ir.ValuePointerType:
		s, err := scalarName(t.Scalar)
		if err != nil {
			return "", err
		}
		if t.Size != nil {
			s = fmt.Sprintf("vec%d<%s>", *t.Size, s)
		}
		return pointerTypeName(t.Space, s)
	case ir.SamplerType:
		if t.Comparison {
			return "sampler_comparison", nil
		}
		return "sampler", nil
	case ir.ImageType:
		return imageTypeName(t)
	case ir.StructType:
		return "", fmt.Errorf("anonymous struct type")
	}
	return "", fmt.Errorf("unsupported type %T", inner)
}

func pointerTypeName(space ir.AddressSpace, base string) (string, error) {
	switch space {
	case ir.SpaceFunction:
		return fmt.Sprintf("ptr<function, %s>", base), nil
	case ir.SpacePrivate:
		return fmt.Sprintf("ptr<private, %s>", base), nil
	case ir.SpaceWorkGroup:
		return fmt.Sprintf("ptr<workgroup, %s>", base), nil
	case ir.SpaceUniform:
		return fmt.Sprintf("ptr<uniform, %s>", base), nil
	case ir.SpaceStorage:
		return fmt.Sprintf("ptr<storage, %s, read_write>", base), nil
	}
	return "", fmt.Errorf("pointer into address space %d", space)
}

func scalarName(s ir.ScalarType) (string, error) {
	switch s.Kind {
	case ir.ScalarBool:
		return "bool", nil
	case ir.ScalarSint:
		if s.Width == 4 {
			return "i32", nil
		}
	case ir.ScalarUint:
		if s.Width == 4 {
			return "u32", nil
		}
	case ir.ScalarFloat:
		switch s.Width {
		case 4:
			return "f32", nil
		case 2:
			return "f16", nil
		}
	}
	return "", fmt.Errorf("unsupported scalar type (kind %d, width %d)", s.Kind, s.Width)
}

func imageTypeName(t ir.ImageType) (string, error) {
	var dim string
	switch t.Dim {
	case ir.Dim1D:
		dim = "1d"
	case ir.Dim2D:
		dim = "2d"
	case ir.Dim3D:
		dim = "3d"
	case ir.DimCube:
		dim = "cube"
	default:
		return "", fmt.Errorf("unsupported image dimension %d", t.Dim)
	}
	arrayed := ""
	if t.Arrayed {
		arrayed = "_array"
	}

	switch t.Class {
	case ir.ImageClassSampled:
		kind, err := scalarName(ir.ScalarType{Kind: t.SampledKind, Width: 4})
		if err != nil {
			return "", err
		}
		if t.Multisampled {
			return fmt.Sprintf("texture_multisampled_%s%s<%s>", dim, arrayed, kind), nil
		}
		return fmt.Sprintf("texture_%s%s<%s>", dim, arrayed, kind), nil
	case ir.ImageClassDepth:
		if t.Multisampled {
			return fmt.Sprintf("texture_depth_multisampled_%s%s", dim, arrayed), nil
		}
		return fmt.Sprintf("texture_depth_%s%s", dim, arrayed), nil
	case ir.ImageClassStorage:
		format, ok := storageFormatNames[t.StorageFormat]
		if !ok {
			return "", fmt.Errorf("storage texture without a WGSL format (%d)", t.StorageFormat)
		}
		access, err := storageAccessName(t.StorageAccess)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("texture_storage_%s%s<%s, %s>", dim, arrayed, format, access), nil
	case ir.ImageClassExternal:
		return "texture_external", nil
	}
	return "", fmt.Errorf("unsupported image class %d", t.Class)
}

func storageAccessName(a ir.StorageAccess) (string, error) {
	switch a {
	case ir.StorageAccessRead:
		return "read", nil
	case ir.StorageAccessWrite:
		return "write", nil
	case ir.StorageAccessReadWrite:
		return "read_write", nil
	case ir.StorageAccessAtomic:
		return "atomic", nil
	}
	return "", fmt.Errorf("unsupported storage access %d", a)
}

var storageFormatNames = map[ir.StorageFormat]string{
	ir.StorageFormatR8Unorm:       "r8unorm",
	ir.StorageFormatR8Snorm:       "r8snorm",
	ir.StorageFormatR8Uint:        "r8uint",
	ir.StorageFormatR8Sint:        "r8sint",
	ir.StorageFormatR16Uint:       "r16uint",
	ir.StorageFormatR16Sint:       "r16sint",
	ir.StorageFormatR16Float:      "r16float",
	ir.StorageFormatRg8Unorm:      "rg8unorm",
	ir.StorageFormatRg8Snorm:      "rg8snorm",
	ir.StorageFormatRg8Uint:       "rg8uint",
	ir.StorageFormatRg8Sint:       "rg8sint",
	ir.StorageFormatR32Uint:       "r32uint",
	ir.StorageFormatR32Sint:       "r32sint",
	ir.StorageFormatR32Float:      "r32float",
	ir.StorageFormatRg16Uint:      "rg16uint",
	ir.StorageFormatRg16Sint:      "rg16sint",
	ir.StorageFormatRg16Float:     "rg16float",
	ir.StorageFormatRgba8Unorm:    "rgba8unorm",
	ir.StorageFormatRgba8Snorm:    "rgba8snorm",
	ir.StorageFormatRgba8Uint:     "rgba8uint",
	ir.StorageFormatRgba8Sint:     "rgba8sint",
	ir.StorageFormatBgra8Unorm:    "bgra8unorm",
	ir.StorageFormatRgb10a2Uint:   "rgb10a2uint",
	ir.StorageFormatRgb10a2Unorm:  "rgb10a2unorm",
	ir.StorageFormatRg11b10Ufloat: "rg11b10ufloat",
	ir.StorageFormatRg32Uint:      "rg32uint",
	ir.StorageFormatRg32Sint:      "rg32sint",
	ir.StorageFormatRg32Float:     "rg32float",
	ir.StorageFormatRgba16Uint:    "rgba16uint",
	ir.StorageFormatRgba16Sint:    "rgba16sint",
	ir.StorageFormatRgba16Float:   "rgba16float",
	ir.StorageFormatRgba32Uint:    "rgba32uint",
	ir.StorageFormatRgba32Sint:    "rgba32sint",
	ir.StorageFormatRgba32Float:   "rgba32float",
	ir.StorageFormatR16Unorm:      "r16unorm",
	ir.StorageFormatR16Snorm:      "r16snorm",
	ir.StorageFormatRg16Unorm:     "rg16unorm",
	ir.StorageFormatRg16Snorm:     "rg16snorm",
	ir.StorageFormatRgba16Unorm:   "rgba16unorm",
	ir.StorageFormatRgba16Snorm:   "rgba16snorm",
}

// resolveInner returns the inner type behind a type resolution.
func (w *Writer) resolveInner(res ir.TypeResolution) ir.TypeInner {
	if res.Handle != nil {
		if int(*res.Handle) < len(w.module.Types) {
			return w.module.Types[*res.Handle].Inner
		}
		return nil
	}
	return res.Value
}

// expressionInner returns the resolved inner type of an expression in the
// current function.
func (w *Writer) expressionInner(h ir.ExpressionHandle) ir.TypeInner {
	return w.resolveInner(w.currentInfo.Type(h))
}

// resolutionName spells a type resolution.
func (w *Writer) resolutionName(res ir.TypeResolution) (string, error) {
	if res.Handle != nil {
		return w.typeName(*res.Handle)
	}
	if res.Value == nil {
		return "", fmt.Errorf("unresolved expression type")
	}
	return w.typeInnerName(res.Value)
}

// pointeeInner returns the type a pointer resolution points to, along with
// the struct handle when the pointee is a struct.
func (w *Writer) pointeeInner(inner ir.TypeInner) (ir.TypeInner, *ir.TypeHandle) {
	switch t := inner.(type) {
	case ir.PointerType:
		if int(t.Base) < len(w.module.Types) {
			base := t.Base
			return w.module.Types[base].Inner, &base
		}
	case ir.ValuePointerType:
		if t.Size != nil {
			return ir.VectorType{Size: *t.Size, Scalar: t.Scalar}, nil
		}
		return t.Scalar, nil
	}
	return nil, nil
}

// imageOf returns the image type of an image expression.
func (w *Writer) imageOf(h ir.ExpressionHandle) (ir.ImageType, bool) {
	t, ok := w.expressionInner(h).(ir.ImageType)
	return t, ok
}

// scalarOf returns the scalar type and vector size of a scalar or vector
// inner type. The size is zero for scalars.
func scalarOf(inner ir.TypeInner) (ir.ScalarType, ir.VectorSize, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t, 0, true
	case ir.VectorType:
		return t.Scalar, t.Size, true
	}
	return ir.ScalarType{}, 0, false
}
