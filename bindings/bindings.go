// Package bindings reflects the resource bindings of a validated module
// into WebGPU bind group layouts.
//
// Only globals used by at least one entry point are reflected. The
// visibility of an entry is the set of stages whose entry points use it.
package bindings

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/layout"
	"github.com/gogpu/wgslgen/valid"
)

// MaxGroups bounds the bind group index a resource may use.
const MaxGroups = 32

// Binding is one reflected resource.
type Binding struct {
	Name  string
	Group uint32
	Entry gputypes.BindGroupLayoutEntry
}

// Reflect returns one bind group layout per group index, from 0 up to the
// highest group used. Entries are sorted by binding number. Groups between
// used ones are empty.
func Reflect(module *ir.Module, info *valid.ModuleInfo) ([]gputypes.BindGroupLayoutDescriptor, error) {
	list, err := Collect(module, info)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	groups := make([]gputypes.BindGroupLayoutDescriptor, list[len(list)-1].Group+1)
	for i := range groups {
		groups[i].Label = fmt.Sprintf("group %d", i)
	}
	for _, b := range list {
		groups[b.Group].Entries = append(groups[b.Group].Entries, b.Entry)
	}
	return groups, nil
}

// Collect returns the reflected bindings sorted by group and binding.
func Collect(module *ir.Module, info *valid.ModuleInfo) ([]Binding, error) {
	if info == nil || info.Module() != module {
		return nil, fmt.Errorf("bindings: validation info belongs to another module")
	}

	var list []Binding
	for i := range module.GlobalVariables {
		g := &module.GlobalVariables[i]
		if g.Binding == nil {
			continue
		}
		visibility := visibilityOf(module, info, ir.GlobalVariableHandle(i))
		if visibility == gputypes.ShaderStageNone {
			continue
		}
		if g.Binding.Group >= MaxGroups {
			return nil, fmt.Errorf("bindings: global %q: @group(%d) is out of range, want less than %d",
				g.Name, g.Binding.Group, MaxGroups)
		}
		entry := gputypes.BindGroupLayoutEntry{
			Binding:    g.Binding.Binding,
			Visibility: visibility,
		}
		if err := describe(module, g, &entry); err != nil {
			return nil, fmt.Errorf("bindings: global %q: %w", g.Name, err)
		}
		list = append(list, Binding{Name: g.Name, Group: g.Binding.Group, Entry: entry})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Group != list[j].Group {
			return list[i].Group < list[j].Group
		}
		return list[i].Entry.Binding < list[j].Entry.Binding
	})
	for i := 1; i < len(list); i++ {
		if list[i].Group == list[i-1].Group && list[i].Entry.Binding == list[i-1].Entry.Binding {
			return nil, fmt.Errorf("bindings: %q and %q share @group(%d) @binding(%d)",
				list[i-1].Name, list[i].Name, list[i].Group, list[i].Entry.Binding)
		}
	}
	return list, nil
}

func visibilityOf(module *ir.Module, info *valid.ModuleInfo, h ir.GlobalVariableHandle) gputypes.ShaderStages {
	var stages gputypes.ShaderStages
	for i := range module.EntryPoints {
		fi := info.EntryPoint(i)
		if fi == nil || fi.Uses(h) == 0 {
			continue
		}
		switch module.EntryPoints[i].Stage {
		case ir.StageVertex:
			stages |= gputypes.ShaderStageVertex
		case ir.StageFragment:
			stages |= gputypes.ShaderStageFragment
		case ir.StageCompute:
			stages |= gputypes.ShaderStageCompute
		}
	}
	return stages
}

func describe(module *ir.Module, g *ir.GlobalVariable, entry *gputypes.BindGroupLayoutEntry) error {
	switch g.Space {
	case ir.SpaceUniform:
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: uint64(layout.Of(module, g.Type).Size),
		}
		return nil
	case ir.SpaceStorage:
		kind := gputypes.BufferBindingTypeStorage
		if g.Access == ir.StorageRead {
			kind = gputypes.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           kind,
			MinBindingSize: uint64(layout.Of(module, g.Type).Size),
		}
		return nil
	case ir.SpaceHandle:
	default:
		return fmt.Errorf("address space %d cannot be bound", g.Space)
	}

	inner := module.Types[g.Type].Inner
	if arr, ok := inner.(ir.BindingArrayType); ok {
		inner = module.Types[arr.Base].Inner
	}
	switch t := inner.(type) {
	case ir.SamplerType:
		kind := gputypes.SamplerBindingTypeFiltering
		if t.Comparison {
			kind = gputypes.SamplerBindingTypeComparison
		}
		entry.Sampler = &gputypes.SamplerBindingLayout{Type: kind}
	case ir.ImageType:
		return describeImage(t, entry)
	default:
		return fmt.Errorf("handle of type %T cannot be bound", inner)
	}
	return nil
}

func describeImage(t ir.ImageType, entry *gputypes.BindGroupLayoutEntry) error {
	dim, err := viewDimension(t)
	if err != nil {
		return err
	}
	switch t.Class {
	case ir.ImageClassSampled:
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    sampleType(t.SampledKind),
			ViewDimension: dim,
			Multisampled:  t.Multisampled,
		}
	case ir.ImageClassDepth:
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeDepth,
			ViewDimension: dim,
			Multisampled:  t.Multisampled,
		}
	case ir.ImageClassStorage:
		format, ok := storageFormats[t.StorageFormat]
		if !ok {
			return fmt.Errorf("storage format %d has no WebGPU equivalent", t.StorageFormat)
		}
		entry.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access:        storageAccess(t.StorageAccess),
			Format:        format,
			ViewDimension: dim,
		}
	default:
		return fmt.Errorf("external textures cannot be reflected")
	}
	return nil
}

func viewDimension(t ir.ImageType) (gputypes.TextureViewDimension, error) {
	switch t.Dim {
	case ir.Dim1D:
		return gputypes.TextureViewDimension1D, nil
	case ir.Dim2D:
		if t.Arrayed {
			return gputypes.TextureViewDimension2DArray, nil
		}
		return gputypes.TextureViewDimension2D, nil
	case ir.Dim3D:
		return gputypes.TextureViewDimension3D, nil
	case ir.DimCube:
		if t.Arrayed {
			return gputypes.TextureViewDimensionCubeArray, nil
		}
		return gputypes.TextureViewDimensionCube, nil
	}
	return gputypes.TextureViewDimensionUndefined, fmt.Errorf("unknown image dimension %d", t.Dim)
}

func sampleType(kind ir.ScalarKind) gputypes.TextureSampleType {
	switch kind {
	case ir.ScalarSint:
		return gputypes.TextureSampleTypeSint
	case ir.ScalarUint:
		return gputypes.TextureSampleTypeUint
	default:
		return gputypes.TextureSampleTypeFloat
	}
}

func storageAccess(access ir.StorageAccess) gputypes.StorageTextureAccess {
	switch access {
	case ir.StorageAccessRead:
		return gputypes.StorageTextureAccessReadOnly
	case ir.StorageAccessWrite:
		return gputypes.StorageTextureAccessWriteOnly
	default:
		return gputypes.StorageTextureAccessReadWrite
	}
}

var storageFormats = map[ir.StorageFormat]gputypes.TextureFormat{
	ir.StorageFormatR8Unorm:       gputypes.TextureFormatR8Unorm,
	ir.StorageFormatR8Snorm:       gputypes.TextureFormatR8Snorm,
	ir.StorageFormatR8Uint:        gputypes.TextureFormatR8Uint,
	ir.StorageFormatR8Sint:        gputypes.TextureFormatR8Sint,
	ir.StorageFormatR16Uint:       gputypes.TextureFormatR16Uint,
	ir.StorageFormatR16Sint:       gputypes.TextureFormatR16Sint,
	ir.StorageFormatR16Float:      gputypes.TextureFormatR16Float,
	ir.StorageFormatRg8Unorm:      gputypes.TextureFormatRG8Unorm,
	ir.StorageFormatRg8Snorm:      gputypes.TextureFormatRG8Snorm,
	ir.StorageFormatRg8Uint:       gputypes.TextureFormatRG8Uint,
	ir.StorageFormatRg8Sint:       gputypes.TextureFormatRG8Sint,
	ir.StorageFormatR32Uint:       gputypes.TextureFormatR32Uint,
	ir.StorageFormatR32Sint:       gputypes.TextureFormatR32Sint,
	ir.StorageFormatR32Float:      gputypes.TextureFormatR32Float,
	ir.StorageFormatRg16Uint:      gputypes.TextureFormatRG16Uint,
	ir.StorageFormatRg16Sint:      gputypes.TextureFormatRG16Sint,
	ir.StorageFormatRg16Float:     gputypes.TextureFormatRG16Float,
	ir.StorageFormatRgba8Unorm:    gputypes.TextureFormatRGBA8Unorm,
	ir.StorageFormatRgba8Snorm:    gputypes.TextureFormatRGBA8Snorm,
	ir.StorageFormatRgba8Uint:     gputypes.TextureFormatRGBA8Uint,
	ir.StorageFormatRgba8Sint:     gputypes.TextureFormatRGBA8Sint,
	ir.StorageFormatBgra8Unorm:    gputypes.TextureFormatBGRA8Unorm,
	ir.StorageFormatRgb10a2Uint:   gputypes.TextureFormatRGB10A2Uint,
	ir.StorageFormatRgb10a2Unorm:  gputypes.TextureFormatRGB10A2Unorm,
	ir.StorageFormatRg11b10Ufloat: gputypes.TextureFormatRG11B10Ufloat,
	ir.StorageFormatRg32Uint:      gputypes.TextureFormatRG32Uint,
	ir.StorageFormatRg32Sint:      gputypes.TextureFormatRG32Sint,
	ir.StorageFormatRg32Float:     gputypes.TextureFormatRG32Float,
	ir.StorageFormatRgba16Uint:    gputypes.TextureFormatRGBA16Uint,
	ir.StorageFormatRgba16Sint:    gputypes.TextureFormatRGBA16Sint,
	ir.StorageFormatRgba16Float:   gputypes.TextureFormatRGBA16Float,
	ir.StorageFormatRgba32Uint:    gputypes.TextureFormatRGBA32Uint,
	ir.StorageFormatRgba32Sint:    gputypes.TextureFormatRGBA32Sint,
	ir.StorageFormatRgba32Float:   gputypes.TextureFormatRGBA32Float,
	ir.StorageFormatR16Unorm:      gputypes.TextureFormatR16Unorm,
	ir.StorageFormatR16Snorm:      gputypes.TextureFormatR16Snorm,
	ir.StorageFormatRg16Unorm:     gputypes.TextureFormatRG16Unorm,
	ir.StorageFormatRg16Snorm:     gputypes.TextureFormatRG16Snorm,
	ir.StorageFormatRgba16Unorm:   gputypes.TextureFormatRGBA16Unorm,
	ir.StorageFormatRgba16Snorm:   gputypes.TextureFormatRGBA16Snorm,
}
