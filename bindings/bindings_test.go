package bindings_test

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/wgslgen/bindings"
	"github.com/gogpu/wgslgen/internal/spvtest"
	"github.com/gogpu/wgslgen/spirv"
	"github.com/gogpu/wgslgen/valid"
)

func load(t *testing.T, data []byte) (*ir.Module, *valid.ModuleInfo) {
	t.Helper()
	module, err := spirv.Parse(data, spirv.Options{})
	require.NoError(t, err)
	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(module)
	require.NoError(t, err)
	return module, info
}

func TestReflectUniform(t *testing.T) {
	groups, err := bindings.Reflect(load(t, spvtest.TriangleVertex()))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Entries, 1)

	e := groups[0].Entries[0]
	assert.Equal(t, uint32(0), e.Binding)
	assert.Equal(t, gputypes.ShaderStageVertex, e.Visibility)
	require.NotNil(t, e.Buffer)
	assert.Equal(t, gputypes.BufferBindingTypeUniform, e.Buffer.Type)
	assert.Equal(t, uint64(4), e.Buffer.MinBindingSize)
}

func TestReflectTextureAndSampler(t *testing.T) {
	groups, err := bindings.Reflect(load(t, spvtest.TexturedFragment()))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Entries, 2)

	tex, smp := groups[0].Entries[0], groups[0].Entries[1]
	assert.Equal(t, uint32(1), tex.Binding)
	require.NotNil(t, tex.Texture)
	assert.Equal(t, gputypes.TextureSampleTypeFloat, tex.Texture.SampleType)
	assert.Equal(t, gputypes.TextureViewDimension2D, tex.Texture.ViewDimension)
	assert.False(t, tex.Texture.Multisampled)
	assert.Equal(t, gputypes.ShaderStageFragment, tex.Visibility)

	assert.Equal(t, uint32(2), smp.Binding)
	require.NotNil(t, smp.Sampler)
	assert.Equal(t, gputypes.SamplerBindingTypeFiltering, smp.Sampler.Type)
}

func TestReflectStorageBuffer(t *testing.T) {
	groups, err := bindings.Reflect(load(t, spvtest.ComputeDouble()))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Entries, 1)

	e := groups[0].Entries[0]
	assert.Equal(t, gputypes.ShaderStageCompute, e.Visibility)
	require.NotNil(t, e.Buffer)
	assert.Equal(t, gputypes.BufferBindingTypeStorage, e.Buffer.Type)
	assert.Equal(t, uint64(4), e.Buffer.MinBindingSize)
}

func TestReflectNoBindings(t *testing.T) {
	groups, err := bindings.Reflect(load(t, spvtest.ConstantColorFragment()))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestReflectRejectsForeignInfo(t *testing.T) {
	module, _ := load(t, spvtest.TriangleVertex())
	_, info := load(t, spvtest.TriangleVertex())
	_, err := bindings.Reflect(module, info)
	assert.Error(t, err)
}

// gapModule binds two uniforms in groups 0 and 2, plus one global no entry
// point uses.
func gapModule() (*ir.Module, []ir.GlobalVariable) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	module := &ir.Module{
		Types: []ir.Type{
			{Inner: f32},
			{Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage, StorageFormat: ir.StorageFormatRgba8Unorm, StorageAccess: ir.StorageAccessWrite}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "a", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 0, Binding: 3}, Type: 0},
			{Name: "b", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 2, Binding: 0}, Type: 1},
			{Name: "unused", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 1, Binding: 0}, Type: 0},
		},
	}
	return module, module.GlobalVariables
}

func TestCollectOrderAndGaps(t *testing.T) {
	module, globals := gapModule()
	fn := ir.Function{
		Expressions: []ir.Expression{
			{Kind: ir.ExprGlobalVariable{Variable: 0}},
			{Kind: ir.ExprGlobalVariable{Variable: 1}},
		},
	}
	fn.ExpressionTypes = []ir.TypeResolution{
		{Value: ir.PointerType{Base: 0, Space: ir.SpaceUniform}},
		{Handle: typeHandle(1)},
	}
	fn.Body = ir.Block{{Kind: ir.StmtReturn{}}}
	module.EntryPoints = []ir.EntryPoint{{Name: "main", Stage: ir.StageFragment, Function: fn}}

	info, err := valid.New(0, valid.CapabilitiesAll).Validate(module)
	require.NoError(t, err)

	groups, err := bindings.Reflect(module, info)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Entries, 1)
	assert.Empty(t, groups[1].Entries, "unused globals are not reflected")
	require.Len(t, groups[2].Entries, 1)

	st := groups[2].Entries[0].StorageTexture
	require.NotNil(t, st)
	assert.Equal(t, gputypes.StorageTextureAccessWriteOnly, st.Access)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, st.Format)
	assert.Equal(t, "group 2", groups[2].Label)

	list, err := bindings.Collect(module, info)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, globals[0].Name, list[0].Name)
	assert.Equal(t, globals[1].Name, list[1].Name)
}

func TestCollectRejectsLargeGroup(t *testing.T) {
	for _, group := range []uint32{bindings.MaxGroups, 0xFFFFFFFF} {
		module, _ := gapModule()
		module.GlobalVariables[1].Binding.Group = group
		fn := ir.Function{
			Expressions:     []ir.Expression{{Kind: ir.ExprGlobalVariable{Variable: 1}}},
			ExpressionTypes: []ir.TypeResolution{{Handle: typeHandle(1)}},
		}
		fn.Body = ir.Block{{Kind: ir.StmtReturn{}}}
		module.EntryPoints = []ir.EntryPoint{{Name: "main", Stage: ir.StageFragment, Function: fn}}

		info, err := valid.New(0, valid.CapabilitiesAll).Validate(module)
		require.NoError(t, err)

		_, err = bindings.Reflect(module, info)
		require.Error(t, err, "group %d", group)
		assert.Contains(t, err.Error(), "out of range")
	}
}

func typeHandle(h ir.TypeHandle) *ir.TypeHandle { return &h }

func TestManifest(t *testing.T) {
	module, info := load(t, spvtest.TexturedFragment())
	list, err := bindings.Collect(module, info)
	require.NoError(t, err)

	m := bindings.NewManifest("textured.frag", list)
	data, err := m.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "shader = 'textured.frag'")
	assert.Contains(t, string(data), "[[binding]]")
	assert.Contains(t, string(data), "kind = 'texture'")
	assert.Contains(t, string(data), "view_dimension = '2D'")

	back, err := bindings.ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}

func TestParseManifestRejectsUnknownKeys(t *testing.T) {
	_, err := bindings.ParseManifest([]byte("shader = 'a.vert'\nextra = 1\n"))
	assert.Error(t, err)
}
