package valid

import "strings"

// Capabilities is a set of optional shader features a module may use.
type Capabilities uint32

const (
	// CapabilityPushConstant allows globals in the push constant space.
	CapabilityPushConstant Capabilities = 1 << iota
	// CapabilityFloat64 allows 64-bit floats.
	CapabilityFloat64
	// CapabilityPrimitiveIndex allows the primitive_index builtin.
	CapabilityPrimitiveIndex
	// CapabilityClipDistance allows the clip_distances builtin.
	CapabilityClipDistance
	// CapabilityCullDistance allows cull distances.
	CapabilityCullDistance
	// CapabilityMultiview allows the view_index builtin.
	CapabilityMultiview
	// CapabilityEarlyDepthTest allows early fragment tests.
	CapabilityEarlyDepthTest
	// CapabilityMultisampledShading allows sample_index and per-sample
	// interpolation.
	CapabilityMultisampledShading
	// CapabilityDualSourceBlending allows @blend_src outputs.
	CapabilityDualSourceBlending
	// CapabilityCubeArrayTextures allows cube array images.
	CapabilityCubeArrayTextures
	// CapabilityShaderInt64 allows 64-bit integers.
	CapabilityShaderInt64
	// CapabilityShaderFloat16 allows 16-bit floats.
	CapabilityShaderFloat16

	// CapabilitiesAll is every capability the validator knows about.
	CapabilitiesAll = CapabilityShaderFloat16<<1 - 1
)

// DefaultCapabilities is the mask shaders are validated against by the
// translator: everything except clip distances, plus cull distances.
//
// Clip and cull distances are not interchangeable across the APIs a WebGPU
// implementation runs on. Some backends expose one without the other and
// the WGSL side only has clip_distances behind an extension, so a shader
// that writes gl_ClipDistance is refused here rather than producing output
// that fails later on some devices. Cull distances stay allowed: the front
// end never exposes them as outputs.
const DefaultCapabilities = CapabilitiesAll&^CapabilityClipDistance | CapabilityCullDistance

var capabilityNames = []struct {
	c    Capabilities
	name string
}{
	{CapabilityPushConstant, "PUSH_CONSTANT"},
	{CapabilityFloat64, "FLOAT64"},
	{CapabilityPrimitiveIndex, "PRIMITIVE_INDEX"},
	{CapabilityClipDistance, "CLIP_DISTANCE"},
	{CapabilityCullDistance, "CULL_DISTANCE"},
	{CapabilityMultiview, "MULTIVIEW"},
	{CapabilityEarlyDepthTest, "EARLY_DEPTH_TEST"},
	{CapabilityMultisampledShading, "MULTISAMPLED_SHADING"},
	{CapabilityDualSourceBlending, "DUAL_SOURCE_BLENDING"},
	{CapabilityCubeArrayTextures, "CUBE_ARRAY_TEXTURES"},
	{CapabilityShaderInt64, "SHADER_INT64"},
	{CapabilityShaderFloat16, "SHADER_FLOAT16"},
}

// Contains reports whether every capability in other is in c.
func (c Capabilities) Contains(other Capabilities) bool {
	return c&other == other
}

func (c Capabilities) String() string {
	if c == 0 {
		return "NONE"
	}
	var parts []string
	for _, n := range capabilityNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " | ")
}
