// Package spvtest assembles SPIR-V fixtures shaped like glslc output for the
// shaders the tests exercise. Every function returns a complete binary.
package spvtest

import (
	"github.com/gogpu/wgslgen/spirv"
)

// common holds the declarations every fixture starts with.
type common struct {
	b      *spirv.ModuleBuilder
	glsl   uint32
	void   uint32
	fnType uint32
	f32    uint32
	i32    uint32
	u32    uint32
	v2     uint32
	v4     uint32
}

func newCommon(version spirv.Version) *common {
	b := spirv.NewModuleBuilder(version)
	b.AddCapability(spirv.CapabilityShader)
	c := &common{b: b}
	c.glsl = b.AddExtInstImport("GLSL.std.450")
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	c.void = b.TypeVoid()
	c.fnType = b.TypeFunction(c.void)
	c.f32 = b.TypeFloat(32)
	c.i32 = b.TypeInt(32, true)
	c.u32 = b.TypeInt(32, false)
	c.v2 = b.TypeVector(c.f32, 2)
	c.v4 = b.TypeVector(c.f32, 4)
	return c
}

// fragmentIO declares `layout(location = 0) in vec4 v_color` and
// `layout(location = 0) out vec4 out_color`.
func (c *common) fragmentIO() (in, out uint32) {
	b := c.b
	in = b.Variable(b.TypePointer(spirv.StorageClassInput, c.v4), spirv.StorageClassInput)
	out = b.Variable(b.TypePointer(spirv.StorageClassOutput, c.v4), spirv.StorageClassOutput)
	b.AddName(in, "v_color")
	b.AddName(out, "out_color")
	b.AddDecorate(in, spirv.DecorationLocation, 0)
	b.AddDecorate(out, spirv.DecorationLocation, 0)
	return in, out
}

func (c *common) fragmentEntry(main uint32, interfaces ...uint32) {
	c.b.AddEntryPoint(spirv.ExecutionModelFragment, main, "main", interfaces...)
	c.b.AddExecutionMode(main, spirv.ExecutionModeOriginUpperLeft)
	c.b.AddName(main, "main")
}

// TriangleVertex is the rotating triangle vertex shader:
//
//	#version 460
//	const vec2 verts[3] = vec2[3](vec2(0.0, 1.0), vec2(-1.0, -1.0), vec2(1.0, -1.0));
//	const vec4 colors[3] = vec4[3](vec4(1.0, 0.0, 0.0, 1.0), vec4(0.0, 1.0, 0.0, 1.0), vec4(0.0, 0.0, 1.0, 1.0));
//	layout(location = 0) out vec4 v_color;
//	layout(binding = 0) uniform Locals { float u_angle; };
//	void main() {
//	    v_color = colors[gl_VertexIndex];
//	    gl_Position = vec4(verts[gl_VertexIndex], 0.0, 1.0);
//	    gl_Position.x = gl_Position.x * cos(u_angle);
//	}
func TriangleVertex() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b

	three := b.Constant(c.u32, 3)
	one := b.Constant(c.u32, 1)
	arrV2 := b.TypeArray(c.v2, three)
	arrV4 := b.TypeArray(c.v4, three)
	arrF1 := b.TypeArray(c.f32, one)
	perVertex := b.TypeStruct(c.v4, c.f32, arrF1, arrF1)
	locals := b.TypeStruct(c.f32)

	glPerVertex := b.Variable(b.TypePointer(spirv.StorageClassOutput, perVertex), spirv.StorageClassOutput)
	vertexIndex := b.Variable(b.TypePointer(spirv.StorageClassInput, c.i32), spirv.StorageClassInput)
	vColor := b.Variable(b.TypePointer(spirv.StorageClassOutput, c.v4), spirv.StorageClassOutput)
	ubo := b.Variable(b.TypePointer(spirv.StorageClassUniform, locals), spirv.StorageClassUniform)

	ptrFnArrV2 := b.TypePointer(spirv.StorageClassFunction, arrV2)
	ptrFnArrV4 := b.TypePointer(spirv.StorageClassFunction, arrV4)
	ptrFnV2 := b.TypePointer(spirv.StorageClassFunction, c.v2)
	ptrFnV4 := b.TypePointer(spirv.StorageClassFunction, c.v4)
	ptrOutV4 := b.TypePointer(spirv.StorageClassOutput, c.v4)
	ptrOutF32 := b.TypePointer(spirv.StorageClassOutput, c.f32)
	ptrUniF32 := b.TypePointer(spirv.StorageClassUniform, c.f32)

	f0 := b.ConstantFloat32(c.f32, 0)
	f1 := b.ConstantFloat32(c.f32, 1)
	fm1 := b.ConstantFloat32(c.f32, -1)
	i0 := b.ConstantInt32(c.i32, 0)
	u0 := b.Constant(c.u32, 0)
	verts := b.ConstantComposite(arrV2,
		b.ConstantComposite(c.v2, f0, f1),
		b.ConstantComposite(c.v2, fm1, fm1),
		b.ConstantComposite(c.v2, f1, fm1))
	colors := b.ConstantComposite(arrV4,
		b.ConstantComposite(c.v4, f1, f0, f0, f1),
		b.ConstantComposite(c.v4, f0, f1, f0, f1),
		b.ConstantComposite(c.v4, f0, f0, f1, f1))

	main := b.Function(c.void, c.fnType)
	b.Label(0)
	indexable := b.Variable(ptrFnArrV4, spirv.StorageClassFunction)
	indexable1 := b.Variable(ptrFnArrV2, spirv.StorageClassFunction)
	idx := b.Load(c.i32, vertexIndex)
	b.Store(indexable, colors)
	color := b.Load(c.v4, b.AccessChain(ptrFnV4, indexable, idx))
	b.Store(vColor, color)
	idx1 := b.Load(c.i32, vertexIndex)
	b.Store(indexable1, verts)
	vert := b.Load(c.v2, b.AccessChain(ptrFnV2, indexable1, idx1))
	x := b.Op(spirv.OpCompositeExtract, c.f32, vert, 0)
	y := b.Op(spirv.OpCompositeExtract, c.f32, vert, 1)
	pos := b.Op(spirv.OpCompositeConstruct, c.v4, x, y, f0, f1)
	b.Store(b.AccessChain(ptrOutV4, glPerVertex, i0), pos)
	angle := b.Load(c.f32, b.AccessChain(ptrUniF32, ubo, i0))
	cos := b.ExtInst(c.f32, c.glsl, spirv.GLSLstd450Cos, angle)
	px := b.AccessChain(ptrOutF32, glPerVertex, i0, u0)
	b.Store(px, b.Op(spirv.OpFMul, c.f32, b.Load(c.f32, px), cos))
	b.Return()
	b.FunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelVertex, main, "main", glPerVertex, vertexIndex, vColor, ubo)
	b.AddName(main, "main")
	b.AddName(perVertex, "gl_PerVertex")
	b.AddMemberName(perVertex, 0, "gl_Position")
	b.AddMemberName(perVertex, 1, "gl_PointSize")
	b.AddMemberName(perVertex, 2, "gl_ClipDistance")
	b.AddMemberName(perVertex, 3, "gl_CullDistance")
	b.AddName(glPerVertex, "")
	b.AddName(vertexIndex, "gl_VertexIndex")
	b.AddName(vColor, "v_color")
	b.AddName(locals, "Locals")
	b.AddMemberName(locals, 0, "u_angle")
	b.AddName(ubo, "")
	b.AddName(indexable, "indexable")
	b.AddName(indexable1, "indexable")

	b.AddMemberDecorate(perVertex, 0, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	b.AddMemberDecorate(perVertex, 1, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPointSize))
	b.AddMemberDecorate(perVertex, 2, spirv.DecorationBuiltIn, uint32(spirv.BuiltInClipDistance))
	b.AddMemberDecorate(perVertex, 3, spirv.DecorationBuiltIn, uint32(spirv.BuiltInCullDistance))
	b.AddDecorate(perVertex, spirv.DecorationBlock)
	b.AddDecorate(vertexIndex, spirv.DecorationBuiltIn, uint32(spirv.BuiltInVertexIndex))
	b.AddDecorate(vColor, spirv.DecorationLocation, 0)
	b.AddMemberDecorate(locals, 0, spirv.DecorationOffset, 0)
	b.AddDecorate(locals, spirv.DecorationBlock)
	b.AddDecorate(ubo, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(ubo, spirv.DecorationBinding, 0)
	return b.Build()
}

// TriangleFragment passes the interpolated color through:
//
//	layout(location = 0) in vec4 v_color;
//	layout(location = 0) out vec4 out_color;
//	void main() { out_color = v_color; }
func TriangleFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	in, out := c.fragmentIO()

	main := b.Function(c.void, c.fnType)
	b.Label(0)
	b.Store(out, b.Load(c.v4, in))
	b.Return()
	b.FunctionEnd()

	c.fragmentEntry(main, out, in)
	return b.Build()
}

// ConstantColorFragment writes a fixed color:
//
//	layout(location = 0) out vec4 out_color;
//	void main() { out_color = vec4(1.0, 0.5, 0.0, 1.0); }
func ConstantColorFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	out := b.Variable(b.TypePointer(spirv.StorageClassOutput, c.v4), spirv.StorageClassOutput)
	b.AddName(out, "out_color")
	b.AddDecorate(out, spirv.DecorationLocation, 0)

	color := b.ConstantComposite(c.v4,
		b.ConstantFloat32(c.f32, 1),
		b.ConstantFloat32(c.f32, 0.5),
		b.ConstantFloat32(c.f32, 0),
		b.ConstantFloat32(c.f32, 1))

	main := b.Function(c.void, c.fnType)
	b.Label(0)
	b.Store(out, color)
	b.Return()
	b.FunctionEnd()

	c.fragmentEntry(main, out)
	return b.Build()
}

// BranchFragment selects a brightness with an if/else joined by OpPhi:
//
//	float a = v_color.x > 0.5 ? 1.0 : 0.0;  // as if/else
//	out_color = vec4(a, a, a, 1.0);
func BranchFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	in, out := c.fragmentIO()
	boolType := b.TypeBool()
	f0 := b.ConstantFloat32(c.f32, 0)
	f1 := b.ConstantFloat32(c.f32, 1)
	half := b.ConstantFloat32(c.f32, 0.5)

	main := b.Function(c.void, c.fnType)
	then, els, merge := b.AllocID(), b.AllocID(), b.AllocID()
	b.Label(0)
	x := b.Op(spirv.OpCompositeExtract, c.f32, b.Load(c.v4, in), 0)
	cond := b.Op(spirv.OpFOrdGreaterThan, boolType, x, half)
	b.SelectionMerge(merge)
	b.BranchConditional(cond, then, els)
	b.Label(then)
	b.Branch(merge)
	b.Label(els)
	b.Branch(merge)
	b.Label(merge)
	a := b.Op(spirv.OpPhi, c.f32, f1, then, f0, els)
	b.Store(out, b.Op(spirv.OpCompositeConstruct, c.v4, a, a, a, f1))
	b.Return()
	b.FunctionEnd()

	c.fragmentEntry(main, out, in)
	return b.Build()
}

// LoopFragment accumulates in a counted loop with a continue block:
//
//	float acc = 0.0;
//	for (int i = 0; i < 4; i++) { acc += v_color.x; }
//	out_color = vec4(acc, acc, acc, 1.0);
func LoopFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	in, out := c.fragmentIO()
	boolType := b.TypeBool()
	ptrFnF32 := b.TypePointer(spirv.StorageClassFunction, c.f32)
	ptrFnI32 := b.TypePointer(spirv.StorageClassFunction, c.i32)
	f0 := b.ConstantFloat32(c.f32, 0)
	f1 := b.ConstantFloat32(c.f32, 1)
	i0 := b.ConstantInt32(c.i32, 0)
	i1 := b.ConstantInt32(c.i32, 1)
	i4 := b.ConstantInt32(c.i32, 4)

	main := b.Function(c.void, c.fnType)
	header, check, body, cont, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	b.Label(0)
	acc := b.Variable(ptrFnF32, spirv.StorageClassFunction)
	i := b.Variable(ptrFnI32, spirv.StorageClassFunction)
	b.Store(acc, f0)
	b.Store(i, i0)
	b.Branch(header)

	b.Label(header)
	b.LoopMerge(merge, cont)
	b.Branch(check)

	b.Label(check)
	cond := b.Op(spirv.OpSLessThan, boolType, b.Load(c.i32, i), i4)
	b.BranchConditional(cond, body, merge)

	b.Label(body)
	x := b.Op(spirv.OpCompositeExtract, c.f32, b.Load(c.v4, in), 0)
	b.Store(acc, b.Op(spirv.OpFAdd, c.f32, b.Load(c.f32, acc), x))
	b.Branch(cont)

	b.Label(cont)
	b.Store(i, b.Op(spirv.OpIAdd, c.i32, b.Load(c.i32, i), i1))
	b.Branch(header)

	b.Label(merge)
	a := b.Load(c.f32, acc)
	b.Store(out, b.Op(spirv.OpCompositeConstruct, c.v4, a, a, a, f1))
	b.Return()
	b.FunctionEnd()

	b.AddName(acc, "acc")
	b.AddName(i, "i")
	c.fragmentEntry(main, out, in)
	return b.Build()
}

// SwitchFragment picks a color from a flat integer input:
//
//	layout(location = 1) flat in int mode;
//	switch (mode) {
//	case 0: out_color = red; break;
//	case 1: out_color = green; break;
//	default: out_color = blue; break;
//	}
func SwitchFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	mode := b.Variable(b.TypePointer(spirv.StorageClassInput, c.i32), spirv.StorageClassInput)
	out := b.Variable(b.TypePointer(spirv.StorageClassOutput, c.v4), spirv.StorageClassOutput)
	b.AddName(mode, "mode")
	b.AddName(out, "out_color")
	b.AddDecorate(mode, spirv.DecorationFlat)
	b.AddDecorate(mode, spirv.DecorationLocation, 1)
	b.AddDecorate(out, spirv.DecorationLocation, 0)
	f0 := b.ConstantFloat32(c.f32, 0)
	f1 := b.ConstantFloat32(c.f32, 1)
	red := b.ConstantComposite(c.v4, f1, f0, f0, f1)
	green := b.ConstantComposite(c.v4, f0, f1, f0, f1)
	blue := b.ConstantComposite(c.v4, f0, f0, f1, f1)

	main := b.Function(c.void, c.fnType)
	case0, case1, def, merge := b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	b.Label(0)
	m := b.Load(c.i32, mode)
	b.SelectionMerge(merge)
	b.Do(spirv.OpSwitch, m, def, 0, case0, 1, case1)
	b.Label(case0)
	b.Store(out, red)
	b.Branch(merge)
	b.Label(case1)
	b.Store(out, green)
	b.Branch(merge)
	b.Label(def)
	b.Store(out, blue)
	b.Branch(merge)
	b.Label(merge)
	b.Return()
	b.FunctionEnd()

	c.fragmentEntry(main, out, mode)
	return b.Build()
}

// TexturedFragment samples a separate texture and sampler:
//
//	layout(location = 0) in vec2 v_uv;
//	layout(set = 0, binding = 1) uniform texture2D t_diffuse;
//	layout(set = 0, binding = 2) uniform sampler s_diffuse;
//	void main() { out_color = texture(sampler2D(t_diffuse, s_diffuse), v_uv); }
func TexturedFragment() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	img := b.TypeImage(c.f32, spirv.Dim2D, 0, 0, 0, 1, 0)
	smp := b.TypeSampler()
	sampledImg := b.TypeSampledImage(img)

	uv := b.Variable(b.TypePointer(spirv.StorageClassInput, c.v2), spirv.StorageClassInput)
	out := b.Variable(b.TypePointer(spirv.StorageClassOutput, c.v4), spirv.StorageClassOutput)
	tex := b.Variable(b.TypePointer(spirv.StorageClassUniformConstant, img), spirv.StorageClassUniformConstant)
	sam := b.Variable(b.TypePointer(spirv.StorageClassUniformConstant, smp), spirv.StorageClassUniformConstant)
	b.AddName(uv, "v_uv")
	b.AddName(out, "out_color")
	b.AddName(tex, "t_diffuse")
	b.AddName(sam, "s_diffuse")
	b.AddDecorate(uv, spirv.DecorationLocation, 0)
	b.AddDecorate(out, spirv.DecorationLocation, 0)
	b.AddDecorate(tex, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(tex, spirv.DecorationBinding, 1)
	b.AddDecorate(sam, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(sam, spirv.DecorationBinding, 2)

	main := b.Function(c.void, c.fnType)
	b.Label(0)
	t := b.Load(img, tex)
	s := b.Load(smp, sam)
	si := b.Op(spirv.OpSampledImage, sampledImg, t, s)
	color := b.Op(spirv.OpImageSampleImplicitLod, c.v4, si, b.Load(c.v2, uv))
	b.Store(out, color)
	b.Return()
	b.FunctionEnd()

	c.fragmentEntry(main, out, uv, tex, sam)
	return b.Build()
}

// ComputeDouble doubles every element of a storage buffer:
//
//	layout(local_size_x = 64) in;
//	layout(set = 0, binding = 0) buffer Data { uint values[]; };
//	void main() { values[gl_GlobalInvocationID.x] *= 2u; }
func ComputeDouble() []byte {
	c := newCommon(spirv.Version1_5)
	b := c.b
	v3u := b.TypeVector(c.u32, 3)
	rta := b.TypeRuntimeArray(c.u32)
	data := b.TypeStruct(rta)
	buf := b.Variable(b.TypePointer(spirv.StorageClassStorageBuffer, data), spirv.StorageClassStorageBuffer)
	gid := b.Variable(b.TypePointer(spirv.StorageClassInput, v3u), spirv.StorageClassInput)
	ptrSBU32 := b.TypePointer(spirv.StorageClassStorageBuffer, c.u32)
	i0 := b.ConstantInt32(c.i32, 0)
	two := b.Constant(c.u32, 2)

	b.AddName(data, "Data")
	b.AddMemberName(data, 0, "values")
	b.AddName(buf, "")
	b.AddName(gid, "gl_GlobalInvocationID")
	b.AddDecorate(rta, spirv.DecorationArrayStride, 4)
	b.AddMemberDecorate(data, 0, spirv.DecorationOffset, 0)
	b.AddDecorate(data, spirv.DecorationBlock)
	b.AddDecorate(buf, spirv.DecorationDescriptorSet, 0)
	b.AddDecorate(buf, spirv.DecorationBinding, 0)
	b.AddDecorate(gid, spirv.DecorationBuiltIn, uint32(spirv.BuiltInGlobalInvocationID))

	main := b.Function(c.void, c.fnType)
	b.Label(0)
	x := b.Op(spirv.OpCompositeExtract, c.u32, b.Load(v3u, gid), 0)
	p := b.AccessChain(ptrSBU32, buf, i0, x)
	b.Store(p, b.Op(spirv.OpIMul, c.u32, b.Load(c.u32, p), two))
	b.Return()
	b.FunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelGLCompute, main, "main", gid, buf)
	b.AddExecutionMode(main, spirv.ExecutionModeLocalSize, 64, 1, 1)
	b.AddName(main, "main")
	return b.Build()
}
