package spirv_test

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/spvtest"
	"github.com/gogpu/wgslgen/spirv"
)

func parse(t *testing.T, data []byte) *ir.Module {
	t.Helper()
	module, err := spirv.Parse(data, spirv.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return module
}

func findFunction(module *ir.Module, name string) *ir.Function {
	for i := range module.Functions {
		if module.Functions[i].Name == name {
			return &module.Functions[i]
		}
	}
	return nil
}

// walk calls fn for every statement in blk, depth first.
func walk(blk ir.Block, fn func(ir.StatementKind)) {
	for _, stmt := range blk {
		fn(stmt.Kind)
		switch s := stmt.Kind.(type) {
		case ir.StmtBlock:
			walk(s.Block, fn)
		case ir.StmtIf:
			walk(s.Accept, fn)
			walk(s.Reject, fn)
		case ir.StmtLoop:
			walk(s.Body, fn)
			walk(s.Continuing, fn)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				walk(c.Body, fn)
			}
		}
	}
}

func TestParseTriangleVertex(t *testing.T) {
	module := parse(t, spvtest.TriangleVertex())

	if len(module.EntryPoints) != 1 {
		t.Fatalf("entry points = %d, want 1", len(module.EntryPoints))
	}
	ep := module.EntryPoints[0]
	if ep.Name != "main" || ep.Stage != ir.StageVertex {
		t.Errorf("entry point = %q stage %v", ep.Name, ep.Stage)
	}
	if findFunction(module, "main_1") == nil {
		t.Error("entry body function main_1 not found")
	}

	if len(ep.Function.Arguments) != 1 {
		t.Fatalf("arguments = %d, want 1", len(ep.Function.Arguments))
	}
	arg := ep.Function.Arguments[0]
	if b, ok := (*arg.Binding).(ir.BuiltinBinding); !ok || b.Builtin != ir.BuiltinVertexIndex {
		t.Errorf("argument binding = %#v, want vertex_index", *arg.Binding)
	}
	if s, ok := module.Types[arg.Type].Inner.(ir.ScalarType); !ok || s.Kind != ir.ScalarUint {
		t.Errorf("vertex index type = %#v, want u32", module.Types[arg.Type].Inner)
	}

	if ep.Function.Result == nil {
		t.Fatal("vertex entry point has no result")
	}
	out, ok := module.Types[ep.Function.Result.Type].Inner.(ir.StructType)
	if !ok {
		t.Fatalf("result type is %T, want a struct", module.Types[ep.Function.Result.Type].Inner)
	}
	if len(out.Members) != 2 {
		t.Fatalf("output members = %d, want 2 (unused gl_PerVertex members dropped)", len(out.Members))
	}
	if b, ok := (*out.Members[0].Binding).(ir.BuiltinBinding); !ok || b.Builtin != ir.BuiltinPosition {
		t.Errorf("member 0 binding = %#v, want position", *out.Members[0].Binding)
	}
	if b, ok := (*out.Members[1].Binding).(ir.LocationBinding); !ok || b.Location != 0 {
		t.Errorf("member 1 binding = %#v, want location 0", *out.Members[1].Binding)
	}

	var uniforms int
	for _, gv := range module.GlobalVariables {
		if gv.Space != ir.SpaceUniform {
			continue
		}
		uniforms++
		if gv.Binding == nil || gv.Binding.Group != 0 || gv.Binding.Binding != 0 {
			t.Errorf("uniform binding = %+v, want group 0 binding 0", gv.Binding)
		}
		if module.Types[gv.Type].Name != "Locals" {
			t.Errorf("uniform type name = %q, want Locals", module.Types[gv.Type].Name)
		}
	}
	if uniforms != 1 {
		t.Errorf("uniform globals = %d, want 1", uniforms)
	}
}

func TestParseFragmentInterpolation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ir.InterpolationKind
		loc  uint32
	}{
		{"float input", spvtest.TriangleFragment(), ir.InterpolationPerspective, 0},
		{"flat int input", spvtest.SwitchFragment(), ir.InterpolationFlat, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := parse(t, tt.data)
			ep := module.EntryPoints[0]
			if ep.Stage != ir.StageFragment {
				t.Fatalf("stage = %v, want fragment", ep.Stage)
			}
			if len(ep.Function.Arguments) != 1 {
				t.Fatalf("arguments = %d, want 1", len(ep.Function.Arguments))
			}
			lb, ok := (*ep.Function.Arguments[0].Binding).(ir.LocationBinding)
			if !ok {
				t.Fatalf("binding = %#v, want a location", *ep.Function.Arguments[0].Binding)
			}
			if lb.Location != tt.loc {
				t.Errorf("location = %d, want %d", lb.Location, tt.loc)
			}
			if lb.Interpolation == nil || lb.Interpolation.Kind != tt.kind {
				t.Errorf("interpolation = %+v, want kind %v", lb.Interpolation, tt.kind)
			}
		})
	}
}

func TestParseConstantColor(t *testing.T) {
	module := parse(t, spvtest.ConstantColorFragment())
	ep := module.EntryPoints[0]
	if len(ep.Function.Arguments) != 0 {
		t.Errorf("arguments = %d, want 0", len(ep.Function.Arguments))
	}
	if ep.Function.Result == nil {
		t.Fatal("fragment entry point has no result")
	}
	if module.Types[ep.Function.Result.Type].Name != "FragmentOutput" {
		t.Errorf("result type = %q, want FragmentOutput", module.Types[ep.Function.Result.Type].Name)
	}
}

func TestParseControlFlow(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		check func(t *testing.T, body ir.Block)
	}{
		{
			name: "if else with phi",
			data: spvtest.BranchFragment(),
			check: func(t *testing.T, body ir.Block) {
				var ifs int
				walk(body, func(k ir.StatementKind) {
					if s, ok := k.(ir.StmtIf); ok {
						ifs++
						if len(s.Accept) == 0 || len(s.Reject) == 0 {
							t.Error("phi stores missing from if branches")
						}
					}
				})
				if ifs != 1 {
					t.Errorf("if statements = %d, want 1", ifs)
				}
			},
		},
		{
			name: "loop with continuing",
			data: spvtest.LoopFragment(),
			check: func(t *testing.T, body ir.Block) {
				var loops, breaks int
				walk(body, func(k ir.StatementKind) {
					switch s := k.(type) {
					case ir.StmtLoop:
						loops++
						if len(s.Continuing) == 0 {
							t.Error("loop continuing block is empty")
						}
					case ir.StmtBreak:
						breaks++
					}
				})
				if loops != 1 {
					t.Errorf("loops = %d, want 1", loops)
				}
				if breaks == 0 {
					t.Error("loop has no break")
				}
			},
		},
		{
			name: "switch",
			data: spvtest.SwitchFragment(),
			check: func(t *testing.T, body ir.Block) {
				var sw *ir.StmtSwitch
				walk(body, func(k ir.StatementKind) {
					if s, ok := k.(ir.StmtSwitch); ok {
						sw = &s
					}
				})
				if sw == nil {
					t.Fatal("no switch statement")
				}
				want := []ir.SwitchValue{ir.SwitchValueI32(0), ir.SwitchValueI32(1), ir.SwitchValueDefault{}}
				if len(sw.Cases) != len(want) {
					t.Fatalf("cases = %d, want %d", len(sw.Cases), len(want))
				}
				for i, c := range sw.Cases {
					if c.Value != want[i] {
						t.Errorf("case %d value = %#v, want %#v", i, c.Value, want[i])
					}
					if c.FallThrough {
						t.Errorf("case %d falls through", i)
					}
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := parse(t, tt.data)
			fn := findFunction(module, "main_1")
			if fn == nil {
				t.Fatal("main_1 not found")
			}
			tt.check(t, fn.Body)
		})
	}
}

func TestParseTextured(t *testing.T) {
	module := parse(t, spvtest.TexturedFragment())
	var images, samplers int
	for _, gv := range module.GlobalVariables {
		switch inner := module.Types[gv.Type].Inner.(type) {
		case ir.ImageType:
			images++
			if inner.Class != ir.ImageClassSampled || inner.Dim != ir.Dim2D {
				t.Errorf("image = %+v, want sampled 2D", inner)
			}
			if gv.Binding == nil || gv.Binding.Binding != 1 {
				t.Errorf("image binding = %+v, want 1", gv.Binding)
			}
		case ir.SamplerType:
			samplers++
			if inner.Comparison {
				t.Error("sampler marked as comparison")
			}
			if gv.Binding == nil || gv.Binding.Binding != 2 {
				t.Errorf("sampler binding = %+v, want 2", gv.Binding)
			}
		}
	}
	if images != 1 || samplers != 1 {
		t.Errorf("images = %d samplers = %d, want 1 and 1", images, samplers)
	}

	fn := findFunction(module, "main_1")
	var samples int
	for _, e := range fn.Expressions {
		if _, ok := e.Kind.(ir.ExprImageSample); ok {
			samples++
		}
	}
	if samples != 1 {
		t.Errorf("image samples = %d, want 1", samples)
	}
}

func TestParseCompute(t *testing.T) {
	module := parse(t, spvtest.ComputeDouble())
	ep := module.EntryPoints[0]
	if ep.Stage != ir.StageCompute {
		t.Fatalf("stage = %v, want compute", ep.Stage)
	}
	if ep.Workgroup != [3]uint32{64, 1, 1} {
		t.Errorf("workgroup = %v, want [64 1 1]", ep.Workgroup)
	}
	if ep.Function.Result != nil {
		t.Error("compute entry point has a result")
	}
	var storage int
	for _, gv := range module.GlobalVariables {
		if gv.Space == ir.SpaceStorage {
			storage++
			if gv.Access != ir.StorageReadWrite {
				t.Errorf("storage access = %v, want read_write", gv.Access)
			}
		}
	}
	if storage != 1 {
		t.Errorf("storage globals = %d, want 1", storage)
	}
}

func TestParseExpressionTypes(t *testing.T) {
	fixtures := map[string][]byte{
		"triangle.vert": spvtest.TriangleVertex(),
		"triangle.frag": spvtest.TriangleFragment(),
		"loop.frag":     spvtest.LoopFragment(),
		"compute":       spvtest.ComputeDouble(),
	}
	for name, data := range fixtures {
		t.Run(name, func(t *testing.T) {
			module := parse(t, data)
			for _, fn := range module.Functions {
				if len(fn.ExpressionTypes) != len(fn.Expressions) {
					t.Errorf("%s: %d types for %d expressions", fn.Name, len(fn.ExpressionTypes), len(fn.Expressions))
				}
			}
			for _, ep := range module.EntryPoints {
				if len(ep.Function.ExpressionTypes) != len(ep.Function.Expressions) {
					t.Errorf("%s: %d types for %d expressions", ep.Name, len(ep.Function.ExpressionTypes), len(ep.Function.Expressions))
				}
			}
		})
	}
}

func TestParseAdjustCoordinateSpace(t *testing.T) {
	count := func(opts spirv.Options) int {
		module, err := spirv.Parse(spvtest.TriangleVertex(), opts)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		n := 0
		for _, e := range module.EntryPoints[0].Function.Expressions {
			if u, ok := e.Kind.(ir.ExprUnary); ok && u.Op == ir.UnaryNegate {
				n++
			}
		}
		return n
	}
	if n := count(spirv.Options{}); n != 0 {
		t.Errorf("negations without adjustment = %d, want 0", n)
	}
	if n := count(spirv.Options{AdjustCoordinateSpace: true}); n != 1 {
		t.Errorf("negations with adjustment = %d, want 1", n)
	}
}

func TestParseStrictCapabilities(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.AddCapability(spirv.Capability(5345)) // VulkanMemoryModel
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	data := b.Build()

	if _, err := spirv.Parse(data, spirv.Options{}); err != nil {
		t.Errorf("lenient parse failed: %v", err)
	}
	if _, err := spirv.Parse(data, spirv.Options{StrictCapabilities: true}); err == nil {
		t.Error("strict parse accepted an unknown capability")
	}
}

func TestParseRejectsCombinedSampler(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	f32 := b.TypeFloat(32)
	img := b.TypeImage(f32, spirv.Dim2D, 0, 0, 0, 1, 0)
	si := b.TypeSampledImage(img)
	v := b.Variable(b.TypePointer(spirv.StorageClassUniformConstant, si), spirv.StorageClassUniformConstant)
	b.AddName(v, "tex")

	if _, err := spirv.Parse(b.Build(), spirv.Options{}); err == nil {
		t.Error("combined image sampler accepted")
	}
}

// patchFirst rewrites the first instruction with opcode op in a copy of data.
func patchFirst(t *testing.T, data []byte, op spirv.OpCode, patch func(words []uint32)) []byte {
	t.Helper()
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	for i := 5; i < len(words); {
		n := int(words[i] >> 16)
		if n == 0 || i+n > len(words) {
			break
		}
		if spirv.OpCode(words[i]&0xFFFF) == op {
			patch(words[i : i+n])
			out := make([]byte, len(data))
			for j, w := range words {
				binary.LittleEndian.PutUint32(out[j*4:], w)
			}
			return out
		}
		i += n
	}
	t.Fatalf("no %v instruction found", op)
	return nil
}

func TestParseRejectsCyclicReferences(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		op    spirv.OpCode
		patch func(words []uint32)
	}{
		// image operand of OpSampledImage set to its own result id
		{"sampled image operand", spvtest.TexturedFragment(), spirv.OpSampledImage, func(w []uint32) { w[3] = w[2] }},
		{"pointer to itself", spvtest.TexturedFragment(), spirv.OpTypePointer, func(w []uint32) { w[3] = w[1] }},
		{"struct containing itself", spvtest.ComputeDouble(), spirv.OpTypeStruct, func(w []uint32) { w[2] = w[1] }},
		{"vector of itself", spvtest.TexturedFragment(), spirv.OpTypeVector, func(w []uint32) { w[2] = w[1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := patchFirst(t, tt.data, tt.op, tt.patch)
			_, err := spirv.Parse(data, spirv.Options{})
			if err == nil {
				t.Fatal("Parse accepted a self-referential module")
			}
			var pe *spirv.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error %v (%T) is not a *spirv.ParseError", err, err)
			}
		})
	}
}

func TestParseCyclicOperandMessage(t *testing.T) {
	data := patchFirst(t, spvtest.TexturedFragment(), spirv.OpSampledImage, func(w []uint32) { w[3] = w[2] })
	_, err := spirv.Parse(data, spirv.Options{})
	if err == nil || !strings.Contains(err.Error(), "cyclic reference") {
		t.Errorf("Parse error = %v, want a cyclic reference error", err)
	}
}
