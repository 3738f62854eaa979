package valid_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/internal/spvtest"
	"github.com/gogpu/wgslgen/spirv"
	"github.com/gogpu/wgslgen/valid"
)

func bind(b ir.Binding) *ir.Binding { return &b }

func u32p(v uint32) *uint32 { return &v }

var (
	f32Type  = ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}}
	i32Type  = ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarSint, Width: 4}}
	vec4Type = ir.Type{Inner: ir.VectorType{Size: ir.Vec4, Scalar: ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}}}
)

// fragment builds a module with a single fragment entry point taking args.
func fragment(types []ir.Type, args ...ir.FunctionArgument) *ir.Module {
	return &ir.Module{
		Types: types,
		EntryPoints: []ir.EntryPoint{{
			Name:  "main",
			Stage: ir.StageFragment,
			Function: ir.Function{
				Name:      "main",
				Arguments: args,
				Body:      ir.Block{{Kind: ir.StmtReturn{}}},
			},
		}},
	}
}

// clipVertex builds a vertex entry point returning a position and a clip
// distance.
func clipVertex() *ir.Module {
	types := []ir.Type{
		vec4Type,
		f32Type,
		{Inner: ir.ArrayType{Base: 1, Size: ir.ArraySize{Constant: u32p(1)}, Stride: 4}},
		{Name: "VertexOutput", Inner: ir.StructType{
			Members: []ir.StructMember{
				{Name: "position", Type: 0, Binding: bind(ir.BuiltinBinding{Builtin: ir.BuiltinPosition})},
				{Name: "clip", Type: 2, Binding: bind(ir.BuiltinBinding{Builtin: ir.BuiltinClipDistance}), Offset: 16},
			},
			Span: 32,
		}},
	}
	ret := ir.ExpressionHandle(0)
	return &ir.Module{
		Types: types,
		EntryPoints: []ir.EntryPoint{{
			Name:  "main",
			Stage: ir.StageVertex,
			Function: ir.Function{
				Name:        "main",
				Result:      &ir.FunctionResult{Type: 3},
				Expressions: []ir.Expression{{Kind: ir.ExprZeroValue{Type: 3}}},
				Body:        ir.Block{{Kind: ir.StmtReturn{Value: &ret}}},
			},
		}},
	}
}

func validate(t *testing.T, data []byte) (*ir.Module, *valid.ModuleInfo) {
	t.Helper()
	module, err := spirv.Parse(data, spirv.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(module)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return module, info
}

func TestValidateFixtures(t *testing.T) {
	fixtures := map[string]func() []byte{
		"triangle vertex":   spvtest.TriangleVertex,
		"triangle fragment": spvtest.TriangleFragment,
		"constant color":    spvtest.ConstantColorFragment,
		"branch":            spvtest.BranchFragment,
		"loop":              spvtest.LoopFragment,
		"switch":            spvtest.SwitchFragment,
		"textured":          spvtest.TexturedFragment,
		"compute":           spvtest.ComputeDouble,
	}
	for name, build := range fixtures {
		t.Run(name, func(t *testing.T) {
			module, info := validate(t, build())
			if info.Module() != module {
				t.Error("info does not belong to the validated module")
			}
			for i := range module.Functions {
				fi := info.Function(ir.FunctionHandle(i))
				if len(fi.Types) != len(module.Functions[i].Expressions) {
					t.Errorf("function %d: %d types for %d expressions", i, len(fi.Types), len(module.Functions[i].Expressions))
				}
			}
			for i := range module.EntryPoints {
				fi := info.EntryPoint(i)
				if len(fi.RefCounts) != len(module.EntryPoints[i].Function.Expressions) {
					t.Errorf("entry point %d: %d ref counts", i, len(fi.RefCounts))
				}
			}
		})
	}
}

func TestGlobalUsesFollowCalls(t *testing.T) {
	module, info := validate(t, spvtest.TriangleVertex())

	uniform := -1
	for i, gv := range module.GlobalVariables {
		if gv.Space == ir.SpaceUniform {
			uniform = i
		}
	}
	if uniform < 0 {
		t.Fatal("no uniform global")
	}
	// The wrapper only calls the body; the read happens inside main_1.
	use := info.EntryPoint(0).Uses(ir.GlobalVariableHandle(uniform))
	if use&valid.GlobalUseRead == 0 {
		t.Errorf("entry point uniform use = %b, want read", use)
	}
	if use&valid.GlobalUseWrite != 0 {
		t.Errorf("entry point uniform use = %b, want no write", use)
	}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		module func() *ir.Module
		caps   valid.Capabilities
		want   string
	}{
		{"clip distance refused by default", clipVertex, valid.DefaultCapabilities, "CLIP_DISTANCE"},
		{"clip distance allowed", clipVertex, valid.CapabilitiesAll, ""},
		{
			name: "f64",
			module: func() *ir.Module {
				return fragment([]ir.Type{{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}}})
			},
			caps: valid.DefaultCapabilities &^ valid.CapabilityFloat64,
			want: "FLOAT64",
		},
		{
			name: "cube array",
			module: func() *ir.Module {
				return fragment([]ir.Type{{Inner: ir.ImageType{Dim: ir.DimCube, Arrayed: true, SampledKind: ir.ScalarFloat}}})
			},
			caps: valid.CapabilityFloat64,
			want: "CUBE_ARRAY_TEXTURES",
		},
		{
			name: "sample interpolation",
			module: func() *ir.Module {
				return fragment([]ir.Type{f32Type}, ir.FunctionArgument{
					Name: "v", Type: 0,
					Binding: bind(ir.LocationBinding{Interpolation: &ir.Interpolation{
						Kind: ir.InterpolationPerspective, Sampling: ir.SamplingSample,
					}}),
				})
			},
			caps: valid.CapabilitiesAll &^ valid.CapabilityMultisampledShading,
			want: "MULTISAMPLED_SHADING",
		},
		{
			name: "early depth test",
			module: func() *ir.Module {
				m := fragment(nil)
				m.EntryPoints[0].EarlyDepthTest = &ir.EarlyDepthTest{}
				return m
			},
			caps: valid.CapabilitiesAll &^ valid.CapabilityEarlyDepthTest,
			want: "EARLY_DEPTH_TEST",
		},
		{
			name: "push constants",
			module: func() *ir.Module {
				m := fragment([]ir.Type{f32Type})
				m.GlobalVariables = []ir.GlobalVariable{{Name: "pc", Space: ir.SpacePushConstant, Type: 0}}
				return m
			},
			caps: valid.CapabilitiesAll &^ valid.CapabilityPushConstant,
			want: "PUSH_CONSTANT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valid.New(valid.FlagsAll, tt.caps).Validate(tt.module())
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a capability error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestBindings(t *testing.T) {
	loc := func(l uint32, interp ir.InterpolationKind) *ir.Binding {
		return bind(ir.LocationBinding{Location: l, Interpolation: &ir.Interpolation{Kind: interp}})
	}
	tests := []struct {
		name string
		args []ir.FunctionArgument
		want string
	}{
		{
			name: "ok",
			args: []ir.FunctionArgument{
				{Name: "a", Type: 0, Binding: loc(0, ir.InterpolationPerspective)},
				{Name: "b", Type: 1, Binding: loc(1, ir.InterpolationFlat)},
			},
		},
		{
			name: "duplicate location",
			args: []ir.FunctionArgument{
				{Name: "a", Type: 0, Binding: loc(0, ir.InterpolationPerspective)},
				{Name: "b", Type: 0, Binding: loc(0, ir.InterpolationPerspective)},
			},
			want: `location 0 is used by both "a" and "b"`,
		},
		{
			name: "integer not flat",
			args: []ir.FunctionArgument{{Name: "mode", Type: 1, Binding: loc(0, ir.InterpolationPerspective)}},
			want: "flat interpolation",
		},
		{
			name: "unbound",
			args: []ir.FunctionArgument{{Name: "x", Type: 0}},
			want: `x has no binding`,
		},
		{
			name: "vertex builtin in fragment",
			args: []ir.FunctionArgument{{Name: "vi", Type: 1, Binding: bind(ir.BuiltinBinding{Builtin: ir.BuiltinVertexIndex})}},
			want: "vertex_index",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fragment([]ir.Type{f32Type, i32Type}, tt.args...)
			_, err := valid.New(valid.FlagsAll, valid.CapabilitiesAll).Validate(m)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var verr *valid.Error
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a *valid.Error", err)
			}
			if !strings.Contains(verr.Detail(), tt.want) {
				t.Errorf("diagnostics %q do not contain %q", verr.Detail(), tt.want)
			}
		})
	}
}

func TestFlagsSelectPasses(t *testing.T) {
	m := fragment([]ir.Type{f32Type},
		ir.FunctionArgument{Name: "a", Type: 0, Binding: bind(ir.LocationBinding{Location: 0})},
		ir.FunctionArgument{Name: "b", Type: 0, Binding: bind(ir.LocationBinding{Location: 0})},
	)
	if _, err := valid.New(valid.FlagStructure, valid.DefaultCapabilities).Validate(m); err != nil {
		t.Errorf("structure only: %v", err)
	}
	if _, err := valid.New(valid.FlagBindings, valid.DefaultCapabilities).Validate(m); err == nil {
		t.Error("bindings pass accepted a duplicate location")
	}
}

func TestStructureChecksEntryPointBodies(t *testing.T) {
	m := fragment(nil)
	// A break outside of any loop.
	m.EntryPoints[0].Function.Body = ir.Block{{Kind: ir.StmtBreak{}}}
	_, err := valid.New(valid.FlagStructure, valid.CapabilitiesAll).Validate(m)
	if err == nil {
		t.Fatal("expected a structural error")
	}
	if !strings.Contains(err.Error(), "entry point main") {
		t.Errorf("error %q does not name the entry point", err)
	}
}

func TestValidateNil(t *testing.T) {
	if _, err := valid.New(valid.FlagsAll, valid.CapabilitiesAll).Validate(nil); err == nil {
		t.Error("expected an error for a nil module")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &valid.Error{Diagnostics: []valid.Diagnostic{
		{Scope: `entry point "main"`, Message: "first"},
		{Message: "second"},
	}}
	if got, want := err.Error(), `entry point "main": first (and 1 more)`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := err.Detail(); got != "entry point \"main\": first\nsecond" {
		t.Errorf("Detail() = %q", got)
	}
}

func TestCapabilitiesString(t *testing.T) {
	if valid.DefaultCapabilities.Contains(valid.CapabilityClipDistance) {
		t.Error("default capabilities allow clip distances")
	}
	if !valid.DefaultCapabilities.Contains(valid.CapabilityCullDistance) {
		t.Error("default capabilities refuse cull distances")
	}
	if got := (valid.CapabilityFloat64 | valid.CapabilityMultiview).String(); got != "FLOAT64 | MULTIVIEW" {
		t.Errorf("String() = %q", got)
	}
	if got := valid.Capabilities(0).String(); got != "NONE" {
		t.Errorf("String() = %q", got)
	}
}
