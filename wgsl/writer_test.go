// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/wgslgen/valid"
)

func bind(b ir.Binding) *ir.Binding { return &b }

func u32p(v uint32) *uint32 { return &v }

func u8p(v uint8) *uint8 { return &v }

var (
	f32Inner  = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	i32Inner  = ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	vec4Inner = ir.VectorType{Size: ir.Vec4, Scalar: f32Inner}
)

func compileModule(t *testing.T, module *ir.Module, options Options) (string, error) {
	t.Helper()
	info, err := valid.New(valid.FlagsAll, valid.CapabilitiesAll).Validate(module)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	source, _, err := Compile(module, info, options)
	return source, err
}

// colorFragment returns a fragment entry point writing a zero color to
// location 0. Callers add types after the first two.
func colorFragment(types ...ir.Type) *ir.Module {
	ret := ir.ExpressionHandle(0)
	return &ir.Module{
		Types: append([]ir.Type{{Inner: f32Inner}, {Inner: vec4Inner}}, types...),
		EntryPoints: []ir.EntryPoint{{
			Name:  "main",
			Stage: ir.StageFragment,
			Function: ir.Function{
				Name: "main",
				Result: &ir.FunctionResult{
					Type:    1,
					Binding: bind(ir.LocationBinding{Location: 0}),
				},
				Expressions: []ir.Expression{{Kind: ir.ExprZeroValue{Type: 1}}},
				Body:        ir.Block{{Kind: ir.StmtReturn{Value: &ret}}},
			},
		}},
	}
}

func TestWriteStructWithPadding(t *testing.T) {
	tests := []struct {
		name string
		span uint32
		want string
	}{
		{
			name: "gap between members",
			span: 48,
			want: "struct Params {\n    @size(32) a: f32,\n    b: vec4<f32>,\n}\n",
		},
		{
			name: "trailing padding",
			span: 64,
			want: "struct Params {\n    @size(32) a: f32,\n    @size(32) b: vec4<f32>,\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := colorFragment(ir.Type{Name: "Params", Inner: ir.StructType{
				Members: []ir.StructMember{
					{Name: "a", Type: 0, Offset: 0},
					{Name: "b", Type: 1, Offset: 32},
				},
				Span: tt.span,
			}})
			module.GlobalVariables = []ir.GlobalVariable{{
				Name:    "params",
				Space:   ir.SpaceUniform,
				Binding: &ir.ResourceBinding{Group: 0, Binding: 0},
				Type:    2,
			}}

			source, err := compileModule(t, module, Options{})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if !strings.HasPrefix(source, tt.want) {
				t.Errorf("struct mismatch\ngot:\n%s\nwant prefix:\n%s", source, tt.want)
			}
		})
	}
}

func TestWriteModule(t *testing.T) {
	module := colorFragment(ir.Type{Name: "Params", Inner: ir.StructType{
		Members: []ir.StructMember{
			{Name: "a", Type: 0, Offset: 0},
			{Name: "b", Type: 1, Offset: 16},
		},
		Span: 32,
	}})
	module.GlobalVariables = []ir.GlobalVariable{{
		Name:    "params",
		Space:   ir.SpaceUniform,
		Binding: &ir.ResourceBinding{Group: 0, Binding: 0},
		Type:    2,
	}}

	source, err := compileModule(t, module, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := `struct Params {
    a: f32,
    b: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;

@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>();
}
`
	if source != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", source, want)
	}
}

func TestBakeExpressions(t *testing.T) {
	tests := []struct {
		name  string
		flags WriterFlags
		want  []string
	}{
		{
			name: "inferred",
			want: []string{
				"fn main(@location(0) x: f32) -> @location(0) vec4<f32> {",
				"    let _e1 = (x + x);",
				"    return vec4<f32>(_e1, _e1, _e1, _e1);",
			},
		},
		{
			name:  "explicit types",
			flags: WriterFlagExplicitTypes,
			want: []string{
				"    let _e1: f32 = (x + x);",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := colorFragment()
			ret := ir.ExpressionHandle(2)
			ep := &module.EntryPoints[0]
			ep.Function.Arguments = []ir.FunctionArgument{{
				Name: "x",
				Type: 0,
				Binding: bind(ir.LocationBinding{
					Location:      0,
					Interpolation: &ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCenter},
				}),
			}}
			ep.Function.Expressions = []ir.Expression{
				{Kind: ir.ExprFunctionArgument{Index: 0}},
				{Kind: ir.ExprBinary{Op: ir.BinaryAdd, Left: 0, Right: 0}},
				{Kind: ir.ExprCompose{Type: 1, Components: []ir.ExpressionHandle{1, 1, 1, 1}}},
			}
			ep.Function.Body = ir.Block{
				{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 3}}},
				{Kind: ir.StmtReturn{Value: &ret}},
			}

			source, err := compileModule(t, module, Options{Flags: tt.flags})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(source, want+"\n") {
					t.Errorf("missing line %q in:\n%s", want, source)
				}
			}
		})
	}
}

func TestConversions(t *testing.T) {
	module := colorFragment(ir.Type{Inner: i32Inner})
	ret := ir.ExpressionHandle(5)
	ep := &module.EntryPoints[0]
	ep.Function.Arguments = []ir.FunctionArgument{{
		Name: "n",
		Type: 2,
		Binding: bind(ir.LocationBinding{
			Location:      0,
			Interpolation: &ir.Interpolation{Kind: ir.InterpolationFlat},
		}),
	}}
	ep.Function.Expressions = []ir.Expression{
		{Kind: ir.ExprFunctionArgument{Index: 0}},
		{Kind: ir.ExprAs{Expr: 0, Kind: ir.ScalarUint}},
		{Kind: ir.ExprAs{Expr: 0, Kind: ir.ScalarFloat, Convert: u8p(4)}},
		{Kind: ir.ExprBinary{Op: ir.BinaryShiftLeft, Left: 1, Right: 0}},
		{Kind: ir.ExprAs{Expr: 3, Kind: ir.ScalarFloat, Convert: u8p(4)}},
		{Kind: ir.ExprCompose{Type: 1, Components: []ir.ExpressionHandle{2, 4, 2, 4}}},
	}
	ep.Function.Body = ir.Block{
		{Kind: ir.StmtEmit{Range: ir.Range{Start: 1, End: 6}}},
		{Kind: ir.StmtReturn{Value: &ret}},
	}

	source, err := compileModule(t, module, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, want := range []string{
		"@location(0) @interpolate(flat) n: i32",
		"let _e2 = f32(n);",
		"let _e4 = f32((bitcast<u32>(n) << u32(n)));",
		"return vec4<f32>(_e2, _e4, _e2, _e4);",
	} {
		if !strings.Contains(source, want) {
			t.Errorf("missing %q in:\n%s", want, source)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	f64Module := colorFragment(ir.Type{Inner: ir.ScalarType{Kind: ir.ScalarFloat, Width: 8}})

	strideModule := colorFragment(ir.Type{Inner: ir.ArrayType{
		Base:   0,
		Size:   ir.ArraySize{Constant: u32p(4)},
		Stride: 16,
	}})

	pointSize := colorFragment(ir.Type{Name: "VertexOutput", Inner: ir.StructType{
		Members: []ir.StructMember{
			{Name: "position", Type: 1, Binding: bind(ir.BuiltinBinding{Builtin: ir.BuiltinPosition})},
			{Name: "size", Type: 0, Binding: bind(ir.BuiltinBinding{Builtin: ir.BuiltinPointSize}), Offset: 16},
		},
		Span: 32,
	}})
	vs := &pointSize.EntryPoints[0]
	vs.Stage = ir.StageVertex
	vs.Function.Result = &ir.FunctionResult{Type: 2}
	vs.Function.Expressions = []ir.Expression{{Kind: ir.ExprZeroValue{Type: 2}}}

	fallthrough_ := colorFragment(ir.Type{Inner: i32Inner})
	fs := &fallthrough_.EntryPoints[0]
	ret := ir.ExpressionHandle(0)
	fs.Function.Expressions = append(fs.Function.Expressions, ir.Expression{Kind: ir.Literal{Value: ir.LiteralI32(1)}})
	fs.Function.Body = ir.Block{
		{Kind: ir.StmtSwitch{Selector: 1, Cases: []ir.SwitchCase{
			{Value: ir.SwitchValueI32(0), Body: ir.Block{{Kind: ir.StmtKill{}}}, FallThrough: true},
			{Value: ir.SwitchValueDefault{}},
		}}},
		{Kind: ir.StmtReturn{Value: &ret}},
	}

	tests := []struct {
		name   string
		module *ir.Module
		want   string
	}{
		{"f64", f64Module, "64-bit floats"},
		{"array stride", strideModule, "array stride 16"},
		{"point size", pointSize, "point size output"},
		{"fallthrough", fallthrough_, "falls through"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileModule(t, tt.module, Options{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), "wgsl: ") {
				t.Errorf("error %q lacks the wgsl prefix", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCompileInfoMismatch(t *testing.T) {
	a, b := colorFragment(), colorFragment()
	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(b)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if _, _, err := Compile(a, info, Options{}); !errors.Is(err, ErrInfoMismatch) {
		t.Errorf("foreign info: got %v, want ErrInfoMismatch", err)
	}
	if _, _, err := Compile(a, nil, Options{}); !errors.Is(err, ErrInfoMismatch) {
		t.Errorf("nil info: got %v, want ErrInfoMismatch", err)
	}
	if _, _, err := Compile(nil, info, Options{}); err == nil {
		t.Error("nil module: expected an error")
	}
}

func TestTranslationInfo(t *testing.T) {
	module := colorFragment()
	module.EntryPoints[0].Name = "loop"
	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(module)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	source, ti, err := Compile(module, info, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := ti.EntryPointNames["loop"]; got != "loop_" {
		t.Errorf("entry point name = %q, want loop_", got)
	}
	if !strings.Contains(source, "fn loop_()") {
		t.Errorf("escaped entry point missing:\n%s", source)
	}
	if len(ti.Enables) != 0 {
		t.Errorf("unexpected enables %v", ti.Enables)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"color", "color"},
		{"loop", "loop_"},
		{"select", "select_"},
		{"", "fallback"},
		{"_", "fallback"},
		{"__reserved", "reserved"},
		{"1st", "_1st"},
		{"a.b", "a_b"},
		{"gl_Position", "gl_Position"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitize(tt.in, "fallback"); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNamer(t *testing.T) {
	n := newNamer()
	got := []string{
		n.call("x", "v"),
		n.call("x", "v"),
		n.call("x_1", "v"),
		n.call("x", "v"),
		n.call("", "global"),
		n.call("", "global"),
	}
	want := []string{"x", "x_1", "x_1_1", "x_2", "global", "global_1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name  string
		value ir.LiteralValue
		want  string
	}{
		{"f32 one", ir.LiteralF32(1), "1.0f"},
		{"f32 half", ir.LiteralF32(0.5), "0.5f"},
		{"f32 negative", ir.LiteralF32(-1), "-1.0f"},
		{"f32 large", ir.LiteralF32(1e20), "1e+20f"},
		{"f16", ir.LiteralF16(0.5), "0.5h"},
		{"i32", ir.LiteralI32(-5), "-5i"},
		{"i32 min", ir.LiteralI32(math.MinInt32), "i32(-2147483647 - 1)"},
		{"u32", ir.LiteralU32(3), "3u"},
		{"bool", ir.LiteralBool(true), "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := literal(tt.value)
			if err != nil {
				t.Fatalf("literal: %v", err)
			}
			if got != tt.want {
				t.Errorf("literal(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}

	for _, bad := range []ir.LiteralValue{
		ir.LiteralF32(float32(math.NaN())),
		ir.LiteralF32(float32(math.Inf(1))),
		ir.LiteralF64(1),
		ir.LiteralI64(1),
	} {
		if _, err := literal(bad); err == nil {
			t.Errorf("literal(%v): expected an error", bad)
		}
	}
}

func TestHalfBitsToFloat(t *testing.T) {
	tests := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3c00, 1},
		{0x3800, 0.5},
		{0xc000, -2},
		{0x7bff, 65504},
		{0x0001, 1.0 / (1 << 24)},
	}
	for _, tt := range tests {
		if got := halfBitsToFloat(tt.bits); got != tt.want {
			t.Errorf("halfBitsToFloat(%#04x) = %v, want %v", tt.bits, got, tt.want)
		}
	}
}

func TestInterpolationAttribute(t *testing.T) {
	tests := []struct {
		interp ir.Interpolation
		want   string
	}{
		{ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCenter}, ""},
		{ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCentroid}, "@interpolate(perspective, centroid)"},
		{ir.Interpolation{Kind: ir.InterpolationLinear, Sampling: ir.SamplingCenter}, "@interpolate(linear)"},
		{ir.Interpolation{Kind: ir.InterpolationLinear, Sampling: ir.SamplingSample}, "@interpolate(linear, sample)"},
		{ir.Interpolation{Kind: ir.InterpolationFlat}, "@interpolate(flat)"},
	}
	for _, tt := range tests {
		if got := interpolationAttribute(tt.interp); got != tt.want {
			t.Errorf("interpolationAttribute(%+v) = %q, want %q", tt.interp, got, tt.want)
		}
	}
}

func TestImageTypeName(t *testing.T) {
	tests := []struct {
		image ir.ImageType
		want  string
	}{
		{ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}, "texture_2d<f32>"},
		{ir.ImageType{Dim: ir.Dim2D, Arrayed: true, Class: ir.ImageClassSampled, SampledKind: ir.ScalarUint}, "texture_2d_array<u32>"},
		{ir.ImageType{Dim: ir.Dim2D, Multisampled: true, Class: ir.ImageClassSampled, SampledKind: ir.ScalarFloat}, "texture_multisampled_2d<f32>"},
		{ir.ImageType{Dim: ir.DimCube, Class: ir.ImageClassDepth}, "texture_depth_cube"},
		{
			ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassStorage, StorageFormat: ir.StorageFormatRgba8Unorm, StorageAccess: ir.StorageAccessWrite},
			"texture_storage_2d<rgba8unorm, write>",
		},
	}
	for _, tt := range tests {
		got, err := imageTypeName(tt.image)
		if err != nil {
			t.Errorf("imageTypeName(%+v): %v", tt.image, err)
			continue
		}
		if got != tt.want {
			t.Errorf("imageTypeName(%+v) = %q, want %q", tt.image, got, tt.want)
		}
	}
}
