// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl_test

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/wgslgen/internal/spvtest"
	"github.com/gogpu/wgslgen/spirv"
	"github.com/gogpu/wgslgen/valid"
	"github.com/gogpu/wgslgen/wgsl"
)

func translate(t *testing.T, data []byte) (string, wgsl.TranslationInfo) {
	t.Helper()
	module, err := spirv.Parse(data, spirv.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	info, err := valid.New(valid.FlagsAll, valid.DefaultCapabilities).Validate(module)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	source, ti, err := wgsl.Compile(module, info, wgsl.Options{Flags: wgsl.WriterFlagNone})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return source, ti
}

var fixtures = []struct {
	name string
	data func() []byte
	want []string
}{
	{
		name: "triangle vertex",
		data: spvtest.TriangleVertex,
		want: []string{
			"@vertex\nfn main(",
			"@builtin(vertex_index)",
			"@builtin(position) gl_Position: vec4<f32>",
			"@group(0) @binding(0) var<uniform>",
			"struct Locals {",
			"u_angle: f32,",
			"cos(",
		},
	},
	{
		name: "triangle fragment",
		data: spvtest.TriangleFragment,
		want: []string{"@fragment\nfn main(", "@location(0) v_color: vec4<f32>", "struct FragmentOutput {"},
	},
	{
		name: "constant color",
		data: spvtest.ConstantColorFragment,
		want: []string{"vec4<f32>(1.0f, 0.5f, 0.0f, 1.0f)"},
	},
	{
		name: "branch",
		data: spvtest.BranchFragment,
		want: []string{"if "},
	},
	{
		name: "loop",
		data: spvtest.LoopFragment,
		want: []string{"loop {", "var acc: f32;", "var i: i32;"},
	},
	{
		name: "switch",
		data: spvtest.SwitchFragment,
		want: []string{"switch ", "case 0: {", "@interpolate(flat) mode: i32", "default"},
	},
	{
		name: "textured",
		data: spvtest.TexturedFragment,
		want: []string{
			"@group(0) @binding(1) var t_diffuse: texture_2d<f32>;",
			"@group(0) @binding(2) var s_diffuse: sampler;",
			"textureSample(t_diffuse, s_diffuse, ",
		},
	},
	{
		name: "compute",
		data: spvtest.ComputeDouble,
		want: []string{
			"@compute @workgroup_size(64, 1, 1)",
			"@group(0) @binding(0) var<storage, read_write>",
			"values: array<u32>,",
			"@builtin(global_invocation_id)",
		},
	},
}

func TestCompileFixtures(t *testing.T) {
	for _, tt := range fixtures {
		t.Run(tt.name, func(t *testing.T) {
			source, ti := translate(t, tt.data())
			if !strings.HasSuffix(source, "}\n") || strings.HasSuffix(source, "\n\n") {
				t.Errorf("output should end with a single newline after the last function:\n%q", source)
			}
			for _, want := range tt.want {
				if !strings.Contains(source, want) {
					t.Errorf("missing %q in:\n%s", want, source)
				}
			}
			if got := ti.EntryPointNames["main"]; got != "main" {
				t.Errorf("entry point main written as %q", got)
			}
		})
	}
}

// The WGSL front end in naga must accept everything the writer produces.
func TestOutputParses(t *testing.T) {
	for _, tt := range fixtures {
		t.Run(tt.name, func(t *testing.T) {
			source, _ := translate(t, tt.data())
			ast, err := naga.Parse(source)
			if err != nil {
				t.Fatalf("naga.Parse: %v\n%s", err, source)
			}
			if _, err := naga.LowerWithSource(ast, source); err != nil {
				t.Fatalf("naga.LowerWithSource: %v\n%s", err, source)
			}
		})
	}
}

func TestDeterministicOutput(t *testing.T) {
	for _, tt := range fixtures {
		t.Run(tt.name, func(t *testing.T) {
			first, _ := translate(t, tt.data())
			for i := 0; i < 3; i++ {
				if again, _ := translate(t, tt.data()); again != first {
					t.Fatalf("run %d differs:\n%s\n---\n%s", i, first, again)
				}
			}
		})
	}
}

// Round trip: the produced WGSL compiles back to SPIR-V through naga.
func TestRoundTripToSPIRV(t *testing.T) {
	for _, tt := range fixtures {
		t.Run(tt.name, func(t *testing.T) {
			source, _ := translate(t, tt.data())
			spv, err := naga.Compile(source)
			if err != nil {
				t.Skipf("naga cannot compile this shader back to SPIR-V: %v", err)
			}
			if len(spv) < 20 || len(spv)%4 != 0 {
				t.Fatalf("naga produced %d bytes of SPIR-V", len(spv))
			}
			if magic := uint32(spv[0]) | uint32(spv[1])<<8 | uint32(spv[2])<<16 | uint32(spv[3])<<24; magic != spirv.MagicNumber {
				t.Errorf("magic = %#x", magic)
			}
		})
	}
}
