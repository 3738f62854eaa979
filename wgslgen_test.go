package wgslgen_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/gogpu/wgslgen"
	"github.com/gogpu/wgslgen/internal/spvtest"
	"github.com/gogpu/wgslgen/spirv"
)

func TestStageFromExtension(t *testing.T) {
	tests := []struct {
		ext     string
		want    wgslgen.Stage
		wantErr bool
	}{
		{".vert", wgslgen.StageVertex, false},
		{"vert", wgslgen.StageVertex, false},
		{".frag", wgslgen.StageFragment, false},
		{".comp", 0, true},
		{".txt", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := wgslgen.StageFromExtension("x"+tt.ext, tt.ext)
		if tt.wantErr {
			var unknown *wgslgen.UnknownStageError
			if !errors.As(err, &unknown) {
				t.Errorf("%q: error = %v, want *UnknownStageError", tt.ext, err)
			}
			if !wgslgen.IsInternal(err) {
				t.Errorf("%q: unknown stage should be internal", tt.ext)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %v, %v; want %v", tt.ext, got, err, tt.want)
		}
	}
}

func TestStageNames(t *testing.T) {
	if got := wgslgen.StageVertex.Extension(); got != ".vert" {
		t.Errorf("vertex extension = %q", got)
	}
	if got := wgslgen.StageFragment.String(); got != "frag" {
		t.Errorf("fragment name = %q", got)
	}
}

func TestCheckMagic(t *testing.T) {
	if err := wgslgen.CheckMagic("a.vert", spvtest.TriangleVertex()); err != nil {
		t.Fatalf("valid module: %v", err)
	}
	for _, data := range [][]byte{nil, {0x03, 0x02}, {0, 0, 0, 0, 1}} {
		err := wgslgen.CheckMagic("a.vert", data)
		var mm *wgslgen.MagicMismatchError
		if !errors.As(err, &mm) {
			t.Fatalf("%v: error = %v, want *MagicMismatchError", data, err)
		}
		if !mm.Internal() || !wgslgen.IsInternal(err) {
			t.Error("magic mismatch should be internal")
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{
			name: "triangle vertex",
			data: spvtest.TriangleVertex(),
			want: []string{"@vertex", "@group(0) @binding(0) var<uniform>"},
		},
		{
			name: "constant color",
			data: spvtest.ConstantColorFragment(),
			want: []string{"@fragment", "@location(0)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := wgslgen.Translate(tt.name, tt.data, wgslgen.DefaultOptions())
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(result.WGSL, want) {
					t.Errorf("missing %q in:\n%s", want, result.WGSL)
				}
			}
			if result.Info.Module() != result.Module {
				t.Error("info belongs to another module")
			}
			if _, ok := result.EntryPoints["main"]; !ok {
				t.Errorf("entry points = %v", result.EntryPoints)
			}
		})
	}
}

func TestTranslateCorruptedModule(t *testing.T) {
	data := spvtest.TriangleVertex()
	data[0] ^= 0xFF

	result, err := wgslgen.Translate("a.vert", data, wgslgen.DefaultOptions())
	if result != nil {
		t.Fatalf("corrupted module produced output:\n%s", result.WGSL)
	}
	var ve *wgslgen.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	var pe *spirv.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error %v does not wrap *spirv.ParseError", err)
	}
	if !strings.Contains(err.Error(), "failed to validate SPIR-V module: ") {
		t.Errorf("message = %q", err.Error())
	}
	if wgslgen.IsInternal(err) {
		t.Error("a parse failure is not internal")
	}
}

func TestVerify(t *testing.T) {
	if err := wgslgen.Verify("@fragment\nfn main() -> @location(0) vec4<f32> {\n    return vec4<f32>();\n}\n"); err != nil {
		t.Errorf("valid WGSL: %v", err)
	}
	if err := wgslgen.Verify("fn main( {"); err == nil {
		t.Error("expected an error for malformed WGSL")
	}
}

func TestErrorMessages(t *testing.T) {
	cause := os.ErrNotExist
	tests := []struct {
		err  error
		want string
	}{
		{&wgslgen.ReadError{Path: "a.vert", Err: cause}, "a.vert: read: file does not exist"},
		{&wgslgen.CompileError{Path: "a.frag", Stage: wgslgen.StageFragment, Err: cause}, "a.frag: compile frag shader: file does not exist"},
		{&wgslgen.EmitError{Path: "a.vert", Err: cause}, "a.vert: emit WGSL: file does not exist"},
		{&wgslgen.WriteError{Path: "out/a.vert.wgsl", Err: cause}, "out/a.vert.wgsl: write: file does not exist"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if !errors.Is(tt.err, cause) {
			t.Errorf("%T does not unwrap to its cause", tt.err)
		}
		if wgslgen.IsInternal(tt.err) {
			t.Errorf("%T should not be internal", tt.err)
		}
	}
}

func TestLogger(t *testing.T) {
	defer wgslgen.SetLogger(nil)

	if wgslgen.Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}

	var buf bytes.Buffer
	wgslgen.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	if _, err := wgslgen.Translate("a.frag", spvtest.ConstantColorFragment(), wgslgen.DefaultOptions()); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(buf.String(), "path=a.frag") {
		t.Errorf("log output missing path:\n%s", buf.String())
	}

	wgslgen.SetLogger(nil)
	if wgslgen.Logger() == nil {
		t.Fatal("SetLogger(nil) left no logger")
	}
}
