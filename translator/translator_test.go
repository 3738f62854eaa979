package translator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/wgslgen"
	"github.com/gogpu/wgslgen/bindings"
	"github.com/gogpu/wgslgen/glslc"
	"github.com/gogpu/wgslgen/internal/spvtest"
)

// fakeCompiler serves prebuilt SPIR-V instead of running glslc. Sources
// containing "syntax error" fail with a diagnostic.
type fakeCompiler struct {
	calls atomic.Int32
	spv   func(stage wgslgen.Stage) []byte
}

func (f *fakeCompiler) Compile(ctx context.Context, source string, stage wgslgen.Stage) ([]byte, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(source, "syntax error") {
		return nil, &glslc.Diagnostic{
			Args:   []string{"glslc", "-fshader-stage=" + stage.String()},
			Output: "shader.glsl:1: error: '' : syntax error\n",
			Err:    errors.New("exit status 1"),
		}
	}
	if f.spv != nil {
		return f.spv(stage), nil
	}
	if stage == wgslgen.StageFragment {
		return spvtest.ConstantColorFragment(), nil
	}
	return spvtest.TriangleVertex(), nil
}

var _ glslc.Compiler = (*fakeCompiler)(nil)

type fixture struct {
	src, out string
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{src: filepath.Join(root, "shaders"), out: filepath.Join(root, "shaders", "compiled")}
	require.NoError(t, os.MkdirAll(f.out, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(f.src, name), []byte(content), 0o644))
	}
	return f
}

func (f fixture) options() Options {
	return Options{SourceDir: f.src, OutDir: f.out, Jobs: 1, Verify: true}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestBuildWritesOneOutputPerShader(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.vert":     "void main() {}",
		"a.frag":     "void main() {}",
		"readme.txt": "not a shader",
	})
	require.NoError(t, os.Mkdir(filepath.Join(f.src, "nested.vert"), 0o755))

	outputs, err := New(&fakeCompiler{}, f.options()).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, []string{"a.frag.wgsl", "a.vert.wgsl"}, listDir(t, f.out))

	vert, err := os.ReadFile(filepath.Join(f.out, "a.vert.wgsl"))
	require.NoError(t, err)
	assert.Contains(t, string(vert), "@vertex")
	assert.Contains(t, string(vert), "@group(0) @binding(0) var<uniform>")

	frag, err := os.ReadFile(filepath.Join(f.out, "a.frag.wgsl"))
	require.NoError(t, err)
	assert.Contains(t, string(frag), "@fragment")
}

func TestBuildIsDeterministic(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}"})
	tr := New(&fakeCompiler{}, f.options())

	_, err := tr.Build(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(f.out, "a.vert.wgsl"))
	require.NoError(t, err)

	_, err = tr.Build(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(f.out, "a.vert.wgsl"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a.vert.wgsl"}, listDir(t, f.out), "no temporary files left behind")
}

func TestBuildCompileErrorWritesNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.vert": "void main() {}",
		"b.frag": "syntax error",
	})
	stale := filepath.Join(f.out, "a.vert.wgsl")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := New(&fakeCompiler{}, f.options()).Build(context.Background())
	require.Error(t, err)

	var ce *wgslgen.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, wgslgen.StageFragment, ce.Stage)
	var diag *glslc.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Contains(t, diag.Output, "syntax error")

	old, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.Equal(t, "old", string(old), "existing outputs are not overwritten")
	assert.Equal(t, []string{"a.vert.wgsl"}, listDir(t, f.out))
}

func TestBuildCorruptedSPIRV(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}"})
	tr := New(&fakeCompiler{}, f.options())
	tr.SetHook(func(_ Source, spv []byte) []byte {
		spv[0] ^= 0xFF
		return spv
	})

	_, err := tr.Build(context.Background())
	var ve *wgslgen.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "failed to validate SPIR-V module")
	assert.Empty(t, listDir(t, f.out))
}

func TestBuildMagicMismatch(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}"})
	fc := &fakeCompiler{spv: func(wgslgen.Stage) []byte { return []byte{1, 2, 3, 4, 5, 6, 7, 8} }}

	_, err := New(fc, f.options()).Build(context.Background())
	var mm *wgslgen.MagicMismatchError
	require.ErrorAs(t, err, &mm)
	assert.True(t, wgslgen.IsInternal(err))
}

func TestBuildRejectsNonUTF8(t *testing.T) {
	f := newFixture(t, map[string]string{"a.frag": "void main() {}\xff"})
	fc := &fakeCompiler{}

	_, err := New(fc, f.options()).Build(context.Background())
	var re *wgslgen.ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, int32(0), fc.calls.Load(), "compiler not invoked")
}

func TestBuildOutDir(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}"})
	opts := f.options()
	opts.OutDir = filepath.Join(f.src, "missing")

	_, err := New(&fakeCompiler{}, opts).Build(context.Background())
	var we *wgslgen.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, opts.OutDir, we.Path)

	opts.CreateOutDir = true
	_, err = New(&fakeCompiler{}, opts).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.vert.wgsl"}, listDir(t, opts.OutDir))
}

func TestBuildOutDirIsFile(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}", "out": "x"})
	opts := f.options()
	opts.OutDir = filepath.Join(f.src, "out")

	_, err := New(&fakeCompiler{}, opts).Build(context.Background())
	var we *wgslgen.WriteError
	require.ErrorAs(t, err, &we)
}

func TestBuildFollowsSymlinks(t *testing.T) {
	f := newFixture(t, map[string]string{"real.glsl": "void main() {}"})
	if err := os.Symlink("real.glsl", filepath.Join(f.src, "a.vert")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink("missing.glsl", filepath.Join(f.src, "b.frag")))

	sources, err := Scan(f.src)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, filepath.Join(f.src, "a.vert"), sources[0].Path)

	// the dangling link fails the build instead of being dropped
	_, err = New(&fakeCompiler{}, f.options()).Build(context.Background())
	var readErr *wgslgen.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, filepath.Join(f.src, "b.frag"), readErr.Path)

	require.NoError(t, os.Remove(filepath.Join(f.src, "b.frag")))
	outputs, err := New(&fakeCompiler{}, f.options()).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, []string{"a.vert.wgsl"}, listDir(t, f.out))
}

func TestBuildWriteFailureLeavesOutDirUntouched(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}", "b.vert": "void main() {}"})
	require.NoError(t, os.Mkdir(filepath.Join(f.out, "b.vert.wgsl"), 0o755))

	_, err := New(&fakeCompiler{}, f.options()).Build(context.Background())
	var writeErr *wgslgen.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(f.out, "b.vert.wgsl"), writeErr.Path)
	assert.Equal(t, []string{"b.vert.wgsl"}, listDir(t, f.out), "a.vert.wgsl written or temporary files left behind")
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".vert"] = "void main() {}"
		files[name+".frag"] = "void main() {}"
	}
	f := newFixture(t, files)

	sources, err := Scan(f.src)
	require.NoError(t, err)

	seq, err := New(&fakeCompiler{}, f.options()).TranslateAll(context.Background(), sources)
	require.NoError(t, err)

	opts := f.options()
	opts.Jobs = 4
	par, err := New(&fakeCompiler{}, opts).TranslateAll(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestBuildParallelAbortsOnError(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.vert": "void main() {}",
		"b.vert": "syntax error",
		"c.vert": "void main() {}",
	})
	opts := f.options()
	opts.Jobs = 3

	_, err := New(&fakeCompiler{}, opts).Build(context.Background())
	var ce *wgslgen.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, filepath.Join(f.src, "b.vert"), ce.Path)
	assert.Empty(t, listDir(t, f.out))
}

func TestBuildReflect(t *testing.T) {
	f := newFixture(t, map[string]string{"a.vert": "void main() {}"})
	opts := f.options()
	opts.Reflect = true

	_, err := New(&fakeCompiler{}, opts).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.vert.wgsl", "a.vert.wgsl.bindings.toml"}, listDir(t, f.out))

	data, err := os.ReadFile(filepath.Join(f.out, "a.vert.wgsl.bindings.toml"))
	require.NoError(t, err)
	m, err := bindings.ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, "a.vert", m.Shader)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "buffer", m.Entries[0].Kind)
	assert.Equal(t, "Uniform", m.Entries[0].Type)
	assert.Equal(t, "Vertex", m.Entries[0].Visibility)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "absent"))
	var re *wgslgen.ReadError
	require.ErrorAs(t, err, &re)
}

func TestScanUnknownStage(t *testing.T) {
	recognized[".comp"] = true
	defer delete(recognized, ".comp")

	f := newFixture(t, map[string]string{"a.comp": "void main() {}"})
	_, err := Scan(f.src)
	var ue *wgslgen.UnknownStageError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, ".comp", ue.Ext)
	assert.True(t, wgslgen.IsInternal(err))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "tri.vert.wgsl"), OutputPath("out", filepath.Join("src", "tri.vert")))
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor(filepath.Join("dir", "x.frag"))
	require.NoError(t, err)
	assert.Equal(t, wgslgen.StageFragment, src.Stage)

	_, err = SourceFor("notes.txt")
	require.Error(t, err)
	assert.False(t, wgslgen.IsInternal(err))
}
