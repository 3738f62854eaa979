package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/wgslgen"
	"github.com/gogpu/wgslgen/glslc"
	"github.com/gogpu/wgslgen/internal/config"
	"github.com/gogpu/wgslgen/internal/spvtest"
)

type stubCompiler struct {
	cfg config.Config
}

func (s stubCompiler) Compile(_ context.Context, source string, stage wgslgen.Stage) ([]byte, error) {
	if strings.Contains(source, "syntax error") {
		return nil, &glslc.Diagnostic{Args: []string{s.cfg.Compiler.Binary}, Output: "shader.glsl:1: error: syntax error", Err: errors.New("exit status 1")}
	}
	if strings.Contains(source, "bad magic") {
		return []byte{0, 0, 0, 0}, nil
	}
	if stage == wgslgen.StageFragment {
		return spvtest.ConstantColorFragment(), nil
	}
	return spvtest.TriangleVertex(), nil
}

func useStub(t *testing.T) *config.Config {
	t.Helper()
	var seen config.Config
	old := newCompiler
	newCompiler = func(cfg config.Config) glslc.Compiler {
		seen = cfg
		return stubCompiler{cfg: cfg}
	}
	t.Cleanup(func() { newCompiler = old })
	return &seen
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "wgslgen version "+version+"\n", stdout)
}

func TestBuild(t *testing.T) {
	seen := useStub(t)
	root := t.TempDir()
	src, out := filepath.Join(root, "shaders"), filepath.Join(root, "out")
	writeFiles(t, src, map[string]string{"a.vert": "void main() {}", "a.frag": "void main() {}", "readme.txt": ""})

	code, stdout, stderr := execute(t, "build",
		"--config", filepath.Join(root, "none.toml"),
		"--src", src, "--out", out, "--mkdir", "--jobs", "2", "--glslc-args", "-O")
	// --config names a missing file explicitly.
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error:")
	assert.Empty(t, stdout)

	code, stdout, stderr = execute(t, "build", "--src", src, "--out", out, "--mkdir", "--jobs", "2", "--glslc-args", "-O")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "translated 2 shader(s) into "+out+"\n", stdout)
	assert.Equal(t, 2, seen.Jobs)
	assert.Equal(t, "-O", seen.Compiler.ExtraArgs)
	assert.Equal(t, "glslc", seen.Compiler.Binary)

	for _, name := range []string{"a.vert.wgsl", "a.frag.wgsl"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(out, "readme.txt.wgsl"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildUsesConfigFile(t *testing.T) {
	seen := useStub(t)
	root := t.TempDir()
	src, out := filepath.Join(root, "glsl"), filepath.Join(root, "wgsl")
	writeFiles(t, src, map[string]string{"a.frag": "void main() {}"})
	require.NoError(t, os.MkdirAll(out, 0o755))

	cfgPath := filepath.Join(root, "wgslgen.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"source_dir = '"+filepath.ToSlash(src)+"'\nout_dir = '"+filepath.ToSlash(out)+"'\nreflect = true\n\n[compiler]\nbinary = 'glslc-custom'\n"), 0o644))

	code, _, stderr := execute(t, "--config", cfgPath, "build", "--no-verify")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "glslc-custom", seen.Compiler.Binary)
	assert.True(t, seen.Reflect)
	assert.False(t, seen.VerifyOutput)

	_, err := os.Stat(filepath.Join(out, "a.frag.wgsl.bindings.toml"))
	assert.NoError(t, err)
}

func TestBuildInvalidConfig(t *testing.T) {
	useStub(t)
	root := t.TempDir()
	cfgPath := filepath.Join(root, "wgslgen.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sources = 'x'\n"), 0o644))

	code, _, stderr := execute(t, "--config", cfgPath, "build")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown keys")

	code, _, stderr = execute(t, "build", "--jobs", "0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "jobs must be at least 1, got 0")
}

func TestBuildCompileError(t *testing.T) {
	useStub(t)
	root := t.TempDir()
	src, out := filepath.Join(root, "shaders"), filepath.Join(root, "out")
	writeFiles(t, src, map[string]string{"a.vert": "syntax error"})
	require.NoError(t, os.MkdirAll(out, 0o755))

	code, stdout, stderr := execute(t, "build", "--src", src, "--out", out, "--no-color", "-v")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "error: "+filepath.Join(src, "a.vert")+": compile vert shader:")
	assert.Contains(t, stderr, "shader.glsl:1: error: syntax error")
	assert.Contains(t, stderr, "compiler: [glslc]")
	assert.NotContains(t, stderr, "\x1b[")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildInternalError(t *testing.T) {
	useStub(t)
	root := t.TempDir()
	src, out := filepath.Join(root, "shaders"), filepath.Join(root, "out")
	writeFiles(t, src, map[string]string{"a.frag": "bad magic"})
	require.NoError(t, os.MkdirAll(out, 0o755))

	code, _, stderr := execute(t, "build", "--src", src, "--out", out, "--no-color")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "internal error:")
}

func TestTranslate(t *testing.T) {
	useStub(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tri.vert": "void main() {}", "notes.md": ""})

	code, stdout, stderr := execute(t, "translate", filepath.Join(dir, "tri.vert"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "@vertex")
	assert.True(t, strings.HasSuffix(stdout, "}\n"))

	code, _, stderr = execute(t, "translate", filepath.Join(dir, "notes.md"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not a shader source")

	code, _, _ = execute(t, "translate")
	assert.Equal(t, 1, code)
}

func TestConfig(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "wgslgen.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("jobs = 4\n\n[compiler]\nextra_args = '-O'\n"), 0o644))

	code, stdout, stderr := execute(t, "config", "--config", cfgPath)
	require.Equal(t, 0, code, stderr)

	cfg := config.Default()
	require.NoError(t, config.Decode([]byte(stdout), &cfg))
	want := config.Default()
	want.Jobs = 4
	want.Compiler.ExtraArgs = "-O"
	assert.Equal(t, want, cfg)

	require.NoError(t, os.WriteFile(cfgPath, []byte("jobs = 0\n"), 0o644))
	code, stdout, stderr = execute(t, "config", "--config", cfgPath)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "jobs must be at least 1")
}
