// Package translator turns a directory of GLSL shaders into WGSL files.
//
// Every file of the source directory whose extension is ".vert" or ".frag"
// is compiled to SPIR-V, parsed, validated and written as WGSL to
// <out>/<file name>.wgsl. Symbolic links are followed. Other files and
// subdirectories are ignored.
//
// Nothing is written when a shader fails to translate: all shaders are
// translated in memory first and the first failure aborts the build. The
// outputs are then staged next to their targets and renamed into place
// together.
package translator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/wgslgen"
	"github.com/gogpu/wgslgen/bindings"
	"github.com/gogpu/wgslgen/glslc"
)

// recognized is the extension filter of the directory scan.
var recognized = map[string]bool{
	".vert": true,
	".frag": true,
}

// Source is a shader file found by Scan.
type Source struct {
	Path  string
	Stage wgslgen.Stage
}

// Output is the translation of one Source.
type Output struct {
	Source Source

	// Path is <out dir>/<source file name>.wgsl.
	Path string

	WGSL string

	// Manifest holds the TOML binding manifest when reflection is on.
	Manifest []byte
}

// ManifestPath returns the path of the binding manifest written next to
// the output.
func (o *Output) ManifestPath() string { return o.Path + ".bindings.toml" }

// Options configures a Translator.
type Options struct {
	SourceDir string
	OutDir    string

	// Jobs is the number of shaders translated concurrently. Values below
	// two translate sequentially.
	Jobs int

	// CreateOutDir creates OutDir when it does not exist.
	CreateOutDir bool

	// Verify re-parses every output with naga's WGSL front end.
	Verify bool

	// Reflect writes a binding manifest next to every output.
	Reflect bool
}

// Hook can corrupt or replace the SPIR-V of a shader between compilation
// and parsing. Tests use it for fault injection.
type Hook func(src Source, spv []byte) []byte

// Translator runs builds.
type Translator struct {
	opts     Options
	compiler glslc.Compiler
	hook     Hook
}

// New returns a translator that compiles GLSL with compiler.
func New(compiler glslc.Compiler, opts Options) *Translator {
	return &Translator{opts: opts, compiler: compiler}
}

// SetHook installs a hook run on every compiled module.
func (t *Translator) SetHook(h Hook) { t.hook = h }

// Scan lists the recognized shaders of dir, sorted by name.
func Scan(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &wgslgen.ReadError{Path: dir, Err: err}
	}
	log := wgslgen.Logger()

	var sources []Source
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		ext := filepath.Ext(e.Name())
		if !recognized[ext] || !isShaderFile(e, path) {
			log.Debug("skipping", "path", path)
			continue
		}
		stage, err := wgslgen.StageFromExtension(path, ext)
		if err != nil {
			return nil, err
		}
		log.Debug("found shader", "path", path, "stage", stage)
		sources = append(sources, Source{Path: path, Stage: stage})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// isShaderFile reports whether the entry is a file, following symbolic
// links. A link that cannot be resolved is kept so that reading it fails
// with a ReadError instead of dropping the shader.
func isShaderFile(e fs.DirEntry, path string) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return true
	}
	return fi.Mode().IsRegular()
}

// SourceFor classifies a single file the way Scan does. A file outside the
// recognized set is an error.
func SourceFor(path string) (Source, error) {
	ext := filepath.Ext(path)
	if !recognized[ext] {
		return Source{}, fmt.Errorf("%s: not a shader source, want one of .vert or .frag", path)
	}
	stage, err := wgslgen.StageFromExtension(path, ext)
	if err != nil {
		return Source{}, err
	}
	return Source{Path: path, Stage: stage}, nil
}

// Build translates every shader of the source directory and writes the
// outputs. Nothing is written when any shader fails.
func (t *Translator) Build(ctx context.Context) ([]Output, error) {
	sources, err := Scan(t.opts.SourceDir)
	if err != nil {
		return nil, err
	}
	outputs, err := t.TranslateAll(ctx, sources)
	if err != nil {
		return nil, err
	}
	if err := t.Write(outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// TranslateAll translates sources in memory. The outputs keep the order of
// sources. The first error cancels the remaining work.
func (t *Translator) TranslateAll(ctx context.Context, sources []Source) ([]Output, error) {
	outputs := make([]Output, len(sources))
	if t.opts.Jobs < 2 {
		for i, src := range sources {
			out, err := t.Translate(ctx, src)
			if err != nil {
				return nil, err
			}
			outputs[i] = *out
		}
		return outputs, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Jobs)
	for i, src := range sources {
		g.Go(func() error {
			out, err := t.Translate(ctx, src)
			if err != nil {
				return err
			}
			outputs[i] = *out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Translate runs the pipeline for one shader without writing anything.
func (t *Translator) Translate(ctx context.Context, src Source) (*Output, error) {
	log := wgslgen.Logger().With("path", src.Path)

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &wgslgen.ReadError{Path: src.Path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &wgslgen.ReadError{Path: src.Path, Err: fmt.Errorf("source is not valid UTF-8")}
	}

	start := time.Now()
	spv, err := t.compiler.Compile(ctx, string(data), src.Stage)
	if err != nil {
		return nil, &wgslgen.CompileError{Path: src.Path, Stage: src.Stage, Err: err}
	}
	if err := wgslgen.CheckMagic(src.Path, spv); err != nil {
		return nil, err
	}
	log.Debug("compiled GLSL", "elapsed", time.Since(start), "bytes", len(spv))

	if t.hook != nil {
		spv = t.hook(src, spv)
	}

	opts := wgslgen.DefaultOptions()
	opts.Verify = t.opts.Verify
	result, err := wgslgen.Translate(src.Path, spv, opts)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Source: src,
		Path:   OutputPath(t.opts.OutDir, src.Path),
		WGSL:   result.WGSL,
	}
	if t.opts.Reflect {
		list, err := bindings.Collect(result.Module, result.Info)
		if err != nil {
			return nil, &wgslgen.EmitError{Path: src.Path, Err: err}
		}
		out.Manifest, err = bindings.NewManifest(filepath.Base(src.Path), list).Marshal()
		if err != nil {
			return nil, &wgslgen.EmitError{Path: src.Path, Err: err}
		}
	}
	return out, nil
}

// OutputPath returns the WGSL path of a shader: the source file name with
// ".wgsl" appended, inside outDir.
func OutputPath(outDir, source string) string {
	return filepath.Join(outDir, filepath.Base(source)+".wgsl")
}
