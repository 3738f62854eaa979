package translator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gogpu/wgslgen"
)

// Write stores outputs in the output directory. Every file is first staged
// as a temporary file next to its target; the staged files are renamed over
// their targets only once all of them were written and no target is a
// directory. A failure before that point leaves the directory untouched.
func (t *Translator) Write(outputs []Output) error {
	if err := t.prepareOutDir(); err != nil {
		return err
	}
	var staged []stagedFile
	cleanup := func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}
	for i := range outputs {
		o := &outputs[i]
		f, err := stageFile(o.Path, []byte(o.WGSL))
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, f)
		if o.Manifest != nil {
			f, err := stageFile(o.ManifestPath(), o.Manifest)
			if err != nil {
				cleanup()
				return err
			}
			staged = append(staged, f)
		}
	}
	for _, f := range staged {
		if fi, err := os.Lstat(f.path); err == nil && fi.IsDir() {
			cleanup()
			return &wgslgen.WriteError{Path: f.path, Err: fmt.Errorf("is a directory")}
		}
	}

	log := wgslgen.Logger()
	for i, f := range staged {
		if err := os.Rename(f.tmp, f.path); err != nil {
			for _, rest := range staged[i:] {
				os.Remove(rest.tmp)
			}
			return &wgslgen.WriteError{Path: f.path, Err: err}
		}
	}
	for i := range outputs {
		log.Info("wrote shader", "source", outputs[i].Source.Path, "output", outputs[i].Path)
	}
	return nil
}

func (t *Translator) prepareOutDir() error {
	dir := t.opts.OutDir
	fi, err := os.Stat(dir)
	switch {
	case err == nil && !fi.IsDir():
		return &wgslgen.WriteError{Path: dir, Err: fmt.Errorf("not a directory")}
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && t.opts.CreateOutDir:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &wgslgen.WriteError{Path: dir, Err: err}
		}
		return nil
	default:
		return &wgslgen.WriteError{Path: dir, Err: err}
	}
}

type stagedFile struct {
	path string
	tmp  string
}

// stageFile writes data to a temporary file in the directory of path.
func stageFile(path string, data []byte) (stagedFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return stagedFile{}, &wgslgen.WriteError{Path: path, Err: err}
	}
	name := tmp.Name()
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err != nil {
		os.Remove(name)
		return stagedFile{}, &wgslgen.WriteError{Path: path, Err: err}
	}
	return stagedFile{path: path, tmp: name}, nil
}
