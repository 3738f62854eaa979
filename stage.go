package wgslgen

import (
	"fmt"
	"strings"
)

// Stage is the pipeline stage of a GLSL shader source.
type Stage uint8

const (
	// StageVertex is a vertex shader (".vert").
	StageVertex Stage = iota
	// StageFragment is a fragment shader (".frag").
	StageFragment
)

// String returns the short stage name used by glslc's -fshader-stage flag.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vert"
	case StageFragment:
		return "frag"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// Extension returns the file extension of the stage, including the dot.
func (s Stage) Extension() string { return "." + s.String() }

// StageFromExtension maps a file extension (".vert" or "vert") to a stage.
// Any other extension is an *UnknownStageError: callers are expected to
// filter extensions before asking, so reaching this is an internal error.
func StageFromExtension(path, ext string) (Stage, error) {
	switch strings.TrimPrefix(ext, ".") {
	case "vert":
		return StageVertex, nil
	case "frag":
		return StageFragment, nil
	}
	return 0, &UnknownStageError{Path: path, Ext: ext}
}
