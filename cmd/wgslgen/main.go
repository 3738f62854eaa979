// Command wgslgen translates GLSL vertex and fragment shaders to WGSL.
//
// Usage:
//
//	wgslgen build [flags]          # translate a shader directory
//	wgslgen translate <file>       # translate one shader to stdout
//	wgslgen config                 # print the effective configuration
//	wgslgen version
//
// Settings are read from wgslgen.toml in the working directory when it
// exists. Flags override the file.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
