// Command spvdis disassembles a SPIR-V binary into text assembly.
//
// Usage:
//
//	spvdis [-o out.spvasm] <file.spv | ->
//
// glslc -o - shader.vert | spvdis - prints what the wgslgen front end sees.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/gogpu/wgslgen/spirv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("spvdis", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.StringP("output", "o", "", "output file (default: stdout)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: spvdis [-o file] <input.spv | ->")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	var (
		data []byte
		err  error
	)
	if in := fs.Arg(0); in == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(in)
	}
	if err != nil {
		fmt.Fprintf(stderr, "spvdis: %v\n", err)
		return 1
	}

	text, err := spirv.Disassemble(data)
	if err != nil {
		fmt.Fprintf(stderr, "spvdis: %v\n", err)
		return 1
	}

	if *output != "" {
		err = os.WriteFile(*output, []byte(text), 0o644)
	} else {
		_, err = io.WriteString(stdout, text)
	}
	if err != nil {
		fmt.Fprintf(stderr, "spvdis: %v\n", err)
		return 1
	}
	return 0
}
