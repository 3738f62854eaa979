package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/wgslgen/internal/config"
	"github.com/gogpu/wgslgen/translator"
)

type buildFlags struct {
	src       string
	out       string
	jobs      int
	glslc     string
	glslcArgs string
	mkdir     bool
	reflect   bool
	noVerify  bool
}

func (f *buildFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringVar(&f.src, "src", def.SourceDir, "shader source directory")
	fs.StringVar(&f.out, "out", def.OutDir, "output directory")
	fs.IntVarP(&f.jobs, "jobs", "j", def.Jobs, "shaders translated concurrently")
	fs.StringVar(&f.glslc, "glslc", def.Compiler.Binary, "glslc executable")
	fs.StringVar(&f.glslcArgs, "glslc-args", "", "extra glslc arguments, shell quoted")
	fs.BoolVar(&f.mkdir, "mkdir", false, "create the output directory if missing")
	fs.BoolVar(&f.reflect, "reflect", false, "write a bindings manifest next to each output")
	fs.BoolVar(&f.noVerify, "no-verify", false, "skip re-parsing the generated WGSL")
}

// apply overrides cfg with the flags given on the command line.
func (f *buildFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("src") {
		cfg.SourceDir = f.src
	}
	if fs.Changed("out") {
		cfg.OutDir = f.out
	}
	if fs.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if fs.Changed("glslc") {
		cfg.Compiler.Binary = f.glslc
	}
	if fs.Changed("glslc-args") {
		cfg.Compiler.ExtraArgs = f.glslcArgs
	}
	if fs.Changed("mkdir") {
		cfg.CreateOutDir = f.mkdir
	}
	if fs.Changed("reflect") {
		cfg.Reflect = f.reflect
	}
	if fs.Changed("no-verify") {
		cfg.VerifyOutput = !f.noVerify
	}
}

func (a *app) buildCommand() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Translate every .vert and .frag shader of the source directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			tr := translator.New(newCompiler(cfg), translator.Options{
				SourceDir:    cfg.SourceDir,
				OutDir:       cfg.OutDir,
				Jobs:         cfg.Jobs,
				CreateOutDir: cfg.CreateOutDir,
				Verify:       cfg.VerifyOutput,
				Reflect:      cfg.Reflect,
			})
			outputs, err := tr.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "translated %d shader(s) into %s\n", len(outputs), cfg.OutDir)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
