package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/gogpu/wgslgen"
	"github.com/gogpu/wgslgen/glslc"
	"github.com/gogpu/wgslgen/internal/config"
)

const version = "0.1.0"

// newCompiler builds the GLSL compiler for a configuration. Tests replace it.
var newCompiler = func(cfg config.Config) glslc.Compiler {
	opts := glslc.DefaultOptions()
	opts.Binary = cfg.Compiler.Binary
	opts.ExtraArgs = cfg.Compiler.ExtraArgs
	return glslc.New(opts)
}

type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	wgslgen.SetLogger(nil)
	if err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wgslgen",
		Short:         "Translate GLSL shaders to WGSL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if a.flags.verbose {
				level = slog.LevelDebug
			}
			wgslgen.SetLogger(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", config.DefaultFile, "configuration file")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log every file and stage")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored error output")

	root.AddCommand(a.buildCommand(), a.translateCommand(), a.configCommand(), a.versionCommand())
	return root
}

// loadConfig reads the configuration file. An explicitly given file must
// exist.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(a.flags.configPath, cmd.Flags().Changed("config"))
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wgslgen version %s\n", version)
		},
	}
}

func (a *app) printError(err error) {
	opts := []termenv.OutputOption{}
	if a.flags.noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	out := termenv.NewOutput(a.stderr, opts...)

	label := "error"
	if wgslgen.IsInternal(err) {
		label = "internal error"
	}
	styled := out.String(label + ":").Foreground(termenv.ANSIRed).Bold()
	fmt.Fprintf(a.stderr, "%s %v\n", styled, err)

	var diag *glslc.Diagnostic
	if errors.As(err, &diag) && a.flags.verbose {
		fmt.Fprintf(a.stderr, "%s %v\n", out.String("compiler:").Faint(), diag.Args)
	}
}
