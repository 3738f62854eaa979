package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/wgslgen/translator"
)

func (a *app) translateCommand() *cobra.Command {
	var noVerify bool
	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate one shader and print the WGSL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := translator.SourceFor(args[0])
			if err != nil {
				return err
			}
			tr := translator.New(newCompiler(cfg), translator.Options{
				Verify: cfg.VerifyOutput && !noVerify,
			})
			out, err := tr.Translate(cmd.Context(), src)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out.WGSL)
			return err
		},
	}
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip re-parsing the generated WGSL")
	return cmd
}
