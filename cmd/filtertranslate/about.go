package main

import (
	"fmt"

	"github.com/oukeidos/filtertranslate/internal/chunker"
	"github.com/oukeidos/filtertranslate/internal/metadata"
	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and the available backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "filtertranslate: translate text files line by line")
			fmt.Fprintf(out, "Lines are sent in batches of fewer than %d characters; filtered lines are copied unchanged.\n\n", chunker.CharLimit)
			fmt.Fprintln(out, "Backends:")
			for _, b := range metadata.Backends {
				model := b.DefaultModel
				if model == "" {
					model = "-"
				}
				fmt.Fprintf(out, "  %-8s %-36s default model: %s\n", b.Name, b.Label, model)
			}
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
