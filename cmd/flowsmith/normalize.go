package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/prompt"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Canonicalize the connections of a workflow document",
		Long: `Normalize rewrites the connections of a workflow document into the
canonical "array of ports, each an array of targets" shape. With --text it
instead strips duplicated task descriptions from raw model output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if text {
				res := prompt.New(nil).Normalize(string(raw))
				if res.Truncated {
					fmt.Fprintf(cmd.ErrOrStderr(), "truncated by rule %s\n", res.Rule)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				return err
			}
			doc, err := n8n.Decode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out, err := render(doc, "json")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Normalize raw text instead of a document")
	return cmd
}
