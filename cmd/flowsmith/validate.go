package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/validate"
)

var errInvalid = errors.New("workflow is invalid")

func newValidateCmd(a *app) *cobra.Command {
	var repair bool
	var output string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an existing workflow document",
		Long: `Validate checks a workflow document as-is and prints the report. With
--repair it prints the repaired document instead. The command fails when
the (repaired) document has errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := n8n.Decode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			opts := validate.Options{RowTolerance: a.cfg.Engine.RowTolerance}
			report := validate.Validate(doc, opts)
			var v any = report
			if repair {
				_, fixes := validate.Repair(doc, opts)
				report = validate.Validate(doc, opts)
				fmt.Fprintf(cmd.ErrOrStderr(), "%d fixes applied, score %d\n", fixes, report.Score)
				v = doc
			}
			out, err := render(v, output)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if !report.IsValid {
				return fmt.Errorf("%w: %d errors, score %d", errInvalid, report.Errors(), report.Score)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "Repair the document and print it")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	return cmd
}
