package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/infra"
	"github.com/Tsinling0525/flowsmith/logger"
	"github.com/Tsinling0525/flowsmith/tracing"
)

type buildFlags struct {
	output   string
	save     bool
	noRepair bool
	report   bool
	name     string
	jobs     int
}

func newBuildCmd(a *app) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build [file...]",
		Short: "Build workflow documents from AI output (text or draft JSON)",
		Long: `Build reads each file ("-" for stdin), runs the build pipeline and prints
the resulting workflow documents in argument order. Files are built
concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, a, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "json", "Output format: json or yaml")
	cmd.Flags().BoolVar(&f.save, "save", false, "Save built workflows to the configured store")
	cmd.Flags().BoolVar(&f.noRepair, "no-repair", false, "Validate without repairing")
	cmd.Flags().BoolVar(&f.report, "report", false, "Print the validation report with each document")
	cmd.Flags().StringVar(&f.name, "name", "", "Override the workflow name")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 4, "Maximum files built at once")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app, f *buildFlags, args []string) error {
	opts := a.cfg.EngineOptions()
	opts.Name = f.name
	opts.Tracer = tracing.ZapTracer{L: logger.Zap()}
	if f.noRepair {
		opts.Repair.Enabled = false
	}
	eng := engine.New(opts)

	var store infra.DocumentStore
	if f.save {
		s, err := infra.OpenStore(a.cfg.Store.Driver, a.cfg.Store.DataDir)
		if err != nil {
			return err
		}
		store = s
	}

	outputs := make([][]byte, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	if f.jobs > 0 {
		g.SetLimit(f.jobs)
	}
	stdin := cmd.InOrStdin()
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			raw, err := readInput(path, stdin)
			if err != nil {
				return err
			}
			res, err := eng.Build(ctx, string(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.LogInfo("workflow built", map[string]any{
				"file":  path,
				"nodes": len(res.Document.Nodes),
				"score": res.Validation.Score,
				"fixes": res.Fixes,
			})
			if store != nil {
				id, err := store.Save(ctx, infra.StoredWorkflow{
					Score:    res.Validation.Score,
					IsValid:  res.Validation.IsValid,
					Document: res.Document,
				})
				if err != nil {
					return fmt.Errorf("%s: save: %w", path, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: saved as %s\n", path, id)
			}
			var v any = res.Document
			if f.report {
				v = map[string]any{
					"workflow":          res.Document,
					"validation":        res.Validation,
					"initialValidation": res.Initial,
					"fixesApplied":      res.Fixes,
				}
			}
			out, err := render(v, f.output)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_, err := cmd.OutOrStdout().Write(bytes.Join(outputs, nil))
	return err
}
