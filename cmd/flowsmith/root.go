package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tsinling0525/flowsmith/config"
	"github.com/Tsinling0525/flowsmith/logger"
	_ "github.com/Tsinling0525/flowsmith/nodes/all"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile   string
	debug     bool
	logFormat string
	cfg       config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "flowsmith",
		Short: "Build and validate n8n workflow documents from AI output",
		Long: `flowsmith turns AI-generated task descriptions or draft workflow JSON
into well-formed n8n workflow documents. It resolves node types, lays out
the graph, canonicalizes connections, validates the result and applies
conservative repairs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, used, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Log.Debug = a.debug
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = a.logFormat
			}
			a.cfg = cfg
			if err := logger.InitLogger(logger.LoggerConfig{
				Debug:     cfg.Log.Debug,
				LogFormat: cfg.Log.Format,
				LogFile:   cfg.Log.File,
			}); err != nil {
				return err
			}
			if used != "" {
				logger.LogDebug("config loaded", map[string]any{"file": used})
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./flowsmith.yaml or $HOME/.flowsmith/flowsmith.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "human", "Log format: json or human")

	root.AddCommand(
		newBuildCmd(a),
		newValidateCmd(a),
		newNormalizeCmd(a),
		newServeCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "flowsmith", config.Version)
			},
		},
	)
	return root
}
