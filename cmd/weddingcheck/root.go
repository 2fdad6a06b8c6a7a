package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wondertwin-ai/weddingcheck/internal/config"
	"github.com/wondertwin-ai/weddingcheck/internal/logging"
)

// errVerificationFailed is returned by run when any check failed, so the
// process exits non-zero after the report has been printed.
var errVerificationFailed = errors.New("verification failed")

type rootOptions struct {
	configPath string
	verbose    bool
}

// load reads the config file and environment. Command flags are applied by
// the caller afterwards.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(base zapcore.Level, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(base, cfg.Verbose)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "weddingcheck",
		Short: "End-to-end verifier for the wedding-card backend API",
		Long: `weddingcheck logs in to a wedding-card backend, drives every API the
frontend relies on, and reports one PASS/FAIL line per check. It exits
non-zero when any check fails.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		fmt.Sprintf("config file (default $%s or ./%s)", config.EnvConfig, config.DefaultFile))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInitCmd(opts),
		newRunCmd(opts),
		newScenariosCmd(opts),
		newTwinCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weddingcheck version %s\n", version)
		},
	}
}
