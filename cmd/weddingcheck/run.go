package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/config"
	"github.com/wondertwin-ai/weddingcheck/internal/extension"
	"github.com/wondertwin-ai/weddingcheck/internal/verifier"
)

type runFlags struct {
	baseURL    string
	username   string
	password   string
	timeout    time.Duration
	report     string
	extensions string
	noColor    bool
}

// apply copies the flags the user set onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if set("username") {
		cfg.Username = f.username
	}
	if set("password") {
		cfg.Password = f.password
	}
	if set("timeout") {
		cfg.Timeout = config.Duration(f.timeout)
	}
	if set("report") {
		cfg.Report = f.report
	}
	if set("extensions") {
		cfg.Extensions = f.extensions
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the verification catalog against the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := newLogger(zapcore.WarnLevel, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runVerification(cmd.Context(), cfg, logger, cmd.OutOrStdout(), !flags.noColor)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.baseURL, "base-url", config.DefaultBaseURL, "backend API base URL")
	f.StringVar(&flags.username, "username", config.DefaultUsername, "login username")
	f.StringVar(&flags.password, "password", config.DefaultPassword, "login password")
	f.DurationVar(&flags.timeout, "timeout", config.DefaultTimeout, "per-request timeout")
	f.StringVar(&flags.report, "report", "", "write a JSON report to this file")
	f.StringVar(&flags.extensions, "extensions", "", "directory of extension scenario files")
	f.BoolVar(&flags.noColor, "no-color", false, "disable coloured output")
	return cmd
}

// loadScenarios returns the default catalog followed by any extensions.
func loadScenarios(cfg *config.Config) ([]verifier.Scenario, error) {
	scenarios := verifier.DefaultCatalog()
	if cfg.Extensions == "" {
		return scenarios, nil
	}
	files, err := extension.LoadDir(cfg.Extensions)
	if err != nil {
		return nil, err
	}
	return append(scenarios, extension.Scenarios(files)...), nil
}

func runVerification(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer, color bool) error {
	scenarios, err := loadScenarios(cfg)
	if err != nil {
		return err
	}

	api := client.New(cfg.BaseURL, cfg.RequestTimeout(), logger)
	printer := verifier.NewPrinter(out, color)
	v := verifier.New(api, verifier.Credentials{Username: cfg.Username, Password: cfg.Password}, logger,
		verifier.WithObserver(printer))

	printer.Banner(api.BaseURL(), cfg.Username)
	started := time.Now()
	summary := v.Run(ctx, scenarios)
	finished := time.Now()
	printer.Summary(summary)

	if cfg.Report != "" {
		report := verifier.NewReport(api.BaseURL(), started, finished, v.Results())
		if err := report.WriteFile(cfg.Report); err != nil {
			return err
		}
		logger.Info("wrote report", zap.String("path", cfg.Report), zap.String("run_id", report.RunID))
	}

	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d checks failed", errVerificationFailed, summary.Failed, summary.Total)
	}
	return nil
}
