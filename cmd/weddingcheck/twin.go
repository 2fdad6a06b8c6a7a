package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/wondertwin-ai/weddingcheck/internal/config"
	"github.com/wondertwin-ai/weddingcheck/internal/twin"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
)

func newTwinCmd(opts *rootOptions) *cobra.Command {
	var (
		port     int
		seedFile string
		latency  time.Duration
		failRate float64
	)
	cmd := &cobra.Command{
		Use:   "twin",
		Short: "Serve the in-memory wedding backend on --port",
		Long: `twin serves a stand-in for the wedding-card backend under /api, with
an admin control plane under /admin (reset, state, faults, time). The
configured username and password are seeded as a user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Twin.Port = port
			}
			if cmd.Flags().Changed("seed-file") {
				cfg.Twin.SeedFile = seedFile
			}

			logger, err := newLogger(zapcore.InfoLevel, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv, err := twin.New(twin.Options{
				Port:      cfg.Twin.Port,
				JWTSecret: cfg.Twin.JWTSecret,
				Latency:   latency,
				FailRate:  failRate,
				Verbose:   cfg.Verbose,
				Users:     []store.Credentials{{Username: cfg.Username, Password: cfg.Password}},
				SeedFile:  cfg.Twin.SeedFile,
			}, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.IntVar(&port, "port", config.DefaultTwinPort, "listen port")
	f.StringVar(&seedFile, "seed-file", "", "JSON or YAML state snapshot to load on startup")
	f.DurationVar(&latency, "latency", 0, "delay added to every response")
	f.Float64Var(&failRate, "fail-rate", 0, "fraction of requests answered with 500 (0.0-1.0)")
	return cmd
}
