// Package twin assembles the in-memory wedding backend: state, session
// tokens, REST API and admin control plane on one chi router.
package twin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/admin"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/api"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

// Name identifies the twin in logs and /admin/config.
const Name = "wedding-twin"

// Options configures a twin Server.
type Options struct {
	Port       int
	JWTSecret  string
	SessionTTL time.Duration
	Latency    time.Duration
	FailRate   float64
	Verbose    bool
	// Users are created on startup and after every /admin/reset.
	Users []store.Credentials
	// SeedFile is a JSON or YAML state snapshot loaded after Users.
	SeedFile string
}

// Server is an assembled twin.
type Server struct {
	*twincore.Twin
	Store  *store.MemoryStore
	Tokens *api.TokenManager
}

// New builds a Server from opts.
func New(opts Options, logger *zap.Logger) (*Server, error) {
	if opts.FailRate < 0 || opts.FailRate > 1 {
		return nil, fmt.Errorf("fail rate must be between 0.0 and 1.0, got %v", opts.FailRate)
	}
	if opts.Latency < 0 {
		return nil, fmt.Errorf("latency must not be negative")
	}

	tw := twincore.New(&twincore.Config{
		Name:     Name,
		Port:     opts.Port,
		Latency:  opts.Latency,
		FailRate: opts.FailRate,
		Verbose:  opts.Verbose,
	}, logger)

	memStore := store.New(opts.Users...)
	tokens, err := api.NewTokenManager(opts.JWTSecret, opts.SessionTTL, memStore.Clock)
	if err != nil {
		return nil, err
	}

	api.NewHandler(memStore, tw.Middleware(), tokens, tw.Logger).Routes(tw.Router)

	adminHandler := admin.NewHandler(memStore, tw.Middleware(), memStore.Clock)
	adminHandler.SetConfigProvider(tw)
	adminHandler.Routes(tw.Router)

	if opts.SeedFile != "" {
		data, err := ReadSeedFile(opts.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := memStore.LoadState(data); err != nil {
			return nil, fmt.Errorf("loading seed file %s: %w", opts.SeedFile, err)
		}
		tw.Logger.Info("loaded seed data", zap.String("file", opts.SeedFile))
	}

	return &Server{Twin: tw, Store: memStore, Tokens: tokens}, nil
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("wedding twin ready",
		zap.Int("port", s.Port()),
		zap.String("api", "/api"),
		zap.String("admin", "/admin"),
	)
	return s.Serve(ctx)
}

// ReadSeedFile returns the seed file as JSON. YAML files (.yaml, .yml) are
// converted so both formats feed the same state loader.
func ReadSeedFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return data, nil
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting seed file %s to JSON: %w", path, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}
