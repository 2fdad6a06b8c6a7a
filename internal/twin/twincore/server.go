// Package twincore is the HTTP shell shared by the wedding twin: a chi router
// with CORS, request logging, latency and failure simulation, plus graceful
// serving and JSON response helpers.
package twincore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Twin owns the router and the live settings of one twin process.
type Twin struct {
	Router *chi.Mux
	Logger *zap.Logger

	settings *Settings
	mw       *Middleware
}

// New builds the router with the full middleware chain mounted. Latency and
// random failure stay in the chain at zero so /admin/config can turn them on
// later. A nil logger discards output.
func New(cfg *Config, logger *zap.Logger) *Twin {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("twin", cfg.Name))
	settings := NewSettings(*cfg)
	mw := NewMiddleware(settings, logger)

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.RequestLog,
		mw.CORS,
		mw.LatencyInjection,
		mw.RandomFailure,
	)
	return &Twin{Router: r, Logger: logger, settings: settings, mw: mw}
}

func (t *Twin) Middleware() *Middleware { return t.mw }

func (t *Twin) Port() int { return t.settings.Current().Port }

// GetConfig and UpdateConfig back GET and PUT /admin/config.
func (t *Twin) GetConfig() map[string]any { return t.settings.Map() }

func (t *Twin) UpdateConfig(updates map[string]any) error { return t.settings.Update(updates) }

func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.Router.ServeHTTP(w, r)
}

// Serve listens on the configured port until ctx is done.
func (t *Twin) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", t.Port())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return t.ServeListener(ctx, ln)
}

// ServeListener serves on ln and shuts down gracefully once ctx is done.
func (t *Twin) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      t,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t.Logger.Info("starting twin", zap.String("addr", ln.Addr().String()))
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		t.Logger.Info("shutting down twin")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// JSON writes v with status. A nil v writes headers only.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Error writes {"detail": message}, the backend's error shape.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Detail: message})
}
