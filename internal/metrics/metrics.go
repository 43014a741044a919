package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var (
	initOnce    sync.Once
	serverMutex sync.Mutex
	currentSrv  *http.Server
)

// Init creates and registers all metrics with the default Prometheus registry.
// Safe to call multiple times.
func Init() {
	initOnce.Do(func() {
		initRemovalMetrics()
		initAPIMetrics()

		registerRemovalMetrics()
		registerAPIMetrics()
	})
}

// NewRouter returns the metrics HTTP handler: /metrics and /health
func NewRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","healthy":true}`))
	}).Methods(http.MethodGet)

	return r
}

// StartServer starts the metrics HTTP server on addr in the background.
// The listener is bound before returning so bind errors surface to the caller.
func StartServer(addr string, logger zerolog.Logger) error {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv != nil {
		logger.Warn().Str("addr", currentSrv.Addr).Msg("metrics server already running")
		return nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           NewRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	currentSrv = srv

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
			IncErrors()
		}
	}()
	return nil
}

// ServerAddr returns the bound address of the running server, if any
func ServerAddr() string {
	serverMutex.Lock()
	defer serverMutex.Unlock()
	if currentSrv == nil {
		return ""
	}
	return currentSrv.Addr
}

// Shutdown gracefully stops the metrics server
func Shutdown(ctx context.Context, logger zerolog.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := currentSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown error")
		IncErrors()
	}
	currentSrv = nil
}
