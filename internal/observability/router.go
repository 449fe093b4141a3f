package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var startedAt = time.Now()

// NewRouter serves /metrics and /healthz.
func NewRouter(app string) http.Handler {
	RegisterMetrics()
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok " + app + " uptime=" + time.Since(startedAt).Truncate(time.Second).String() + "\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Serve runs the router on addr until ctx is done.
func Serve(ctx context.Context, addr, app string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
