package internal

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
)

// Serve exposes /metrics and /healthz on ln until ctx is done, then shuts
// the server down within shutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, metrics http.Handler, logger log.Logger, shutdownTimeout time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting metrics server", log.Str("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error(err, "metrics server failed")
			return errors.Wrap(errors.CodeUnavailable, "obsx.Serve", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("stopping metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "metrics server shutdown failed")
		return errors.Wrap(errors.CodeInternal, "obsx.Serve", err)
	}
	return nil
}
