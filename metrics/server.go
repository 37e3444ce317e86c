package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	kiterrors "github.com/vinayprograms/gracekit/errors"
	"github.com/vinayprograms/gracekit/shutdown"
)

// serverDrainTimeout bounds how long in-flight scrapes may run after stop.
const serverDrainTimeout = 2 * time.Second

// Server returns a worker that serves /metrics from g on addr until it is
// stopped. Listening errors become the worker's outcome.
func Server(id, addr string, g prometheus.Gatherer) shutdown.Worker {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return shutdown.ContextWorker(id, func(ctx context.Context) error {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return kiterrors.Wrapf(err, "listen %s", addr)
		}
		return serve(ctx, srv, ln)
	})
}

func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return kiterrors.Wrap(err, "metrics server")
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), serverDrainTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return kiterrors.Wrap(err, "metrics server shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return kiterrors.Wrap(err, "metrics server")
	}
	return nil
}
