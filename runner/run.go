package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Run begins the web server and blocks until it stops.
//
// These stop Run, shutting the web server down gracefully:
//
// - ctx being cancelled
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (rn *Runner) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		rn.l.Info(fmt.Sprintf("running web server at %s", rn.srv.Addr), nil)
		if err := rn.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		rn.l.Info("received shutdown signal", nil)
	}

	return rn.Shutdown()
}

// Shutdown stops the web server and closes the database connection, if any.
func (rn *Runner) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	rn.l.Info("shutting down web server", nil)
	if err := rn.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	if rn.db != nil {
		if err := rn.db.Close(); err != nil {
			return err
		}
	}

	rn.l.Info("web server shutdown successfully", nil)

	return nil
}
