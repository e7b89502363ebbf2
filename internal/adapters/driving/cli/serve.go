package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recapd/recapd/internal/adapters/driving/httpapi"
	"github.com/recapd/recapd/internal/adapters/driving/watcher"
)

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API and, when a watch folder is configured,
the folder watcher. Uploads run through the pipeline asynchronously;
poll the job endpoint for completion.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.waitForOllama(ctx); err != nil {
		// The service still starts: jobs fail individually with a
		// stored error rather than the whole process refusing to boot.
		a.log.WithError(err).Warn("starting without a reachable ollama")
	}

	if dir := a.cfg.Storage.WatchDir; dir != "" {
		w := watcher.New(dir, a.intake, a.runner, a.log)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.WithError(err).Error("watcher stopped")
			}
		}()
	}

	api := httpapi.New(a.intake, a.runner, a.search, a.store, a.log)
	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", server.Addr).Info("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
