package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/posterbox-dev/posterbox/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		dataDir string
		maxSize string
		logJSON bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the widget demo server",
		Long: `Start an HTTP server hosting the widget demo page, the image store
endpoints (POST /image, POST /image/url, GET /image/{id}), a WebSocket
host-event channel on /ws and Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			maxBytes, err := units.RAMInBytes(maxSize)
			if err != nil {
				return fmt.Errorf("invalid --max-size %q: %w", maxSize, err)
			}

			var handler slog.Handler
			if logJSON {
				handler = slog.NewJSONHandler(os.Stderr, nil)
			} else {
				handler = slog.NewTextHandler(os.Stderr, nil)
			}
			slog.SetDefault(slog.New(handler))
			logger := slog.Default().With("component", "serve")

			st, err := store.NewDiskStore(dataDir, maxBytes)
			if err != nil {
				return fmt.Errorf("opening image store: %w", err)
			}

			srv := newDemoServer(st, maxBytes)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting",
					"address", addr,
					"data_dir", dataDir,
					"max_size", units.BytesSize(float64(maxBytes)))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != http.ErrServerClosed {
					return err
				}
				return nil

			case <-shutdown:
				logger.Info("shutting down...")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				srv.close()
				if err := httpServer.Shutdown(ctx); err != nil {
					logger.Error("shutdown error", "error", err)
					return err
				}
				logger.Info("server shutdown complete")
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "Listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "posterbox-data", "Image store directory")
	cmd.Flags().StringVar(&maxSize, "max-size", "20MiB", "Upload size cap (e.g. 20MiB, 5m)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")

	return cmd
}
