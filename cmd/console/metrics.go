package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-console/internal/common/logger"
	"admin-console/internal/common/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveMetricsCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Expose Prometheus metrics until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Metrics.Address
			}

			log := logger.NewZapAdapter(logger.New(cfg.Logging.Level, "console"))
			obs := observability.New(cfg.App.Name)
			defer obs.Shutdown()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("Serving metrics", map[string]interface{}{
				"address": ln.Addr().String(),
				"path":    cfg.Metrics.Path,
			})
			return serveMetrics(ctx, ln, cfg.Metrics.Path)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: metrics.address)")
	return cmd
}

// serveMetrics serves promhttp on path until ctx is done.
func serveMetrics(ctx context.Context, ln net.Listener, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
