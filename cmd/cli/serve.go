// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cv/internal/api"
	"cv/internal/logger"
	"cv/internal/progress"
	"cv/internal/web"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scan results over HTTP",
		Long: `Starts an HTTP server exposing the progress of monitored commands as JSON:

  GET /api/progress        all monitored processes
  GET /api/progress/{pid}  one process
  GET /api/commands        the watched command names

The root path serves a status page that polls the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServeAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWebServer(ctx, addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from manifest serve_addr)")
	return serveCmd
}

// newWebRouter serves the API and, for every other path, the embedded status
// page. API routes are registered first so the file server does not shadow
// them.
func newWebRouter(src progress.Source) http.Handler {
	router := api.NewRouter(src)
	router.PathPrefix("/").Handler(http.FileServer(web.GetFileSystem()))
	return router
}

// runWebServer serves the API until ctx is cancelled, then shuts down
// gracefully.
func (a *app) runWebServer(ctx context.Context, addr string) error {
	src, err := a.source()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newWebRouter(src),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("Web server started", "addr", addr)
	fmt.Fprintln(a.stdout, paint(statusColor, "Serving cv API on http://"+addr, isTerminal(a.stdout)))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}
