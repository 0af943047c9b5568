package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httpDelivery "github.com/cardscan/backend/internal/delivery/http"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CardScan HTTP server",
	Long: `Start the CardScan HTTP server.

The server provides:
  - GET  /health          - health check
  - POST /ocr             - multipart "file" upload, OCR + eBay search
  - POST /api/ebay-search - JSON {cardName, cardSetNumber}, eBay search only

The server shuts down gracefully on Ctrl+C or SIGTERM.

Examples:
  cardscan serve                       # Port from config (default 5001)
  cardscan serve --port 8080           # Override the port
  cardscan serve --config prod.yaml    # Explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if servePort != "" {
			a.cfg.Server.Port = servePort
		}

		a.logger.Info("starting CardScan backend",
			slog.String("version", httpDelivery.Version),
			slog.String("environment", a.cfg.Server.Environment),
			slog.String("port", a.cfg.Server.Port),
			slog.String("cache", a.cfg.Cache.Type),
			slog.String("ebay_search_url", a.cfg.Ebay.SearchURL))

		handler := httpDelivery.NewHandler(a.scanner, a.cfg.Server.MaxUploadBytes)
		router := httpDelivery.SetupRouter(a.cfg, handler, a.logger)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%s", a.cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		return runServer(ctx, srv, a.logger)
	},
}

// runServer serves until ctx is cancelled, then shuts down within 30 seconds
func runServer(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("err", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides server.port)")

	rootCmd.AddCommand(serveCmd)
}
