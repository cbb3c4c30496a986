package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/config"
	"github.com/lehigh-university-libraries/cardscanner/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		sessionTTL  time.Duration
		sheetID     string
		credentials string
		analysis    analysisFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the card scanner page",
		Long: `Starts the card scanner page on the specified port.

Each browser tab gets its own page session: pick or drop card images,
scan them against the analysis endpoint, then download the contacts
as vCards. Idle page sessions are dropped after --session-ttl.`,
		Example: `  # Start server on default port 8888
  cardscanner serve

  # Use a remote analysis endpoint and append contacts to a sheet
  cardscanner serve --endpoint https://cards.example.org/analyze/ --sheet-id 1AbC...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			analysis.apply(&cfg)
			applySheetFlags(&cfg, sheetID, credentials)
			if port != "" {
				cfg.Port = port
			}
			if sessionTTL > 0 {
				cfg.SessionTTL = sessionTTL
			}

			var opts []handlers.Option
			sheet, err := newSheets(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if sheet != nil {
				opts = append(opts, handlers.WithSheets(sheet))
			}

			handler := handlers.New(newAnalyzer(cfg), opts...)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go sweepPages(cmd.Context(), handler, cfg.SessionTTL)

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Card scanner available", "addr", addr, "url", "http://localhost"+addr, "endpoint", cfg.Endpoint)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default $CARDSCANNER_PORT or "+config.DefaultPort+")")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 0, "Drop page sessions idle this long (default $CARDSCANNER_SESSION_TTL or 30m)")
	sheetFlags(cmd, &sheetID, &credentials)
	analysis.register(cmd)

	return cmd
}

func sweepPages(ctx context.Context, h *handlers.Handler, ttl time.Duration) {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(ttl); n > 0 {
				slog.Info("Expired idle page sessions", "count", n)
			}
		}
	}
}
