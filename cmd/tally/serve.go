package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/tally/internal/database"
	"github.com/dukerupert/tally/internal/middleware"
	"github.com/dukerupert/tally/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and change feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ips, err := middleware.NewClientIP(cfg.TrustedProxies)
			if err != nil {
				return err
			}

			srv := server.New(db, server.Options{
				Location:     loc,
				APITokenHash: cfg.APITokenHash,
				CORSOrigins:  cfg.CORSOrigins,
				RateLimit:    cfg.RateLimit,
				ClientIP:     ips,
			}, logger)

			if cfg.APITokenHash == "" {
				logger.Warn("TALLY_API_TOKEN_HASH not set, mutations are unauthenticated")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Forget idle rate-limit entries.
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						srv.RateLimiter().Cleanup()
					case <-ctx.Done():
						return
					}
				}
			}()

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", httpServer.Addr, "driver", cfg.DBDriver, "timezone", loc.String())
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			srv.Hub().CloseAll()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err, ok := <-errCh; ok {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides TALLY_PORT)")
	return cmd
}
