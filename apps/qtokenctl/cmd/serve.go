package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/quatton/qtoken/pkg/qapi"
	"github.com/quatton/qtoken/pkg/qapi/routes"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the token repository over HTTP",
		Long: `Serve insert, get, update and remove over a small JSON API so that
middleware written in other languages can share the token cache.

Endpoints:
  GET    /health
  POST   /api/tokens
  GET    /api/tokens/{proxy}
  PUT    /api/tokens/{proxy}
  DELETE /api/tokens/{proxy}
  GET    /docs, /openapi.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			logger := GetLogger(cmd)
			if listen == "" {
				listen = cfg.ListenAddr
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			api := qapi.NewApi()
			routes.RegisterAPI(api.Api, repo)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              listen,
				Handler:           api.Router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serving token API", "addr", listen)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (defaults to QTOKEN_LISTEN_ADDR or :8080)")
	return cmd
}
