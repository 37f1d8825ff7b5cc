package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/api"
	"github.com/jakechorley/coffee-rota/pkg/auth"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/refresh"
	"github.com/jakechorley/coffee-rota/pkg/core/services"
)

const shutdownTimeout = 10 * time.Second

// Badge counts are computed once for everyone; the handler hides approvals from staff
var badgeActor = model.Actor{UserID: "badge-refresher", Capability: model.CapabilityManager}

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shift workflow as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.HTTPAddr
			}

			if err := app.Secrets.RequireJWT(); err != nil {
				return err
			}
			verifier, err := auth.NewVerifier(app.Secrets.JWTSecret, app.Cfg.JWTAudience)
			if err != nil {
				return fmt.Errorf("failed to create token verifier: %w", err)
			}

			badges, err := refresh.New(refresh.Params[services.BadgeCounts]{
				Name:     "badges",
				Interval: app.Cfg.BadgeRefreshInterval,
				Fetch: func(ctx context.Context) (services.BadgeCounts, error) {
					return app.Workflow.CountBadges(ctx, badgeActor, app.Cfg.DefaultStoreID)
				},
				Logger: app.Logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create badge refresher: %w", err)
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				_ = badges.Start(ctx)
			}()

			server := &http.Server{
				Addr: addr,
				Handler: api.NewRouter(api.Deps{
					Workflow: app.Workflow,
					Verifier: verifier,
					Profiles: app.Database,
					Badges:   badges,
					Gatherer: app.Registry,
					Logger:   app.Logger,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("Starting api server", zap.String("addr", addr))
				errCh <- server.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				app.Logger.Info("Shutting down api server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("failed to shut down api server: %w", err)
				}
				return nil
			case err := <-errCh:
				if err == nil || errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("api server stopped unexpectedly: %w", err)
			}
		},
	}

	cmd.Flags().String("addr", "", "Listen address, defaults to httpAddr from the config file")

	return cmd
}
