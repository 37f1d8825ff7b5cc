package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/internal/config"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/services"
	"github.com/jakechorley/coffee-rota/pkg/db"
	"github.com/jakechorley/coffee-rota/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Secrets  *config.Secrets
	Database db.Database
	// Postgres is nil when running against the in-memory store
	Postgres *postgres.DB
	Workflow *services.Workflow
	Registry *prometheus.Registry
	Logger   *zap.Logger
	Ctx      context.Context
	// AsUser is the profile id commands act as
	AsUser string
}

// Actor resolves the --as profile into the actor used for workflow calls
func (app *AppContext) Actor() (model.Actor, error) {
	if app.AsUser == "" {
		return model.Actor{}, fmt.Errorf("this command needs --as <profile_id>")
	}
	profile, err := app.Database.GetProfile(app.Ctx, app.AsUser)
	if err != nil {
		return model.Actor{}, fmt.Errorf("failed to resolve --as %s: %w", app.AsUser, err)
	}
	return model.Actor{UserID: profile.ID, Capability: profile.Role.Capability()}, nil
}

// storeArg falls back to the configured default store
func (app *AppContext) storeArg(flag string) string {
	if flag != "" {
		return flag
	}
	if app.Cfg != nil {
		return app.Cfg.DefaultStoreID
	}
	return ""
}

// All returns every command in the order they appear in help
func All(app *AppContext) []*cobra.Command {
	cmds := []*cobra.Command{
		ServeCmd(app),
		MigrateCmd(app),
		CopyWeekCmd(app),
		CheckConflictCmd(app),
		MarketplaceCmd(app),
		ApprovalsCmd(app),
		EditableCmd(app),
	}
	cmds = append(cmds, ShiftActionCmds(app)...)
	cmds = append(cmds, MintTokenCmd(app), InteractiveCmd(app))
	return cmds
}
