package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/cmd/cli/commands"
	"github.com/jakechorley/coffee-rota/internal/config"
	"github.com/jakechorley/coffee-rota/pkg/core/availability"
	"github.com/jakechorley/coffee-rota/pkg/core/services"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	"github.com/jakechorley/coffee-rota/pkg/db/memstore"
	"github.com/jakechorley/coffee-rota/pkg/metrics"
	"github.com/jakechorley/coffee-rota/pkg/postgres"
	"github.com/jakechorley/coffee-rota/pkg/utils/logging"
)

var (
	env     string
	local   bool
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rota",
		Short: "Coffee Rota CLI - Manage shifts, swaps and availability",
		Long:  `A CLI tool for running the shop rota: serving the API, copying weeks, checking conflicts and working the swap marketplace.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Postgres != nil {
				app.Postgres.Close()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVar(&local, "local", false, "Use an in-memory store seeded with demo data instead of the database")
	rootCmd.PersistentFlags().StringVar(&app.AsUser, "as", "", "Profile id to act as")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	rootCmd.AddCommand(commands.All(app)...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, secrets, store and workflow
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env), zap.Bool("local", local))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("timezone", app.Cfg.Timezone))

	app.Secrets, err = config.LoadSecrets(env)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	clock, err := timerange.NewClock(app.Cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}
	gate, err := availability.NewGate(app.Cfg.AvailabilityLockRule)
	if err != nil {
		return err
	}

	var query db.Query
	if local {
		app.Logger.Info("Using in-memory store with demo data")
		mem := memstore.New()
		commands.SeedDemo(mem, clock, time.Now())
		query = mem
	} else {
		if err := app.Secrets.RequireDatabase(); err != nil {
			return err
		}
		app.Logger.Info("Connecting to database")
		app.Postgres, err = postgres.NewDB(app.Ctx, app.Secrets.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.Logger.Info("Database initialized successfully")
		query = app.Postgres
	}
	app.Database = db.NewRepository(query)

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app.Workflow = services.NewWorkflow(app.Database, app.Logger, services.Options{
		Gate:    gate,
		Clock:   clock,
		Metrics: metrics.NewWorkflowMetrics(app.Registry),
	})

	return nil
}
