package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the hosted database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Postgres == nil {
				return fmt.Errorf("migrate needs a database, it cannot run with --local")
			}

			applied, err := app.Postgres.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}
			app.Logger.Info("Migrations applied", zap.Strings("files", applied))

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "\nSchema is up to date.")
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintf(out, "\n✓ Applied %d migrations:\n", len(applied))
			for _, f := range applied {
				fmt.Fprintf(out, "  %s\n", f)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
