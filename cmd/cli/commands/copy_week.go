package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CopyWeekCmd creates the copyWeek command
func CopyWeekCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "copyWeek <store_id> <week_start>",
		Short: "Copy the previous week's shifts of a store into the week starting on the given Monday (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}

			clock := app.Workflow.Clock()
			weekStart, err := clock.Date(args[1])
			if err != nil {
				return err
			}

			app.Logger.Debug("copyWeek command",
				zap.String("store_id", args[0]),
				zap.String("week_start", args[1]))

			copies, err := app.Workflow.CopyWeek(app.Ctx, actor, args[0], weekStart)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(copies) == 0 {
				fmt.Fprintf(out, "\nNo shifts in the week before %s, nothing copied.\n\n", args[1])
				return nil
			}
			fmt.Fprintf(out, "\n✓ Week copied successfully!\n")
			printShifts(out, clock, "Created shifts", copies)
			return nil
		},
	}
}
