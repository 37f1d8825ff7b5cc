package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// CheckConflictCmd creates the checkConflict command
func CheckConflictCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkConflict <profile_id> <start> <end>",
		Short: "Check whether a person already works between start and end (RFC3339)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			exclude, _ := cmd.Flags().GetString("exclude")

			start, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("start must be RFC3339: %w", err)
			}
			end, err := time.Parse(time.RFC3339, args[2])
			if err != nil {
				return fmt.Errorf("end must be RFC3339: %w", err)
			}

			found, err := app.Workflow.CheckConflict(app.Ctx, args[0], start, end, exclude)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "\n✓ %s is free\n\n", args[0])
				return nil
			}
			printShifts(out, app.Workflow.Clock(), fmt.Sprintf("✗ %s is already booked", args[0]), found)
			return nil
		},
	}

	cmd.Flags().String("exclude", "", "Shift id to ignore, e.g. the shift being edited")

	return cmd
}
