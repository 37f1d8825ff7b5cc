package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
)

// EditableCmd creates the editable command
func EditableCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editable",
		Short: "Show whether availability can be edited today (or on --day)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, _ := cmd.Flags().GetString("day")

			actor, err := app.Actor()
			if err != nil {
				return err
			}

			clock := app.Workflow.Clock()
			today := app.Workflow.Now()
			if day != "" {
				if today, err = clock.Date(day); err != nil {
					return err
				}
			}

			locked := app.Workflow.LockedDays()
			names := make([]string, len(locked))
			for i, d := range locked {
				names[i] = string(d)
			}

			out := cmd.OutOrStdout()
			label := clock.FormatLocal(today, timerange.DateLayout+" (Monday)")
			if app.Workflow.IsAvailabilityEditable(today, actor) {
				fmt.Fprintf(out, "\n✓ Availability is editable on %s\n", label)
			} else {
				fmt.Fprintf(out, "\n✗ Availability is locked on %s\n", label)
			}
			fmt.Fprintf(out, "Locked for staff: %s\n\n", strings.Join(names, ", "))
			return nil
		},
	}

	cmd.Flags().String("day", "", "Date to check (YYYY-MM-DD), defaults to today")

	return cmd
}
