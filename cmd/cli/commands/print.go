package commands

import (
	"fmt"
	"io"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
)

const shiftTimeLayout = "Mon 02 Jan 15:04"

// formatShift renders one shift line in local time
func formatShift(clock *timerange.Clock, s model.Shift) string {
	owner := "open"
	if s.UserID != nil {
		owner = *s.UserID
	}
	line := fmt.Sprintf("%s  %s-%s  %-12s %s",
		s.ID,
		clock.FormatLocal(s.StartTime, shiftTimeLayout),
		clock.FormatLocal(s.EndTime, timerange.ClockLayout),
		owner,
		s.StoreID,
	)
	if s.SwapStatus != "" && s.SwapStatus != model.SwapNone {
		line += fmt.Sprintf("  [%s", s.SwapStatus)
		if s.SwapCandidateID != nil {
			line += " by " + *s.SwapCandidateID
		}
		line += "]"
	}
	if s.Note != "" {
		line += "  " + s.Note
	}
	return line
}

func printShifts(w io.Writer, clock *timerange.Clock, title string, shifts []model.Shift) {
	fmt.Fprintf(w, "\n%s (%d):\n\n", title, len(shifts))
	if len(shifts) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, s := range shifts {
		fmt.Fprintf(w, "  %s\n", formatShift(clock, s))
	}
	fmt.Fprintln(w)
}
