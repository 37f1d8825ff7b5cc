package availability

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

// DefaultLockRule closes staff availability edits from Thursday through Sunday.
// The deadline for next week's availability is Wednesday end of day.
const DefaultLockRule = "FREQ=WEEKLY;BYDAY=TH,FR,SA,SU"

// Gate decides on which days staff may edit their weekly availability
type Gate struct {
	locked map[time.Weekday]bool
}

// rrule weekday index (0=MO..6=SU) to time.Weekday
var rruleDays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// NewGate builds a gate from a weekly RFC 5545 rule whose BYDAY lists the locked days
func NewGate(rule string) (*Gate, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid availability lock rule: %w", err)
	}
	if opt.Freq != rrule.WEEKLY {
		return nil, fmt.Errorf("availability lock rule must be weekly, got %q", rule)
	}
	if len(opt.Byweekday) == 0 {
		return nil, fmt.Errorf("availability lock rule must list BYDAY, got %q", rule)
	}

	locked := make(map[time.Weekday]bool, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		locked[rruleDays[wd.Day()]] = true
	}
	return &Gate{locked: locked}, nil
}

// DefaultGate returns the Thursday-to-Sunday gate
func DefaultGate() *Gate {
	g, err := NewGate(DefaultLockRule)
	if err != nil {
		panic(err)
	}
	return g
}

// IsEditable reports whether availability can be edited today. Managers are never locked out.
func (g *Gate) IsEditable(today time.Weekday, capability model.Capability) bool {
	if capability.IsManager() {
		return true
	}
	return !g.locked[today]
}

// LockedDays returns the locked days in Monday-first order
func (g *Gate) LockedDays() []model.Weekday {
	days := make([]model.Weekday, 0, len(g.locked))
	for _, d := range rruleDays {
		if g.locked[d] {
			days = append(days, model.WeekdayOf(d))
		}
	}
	return days
}
