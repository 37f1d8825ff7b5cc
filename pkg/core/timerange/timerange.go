package timerange

import (
	"fmt"
	"time"

	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// New builds an interval in UTC, rejecting ranges where end is not after start
func New(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, apperr.Validation("end time %s must be after start time %s",
			end.UTC().Format(time.RFC3339), start.UTC().Format(time.RFC3339))
	}
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two intervals share any instant. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls within [Start, End)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps is the free-function form of Interval.Overlaps
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clock converts between local wall-clock values and absolute instants.
// All local-to-UTC conversion goes through a single Clock so the same zone rule applies everywhere.
type Clock struct {
	loc *time.Location
}

// NewClock creates a Clock for the named IANA zone. Empty means UTC.
func NewClock(zone string) (*Clock, error) {
	if zone == "" {
		return &Clock{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", zone, err)
	}
	return &Clock{loc: loc}, nil
}

// UTCClock returns a Clock on UTC
func UTCClock() *Clock {
	return &Clock{loc: time.UTC}
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// At returns the UTC instant for a local date (YYYY-MM-DD) and time (HH:MM)
func (c *Clock) At(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, c.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid local date/time %q %q: %v", date, clock, err)
	}
	return t.UTC(), nil
}

// Date parses a local date (YYYY-MM-DD) as midnight in the clock's zone, returned in UTC
func (c *Clock) Date(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q: %v", date, err)
	}
	return t.UTC(), nil
}

// Interval builds an interval from a local date and two local times
func (c *Clock) Interval(date, startClock, endClock string) (Interval, error) {
	start, err := c.At(date, startClock)
	if err != nil {
		return Interval{}, err
	}
	end, err := c.At(date, endClock)
	if err != nil {
		return Interval{}, err
	}
	return New(start, end)
}

// Weekday returns the local day of week of t
func (c *Clock) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// AddDays moves t by n calendar days, preserving local wall-clock time
func (c *Clock) AddDays(t time.Time, n int) time.Time {
	return t.In(c.loc).AddDate(0, 0, n).UTC()
}

// WeekStart returns Monday 00:00 local of the week containing t, in UTC
func (c *Clock) WeekStart(t time.Time) time.Time {
	local := t.In(c.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	// Monday is 1; Sunday (0) belongs to the week that started six days earlier
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset).UTC()
}

// IsWeekStart reports whether t is exactly Monday 00:00 local
func (c *Clock) IsWeekStart(t time.Time) bool {
	return c.WeekStart(t).Equal(t.UTC())
}

// Week returns the seven local days starting at weekStart as a half-open interval
func (c *Clock) Week(weekStart time.Time) Interval {
	return Interval{Start: weekStart.UTC(), End: c.AddDays(weekStart, 7)}
}

// FormatLocal renders t in the clock's zone
func (c *Clock) FormatLocal(t time.Time, layout string) string {
	return t.In(c.loc).Format(layout)
}
