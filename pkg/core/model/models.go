package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleBarista    Role = "Barista"
	RoleShiftLead  Role = "Shift Lead"
	RoleManager    Role = "Manager"
	RoleOperations Role = "Operations"
)

// Capability returns the privilege level granted by the role
func (r Role) Capability() Capability {
	if r == RoleManager || r == RoleOperations {
		return CapabilityManager
	}
	return CapabilityStaff
}

// Capability is the privilege level of a session, resolved once from the profile role
type Capability int

const (
	CapabilityStaff Capability = iota
	CapabilityManager
)

func (c Capability) IsManager() bool {
	return c == CapabilityManager
}

func (c Capability) String() string {
	if c == CapabilityManager {
		return "manager"
	}
	return "staff"
}

// Actor identifies who is performing a workflow action
type Actor struct {
	UserID     string
	Capability Capability
}

func (a Actor) IsManager() bool {
	return a.Capability.IsManager()
}

// SwapStatus is the swap state of a shift
type SwapStatus string

const (
	SwapNone            SwapStatus = "none"
	SwapOffered         SwapStatus = "offered"
	SwapPendingApproval SwapStatus = "pending_approval"
	SwapDenied          SwapStatus = "denied"
)

func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapNone, SwapOffered, SwapPendingApproval, SwapDenied:
		return true
	}
	return false
}

// ParseSwapStatus maps a stored value to a SwapStatus. Empty maps to SwapNone.
func ParseSwapStatus(s string) (SwapStatus, error) {
	if s == "" {
		return SwapNone, nil
	}
	status := SwapStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown swap status %q", s)
	}
	return status, nil
}

// Weekday is a named day of the week as stored in the availability table
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in display order (Monday first)
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday parses a day name case-insensitively
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", s)
}

// WeekdayOf converts a time.Weekday
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday(d.String())
}

// Index returns the position of the day in Weekdays, or -1
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// Shift is one scheduled work block at one store. A nil UserID is an open shift.
type Shift struct {
	ID              string
	StoreID         string
	UserID          *string
	StartTime       time.Time
	EndTime         time.Time
	Note            string
	SwapStatus      SwapStatus
	SwapCandidateID *string
}

func (s Shift) IsOpen() bool {
	return s.UserID == nil
}

// OwnedBy reports whether the shift is assigned to userID
func (s Shift) OwnedBy(userID string) bool {
	return s.UserID != nil && *s.UserID == userID
}

// Availability is a weekly recurring preference for one person on one day
type Availability struct {
	ID          string
	UserID      string
	DayOfWeek   Weekday
	IsAvailable bool
	StartTime   *string // HH:MM, nullable
	EndTime     *string // HH:MM, nullable
}

// Profile represents a member of staff
type Profile struct {
	ID       string
	FullName string
	Role     Role
	Phone    *string
}

// Store represents a shop location
type Store struct {
	ID    string
	Name  string
	Notes *string
	Color string
}
