package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

// Shift columns
const (
	ColID              = "id"
	ColStoreID         = "store_id"
	ColUserID          = "user_id"
	ColStartTime       = "start_time"
	ColEndTime         = "end_time"
	ColNote            = "note"
	ColSwapStatus      = "swap_status"
	ColSwapCandidateID = "swap_candidate_id"
)

// Availability columns (user_id, start_time, end_time shared with shifts)
const (
	ColDayOfWeek   = "day_of_week"
	ColIsAvailable = "is_available"
)

// Profile and store columns
const (
	ColFullName = "full_name"
	ColRole     = "role"
	ColPhone    = "phone"
	ColName     = "name"
	ColNotes    = "notes"
	ColColor    = "color"
)

// ShiftToRow converts a shift to a storable row
func ShiftToRow(s model.Shift) Row {
	status := s.SwapStatus
	if status == "" {
		status = model.SwapNone
	}
	return Row{
		ColID:              s.ID,
		ColStoreID:         s.StoreID,
		ColUserID:          nullableString(s.UserID),
		ColStartTime:       s.StartTime.UTC(),
		ColEndTime:         s.EndTime.UTC(),
		ColNote:            s.Note,
		ColSwapStatus:      string(status),
		ColSwapCandidateID: nullableString(s.SwapCandidateID),
	}
}

// ShiftFromRow converts a stored row to a shift
func ShiftFromRow(r Row) (model.Shift, error) {
	var s model.Shift
	var err error

	if s.ID, err = stringCol(r, ColID); err != nil {
		return s, err
	}
	if s.StoreID, err = stringCol(r, ColStoreID); err != nil {
		return s, err
	}
	if s.UserID, err = nullableStringCol(r, ColUserID); err != nil {
		return s, err
	}
	if s.StartTime, err = timeCol(r, ColStartTime); err != nil {
		return s, err
	}
	if s.EndTime, err = timeCol(r, ColEndTime); err != nil {
		return s, err
	}
	note, err := nullableStringCol(r, ColNote)
	if err != nil {
		return s, err
	}
	if note != nil {
		s.Note = *note
	}
	status, err := nullableStringCol(r, ColSwapStatus)
	if err != nil {
		return s, err
	}
	raw := ""
	if status != nil {
		raw = *status
	}
	if s.SwapStatus, err = model.ParseSwapStatus(raw); err != nil {
		return s, err
	}
	if s.SwapCandidateID, err = nullableStringCol(r, ColSwapCandidateID); err != nil {
		return s, err
	}
	return s, nil
}

// ShiftsFromRows converts a result set, failing on the first malformed row
func ShiftsFromRows(rows []Row) ([]model.Shift, error) {
	shifts := make([]model.Shift, 0, len(rows))
	for _, r := range rows {
		s, err := ShiftFromRow(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode shift row: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, nil
}

func AvailabilityToRow(a model.Availability) Row {
	return Row{
		ColID:          a.ID,
		ColUserID:      a.UserID,
		ColDayOfWeek:   string(a.DayOfWeek),
		ColIsAvailable: a.IsAvailable,
		ColStartTime:   nullableString(a.StartTime),
		ColEndTime:     nullableString(a.EndTime),
	}
}

func AvailabilityFromRow(r Row) (model.Availability, error) {
	var a model.Availability
	var err error

	if a.ID, err = stringCol(r, ColID); err != nil {
		return a, err
	}
	if a.UserID, err = stringCol(r, ColUserID); err != nil {
		return a, err
	}
	day, err := stringCol(r, ColDayOfWeek)
	if err != nil {
		return a, err
	}
	if a.DayOfWeek, err = model.ParseWeekday(day); err != nil {
		return a, err
	}
	if a.IsAvailable, err = boolCol(r, ColIsAvailable); err != nil {
		return a, err
	}
	if a.StartTime, err = nullableStringCol(r, ColStartTime); err != nil {
		return a, err
	}
	if a.EndTime, err = nullableStringCol(r, ColEndTime); err != nil {
		return a, err
	}
	return a, nil
}

func ProfileFromRow(r Row) (model.Profile, error) {
	var p model.Profile
	var err error

	if p.ID, err = stringCol(r, ColID); err != nil {
		return p, err
	}
	name, err := nullableStringCol(r, ColFullName)
	if err != nil {
		return p, err
	}
	if name != nil {
		p.FullName = *name
	}
	role, err := nullableStringCol(r, ColRole)
	if err != nil {
		return p, err
	}
	if role != nil {
		p.Role = model.Role(*role)
	}
	if p.Phone, err = nullableStringCol(r, ColPhone); err != nil {
		return p, err
	}
	return p, nil
}

func ProfileToRow(p model.Profile) Row {
	return Row{
		ColID:       p.ID,
		ColFullName: p.FullName,
		ColRole:     string(p.Role),
		ColPhone:    nullableString(p.Phone),
	}
}

func StoreFromRow(r Row) (model.Store, error) {
	var s model.Store
	var err error

	if s.ID, err = stringCol(r, ColID); err != nil {
		return s, err
	}
	if s.Name, err = stringCol(r, ColName); err != nil {
		return s, err
	}
	if s.Notes, err = nullableStringCol(r, ColNotes); err != nil {
		return s, err
	}
	color, err := nullableStringCol(r, ColColor)
	if err != nil {
		return s, err
	}
	if color != nil {
		s.Color = *color
	}
	return s, nil
}

func StoreToRow(s model.Store) Row {
	return Row{
		ColID:    s.ID,
		ColName:  s.Name,
		ColNotes: nullableString(s.Notes),
		ColColor: s.Color,
	}
}

// nullableString maps a nil pointer to a NULL column value
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringCol(r Row, col string) (string, error) {
	v, err := nullableStringCol(r, col)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("column %s is null", col)
	}
	return *v, nil
}

func nullableStringCol(r Row, col string) (*string, error) {
	switch v := r[col].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case time.Time:
		return nil, fmt.Errorf("column %s: expected string, got timestamp", col)
	case fmt.Stringer:
		// uuid columns decoded by the driver
		s := v.String()
		return &s, nil
	case [16]byte:
		// pgx.RowToMap decodes uuid columns to raw bytes
		s := uuid.UUID(v).String()
		return &s, nil
	default:
		return nil, fmt.Errorf("column %s: expected string, got %T", col, v)
	}
}

func timeCol(r Row, col string) (time.Time, error) {
	v, ok := r[col].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("column %s: expected timestamp, got %T", col, r[col])
	}
	return v.UTC(), nil
}

func boolCol(r Row, col string) (bool, error) {
	switch v := r[col].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("column %s: expected bool, got %T", col, v)
	}
}
