package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

// Repository provides typed table operations over a Query backend.
// Backend failures are reported as RemoteStore errors carrying the underlying message.
type Repository struct {
	q Query
}

// NewRepository creates a repository over the given query backend
func NewRepository(q Query) *Repository {
	return &Repository{q: q}
}

// GetShift retrieves a shift by id
func (r *Repository) GetShift(ctx context.Context, id string) (model.Shift, error) {
	row, ok, err := r.q.FindOne(ctx, TableShifts, []Filter{Eq(ColID, id)})
	if err != nil {
		return model.Shift{}, apperr.RemoteStore(err, "failed to fetch shift")
	}
	if !ok {
		return model.Shift{}, apperr.NotFound("shift %s not found", id)
	}
	return ShiftFromRow(row)
}

// FindShifts retrieves shifts matching all filters
func (r *Repository) FindShifts(ctx context.Context, filters []Filter, order ...Order) ([]model.Shift, error) {
	rows, err := r.q.Find(ctx, TableShifts, filters, order...)
	if err != nil {
		return nil, apperr.RemoteStore(err, "failed to query shifts")
	}
	return ShiftsFromRows(rows)
}

// InsertShifts inserts shifts, assigning ids to any without one
func (r *Repository) InsertShifts(ctx context.Context, shifts []model.Shift) ([]model.Shift, error) {
	if len(shifts) == 0 {
		return []model.Shift{}, nil
	}

	rows := make([]Row, len(shifts))
	for i, s := range shifts {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		rows[i] = ShiftToRow(s)
	}

	inserted, err := r.q.Insert(ctx, TableShifts, rows)
	if err != nil {
		return nil, apperr.RemoteStore(err, "failed to insert shifts")
	}
	return ShiftsFromRows(inserted)
}

// UpdateShiftIf applies patch to the shift only while every expect filter still holds.
// It reports false when no row matched, i.e. the shift changed or vanished since it was read.
func (r *Repository) UpdateShiftIf(ctx context.Context, id string, expect []Filter, patch Row) (bool, error) {
	filters := append([]Filter{Eq(ColID, id)}, expect...)
	n, err := r.q.Update(ctx, TableShifts, filters, patch)
	if err != nil {
		return false, apperr.RemoteStore(err, "failed to update shift")
	}
	return n > 0, nil
}

// DeleteShift removes a shift, reporting whether it existed
func (r *Repository) DeleteShift(ctx context.Context, id string) (bool, error) {
	n, err := r.q.Delete(ctx, TableShifts, []Filter{Eq(ColID, id)})
	if err != nil {
		return false, apperr.RemoteStore(err, "failed to delete shift")
	}
	return n > 0, nil
}

// ListAvailability retrieves every availability row for a person
func (r *Repository) ListAvailability(ctx context.Context, userID string) ([]model.Availability, error) {
	rows, err := r.q.Find(ctx, TableAvailability, []Filter{Eq(ColUserID, userID)})
	if err != nil {
		return nil, apperr.RemoteStore(err, "failed to query availability")
	}

	result := make([]model.Availability, 0, len(rows))
	for _, row := range rows {
		a, err := AvailabilityFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode availability row: %w", err)
		}
		result = append(result, a)
	}
	return result, nil
}

// FindAvailability retrieves the row for one person and day
func (r *Repository) FindAvailability(ctx context.Context, userID string, day model.Weekday) (model.Availability, bool, error) {
	row, ok, err := r.q.FindOne(ctx, TableAvailability, []Filter{
		Eq(ColUserID, userID),
		Eq(ColDayOfWeek, string(day)),
	})
	if err != nil {
		return model.Availability{}, false, apperr.RemoteStore(err, "failed to query availability")
	}
	if !ok {
		return model.Availability{}, false, nil
	}
	a, err := AvailabilityFromRow(row)
	if err != nil {
		return model.Availability{}, false, fmt.Errorf("failed to decode availability row: %w", err)
	}
	return a, true, nil
}

// InsertAvailability inserts a new availability row
func (r *Repository) InsertAvailability(ctx context.Context, a model.Availability) (model.Availability, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	inserted, err := r.q.Insert(ctx, TableAvailability, []Row{AvailabilityToRow(a)})
	if err != nil {
		return model.Availability{}, apperr.RemoteStore(err, "failed to insert availability")
	}
	if len(inserted) != 1 {
		return model.Availability{}, fmt.Errorf("expected 1 inserted availability row, got %d", len(inserted))
	}
	return AvailabilityFromRow(inserted[0])
}

// UpdateAvailability overwrites the window of an existing row
func (r *Repository) UpdateAvailability(ctx context.Context, a model.Availability) error {
	row := AvailabilityToRow(a)
	patch := Row{
		ColIsAvailable: row[ColIsAvailable],
		ColStartTime:   row[ColStartTime],
		ColEndTime:     row[ColEndTime],
	}
	n, err := r.q.Update(ctx, TableAvailability, []Filter{Eq(ColID, a.ID)}, patch)
	if err != nil {
		return apperr.RemoteStore(err, "failed to update availability")
	}
	if n == 0 {
		return apperr.NotFound("availability %s not found", a.ID)
	}
	return nil
}

// GetProfile retrieves a profile by id
func (r *Repository) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	row, ok, err := r.q.FindOne(ctx, TableProfiles, []Filter{Eq(ColID, id)})
	if err != nil {
		return model.Profile{}, apperr.RemoteStore(err, "failed to fetch profile")
	}
	if !ok {
		return model.Profile{}, apperr.NotFound("profile %s not found", id)
	}
	return ProfileFromRow(row)
}

// ListProfiles retrieves all profiles ordered by name
func (r *Repository) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.q.Find(ctx, TableProfiles, nil, Asc(ColFullName))
	if err != nil {
		return nil, apperr.RemoteStore(err, "failed to query profiles")
	}
	profiles := make([]model.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := ProfileFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// GetStore retrieves a store by id
func (r *Repository) GetStore(ctx context.Context, id string) (model.Store, error) {
	row, ok, err := r.q.FindOne(ctx, TableStores, []Filter{Eq(ColID, id)})
	if err != nil {
		return model.Store{}, apperr.RemoteStore(err, "failed to fetch store")
	}
	if !ok {
		return model.Store{}, apperr.NotFound("store %s not found", id)
	}
	return StoreFromRow(row)
}

// ListStores retrieves all stores ordered by name
func (r *Repository) ListStores(ctx context.Context) ([]model.Store, error) {
	rows, err := r.q.Find(ctx, TableStores, nil, Asc(ColName))
	if err != nil {
		return nil, apperr.RemoteStore(err, "failed to query stores")
	}
	stores := make([]model.Store, 0, len(rows))
	for _, row := range rows {
		s, err := StoreFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode store row: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, nil
}

// UpdateStoreNotes replaces the bulletin notes of a store
func (r *Repository) UpdateStoreNotes(ctx context.Context, id string, notes *string) (bool, error) {
	n, err := r.q.Update(ctx, TableStores, []Filter{Eq(ColID, id)}, Row{ColNotes: nullableString(notes)})
	if err != nil {
		return false, apperr.RemoteStore(err, "failed to update store notes")
	}
	return n > 0, nil
}
