package db

import (
	"context"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	GetShift(ctx context.Context, id string) (model.Shift, error)
	FindShifts(ctx context.Context, filters []Filter, order ...Order) ([]model.Shift, error)
	InsertShifts(ctx context.Context, shifts []model.Shift) ([]model.Shift, error)
	UpdateShiftIf(ctx context.Context, id string, expect []Filter, patch Row) (bool, error)
	DeleteShift(ctx context.Context, id string) (bool, error)
}

// AvailabilityStore defines the interface for availability database operations
type AvailabilityStore interface {
	ListAvailability(ctx context.Context, userID string) ([]model.Availability, error)
	FindAvailability(ctx context.Context, userID string, day model.Weekday) (model.Availability, bool, error)
	InsertAvailability(ctx context.Context, a model.Availability) (model.Availability, error)
	UpdateAvailability(ctx context.Context, a model.Availability) error
}

// ProfileStore defines the interface for profile lookups
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
}

// StoreStore defines the interface for store (location) database operations
type StoreStore interface {
	GetStore(ctx context.Context, id string) (model.Store, error)
	ListStores(ctx context.Context) ([]model.Store, error)
	UpdateStoreNotes(ctx context.Context, id string, notes *string) (bool, error)
}

// Database defines the interface for all database operations.
// Repository implements it over any Query backend (postgres.DB or memstore.Store).
type Database interface {
	ShiftStore
	AvailabilityStore
	ProfileStore
	StoreStore
}
