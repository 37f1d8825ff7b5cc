package api

import (
	"time"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

type shiftResponse struct {
	ID              string    `json:"id"`
	StoreID         string    `json:"storeId"`
	UserID          *string   `json:"userId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Note            string    `json:"note"`
	SwapStatus      string    `json:"swapStatus"`
	SwapCandidateID *string   `json:"swapCandidateId"`
}

func toShiftResponse(s model.Shift) shiftResponse {
	return shiftResponse{
		ID:              s.ID,
		StoreID:         s.StoreID,
		UserID:          s.UserID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Note:            s.Note,
		SwapStatus:      string(s.SwapStatus),
		SwapCandidateID: s.SwapCandidateID,
	}
}

func toShiftResponses(shifts []model.Shift) []shiftResponse {
	out := make([]shiftResponse, len(shifts))
	for i, s := range shifts {
		out[i] = toShiftResponse(s)
	}
	return out
}

type availabilityResponse struct {
	ID          string  `json:"id,omitempty"`
	UserID      string  `json:"userId"`
	DayOfWeek   string  `json:"dayOfWeek"`
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
}

func toAvailabilityResponse(a model.Availability) availabilityResponse {
	return availabilityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		DayOfWeek:   string(a.DayOfWeek),
		IsAvailable: a.IsAvailable,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
	}
}

type storeResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
	Color string  `json:"color"`
}

func toStoreResponse(s model.Store) storeResponse {
	return storeResponse{ID: s.ID, Name: s.Name, Notes: s.Notes, Color: s.Color}
}

type copyWeekRequest struct {
	WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
}

// availabilityRequest defaults userId to the caller when omitted
type availabilityRequest struct {
	UserID      string  `json:"userId"`
	DayOfWeek   string  `json:"dayOfWeek" validate:"required"`
	IsAvailable bool    `json:"isAvailable"`
	StartTime   *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime     *string `json:"endTime" validate:"omitempty,datetime=15:04"`
}

type storeNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type editableResponse struct {
	Editable   bool     `json:"editable"`
	Day        string   `json:"day"`
	LockedDays []string `json:"lockedDays"`
}

type sessionResponse struct {
	UserID     string `json:"userId"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	Capability string `json:"capability"`
}
