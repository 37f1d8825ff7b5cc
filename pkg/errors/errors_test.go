package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeConflict, http.StatusConflict},
		{CodeRaceLost, http.StatusConflict},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeRemoteStore, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, MetadataFor(tt.code).HTTPStatus)
			assert.NotEmpty(t, MetadataFor(tt.code).PublicMessage)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("SOMETHING_UNKNOWN").HTTPStatus)
}

func TestRemoteStoreKeepsUnderlyingMessage(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := RemoteStore(cause, "failed to update shifts")

	assert.True(t, stdErrors.Is(err, cause))
	assert.Equal(t, CodeRemoteStore, err.Code())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRemoteStoreKeepsClassifiedFailures(t *testing.T) {
	cause := fmt.Errorf("failed to run query: %w", Validation("invalid input syntax for type uuid"))
	err := RemoteStore(cause, "failed to fetch shift")

	assert.Equal(t, CodeValidation, err.Code())
	assert.Equal(t, "invalid input syntax for type uuid", err.Message())
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to claim shift: %w", RaceLost("shift %s already claimed", "s1"))

	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeRaceLost, typed.Code())
	assert.Equal(t, "shift s1 already claimed", typed.Message())
	assert.True(t, Is(err, CodeRaceLost))
	assert.False(t, Is(err, CodeConflict))
	assert.Equal(t, CodeRaceLost, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(stdErrors.New("boom")))
	assert.Nil(t, As(nil))
}

func TestWithDetails(t *testing.T) {
	err := Conflict("alice is already booked").WithDetails([]string{"shift-1"})
	assert.Equal(t, []string{"shift-1"}, err.Details())
}
