package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCapability(t *testing.T) {
	assert.Equal(t, CapabilityManager, RoleManager.Capability())
	assert.Equal(t, CapabilityManager, RoleOperations.Capability())
	assert.Equal(t, CapabilityStaff, RoleBarista.Capability())
	assert.Equal(t, CapabilityStaff, RoleShiftLead.Capability())
	assert.Equal(t, CapabilityStaff, Role("").Capability())
}

func TestParseSwapStatus(t *testing.T) {
	status, err := ParseSwapStatus("")
	require.NoError(t, err)
	assert.Equal(t, SwapNone, status)

	status, err = ParseSwapStatus("pending_approval")
	require.NoError(t, err)
	assert.Equal(t, SwapPendingApproval, status)

	_, err = ParseSwapStatus("accepted")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" thursday ")
	require.NoError(t, err)
	assert.Equal(t, Thursday, d)
	assert.Equal(t, 3, d.Index())

	_, err = ParseWeekday("Funday")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Sunday, WeekdayOf(time.Sunday))
	assert.Equal(t, Monday, WeekdayOf(time.Monday))
}

func TestShiftOwnership(t *testing.T) {
	alice := "alice"
	open := Shift{ID: "s1"}
	owned := Shift{ID: "s2", UserID: &alice}

	assert.True(t, open.IsOpen())
	assert.False(t, open.OwnedBy("alice"))
	assert.False(t, owned.IsOpen())
	assert.True(t, owned.OwnedBy("alice"))
	assert.False(t, owned.OwnedBy("bob"))
}
