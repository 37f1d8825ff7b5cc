package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	"github.com/jakechorley/coffee-rota/pkg/db/memstore"
	"github.com/jakechorley/coffee-rota/pkg/metrics"
)

const testStore = "store-high-street"

var (
	xavier = model.Actor{UserID: "xavier", Capability: model.CapabilityStaff}
	yasmin = model.Actor{UserID: "yasmin", Capability: model.CapabilityStaff}
	zoe    = model.Actor{UserID: "zoe", Capability: model.CapabilityStaff}
	maria  = model.Actor{UserID: "maria", Capability: model.CapabilityManager}
)

// Monday 1 January 2024, before the opening shift
var testNow = time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

type fixture struct {
	mem      *memstore.Store
	repo     *db.Repository
	workflow *Workflow
	registry *prometheus.Registry
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithClock(t, timerange.UTCClock())
}

func newFixtureWithClock(t *testing.T, clock *timerange.Clock) *fixture {
	t.Helper()
	f := &fixture{
		mem:      memstore.New(),
		registry: prometheus.NewRegistry(),
		now:      testNow,
	}
	f.repo = db.NewRepository(f.mem)
	f.workflow = NewWorkflow(f.repo, zap.NewNop(), Options{
		Clock:   clock,
		Metrics: metrics.NewWorkflowMetrics(f.registry),
		Now:     func() time.Time { return f.now },
	})
	return f
}

// at returns 2024-01-<day> hour:00 UTC
func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func (f *fixture) seed(t *testing.T, shifts ...model.Shift) {
	t.Helper()
	for i := range shifts {
		if shifts[i].StoreID == "" {
			shifts[i].StoreID = testStore
		}
	}
	_, err := f.repo.InsertShifts(context.Background(), shifts)
	require.NoError(t, err)
}

func (f *fixture) get(t *testing.T, id string) model.Shift {
	t.Helper()
	s, err := f.repo.GetShift(context.Background(), id)
	require.NoError(t, err)
	return s
}

func openShift(id string, start, end time.Time) model.Shift {
	return model.Shift{ID: id, StartTime: start, EndTime: end, SwapStatus: model.SwapNone}
}

func assignedShift(id, userID string, start, end time.Time) model.Shift {
	s := openShift(id, start, end)
	s.UserID = strPtr(userID)
	return s
}

func strPtr(s string) *string { return &s }
