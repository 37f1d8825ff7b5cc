package commands

import (
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	"github.com/jakechorley/coffee-rota/pkg/db"
	"github.com/jakechorley/coffee-rota/pkg/db/memstore"
)

// Demo data ids, stable so they can be typed into --as and shift commands
const (
	DemoManagerID  = "maria"
	DemoStoreMain  = "high-street"
	DemoStoreOther = "station"
)

var demoProfiles = []model.Profile{
	{ID: DemoManagerID, FullName: "Maria Lopez", Role: model.RoleManager},
	{ID: "xavier", FullName: "Xavier Quinn", Role: model.RoleBarista},
	{ID: "yasmin", FullName: "Yasmin Patel", Role: model.RoleShiftLead},
	{ID: "zoe", FullName: "Zoe Okafor", Role: model.RoleBarista},
}

// SeedDemo fills an in-memory store with two shops, four people and a week of shifts
// starting on the Monday of the week containing now
func SeedDemo(store *memstore.Store, clock *timerange.Clock, now time.Time) {
	for _, p := range demoProfiles {
		store.Seed(db.TableProfiles, db.ProfileToRow(p))
	}

	note := "Deliveries arrive before 9"
	store.Seed(db.TableStores,
		db.StoreToRow(model.Store{ID: DemoStoreMain, Name: "High Street", Notes: &note, Color: "#8B5E3C"}),
		db.StoreToRow(model.Store{ID: DemoStoreOther, Name: "Station", Color: "#2F6F4E"}),
	)

	monday := clock.WeekStart(now)
	staff := []string{"xavier", "yasmin", "zoe"}
	for day := 0; day < 7; day++ {
		date := clock.AddDays(monday, day)
		for i, slot := range []struct {
			store      string
			start, end int
		}{
			{DemoStoreMain, 7, 13},
			{DemoStoreMain, 13, 19},
			{DemoStoreOther, 6, 14},
		} {
			shift := model.Shift{
				ID:         uuid.NewString(),
				StoreID:    slot.store,
				StartTime:  localHour(clock, date, slot.start),
				EndTime:    localHour(clock, date, slot.end),
				SwapStatus: model.SwapNone,
			}
			// Leave one main-store shift open every other day for the marketplace
			if !(slot.store == DemoStoreMain && i == 1 && day%2 == 0) {
				owner := staff[(day+i)%len(staff)]
				shift.UserID = &owner
			}
			store.Seed(db.TableShifts, db.ShiftToRow(shift))
		}
	}
}

func localHour(clock *timerange.Clock, day time.Time, hour int) time.Time {
	local := day.In(clock.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, clock.Location()).UTC()
}
