package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/auth"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/services"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
)

// Workflow is the set of shift operations served over HTTP
type Workflow interface {
	ClaimShift(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	OfferSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	CancelOffer(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	RequestSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	ApproveSwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	DenySwap(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
	AcknowledgeDenial(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)

	CreateShift(ctx context.Context, actor model.Actor, in services.CreateShiftInput) (model.Shift, error)
	UpdateShift(ctx context.Context, actor model.Actor, shiftID string, in services.UpdateShiftInput) (model.Shift, error)
	DeleteShift(ctx context.Context, actor model.Actor, shiftID string) error
	CopyWeek(ctx context.Context, actor model.Actor, storeID string, weekStart time.Time) ([]model.Shift, error)
	CheckConflict(ctx context.Context, personID string, start, end time.Time, excludeShiftID string) ([]model.Shift, error)

	IsAvailabilityEditable(today time.Time, actor model.Actor) bool
	SetAvailability(ctx context.Context, actor model.Actor, in services.SetAvailabilityInput) (model.Availability, error)
	ListAvailability(ctx context.Context, actor model.Actor, userID string) ([]model.Availability, error)
	LockedDays() []model.Weekday

	ListMarketplace(ctx context.Context, storeID string) ([]model.Shift, error)
	PendingApprovals(ctx context.Context, actor model.Actor, storeID string) ([]model.Shift, error)
	ListStores(ctx context.Context) ([]model.Store, error)
	UpdateStoreNotes(ctx context.Context, actor model.Actor, storeID string, notes string) (model.Store, error)

	Clock() *timerange.Clock
	Now() time.Time
}

// BadgeSource returns the latest badge counts, or false when there is no data
type BadgeSource interface {
	Latest() (services.BadgeCounts, bool)
}

// Deps are the collaborators the router serves
type Deps struct {
	Workflow Workflow
	Verifier *auth.Verifier
	Profiles auth.ProfileGetter
	Badges   BadgeSource
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter builds the HTTP handler. Everything except /healthz and /metrics needs a bearer token.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &handlers{workflow: deps.Workflow, badges: deps.Badges, logger: logger}

	r := chi.NewRouter()
	r.Use(
		recoverer(logger),
		chimw.RequestID,
		requestLogger(logger),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(authenticate(deps.Verifier, deps.Profiles, logger))

		r.Get("/session", h.session)
		r.Get("/badges", h.badgeCounts)

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/", h.createShift)
			r.Route("/{shiftID}", func(r chi.Router) {
				r.Patch("/", h.updateShift)
				r.Delete("/", h.deleteShift)
				r.Post("/claim", h.transition(deps.Workflow.ClaimShift))
				r.Post("/offer", h.transition(deps.Workflow.OfferSwap))
				r.Post("/cancel", h.transition(deps.Workflow.CancelOffer))
				r.Post("/request", h.transition(deps.Workflow.RequestSwap))
				r.Post("/approve", h.transition(deps.Workflow.ApproveSwap))
				r.Post("/deny", h.transition(deps.Workflow.DenySwap))
				r.Post("/acknowledge", h.transition(deps.Workflow.AcknowledgeDenial))
			})
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", h.listStores)
			r.Post("/{storeID}/copy-week", h.copyWeek)
			r.Patch("/{storeID}/notes", h.updateStoreNotes)
		})

		r.Get("/marketplace", h.marketplace)
		r.Get("/approvals", h.approvals)
		r.Get("/conflicts", h.conflicts)

		r.Route("/availability", func(r chi.Router) {
			r.Get("/", h.listAvailability)
			r.Put("/", h.setAvailability)
			r.Get("/editable", h.availabilityEditable)
		})
	})

	return r
}
