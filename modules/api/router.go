// Package api binds the EventHub session core to a localhost JSON and SSE
// surface. Every route reads the single process-wide session held by the
// session manager; the guard package decides which routes an anonymous or
// authenticated session may open.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/event"
	"github.com/dmitrymomot/eventhub/pkg/guard"
	"github.com/dmitrymomot/eventhub/pkg/httpserver"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/requestid"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

// Sessions is the part of session.Manager the handlers drive.
type Sessions interface {
	Session() session.Session
	State() *session.State
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Register(ctx context.Context, username, password string) (account.Account, error)
	UpdateProfile(ctx context.Context, p account.Patch) (account.Account, error)
	ChangePassword(ctx context.Context, current, next string) error
	TimeRemaining() time.Duration
}

// ReturnURLs remembers the route an anonymous user tried to open.
type ReturnURLs interface {
	SetReturnURL(ctx context.Context, url string)
	TakeReturnURL(ctx context.Context) (string, bool)
}

// Signals receives interaction signals reported by the client.
type Signals interface {
	Emit(kind session.SignalKind) int
}

// Options wires the router. Sessions and Events are required; the rest
// are optional and mounted only when provided.
type Options struct {
	Sessions   Sessions
	Events     *event.Catalog
	ReturnURLs ReturnURLs
	Signals    Signals
	Navigation *Navigation
	// Readiness checks served on /health/ready.
	Readiness []func(context.Context) error
	Clock     clock.Clock
	Logger    *slog.Logger
}

type handlers struct {
	sessions   Sessions
	events     *event.Catalog
	returnURLs ReturnURLs
	signals    Signals
	navigation *Navigation
	clock      clock.Clock
	log        *slog.Logger
}

// Router builds the HTTP surface.
//
// Example:
//
//	nav := api.NewNavigation()
//	mgr := session.New(accounts, session.WithNavigator(nav), session.WithSignalSource(bus))
//	r := api.Router(api.Options{
//	    Sessions:   mgr,
//	    Events:     catalog,
//	    ReturnURLs: bridge,
//	    Signals:    bus,
//	    Navigation: nav,
//	})
func Router(opts Options) chi.Router {
	if opts.Sessions == nil || opts.Events == nil {
		panic("api: sessions and events are required")
	}
	h := &handlers{
		sessions:   opts.Sessions,
		events:     opts.Events,
		returnURLs: opts.ReturnURLs,
		signals:    opts.Signals,
		navigation: opts.Navigation,
		clock:      opts.Clock,
		log:        opts.Logger,
	}
	if h.clock == nil {
		h.clock = clock.Real()
	}
	if h.log == nil {
		h.log = logger.Discard()
	}
	h.log = h.log.With(logger.Component("api"))

	guardOpts := []guard.Option{guard.WithLogger(opts.Logger)}
	if opts.ReturnURLs != nil {
		guardOpts = append(guardOpts, guard.WithReturnURLs(opts.ReturnURLs))
	}
	g := guard.New(opts.Sessions, guardOpts...)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/health/live", httpserver.HealthCheckHandler(h.log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(h.log, opts.Readiness...))

	r.Route("/auth", func(auth chi.Router) {
		auth.Group(func(guest chi.Router) {
			guest.Use(g.GuestOnly)
			guest.Post("/login", h.login)
			guest.Post("/register", h.register)
		})
		auth.Post("/logout", h.logout)
		auth.With(g.RequireAuth).Post("/refresh", h.refresh)
	})

	r.Get("/session", h.currentSession)
	r.Get("/session/stream", h.stream)
	if opts.Signals != nil {
		r.Post("/activity", h.activity)
	}

	r.Group(func(private chi.Router) {
		private.Use(g.RequireAuth)

		private.Get("/dashboard", h.dashboard)

		private.Get("/profile", h.profile)
		private.Put("/profile", h.updateProfile)
		private.Post("/profile/password", h.changePassword)

		private.Route("/events", func(events chi.Router) {
			events.Get("/", h.listEvents)
			events.Post("/", h.createEvent)
			events.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.getEvent)
				one.Put("/", h.editEvent)
				one.With(g.RequireRole(account.RoleAdmin)).Delete("/", h.deleteEvent)
				one.Post("/register", h.registerForEvent)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	return r
}
