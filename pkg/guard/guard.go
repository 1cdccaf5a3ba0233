package guard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

// Default redirect targets.
const (
	LoginPath        = "/auth/login"
	GuestHomePath    = "/events"
	DashboardPath    = "/dashboard"
	ErrorPermissions = "insufficient-permissions"
)

// Sessions exposes the current session.
type Sessions interface {
	Session() session.Session
}

// ReturnURLs remembers where an anonymous user was heading.
type ReturnURLs interface {
	SetReturnURL(ctx context.Context, url string)
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
	// Status is the code sent to JSON clients when the request is refused.
	Status int
}

// Guard checks requests against the current session.
type Guard struct {
	sessions   Sessions
	returnURLs ReturnURLs
	loginPath  string
	guestHome  string
	deniedPath string
	log        *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithReturnURLs stores the attempted URL of anonymous requests.
func WithReturnURLs(r ReturnURLs) Option {
	return func(g *Guard) { g.returnURLs = r }
}

// WithLoginPath sets where anonymous requests are sent.
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithGuestHome sets where authenticated users are sent from guest-only routes.
func WithGuestHome(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.guestHome = path
		}
	}
}

// WithDeniedPath sets the page used for role mismatches; the error query
// parameter is appended to it.
func WithDeniedPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.deniedPath = path
		}
	}
}

// WithLogger sets the guard logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// New returns a Guard reading from sessions.
func New(sessions Sessions, opts ...Option) *Guard {
	g := &Guard{
		sessions:   sessions,
		loginPath:  LoginPath,
		guestHome:  GuestHomePath,
		deniedPath: DashboardPath,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("guard"))
	return g
}

// CheckAuth decides whether s may open a protected route.
func (g *Guard) CheckAuth(s session.Session) Decision {
	if s.Authenticated {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.loginPath, Status: http.StatusUnauthorized}
}

// CheckGuest decides whether s may open a guest-only route.
func (g *Guard) CheckGuest(s session.Session) Decision {
	if !s.Authenticated {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.guestHome, Status: http.StatusForbidden}
}

// CheckRole decides whether s may open a route limited to roles.
// An empty role list only requires authentication.
func (g *Guard) CheckRole(s session.Session, roles ...string) Decision {
	if !s.Authenticated {
		return Decision{Redirect: g.loginPath, Status: http.StatusUnauthorized}
	}
	if len(roles) == 0 || slices.ContainsFunc(roles, s.Account.HasRole) {
		return Decision{Allow: true}
	}
	q := url.Values{"error": {ErrorPermissions}}
	return Decision{Redirect: g.deniedPath + "?" + q.Encode(), Status: http.StatusForbidden}
}

// RequireAuth is middleware for routes that need a logged-in session.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.CheckAuth(g.sessions.Session())
		if d.Allow {
			next.ServeHTTP(w, r)
			return
		}

		if attempted := r.URL.RequestURI(); g.returnURLs != nil && attempted != "/" {
			g.returnURLs.SetReturnURL(r.Context(), attempted)
		}
		g.refuse(w, r, d)
	})
}

// GuestOnly is middleware for routes that only anonymous sessions may use.
func (g *Guard) GuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := g.CheckGuest(g.sessions.Session()); !d.Allow {
			g.refuse(w, r, d)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware admitting accounts holding any of roles.
func (g *Guard) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := g.sessions.Session()
			if d := g.CheckRole(s, roles...); !d.Allow {
				if s.Authenticated {
					g.log.WarnContext(r.Context(), "role check failed",
						logger.Username(s.Username()),
						logger.Role(s.Account.Role),
						slog.Any("required", roles),
					)
				}
				g.refuse(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type refusal struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func (g *Guard) refuse(w http.ResponseWriter, r *http.Request, d Decision) {
	if !wantsJSON(r) {
		http.Redirect(w, r, d.Redirect, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(refusal{
		Error:    strings.ReplaceAll(strings.ToLower(http.StatusText(d.Status)), " ", "_"),
		Redirect: d.Redirect,
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
