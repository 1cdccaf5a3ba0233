package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventhub/modules/api"
	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/event"
	"github.com/dmitrymomot/eventhub/pkg/kvstore"
	"github.com/dmitrymomot/eventhub/pkg/persistence"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type app struct {
	handler  http.Handler
	manager  *session.Manager
	clock    *clock.Fake
	bridge   *persistence.Bridge
	nav      *api.Navigation
	catalog  *event.Catalog
	accounts *account.Store
}

func newApp(t *testing.T, readiness ...func(context.Context) error) *app {
	t.Helper()

	a := &app{clock: clock.NewFake(t0), nav: api.NewNavigation()}
	a.bridge = persistence.New(kvstore.NewMemory(), persistence.WithClock(a.clock))
	a.accounts = account.NewStore(account.WithPersister(a.bridge), account.WithClock(a.clock))
	bus := session.NewSignalBus()
	a.manager = session.New(a.accounts,
		session.WithPersister(a.bridge),
		session.WithNavigator(a.nav),
		session.WithSignalSource(bus),
		session.WithClock(a.clock),
	)
	a.manager.Start(context.Background())
	a.catalog = event.NewCatalog(event.WithClock(a.clock))

	a.handler = api.Router(api.Options{
		Sessions:   a.manager,
		Events:     a.catalog,
		ReturnURLs: a.bridge,
		Signals:    bus,
		Navigation: a.nav,
		Readiness:  readiness,
		Clock:      a.clock,
	})
	t.Cleanup(func() {
		_ = a.manager.Close()
		_ = a.nav.Close()
	})
	return a
}

func (a *app) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *app) login(t *testing.T, username, password string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

type envelope[T any] struct {
	Data  T                `json:"data"`
	Error *api.ErrorDetail `json:"error"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		rec := a.do(t, http.MethodGet, "/health/live", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready reports failing checks", func(t *testing.T) {
		t.Parallel()
		a := newApp(t, func(context.Context) error { return errors.New("storage down") })
		rec := a.do(t, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})

	t.Run("request id is echoed", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		rec := a.do(t, http.MethodGet, "/health/live", nil)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("wrong password keeps the session anonymous", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "wrong-pass"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeBody[api.Redirect](t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "invalid_credentials", env.Error.Code)
		assert.Equal(t, "Invalid username or password", env.Error.Message)
		assert.False(t, a.manager.IsLoggedIn())
	})

	t.Run("short input is rejected before authentication", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "ad", "password": "123"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeBody[api.Redirect](t, rec)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "username")
		assert.Contains(t, env.Error.Details, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success redirects to the dashboard", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "admin123"})
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeBody[api.Redirect](t, rec)
		assert.Equal(t, "/dashboard", env.Data.Redirect)
		require.NotNil(t, env.Data.Session)
		assert.True(t, env.Data.Session.Authenticated)
		assert.Equal(t, "admin", env.Data.Session.User.Username)
		assert.Equal(t, t0.Add(30*time.Minute), env.Data.Session.ExpiresAt)
		assert.EqualValues(t, 1800, env.Data.Session.RemainingSeconds)
		assert.NotContains(t, rec.Body.String(), "admin123")
	})

	t.Run("logged in users cannot open guest routes", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.login(t, "user", "user123")

		rec := a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "admin123"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "user", a.manager.Session().Username())
	})

	t.Run("returns to the originally requested route", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodGet, "/events/3", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"redirect":"/auth/login"`)

		rec = a.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "user", "password": "user123"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/events/3", decodeBody[api.Redirect](t, rec).Data.Redirect)

		_, ok := a.bridge.TakeReturnURL(context.Background())
		assert.False(t, ok, "return url is consumed by login")
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("confirmation must match", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "carol", "password": "secret1", "confirmPassword": "secret2",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		env := decodeBody[api.Redirect](t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, []string{"passwords do not match"}, env.Error.Details["confirmPassword"])
	})

	t.Run("success does not log in", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "carol", "password": "secret1", "confirmPassword": "secret1",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/auth/login", decodeBody[api.Redirect](t, rec).Data.Redirect)
		assert.False(t, a.manager.IsLoggedIn())

		a.login(t, "carol", "secret1")
		assert.Equal(t, account.RoleUser, a.manager.Role())
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)

		rec := a.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "admin", "password": "secret1", "confirmPassword": "secret1",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		env := decodeBody[api.Redirect](t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "duplicate_username", env.Error.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	rec := a.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[api.SessionView](t, rec).Data.Authenticated)

	rec = a.do(t, http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.login(t, "user", "user123")
	a.clock.Advance(10 * time.Minute)

	rec = a.do(t, http.MethodGet, "/session", nil)
	assert.EqualValues(t, 1200, decodeBody[api.SessionView](t, rec).Data.RemainingSeconds)

	rec = a.do(t, http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[api.SessionView](t, rec).Data
	assert.Equal(t, t0.Add(40*time.Minute), view.ExpiresAt)
	assert.EqualValues(t, 1800, view.RemainingSeconds)

	rec = a.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/auth/login", decodeBody[api.Redirect](t, rec).Data.Redirect)
	assert.False(t, a.manager.IsLoggedIn())
	assert.Zero(t, a.clock.Pending())
}

func TestActivity(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	rec := a.do(t, http.MethodPost, "/activity", map[string]string{"kind": "wheel"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	a.login(t, "user", "user123")
	a.clock.Advance(5 * time.Minute)

	rec = a.do(t, http.MethodPost, "/activity", map[string]string{"kind": "click"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, map[string]int{"delivered": 1}, decodeBody[map[string]int](t, rec).Data)

	s := a.manager.Session()
	assert.Equal(t, t0.Add(5*time.Minute), s.Account.LastActivity)
	assert.Equal(t, t0.Add(30*time.Minute), s.Expiry, "activity does not extend the session")
}

func TestProfile(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.login(t, "user", "user123")

	rec := a.do(t, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[api.Profile](t, rec).Data
	assert.Equal(t, "user", profile.Username)
	assert.Equal(t, "Demo User", profile.FullName)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.do(t, http.MethodPut, "/profile", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPut, "/profile", map[string]string{"fullName": "Dana Scully", "bio": "FBI"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile = decodeBody[api.Profile](t, rec).Data
	assert.Equal(t, "Dana Scully", profile.FullName)
	assert.Equal(t, "user@example.com", profile.Email, "fields absent from the patch are kept")
	assert.Equal(t, "Dana Scully", a.manager.Session().Account.FullName)

	rec = a.do(t, http.MethodPut, "/profile", map[string]string{"email": " Dana.Scully@FBI.gov ", "bio": "<b>Agent</b>"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile = decodeBody[api.Profile](t, rec).Data
	assert.Equal(t, "dana.scully@fbi.gov", profile.Email)
	assert.Equal(t, "Agent", profile.Bio)

	rec = a.do(t, http.MethodPost, "/profile/password", map[string]string{
		"currentPassword": "wrong", "newPassword": "newpass1", "confirmPassword": "newpass1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Current password is incorrect.")

	rec = a.do(t, http.MethodPost, "/profile/password", map[string]string{
		"currentPassword": "user123", "newPassword": "newpass1", "confirmPassword": "newpass1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := a.accounts.Authenticate(context.Background(), "user", "newpass1")
	assert.True(t, ok)
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	a.login(t, "admin", "admin123")

	rec := a.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[api.Dashboard](t, rec).Data

	assert.Equal(t, "admin", d.User.Username)
	assert.Equal(t, event.Stats{TotalEvents: 6, UpcomingEvents: 0, MyEvents: 6, TotalAttendees: 825}, d.Stats)
	require.Len(t, d.RecentEvents, 5)
	assert.Equal(t, 6, d.RecentEvents[0].ID)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	form := map[string]any{
		"title":        "Go Meetup",
		"description":  "Monthly gathering of local gophers.",
		"date":         t0.AddDate(0, 1, 0),
		"time":         "18:30",
		"location":     "Community Hall",
		"category":     "Technology",
		"maxAttendees": 1,
	}

	t.Run("crud as a regular user", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.login(t, "user", "user123")

		rec := a.do(t, http.MethodGet, "/events", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[[]api.EventView](t, rec).Data, 6)

		rec = a.do(t, http.MethodPost, "/events", map[string]any{"title": "Go"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = a.do(t, http.MethodPost, "/events", form)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decodeBody[api.EventView](t, rec).Data
		assert.Equal(t, 7, created.ID)
		assert.Equal(t, "user", created.CreatedBy)
		assert.Equal(t, event.StatusUpcoming, created.Status)
		assert.Equal(t, event.DefaultImageURL, created.ImageURL)
		assert.True(t, created.CanRegister)

		rec = a.do(t, http.MethodPost, "/events/7/register", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		registered := decodeBody[api.EventView](t, rec).Data
		assert.Equal(t, 1, registered.CurrentAttendees)
		assert.True(t, registered.Full)
		assert.Equal(t, 100, registered.AttendancePercent)

		rec = a.do(t, http.MethodPost, "/events/7/register", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "event_full")

		edited := maps.Clone(form)
		edited["title"] = "Go Meetup: Generics"
		rec = a.do(t, http.MethodPut, "/events/7", edited)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Go Meetup: Generics", decodeBody[api.EventView](t, rec).Data.Title)
		assert.Equal(t, 1, decodeBody[api.EventView](t, rec).Data.CurrentAttendees)

		rec = a.do(t, http.MethodDelete, "/events/7", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "insufficient-permissions")
	})

	t.Run("admin deletes", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.login(t, "admin", "admin123")

		rec := a.do(t, http.MethodDelete, "/events/2", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = a.do(t, http.MethodGet, "/events/2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = a.do(t, http.MethodDelete, "/events/2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		a := newApp(t)
		a.login(t, "user", "user123")

		rec := a.do(t, http.MethodGet, "/events/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// streamRecorder is a ResponseWriter that can be read while a handler writes.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.code == 0 {
		r.code = code
	}
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestSessionStream(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newStreamRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session/stream", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.handler.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool { return a.nav.Listeners() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"authenticated":false`)
	}, time.Second, 5*time.Millisecond, "current session is pushed on connect")

	require.NoError(t, a.manager.Login(context.Background(), "user", "user123"))
	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"authenticated":true`)
	}, time.Second, 5*time.Millisecond)

	a.clock.Advance(30 * time.Minute)
	require.Eventually(t, func() bool {
		return strings.Contains(rec.String(), "/auth/login?message=session-expired")
	}, time.Second, 5*time.Millisecond, "expiry navigates to the login page")

	assert.Contains(t, rec.String(), "datastar-patch-signals")
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the client went away")
	}
	assert.Eventually(t, func() bool { return a.nav.Listeners() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	nav := api.NewNavigation(api.WithNavigationLoginPath("/login"))
	t.Cleanup(func() { _ = nav.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := nav.Subscribe(ctx)

	nav.ToLogin(ctx, session.ReasonLogout)
	nav.ToLogin(ctx, session.ReasonSessionExpired)

	msg := <-sub.Receive(ctx)
	assert.Equal(t, api.Navigate{URL: "/login"}, msg.Data)
	msg = <-sub.Receive(ctx)
	assert.Equal(t, api.Navigate{URL: "/login?message=session-expired", Reason: "session-expired"}, msg.Data)
}
