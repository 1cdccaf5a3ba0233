package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/guard"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/session"
	"github.com/dmitrymomot/eventhub/pkg/validator"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c credentials) validate() error {
	return validator.Apply(
		validator.Required("username", c.Username),
		validator.MinLen("username", c.Username, 3),
		validator.Required("password", c.Password),
		validator.MinLen("password", c.Password, 6),
	)
}

type registration struct {
	credentials
	ConfirmPassword string `json:"confirmPassword"`
}

func (r registration) validate() error {
	return validator.Apply(
		validator.Required("username", r.Username),
		validator.MinLen("username", r.Username, 3),
		validator.Required("password", r.Password),
		validator.MinLen("password", r.Password, 6),
		validator.Required("confirmPassword", r.ConfirmPassword),
		validator.Equal("confirmPassword", r.ConfirmPassword, r.Password, "passwords do not match"),
	)
}

// Redirect tells the client where to go next.
type Redirect struct {
	Redirect string       `json:"redirect"`
	Session  *SessionView `json:"session,omitempty"`
	Message  string       `json:"message,omitempty"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	if err := h.sessions.Login(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, session.ErrInvalidCredential) {
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid username or password", nil)
			return
		}
		h.log.ErrorContext(r.Context(), "login failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An error occurred during login", nil)
		return
	}

	target := guard.DashboardPath
	if h.returnURLs != nil {
		if u, ok := h.returnURLs.TakeReturnURL(r.Context()); ok {
			target = u
		}
	}

	view := newSessionView(h.sessions.Session(), h.clock.Now())
	writeJSON(w, http.StatusOK, Redirect{Redirect: target, Session: &view, Message: "Login successful!"})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registration
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	if _, err := h.sessions.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, account.ErrDuplicateIdentifier) {
			writeError(w, http.StatusConflict, codeDuplicateUsername,
				"Username already exists. Please choose a different username.", nil)
			return
		}
		h.log.ErrorContext(r.Context(), "registration failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An error occurred during registration", nil)
		return
	}

	writeJSON(w, http.StatusCreated, Redirect{
		Redirect: guard.LoginPath,
		Message:  "Registration successful! Please sign in.",
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "logout failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, Redirect{Redirect: guard.LoginPath})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Refresh(r.Context()); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "not logged in", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "refresh failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(h.sessions.Session(), h.clock.Now()))
}
