package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/eventhub/pkg/event"
	"github.com/dmitrymomot/eventhub/pkg/logger"
)

const recentEvents = 5

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Session()
	if !s.Authenticated {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "not logged in", nil)
		return
	}
	writeJSON(w, http.StatusOK, Dashboard{
		User:         newProfile(*s.Account),
		Stats:        h.events.Stats(s.Username(), h.clock.Now()),
		RecentEvents: newEventViews(h.events.Recent(recentEvents)),
	})
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newEventViews(h.events.List()))
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := h.events.Get(id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e))
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var f event.Form
	if err := decode(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	e, err := h.events.Create(r.Context(), f, h.sessions.Session().Username())
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventView(e))
}

func (h *handlers) editEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var f event.Form
	if err := decode(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	e, err := h.events.Edit(r.Context(), id, f)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e))
}

func (h *handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		h.writeEventError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) registerForEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := h.events.Register(r.Context(), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e))
}

func eventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid event id", nil)
		return 0, false
	}
	return id, true
}

func (h *handlers) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	if writeValidation(w, err) {
		return
	}
	switch {
	case errors.Is(err, event.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "event not found", nil)
	case errors.Is(err, event.ErrEventFull):
		writeError(w, http.StatusConflict, codeEventFull, "This event is full", nil)
	case errors.Is(err, event.ErrRegistrationClosed):
		writeError(w, http.StatusConflict, codeRegistrationClosed, "Registration is closed for this event", nil)
	default:
		h.log.ErrorContext(r.Context(), "event operation failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An error occurred. Please try again.", nil)
	}
}
