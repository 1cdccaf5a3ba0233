package api

import (
	"encoding/json"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/eventhub/pkg/broadcast"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

func (h *handlers) currentSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(h.sessions.Session(), h.clock.Now()))
}

// stream pushes the session as a "session" signal on connect and after every
// transition, and follows navigation requests with a client-side redirect.
// It ends when the client disconnects or the server shuts down.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions := h.sessions.State().Watch(ctx)
	var navigate <-chan broadcast.Message[Navigate]
	if h.navigation != nil {
		sub := h.navigation.Subscribe(ctx)
		defer sub.Close()
		navigate = sub.Receive(ctx)
	}

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-sessions:
			if !ok {
				return
			}
			if err := h.patchSession(sse, s); err != nil {
				h.log.DebugContext(ctx, "session stream closed", logger.Error(err))
				return
			}
		case msg, ok := <-navigate:
			if !ok {
				navigate = nil
				continue
			}
			if err := sse.Redirect(msg.Data.URL); err != nil {
				h.log.DebugContext(ctx, "session stream closed", logger.Error(err))
				return
			}
		}
	}
}

func (h *handlers) patchSession(sse *datastar.ServerSentEventGenerator, s session.Session) error {
	data, err := json.Marshal(map[string]any{"session": newSessionView(s, h.clock.Now())})
	if err != nil {
		return err
	}
	return sse.PatchSignals(data)
}

type activityRequest struct {
	Kind session.SignalKind `json:"kind"`
}

func (h *handlers) activity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "unknown activity kind",
			map[string][]string{"kind": {"unknown activity kind"}})
		return
	}

	delivered := h.signals.Emit(req.Kind)
	writeJSON(w, http.StatusAccepted, map[string]int{"delivered": delivered})
}
