package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/sse"
)

const defaultKeepAlive = 25 * time.Second

type EventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type EventsHandlerImpl struct {
	hub       *sse.Hub
	keepAlive time.Duration
}

func NewEventsHandler(hub *sse.Hub, keepAlive time.Duration) EventsHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &EventsHandlerImpl{hub: hub, keepAlive: keepAlive}
}

// topicsFor lists what the caller may follow. Everyone follows their own
// applications; only callers that can view all leave follow an institution,
// and unscoped ones may follow everything.
func topicsFor(caller access.Principal, requestedInstitution string) ([]string, bool) {
	topics := []string{sse.OfficerTopic(caller.ActorID())}

	if !access.HasCapability(caller, access.FeatureLeaveViewAll) {
		return topics, requestedInstitution == ""
	}
	if caller.InstitutionID != nil {
		if requestedInstitution != "" && !caller.InInstitution(requestedInstitution) {
			return nil, false
		}
		return append(topics, sse.InstitutionTopic(*caller.InstitutionID)), true
	}
	if requestedInstitution != "" {
		return append(topics, sse.InstitutionTopic(requestedInstitution)), true
	}
	return append(topics, sse.AllTopic), true
}

// Stream implements EventsHandler.
func (h *EventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	topics, ok := topicsFor(caller, r.URL.Query().Get("institution_id"))
	if !ok {
		response.Forbidden(w, "Cannot subscribe to this institution")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming unsupported")
		return
	}

	events, cleanup := h.hub.Subscribe(topics...)
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	slog.Info("SSE subscriber connected", "user_id", caller.UserID, "topics", topics, "subscribers", h.hub.TotalSubscribers())
	defer slog.Info("SSE subscriber disconnected", "user_id", caller.UserID)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(e.Data)
			if err != nil {
				slog.Error("SSE encode error", "event", e.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Event, data)
			flusher.Flush()
		}
	}
}
