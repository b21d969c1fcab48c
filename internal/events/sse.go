package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Handler streams the signed-in user's events as Server-Sent Events.
type Handler struct {
	Broker *Broker
	// UserID resolves the subscriber from the request; empty means anonymous.
	UserID    func(r *http.Request) string
	Heartbeat time.Duration
}

// Stream handles GET /events.
func (h Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if h.UserID != nil {
		userID = h.UserID(r)
	}
	if userID == "" {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's WriteTimeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.Broker.Subscribe(userID)
	defer h.Broker.Unsubscribe(ch)

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Stage, payload)
			flusher.Flush()
		}
	}
}
