package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Samarth061/wolf-trace-backend/internal/fanout"
)

// handleCaseboardStream serves the caseboard stream (§4.5) as
// server-sent events: one event per fanout.Message, starting with the
// initial snapshot Subscribe() hands back. The subscriber's bounded
// buffer and drop-on-timeout semantics live entirely in
// internal/fanout; this handler only drains and writes.
func (s *Server) handleCaseboardStream(w http.ResponseWriter, r *http.Request) {
	if s.caseboard == nil {
		writeError(w, http.StatusNotImplemented, errNoCaseboard)
		return
	}
	sub := s.caseboard.Subscribe()
	defer s.caseboard.Unsubscribe(sub.ID)
	streamMessages(w, r, sub)
}

// handleAlertStream serves the alert stream the same way, minus the
// initial snapshot (the alert stream has none, §4.5).
func (s *Server) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	if s.alertStream == nil {
		writeError(w, http.StatusNotImplemented, errNoAlertStream)
		return
	}
	sub := s.alertStream.Subscribe()
	defer s.alertStream.Unsubscribe(sub.ID)
	streamMessages(w, r, sub)
}

func streamMessages(w http.ResponseWriter, r *http.Request, sub *fanout.Subscriber) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Kind, data)
			flusher.Flush()
		case <-sub.Done():
			return
		case <-r.Context().Done():
			return
		}
	}
}
