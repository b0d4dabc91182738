package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-showcase/pkg/showcase"
	"github.com/tendant/simple-showcase/pkg/showcase/chat"
)

// ChatHandler relays chat messages to the assistant upstream and serves
// usage statistics.
type ChatHandler struct {
	service  showcase.Service
	streamer chat.Streamer
}

// NewChatHandler creates a new chat handler. The streamer may be nil,
// in which case the chat endpoint reports unavailable.
func NewChatHandler(service showcase.Service, streamer chat.Streamer) *ChatHandler {
	return &ChatHandler{
		service:  service,
		streamer: streamer,
	}
}

// Chat records the interaction and streams the assistant reply back as
// server-sent events: one {"delta": "..."} event per token, then
// {"done": true}.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.StreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	if h.streamer == nil {
		http.Error(w, "Chat assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Count the interaction before relaying; counters must move even if
	// the upstream stream fails midway.
	if err := h.service.RecordChatInteraction(r.Context(), req.Message); err != nil {
		slog.Warn("Failed to record chat interaction", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(v interface{}) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := h.streamer.Stream(r.Context(), req, func(delta string) error {
		return writeEvent(map[string]string{"delta": delta})
	})
	if err != nil {
		// Headers are already sent; surface the failure in-stream.
		slog.Error("Chat stream failed", "error", err)
		_ = writeEvent(map[string]string{"error": "assistant unavailable"})
		return
	}

	_ = writeEvent(map[string]bool{"done": true})
}

// ChatStats returns the live usage statistics
func (h *ChatHandler) ChatStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.CurrentStatistics(r.Context())
	if err != nil {
		slog.Error("Failed to compute statistics", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, stats)
}

// Health reports service liveness
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
