// Package sse serves the broadcast coordinator's signals as a Server-Sent Events stream.
package sse

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/teamboard/internal/broadcast"
)

const (
	// RetryMillis is the reconnect delay advertised to clients
	RetryMillis = 3000

	// DefaultKeepalive is the time between keepalive comments
	DefaultKeepalive = 15 * time.Second

	// ConnectedEvent is the first event on every stream
	ConnectedEvent = "connected"

	// DefaultWriteTimeout bounds each write to a client
	DefaultWriteTimeout = 10 * time.Second
)

// Handler streams topic signals to each connected client
type Handler struct {
	coordinator  *broadcast.Coordinator
	keepalive    time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewHandler creates an SSE handler. A non-positive keepalive uses DefaultKeepalive.
func NewHandler(coordinator *broadcast.Coordinator, keepalive time.Duration, logger *slog.Logger) *Handler {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &Handler{
		coordinator:  coordinator,
		keepalive:    keepalive,
		writeTimeout: DefaultWriteTimeout,
		logger:       logger.With(slog.String("component", "sse")),
	}
}

// ServeHTTP handles GET /api/v1/events
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Check if SSE is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	rc := http.NewResponseController(w)

	connID := broadcast.ConnID(uuid.NewString())
	sub, err := h.coordinator.Subscribe(connID)
	if err != nil {
		h.logger.Warn("subscribe failed", slog.String("error", err.Error()))
		http.Error(w, "Event stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer h.coordinator.Unsubscribe(connID)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	hello := append(formatRetry(RetryMillis), formatSSEMessage(ConnectedEvent, `{"id":"`+string(connID)+`"}`)...)
	if err := h.send(w, rc, hello); err != nil {
		h.logger.Debug("stream write failed", slog.String("conn_id", string(connID)), slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case topic, ok := <-sub.Signals():
			if !ok {
				// Coordinator closed the subscription
				return
			}
			if err := h.send(w, rc, formatSSEMessage(topic.EventName(), "")); err != nil {
				h.logger.Debug("stream write failed", slog.String("conn_id", string(connID)), slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			if err := h.send(w, rc, []byte(": keepalive\n\n")); err != nil {
				h.logger.Debug("stream write failed", slog.String("conn_id", string(connID)), slog.String("error", err.Error()))
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// send writes and flushes b under a fresh write deadline so a stalled client ends the stream
func (h *Handler) send(w http.ResponseWriter, rc *http.ResponseController, b []byte) error {
	if err := rc.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return rc.Flush()
}

func formatRetry(millis int) []byte {
	return []byte("retry: " + strconv.Itoa(millis) + "\n\n")
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
