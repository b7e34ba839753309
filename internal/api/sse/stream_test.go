package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamboard/internal/broadcast"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "signal with empty data",
			eventName: "teams:updated",
			data:      "",
			expected:  "event: teams:updated\ndata: \n\n",
		},
		{
			name:      "single line data",
			eventName: "connected",
			data:      `{"id":"x"}`,
			expected:  "event: connected\ndata: {\"id\":\"x\"}\n\n",
		},
		{
			name:      "multi-line data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2\n",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

// readEvent reads lines up to the next blank line
func readEvent(t *testing.T, r *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestStreamDeliversSignals(t *testing.T) {
	coord := broadcast.NewCoordinator(testutil.NopLogger())
	srv := httptest.NewServer(NewHandler(coord, time.Hour, testutil.NopLogger()))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, []string{"retry: 3000"}, readEvent(t, reader))

	connected := readEvent(t, reader)
	require.Len(t, connected, 2)
	assert.Equal(t, "event: connected", connected[0])

	require.Eventually(t, func() bool { return coord.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	coord.Publish(model.TopicTeams)
	coord.Publish(model.TopicLeaderboard)

	assert.Equal(t, []string{"event: teams:updated", "data: "}, readEvent(t, reader))
	assert.Equal(t, []string{"event: leaderboard:updated", "data: "}, readEvent(t, reader))

	cancel()
	require.Eventually(t, func() bool { return coord.SubscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStreamKeepalive(t *testing.T) {
	coord := broadcast.NewCoordinator(testutil.NopLogger())
	srv := httptest.NewServer(NewHandler(coord, 20*time.Millisecond, testutil.NopLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent(t, reader) // retry
	readEvent(t, reader) // connected
	assert.Equal(t, []string{": keepalive"}, readEvent(t, reader))
}

func TestStreamEndsWhenCoordinatorCloses(t *testing.T) {
	coord := broadcast.NewCoordinator(testutil.NopLogger())
	srv := httptest.NewServer(NewHandler(coord, time.Hour, testutil.NopLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent(t, reader)
	readEvent(t, reader)

	coord.Close()

	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}

func TestStreamRejectedAfterClose(t *testing.T) {
	coord := broadcast.NewCoordinator(testutil.NopLogger())
	coord.Close()

	rec := httptest.NewRecorder()
	NewHandler(coord, time.Hour, testutil.NopLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// deadlineWriter records write deadlines and fails writes once failAfter is reached
type deadlineWriter struct {
	mu        sync.Mutex
	header    http.Header
	deadlines []time.Time
	writes    int
	failAfter int
}

func (w *deadlineWriter) Header() http.Header { return w.header }

func (w *deadlineWriter) WriteHeader(int) {}

func (w *deadlineWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	if w.failAfter > 0 && w.writes >= w.failAfter {
		return 0, os.ErrDeadlineExceeded
	}
	return len(b), nil
}

func (w *deadlineWriter) Flush() {}

func (w *deadlineWriter) SetWriteDeadline(t time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deadlines = append(w.deadlines, t)
	return nil
}

func TestStreamBoundsEachWrite(t *testing.T) {
	coord := broadcast.NewCoordinator(testutil.NopLogger())
	h := NewHandler(coord, time.Hour, testutil.NopLogger())
	h.writeTimeout = 50 * time.Millisecond

	w := &deadlineWriter{header: http.Header{}, failAfter: 2}
	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	require.Eventually(t, func() bool { return coord.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	coord.Publish(model.TopicTeams)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream kept running after a failed write")
	}
	assert.Equal(t, 0, coord.SubscriberCount())

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.deadlines, 2)
	for _, d := range w.deadlines {
		assert.False(t, d.IsZero())
		assert.False(t, d.Before(start.Add(h.writeTimeout)))
		assert.True(t, d.Before(time.Now().Add(h.writeTimeout)))
	}
}
