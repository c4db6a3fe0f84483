package deviceagent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

func newTestAgent(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DeviceAgentConfig{
		BaseURL:      srv.URL,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  500 * time.Millisecond,
	}, zap.NewNop())
}

func TestStatus(t *testing.T) {
	client := newTestAgent(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(AgentStatus{Connected: true, Device: "U.are.U 4500"})
	}))

	status, err := client.Status(context.Background())

	require.NoError(t, err)
	require.True(t, status.Connected)
	require.Equal(t, "U.are.U 4500", status.Device)
}

func TestCaptureCompletesAfterPolling(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/capture/start", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]string{"capture_id": "cap-7"})
	})
	mux.HandleFunc("/capture/cap-7", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "complete", "template": "dGVtcGxhdGU="})
	})

	client := newTestAgent(t, mux)
	template, err := client.Capture(context.Background())

	require.NoError(t, err)
	require.Equal(t, "dGVtcGxhdGU=", template)
	require.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestCaptureFailureFromAgent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/capture/start", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"capture_id": "cap-8"})
	})
	mux.HandleFunc("/capture/cap-8", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "failed", "message": "finger removed"})
	})

	client := newTestAgent(t, mux)
	_, err := client.Capture(context.Background())

	require.ErrorIs(t, err, ErrCaptureFailed)
	require.Contains(t, err.Error(), "finger removed")
}

func TestCaptureTimesOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/capture/start", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"capture_id": "cap-9"})
	})
	mux.HandleFunc("/capture/cap-9", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	})

	client := newTestAgent(t, mux)
	_, err := client.Capture(context.Background())

	require.ErrorIs(t, err, ErrCaptureTimeout)
}

func TestAgentUnreachable(t *testing.T) {
	client := NewClient(config.DeviceAgentConfig{
		BaseURL:      "http://127.0.0.1:1",
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  100 * time.Millisecond,
	}, zap.NewNop())

	_, err := client.Status(context.Background())

	require.ErrorIs(t, err, ErrAgentUnavailable)
}
