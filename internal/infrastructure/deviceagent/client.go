package deviceagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

// Sentinel errors for the capture flow.
var (
	ErrAgentUnavailable = errors.New("device agent unavailable")
	ErrCaptureFailed    = errors.New("fingerprint capture failed")
	ErrCaptureTimeout   = errors.New("fingerprint capture timed out")
)

// Client talks to the fingerprint device agent running on the
// operator's workstation. The agent owns the scanner; this client only
// starts captures and polls for the resulting opaque template blob.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

// NewClient builds Client.
func NewClient(cfg config.DeviceAgentConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         &http.Client{Timeout: 10 * time.Second},
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		logger:       logger,
	}
}

// AgentStatus reports agent reachability and scanner presence.
type AgentStatus struct {
	Connected bool   `json:"connected"`
	Device    string `json:"device,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Status probes the agent.
func (c *Client) Status(ctx context.Context) (*AgentStatus, error) {
	var status AgentStatus
	if err := c.getJSON(ctx, "/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

type captureTicket struct {
	CaptureID string `json:"capture_id"`
}

type captureState struct {
	Status   string `json:"status"`
	Template string `json:"template,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Capture starts a capture and polls until the agent produces a
// template blob, the agent reports failure, or the poll window closes.
// The returned template is opaque; matching happens in the backend.
func (c *Client) Capture(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/capture/start", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	var ticket captureTicket
	err = decodeBody(resp, &ticket)
	if err != nil {
		return "", err
	}
	if ticket.CaptureID == "" {
		return "", ErrCaptureFailed
	}

	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ErrCaptureTimeout
		case <-ticker.C:
			var state captureState
			if err := c.getJSON(ctx, "/capture/"+ticket.CaptureID, &state); err != nil {
				// One missed poll is not fatal; the window decides.
				if c.logger != nil {
					c.logger.Debug("capture poll failed", zap.Error(err))
				}
				continue
			}
			switch state.Status {
			case "complete":
				return state.Template, nil
			case "failed":
				if state.Message != "" {
					return "", fmt.Errorf("%w: %s", ErrCaptureFailed, state.Message)
				}
				return "", ErrCaptureFailed
			}
		}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrAgentUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode agent response: %w", err)
	}
	return nil
}
