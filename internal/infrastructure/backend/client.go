package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

// Sentinel errors for deterministic HTTP mapping upstream.
var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrNotFound     = errors.New("backend resource not found")
	ErrRejected     = errors.New("backend rejected request")
	ErrUnavailable  = errors.New("backend unavailable")
)

// Client is a thin wrapper over the remote LINC REST backend. It builds
// query strings, forwards bearer tokens untouched and decodes JSON; all
// business logic lives on the other side.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds Client.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}
}

// IssueReportResult is the backend's acknowledgement of a submitted
// issue report.
type IssueReportResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SubmitIssueReport forwards the assembled report payload verbatim.
func (c *Client) SubmitIssueReport(ctx context.Context, bearer string, payload any) (*IssueReportResult, error) {
	var result IssueReportResult
	if err := c.doJSON(ctx, http.MethodPost, "/issues/report", nil, payload, bearer, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyResult carries the backend's biometric matching verdict. Scoring
// happens entirely server-side.
type VerifyResult struct {
	Matched  bool    `json:"matched"`
	Score    float64 `json:"score"`
	PersonID string  `json:"person_id"`
}

// VerifyFingerprint forwards an opaque template blob for matching.
func (c *Client) VerifyFingerprint(ctx context.Context, bearer, personID, template string) (*VerifyResult, error) {
	payload := map[string]string{"person_id": personID, "template": template}
	var result VerifyResult
	if err := c.doJSON(ctx, http.MethodPost, "/biometrics/verify", nil, payload, bearer, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Forward relays an arbitrary request for the passthrough proxy and
// returns the raw response. The caller owns the body.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body io.Reader, bearer, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	setBearer(req, bearer)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, bearer string, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setBearer(req, bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("backend request failed", zap.String("path", path), zap.Error(err))
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

func setBearer(req *http.Request, bearer string) {
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 400 && code < 500:
		return ErrRejected
	default:
		return ErrUnavailable
	}
}
