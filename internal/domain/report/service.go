package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/app/diagnostics"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/backend"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/monitoring"
)

// Sentinel errors for deterministic HTTP mapping.
var (
	ErrNotFound           = errors.New("report not found")
	ErrBackendUnavailable = errors.New("issue backend unavailable")
	ErrBackendRejected    = errors.New("issue backend rejected report")
)

// Statuses recorded in the archive.
const (
	StatusReported = "reported"
	StatusFailed   = "failed"
)

// Forwarder abstracts the backend call so tests can fake it.
type Forwarder interface {
	SubmitIssueReport(ctx context.Context, bearer string, payload any) (*backend.IssueReportResult, error)
}

// Service orchestrates the issue-report pipeline: sanitize, attach the
// captured console log snapshot, forward to the backend, archive.
type Service struct {
	repo      Repository
	forwarder Forwarder
	buffer    *diagnostics.LogBuffer
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewService wires a Service.
func NewService(repo Repository, forwarder Forwarder, buffer *diagnostics.LogBuffer, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		forwarder: forwarder,
		buffer:    buffer,
		validator: validator.New(),
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
	}
}

// Submit runs the pipeline. The report is archived whether or not the
// backend accepted it, so operators can replay failures.
func (s *Service) Submit(ctx context.Context, bearer string, submitterID *uuid.UUID, req SubmitRequest) (*Report, error) {
	req.Description = strings.TrimSpace(s.sanitizer.Sanitize(req.Description))
	req.BrowserInfo = strings.TrimSpace(s.sanitizer.Sanitize(req.BrowserInfo))
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	logs := req.ConsoleLogs
	if len(logs) == 0 && s.buffer != nil {
		logs = s.buffer.GetAll()
	}
	// The wire contract caps console_logs at the buffer capacity.
	if s.buffer != nil {
		if capacity := s.buffer.Stats().Capacity; len(logs) > capacity {
			logs = logs[len(logs)-capacity:]
		}
	}
	if logs == nil {
		logs = []string{}
	}

	now := time.Now().UTC()
	rpt := &Report{
		ID:          uuid.New(),
		Description: req.Description,
		PageURL:     req.PageURL,
		BrowserInfo: req.BrowserInfo,
		ConsoleLogs: logs,
		Status:      StatusReported,
		SubmittedBy: submitterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Screenshot != "" {
		rpt.Screenshot = &req.Screenshot
	}

	payload := map[string]any{
		"description":  rpt.Description,
		"page_url":     rpt.PageURL,
		"browser_info": rpt.BrowserInfo,
		"screenshot":   req.Screenshot,
		"console_logs": logs,
	}

	result, ferr := s.forwarder.SubmitIssueReport(ctx, bearer, payload)
	if ferr != nil {
		rpt.Status = StatusFailed
		monitoring.ReportSubmitted(StatusFailed)
		if err := s.repo.Create(ctx, rpt); err != nil && s.logger != nil {
			s.logger.Error("archive failed report", zap.Error(err))
		}
		switch {
		case errors.Is(ferr, backend.ErrRejected):
			return nil, ErrBackendRejected
		case errors.Is(ferr, backend.ErrUnauthorized):
			return nil, ferr
		default:
			return nil, ErrBackendUnavailable
		}
	}

	if result != nil {
		if result.ID != "" {
			ref := result.ID
			rpt.BackendRef = &ref
		}
		if result.Status != "" {
			rpt.Status = result.Status
		}
	}
	if err := s.repo.Create(ctx, rpt); err != nil {
		// The backend already has the report; losing the archive row is
		// not worth failing the submission over.
		if s.logger != nil {
			s.logger.Error("archive submitted report", zap.Error(err))
		}
	}
	monitoring.ReportSubmitted(rpt.Status)
	return rpt, nil
}

// Get fetches one archived report.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	rpt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt == nil {
		return nil, ErrNotFound
	}
	return rpt, nil
}

// List returns paginated archive entries.
func (s *Service) List(ctx context.Context, filter Filter) ([]Report, int, error) {
	return s.repo.List(ctx, filter)
}

// Prune drops archive rows older than retention. Jobs call this.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
}
