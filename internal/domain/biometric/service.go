package biometric

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/backend"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/deviceagent"
)

// Service-level sentinel errors.
var (
	ErrAgentUnavailable = errors.New("fingerprint agent unavailable")
	ErrCaptureFailed    = errors.New("fingerprint capture failed")
	ErrVerifyFailed     = errors.New("fingerprint verification failed")
)

// Agent is the slice of the device-agent client the service needs.
type Agent interface {
	Status(ctx context.Context) (*deviceagent.AgentStatus, error)
	Capture(ctx context.Context) (string, error)
}

// Verifier matches a captured template against backend records.
type Verifier interface {
	VerifyFingerprint(ctx context.Context, bearer, personID, template string) (*backend.VerifyResult, error)
}

// Service orchestrates the local device agent and the backend matcher.
// The template blob is opaque to the gateway; it flows from the scanner
// straight through to the backend.
type Service struct {
	agent    Agent
	verifier Verifier
	logger   *zap.Logger
}

// NewService builds Service.
func NewService(agent Agent, verifier Verifier, logger *zap.Logger) *Service {
	return &Service{agent: agent, verifier: verifier, logger: logger}
}

// AgentStatus probes the workstation agent. An unreachable agent is a
// normal condition on kiosks without scanners, so it maps to a typed
// error rather than a transport failure.
func (s *Service) AgentStatus(ctx context.Context) (*deviceagent.AgentStatus, error) {
	status, err := s.agent.Status(ctx)
	if err != nil {
		return nil, ErrAgentUnavailable
	}
	return status, nil
}

// Capture runs one scanner capture and returns the template blob.
func (s *Service) Capture(ctx context.Context) (string, error) {
	template, err := s.agent.Capture(ctx)
	if err != nil {
		s.logger.Warn("fingerprint capture failed", zap.Error(err))
		switch {
		case errors.Is(err, deviceagent.ErrAgentUnavailable):
			return "", ErrAgentUnavailable
		default:
			return "", ErrCaptureFailed
		}
	}
	return template, nil
}

// VerifyResult is the outcome of a capture-and-verify round trip.
type VerifyResult struct {
	Matched  bool    `json:"matched"`
	Score    float64 `json:"score"`
	PersonID string  `json:"person_id,omitempty"`
}

// Verify captures a fresh template and asks the backend to match it
// against the given person. The bearer token is forwarded verbatim so
// the backend applies its own authorization.
func (s *Service) Verify(ctx context.Context, bearer, personID string) (*VerifyResult, error) {
	template, err := s.Capture(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.verifier.VerifyFingerprint(ctx, bearer, personID, template)
	if err != nil {
		s.logger.Warn("fingerprint verification failed", zap.String("person_id", personID), zap.Error(err))
		return nil, ErrVerifyFailed
	}
	return &VerifyResult{Matched: res.Matched, Score: res.Score, PersonID: res.PersonID}, nil
}
