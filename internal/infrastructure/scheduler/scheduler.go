package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/app/diagnostics"
	"github.com/schuttebj/linc-print-gateway/internal/config"
	"github.com/schuttebj/linc-print-gateway/internal/domain/biometric"
	"github.com/schuttebj/linc-print-gateway/internal/domain/report"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/monitoring"
)

// Scheduler owns the background cron jobs: pruning the report archive
// and probing the fingerprint agent for the health gauge.
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.JobsConfig
	reports *report.Service
	agent   biometric.Agent
	buffer  *diagnostics.LogBuffer
	logger  *zap.Logger
}

// New builds a Scheduler. Jobs are registered but not started.
func New(cfg config.JobsConfig, reports *report.Service, agent biometric.Agent, buffer *diagnostics.LogBuffer, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		cfg:     cfg,
		reports: reports,
		agent:   agent,
		buffer:  buffer,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(cfg.PruneSpec, s.pruneReports); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.AgentProbeSpec, s.probeAgent); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("prune_spec", s.cfg.PruneSpec),
		zap.String("agent_probe_spec", s.cfg.AgentProbeSpec),
	)
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneReports() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.reports.Prune(ctx, s.cfg.ReportRetention)
	if err != nil {
		s.logger.Error("report archive prune failed", zap.Error(err))
		return
	}
	s.logger.Info("report archive pruned", zap.Int64("removed", removed))
}

func (s *Scheduler) probeAgent() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := s.agent.Status(ctx)
	up := err == nil && status != nil && status.Connected
	monitoring.SetAgentUp(up)
	if s.buffer != nil && !up {
		s.buffer.Capture(diagnostics.LevelWarn, "fingerprint agent probe failed")
	}
}
