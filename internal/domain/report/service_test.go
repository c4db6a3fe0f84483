package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/app/diagnostics"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/backend"
)

type fakeRepo struct {
	created []*Report
	byID    map[uuid.UUID]*Report
	pruned  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*Report{}}
}

func (f *fakeRepo) Create(_ context.Context, rpt *Report) error {
	copied := *rpt
	f.created = append(f.created, &copied)
	f.byID[rpt.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Report, error) {
	return f.byID[id], nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]Report, int, error) {
	out := make([]Report, 0, len(f.created))
	for _, r := range f.created {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return f.pruned, nil
}

type fakeForwarder struct {
	result     *backend.IssueReportResult
	err        error
	gotBearer  string
	gotPayload map[string]any
}

func (f *fakeForwarder) SubmitIssueReport(_ context.Context, bearer string, payload any) (*backend.IssueReportResult, error) {
	f.gotBearer = bearer
	if m, ok := payload.(map[string]any); ok {
		f.gotPayload = m
	}
	return f.result, f.err
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Description: "printer queue stuck on submit",
		PageURL:     "https://admin.linc.example/applications",
		BrowserInfo: "Firefox 128",
	}
}

func TestSubmitAttachesBufferSnapshot(t *testing.T) {
	buffer := diagnostics.NewLogBuffer(diagnostics.WithTimestamps(false))
	buffer.Capture(diagnostics.LevelError, "fetch failed")
	buffer.Capture(diagnostics.LevelWarn, "retrying")

	forwarder := &fakeForwarder{result: &backend.IssueReportResult{ID: "BE-77", Status: "reported"}}
	svc := NewService(newFakeRepo(), forwarder, buffer, zap.NewNop())

	rpt, err := svc.Submit(context.Background(), "token-1", nil, validRequest())
	require.NoError(t, err)
	require.Equal(t, []string{"[ERROR] fetch failed", "[WARN] retrying"}, rpt.ConsoleLogs)
	require.Equal(t, rpt.ConsoleLogs, forwarder.gotPayload["console_logs"])
	require.Equal(t, "token-1", forwarder.gotBearer)
	require.Equal(t, "BE-77", *rpt.BackendRef)
}

func TestSubmitPrefersClientSuppliedLogs(t *testing.T) {
	buffer := diagnostics.NewLogBuffer(diagnostics.WithTimestamps(false))
	buffer.Capture(diagnostics.LevelLog, "server side line")

	forwarder := &fakeForwarder{result: &backend.IssueReportResult{Status: "reported"}}
	svc := NewService(newFakeRepo(), forwarder, buffer, zap.NewNop())

	req := validRequest()
	req.ConsoleLogs = []string{"[ERROR] from the browser"}
	rpt, err := svc.Submit(context.Background(), "token", nil, req)
	require.NoError(t, err)
	require.Equal(t, []string{"[ERROR] from the browser"}, rpt.ConsoleLogs)
}

func TestSubmitCapsLogsAtBufferCapacity(t *testing.T) {
	buffer := diagnostics.NewLogBuffer(diagnostics.WithMaxEntries(5), diagnostics.WithTimestamps(false))
	forwarder := &fakeForwarder{result: &backend.IssueReportResult{Status: "reported"}}
	svc := NewService(newFakeRepo(), forwarder, buffer, zap.NewNop())

	req := validRequest()
	for i := 0; i < 20; i++ {
		req.ConsoleLogs = append(req.ConsoleLogs, fmt.Sprintf("line %d", i))
	}
	rpt, err := svc.Submit(context.Background(), "token", nil, req)
	require.NoError(t, err)
	require.Len(t, rpt.ConsoleLogs, 5)
	require.Equal(t, "line 15", rpt.ConsoleLogs[0])
	require.Equal(t, "line 19", rpt.ConsoleLogs[4])
}

func TestSubmitArchivesBackendFailure(t *testing.T) {
	repo := newFakeRepo()
	forwarder := &fakeForwarder{err: backend.ErrUnavailable}
	svc := NewService(repo, forwarder, diagnostics.NewLogBuffer(), zap.NewNop())

	_, err := svc.Submit(context.Background(), "token", nil, validRequest())
	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.Len(t, repo.created, 1)
	require.Equal(t, StatusFailed, repo.created[0].Status)
}

func TestSubmitMapsRejection(t *testing.T) {
	forwarder := &fakeForwarder{err: backend.ErrRejected}
	svc := NewService(newFakeRepo(), forwarder, diagnostics.NewLogBuffer(), zap.NewNop())

	_, err := svc.Submit(context.Background(), "token", nil, validRequest())
	require.ErrorIs(t, err, ErrBackendRejected)
}

func TestSubmitSanitizesDescription(t *testing.T) {
	forwarder := &fakeForwarder{result: &backend.IssueReportResult{Status: "reported"}}
	svc := NewService(newFakeRepo(), forwarder, diagnostics.NewLogBuffer(), zap.NewNop())

	req := validRequest()
	req.Description = `<script>alert(1)</script>button does nothing`
	rpt, err := svc.Submit(context.Background(), "token", nil, req)
	require.NoError(t, err)
	require.Equal(t, "button does nothing", rpt.Description)
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeForwarder{}, diagnostics.NewLogBuffer(), zap.NewNop())

	req := validRequest()
	req.PageURL = "not a url"
	_, err := svc.Submit(context.Background(), "token", nil, req)
	require.Error(t, err)
}

func TestGetUnknownReport(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeForwarder{}, diagnostics.NewLogBuffer(), zap.NewNop())

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitRecordsSubmitter(t *testing.T) {
	forwarder := &fakeForwarder{result: &backend.IssueReportResult{Status: "reported"}}
	repo := newFakeRepo()
	svc := NewService(repo, forwarder, diagnostics.NewLogBuffer(), zap.NewNop())

	userID := uuid.New()
	rpt, err := svc.Submit(context.Background(), "token", &userID, validRequest())
	require.NoError(t, err)
	require.Equal(t, userID, *rpt.SubmittedBy)
	require.Len(t, repo.created, 1)
}

var _ Repository = (*fakeRepo)(nil)
