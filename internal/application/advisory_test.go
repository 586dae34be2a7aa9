package app

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"opd-scanner/internal/domain/entity"
)

func analyzingScan(t *testing.T) entity.Scan {
	t.Helper()
	analysis := entity.AnalysisResult{Redness: 0.2, Preview: testFrame(t)}
	scan := entity.NewScan(5, 3, analysis, Classify(entity.TriageInput{Analysis: analysis, Pain: 3}))
	scan.State = entity.ScanAnalyzing
	return *scan
}

func TestAdvisoryService_RefineReplacesAdvice(t *testing.T) {
	advisor := &staticAdvisor{reply: "  Rest and apply a cold compress.  "}
	svc := NewAdvisoryService(advisor, time.Second, nil)
	scan := analyzingScan(t)

	refined := svc.Refine(context.Background(), scan)
	require.Equal(t, scan.ID, refined.ID)
	require.Equal(t, entity.ClassRedness, refined.Triage.Label)
	require.Equal(t, "Rest and apply a cold compress.", refined.Triage.Advice)
	require.Equal(t, entity.SourceAdvisory, refined.Triage.Source)
	require.Equal(t, entity.ScanDone, refined.State)

	req := advisor.lastRequest()
	require.Equal(t, AdviceConstraint, req.Constraint)
	require.Contains(t, req.Instructions, "Pain level: 3/10")
	_, err := png.Decode(bytes.NewReader(req.Image))
	require.NoError(t, err)
}

func TestAdvisoryService_FailureKeepsLabel(t *testing.T) {
	tests := []struct {
		name    string
		advisor *staticAdvisor
		reason  string
	}{
		{name: "transport error", advisor: &staticAdvisor{err: errors.New("connection refused")}, reason: "connection refused"},
		{name: "empty response", advisor: &staticAdvisor{reply: "   "}, reason: entity.ErrEmptyAdvice.Error()},
		{name: "panic in client", advisor: &staticAdvisor{panics: true}, reason: "panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAdvisoryService(tt.advisor, time.Second, nil)
			scan := analyzingScan(t)

			refined := svc.Refine(context.Background(), scan)
			require.Equal(t, scan.Triage.Label, refined.Triage.Label)
			require.Equal(t, entity.SourceFailure, refined.Triage.Source)
			require.Contains(t, refined.Triage.Advice, "Advisory unavailable")
			require.Contains(t, refined.Triage.Advice, tt.reason)
			require.Contains(t, refined.Triage.Advice, scan.Triage.Advice)
		})
	}
}

func TestAdvisoryService_NotConfigured(t *testing.T) {
	svc := NewAdvisoryService(nil, 0, nil)
	require.False(t, svc.Enabled())

	refined := svc.Refine(context.Background(), analyzingScan(t))
	require.Equal(t, entity.SourceFailure, refined.Triage.Source)
	require.Contains(t, refined.Triage.Advice, entity.ErrAdvisorNotConfigured.Error())
}

func TestAdvisoryService_Timeout(t *testing.T) {
	advisor := newGatedAdvisor()
	svc := NewAdvisoryService(advisor, 20*time.Millisecond, nil)

	refined := svc.Refine(context.Background(), analyzingScan(t))
	require.Equal(t, entity.SourceFailure, refined.Triage.Source)
	require.Contains(t, refined.Triage.Advice, "timed out")
}
