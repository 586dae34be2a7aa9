package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestScan() *Scan {
	return NewScan(42, 6,
		AnalysisResult{Redness: 0.1234, BruiseDetected: true, SwellingFraction: 0.05},
		TriageResult{Label: ClassBruise, Advice: "ice", Source: SourceLocal},
	)
}

func TestScan_Report(t *testing.T) {
	s := newTestScan()
	report := s.Report()

	require.Contains(t, report, "Pain level: 6/10")
	require.Contains(t, report, "Redness: 12.34%")
	require.Contains(t, report, "Bruise detected: true")
	require.Contains(t, report, "Swelling estimate: 0.0500")
	require.Contains(t, report, "Assessment: "+string(ClassBruise))
	require.Contains(t, report, "Advice:\nice")
}

func TestScan_ReportWhileAnalyzing(t *testing.T) {
	s := newTestScan()
	s.State = ScanAnalyzing

	report := s.Report()
	require.Contains(t, report, "analyzing")
	require.NotContains(t, report, "Advice:")
}

func TestScan_WithAdviceKeepsLabel(t *testing.T) {
	s := newTestScan()
	s.State = ScanAnalyzing

	updated := s.WithAdvice("apply a cold pack", SourceAdvisory)
	require.Equal(t, s.ID, updated.ID)
	require.Equal(t, ClassBruise, updated.Triage.Label)
	require.Equal(t, "apply a cold pack", updated.Triage.Advice)
	require.Equal(t, SourceAdvisory, updated.Triage.Source)
	require.Equal(t, ScanDone, updated.State)

	// исходное сканирование не меняется
	require.Equal(t, "ice", s.Triage.Advice)
	require.Equal(t, ScanAnalyzing, s.State)
}

func TestScan_Findings(t *testing.T) {
	s := newTestScan()
	f := s.Findings()
	require.Contains(t, f, "Pain level: 6/10")
	require.Contains(t, f, "Redness: 12.34%")
	require.Contains(t, f, "first-aid")
}
