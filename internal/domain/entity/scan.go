package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ScanState стадия сканирования
type ScanState string

const (
	ScanAnalyzing ScanState = "analyzing" // ждём ответ внешнего советника
	ScanDone      ScanState = "done"      // результат окончательный
)

// LocalTarget получатель результата в локальном окне
const LocalTarget int64 = 0

// Scan одно сканирование: анализ, сортировка и куда показать результат
type Scan struct {
	ID       uuid.UUID
	Target   int64 // Telegram chat ID или LocalTarget
	Pain     PainLevel
	Analysis AnalysisResult
	Triage   TriageResult
	State    ScanState
}

// NewScan создаёт сканирование с новым идентификатором
func NewScan(target int64, pain PainLevel, analysis AnalysisResult, triage TriageResult) *Scan {
	return &Scan{
		ID:       uuid.New(),
		Target:   target,
		Pain:     pain,
		Analysis: analysis,
		Triage:   triage,
		State:    ScanDone,
	}
}

// WithAdvice возвращает копию с новым советом и финальным состоянием.
// Метка классификации не меняется.
func (s Scan) WithAdvice(advice string, source AdviceSource) *Scan {
	s.Triage.Advice = advice
	s.Triage.Source = source
	s.State = ScanDone
	return &s
}

// Findings текстовая сводка для внешнего советника
func (s Scan) Findings() string {
	return fmt.Sprintf(
		"Pain level: %d/10\nRedness: %.2f%%\nBruise detected: %t\nSwelling estimate: %.4f\nGive ONLY simple first-aid steps.",
		s.Pain, s.Analysis.Redness*100, s.Analysis.BruiseDetected, s.Analysis.SwellingFraction,
	)
}

// Report текст для вывода пользователю
func (s Scan) Report() string {
	var b strings.Builder
	b.WriteString("=== Scan Report ===\n")
	fmt.Fprintf(&b, "Pain level: %d/10\n", s.Pain)
	fmt.Fprintf(&b, "Redness: %.2f%%\n", s.Analysis.Redness*100)
	fmt.Fprintf(&b, "Bruise detected: %t\n", s.Analysis.BruiseDetected)
	fmt.Fprintf(&b, "Swelling estimate: %.4f\n", s.Analysis.SwellingFraction)
	fmt.Fprintf(&b, "Assessment: %s\n", s.Triage.Label)
	if s.State == ScanAnalyzing {
		b.WriteString("\n⏳ AI analyzing injury...")
		return b.String()
	}
	fmt.Fprintf(&b, "\nAdvice:\n%s", s.Triage.Advice)
	return b.String()
}
