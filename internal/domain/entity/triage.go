package entity

import "fmt"

// Classification метка итоговой сортировки
type Classification string

const (
	ClassBruise        Classification = "bruise / possible soft tissue injury"
	ClassRedness       Classification = "redness / possible inflammation"
	ClassHiddenPain    Classification = "no visible injury, high reported pain"
	ClassMildOrUnclear Classification = "mild or unclear visual signs"
)

// PainLevel самооценка боли пользователем
type PainLevel int

const (
	MinPain PainLevel = 0
	MaxPain PainLevel = 10
)

// NewPainLevel проверяет диапазон 0..10
func NewPainLevel(v int) (PainLevel, error) {
	p := PainLevel(v)
	if p < MinPain || p > MaxPain {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPain, v)
	}
	return p, nil
}

// AdviceSource откуда взят текст совета
type AdviceSource string

const (
	SourceLocal    AdviceSource = "local"    // локальные правила
	SourceAdvisory AdviceSource = "advisory" // внешний сервис
	SourceFailure  AdviceSource = "failure"  // внешний сервис не ответил
)

// TriageInput вход классификатора
type TriageInput struct {
	Analysis AnalysisResult
	Pain     PainLevel
}

// TriageResult метка и текст совета
type TriageResult struct {
	Label  Classification
	Advice string
	Source AdviceSource
}

// AdviceRequest запрос к внешнему советнику
type AdviceRequest struct {
	Image        []byte // превью в PNG
	Instructions string // сводка находок
	Constraint   string // ограничение ответа
}
