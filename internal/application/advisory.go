package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// AdviceConstraint ограничение, которое получает внешний советник
const AdviceConstraint = "Provide ONLY simple first-aid triage. No diagnosis."

// DefaultAdvisoryTimeout верхняя граница одного запроса к советнику
const DefaultAdvisoryTimeout = 30 * time.Second

// AdvisoryService уточняет текст совета через внешний сервис.
// Метка классификации всегда остаётся локальной.
type AdvisoryService struct {
	advisor port.Advisor
	timeout time.Duration
	logger  *slog.Logger
}

// NewAdvisoryService создаёт сервис; advisor может быть nil, тогда уточнение выключено
func NewAdvisoryService(advisor port.Advisor, timeout time.Duration, logger *slog.Logger) *AdvisoryService {
	if timeout <= 0 {
		timeout = DefaultAdvisoryTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryService{advisor: advisor, timeout: timeout, logger: logger}
}

// Enabled сообщает, настроен ли внешний советник
func (s *AdvisoryService) Enabled() bool {
	return s != nil && s.advisor != nil
}

// Refine запрашивает совет для сканирования. Ошибки не возвращаются:
// при сбое совет заменяется описанием сбоя и локальной рекомендацией.
func (s *AdvisoryService) Refine(ctx context.Context, scan entity.Scan) *entity.Scan {
	advice, err := s.advise(ctx, scan)
	if err != nil {
		s.logger.Warn("advisory request failed", "scan_id", scan.ID, "error", err)
		return scan.WithAdvice(failureAdvice(err, scan.Triage.Advice), entity.SourceFailure)
	}

	s.logger.Debug("advisory response received", "scan_id", scan.ID, "chars", len(advice))
	return scan.WithAdvice(advice, entity.SourceAdvisory)
}

func (s *AdvisoryService) advise(ctx context.Context, scan entity.Scan) (advice string, err error) {
	if !s.Enabled() {
		return "", entity.ErrAdvisorNotConfigured
	}

	// Внешний клиент может паниковать на неожиданном ответе.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("advisory call panicked: %v", r)
		}
	}()

	img, err := scan.Analysis.Preview.PNG()
	if err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	advice, err = s.advisor.Advise(ctx, entity.AdviceRequest{
		Image:        img,
		Instructions: scan.Findings(),
		Constraint:   AdviceConstraint,
	})
	if err != nil {
		return "", err
	}

	advice = strings.TrimSpace(advice)
	if advice == "" {
		return "", entity.ErrEmptyAdvice
	}
	return advice, nil
}

func failureAdvice(err error, local string) string {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "request timed out"
	}
	return fmt.Sprintf("Advisory unavailable: %s\n\n%s", reason, local)
}
