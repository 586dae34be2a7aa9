package app

import (
	"context"
	"errors"
	"fmt"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// ScanService анализирует кадр и применяет локальную сортировку.
type ScanService struct {
	analyzer port.FrameAnalyzer
	advisory *AdvisoryService
}

// NewScanService создаёт сервис сканирования
func NewScanService(analyzer port.FrameAnalyzer, advisory *AdvisoryService) *ScanService {
	return &ScanService{
		analyzer: analyzer,
		advisory: advisory,
	}
}

// Advisory возвращает сервис внешнего советника
func (s *ScanService) Advisory() *AdvisoryService {
	return s.advisory
}

// Scan анализирует кадр. Если советник настроен, сканирование
// возвращается в состоянии ScanAnalyzing с локальным советом.
func (s *ScanService) Scan(ctx context.Context, target int64, frame entity.Frame, pain entity.PainLevel) (*entity.Scan, error) {
	if s.analyzer == nil {
		return nil, errors.New("analyzer is not configured")
	}
	if frame.Empty() {
		return nil, entity.ErrCameraNotReady
	}

	analysis, err := s.analyzer.Analyze(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("analyze frame: %w", err)
	}

	triage := Classify(entity.TriageInput{Analysis: *analysis, Pain: pain})
	scan := entity.NewScan(target, pain, *analysis, triage)
	if s.advisory.Enabled() {
		scan.State = entity.ScanAnalyzing
	}

	return scan, nil
}

// Decode превращает JPEG/PNG в кадр
func (s *ScanService) Decode(data []byte) (entity.Frame, error) {
	if s.analyzer == nil {
		return entity.Frame{}, errors.New("analyzer is not configured")
	}
	if len(data) == 0 {
		return entity.Frame{}, fmt.Errorf("%w: empty upload", entity.ErrInvalidImage)
	}

	frame, err := s.analyzer.Decode(data)
	if err != nil {
		return entity.Frame{}, fmt.Errorf("%w: %w", entity.ErrInvalidImage, err)
	}
	return frame, nil
}

// ScanImage декодирует JPEG/PNG и сканирует полученный кадр
func (s *ScanService) ScanImage(ctx context.Context, target int64, data []byte, pain entity.PainLevel) (*entity.Scan, error) {
	frame, err := s.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, target, frame, pain)
}

// ScanAndRefine сканирует изображение и синхронно дожидается совета
func (s *ScanService) ScanAndRefine(ctx context.Context, target int64, data []byte, pain entity.PainLevel) (*entity.Scan, error) {
	scan, err := s.ScanImage(ctx, target, data, pain)
	if err != nil {
		return nil, err
	}
	if scan.State != entity.ScanAnalyzing {
		return scan, nil
	}
	return s.advisory.Refine(ctx, *scan), nil
}
