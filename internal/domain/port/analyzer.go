package port

import (
	"context"

	"opd-scanner/internal/domain/entity"
)

// FrameAnalyzer интерфейс анализатора кадров
type FrameAnalyzer interface {
	// Analyze считает красноту, синяки и отёк на кадре; кадр не изменяется
	Analyze(ctx context.Context, frame entity.Frame) (*entity.AnalysisResult, error)

	// Decode превращает JPEG/PNG в кадр
	Decode(data []byte) (entity.Frame, error)
}
