//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"opd-scanner/internal/domain/entity"
)

// ErrNoOpenCV сборка без тега gocv
var ErrNoOpenCV = errors.New("gocv build tag is not enabled")

type Analyzer struct {
	Thresholds Thresholds
}

// NewAnalyzer создаёт анализатор-заглушку (без OpenCV).
func NewAnalyzer(th Thresholds) *Analyzer {
	return &Analyzer{Thresholds: th}
}

// Analyze возвращает ошибку, если сборка без тега gocv.
func (a *Analyzer) Analyze(_ context.Context, _ entity.Frame) (*entity.AnalysisResult, error) {
	return nil, ErrNoOpenCV
}

// Decode декодирует JPEG/PNG средствами image, без OpenCV.
func (a *Analyzer) Decode(data []byte) (entity.Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return entity.Frame{}, fmt.Errorf("decode image: %w", err)
	}
	return entity.FrameFromImage(img)
}
