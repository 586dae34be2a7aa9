//go:build !gocv
// +build !gocv

package camera

import (
	"errors"

	"opd-scanner/internal/domain/entity"
)

// Webcam заглушка без OpenCV
type Webcam struct{}

// Open возвращает ошибку, если сборка без тега gocv.
func Open(_ int, _ bool) (*Webcam, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

// Read возвращает ErrCameraNotReady
func (w *Webcam) Read() (entity.Frame, error) {
	return entity.Frame{}, entity.ErrCameraNotReady
}

// Close ничего не делает
func (w *Webcam) Close() error {
	return nil
}
