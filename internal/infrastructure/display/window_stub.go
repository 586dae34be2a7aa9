//go:build !gocv
// +build !gocv

package display

import (
	"errors"

	"opd-scanner/internal/domain/entity"
)

// Window заглушка окна без OpenCV
type Window struct{}

// NewWindow возвращает ошибку, если сборка без тега gocv.
func NewWindow(_ string) (*Window, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

func (w *Window) Actions() <-chan Action          { return nil }
func (w *Window) ShowFrame(frame entity.Frame)    {}
func (w *Window) ShowReport(scan entity.Scan)     {}
func (w *Window) Notify(target int64, msg string) {}
func (w *Window) Close() error                    { return nil }
