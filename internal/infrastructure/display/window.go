//go:build gocv
// +build gocv

package display

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// PreviewHold сколько держать превью последнего сканирования поверх потока
const PreviewHold = 3 * time.Second

var (
	green = color.RGBA{G: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Window окно HighGUI с живым потоком. Методы View вызываются из цикла
// сессии, он же должен быть владельцем потока ОС, где создано окно.
type Window struct {
	window  *gocv.Window
	actions chan Action
	keys    keyState

	preview     *entity.Scan
	previewTill time.Time
	status      string
}

// NewWindow открывает окно предпросмотра
func NewWindow(title string) (*Window, error) {
	w := gocv.NewWindow(title)
	if w == nil {
		return nil, fmt.Errorf("open window %q", title)
	}
	return &Window{
		window:  w,
		actions: make(chan Action, 8),
	}, nil
}

// Actions команды, набранные с клавиатуры
func (w *Window) Actions() <-chan Action {
	return w.actions
}

func (w *Window) ShowFrame(frame entity.Frame) {
	if w.preview != nil && time.Now().Before(w.previewTill) {
		w.render(w.preview.Analysis.Preview, w.preview.Analysis.Regions)
	} else {
		w.preview = nil
		w.render(frame, nil)
	}
	w.pollKeys()
}

func (w *Window) ShowReport(scan entity.Scan) {
	if scan.Target != entity.LocalTarget {
		return
	}
	w.preview = &scan
	w.previewTill = time.Now().Add(PreviewHold)
	w.status = fmt.Sprintf("%s | redness %.1f%%", scan.Triage.Label, scan.Analysis.Redness*100)
	if scan.State == entity.ScanAnalyzing {
		w.status += " | AI analyzing..."
	}
}

func (w *Window) Notify(target int64, msg string) {
	if target == entity.LocalTarget {
		w.status = msg
	}
}

// Close закрывает окно
func (w *Window) Close() error {
	return w.window.Close()
}

// render рисует кадр, области синяков и строку состояния.
func (w *Window) render(frame entity.Frame, regions []entity.Region) {
	if frame.Validate() != nil {
		return
	}
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return
	}
	defer mat.Close()

	// Рисуем на копии: данные кадра разделяются с анализатором.
	canvas := mat.Clone()
	defer canvas.Close()

	drawRegions(&canvas, regions)

	line := fmt.Sprintf("pain %d/10  [0-9,m] pain  [s] scan  [q] quit", w.keys.pain)
	gocv.PutText(&canvas, line, image.Pt(10, 20), gocv.FontHersheySimplex, 0.5, white, 1)
	if w.status != "" {
		gocv.PutText(&canvas, w.status, image.Pt(10, frame.Height-12), gocv.FontHersheySimplex, 0.5, white, 1)
	}

	w.window.IMShow(canvas)
}

// drawRegions обводит области синяков и отмечает их центры
func drawRegions(canvas *gocv.Mat, regions []entity.Region) {
	for _, r := range regions {
		gocv.Rectangle(canvas, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height), green, 2)
		x, y := r.Center()
		gocv.Circle(canvas, image.Pt(x, y), 4, green, -1)
	}
}

func (w *Window) pollKeys() {
	key := w.window.WaitKey(1)
	if key < 0 {
		return
	}
	action, ok := w.keys.handleKey(key)
	if !ok {
		return
	}
	select {
	case w.actions <- action:
	default:
		w.status = "busy, try again"
	}
}

var _ port.View = (*Window)(nil)
