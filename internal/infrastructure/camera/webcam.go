//go:build gocv
// +build gocv

package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// Webcam источник кадров на gocv.VideoCapture
type Webcam struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
	mirror  bool
}

// Open открывает устройство захвата. mirror отражает кадр по горизонтали,
// как в зеркале.
func Open(device int, mirror bool) (*Webcam, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("open camera %d: device is not available", device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, 640)
	capture.Set(gocv.VideoCaptureFrameHeight, 480)

	return &Webcam{
		capture: capture,
		frame:   gocv.NewMat(),
		mirror:  mirror,
	}, nil
}

// Read читает очередной кадр
func (w *Webcam) Read() (entity.Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return entity.Frame{}, entity.ErrCameraNotReady
	}
	if ok := w.capture.Read(&w.frame); !ok || w.frame.Empty() {
		return entity.Frame{}, entity.ErrCameraNotReady
	}

	src := w.frame
	if w.mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(w.frame, &flipped, 1)
		src = flipped
	}

	if src.Type() != gocv.MatTypeCV8UC3 {
		return entity.Frame{}, fmt.Errorf("%w: unsupported pixel format", entity.ErrInvalidFrame)
	}

	frame, err := entity.NewFrame(src.Cols(), src.Rows(), src.ToBytes())
	if err != nil {
		return entity.Frame{}, err
	}
	frame.CapturedAt = time.Now()
	return frame, nil
}

// Close освобождает устройство
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil
	}
	err := w.capture.Close()
	w.capture = nil
	w.frame.Close()
	return err
}

// Проверка реализации интерфейса
var _ port.FrameSource = (*Webcam)(nil)
