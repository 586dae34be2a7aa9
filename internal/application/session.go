package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// DefaultFrameInterval период обновления живого потока
const DefaultFrameInterval = 30 * time.Millisecond

const (
	msgCameraNotReady = "Camera not ready."
	msgScanFailed     = "Scan failed: %v"
)

// ErrSessionClosed сессия уже остановлена
var ErrSessionClosed = errors.New("session is closed")

// ScanRequest запрос на сканирование
type ScanRequest struct {
	Target int64            // кому показать результат
	Pain   entity.PainLevel // самооценка боли
	Frame  *entity.Frame    // nil: взять последний кадр с камеры
}

// Session владеет камерой и текущими результатами.
// Run единственная горутина, которая обращается к View.
type Session struct {
	source   port.FrameSource
	scanner  *ScanService
	view     port.View
	logger   *slog.Logger
	interval time.Duration

	requests chan ScanRequest
	results  chan AdviceOutcome
	stopped  chan struct{}

	// состояние ниже меняется только в Run
	latest  entity.Frame
	current map[int64]uuid.UUID

	tasks     sync.WaitGroup
	closeOnce sync.Once
}

// NewSession создаёт сессию. source может быть nil, если камеры нет:
// тогда сканировать можно только присланные кадры.
func NewSession(source port.FrameSource, scanner *ScanService, view port.View, logger *slog.Logger, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		source:   source,
		scanner:  scanner,
		view:     view,
		logger:   logger,
		interval: interval,
		requests: make(chan ScanRequest),
		results:  make(chan AdviceOutcome),
		stopped:  make(chan struct{}),
		current:  make(map[int64]uuid.UUID),
	}
}

// RequestScan передаёт запрос в цикл сессии
func (s *Session) RequestScan(ctx context.Context, req ScanRequest) error {
	select {
	case s.requests <- req:
		return nil
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run обновляет живой поток, обрабатывает запросы и результаты советника
// до отмены ctx.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session started", "frame_interval", s.interval, "camera", s.source != nil)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return nil

		case <-ticker.C:
			s.captureFrame()

		case req := <-s.requests:
			s.handleScan(ctx, req)

		case outcome := <-s.results:
			s.handleOutcome(outcome)
		}
	}
}

// Close дожидается фоновых запросов и освобождает камеру
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.tasks.Wait()
		if s.source != nil {
			if cerr := s.source.Close(); cerr != nil {
				err = fmt.Errorf("close camera: %w", cerr)
			}
		}
	})
	return err
}

func (s *Session) captureFrame() {
	if s.source == nil {
		return
	}

	frame, err := s.source.Read()
	if err != nil {
		s.logger.Debug("frame not available", "error", err)
		return
	}

	s.latest = frame
	s.view.ShowFrame(frame)
}

func (s *Session) handleScan(ctx context.Context, req ScanRequest) {
	frame := s.latest
	if req.Frame != nil {
		frame = *req.Frame
	}
	if frame.Empty() {
		s.view.Notify(req.Target, msgCameraNotReady)
		return
	}

	scan, err := s.scanner.Scan(ctx, req.Target, frame, req.Pain)
	if err != nil {
		s.logger.Error("scan failed", "target", req.Target, "error", err)
		s.view.Notify(req.Target, fmt.Sprintf(msgScanFailed, err))
		return
	}

	s.logger.Info("scan completed",
		"scan_id", scan.ID,
		"target", scan.Target,
		"label", scan.Triage.Label,
		"redness", scan.Analysis.Redness,
		"bruise", scan.Analysis.BruiseDetected,
		"swelling", scan.Analysis.SwellingFraction,
	)

	// Новое сканирование вытесняет ещё не завершённое для того же получателя.
	if prev, ok := s.current[req.Target]; ok {
		s.logger.Debug("scan superseded", "scan_id", prev, "by", scan.ID)
	}
	s.current[req.Target] = scan.ID
	s.view.ShowReport(*scan)

	if scan.State == entity.ScanAnalyzing {
		s.startAdvice(ctx, *scan)
	}
}

func (s *Session) startAdvice(ctx context.Context, scan entity.Scan) {
	s.tasks.Add(1)
	task := StartAdvice(ctx, s.scanner.Advisory(), scan, s.results)
	go func() {
		<-task.Done()
		s.tasks.Done()
	}()
}

func (s *Session) handleOutcome(outcome AdviceOutcome) {
	scan := outcome.Scan
	if s.current[scan.Target] != scan.ID {
		s.logger.Debug("dropping stale advice", "scan_id", scan.ID, "target", scan.Target)
		return
	}

	s.logger.Info("advice ready", "scan_id", scan.ID, "source", scan.Triage.Source)
	s.view.ShowReport(*scan)
}
