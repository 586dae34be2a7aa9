package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"opd-scanner/internal/domain/entity"
)

func testFrame(t *testing.T) entity.Frame {
	t.Helper()
	f, err := entity.NewFrame(2, 2, make([]byte, 12))
	require.NoError(t, err)
	return f
}

type fakeAnalyzer struct {
	result entity.AnalysisResult
	err    error
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, frame entity.Frame) (*entity.AnalysisResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	res := a.result
	res.Preview = frame
	return &res, nil
}

func (a *fakeAnalyzer) Decode(data []byte) (entity.Frame, error) {
	if len(data) == 0 {
		return entity.Frame{}, errors.New("failed to decode image")
	}
	return entity.NewFrame(2, 2, make([]byte, 12))
}

// staticAdvisor отвечает сразу
type staticAdvisor struct {
	mu     sync.Mutex
	reply  string
	err    error
	panics bool
	last   entity.AdviceRequest
}

func (a *staticAdvisor) Advise(ctx context.Context, req entity.AdviceRequest) (string, error) {
	a.mu.Lock()
	a.last = req
	a.mu.Unlock()
	if a.panics {
		panic("unexpected payload")
	}
	return a.reply, a.err
}

func (a *staticAdvisor) lastRequest() entity.AdviceRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// gatedAdvisor отвечает только когда тест пришлёт ответ
type gatedAdvisor struct {
	calls chan chan string
}

func newGatedAdvisor() *gatedAdvisor {
	return &gatedAdvisor{calls: make(chan chan string, 8)}
}

func (a *gatedAdvisor) Advise(ctx context.Context, req entity.AdviceRequest) (string, error) {
	reply := make(chan string, 1)
	a.calls <- reply
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type viewEvent struct {
	scan   *entity.Scan
	target int64
	notice string
}

type fakeView struct {
	frames atomic.Int64
	events chan viewEvent
}

func newFakeView() *fakeView {
	return &fakeView{events: make(chan viewEvent, 64)}
}

func (v *fakeView) ShowFrame(frame entity.Frame) {
	v.frames.Add(1)
}

func (v *fakeView) ShowReport(scan entity.Scan) {
	v.events <- viewEvent{scan: &scan, target: scan.Target}
}

func (v *fakeView) Notify(target int64, msg string) {
	v.events <- viewEvent{target: target, notice: msg}
}

type fakeSource struct {
	mu     sync.Mutex
	frame  entity.Frame
	ready  bool
	closed bool
}

func (s *fakeSource) Read() (entity.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return entity.Frame{}, entity.ErrCameraNotReady
	}
	return s.frame, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
