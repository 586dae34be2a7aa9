package display

import (
	"log/slog"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// Log вывод результатов в журнал, без живого потока
type Log struct {
	logger *slog.Logger
}

// NewLog создаёт журнальный вывод
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) ShowFrame(frame entity.Frame) {}

func (l *Log) ShowReport(scan entity.Scan) {
	l.logger.Info("scan report",
		"scan_id", scan.ID,
		"target", scan.Target,
		"state", scan.State,
		"source", scan.Triage.Source,
		"report", scan.Report(),
	)
}

func (l *Log) Notify(target int64, msg string) {
	l.logger.Warn(msg, "target", target)
}

// Multi рассылает вызовы всем вложенным представлениям по порядку
type Multi []port.View

func (m Multi) ShowFrame(frame entity.Frame) {
	for _, v := range m {
		v.ShowFrame(frame)
	}
}

func (m Multi) ShowReport(scan entity.Scan) {
	for _, v := range m {
		v.ShowReport(scan)
	}
}

func (m Multi) Notify(target int64, msg string) {
	for _, v := range m {
		v.Notify(target, msg)
	}
}

var (
	_ port.View = (*Log)(nil)
	_ port.View = Multi(nil)
)
