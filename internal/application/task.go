package app

import (
	"context"

	"github.com/google/uuid"

	"opd-scanner/internal/domain/entity"
)

// AdviceOutcome результат фонового запроса совета
type AdviceOutcome struct {
	Scan *entity.Scan
}

// AdviceTask фоновый запрос совета для одного сканирования.
// Ровно один результат отправляется в канал results.
type AdviceTask struct {
	ScanID uuid.UUID
	done   chan struct{}
}

// StartAdvice запускает запрос в отдельной горутине.
// Если ctx отменён раньше, чем результат принят, результат отбрасывается.
func StartAdvice(ctx context.Context, svc *AdvisoryService, scan entity.Scan, results chan<- AdviceOutcome) *AdviceTask {
	task := &AdviceTask{ScanID: scan.ID, done: make(chan struct{})}

	go func() {
		defer close(task.done)

		refined := svc.Refine(ctx, scan)
		select {
		case results <- AdviceOutcome{Scan: refined}:
		case <-ctx.Done():
		}
	}()

	return task
}

// Done закрывается, когда результат доставлен или отброшен
func (t *AdviceTask) Done() <-chan struct{} {
	return t.done
}
