package port

import (
	"context"

	"opd-scanner/internal/domain/entity"
)

// Advisor внешний сервис, который пишет текст первой помощи
type Advisor interface {
	// Advise отправляет превью и сводку, возвращает текст совета
	Advise(ctx context.Context, req entity.AdviceRequest) (string, error)
}
