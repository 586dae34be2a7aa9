package container

import (
	"log/slog"
	"time"

	app "opd-scanner/internal/application"
	"opd-scanner/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	ScanService     *app.ScanService
	AdvisoryService *app.AdvisoryService
}

// New собирает сервисы приложения. advisor может быть nil.
func New(userRepo port.UserRepository, analyzer port.FrameAnalyzer, advisor port.Advisor, advisoryTimeout time.Duration, logger *slog.Logger) *Container {
	userService := app.NewUserService(userRepo)
	advisoryService := app.NewAdvisoryService(advisor, advisoryTimeout, logger)
	scanService := app.NewScanService(analyzer, advisoryService)

	return &Container{
		UserService:     userService,
		ScanService:     scanService,
		AdvisoryService: advisoryService,
	}
}
