package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"opd-scanner/config"
	telegram "opd-scanner/internal/api"
	"opd-scanner/internal/api/rest"
	app "opd-scanner/internal/application"
	"opd-scanner/internal/container"
	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
	"opd-scanner/internal/infrastructure/advisory"
	"opd-scanner/internal/infrastructure/camera"
	"opd-scanner/internal/infrastructure/display"
	"opd-scanner/internal/infrastructure/storage"
	"opd-scanner/internal/infrastructure/vision"
	"opd-scanner/internal/logger"
)

const windowTitle = "OPD AI Scanner"

// HighGUI требует, чтобы окно обслуживал один и тот же поток ОС
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		slog.Error("scanner stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Пороги анализатора
	thresholds := vision.DefaultThresholds()
	if cfg.AnalyzerConfig != "" {
		thresholds, err = vision.LoadThresholds(cfg.AnalyzerConfig)
		if err != nil {
			return fmt.Errorf("load analyzer config: %w", err)
		}
	}
	analyzer := vision.NewAnalyzer(thresholds)

	// Внешний советник необязателен
	var advisor port.Advisor
	if cfg.AdvisoryEnabled() {
		openai, err := advisory.NewOpenAIAdvisor(advisory.Options{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			MaxTokens: cfg.AdvisoryMaxTokens,
		})
		if err != nil {
			return fmt.Errorf("create advisor: %w", err)
		}
		advisor = openai
		log.Info("advisory enabled", "model", cfg.OpenAIModel, "timeout", cfg.AdvisoryTimeout)
	} else {
		log.Warn("OPENAI_API_KEY is not set, using local advice only")
	}

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, analyzer, advisor, cfg.AdvisoryTimeout, log)

	var source port.FrameSource
	if webcam, err := camera.Open(cfg.CameraDevice, cfg.CameraMirror); err != nil {
		log.Warn("camera unavailable, only uploaded images can be scanned", "device", cfg.CameraDevice, "error", err)
	} else {
		source = webcam
	}

	views := display.Multi{display.NewLog(log)}

	var window *display.Window
	if cfg.PreviewWindow && source != nil {
		window, err = display.NewWindow(windowTitle)
		if err != nil {
			log.Warn("preview window unavailable", "error", err)
			window = nil
		} else {
			defer window.Close()
			views = append(views, window)
		}
	}

	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, appContainer, log)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		views = append(views, bot)
	} else {
		log.Warn("TELEGRAM_TOKEN is not set, telegram bot disabled")
	}

	session := app.NewSession(source, appContainer.ScanService, views, log, cfg.FrameInterval)
	defer func() {
		if err := session.Close(); err != nil {
			log.Error("close session", "error", err)
		}
	}()
	if bot != nil {
		bot.Bind(session)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	if cfg.HTTPAddr != "" {
		router := rest.NewRouter(appContainer.ScanService, log)
		g.Go(func() error {
			return rest.Run(gctx, cfg.HTTPAddr, router, log)
		})
	}

	if window != nil {
		g.Go(func() error {
			return handleActions(gctx, window.Actions(), session, cancel, log)
		})
	}

	// Цикл сессии на главном потоке: он владеет окном
	runErr := session.Run(gctx)
	cancel()

	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}

// handleActions передаёт команды с клавиатуры окна в сессию
func handleActions(ctx context.Context, actions <-chan display.Action, session *app.Session, quit context.CancelFunc, log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case action := <-actions:
			switch action.Kind {
			case display.ActionQuit:
				log.Info("quit requested from preview window")
				quit()
				return nil
			case display.ActionScan:
				req := app.ScanRequest{Target: entity.LocalTarget, Pain: action.Pain}
				if err := session.RequestScan(ctx, req); err != nil {
					log.Warn("local scan request rejected", "error", err)
				}
			}
		}
	}
}
