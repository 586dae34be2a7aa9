package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	app "opd-scanner/internal/application"
	"opd-scanner/internal/domain/entity"
)

const (
	// MaxUploadSize ограничение на размер загружаемого изображения
	MaxUploadSize = 10 << 20

	// ShutdownTimeout время на завершение активных запросов
	ShutdownTimeout = 10 * time.Second
)

// ScanResponse ответ на POST /api/v1/scans
type ScanResponse struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Advice           string  `json:"advice"`
	Source           string  `json:"source"`
	Redness          float64 `json:"redness"`
	BruiseDetected   bool    `json:"bruise_detected"`
	SwellingFraction float64 `json:"swelling_fraction"`
}

// NewRouter создаёт gin-роутер с обработчиками API
func NewRouter(scans *app.ScanService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.MaxMultipartMemory = MaxUploadSize

	RegisterRoutes(router, scans, logger)
	return router
}

// RegisterRoutes подключает обработчики к роутеру
func RegisterRoutes(router *gin.Engine, scans *app.ScanService, logger *slog.Logger) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"advisory": scans.Advisory().Enabled(),
		})
	})

	api := router.Group("/api/v1")
	api.POST("/scans", func(c *gin.Context) {
		pain, err := parsePain(c.PostForm("pain"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		data, err := readImage(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		scan, err := scans.ScanAndRefine(c.Request.Context(), entity.LocalTarget, data, pain)
		if err != nil {
			if errors.Is(err, entity.ErrInvalidImage) || errors.Is(err, entity.ErrInvalidFrame) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("scan upload", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
			return
		}

		c.JSON(http.StatusOK, newScanResponse(scan))
	})
}

// Run слушает addr до отмены ctx, затем плавно останавливает сервер
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, listener, handler, logger)
}

// Serve обслуживает запросы на готовом listener
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	logger.Info("http api listening", "addr", listener.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func newScanResponse(scan *entity.Scan) ScanResponse {
	return ScanResponse{
		ID:               scan.ID.String(),
		Label:            string(scan.Triage.Label),
		Advice:           scan.Triage.Advice,
		Source:           string(scan.Triage.Source),
		Redness:          scan.Analysis.Redness,
		BruiseDetected:   scan.Analysis.BruiseDetected,
		SwellingFraction: scan.Analysis.SwellingFraction,
	}
}

// parsePain пустое значение означает 0
func parsePain(raw string) (entity.PainLevel, error) {
	if raw == "" {
		return entity.MinPain, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.ErrInvalidPain
	}
	return entity.NewPainLevel(v)
}

func readImage(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, errors.New("image file is required")
	}
	if file.Size > MaxUploadSize {
		return nil, errors.New("image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.New("unable to open image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return nil, errors.New("failed to read image")
	}
	return data, nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
