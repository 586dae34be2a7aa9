package port

import "opd-scanner/internal/domain/entity"

// FrameSource источник кадров (веб-камера)
type FrameSource interface {
	// Read возвращает очередной кадр или ErrCameraNotReady
	Read() (entity.Frame, error)

	// Close освобождает устройство
	Close() error
}
