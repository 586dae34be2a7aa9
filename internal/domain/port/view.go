package port

import "opd-scanner/internal/domain/entity"

// View слой отображения. Все методы вызываются только из цикла сессии.
type View interface {
	// ShowFrame показывает очередной кадр живого потока
	ShowFrame(frame entity.Frame)

	// ShowReport показывает промежуточный или итоговый результат
	ShowReport(scan entity.Scan)

	// Notify показывает короткое уведомление получателю
	Notify(target int64, msg string)
}
