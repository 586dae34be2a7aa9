package entity

import "errors"

var (
	// ErrInvalidFrame кадр пустой или размер буфера не совпадает с размерами
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrInvalidPain уровень боли вне диапазона 0..10
	ErrInvalidPain = errors.New("pain level must be between 0 and 10")
	// ErrCameraNotReady камера ещё не отдала ни одного кадра
	ErrCameraNotReady = errors.New("camera not ready")
	// ErrAdvisorNotConfigured внешний советник не настроен (нет ключа API)
	ErrAdvisorNotConfigured = errors.New("advisory service is not configured")
	// ErrInvalidImage присланные байты не являются изображением
	ErrInvalidImage = errors.New("invalid image")
	// ErrEmptyAdvice внешний советник вернул пустой ответ
	ErrEmptyAdvice = errors.New("advisory service returned an empty response")
)
