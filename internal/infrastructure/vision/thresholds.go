package vision

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReferenceArea площадь кадра 640x480, для которой подобран порог синяка
const ReferenceArea = 640 * 480

// Thresholds настраиваемые пороги анализатора
type Thresholds struct {
	LowRedHueMax  float64 `yaml:"low_red_hue_max"`  // верх нижней красной полосы (OpenCV hue 0..179)
	HighRedHueMin float64 `yaml:"high_red_hue_min"` // низ верхней красной полосы
	MinSaturation float64 `yaml:"min_saturation"`   // 0..255
	MinValue      float64 `yaml:"min_value"`        // 0..255
	BlurKernel    int     `yaml:"blur_kernel"`      // нечётный размер ядра размытия
	BruiseMinArea float64 `yaml:"bruise_min_area"`  // площадь контура для кадра ReferenceArea
	FrameWeight   float64 `yaml:"frame_weight"`     // вес кадра в превью
	MaskWeight    float64 `yaml:"mask_weight"`      // вес маски красноты в превью
}

// DefaultThresholds канонический набор порогов
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowRedHueMax:  10,
		HighRedHueMin: 160,
		MinSaturation: 60,
		MinValue:      40,
		BlurKernel:    7,
		BruiseMinArea: 2000,
		FrameWeight:   0.7,
		MaskWeight:    0.3,
	}
}

// BruiseAreaFor масштабирует порог синяка под размер кадра
func (t Thresholds) BruiseAreaFor(width, height int) float64 {
	return t.BruiseMinArea * float64(width*height) / ReferenceArea
}

// Validate проверяет согласованность порогов
func (t Thresholds) Validate() error {
	switch {
	case t.LowRedHueMax < 0 || t.HighRedHueMin > 179 || t.LowRedHueMax >= t.HighRedHueMin:
		return fmt.Errorf("invalid red hue bands: [0,%v] and [%v,179]", t.LowRedHueMax, t.HighRedHueMin)
	case t.MinSaturation < 0 || t.MinSaturation > 255 || t.MinValue < 0 || t.MinValue > 255:
		return errors.New("saturation and value thresholds must be within 0..255")
	case t.BlurKernel < 1 || t.BlurKernel%2 == 0:
		return fmt.Errorf("blur kernel must be odd and positive, got %d", t.BlurKernel)
	case t.BruiseMinArea <= 0:
		return errors.New("bruise area must be positive")
	case t.FrameWeight < 0 || t.MaskWeight < 0:
		return errors.New("preview weights must not be negative")
	}
	return nil
}

// LoadThresholds читает YAML поверх порогов по умолчанию.
// Пустой путь означает пороги по умолчанию.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("read analyzer config: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Thresholds{}, fmt.Errorf("parse analyzer config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("analyzer config %s: %w", path, err)
	}
	return t, nil
}
