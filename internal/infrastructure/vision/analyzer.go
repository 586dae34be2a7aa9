//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

type Analyzer struct {
	Thresholds Thresholds
}

// NewAnalyzer создаёт анализатор с заданными порогами.
func NewAnalyzer(th Thresholds) *Analyzer {
	return &Analyzer{Thresholds: th}
}

// Analyze считает красноту, ищет тёмные области и строит превью.
// Входной кадр не изменяется.
func (a *Analyzer) Analyze(_ context.Context, frame entity.Frame) (*entity.AnalysisResult, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFrame, err)
	}
	defer mat.Close()

	redMask := a.redMask(mat)
	defer redMask.Close()
	redness := ratioOfMask(redMask)

	regions, largest := a.darkRegions(mat)
	area := float64(frame.Area())
	bruiseArea := a.Thresholds.BruiseAreaFor(frame.Width, frame.Height)

	bruise := make([]entity.Region, 0, len(regions))
	for _, r := range regions {
		if r.Area > bruiseArea {
			bruise = append(bruise, r)
		}
	}

	preview, err := a.preview(mat, redMask, frame)
	if err != nil {
		return nil, err
	}

	return &entity.AnalysisResult{
		Redness:          redness,
		BruiseDetected:   len(bruise) > 0,
		SwellingFraction: clamp01(largest / area),
		Regions:          bruise,
		Preview:          preview,
	}, nil
}

// Decode превращает байты JPEG/PNG в кадр BGR.
func (a *Analyzer) Decode(data []byte) (entity.Frame, error) {
	mat, err := decodeToMat(data)
	if err != nil {
		return entity.Frame{}, err
	}
	defer mat.Close()

	return matToFrame(mat)
}

// redMask маска пикселей в двух красных полосах оттенка.
func (a *Analyzer) redMask(mat gocv.Mat) gocv.Mat {
	th := a.Thresholds

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	low := gocv.NewMat()
	defer low.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, th.MinSaturation, th.MinValue, 0),
		gocv.NewScalar(th.LowRedHueMax, 255, 255, 0),
		&low)

	high := gocv.NewMat()
	defer high.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(th.HighRedHueMin, th.MinSaturation, th.MinValue, 0),
		gocv.NewScalar(179, 255, 255, 0),
		&high)

	mask := gocv.NewMat()
	gocv.BitwiseOr(low, high, &mask)
	return mask
}

// darkRegions ищет внешние контуры тёмных областей после размытия и
// порога Оцу. Возвращает области и площадь крупнейшей.
func (a *Analyzer) darkRegions(mat gocv.Mat) ([]entity.Region, float64) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	// Однотонный кадр: порог Оцу выделит весь кадр целиком.
	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	if minVal == maxVal {
		return nil, 0
	}

	blur := gocv.NewMat()
	defer blur.Close()
	k := a.Thresholds.BlurKernel
	gocv.GaussianBlur(gray, &blur, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blur, &thresh, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]entity.Region, 0, contours.Size())
	var largest float64
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area > largest {
			largest = area
		}

		rect := gocv.BoundingRect(c)
		regions = append(regions, entity.Region{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
			Area:   area,
		})
	}

	return regions, largest
}

// preview смешивает кадр с маской красноты.
func (a *Analyzer) preview(mat, redMask gocv.Mat, frame entity.Frame) (entity.Frame, error) {
	overlay := gocv.NewMat()
	defer overlay.Close()
	gocv.CvtColor(redMask, &overlay, gocv.ColorGrayToBGR)

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(mat, a.Thresholds.FrameWeight, overlay, a.Thresholds.MaskWeight, 0, &blended)

	preview, err := matToFrame(blended)
	if err != nil {
		return entity.Frame{}, err
	}
	preview.CapturedAt = frame.CapturedAt
	return preview, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
// При ошибке матрица уже освобождена.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("failed to decode image")
	}
	return mat, nil
}

// matToFrame копирует 3-канальную матрицу в кадр.
func matToFrame(mat gocv.Mat) (entity.Frame, error) {
	if mat.Empty() || mat.Type() != gocv.MatTypeCV8UC3 {
		return entity.Frame{}, fmt.Errorf("%w: unexpected matrix type", entity.ErrInvalidFrame)
	}

	return entity.NewFrame(mat.Cols(), mat.Rows(), mat.ToBytes())
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Проверка реализации интерфейса
var _ port.FrameAnalyzer = (*Analyzer)(nil)
