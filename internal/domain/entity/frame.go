package entity

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"
)

// FrameChannels количество каналов в кадре (BGR)
const FrameChannels = 3

// Frame кадр с камеры в формате BGR, 8 бит на канал.
// После создания не изменяется.
type Frame struct {
	Width      int       // ширина в пикселях
	Height     int       // высота в пикселях
	Data       []byte    // пиксели построчно, B G R
	CapturedAt time.Time // момент захвата
}

// NewFrame проверяет размеры и создаёт кадр
func NewFrame(width, height int, data []byte) (Frame, error) {
	f := Frame{Width: width, Height: height, Data: data, CapturedAt: time.Now()}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Validate проверяет, что кадр корректно сформирован
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if len(f.Data) != f.Width*f.Height*FrameChannels {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFrame, len(f.Data), f.Width*f.Height*FrameChannels)
	}
	return nil
}

// Empty сообщает, что кадр ещё не захвачен
func (f Frame) Empty() bool {
	return len(f.Data) == 0
}

// Area возвращает площадь кадра в пикселях
func (f Frame) Area() int {
	return f.Width * f.Height
}

// Image возвращает копию кадра в RGBA
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * FrameChannels
			img.SetRGBA(x, y, color.RGBA{R: f.Data[i+2], G: f.Data[i+1], B: f.Data[i], A: 255})
		}
	}
	return img
}

// PNG кодирует кадр в PNG
func (f Frame) PNG() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FrameFromImage переводит произвольное изображение в BGR-кадр
func FrameFromImage(img image.Image) (Frame, error) {
	b := img.Bounds()
	data := make([]byte, 0, b.Dx()*b.Dy()*FrameChannels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			data = append(data, c.B, c.G, c.R)
		}
	}
	return NewFrame(b.Dx(), b.Dy(), data)
}
