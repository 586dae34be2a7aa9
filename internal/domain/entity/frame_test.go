package entity

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFrame_Validation(t *testing.T) {
	_, err := NewFrame(0, 10, nil)
	require.ErrorIs(t, err, ErrInvalidFrame)

	_, err = NewFrame(2, 2, make([]byte, 11))
	require.ErrorIs(t, err, ErrInvalidFrame)

	f, err := NewFrame(2, 2, make([]byte, 12))
	require.NoError(t, err)
	require.Equal(t, 4, f.Area())
	require.False(t, f.Empty())
}

func TestFrame_ImageSwapsChannels(t *testing.T) {
	// один пиксель: B=1 G=2 R=3
	f, err := NewFrame(1, 1, []byte{1, 2, 3})
	require.NoError(t, err)

	c := f.Image().RGBAAt(0, 0)
	require.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 255}, c)
}

func TestFrameFromImage_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 200, G: 10, B: 20, A: 255})

	f, err := FrameFromImage(img)
	require.NoError(t, err)
	require.Equal(t, 3, f.Width)
	require.Equal(t, 2, f.Height)

	i := (1*3 + 2) * FrameChannels
	require.Equal(t, []byte{20, 10, 200}, f.Data[i:i+3])
}

func TestFrame_PNG(t *testing.T) {
	f, err := NewFrame(4, 3, bytes.Repeat([]byte{0, 0, 255}, 12))
	require.NoError(t, err)

	data, err := f.PNG()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = Frame{}.PNG()
	require.ErrorIs(t, err, ErrInvalidFrame)
}
