package post

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 200})

	f := FrameFromImage(img)
	require.Equal(t, 3, f.W)
	require.Equal(t, 2, f.H)

	r, _, _, a := f.At(0, 0)
	assert.InDelta(t, 1.0, r, 1e-3)
	assert.InDelta(t, 1.0, a, 1e-3)

	back := f.Image()
	assert.Equal(t, img.RGBAAt(2, 1), back.RGBAAt(2, 1))
}

func TestImageClampsOutOfRange(t *testing.T) {
	f := NewFrame(1, 1)
	f.Set(0, 0, 2.5, -1, 0.5, 1)

	px := f.Image().RGBAAt(0, 0)
	assert.Equal(t, uint8(255), px.R)
	assert.Equal(t, uint8(0), px.G)
	assert.Equal(t, uint8(128), px.B)
}

func TestFitToRescales(t *testing.T) {
	f := NewFrame(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			f.Set(x, y, 0.5, 0.5, 0.5, 1)
		}
	}

	out := f.FitTo(4, 2)
	require.Equal(t, 4, out.W)
	require.Equal(t, 2, out.H)
	r, g, b, a := out.At(1, 1)
	assert.InDelta(t, 0.5, r, 0.01)
	assert.InDelta(t, 0.5, g, 0.01)
	assert.InDelta(t, 0.5, b, 0.01)
	assert.InDelta(t, 1.0, a, 0.01)
}

func TestFitToIdentityReturnsSameFrame(t *testing.T) {
	f := NewFrame(4, 4)
	assert.Same(t, f, f.FitTo(4, 4))
}
