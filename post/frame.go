package post

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Frame is a packed RGBA float32 image, the working format of the
// post-process stage.
type Frame struct {
	W, H int
	Pix  []float32 // len == W*H*4
}

func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]float32, w*h*4)}
}

func (f *Frame) At(x, y int) (r, g, b, a float32) {
	i := (y*f.W + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}

func (f *Frame) Set(x, y int, r, g, b, a float32) {
	i := (y*f.W + x) * 4
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = r, g, b, a
}

func (f *Frame) Clone() *Frame {
	out := &Frame{W: f.W, H: f.H, Pix: make([]float32, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// FrameFromImage converts any image to a float frame, components in [0, 1].
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.Set(x, y,
				float32(r)/0xffff,
				float32(g)/0xffff,
				float32(bl)/0xffff,
				float32(a)/0xffff)
		}
	}
	return f
}

// Image converts the frame to an 8-bit RGBA image, clamping components.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			r, g, b, a := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: clamp8(r),
				G: clamp8(g),
				B: clamp8(b),
				A: clamp8(a),
			})
		}
	}
	return img
}

// FitTo rescales the frame to the target resolution with bilinear filtering.
// Returns the frame unchanged when it already matches.
func (f *Frame) FitTo(w, h int) *Frame {
	if f.W == w && f.H == h {
		return f
	}
	src := f.Image()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return FrameFromImage(dst)
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
