// Package post applies tone and color operators plus a vignette to a
// rendered frame. The operator order — exposure, contrast, saturation,
// vignette — is a compatibility contract; reordering changes output.
package post

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
)

// Params is the per-invocation configuration. Neutral values
// (0, 1, 1, 0) make the whole stage an identity.
type Params struct {
	Exposure         float32
	Contrast         float32
	Saturation       float32
	VignetteStrength float32
	Width            int
	Height           int
}

// Neutral returns parameters under which Apply leaves every pixel unchanged.
func Neutral(w, h int) Params {
	return Params{Exposure: 0, Contrast: 1, Saturation: 1, VignetteStrength: 0, Width: w, Height: h}
}

const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// Stage runs the post-process pass on the host, rows in parallel. Each pixel
// is an independent work item; there is no shared mutable state.
type Stage struct {
	workers int
}

func NewStage() *Stage {
	return &Stage{workers: runtime.GOMAXPROCS(0)}
}

func (s *Stage) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

// Apply processes the frame in place. Pixels at or beyond the target
// resolution are skipped entirely, never written.
func (s *Stage) Apply(f *Frame, p Params) {
	h := p.Height
	if h > f.H {
		h = f.H
	}
	w := p.Width
	if w > f.W {
		w = f.W
	}
	if w <= 0 || h <= 0 {
		return
	}

	gain := math32.Exp2(p.Exposure)
	invW := 1 / float32(p.Width)
	invH := 1 / float32(p.Height)

	parallelRows(h, s.workers, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < w; x++ {
				r, g, b, a := f.At(x, y)

				r, g, b = r*gain, g*gain, b*gain

				luma := r*lumaR + g*lumaG + b*lumaB
				r, g, b = mix3(luma, r, g, b, p.Contrast)

				luma = r*lumaR + g*lumaG + b*lumaB
				r, g, b = mix3(luma, r, g, b, p.Saturation)

				u := (float32(x)+0.5)*invW*2 - 1
				v := (float32(y)+0.5)*invH*2 - 1
				radius := math32.Sqrt(u*u + v*v)
				vig := smoothstep(1.4, 0, radius*p.VignetteStrength)
				r, g, b = r*vig, g*vig, b*vig

				f.Set(x, y, r, g, b, a)
			}
		}
	})
}

// mix3 blends each channel toward the scalar base: base*(1-t) + c*t.
// t == 1 reproduces the input exactly.
func mix3(base, r, g, b, t float32) (float32, float32, float32) {
	inv := (1 - t) * base
	return r*t + inv, g*t + inv, b*t + inv
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func parallelRows(rows, workers int, fn func(lo, hi int)) {
	if workers <= 1 || rows < 64 {
		fn(0, rows)
		return
	}
	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < rows; lo += chunk {
		hi := lo + chunk
		if hi > rows {
			hi = rows
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
