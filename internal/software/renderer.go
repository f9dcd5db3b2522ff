package software

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/retint/internal/parallel"
	"github.com/gogpu/retint/palette"
)

// ErrEmptyImage is returned by SetImage for an image without pixels.
var ErrEmptyImage = errors.New("software: image has no pixels")

// Renderer remaps images on the CPU. It is not safe for concurrent use.
type Renderer struct {
	pool *parallel.WorkerPool

	// src holds the image as normalized RGBA, row 0 at the top.
	src       []float32
	srcWidth  int
	srcHeight int
	loaded    bool

	colors []float32
	active palette.Palette

	width  int
	height int
}

// New returns a renderer drawing into a width x height target. Workers
// bounds the goroutines used per draw; 0 means GOMAXPROCS.
func New(width, height, workers int) (*Renderer, error) {
	r := &Renderer{pool: parallel.NewWorkerPool(workers)}
	if _, err := r.Resize(width, height); err != nil {
		r.pool.Close()
		return nil, err
	}
	// Opaque black placeholder, matching the GPU texture slot.
	r.src = []float32{0, 0, 0, 1}
	r.srcWidth, r.srcHeight = 1, 1
	return r, nil
}

// SetImage replaces the source image.
func (r *Renderer) SetImage(img *image.NRGBA) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return ErrEmptyImage
	}
	src := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		out := src[y*w*4:]
		for i := 0; i < w*4; i++ {
			out[i] = float32(row[i]) / 255
		}
	}
	r.src, r.srcWidth, r.srcHeight = src, w, h
	r.loaded = true
	slogger().Debug("software: image loaded", "width", w, "height", h)
	return nil
}

// ImageSize returns the source dimensions.
func (r *Renderer) ImageSize() (int, int) { return r.srcWidth, r.srcHeight }

// HasImage reports whether SetImage replaced the placeholder.
func (r *Renderer) HasImage() bool { return r.loaded }

// PaletteLen returns the required palette length.
func (r *Renderer) PaletteLen() int { return palette.Size }

// SetPalette makes p the active palette. A palette of the wrong length
// returns *palette.SizeError and leaves the previous one active.
func (r *Renderer) SetPalette(p palette.Palette) error {
	if err := p.Validate(r.PaletteLen()); err != nil {
		return err
	}
	r.colors = p.Normalized()
	r.active = p.Clone()
	return nil
}

// Palette returns the active palette, or nil.
func (r *Renderer) Palette() palette.Palette { return r.active.Clone() }

// Resize sets the target size and reports whether it changed.
func (r *Renderer) Resize(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("software: resize to %dx%d: dimensions must be positive", width, height)
	}
	if width == r.width && height == r.height {
		return false, nil
	}
	r.width, r.height = width, height
	return true, nil
}

// Size returns the target size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render remaps the source into a new target-sized image. Rendering stops
// early with ctx.Err() when ctx is canceled.
func (r *Renderer) Render(ctx context.Context) (*image.NRGBA, error) {
	if r.colors == nil {
		return nil, errors.New("software: no palette set")
	}
	out := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	bands := parallel.SplitRows(r.height, r.pool.Workers()*4)
	err := r.pool.Run(ctx, len(bands), func(i int) {
		r.shadeBand(out, bands[i])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close stops the worker pool.
func (r *Renderer) Close() { r.pool.Close() }

func (r *Renderer) shadeBand(out *image.NRGBA, band parallel.Band) {
	w, h := float32(r.width), float32(r.height)
	dx, dy := 0.25/w, 0.25/h
	for y := band.Y0; y < band.Y1; y++ {
		v := (float32(y) + 0.5) / h
		row := out.Pix[y*out.Stride:]
		for x := 0; x < r.width; x++ {
			u := (float32(x) + 0.5) / w
			var src [4]float32
			for _, o := range [4][2]float32{{-dx, -dy}, {dx, -dy}, {-dx, dy}, {dx, dy}} {
				s := r.sample(u+o[0], v+o[1])
				for c := range src {
					src[c] += s[c]
				}
			}
			for c := range src {
				src[c] *= 0.25
			}

			best := r.active.Nearest(src[0], src[1], src[2])
			e := r.colors[best*4 : best*4+4]
			p := row[x*4 : x*4+4]
			p[0] = unorm8(e[0])
			p[1] = unorm8(e[1])
			p[2] = unorm8(e[2])
			p[3] = unorm8(src[3] * e[3])
		}
	}
}

// sample reads the source bilinearly at normalized (u, v), clamping to the
// edge texels.
func (r *Renderer) sample(u, v float32) [4]float32 {
	tx := u*float32(r.srcWidth) - 0.5
	ty := v*float32(r.srcHeight) - 0.5
	fx0 := float32(math.Floor(float64(tx)))
	fy0 := float32(math.Floor(float64(ty)))
	ax, ay := tx-fx0, ty-fy0
	x0, y0 := int(fx0), int(fy0)

	c00 := r.texel(x0, y0)
	c10 := r.texel(x0+1, y0)
	c01 := r.texel(x0, y0+1)
	c11 := r.texel(x0+1, y0+1)
	var out [4]float32
	for c := range out {
		top := c00[c] + (c10[c]-c00[c])*ax
		bottom := c01[c] + (c11[c]-c01[c])*ax
		out[c] = top + (bottom-top)*ay
	}
	return out
}

func (r *Renderer) texel(x, y int) []float32 {
	x = max(0, min(x, r.srcWidth-1))
	y = max(0, min(y, r.srcHeight-1))
	i := (y*r.srcWidth + x) * 4
	return r.src[i : i+4]
}

func unorm8(v float32) uint8 {
	return uint8(max(0, min(255, math.Round(float64(v)*255))))
}
