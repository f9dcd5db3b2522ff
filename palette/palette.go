// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package palette

import (
	"fmt"
	"image/color"
)

// Size is the number of entries in every palette. It matches the length of
// the colorscheme array compiled into the default fragment shader.
const Size = 40

// Palette is an ordered list of RGBA colors. Entry order is significant: the
// fragment stage addresses entries by index.
type Palette []color.NRGBA

// SizeError reports a palette whose entry count does not match the length
// the consumer expects.
type SizeError struct {
	Got  int
	Want int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("palette: got %d entries, want %d", e.Got, e.Want)
}

// Validate returns a *SizeError if p does not have exactly want entries.
func (p Palette) Validate(want int) error {
	if len(p) != want {
		return &SizeError{Got: len(p), Want: want}
	}
	return nil
}

// Clone returns a copy of p that does not share storage.
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out
}

// Normalized returns the palette as a flat RGBA float array with every
// channel scaled from [0,255] to [0,1]. The result has 4*len(p) elements.
func (p Palette) Normalized() []float32 {
	out := make([]float32, 0, len(p)*4)
	for _, c := range p {
		out = append(out,
			float32(c.R)/255,
			float32(c.G)/255,
			float32(c.B)/255,
			float32(c.A)/255,
		)
	}
	return out
}

// Nearest returns the index of the entry closest to the normalized color
// (r, g, b) by squared RGB distance. Ties resolve to the lowest index.
// It returns -1 for an empty palette.
func (p Palette) Nearest(r, g, b float32) int {
	best := -1
	bestDist := float32(0)
	for i, c := range p {
		dr := float32(c.R)/255 - r
		dg := float32(c.G)/255 - g
		db := float32(c.B)/255 - b
		d := dr*dr + dg*dg + db*db
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Equal reports whether p and q hold the same colors in the same order.
func (p Palette) Equal(q Palette) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}
