// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Presenter copies rendered frames onto a Display, scaled to the display's
// dimensions at the time of each call.
//
// Presenter is safe for concurrent use.
type Presenter struct {
	mu      sync.Mutex
	display Display
	filter  Filter
	scratch *image.NRGBA
}

// NewPresenter returns a presenter for d using filter when scaling.
func NewPresenter(d Display, filter Filter) *Presenter {
	return &Presenter{display: d, filter: filter}
}

// Display returns the presenter's display.
func (p *Presenter) Display() Display { return p.display }

// Present shows frame on the display. Frames that already match the
// display size are passed through unscaled.
func (p *Presenter) Present(frame *image.NRGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, h := p.display.Size()
	if frame.Rect.Dx() == w && frame.Rect.Dy() == h && frame.Rect.Min == (image.Point{}) {
		return p.display.Show(frame)
	}
	if p.scratch == nil || p.scratch.Rect.Dx() != w || p.scratch.Rect.Dy() != h {
		p.scratch = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	p.filter.interpolator().Scale(p.scratch, p.scratch.Rect, frame, frame.Rect, draw.Src, nil)
	return p.display.Show(p.scratch)
}

// PresentSource presents the current frame of src. It is a no-op before
// src has rendered anything.
func (p *Presenter) PresentSource(src Source) error {
	frame := src.Pixels()
	if frame == nil {
		return nil
	}
	return p.Present(frame)
}
