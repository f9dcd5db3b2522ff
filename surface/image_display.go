// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
)

// ImageDisplay is an in-memory display. Each Show stores a copy of the
// frame, which Snapshot returns.
type ImageDisplay struct {
	width  int
	height int
	last   *image.NRGBA
	shows  int
	closed bool
}

// NewImageDisplay creates a width x height display. Non-positive
// dimensions are clamped to 1.
func NewImageDisplay(width, height int) *ImageDisplay {
	return &ImageDisplay{width: max(1, width), height: max(1, height)}
}

// Size implements Display.
func (d *ImageDisplay) Size() (int, int) { return d.width, d.height }

// Show implements Display.
func (d *ImageDisplay) Show(img *image.NRGBA) error {
	if d.closed {
		return ErrClosed
	}
	if img.Rect.Dx() != d.width || img.Rect.Dy() != d.height {
		return fmt.Errorf("surface: frame is %dx%d, display is %dx%d",
			img.Rect.Dx(), img.Rect.Dy(), d.width, d.height)
	}
	cp := image.NewNRGBA(image.Rect(0, 0, d.width, d.height))
	copy(cp.Pix, img.Pix)
	d.last = cp
	d.shows++
	return nil
}

// Resize implements ResizableDisplay.
func (d *ImageDisplay) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface: invalid display size %dx%d", width, height)
	}
	d.width, d.height = width, height
	d.last = nil
	return nil
}

// Snapshot returns the last shown frame, or nil.
func (d *ImageDisplay) Snapshot() *image.NRGBA { return d.last }

// Shows returns how many frames have been shown.
func (d *ImageDisplay) Shows() int { return d.shows }

// Close implements Display.
func (d *ImageDisplay) Close() error {
	d.closed = true
	return nil
}
