// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
)

// ErrClosed is returned by displays used after Close.
var ErrClosed = errors.New("surface: display closed")

// Display is a visible output whose size is owned by the user or the
// environment, not by the renderer.
//
// Displays are NOT required to be thread-safe. The Presenter serializes
// its own calls.
type Display interface {
	// Size returns the display's current pixel dimensions.
	Size() (width, height int)

	// Show replaces the visible contents with img, which has exactly the
	// dimensions returned by Size.
	Show(img *image.NRGBA) error

	// Close releases the display. Close is idempotent.
	Close() error
}

// ResizableDisplay is an optional interface for displays whose size can be
// changed programmatically.
type ResizableDisplay interface {
	Display

	// Resize changes the display dimensions. Current contents are
	// discarded.
	Resize(width, height int) error
}

// Source is anything that can report its current frame, such as a render
// target handle.
type Source interface {
	// Size returns the frame dimensions.
	Size() (width, height int)

	// Pixels returns the last rendered frame, or nil before the first draw.
	Pixels() *image.NRGBA
}
