// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/retint/palette"
)

// PaletteUniform owns the program's uniform buffer: the canvas size and the
// colorscheme array. The array has exactly Locations.PaletteLen entries.
type PaletteUniform struct {
	device hal.Device
	queue  hal.Queue
	locs   Locations

	buffer hal.Buffer
	active palette.Palette
	width  float32
	height float32
}

// NewPaletteUniform allocates the uniform buffer sized for p's block.
func NewPaletteUniform(device hal.Device, queue hal.Queue, p *Program) (*PaletteUniform, error) {
	locs := p.Locations()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "retint_uniforms",
		Size:  locs.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, classify("create uniform buffer", err)
	}
	return &PaletteUniform{device: device, queue: queue, locs: locs, buffer: buf}, nil
}

// Set uploads p as the active colorscheme. A palette of the wrong length
// returns *palette.SizeError and the previous palette stays active.
func (u *PaletteUniform) Set(p palette.Palette) error {
	if err := p.Validate(u.locs.PaletteLen); err != nil {
		return err
	}
	if err := u.queue.WriteBuffer(u.buffer, u.locs.Colorscheme, float32Bytes(p.Normalized())); err != nil {
		return classify("write colorscheme", err)
	}
	u.active = p.Clone()
	return nil
}

// Active returns a copy of the palette last uploaded by Set, or nil.
func (u *PaletteUniform) Active() palette.Palette { return u.active.Clone() }

// SetCanvasSize uploads the render target dimensions used by the
// fragment stage's prefilter.
func (u *PaletteUniform) SetCanvasSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas size %dx%d: must be positive", width, height)
	}
	w, h := float32(width), float32(height)
	if w == u.width && h == u.height {
		return nil
	}
	if err := u.queue.WriteBuffer(u.buffer, u.locs.CanvasWidth, float32Bytes([]float32{w})); err != nil {
		return classify("write canvas width", err)
	}
	if err := u.queue.WriteBuffer(u.buffer, u.locs.CanvasHeight, float32Bytes([]float32{h})); err != nil {
		return classify("write canvas height", err)
	}
	u.width, u.height = w, h
	return nil
}

// Buffer returns the underlying uniform buffer.
func (u *PaletteUniform) Buffer() hal.Buffer { return u.buffer }

// Destroy releases the uniform buffer.
func (u *PaletteUniform) Destroy() {
	if u.buffer != nil {
		u.device.DestroyBuffer(u.buffer)
		u.buffer = nil
	}
	u.active = nil
}
