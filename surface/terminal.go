// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// upperHalfBlock paints the top half of a cell in the foreground color and
// the bottom half in the background color.
const upperHalfBlock = '▀'

// TerminalDisplay shows frames in a terminal. Every cell carries two
// vertically stacked pixels, so the display is as wide as the terminal and
// twice as tall.
type TerminalDisplay struct {
	mu     sync.Mutex
	screen tcell.Screen
	closed bool
}

// NewTerminalDisplay opens the controlling terminal.
func NewTerminalDisplay() (*TerminalDisplay, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("surface: open terminal: %w", err)
	}
	return NewTerminalDisplayOn(s)
}

// NewTerminalDisplayOn initializes s and displays onto it. Tests pass a
// tcell.SimulationScreen.
func NewTerminalDisplayOn(s tcell.Screen) (*TerminalDisplay, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("surface: init terminal: %w", err)
	}
	s.HideCursor()
	s.Clear()
	return &TerminalDisplay{screen: s}, nil
}

// Size implements Display.
func (d *TerminalDisplay) Size() (int, int) {
	cols, rows := d.screen.Size()
	return cols, rows * 2
}

// Show implements Display.
func (d *TerminalDisplay) Show(img *image.NRGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	cols, rows := d.screen.Size()
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := cellColor(img, b.Min.X+x, b.Min.Y+2*y)
			bottom := cellColor(img, b.Min.X+x, b.Min.Y+2*y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			d.screen.SetContent(x, y, upperHalfBlock, nil, style)
		}
	}
	d.screen.Show()
	return nil
}

// PollEvent blocks for the next terminal event. It returns nil once the
// display is closed.
func (d *TerminalDisplay) PollEvent() tcell.Event { return d.screen.PollEvent() }

// Sync redraws the whole terminal, typically after a resize event.
func (d *TerminalDisplay) Sync() { d.screen.Sync() }

// Close implements Display and restores the terminal.
func (d *TerminalDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.screen.Fini()
	return nil
}

// cellColor returns the pixel at (x, y) composited over black. Pixels
// outside img are black.
func cellColor(img *image.NRGBA, x, y int) tcell.Color {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return tcell.NewRGBColor(0, 0, 0)
	}
	c := img.NRGBAAt(x, y)
	return tcell.NewRGBColor(over(c, c.R), over(c, c.G), over(c, c.B))
}

func over(c color.NRGBA, v uint8) int32 {
	return int32((uint32(v)*uint32(c.A) + 127) / 255)
}
