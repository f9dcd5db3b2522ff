// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimDisplay(t *testing.T, cols, rows int) (*TerminalDisplay, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	d, err := NewTerminalDisplayOn(sim)
	if err != nil {
		t.Fatalf("NewTerminalDisplayOn: %v", err)
	}
	sim.SetSize(cols, rows)
	t.Cleanup(func() { _ = d.Close() })
	return d, sim
}

func TestTerminalDisplaySize(t *testing.T) {
	d, _ := newSimDisplay(t, 40, 12)
	if w, h := d.Size(); w != 40 || h != 24 {
		t.Errorf("Size = %dx%d, want 40x24", w, h)
	}
}

func TestTerminalDisplayHalfBlocks(t *testing.T) {
	d, sim := newSimDisplay(t, 2, 1)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 200, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, A: 128})
	if err := d.Show(img); err != nil {
		t.Fatalf("Show: %v", err)
	}

	cells, w, h := sim.GetContents()
	if w != 2 || h != 1 {
		t.Fatalf("contents %dx%d, want 2x1", w, h)
	}
	tests := []struct {
		cell       int
		top, below [3]int32
	}{
		{0, [3]int32{255, 0, 0}, [3]int32{0, 255, 0}},
		{1, [3]int32{0, 0, 200}, [3]int32{100, 50, 0}},
	}
	for _, tt := range tests {
		c := cells[tt.cell]
		if len(c.Runes) == 0 || c.Runes[0] != upperHalfBlock {
			t.Errorf("cell %d runes = %q, want half block", tt.cell, c.Runes)
		}
		fg, bg, _ := c.Style.Decompose()
		if r, g, b := fg.RGB(); [3]int32{r, g, b} != tt.top {
			t.Errorf("cell %d fg = %v, want %v", tt.cell, [3]int32{r, g, b}, tt.top)
		}
		if r, g, b := bg.RGB(); [3]int32{r, g, b} != tt.below {
			t.Errorf("cell %d bg = %v, want %v", tt.cell, [3]int32{r, g, b}, tt.below)
		}
	}
}

func TestTerminalDisplayWithPresenter(t *testing.T) {
	d, sim := newSimDisplay(t, 8, 4)
	p := NewPresenter(d, FilterNearest)
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	if err := p.Present(solid(800, 600, c)); err != nil {
		t.Fatalf("Present: %v", err)
	}
	cells, _, _ := sim.GetContents()
	fg, bg, _ := cells[len(cells)-1].Style.Decompose()
	for _, col := range []tcell.Color{fg, bg} {
		if r, g, b := col.RGB(); r != 10 || g != 20 || b != 30 {
			t.Errorf("color = (%d,%d,%d), want (10,20,30)", r, g, b)
		}
	}
}

func TestTerminalDisplayClose(t *testing.T) {
	d, _ := newSimDisplay(t, 2, 2)
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := d.Show(image.NewNRGBA(image.Rect(0, 0, 2, 4))); err != ErrClosed {
		t.Errorf("Show after Close = %v, want ErrClosed", err)
	}
}
