// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

type frameSource struct{ frame *image.NRGBA }

func (s frameSource) Size() (int, int) {
	if s.frame == nil {
		return 0, 0
	}
	return s.frame.Rect.Dx(), s.frame.Rect.Dy()
}

func (s frameSource) Pixels() *image.NRGBA { return s.frame }

func TestPresenterScalesToDisplay(t *testing.T) {
	c := color.NRGBA{R: 30, G: 60, B: 90, A: 255}
	tests := []struct {
		name   string
		filter Filter
		frame  image.Point
	}{
		{"downscale nearest", FilterNearest, image.Pt(800, 600)},
		{"downscale bilinear", FilterBilinear, image.Pt(1920, 1080)},
		{"upscale catmullrom", FilterCatmullRom, image.Pt(10, 10)},
		{"same size", FilterBilinear, image.Pt(64, 48)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewImageDisplay(64, 48)
			p := NewPresenter(d, tt.filter)
			if err := p.Present(solid(tt.frame.X, tt.frame.Y, c)); err != nil {
				t.Fatalf("Present: %v", err)
			}
			got := d.Snapshot()
			if got == nil || got.Rect != image.Rect(0, 0, 64, 48) {
				t.Fatalf("snapshot = %v, want 64x48", got)
			}
			if px := got.NRGBAAt(32, 24); px != c {
				t.Errorf("center = %v, want %v", px, c)
			}
		})
	}
}

func TestPresenterFollowsDisplayResize(t *testing.T) {
	d := NewImageDisplay(20, 10)
	p := NewPresenter(d, FilterNearest)
	frame := solid(100, 100, color.NRGBA{A: 255})
	if err := p.Present(frame); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if err := d.Resize(7, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := p.Present(frame); err != nil {
		t.Fatalf("Present after resize: %v", err)
	}
	if got := d.Snapshot().Rect; got != image.Rect(0, 0, 7, 3) {
		t.Errorf("snapshot bounds = %v, want 7x3", got)
	}
}

func TestPresentSource(t *testing.T) {
	d := NewImageDisplay(4, 4)
	p := NewPresenter(d, FilterNearest)
	if err := p.PresentSource(frameSource{}); err != nil {
		t.Fatalf("PresentSource(empty): %v", err)
	}
	if d.Shows() != 0 {
		t.Error("an empty source must not be shown")
	}
	if err := p.PresentSource(frameSource{frame: solid(4, 4, color.NRGBA{R: 1, A: 255})}); err != nil {
		t.Fatalf("PresentSource: %v", err)
	}
	if d.Shows() != 1 {
		t.Errorf("Shows = %d, want 1", d.Shows())
	}
}

func TestImageDisplay(t *testing.T) {
	d := NewImageDisplay(0, -3)
	if w, h := d.Size(); w != 1 || h != 1 {
		t.Errorf("Size = %dx%d, want clamped 1x1", w, h)
	}
	if err := d.Show(solid(2, 2, color.NRGBA{})); err == nil {
		t.Error("mismatched frame should be rejected")
	}
	if err := d.Resize(0, 1); err == nil {
		t.Error("zero width should be rejected")
	}
	frame := solid(1, 1, color.NRGBA{G: 9, A: 255})
	if err := d.Show(frame); err != nil {
		t.Fatalf("Show: %v", err)
	}
	frame.Pix[1] = 200
	if d.Snapshot().Pix[1] != 9 {
		t.Error("Snapshot must not alias the shown frame")
	}
	_ = d.Close()
	if err := d.Show(frame); err != ErrClosed {
		t.Errorf("Show after Close = %v, want ErrClosed", err)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"nearest", FilterNearest, false},
		{"Bilinear", FilterBilinear, false},
		{"", FilterBilinear, false},
		{"bicubic", FilterCatmullRom, false},
		{"CATMULLROM", FilterCatmullRom, false},
		{"lanczos", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr {
			if back, _ := ParseFilter(got.String()); back != got {
				t.Errorf("String() of %v does not parse back", got)
			}
		}
	}
}
