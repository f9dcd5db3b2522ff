// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package palette

import (
	"errors"
	"image/color"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		n    int
		ok   bool
	}{
		{"empty", 0, false},
		{"short", Size - 1, false},
		{"exact", Size, true},
		{"long", Size + 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := make(Palette, tt.n)
			err := p.Validate(Size)
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var se *SizeError
			if !errors.As(err, &se) {
				t.Fatalf("Validate() = %v, want *SizeError", err)
			}
			if se.Got != tt.n || se.Want != Size {
				t.Errorf("SizeError = %+v, want Got=%d Want=%d", se, tt.n, Size)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	p := Palette{{R: 255, G: 0, B: 51, A: 255}, {R: 0, G: 102, B: 255, A: 0}}
	got := p.Normalized()
	want := []float32{1, 0, 0.2, 1, 0, 0.4, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if d := got[i] - want[i]; d > 1e-6 || d < -1e-6 {
			t.Errorf("Normalized()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizedRange(t *testing.T) {
	for i, v := range Default().Normalized() {
		if v < 0 || v > 1 {
			t.Fatalf("Normalized()[%d] = %v outside [0,1]", i, v)
		}
	}
}

func TestNearest(t *testing.T) {
	p := Palette{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
	}
	tests := []struct {
		r, g, b float32
		want    int
	}{
		{0.1, 0.1, 0.1, 0},
		{0.9, 0.95, 0.9, 1},
		{0.8, 0.1, 0.2, 2},
	}
	for _, tt := range tests {
		if got := p.Nearest(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Nearest(%v,%v,%v) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
	if got := Palette(nil).Nearest(0, 0, 0); got != -1 {
		t.Errorf("empty Nearest = %d, want -1", got)
	}
}

func TestNearestTieLowestIndex(t *testing.T) {
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	p := Palette{c, c}
	if got := p.Nearest(0, 0, 0); got != 0 {
		t.Errorf("Nearest = %d, want 0", got)
	}
}

func TestCloneIndependent(t *testing.T) {
	p := Default()
	q := p.Clone()
	q[0] = color.NRGBA{}
	if p[0] == q[0] {
		t.Fatal("Clone shares storage with the original")
	}
	if !p.Clone().Equal(p) {
		t.Fatal("Clone is not Equal to the original")
	}
}
