// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// Filter specifies the interpolation mode used when a frame is scaled to
// the display.
type Filter uint8

const (
	// FilterNearest uses nearest-neighbor interpolation.
	FilterNearest Filter = iota

	// FilterBilinear uses bilinear interpolation.
	FilterBilinear

	// FilterCatmullRom uses Catmull-Rom bicubic interpolation. Slowest,
	// sharpest.
	FilterCatmullRom
)

// String returns the filter's flag name.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	case FilterCatmullRom:
		return "catmullrom"
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

// ParseFilter returns the filter named s, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return FilterNearest, nil
	case "bilinear", "":
		return FilterBilinear, nil
	case "catmullrom", "bicubic":
		return FilterCatmullRom, nil
	}
	return 0, fmt.Errorf("surface: unknown filter %q", s)
}

func (f Filter) interpolator() draw.Interpolator {
	switch f {
	case FilterNearest:
		return draw.NearestNeighbor
	case FilterCatmullRom:
		return draw.CatmullRom
	}
	return draw.BiLinear
}

// Options configures display creation.
type Options struct {
	// Width and Height are the requested pixel dimensions. Displays that
	// size themselves, like a terminal, ignore them.
	Width  int
	Height int

	// Custom options for specific backends.
	Custom map[string]any
}

// DefaultOptions returns Options for a width x height display.
func DefaultOptions(width, height int) Options {
	return Options{Width: width, Height: height}
}
