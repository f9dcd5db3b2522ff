// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the visible side of a render: displays and the
// presenter that copies rendered frames onto them.
//
// A render target and the display that shows it have independent sizes. The
// Presenter bridges the two by scaling each frame to the display's current
// dimensions before handing it over.
//
// # Displays
//
//   - ImageDisplay: an in-memory display, useful for tests and headless use
//   - TerminalDisplay: draws frames into a terminal with half-block cells
//   - Third-party displays via the registry
//
// # Registry
//
// Displays are selected by name or by priority:
//
//	d, err := surface.NewDisplayByName("terminal", surface.DefaultOptions(0, 0))
//	// or the best available one:
//	d, err := surface.NewDisplay(surface.DefaultOptions(800, 600))
//
// # Usage
//
//	p := surface.NewPresenter(d, surface.FilterBilinear)
//	if err := p.Present(frame); err != nil {
//	    return err
//	}
package surface
