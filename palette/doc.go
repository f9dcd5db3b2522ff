// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package palette defines the fixed-size color palettes ("themes") that the
// retint renderer remaps images onto, and loads theme lists from JSON.
//
// A theme file is an array of named palettes:
//
//	[
//	  {"name": "Catppuccin Mocha", "data": [[245, 224, 220, 255], "#f2cdcd", ...]}
//	]
//
// Every palette holds exactly [Size] entries. DefaultThemes returns the
// embedded Catppuccin flavors; the entry at [DefaultIndex] is the fallback
// palette used before a theme is chosen.
package palette
