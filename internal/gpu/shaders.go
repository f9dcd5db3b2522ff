// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
)

// Embedded WGSL shader sources.

// DefaultVertexShader positions the full-viewport quad and forwards its
// texture coordinates. Entry point: vs_main.
//
//go:embed shaders/quad_vertex.wgsl
var DefaultVertexShader string

// DefaultFragmentShader remaps the sampled image onto the colorscheme
// uniform. Entry point: fs_main.
//
//go:embed shaders/remap_fragment.wgsl
var DefaultFragmentShader string

// Names the program resolves by reflection. Any of them missing from a
// shader pair is a link failure.
const (
	AttribVertexPosition = "vertexPosition"
	AttribTexCoord       = "texCoord"

	UniformCanvasWidth  = "canvasWidth"
	UniformCanvasHeight = "canvasHeight"
	UniformImage        = "image"
	UniformColorscheme  = "colorscheme"
)
