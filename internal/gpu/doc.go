// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements the palette remap pipeline on gogpu/wgpu HAL.
//
// This is an internal package used by retint for GPU rendering. It draws a
// full-viewport quad whose fragment stage replaces every sampled texel with
// the nearest entry of a uniform colorscheme array.
//
// # Architecture Overview
//
//	Device -> Context { Program, GeometryBuffers, TextureSlot, PaletteUniform, OffscreenSurface }
//
// Key components:
//
//   - Device: an opened or shared HAL device and queue
//   - Program: WGSL stages compiled with naga, linked into one render
//     pipeline, attributes and uniforms resolved by name via reflection
//   - GeometryBuffers: static quad positions and texture coordinates
//   - TextureSlot: the single mipmapped image texture and its sampler
//   - PaletteUniform: canvas size and the normalized colorscheme
//   - OffscreenSurface: the render target and its readback staging buffer
//
// A Context renders into its offscreen target and reads the pixels back
// after every draw; nothing is presented to a window.
//
// # Orientation
//
// Images are uploaded with their rows flipped so that the quad's texture
// coordinates, which grow upward, show them upright. The render target is
// read back top row first.
//
// # Errors
//
// Shader failures return *CompileError or *LinkError, image uploads
// *UploadError. Device loss anywhere is reported as *ContextLostError.
//
// # Build Tags
//
// The Vulkan backend is registered unless built with -tags nogpu, in which
// case OpenDevice returns ErrNoBackend.
package gpu
