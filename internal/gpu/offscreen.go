// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the row pitch alignment required for texture to
// buffer copies.
const copyRowAlignment = 256

// OffscreenSurface is the render target the program draws into, together
// with the staging buffer its pixels are read back through. It is sized
// independently of the loaded image; Resize reallocates only when the
// dimensions actually change.
type OffscreenSurface struct {
	device hal.Device

	texture hal.Texture
	view    hal.TextureView
	staging hal.Buffer
	width   int
	height  int

	reallocs int
}

// NewOffscreenSurface allocates a width x height target.
func NewOffscreenSurface(device hal.Device, width, height int) (*OffscreenSurface, error) {
	s := &OffscreenSurface{device: device}
	if _, err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize makes the target width x height. It reports whether the target
// was reallocated; matching dimensions are a no-op. On failure the
// previous target is kept.
func (s *OffscreenSurface) Resize(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("resize surface to %dx%d: dimensions must be positive", width, height)
	}
	if s.texture != nil && width == s.width && height == s.height {
		return false, nil
	}

	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "retint_offscreen",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return false, classify("create offscreen texture", err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "retint_offscreen_view",
		Format:        TargetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return false, classify("create offscreen view", err)
	}
	staging, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "retint_readback",
		Size:  uint64(alignedRowBytes(width)) * uint64(height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.device.DestroyTextureView(view)
		s.device.DestroyTexture(tex)
		return false, classify("create readback buffer", err)
	}

	s.release()
	s.texture, s.view, s.staging = tex, view, staging
	s.width, s.height = width, height
	s.reallocs++
	slogger().Debug("gpu: offscreen surface allocated", "width", width, "height", height)
	return true, nil
}

// Size returns the current target dimensions.
func (s *OffscreenSurface) Size() (int, int) { return s.width, s.height }

// Reallocations returns how many times the target has been allocated.
func (s *OffscreenSurface) Reallocations() int { return s.reallocs }

// attachment returns the color attachment that clears the target to
// opaque black before drawing.
func (s *OffscreenSurface) attachment() hal.RenderPassColorAttachment {
	return hal.RenderPassColorAttachment{
		View:       s.view,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// encodeReadback records the copy of the target into the staging buffer,
// with the usage transitions around it.
func (s *OffscreenSurface) encodeReadback(enc hal.CommandEncoder) {
	rng := hal.TextureRange{Aspect: gputypes.TextureAspectAll, MipLevelCount: 1, ArrayLayerCount: 1}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.texture,
		Range:   rng,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(s.texture, s.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			BytesPerRow:  alignedRowBytes(s.width),
			RowsPerImage: uint32(s.height),
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  s.texture,
			MipLevel: 0,
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: uint32(s.width), Height: uint32(s.height), DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.texture,
		Range:   rng,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
}

// readStaging maps the staging buffer and returns its pixels with the row
// padding stripped. Must run after the readback submission completed.
func (s *OffscreenSurface) readStaging() (*image.NRGBA, error) {
	pitch := int(alignedRowBytes(s.width))
	size := uint64(pitch) * uint64(s.height)
	m, err := s.device.MapBuffer(s.staging, 0, size)
	if err != nil {
		return nil, classify("map readback buffer", err)
	}
	src := unsafe.Slice((*byte)(m.Ptr), size)

	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	rowBytes := s.width * 4
	for y := 0; y < s.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
	if err := s.device.UnmapBuffer(s.staging); err != nil {
		return nil, classify("unmap readback buffer", err)
	}
	return img, nil
}

func (s *OffscreenSurface) release() {
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
}

// Destroy releases the target and its staging buffer.
func (s *OffscreenSurface) Destroy() {
	s.release()
	s.width, s.height = 0, 0
}

// alignedRowBytes returns the padded row pitch of a width-pixel RGBA8 row.
func alignedRowBytes(width int) uint32 {
	return (uint32(width)*4 + copyRowAlignment - 1) &^ (copyRowAlignment - 1)
}
