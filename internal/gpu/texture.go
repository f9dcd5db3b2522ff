// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

var (
	errEmptyImage    = errors.New("image has no pixels")
	errImageTooLarge = errors.New("image exceeds device texture limit")
)

// TextureSlot owns the single texture holding the loaded image, plus the
// sampler and bind group that expose it to the program.
//
// Before the first Replace the slot holds a 1x1 opaque black placeholder so
// the renderer is drawable at all times.
type TextureSlot struct {
	device  hal.Device
	queue   hal.Queue
	maxSize uint32

	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	width   int
	height  int
	levels  uint32
	loaded  bool
	uploads int

	bindGroup    hal.BindGroup
	boundView    hal.TextureView
	boundUniform hal.Buffer
}

// NewTextureSlot returns an empty slot. Call Create before drawing.
func NewTextureSlot(device hal.Device, queue hal.Queue, maxSize uint32) *TextureSlot {
	return &TextureSlot{device: device, queue: queue, maxSize: maxSize}
}

// Create allocates the sampler and the placeholder texture. It is a no-op
// if a texture already exists.
func (s *TextureSlot) Create() error {
	if s.texture != nil {
		return nil
	}
	if s.sampler == nil {
		sampler, err := s.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "retint_image_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.FilterModeLinear,
			LodMaxClamp:  32,
		})
		if err != nil {
			return fmt.Errorf("create image sampler: %w", err)
		}
		s.sampler = sampler
	}

	placeholder := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	placeholder.SetNRGBA(0, 0, color.NRGBA{A: 255})
	if err := s.Replace(placeholder); err != nil {
		return err
	}
	s.loaded = false
	return nil
}

// Replace uploads img into the slot. Every upload goes to a newly
// allocated texture carrying the full mip chain; the previous texture is
// released only after all levels were written.
//
// Failures return *UploadError and leave the previous texture bound and
// untouched.
func (s *TextureSlot) Replace(img *image.NRGBA) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return &UploadError{Width: w, Height: h, Err: errEmptyImage}
	}
	if s.maxSize > 0 && (uint32(w) > s.maxSize || uint32(h) > s.maxSize) {
		return &UploadError{Width: w, Height: h, Err: errImageTooLarge}
	}

	chain := mipChain(flipRows(img))
	tex, view, err := s.allocate(w, h, uint32(len(chain)))
	if err != nil {
		return &UploadError{Width: w, Height: h, Err: classify("allocate texture", err)}
	}
	for level, m := range chain {
		if err := s.writeLevel(tex, uint32(level), m); err != nil {
			s.device.DestroyTextureView(view)
			s.device.DestroyTexture(tex)
			return &UploadError{Width: w, Height: h, Err: classify("write texture", err)}
		}
	}

	s.release()
	s.texture, s.view = tex, view
	s.width, s.height = w, h
	s.levels = uint32(len(chain))
	s.uploads++
	s.loaded = true
	slogger().Debug("gpu: image texture uploaded", "width", w, "height", h, "mips", s.levels)
	return nil
}

// Uploads returns how many textures have been swapped in, the placeholder
// included.
func (s *TextureSlot) Uploads() int { return s.uploads }

func (s *TextureSlot) allocate(w, h int, levels uint32) (hal.Texture, hal.TextureView, error) {
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "retint_image",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "retint_image_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: levels,
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return nil, nil, err
	}
	return tex, view, nil
}

func (s *TextureSlot) writeLevel(tex hal.Texture, level uint32, m *image.NRGBA) error {
	w, h := uint32(m.Rect.Dx()), uint32(m.Rect.Dy())
	return s.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: level},
		m.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(m.Stride), RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// Bind returns the bind group exposing the uniform block, the image view
// and its sampler. The group is rebuilt only when the view or the uniform
// buffer changed, so calling Bind before every draw is cheap.
func (s *TextureSlot) Bind(p *Program, uniforms hal.Buffer) (hal.BindGroup, error) {
	if s.view == nil {
		return nil, fmt.Errorf("bind image: texture not created")
	}
	if s.bindGroup != nil && s.boundView == s.view && s.boundUniform == uniforms {
		return s.bindGroup, nil
	}
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	locs := p.Locations()
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "retint_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: locs.UniformBinding, Resource: gputypes.BufferBinding{Buffer: uniforms.NativeHandle(), Size: locs.UniformSize}},
			{Binding: locs.Image, Resource: gputypes.TextureViewBinding{TextureView: s.view.NativeHandle()}},
			{Binding: locs.Sampler, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, classify("create bind group", err)
	}
	s.bindGroup, s.boundView, s.boundUniform = bg, s.view, uniforms
	return bg, nil
}

// Size returns the texture dimensions.
func (s *TextureSlot) Size() (int, int) { return s.width, s.height }

// Loaded reports whether an image replaced the placeholder.
func (s *TextureSlot) Loaded() bool { return s.loaded }

// MipLevels returns the number of mip levels of the current texture.
func (s *TextureSlot) MipLevels() uint32 { return s.levels }

// release destroys the bind group and the current texture.
func (s *TextureSlot) release() {
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup, s.boundView, s.boundUniform = nil, nil, nil
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

// Destroy releases every GPU object the slot owns.
func (s *TextureSlot) Destroy() {
	s.release()
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	s.width, s.height, s.levels, s.loaded = 0, 0, 0, false
}

// flipRows returns a tightly packed copy of img with its rows in reverse
// order. Texture row 0 then holds the bottom of the image, which puts the
// image upright under the quad's texture coordinates.
func flipRows(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowBytes := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.PixOffset(b.Min.X, b.Max.Y-1-y)
		copy(out.Pix[y*out.Stride:y*out.Stride+rowBytes], img.Pix[src:src+rowBytes])
	}
	return out
}

// mipChain returns base followed by successively halved levels down to
// 1x1, each produced by bilinear downsampling of the previous level.
func mipChain(base *image.NRGBA) []*image.NRGBA {
	chain := []*image.NRGBA{base}
	cur := base
	for cur.Rect.Dx() > 1 || cur.Rect.Dy() > 1 {
		w := max(1, cur.Rect.Dx()/2)
		h := max(1, cur.Rect.Dy()/2)
		next := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Rect, cur, cur.Rect, draw.Src, nil)
		chain = append(chain, next)
		cur = next
	}
	return chain
}
