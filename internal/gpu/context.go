// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/retint/palette"
)

// ContextConfig selects the shaders and the initial render target size.
// Empty sources fall back to the embedded defaults.
type ContextConfig struct {
	VertexSource   string
	FragmentSource string
	Width          int
	Height         int
}

// Context is one palette remap pipeline on a device: the linked program,
// the quad, the image slot, the palette uniform and the offscreen target.
// It is not safe for concurrent use.
type Context struct {
	dev *Device

	program  *Program
	geometry *GeometryBuffers
	texture  *TextureSlot
	uniform  *PaletteUniform
	target   *OffscreenSurface
}

// NewContext builds every resource in dependency order. On failure the
// resources created so far are released.
func NewContext(dev *Device, cfg ContextConfig) (*Context, error) {
	if cfg.VertexSource == "" {
		cfg.VertexSource = DefaultVertexShader
	}
	if cfg.FragmentSource == "" {
		cfg.FragmentSource = DefaultFragmentShader
	}
	device, queue := dev.HAL()
	c := &Context{dev: dev}

	var err error
	if c.program, err = BuildProgram(device, cfg.VertexSource, cfg.FragmentSource); err != nil {
		return nil, err
	}
	if c.geometry, err = NewGeometryBuffers(device, queue); err != nil {
		c.Destroy()
		return nil, classify("create geometry", err)
	}
	c.texture = NewTextureSlot(device, queue, dev.MaxTextureSize())
	if err = c.texture.Create(); err != nil {
		c.Destroy()
		return nil, err
	}
	if c.uniform, err = NewPaletteUniform(device, queue, c.program); err != nil {
		c.Destroy()
		return nil, err
	}
	if c.target, err = NewOffscreenSurface(device, cfg.Width, cfg.Height); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// PaletteLen returns the palette length the program was compiled for.
func (c *Context) PaletteLen() int { return c.program.Locations().PaletteLen }

// SetImage replaces the sampled image.
func (c *Context) SetImage(img *image.NRGBA) error { return c.texture.Replace(img) }

// ImageSize returns the dimensions of the sampled image.
func (c *Context) ImageSize() (int, int) { return c.texture.Size() }

// HasImage reports whether an image replaced the placeholder.
func (c *Context) HasImage() bool { return c.texture.Loaded() }

// SetPalette uploads p. See PaletteUniform.Set.
func (c *Context) SetPalette(p palette.Palette) error { return c.uniform.Set(p) }

// Palette returns the active palette.
func (c *Context) Palette() palette.Palette { return c.uniform.Active() }

// Resize sets the render target size. See OffscreenSurface.Resize.
func (c *Context) Resize(width, height int) (bool, error) { return c.target.Resize(width, height) }

// Size returns the render target size.
func (c *Context) Size() (int, int) { return c.target.Size() }

// Render draws the quad into the target and reads the result back,
// top row first.
func (c *Context) Render() (*image.NRGBA, error) {
	if !c.program.valid() {
		return nil, fmt.Errorf("render: program destroyed")
	}
	w, h := c.target.Size()
	if err := c.uniform.SetCanvasSize(w, h); err != nil {
		return nil, err
	}
	bg, err := c.texture.Bind(c.program, c.uniform.Buffer())
	if err != nil {
		return nil, err
	}

	enc, err := c.dev.encoder("retint_render")
	if err != nil {
		return nil, err
	}
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "retint_remap_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{c.target.attachment()},
	})
	if rp == nil {
		discard(enc)
		return nil, fmt.Errorf("render: begin render pass failed")
	}
	rp.SetPipeline(c.program.pipeline)
	rp.SetBindGroup(0, bg, nil)
	c.geometry.bind(rp)
	rp.SetViewport(0, 0, float32(w), float32(h), 0, 1)
	rp.Draw(QuadVertexCount, 1, 0, 0)
	rp.End()

	c.target.encodeReadback(enc)
	if err := c.dev.submit(enc); err != nil {
		return nil, err
	}
	return c.target.readStaging()
}

// Destroy releases every resource in reverse creation order. The device
// itself is left to its owner.
func (c *Context) Destroy() {
	if c.target != nil {
		c.target.Destroy()
		c.target = nil
	}
	if c.uniform != nil {
		c.uniform.Destroy()
		c.uniform = nil
	}
	if c.texture != nil {
		c.texture.Destroy()
		c.texture = nil
	}
	if c.geometry != nil {
		c.geometry.Destroy()
		c.geometry = nil
	}
	if c.program != nil {
		c.program.Destroy()
		c.program = nil
	}
}
