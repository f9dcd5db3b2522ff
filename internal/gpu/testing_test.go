// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

var errInjected = errors.New("injected write failure")

// newNoopDevice opens a device on the noop backend. Buffers on that backend
// hold real bytes, so uniform uploads can be inspected; textures and draws
// are stubs.
func newNoopDevice(t *testing.T) *Device {
	t.Helper()
	openDev := openNoop(t)
	return NewDevice(openDev.Device, openDev.Queue)
}

// newTrackedDevice is newNoopDevice with a device that numbers every
// texture it creates and a queue that records texture writes and can be
// told to fail one.
func newTrackedDevice(t *testing.T) (*Device, *trackingDevice, *faultQueue) {
	t.Helper()
	openDev := openNoop(t)
	td := &trackingDevice{Device: openDev.Device}
	fq := &faultQueue{Queue: openDev.Queue}
	return NewDevice(td, fq), td, fq
}

func openNoop(t *testing.T) hal.OpenDevice {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposes no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev
}

func newTestContext(t *testing.T, width, height int) *Context {
	t.Helper()
	return newContextOn(t, newNoopDevice(t), width, height)
}

func newContextOn(t *testing.T, dev *Device, width, height int) *Context {
	t.Helper()
	c, err := NewContext(dev, ContextConfig{Width: width, Height: height})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

// trackedTexture gives noop textures an identity; the noop backend hands
// out zero-size handles that may share an address.
type trackedTexture struct {
	hal.Texture
	id int
}

type trackingDevice struct {
	hal.Device
	textures   int
	bindGroups int
	destroyed  []int
}

func (d *trackingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	tex, err := d.Device.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	d.textures++
	return &trackedTexture{Texture: tex, id: d.textures}, nil
}

func (d *trackingDevice) DestroyTexture(tex hal.Texture) {
	if tt, ok := tex.(*trackedTexture); ok {
		d.destroyed = append(d.destroyed, tt.id)
		tex = tt.Texture
	}
	d.Device.DestroyTexture(tex)
}

func (d *trackingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.bindGroups++
	return d.Device.CreateBindGroup(desc)
}

// textureWrite is one recorded WriteTexture call.
type textureWrite struct {
	texture int
	level   uint32
}

type faultQueue struct {
	hal.Queue
	writes []textureWrite
	failAt int // 1-based index into writes; 0 never fails
}

func (q *faultQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	id := 0
	if tt, ok := dst.Texture.(*trackedTexture); ok {
		id = tt.id
	}
	q.writes = append(q.writes, textureWrite{texture: id, level: dst.MipLevel})
	if q.failAt > 0 && len(q.writes) == q.failAt {
		return errInjected
	}
	return q.Queue.WriteTexture(dst, data, layout, size)
}
