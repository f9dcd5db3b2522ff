// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is an opened HAL device and its queue. A Device opened by
// OpenDevice owns the instance and destroys it on Destroy; one adopted from
// an external provider is left alive.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	limits   gputypes.Limits
	name     string
	external bool
}

// OpenDevice opens the preferred adapter of the given backend. Discrete and
// integrated GPUs are preferred over software or virtual adapters.
func OpenDevice(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoBackend, backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	slogger().Info("gpu: adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType,
		"backend", backend)
	return &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		limits:   limits,
		name:     selected.Info.Name,
	}, nil
}

// NewDevice wraps an already opened device and queue. The caller keeps
// ownership; Destroy does not release them.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:   device,
		queue:    queue,
		limits:   gputypes.DefaultLimits(),
		external: true,
	}
}

// DeviceFromProvider adopts the device of an external provider. Accepted are
// values exposing HalDevice/HalQueue, as the gogpu windowing integration
// does, and gpucontext.DeviceProvider implementations whose Device and
// Queue are HAL handles.
func DeviceFromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}

	var rawDevice, rawQueue any
	name := ""
	switch p := provider.(type) {
	case halProvider:
		rawDevice, rawQueue = p.HalDevice(), p.HalQueue()
	case gpucontext.DeviceProvider:
		rawDevice, rawQueue = p.Device(), p.Queue()
		name = p.AdapterInfo().Name
	default:
		return nil, ErrBadProvider
	}

	device, ok := rawDevice.(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: device is %T", ErrBadProvider, rawDevice)
	}
	queue, ok := rawQueue.(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: queue is %T", ErrBadProvider, rawQueue)
	}
	d := NewDevice(device, queue)
	d.name = name
	slogger().Debug("gpu: using shared device", "adapter", name)
	return d, nil
}

// Name returns the adapter name, if known.
func (d *Device) Name() string { return d.name }

// MaxTextureSize returns the largest 2D texture dimension the device accepts.
func (d *Device) MaxTextureSize() uint32 { return d.limits.MaxTextureDimension2D }

// WaitIdle blocks until all submitted work has completed.
func (d *Device) WaitIdle() error {
	return classify("wait idle", d.device.WaitIdle())
}

// encoder creates a command encoder already in the recording state.
func (d *Device) encoder(label string) (hal.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, classify("create command encoder", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return nil, classify("begin encoding", err)
	}
	return enc, nil
}

// submit ends the encoder, submits its command buffer and waits for it.
// The encoder is destroyed in every case. Timeouts are not modeled: a
// failed wait is reported, never retried.
func (d *Device) submit(enc hal.CommandEncoder) error {
	defer enc.Destroy()
	cmd, err := enc.EndEncoding()
	if err != nil {
		return classify("end encoding", err)
	}
	defer d.device.FreeCommandBuffer(cmd)
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return classify("submit", err)
	}
	return d.WaitIdle()
}

// discard abandons a recording encoder after a failure.
func discard(enc hal.CommandEncoder) {
	enc.DiscardEncoding()
	enc.Destroy()
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Destroy releases the device and instance if they are owned.
func (d *Device) Destroy() {
	if d == nil || d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
