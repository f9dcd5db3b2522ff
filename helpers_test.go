package retint

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/retint/surface"
)

// gradient returns a w x h image with red increasing to the right and green
// increasing downward.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, w-1)),
				G: uint8(y * 255 / max(1, h-1)),
				B: 96,
				A: 255,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// newTestRenderer returns a CPU renderer driven by a manual scheduler and
// previewing into a 320x240 in-memory display.
func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	base := []Option{
		WithSoftware(),
		WithScheduler(sched),
		WithDisplaySize(320, 240),
		WithWorkers(2),
	}
	r, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, sched
}

func imageDisplay(t *testing.T, r *Renderer) *surface.ImageDisplay {
	t.Helper()
	d, ok := r.Display().(*surface.ImageDisplay)
	if !ok {
		t.Fatalf("Display() is %T, want *surface.ImageDisplay", r.Display())
	}
	return d
}

// noopProvider shares a device of the noop HAL backend. Buffers on that
// backend hold real bytes; texture copies and draws are stubs, so frames
// read back as zeros.
type noopProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p noopProvider) HalDevice() any { return p.device }
func (p noopProvider) HalQueue() any  { return p.queue }

func newNoopProvider(t *testing.T) noopProvider {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("noop backend exposes no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return noopProvider{device: openDev.Device, queue: openDev.Queue}
}
