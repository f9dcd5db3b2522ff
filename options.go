package retint

import (
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/retint/palette"
	"github.com/gogpu/retint/surface"
)

// Default preview surface dimensions used when no display is configured.
const (
	DefaultDisplayWidth  = 640
	DefaultDisplayHeight = 480
)

// DefaultExportFilename is the suggested file name of an export.
const DefaultExportFilename = "processed_image.png"

// Option configures a Renderer during creation.
//
// Example:
//
//	// GPU renderer with the default theme, previewing into a 1024x768 image
//	r, err := retint.New(retint.WithDisplaySize(1024, 768))
//
//	// CPU renderer, for headless machines
//	r, err := retint.New(retint.WithSoftware())
type Option func(*options)

type options struct {
	provider any
	backend  gputypes.Backend
	software bool
	fallback bool

	vertexSrc   string
	fragmentSrc string

	palette palette.Palette

	scheduler     Scheduler
	frameInterval time.Duration

	display       surface.Display
	displayWidth  int
	displayHeight int
	filter        surface.Filter

	workers  int
	filename string
}

func defaultOptions() options {
	return options{
		backend:       gputypes.BackendVulkan,
		fallback:      true,
		palette:       palette.Default(),
		frameInterval: DefaultFrameInterval,
		displayWidth:  DefaultDisplayWidth,
		displayHeight: DefaultDisplayHeight,
		filter:        surface.FilterBilinear,
		filename:      DefaultExportFilename,
	}
}

// WithDevice renders on a device owned by the caller. provider must expose
// HalDevice() and HalQueue() returning HAL handles, as the gogpu windowing
// integration does, or implement gpucontext.DeviceProvider. The renderer
// never destroys a shared device.
func WithDevice(provider any) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithBackend selects the HAL backend opened when no device is shared.
// The default is Vulkan.
func WithBackend(b gputypes.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithSoftware renders on the CPU instead of a GPU.
func WithSoftware() Option {
	return func(o *options) {
		o.software = true
	}
}

// WithoutFallback makes New fail when no GPU can be opened instead of
// falling back to the CPU renderer.
func WithoutFallback() Option {
	return func(o *options) {
		o.fallback = false
	}
}

// WithShaderSources replaces the built-in WGSL stages. The stages must
// declare the vertexPosition and texCoord attributes and the canvasWidth,
// canvasHeight, image and colorscheme uniforms. An empty string keeps the
// built-in stage. Custom shaders only apply to the GPU renderer.
func WithShaderSources(vertex, fragment string) Option {
	return func(o *options) {
		o.vertexSrc = vertex
		o.fragmentSrc = fragment
	}
}

// WithPalette sets the initial palette. The default is palette.Default().
func WithPalette(p palette.Palette) Option {
	return func(o *options) {
		o.palette = p.Clone()
	}
}

// WithScheduler sets the frame scheduler driving DrawPreview and
// DrawFullResolution. The caller keeps ownership of s.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithFrameInterval sets the period of the frame scheduler the renderer
// creates when none is given.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.frameInterval = d
		}
	}
}

// WithDisplay presents previews on d. The preview surface follows the
// display size. The caller keeps ownership of d.
func WithDisplay(d surface.Display) Option {
	return func(o *options) {
		o.display = d
	}
}

// WithDisplaySize presents previews on an in-memory display of the given
// size. Ignored when WithDisplay is also given.
func WithDisplaySize(width, height int) Option {
	return func(o *options) {
		o.displayWidth = width
		o.displayHeight = height
	}
}

// WithFilter sets the filter used when a frame must be scaled to the
// display.
func WithFilter(f surface.Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithWorkers bounds the goroutines of the CPU renderer. 0 means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.workers = n
		}
	}
}

// WithExportFilename sets the name returned by Export.Filename.
func WithExportFilename(name string) Option {
	return func(o *options) {
		if name != "" {
			o.filename = name
		}
	}
}
