package retint

import (
	"context"
	"errors"
	"image"

	"github.com/gogpu/retint/internal/gpu"
	"github.com/gogpu/retint/internal/software"
	"github.com/gogpu/retint/palette"
)

// backend is the pipeline a Renderer drives. Both implementations keep one
// image, one palette and one render target of adjustable size.
type backend interface {
	Name() string
	SetImage(img *image.NRGBA) error
	ImageSize() (int, int)
	HasImage() bool
	PaletteLen() int
	SetPalette(p palette.Palette) error
	Palette() palette.Palette
	Resize(width, height int) (bool, error)
	Size() (int, int)
	Render(ctx context.Context) (*image.NRGBA, error)
	Close()
}

// gpuBackend draws with a gpu.Context on a device it may own.
type gpuBackend struct {
	dev *gpu.Device
	ctx *gpu.Context
}

func (b *gpuBackend) Name() string {
	if n := b.dev.Name(); n != "" {
		return "gpu (" + n + ")"
	}
	return "gpu"
}

func (b *gpuBackend) SetImage(img *image.NRGBA) error        { return b.ctx.SetImage(img) }
func (b *gpuBackend) ImageSize() (int, int)                  { return b.ctx.ImageSize() }
func (b *gpuBackend) HasImage() bool                         { return b.ctx.HasImage() }
func (b *gpuBackend) PaletteLen() int                        { return b.ctx.PaletteLen() }
func (b *gpuBackend) SetPalette(p palette.Palette) error     { return b.ctx.SetPalette(p) }
func (b *gpuBackend) Palette() palette.Palette               { return b.ctx.Palette() }
func (b *gpuBackend) Resize(width, height int) (bool, error) { return b.ctx.Resize(width, height) }
func (b *gpuBackend) Size() (int, int)                       { return b.ctx.Size() }

func (b *gpuBackend) Render(ctx context.Context) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.ctx.Render()
}

func (b *gpuBackend) Close() {
	b.ctx.Destroy()
	b.dev.Destroy()
}

// softwareBackend draws on the CPU.
type softwareBackend struct {
	*software.Renderer
}

func (softwareBackend) Name() string { return "software" }

func (b softwareBackend) SetImage(img *image.NRGBA) error {
	if err := b.Renderer.SetImage(img); err != nil {
		bounds := img.Bounds()
		return &UploadError{Width: bounds.Dx(), Height: bounds.Dy(), Err: err}
	}
	return nil
}

// openBackend builds the backend the options ask for. When no GPU can be
// opened and fallback is allowed, the CPU renderer is used instead. Shader
// failures are never masked by the fallback.
func openBackend(o *options, width, height int) (backend, error) {
	if o.software {
		return newSoftwareBackend(o, width, height)
	}

	var (
		dev *gpu.Device
		err error
	)
	if o.provider != nil {
		dev, err = gpu.DeviceFromProvider(o.provider)
	} else {
		dev, err = gpu.OpenDevice(o.backend)
	}
	if err != nil {
		if o.fallback && o.provider == nil {
			Logger().Warn("retint: gpu unavailable, using software renderer", "err", err)
			return newSoftwareBackend(o, width, height)
		}
		return nil, err
	}

	ctx, err := gpu.NewContext(dev, gpu.ContextConfig{
		VertexSource:   o.vertexSrc,
		FragmentSource: o.fragmentSrc,
		Width:          width,
		Height:         height,
	})
	if err != nil {
		dev.Destroy()
		var lost *ContextLostError
		if o.fallback && o.provider == nil && errors.As(err, &lost) {
			Logger().Warn("retint: gpu lost during setup, using software renderer", "err", err)
			return newSoftwareBackend(o, width, height)
		}
		return nil, err
	}
	return &gpuBackend{dev: dev, ctx: ctx}, nil
}

func newSoftwareBackend(o *options, width, height int) (backend, error) {
	r, err := software.New(width, height, o.workers)
	if err != nil {
		return nil, err
	}
	return softwareBackend{r}, nil
}
