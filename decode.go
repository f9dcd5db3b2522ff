package retint

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var errNoPixels = errors.New("image has no pixels")

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP bytes into a
// tightly packed NRGBA image anchored at the origin. Failures return
// *DecodeError.
func DecodeImage(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, &DecodeError{Err: fmt.Errorf("%s: %w", format, errNoPixels)}
	}
	Logger().Debug("retint: image decoded", "format", format, "width", b.Dx(), "height", b.Dy())
	return toNRGBA(src), nil
}

// toNRGBA returns img as *image.NRGBA with bounds starting at (0, 0),
// converting or copying as needed.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
