package retint

import (
	"fmt"
	"image"
	"image/png"
	"io"
)

// Export is a full resolution render of the loaded image.
type Export struct {
	img  *image.NRGBA
	name string
}

// Image returns the exported pixels. Its size equals the source image.
func (e *Export) Image() *image.NRGBA { return e.img }

// Filename returns the suggested file name for the export.
func (e *Export) Filename() string { return e.name }

// Size returns the export dimensions.
func (e *Export) Size() (int, int) {
	b := e.img.Bounds()
	return b.Dx(), b.Dy()
}

// EncodePNG writes the export to w as PNG.
func (e *Export) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, e.img); err != nil {
		return fmt.Errorf("retint: encode export: %w", err)
	}
	return nil
}
