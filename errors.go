package retint

import (
	"errors"

	"github.com/gogpu/retint/internal/gpu"
	"github.com/gogpu/retint/palette"
)

// Error types returned by the renderer. Use errors.As to inspect them.
type (
	// CompileError reports a shader stage that failed to compile.
	CompileError = gpu.CompileError

	// LinkError reports a program that could not be linked, including
	// attribute or uniform names that did not resolve.
	LinkError = gpu.LinkError

	// DecodeError reports image bytes that are not a decodable raster image.
	DecodeError = gpu.DecodeError

	// UploadError reports an image the renderer refused as a texture.
	UploadError = gpu.UploadError

	// ContextLostError reports a lost GPU device. The renderer stays in
	// StateLost until Reinitialize succeeds.
	ContextLostError = gpu.ContextLostError

	// PaletteSizeError reports a palette whose length differs from the
	// compiled-in size.
	PaletteSizeError = palette.SizeError
)

var (
	// ErrSuperseded resolves a scheduled draw that was replaced by a later
	// request before its frame came. Its callback is never invoked.
	ErrSuperseded = errors.New("retint: draw superseded")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("retint: renderer closed")

	// ErrNoImage is returned when exporting before any image was loaded.
	ErrNoImage = errors.New("retint: no image loaded")

	// ErrNotReady is returned by a Renderer that was not created with New.
	ErrNotReady = errors.New("retint: renderer not initialized")
)

// IsContextLost reports whether err carries a *ContextLostError.
func IsContextLost(err error) bool {
	var lost *ContextLostError
	return errors.As(err, &lost)
}
