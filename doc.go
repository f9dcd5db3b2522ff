// Package retint remaps images onto fixed-size color palettes on the GPU.
//
// # Overview
//
// Every pixel of the loaded image is replaced by the nearest entry of a
// 40-color palette, measured by squared distance in RGB. The source alpha
// is kept and multiplied by the entry's alpha. A Renderer previews the
// result at the size of its display and exports it at the size of the
// source image.
//
// # Quick Start
//
//	r, err := retint.New(retint.WithDisplaySize(800, 600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	if err := r.LoadImage(data); err != nil {
//	    log.Fatal(err)
//	}
//	theme, _ := palette.DefaultThemes().Lookup("mocha")
//	if err := r.SetPalette(theme.Palette); err != nil {
//	    log.Fatal(err)
//	}
//	exp, err := r.RenderFullResolution(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, _ := os.Create(exp.Filename())
//	defer f.Close()
//	exp.EncodePNG(f)
//
// # Drawing
//
// RenderPreview and RenderFullResolution draw synchronously. DrawPreview
// and DrawFullResolution schedule a draw for the next frame of the
// renderer's Scheduler and return a Pending. Only the latest request
// survives: a draw replaced before its frame resolves with ErrSuperseded
// and its callback is never called. LoadImage and SetPalette schedule a
// preview themselves.
//
// An export resizes the offscreen render target to the image size, draws,
// reads the pixels back and restores the previous size, whether or not the
// draw succeeded.
//
// # Backends
//
// The GPU pipeline runs on gogpu/wgpu. New opens a Vulkan device unless a
// shared device is given with WithDevice, and falls back to a CPU renderer
// with the same semantics when no GPU is available. WithSoftware selects
// the CPU renderer directly.
//
// # Errors
//
// Shader problems surface from New as *CompileError or *LinkError. Image
// loading returns *DecodeError or *UploadError, palettes of the wrong
// length *PaletteSizeError. A lost GPU device returns *ContextLostError
// and moves the renderer to StateLost until Reinitialize.
package retint
