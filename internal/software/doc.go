// Package software is the CPU implementation of the palette remap. It
// produces the same pixels as the GPU program within rounding: each target
// pixel averages four bilinear taps a quarter pixel apart, picks the
// nearest palette entry by squared RGB distance, and keeps the source
// alpha scaled by the entry alpha.
//
// Sampling clamps to the edge and always reads the full-resolution image.
// The GPU sampler may read coarser mip levels when the target is much
// smaller than the image, so minified output can differ slightly.
package software
