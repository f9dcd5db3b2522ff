// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoBackend is returned when the requested HAL backend is not
	// registered in this binary.
	ErrNoBackend = errors.New("retint: gpu backend not available")

	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("retint: no gpu adapters found")

	// ErrBadProvider is returned when an external device provider does not
	// expose HAL device and queue handles.
	ErrBadProvider = errors.New("retint: provider does not expose hal device and queue")
)

// Stage identifies a shader stage in diagnostics.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
)

// CompileError reports a shader stage that failed to compile. Log holds the
// compiler diagnostics for that stage.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("retint: compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that compiled per stage but could not be
// linked into a usable pipeline, including unresolved attribute or uniform
// names.
type LinkError struct {
	Log string
	Err error
}

func (e *LinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retint: link program: %s: %v", e.Log, e.Err)
	}
	return "retint: link program: " + e.Log
}

func (e *LinkError) Unwrap() error { return e.Err }

// DecodeError reports source bytes that are not a decodable raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "retint: decode image: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// UploadError reports an image the GPU refused to accept as a texture.
type UploadError struct {
	Width, Height int
	Err           error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("retint: upload %dx%d texture: %v", e.Width, e.Height, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ContextLostError reports that the GPU device was lost. Every GPU resource
// owned by the context is invalid afterwards.
type ContextLostError struct {
	Op  string
	Err error
}

func (e *ContextLostError) Error() string {
	return fmt.Sprintf("retint: gpu context lost during %s: %v", e.Op, e.Err)
}

func (e *ContextLostError) Unwrap() error { return e.Err }

// classify converts device-lost failures into *ContextLostError and wraps
// everything else with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var lost *ContextLostError
	if errors.As(err, &lost) {
		return err
	}
	if errors.Is(err, hal.ErrDeviceLost) {
		return &ContextLostError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
