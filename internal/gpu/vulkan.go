//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	// Register Vulkan backend so hal.GetBackend can find it. Build with
	// -tags nogpu to leave it out; OpenDevice then reports ErrNoBackend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)
