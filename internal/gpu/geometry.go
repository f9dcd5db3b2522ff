// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// QuadVertexCount is the number of triangle-strip vertices in the quad.
const QuadVertexCount = 4

// quadPositions covers the whole viewport in normalized device coordinates,
// in triangle-strip order.
var quadPositions = [QuadVertexCount * 2]float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// quadTexCoords maps the quad corners onto the full texture.
var quadTexCoords = [QuadVertexCount * 2]float32{
	0, 0,
	1, 0,
	0, 1,
	1, 1,
}

// quadVertexLayout describes the two vertex buffers: positions in slot 0
// and texture coordinates in slot 1, at the reflected shader locations.
func quadVertexLayout(locs Locations) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: locs.VertexPosition},
			},
		},
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: locs.TexCoord},
			},
		},
	}
}

// GeometryBuffers owns the static full-viewport quad. The contents are
// written once at creation and never modified.
type GeometryBuffers struct {
	device    hal.Device
	positions hal.Buffer
	texCoords hal.Buffer
}

// NewGeometryBuffers creates and fills the quad's vertex buffers.
func NewGeometryBuffers(device hal.Device, queue hal.Queue) (*GeometryBuffers, error) {
	g := &GeometryBuffers{device: device}
	var err error
	if g.positions, err = g.upload(queue, "retint_quad_positions", quadPositions[:]); err != nil {
		g.Destroy()
		return nil, err
	}
	if g.texCoords, err = g.upload(queue, "retint_quad_texcoords", quadTexCoords[:]); err != nil {
		g.Destroy()
		return nil, err
	}
	return g, nil
}

func (g *GeometryBuffers) upload(queue hal.Queue, label string, data []float32) (hal.Buffer, error) {
	buf, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data) * 4),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := queue.WriteBuffer(buf, 0, float32Bytes(data)); err != nil {
		g.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return buf, nil
}

// bind attaches both buffers to the render pass.
func (g *GeometryBuffers) bind(rp hal.RenderPassEncoder) {
	rp.SetVertexBuffer(0, g.positions, 0)
	rp.SetVertexBuffer(1, g.texCoords, 0)
}

// Destroy releases both buffers.
func (g *GeometryBuffers) Destroy() {
	if g.texCoords != nil {
		g.device.DestroyBuffer(g.texCoords)
		g.texCoords = nil
	}
	if g.positions != nil {
		g.device.DestroyBuffer(g.positions)
		g.positions = nil
	}
}

// float32Bytes encodes values little-endian, the layout WGSL expects.
func float32Bytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
