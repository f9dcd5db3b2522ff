// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal"
)

// TargetFormat is the color format of every render target the program
// draws into and of the pixels read back from it.
const TargetFormat = gputypes.TextureFormatRGBA8Unorm

// Locations are the reflected positions of the program's named inputs.
type Locations struct {
	// Vertex attribute shader locations.
	VertexPosition uint32
	TexCoord       uint32

	// Uniform block binding, its size in bytes, and field byte offsets.
	UniformBinding uint32
	UniformSize    uint64
	CanvasWidth    uint64
	CanvasHeight   uint64
	Colorscheme    uint64

	// PaletteLen is the compiled-in length of the colorscheme array.
	PaletteLen int

	// Resource bindings of the sampled image and its sampler.
	Image   uint32
	Sampler uint32
}

// Program is a linked render pipeline built from a vertex and a fragment
// WGSL stage. It is valid only when BuildProgram succeeded; a failed build
// never yields a Program.
type Program struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	locs Locations
}

// BuildProgram compiles each stage independently, links them into one
// shader module and render pipeline, and resolves every attribute and
// uniform by name.
//
// Stage failures return *CompileError. Link failures, interface mismatches
// between the stages and unresolved names return *LinkError.
func BuildProgram(device hal.Device, vertexSrc, fragmentSrc string) (*Program, error) {
	vmod, err := compileStage(StageVertex, vertexSrc, ir.StageVertex)
	if err != nil {
		return nil, err
	}
	fmod, err := compileStage(StageFragment, fragmentSrc, ir.StageFragment)
	if err != nil {
		return nil, err
	}

	if err := checkInterface(vmod, fmod); err != nil {
		return nil, err
	}

	// Both stages live in one WGSL module for the pipeline.
	src := vertexSrc + "\n" + fragmentSrc
	linked, err := compileStage(StageFragment, src, ir.StageVertex)
	if err != nil {
		return nil, &LinkError{Log: "merge stages", Err: err}
	}

	refl := reflectModule(linked)
	locs, err := resolve(refl)
	if err != nil {
		return nil, err
	}

	p := &Program{device: device, locs: locs}
	if err := p.create(src, refl); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("gpu: program linked",
		"uniform_size", locs.UniformSize,
		"palette_len", locs.PaletteLen)
	return p, nil
}

// checkInterface verifies that every location the fragment stage reads is
// written by the vertex stage.
func checkInterface(vmod, fmod *ir.Module) error {
	outs := stageOutputs(vmod, entryPoint(vmod, ir.StageVertex))
	ins := stageInputs(fmod, entryPoint(fmod, ir.StageFragment))
	for name, loc := range ins {
		if !outs[loc] {
			return &LinkError{Log: fmt.Sprintf("fragment input %q at location %d has no vertex output", name, loc)}
		}
	}
	return nil
}

// resolve turns a reflection into Locations, failing on any missing name.
func resolve(r *reflection) (Locations, error) {
	if missing := r.missing(); len(missing) > 0 {
		return Locations{}, &LinkError{Log: "unresolved names: " + strings.Join(missing, ", ")}
	}

	cw := r.fields[UniformCanvasWidth]
	ch := r.fields[UniformCanvasHeight]
	cs := r.fields[UniformColorscheme]
	if cw.binding != cs.binding || ch.binding != cs.binding {
		return Locations{}, &LinkError{Log: "canvasWidth, canvasHeight and colorscheme must share one uniform block"}
	}
	if !r.paletteKnown {
		return Locations{}, &LinkError{Log: "colorscheme must be a fixed-size array<vec4<f32>, N>"}
	}
	if r.sampler == nil {
		return Locations{}, &LinkError{Log: "no sampler bound for image"}
	}
	if cs.group != 0 || r.image.Group != 0 || r.sampler.Group != 0 {
		return Locations{}, &LinkError{Log: "all resources must be in bind group 0"}
	}

	size := uint64(r.blockSize[cs.binding])
	if need := uint64(cs.offset) + uint64(r.paletteLen)*16; size < need {
		size = need
	}
	return Locations{
		VertexPosition: r.attributes[AttribVertexPosition],
		TexCoord:       r.attributes[AttribTexCoord],
		UniformBinding: cs.binding,
		UniformSize:    size,
		CanvasWidth:    uint64(cw.offset),
		CanvasHeight:   uint64(ch.offset),
		Colorscheme:    uint64(cs.offset),
		PaletteLen:     r.paletteLen,
		Image:          r.image.Binding,
		Sampler:        r.sampler.Binding,
	}, nil
}

// create builds the HAL objects. On failure the partially created objects
// stay on p for Destroy.
func (p *Program) create(src string, r *reflection) error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "retint_shader",
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return &LinkError{Log: "create shader module", Err: err}
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "retint_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    p.locs.UniformBinding,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    p.locs.Image,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    p.locs.Sampler,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return &LinkError{Log: "create bind group layout", Err: err}
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "retint_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return &LinkError{Log: "create pipeline layout", Err: err}
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "retint_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: r.vertexEntry,
			Buffers:    quadVertexLayout(p.locs),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: r.fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    TargetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return &LinkError{Log: "create render pipeline", Err: err}
	}
	p.pipeline = pipeline
	return nil
}

// Locations returns the reflected input locations.
func (p *Program) Locations() Locations { return p.locs }

// Destroy releases the pipeline objects in reverse creation order. Safe to
// call more than once.
func (p *Program) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

func (p *Program) valid() bool { return p != nil && p.pipeline != nil }
