// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// compileStage parses, lowers and validates one WGSL stage. Any failure is
// reported as a *CompileError carrying the stage and the diagnostics.
func compileStage(stage Stage, src string, want ir.ShaderStage) (*ir.Module, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &CompileError{Stage: stage, Log: "empty source"}
	}
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, &CompileError{Stage: stage, Log: err.Error()}
	}
	if log := validate(module); log != "" {
		return nil, &CompileError{Stage: stage, Log: log}
	}
	if entryPoint(module, want) == nil {
		return nil, &CompileError{Stage: stage, Log: fmt.Sprintf("no @%s entry point", stage)}
	}
	return module, nil
}

// validate runs the IR validator and joins its messages. It returns "" for
// a valid module.
func validate(module *ir.Module) string {
	verrs, err := naga.Validate(module)
	if err != nil {
		return err.Error()
	}
	if len(verrs) == 0 {
		return ""
	}
	msgs := make([]string, len(verrs))
	for i, v := range verrs {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

func entryPoint(module *ir.Module, stage ir.ShaderStage) *ir.EntryPoint {
	for i := range module.EntryPoints {
		if module.EntryPoints[i].Stage == stage {
			return &module.EntryPoints[i]
		}
	}
	return nil
}

func locationOf(b *ir.Binding) (uint32, bool) {
	if b == nil || *b == nil {
		return 0, false
	}
	switch lb := (*b).(type) {
	case ir.LocationBinding:
		return lb.Location, true
	case *ir.LocationBinding:
		return lb.Location, true
	}
	return 0, false
}

func typeInner(module *ir.Module, h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(module.Types) {
		return nil
	}
	return module.Types[h].Inner
}

func structOf(module *ir.Module, h ir.TypeHandle) (ir.StructType, bool) {
	switch st := typeInner(module, h).(type) {
	case ir.StructType:
		return st, true
	case *ir.StructType:
		return *st, true
	}
	return ir.StructType{}, false
}

// stageInputs maps each location-bound entry point input to its location.
// Struct arguments contribute their members.
func stageInputs(module *ir.Module, ep *ir.EntryPoint) map[string]uint32 {
	out := make(map[string]uint32)
	for _, arg := range ep.Function.Arguments {
		if loc, ok := locationOf(arg.Binding); ok {
			out[arg.Name] = loc
			continue
		}
		if st, ok := structOf(module, arg.Type); ok {
			for _, m := range st.Members {
				if loc, ok := locationOf(m.Binding); ok {
					out[m.Name] = loc
				}
			}
		}
	}
	return out
}

// stageOutputs returns the set of locations an entry point writes.
func stageOutputs(module *ir.Module, ep *ir.EntryPoint) map[uint32]bool {
	out := make(map[uint32]bool)
	res := ep.Function.Result
	if res == nil {
		return out
	}
	if loc, ok := locationOf(res.Binding); ok {
		out[loc] = true
		return out
	}
	if st, ok := structOf(module, res.Type); ok {
		for _, m := range st.Members {
			if loc, ok := locationOf(m.Binding); ok {
				out[loc] = true
			}
		}
	}
	return out
}

// uniformField is a named value inside a uniform block.
type uniformField struct {
	binding uint32
	group   uint32
	offset  uint32
	typ     ir.TypeHandle
}

// reflection is everything the program needs to know about a linked module.
type reflection struct {
	vertexEntry   string
	fragmentEntry string

	attributes map[string]uint32
	fields     map[string]uniformField
	blockSize  map[uint32]uint32 // uniform binding -> struct span

	image        *ir.ResourceBinding
	sampler      *ir.ResourceBinding
	paletteLen   int
	paletteKnown bool
}

func reflectModule(module *ir.Module) *reflection {
	r := &reflection{
		attributes: make(map[string]uint32),
		fields:     make(map[string]uniformField),
		blockSize:  make(map[uint32]uint32),
	}
	if ep := entryPoint(module, ir.StageVertex); ep != nil {
		r.vertexEntry = ep.Name
		r.attributes = stageInputs(module, ep)
	}
	if ep := entryPoint(module, ir.StageFragment); ep != nil {
		r.fragmentEntry = ep.Name
	}

	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		switch typeInner(module, gv.Type).(type) {
		case ir.ImageType, *ir.ImageType:
			if gv.Name == UniformImage {
				rb := *gv.Binding
				r.image = &rb
			}
		case ir.SamplerType, *ir.SamplerType:
			if r.sampler == nil {
				rb := *gv.Binding
				r.sampler = &rb
			}
		default:
			if gv.Space != ir.SpaceUniform {
				continue
			}
			if st, ok := structOf(module, gv.Type); ok {
				r.blockSize[gv.Binding.Binding] = st.Span
				for _, m := range st.Members {
					r.fields[m.Name] = uniformField{
						binding: gv.Binding.Binding,
						group:   gv.Binding.Group,
						offset:  m.Offset,
						typ:     m.Type,
					}
				}
				continue
			}
			r.fields[gv.Name] = uniformField{
				binding: gv.Binding.Binding,
				group:   gv.Binding.Group,
				typ:     gv.Type,
			}
		}
	}

	if f, ok := r.fields[UniformColorscheme]; ok {
		r.paletteLen, r.paletteKnown = vec4ArrayLen(module, f.typ)
	}
	return r
}

// vec4ArrayLen returns the constant length of an array<vec4<f32>, N>.
func vec4ArrayLen(module *ir.Module, h ir.TypeHandle) (int, bool) {
	var arr ir.ArrayType
	switch a := typeInner(module, h).(type) {
	case ir.ArrayType:
		arr = a
	case *ir.ArrayType:
		arr = *a
	default:
		return 0, false
	}
	if arr.Size.Constant == nil {
		return 0, false
	}
	switch v := typeInner(module, arr.Base).(type) {
	case ir.VectorType:
		if v.Size != ir.Vec4 {
			return 0, false
		}
	case *ir.VectorType:
		if v.Size != ir.Vec4 {
			return 0, false
		}
	default:
		return 0, false
	}
	return int(*arr.Size.Constant), true
}

// missing lists the required names that reflection could not resolve.
func (r *reflection) missing() []string {
	var names []string
	for _, a := range []string{AttribVertexPosition, AttribTexCoord} {
		if _, ok := r.attributes[a]; !ok {
			names = append(names, a)
		}
	}
	for _, u := range []string{UniformCanvasWidth, UniformCanvasHeight, UniformColorscheme} {
		if _, ok := r.fields[u]; !ok {
			names = append(names, u)
		}
	}
	if r.image == nil {
		names = append(names, UniformImage)
	}
	sort.Strings(names)
	return names
}
