// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"
	"fmt"

	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// errBadPipelineState mirrors vk.errBadPipelineState.
var errBadPipelineState = errors.New("gl: state must be *driver.GraphState or *driver.CompState")

// pipeline implements driver.Pipeline. Unlike vk.pipeline, which
// produces a single immutable VkPipeline, a GL "pipeline" is a linked
// program plus the fixed-function state (topology, raster, depth-
// stencil, blend, vertex input layout) the teacher's Vulkan backend
// bakes into the VkPipeline object itself; cmd.go's SetPipeline
// command replays that state with glEnable/glBlendFuncSeparate/etc.
// each time the pipeline is bound, since core GL has no object that
// captures it once and for all the way VkPipeline does.
type pipeline struct {
	d        *Driver
	program  uint32
	vao      uint32
	compute  bool
	topology uint32
	input    []driver.VertexIn
	raster   driver.RasterState
	ds       driver.DSState
	blend    driver.BlendState
}

func (p *pipeline) Destroy() {
	if p == nil || p.program == 0 {
		return
	}
	glow.DeleteProgram(p.program)
	if p.vao != 0 {
		glow.DeleteVertexArrays(1, &p.vao)
	}
	*p = pipeline{}
}

// NewPipeline creates a new graphics or compute pipeline, depending on
// the concrete type of state.
func (d *Driver) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		return d.newGraphPipeline(s)
	case *driver.CompState:
		return d.newCompPipeline(s)
	default:
		return nil, errBadPipelineState
	}
}

// compileStage creates a GL shader object for fn and specializes it
// from its stored SPIR-V module using fn.Name as the entry point.
func compileStage(target uint32, fn driver.ShaderFunc) (uint32, error) {
	code := fn.Code.(*shaderCode)
	sh := glow.CreateShader(target)
	glow.ShaderBinary(1, &sh, glow.SHADER_BINARY_FORMAT_SPIR_V, glow.Ptr(code.spirv), int32(len(code.spirv)))
	name := fn.Name
	if name == "" {
		name = "main"
	}
	cname, free := glow.Strs(name + "\x00")
	defer free()
	glow.SpecializeShader(sh, *cname, 0, nil, nil)

	var status int32
	glow.GetShaderiv(sh, glow.COMPILE_STATUS, &status)
	if status == glow.FALSE {
		var logLen int32
		glow.GetShaderiv(sh, glow.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		glow.GetShaderInfoLog(sh, logLen, nil, &log[0])
		glow.DeleteShader(sh)
		return 0, fmt.Errorf("gl: shader specialization failed: %s", string(log))
	}
	return sh, nil
}

func linkProgram(stages ...uint32) (uint32, error) {
	prog := glow.CreateProgram()
	for _, s := range stages {
		glow.AttachShader(prog, s)
	}
	glow.LinkProgram(prog)
	for _, s := range stages {
		glow.DetachShader(prog, s)
		glow.DeleteShader(s)
	}

	var status int32
	glow.GetProgramiv(prog, glow.LINK_STATUS, &status)
	if status == glow.FALSE {
		var logLen int32
		glow.GetProgramiv(prog, glow.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		glow.GetProgramInfoLog(prog, logLen, nil, &log[0])
		glow.DeleteProgram(prog)
		return 0, fmt.Errorf("gl: program link failed: %s", string(log))
	}
	return prog, nil
}

// newGraphPipeline links the vertex and fragment stages and builds a
// VAO describing the vertex input layout (attribute format + binding
// index per driver.VertexIn; the actual buffers are bound per-draw by
// cmd.go's SetVertexBuf replay, using glVertexArrayVertexBuffer
// against the binding indices assigned here).
func (d *Driver) newGraphPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	vs, err := compileStage(glow.VERTEX_SHADER, s.VertFunc)
	if err != nil {
		return nil, err
	}
	fs, err := compileStage(glow.FRAGMENT_SHADER, s.FragFunc)
	if err != nil {
		glow.DeleteShader(vs)
		return nil, err
	}
	prog, err := linkProgram(vs, fs)
	if err != nil {
		return nil, err
	}

	var vao uint32
	glow.CreateVertexArrays(1, &vao)
	for i, in := range s.Input {
		attr := fromVertexFmt(in.Format)
		glow.EnableVertexArrayAttrib(vao, uint32(in.Nr))
		if attr.integer {
			glow.VertexArrayAttribIFormat(vao, uint32(in.Nr), attr.size, attr.typ, 0)
		} else {
			glow.VertexArrayAttribFormat(vao, uint32(in.Nr), attr.size, attr.typ, false, 0)
		}
		glow.VertexArrayAttribBinding(vao, uint32(in.Nr), uint32(i))
		glow.VertexArrayBindingDivisor(vao, uint32(i), 0)
	}

	return &pipeline{
		d:        d,
		program:  prog,
		vao:      vao,
		topology: fromTopology(s.Topology),
		input:    append([]driver.VertexIn(nil), s.Input...),
		raster:   s.Raster,
		ds:       s.DS,
		blend:    s.Blend,
	}, nil
}

// newCompPipeline links the single compute stage.
func (d *Driver) newCompPipeline(s *driver.CompState) (driver.Pipeline, error) {
	cs, err := compileStage(glow.COMPUTE_SHADER, s.Func)
	if err != nil {
		return nil, err
	}
	prog, err := linkProgram(cs)
	if err != nil {
		return nil, err
	}
	return &pipeline{d: d, program: prog, compute: true}, nil
}
