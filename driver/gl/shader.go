// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"github.com/x2w-soda/Ludens-sub000/driver"
)

// shaderCode implements driver.ShaderCode. Unlike vk.shaderCode, it
// does not eagerly create a GL shader object: the SPIR-V bytes are
// kept as-is and compiled per pipeline stage in pipeline.go, since a
// GL shader object's stage (vertex/fragment/compute) is not known
// until it is placed into a driver.GraphState/CompState field.
type shaderCode struct {
	spirv []byte
}

// NewShaderCode stores a SPIR-V module for later specialization. This
// backend consumes SPIR-V directly via GL_ARB_gl_spirv (core in GL
// 4.6: glShaderBinary + glSpecializeShader), the same module rshader
// produces for driver/vk, instead of decompiling it to GLSL source --
// see DESIGN.md for why this sidesteps spec.md §4.10's SPIR-V-to-GLSL
// decompile step without changing the bindings a shader exposes
// (layout(set=.., binding=..) qualifiers survive intact in the SPIR-V
// itself, so no separate slot-remap table is needed here).
func (d *Driver) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &shaderCode{spirv: cp}, nil
}

func (s *shaderCode) Destroy() {
	if s == nil {
		return
	}
	*s = shaderCode{}
}
