// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package rshader

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// NagaCompiler compiles WGSL source to SPIR-V using naga, the one
// WGSL→SPIR-V compiler the retrieval pack actually exercises
// (gogpu/gg and gogpu/wgpu both call naga.Compile directly, see
// internal/native/shader_helper.go). There is no GLSL-capable
// compiler anywhere in the pack, so GLSL sources are rejected here;
// callers that need GLSL supply pre-compiled SPIR-V directly to
// Precompiled instead of going through a Compiler.
type NagaCompiler struct{}

// Compile implements Compiler.
func (NagaCompiler) Compile(src string, lang Language, stage driver.Stage) ([]byte, error) {
	if lang != WGSL {
		return nil, fmt.Errorf("rshader: %w", errUnsupportedLanguage)
	}
	return naga.Compile(src)
}

var errUnsupportedLanguage = fmt.Errorf("only WGSL compilation is supported; supply pre-compiled SPIR-V for GLSL")

// CompileAndReflect compiles src with c, then reflects the resulting
// SPIR-V into a Module.
func CompileAndReflect(c Compiler, src string, lang Language, stage driver.Stage) (*Module, error) {
	code, err := c.Compile(src, lang, stage)
	if err != nil {
		return nil, err
	}
	return newModule(code)
}

// Precompiled reflects SPIR-V bytecode produced outside this package
// (e.g. a GLSL toolchain's output) into a Module, skipping the
// compile step.
func Precompiled(spirv []byte) (*Module, error) {
	return newModule(spirv)
}

func newModule(code []byte) (*Module, error) {
	info, err := Reflect(code)
	if err != nil {
		return nil, err
	}
	return &Module{SPIRV: code, Reflect: info}, nil
}
