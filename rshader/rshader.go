// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package rshader compiles shader source to SPIR-V and reflects the
// resulting binary for descriptor layout information. Both backends
// this module targets, driver/vk and driver/gl, consume the SPIR-V
// modules produced here directly; neither translates them to GLSL.
package rshader

import "github.com/x2w-soda/Ludens-sub000/driver"

// Language identifies the shader source language passed to a
// Compiler. Only WGSL has a real compiler available in the ecosystem
// this module draws from (see NagaCompiler); GLSL sources are expected
// to arrive pre-compiled to SPIR-V by the caller's toolchain, exactly
// as spec.md treats the GLSL→SPIR-V step abstractly.
type Language int

const (
	WGSL Language = iota
	GLSL
)

// Compiler turns shader source into SPIR-V bytecode.
type Compiler interface {
	Compile(src string, lang Language, stage driver.Stage) ([]byte, error)
}

// Module is a compiled, reflected shader ready for use as a
// driver.ShaderFunc.
type Module struct {
	SPIRV  []byte
	Reflect ReflectInfo
}

// Binding describes a single descriptor binding discovered by
// reflection.
type Binding struct {
	Set     int
	Nr      int
	Type    driver.DescType
	Stage   driver.Stage
}

// ReflectInfo is the result of reflecting a SPIR-V module.
type ReflectInfo struct {
	EntryPoint string
	Stage      driver.Stage
	Bindings   []Binding
}
