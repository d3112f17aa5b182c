// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// shaderCode implements driver.ShaderCode.
type shaderCode struct {
	d   *Driver
	mod vk.ShaderModule
}

// NewShaderCode creates a new shader module from SPIR-V bytecode.
// data's length must be a multiple of 4 (SPIR-V is a stream of 32-bit
// words); this is the caller's responsibility, matching the rshader
// package's output.
func (d *Driver) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    (*uint32)(unsafe.Pointer(&data[0])),
	}
	var mod vk.ShaderModule
	if err := checkResult(vk.CreateShaderModule(d.dev, &info, nil, &mod)); err != nil {
		return nil, err
	}
	return &shaderCode{d: d, mod: mod}, nil
}

func (s *shaderCode) Destroy() {
	if s == nil || s.mod == nil {
		return
	}
	vk.DestroyShaderModule(s.d.dev, s.mod, nil)
	*s = shaderCode{}
}
