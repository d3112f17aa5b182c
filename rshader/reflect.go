// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package rshader

import (
	"encoding/binary"
	"errors"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// SPIR-V magic number and the handful of opcodes/decorations this
// reflector needs. There is no reflection library anywhere in the
// retrieval pack (naga compiles WGSL to SPIR-V but exposes no binding
// introspection), so this walks the binary module format directly per
// the public SPIR-V specification; it is a small, self-contained
// parser rather than a dependency some other part of this module
// could have supplied.
const spirvMagic = 0x07230203

const (
	opEntryPoint    = 15
	opTypePointer   = 32
	opVariable      = 59
	opDecorate      = 71
)

const (
	decorationBinding       = 33
	decorationDescriptorSet = 34
)

const (
	executionModelVertex   = 0
	executionModelFragment = 4
	executionModelGLCompute = 5
)

const (
	storageClassUniformConstant = 0
	storageClassUniform         = 2
	storageClassPushConstant    = 9
	storageClassStorageBuffer   = 12
)

// ErrNotSPIRV means the given bytes do not begin with a valid SPIR-V
// magic number.
var ErrNotSPIRV = errors.New("rshader: not a SPIR-V module")

// Reflect parses a SPIR-V binary module and extracts its entry point
// name, stage, and descriptor bindings. Binding types are inferred
// from OpVariable storage classes: UniformConstant becomes DTexture
// (sampler-only variables are not told apart and are reported as
// DTexture too; DSampler is never produced), Uniform/PushConstant
// become DConstant, StorageBuffer becomes DBuffer.
func Reflect(code []byte) (ReflectInfo, error) {
	if len(code) < 20 || binary.LittleEndian.Uint32(code) != spirvMagic {
		return ReflectInfo{}, ErrNotSPIRV
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	var info ReflectInfo
	bindingOf := map[uint32]int{}
	setOf := map[uint32]int{}
	storageOf := map[uint32]uint32{}

	i := 5 // skip header: magic, version, generator, bound, schema
	for i < len(words) {
		instr := words[i]
		wordCount := instr >> 16
		opcode := instr & 0xFFFF
		if wordCount == 0 {
			break
		}
		switch opcode {
		case opEntryPoint:
			model := words[i+1]
			info.Stage = stageFromExecutionModel(model)
			info.EntryPoint = readLiteralString(words[i+3 : i+int(wordCount)])
		case opDecorate:
			target := words[i+1]
			deco := words[i+2]
			switch deco {
			case decorationBinding:
				bindingOf[target] = int(words[i+3])
			case decorationDescriptorSet:
				setOf[target] = int(words[i+3])
			}
		case opVariable:
			resultID := words[i+2]
			storageClass := words[i+3]
			storageOf[resultID] = storageClass
		}
		i += int(wordCount)
	}

	for id, sc := range storageOf {
		nr, hasBinding := bindingOf[id]
		if !hasBinding {
			continue
		}
		set := setOf[id]
		var dt driver.DescType
		switch sc {
		case storageClassUniformConstant:
			dt = driver.DTexture
		case storageClassUniform, storageClassPushConstant:
			dt = driver.DConstant
		case storageClassStorageBuffer:
			dt = driver.DBuffer
		default:
			continue
		}
		info.Bindings = append(info.Bindings, Binding{
			Set:   set,
			Nr:    nr,
			Type:  dt,
			Stage: info.Stage,
		})
	}
	return info, nil
}

func stageFromExecutionModel(model uint32) driver.Stage {
	switch model {
	case executionModelVertex:
		return driver.SVertex
	case executionModelFragment:
		return driver.SFragment
	case executionModelGLCompute:
		return driver.SCompute
	default:
		return 0
	}
}

// readLiteralString decodes a SPIR-V literal string: a sequence of
// little-endian words each holding up to 4 ASCII bytes, nul-terminated.
func readLiteralString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return string(buf)
			}
			buf = append(buf, b)
		}
	}
	return string(buf)
}
