// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package rshader_test

import (
	"encoding/binary"
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rshader"
)

// buildModule assembles a minimal, hand-crafted SPIR-V module
// declaring a single vertex entry point "main" with one Uniform
// (binding=0, set=0) variable, for exercising Reflect without relying
// on naga to produce fixture data.
func buildModule() []byte {
	const (
		opEntryPoint  = 15
		opDecorate    = 71
		opVariable    = 59
		execModelVert = 0
		decBinding    = 33
		decSet        = 34
		storageUniform = 2
	)
	words := []uint32{
		0x07230203, // magic
		0x00010300, // version
		0,          // generator
		10,         // bound
		0,          // schema
		(5 << 16) | opEntryPoint, execModelVert, 4, 0x6E69616D, 0x00000000, // OpEntryPoint Vertex %4 "main"
		(4 << 16) | opDecorate, 7, decBinding, 0,
		(4 << 16) | opDecorate, 7, decSet, 0,
		(4 << 16) | opVariable, 6, 7, storageUniform,
	}
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func TestReflect(t *testing.T) {
	info, err := rshader.Reflect(buildModule())
	if err != nil {
		t.Fatalf("rshader.Reflect: unexpected error: %v", err)
	}
	if info.EntryPoint != "main" {
		t.Errorf("rshader.Reflect: EntryPoint = %q, want %q", info.EntryPoint, "main")
	}
	if info.Stage != driver.SVertex {
		t.Errorf("rshader.Reflect: Stage = %v, want SVertex", info.Stage)
	}
	if len(info.Bindings) != 1 {
		t.Fatalf("rshader.Reflect: got %d bindings, want 1", len(info.Bindings))
	}
	b := info.Bindings[0]
	if b.Set != 0 || b.Nr != 0 || b.Type != driver.DConstant {
		t.Errorf("rshader.Reflect: binding = %+v, want {Set:0 Nr:0 Type:DConstant}", b)
	}
}

func TestReflectRejectsNonSPIRV(t *testing.T) {
	_, err := rshader.Reflect([]byte("not spir-v"))
	if err != rshader.ErrNotSPIRV {
		t.Errorf("rshader.Reflect: err = %v, want ErrNotSPIRV", err)
	}
}
