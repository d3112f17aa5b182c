// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// buffer implements driver.Buffer.
type buffer struct {
	d    *Driver
	buf  vk.Buffer
	mem  *memory
	size int64
	vis  bool
}

// NewBuffer creates a new buffer of the given size and usage. Every
// buffer is created transfer-src/dst regardless of usg so that
// higher-level staging copies always have somewhere to land; see
// fromUsage.
func (d *Driver) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	bu, _ := fromUsage(usg)
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       bu,
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if err := checkResult(vk.CreateBuffer(d.dev, &info, nil, &buf)); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.dev, buf, &req)
	mem, err := d.newMemory(req, visible)
	if err != nil {
		vk.DestroyBuffer(d.dev, buf, nil)
		return nil, err
	}
	if err := checkResult(vk.BindBufferMemory(d.dev, buf, mem.mem, 0)); err != nil {
		mem.free()
		vk.DestroyBuffer(d.dev, buf, nil)
		return nil, err
	}
	mem.bound = true
	if visible {
		if err := mem.mmap(); err != nil {
			mem.free()
			vk.DestroyBuffer(d.dev, buf, nil)
			return nil, err
		}
	}

	return &buffer{d: d, buf: buf, mem: mem, size: size, vis: visible}, nil
}

// Visible reports whether the buffer's memory is host visible.
func (b *buffer) Visible() bool { return b.vis }

// Bytes returns the buffer's mapped backing slice, or nil if the
// buffer is not host visible.
func (b *buffer) Bytes() []byte {
	if !b.vis {
		return nil
	}
	return b.mem.p
}

// Cap returns the buffer's capacity in bytes.
func (b *buffer) Cap() int64 { return b.size }

// Destroy destroys the buffer and frees its memory.
func (b *buffer) Destroy() {
	if b == nil || b.buf == nil {
		return
	}
	if b.vis {
		b.mem.unmap()
	}
	vk.DestroyBuffer(b.d.dev, b.buf, nil)
	b.mem.free()
	*b = buffer{}
}
