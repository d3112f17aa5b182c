// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"
	"unsafe"

	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

var errMapFailed = errors.New("gl: buffer mapping failed")

// buffer implements driver.Buffer. Unlike vk.buffer's VMA-managed
// memory block, a GL buffer object is its own storage; host-visible
// buffers are allocated with glBufferStorage using the persistent +
// coherent mapping bits so Bytes can hand back a live slice for the
// buffer's entire lifetime, mirroring vk.buffer's always-mapped
// host-visible path.
type buffer struct {
	d    *Driver
	name uint32
	size int64
	vis  bool
	p    []byte
}

// NewBuffer creates a new buffer object of the given size.
// usg has no GL-visible effect beyond informing whether the caller
// intends vertex/index/uniform use, which only matters at bind time
// (cmd.go); unlike vk.buffer, a GL buffer name has no fixed usage
// class and can be bound to any target.
func (d *Driver) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	var name uint32
	glow.CreateBuffers(1, &name)
	flags := uint32(0)
	if visible {
		flags = glow.MAP_PERSISTENT_BIT | glow.MAP_COHERENT_BIT | glow.MAP_READ_BIT | glow.MAP_WRITE_BIT
	}
	glow.NamedBufferStorage(name, int(size), nil, flags)
	if err := checkError("NewBuffer"); err != nil {
		glow.DeleteBuffers(1, &name)
		return nil, err
	}

	b := &buffer{d: d, name: name, size: size, vis: visible}
	if visible {
		ptr := glow.MapNamedBufferRange(name, 0, int(size), flags)
		if ptr == nil {
			glow.DeleteBuffers(1, &name)
			return nil, errMapFailed
		}
		b.p = unsafe.Slice((*byte)(ptr), size)
	}
	return b, nil
}

// Visible reports whether the buffer's storage is host visible.
func (b *buffer) Visible() bool { return b.vis }

// Bytes returns the buffer's persistently mapped backing slice, or
// nil if the buffer is not host visible.
func (b *buffer) Bytes() []byte {
	if !b.vis {
		return nil
	}
	return b.p
}

// Cap returns the buffer's capacity in bytes.
func (b *buffer) Cap() int64 { return b.size }

// Destroy destroys the buffer object.
func (b *buffer) Destroy() {
	if b == nil || b.name == 0 {
		return
	}
	if b.vis {
		glow.UnmapNamedBuffer(b.name)
	}
	glow.DeleteBuffers(1, &b.name)
	*b = buffer{}
}
