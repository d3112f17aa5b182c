// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"github.com/x2w-soda/Ludens-sub000/driver"
)

// binding records one declared descriptor: its GL binding point (the
// descriptor's Nr, used directly as the layout(binding=N) value the
// SPIR-V-consuming shader already carries, see shader.go) and type.
type binding struct {
	typ driver.DescType
	nr  int
	len int
}

// heapCopy holds the concrete resources bound to one allocation
// ("copy") of a descHeap, keyed by binding number.
type heapCopy struct {
	buffers  map[int][]boundBuffer
	images   map[int][]*imageView
	samplers map[int][]*sampler
}

type boundBuffer struct {
	buf  *buffer
	off  int64
	size int64
}

// descHeap implements driver.DescHeap. OpenGL has no descriptor-set
// object to allocate from a pool; a descHeap is simply the declared
// binding list plus, after New(n), n independent heapCopy value sets
// that SetDescTableGraph/SetDescTableComp iterate over at bind time
// (cmd.go) to issue the matching glBindBufferRange/glBindTextureUnit/
// glBindSampler calls.
type descHeap struct {
	d        *Driver
	bindings []binding
	copies   []heapCopy
}

// NewDescHeap creates a new descriptor heap.
func (d *Driver) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	binds := make([]binding, len(ds))
	for i, desc := range ds {
		binds[i] = binding{typ: desc.Type, nr: desc.Nr, len: desc.Len}
	}
	return &descHeap{d: d, bindings: binds}, nil
}

// New reallocates the heap's storage for n copies.
func (h *descHeap) New(n int) error {
	if n == len(h.copies) {
		return nil
	}
	if n == 0 {
		h.copies = nil
		return nil
	}
	h.copies = make([]heapCopy, n)
	for i := range h.copies {
		h.copies[i] = heapCopy{
			buffers:  make(map[int][]boundBuffer),
			images:   make(map[int][]*imageView),
			samplers: make(map[int][]*sampler),
		}
	}
	return nil
}

func (h *descHeap) Count() int { return len(h.copies) }

// bindingType reports the declared descriptor type at binding nr, used
// by cmd.go to choose GL_UNIFORM_BUFFER vs GL_SHADER_STORAGE_BUFFER at
// bind time.
func (h *descHeap) bindingType(nr int) (driver.DescType, bool) {
	for _, b := range h.bindings {
		if b.nr == nr {
			return b.typ, true
		}
	}
	return 0, false
}

// SetBuffer updates a DBuffer/DConstant binding for one heap copy.
func (h *descHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	bound := make([]boundBuffer, len(buf))
	for i := range buf {
		bound[i] = boundBuffer{buf: buf[i].(*buffer), off: off[i], size: size[i]}
	}
	h.copies[cpy].buffers[nr] = bound
}

// SetImage updates a DImage/DTexture binding for one heap copy.
func (h *descHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	bound := make([]*imageView, len(iv))
	for i := range iv {
		bound[i] = iv[i].(*imageView)
	}
	h.copies[cpy].images[nr] = bound
}

// SetSampler updates a DSampler binding for one heap copy.
func (h *descHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	bound := make([]*sampler, len(splr))
	for i := range splr {
		bound[i] = splr[i].(*sampler)
	}
	h.copies[cpy].samplers[nr] = bound
}

// Destroy releases the heap. There is no backing GL object to free:
// descHeap owns no resources beyond Go-level bookkeeping.
func (h *descHeap) Destroy() {
	if h == nil {
		return
	}
	*h = descHeap{}
}

// descTable implements driver.DescTable: the ordered list of heaps a
// pipeline's shader resources are drawn from when a command list
// binds it, matching vk.descTable's role without a real
// VkPipelineLayout behind it (GL programs need no separate layout
// object; bindings are resolved per-draw from the heaps themselves).
type descTable struct {
	d     *Driver
	heaps []*descHeap
}

// NewDescTable creates a new descriptor table.
func (d *Driver) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	heaps := make([]*descHeap, len(dh))
	for i, h := range dh {
		heaps[i] = h.(*descHeap)
	}
	return &descTable{d: d, heaps: heaps}, nil
}

func (t *descTable) Destroy() {
	if t == nil {
		return
	}
	*t = descTable{}
}
