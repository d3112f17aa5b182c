package device

import (
	"errors"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rhash"
)

// hashDescriptor folds a single driver.Descriptor into a running hash.
func hashDescriptor(h uint32, desc driver.Descriptor) uint32 {
	h = rhash.Uint32(h, uint32(desc.Type))
	h = rhash.Uint32(h, uint32(desc.Stages))
	h = rhash.Uint32(h, uint32(desc.Nr))
	h = rhash.Uint32(h, uint32(desc.Len))
	return h
}

// hashSetLayoutInfo computes the cache key for a descriptor set
// layout (a driver.DescHeap's shape), the Go equivalent of
// hash32_set_layout_info.
func hashSetLayoutInfo(ds []driver.Descriptor) uint32 {
	h := rhash.Bytes([]byte("setlayout"))
	for i := range ds {
		h = hashDescriptor(h, ds[i])
	}
	return h
}

// SetLayout is a handle to a cached descriptor set layout (a
// driver.DescHeap template; New still must be called on it to
// allocate storage for a given number of copies).
type SetLayout struct {
	object
	heap driver.DescHeap
	hash uint32
}

// Driver returns the underlying driver.DescHeap.
func (s *SetLayout) Driver() driver.DescHeap { return s.heap }

// GetOrCreateSetLayout returns the cached set layout matching ds,
// creating and caching a new one on a cache miss.
func (d *Device) GetOrCreateSetLayout(ds []driver.Descriptor) (*SetLayout, error) {
	h := hashSetLayoutInfo(ds)
	if obj, id, ok := d.caches.setLayouts.get(h); ok {
		return &SetLayout{object: object{id: id, kind: kindSetLayout}, heap: obj, hash: h}, nil
	}
	dh, err := d.gpu.NewDescHeap(ds)
	if err != nil {
		return nil, err
	}
	o := d.newObject(kindSetLayout)
	d.caches.setLayouts.put(h, o.id, dh)
	return &SetLayout{object: o, heap: dh, hash: h}, nil
}

// hashPipelineLayoutInfo computes the cache key for a pipeline layout
// (an ordered list of set layouts), the Go equivalent of
// hash32_pipeline_layout_info. The hash is seeded with the bytes of
// "pipelinelayout" before each SetLayout's hash is combined in, so a
// single-set-layout pipeline layout does not hash to the same value as
// its one SetLayout; the two cache tables never mix their keys either
// way.
func hashPipelineLayoutInfo(layouts []*SetLayout) uint32 {
	h := rhash.Bytes([]byte("pipelinelayout"))
	for _, l := range layouts {
		h = rhash.Combine(h, l.hash)
	}
	return h
}

// PipelineLayout is a handle to a cached pipeline layout (a
// driver.DescTable binding a fixed set of set layouts to shader
// stages).
type PipelineLayout struct {
	object
	table driver.DescTable
	hash  uint32
}

// Driver returns the underlying driver.DescTable.
func (p *PipelineLayout) Driver() driver.DescTable { return p.table }

// GetOrCreatePipelineLayout returns the cached pipeline layout for the
// given ordered set of SetLayouts, creating and caching a new one on a
// cache miss.
func (d *Device) GetOrCreatePipelineLayout(layouts []*SetLayout) (*PipelineLayout, error) {
	h := hashPipelineLayoutInfo(layouts)
	if obj, id, ok := d.caches.pipelineLayouts.get(h); ok {
		return &PipelineLayout{object: object{id: id, kind: kindPipelineLayout}, table: obj, hash: h}, nil
	}
	heaps := make([]driver.DescHeap, len(layouts))
	for i, l := range layouts {
		heaps[i] = l.heap
	}
	dt, err := d.gpu.NewDescTable(heaps)
	if err != nil {
		return nil, err
	}
	o := d.newObject(kindPipelineLayout)
	d.caches.pipelineLayouts.put(h, o.id, dt)
	return &PipelineLayout{object: o, table: dt, hash: h}, nil
}

// ErrSetPoolExhausted is returned by SetPool.Allocate when the pool has
// no more storage available and must be Reset before further
// allocations can be made.
var ErrSetPoolExhausted = errors.New("device: descriptor set pool exhausted")

// SetPool is a linear, reset-only sub-allocator of descriptor set
// copies out of a SetLayout's storage. It mirrors RSetPool: allocation
// is O(1) bump-pointer, and the only way to reclaim space is Reset,
// which invalidates every set handed out since the last reset (or
// since creation) in one step.
type SetPool struct {
	layout *SetLayout
	cap    int
	next   int
}

// NewSetPool creates a pool of n descriptor set copies backed by
// layout. It calls DescHeap.New(n) once, up front.
func (d *Device) NewSetPool(layout *SetLayout, n int) (*SetPool, error) {
	if err := layout.heap.New(n); err != nil {
		return nil, err
	}
	return &SetPool{layout: layout, cap: n}, nil
}

// Set identifies one descriptor set copy allocated from a SetPool.
type Set struct {
	Pool *SetPool
	Copy int
}

// Allocate bump-allocates the next unused set copy from the pool.
func (p *SetPool) Allocate() (Set, error) {
	if p.next >= p.cap {
		return Set{}, ErrSetPoolExhausted
	}
	s := Set{Pool: p, Copy: p.next}
	p.next++
	return s, nil
}

// Reset reclaims every set allocated from the pool so far, in O(1).
// Sets previously returned by Allocate must not be used afterwards.
func (p *SetPool) Reset() {
	p.next = 0
}

// SetBuffer updates the buffer descriptor at nr/start for this set.
func (s Set) SetBuffer(nr, start int, buf []driver.Buffer, off, size []int64) {
	s.Pool.layout.heap.SetBuffer(s.Copy, nr, start, buf, off, size)
}

// SetImage updates the image descriptor at nr/start for this set.
func (s Set) SetImage(nr, start int, iv []driver.ImageView) {
	s.Pool.layout.heap.SetImage(s.Copy, nr, start, iv)
}

// SetSampler updates the sampler descriptor at nr/start for this set.
func (s Set) SetSampler(nr, start int, splr []driver.Sampler) {
	s.Pool.layout.heap.SetSampler(s.Copy, nr, start, splr)
}
