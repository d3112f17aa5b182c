package device

import "github.com/x2w-soda/Ludens-sub000/driver"

// cacheEntry pairs a cached driver object with the rid the Device
// handed out for it, so callers can go from a cache hit straight back
// to a stable handle.
type cacheEntry[T driver.Destroyer] struct {
	id  rid
	obj T
}

// dedupCache is a content-addressed cache keyed by a 32-bit hash of a
// creation-parameter struct. It is how the four content-addressable
// object kinds (render passes, descriptor set layouts, pipeline
// layouts and framebuffers) avoid creating duplicate driver objects
// for identical configurations. Collisions on the 32-bit key are
// accepted as empirically rare rather than guarded against with a
// full equality check, matching the original hashing scheme this is
// based on.
type dedupCache[T driver.Destroyer] struct {
	m map[uint32]cacheEntry[T]
}

func newDedupCache[T driver.Destroyer]() dedupCache[T] {
	return dedupCache[T]{m: make(map[uint32]cacheEntry[T])}
}

// get returns the cached object for hash h, if any.
func (c *dedupCache[T]) get(h uint32) (T, rid, bool) {
	e, ok := c.m[h]
	return e.obj, e.id, ok
}

// put inserts a newly created object under hash h.
func (c *dedupCache[T]) put(h uint32, id rid, obj T) {
	c.m[h] = cacheEntry[T]{id: id, obj: obj}
}

// delete removes and destroys the entry for hash h, if present. It
// returns whether an entry was found.
func (c *dedupCache[T]) delete(h uint32) bool {
	e, ok := c.m[h]
	if !ok {
		return false
	}
	e.obj.Destroy()
	delete(c.m, h)
	return true
}

// destroyAll tears down every cached entry, returning the number
// destroyed.
func (c *dedupCache[T]) destroyAll() int {
	n := len(c.m)
	for h, e := range c.m {
		e.obj.Destroy()
		delete(c.m, h)
	}
	return n
}

// caches groups the four dedup caches a Device owns.
type caches struct {
	passes          dedupCache[driver.RenderPass]
	framebuffers    dedupCache[driver.Framebuf]
	setLayouts      dedupCache[driver.DescHeap]
	pipelineLayouts dedupCache[driver.DescTable]
}

func newCaches() caches {
	return caches{
		passes:          newDedupCache[driver.RenderPass](),
		framebuffers:    newDedupCache[driver.Framebuf](),
		setLayouts:      newDedupCache[driver.DescHeap](),
		pipelineLayouts: newDedupCache[driver.DescTable](),
	}
}

// destroyAll tears down every cache in the fixed order required at
// device teardown: pipeline layouts, then set layouts, then render
// passes, then framebuffers. Pipeline layouts go before the set
// layouts they were built from; framebuffers go last, after the
// render passes they were created against.
func (c *caches) destroyAll(log logFunc) {
	log("device: destroying %d pipeline layouts", len(c.pipelineLayouts.m))
	c.pipelineLayouts.destroyAll()
	log("device: destroying %d set layouts", len(c.setLayouts.m))
	c.setLayouts.destroyAll()
	log("device: destroying %d render passes", len(c.passes.m))
	c.passes.destroyAll()
	log("device: destroying %d framebuffers", len(c.framebuffers.m))
	c.framebuffers.destroyAll()
}
