package device

// rid is a resource identifier.
//
// IDs are allocated by a single, monotonically increasing, per-Device
// counter. They are never recycled, even after the object they name is
// destroyed, so a stale rid can always be detected (it simply will not
// be present in the Device's object table any more) instead of
// silently referring to a different, newer object. Allocation is not
// safe for concurrent use: a Device, like the driver it wraps, is
// usable from a single host thread at a time, though up to
// Config.FramesInFlight frames may be executing on the GPU
// concurrently with that thread.
type rid uint64

// kind identifies the concrete type an rid refers to, for diagnostics
// and for the type table kept by Device.
type kind int

const (
	kindBuffer kind = iota
	kindImage
	kindImageView
	kindSampler
	kindPass
	kindFramebuffer
	kindSetLayout
	kindPipelineLayout
	kindPipeline
	kindCmdList
	kindCmdPool
)

func (k kind) String() string {
	switch k {
	case kindBuffer:
		return "buffer"
	case kindImage:
		return "image"
	case kindImageView:
		return "image view"
	case kindSampler:
		return "sampler"
	case kindPass:
		return "pass"
	case kindFramebuffer:
		return "framebuffer"
	case kindSetLayout:
		return "set layout"
	case kindPipelineLayout:
		return "pipeline layout"
	case kindPipeline:
		return "pipeline"
	case kindCmdList:
		return "command list"
	case kindCmdPool:
		return "command pool"
	default:
		return "unknown"
	}
}

// object is the common header embedded in every handle-bearing type
// the device package exposes. It is the allocator side of the object
// table: a new rid and kind tag for every resource created through a
// Device.
type object struct {
	id   rid
	kind kind
}

// ID returns the resource's stable identifier. It remains valid (in
// the sense of never being reused by another object) for the lifetime
// of the process, even past the object's own destruction.
func (o object) ID() uint64 { return uint64(o.id) }

// newObject allocates a new rid of the given kind and registers it in
// the Device's type table.
func (d *Device) newObject(k kind) object {
	d.ridCount++
	id := rid(d.ridCount)
	if d.table != nil {
		d.table[id] = k
	}
	return object{id: id, kind: k}
}

// forget removes an object from the Device's type table. It does not
// reclaim the rid itself, which is never recycled.
func (d *Device) forget(o object) {
	delete(d.table, o.id)
}
