package device

import (
	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rhash"
)

// hashAttachment folds a single driver.Attachment into a running hash.
func hashAttachment(h uint32, a driver.Attachment) uint32 {
	h = rhash.Uint32(h, uint32(a.Format))
	h = rhash.Uint32(h, uint32(a.Samples))
	h = rhash.Uint32(h, uint32(a.Load[0])<<8|uint32(a.Load[1]))
	h = rhash.Uint32(h, uint32(a.Store[0])<<8|uint32(a.Store[1]))
	return h
}

// hashSubpass folds a single driver.Subpass into a running hash.
func hashSubpass(h uint32, s driver.Subpass) uint32 {
	for _, c := range s.Color {
		h = rhash.Uint32(h, uint32(c))
	}
	h = rhash.Uint32(h, uint32(s.DS))
	for _, m := range s.MSR {
		h = rhash.Uint32(h, uint32(m))
	}
	if s.Wait {
		h = rhash.Uint32(h, 1)
	}
	return h
}

// hashPassInfo computes the cache key for a render pass, the Go
// equivalent of hash32_pass_info.
func hashPassInfo(att []driver.Attachment, sub []driver.Subpass) uint32 {
	h := rhash.Bytes([]byte("pass"))
	for i := range att {
		h = hashAttachment(h, att[i])
	}
	for i := range sub {
		h = hashSubpass(h, sub[i])
	}
	return h
}

// Pass is a handle to a cached render pass.
type Pass struct {
	object
	pass driver.RenderPass
	hash uint32
}

// Driver returns the underlying driver.RenderPass.
func (p *Pass) Driver() driver.RenderPass { return p.pass }

// GetOrCreatePass returns the cached render pass matching att and sub,
// creating and caching a new one on a cache miss. Render passes are
// never explicitly destroyed by callers; they are torn down together
// at Device.Destroy.
func (d *Device) GetOrCreatePass(att []driver.Attachment, sub []driver.Subpass) (*Pass, error) {
	h := hashPassInfo(att, sub)
	if obj, id, ok := d.caches.passes.get(h); ok {
		return &Pass{object: object{id: id, kind: kindPass}, pass: obj, hash: h}, nil
	}
	rp, err := d.gpu.NewRenderPass(att, sub)
	if err != nil {
		return nil, err
	}
	o := d.newObject(kindPass)
	d.caches.passes.put(h, o.id, rp)
	return &Pass{object: o, pass: rp, hash: h}, nil
}

// Framebuf is a handle to a cached framebuffer.
type Framebuf struct {
	object
	fb   driver.Framebuf
	hash uint32
}

// Driver returns the underlying driver.Framebuf.
func (f *Framebuf) Driver() driver.Framebuf { return f.fb }

// hashFramebufferInfo computes the cache key for a framebuffer, the
// Go equivalent of hash32_framebuffer_info: the owning pass's hash
// combined with the dimensions and the rid of every attached view's
// owning image (including any resolve or depth/stencil attachment,
// since all are given in the same iv slice by the caller).
func hashFramebufferInfo(passHash uint32, width, height, layers int, images []*Image) uint32 {
	h := rhash.Uint32(passHash, uint32(width))
	h = rhash.Uint32(h, uint32(height))
	h = rhash.Uint32(h, uint32(layers))
	for _, img := range images {
		h = rhash.Uint32(h, uint32(img.id))
	}
	return h
}

// GetOrCreateFramebuffer returns the cached framebuffer for the given
// pass, views and dimensions, creating and caching a new one on a
// cache miss. images must name, for each entry in iv, the Image that
// view was created from; on a cache miss the new framebuffer's hash
// is recorded in every one of those images' invalidation sets, so
// that destroying any of them destroys this framebuffer too.
func (d *Device) GetOrCreateFramebuffer(pass *Pass, iv []*ImageView, images []*Image, width, height, layers int) (*Framebuf, error) {
	h := hashFramebufferInfo(pass.hash, width, height, layers, images)
	if obj, id, ok := d.caches.framebuffers.get(h); ok {
		return &Framebuf{object: object{id: id, kind: kindFramebuffer}, fb: obj, hash: h}, nil
	}
	driverViews := make([]driver.ImageView, len(iv))
	for i, v := range iv {
		driverViews[i] = v.view
	}
	fb, err := pass.pass.NewFB(driverViews, width, height, layers)
	if err != nil {
		return nil, err
	}
	o := d.newObject(kindFramebuffer)
	d.caches.framebuffers.put(h, o.id, fb)
	for _, img := range images {
		img.addFBHash(h)
	}
	return &Framebuf{object: o, fb: fb, hash: h}, nil
}
