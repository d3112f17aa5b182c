// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// renderPass implements driver.RenderPass. Vulkan 1.3's dynamic
// rendering feature (enabled unconditionally by setFeatures) means
// this backend never creates a VkRenderPass or VkFramebuffer object:
// a renderPass is just the attachment load/store/format bookkeeping
// needed to build a vk.RenderingInfo at BeginPass time, and a
// framebuf is just the concrete image views and dimensions that
// bookkeeping is replayed against. This keeps the single-subpass
// contract spec.md §4.8 describes without the classic two-object
// render-pass/framebuffer machinery, while still giving
// device.Device exactly the two cacheable handle types spec.md §3
// calls for.
type renderPass struct {
	d   *Driver
	att []driver.Attachment
	sub driver.Subpass
}

// NewRenderPass creates a new render pass. Only sub[0] is consulted:
// spec.md's data model allows a Subpass slice but every pass this
// core builds has exactly one subpass with an optional self-dependency,
// per spec.md §4.8.
func (d *Driver) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	var s driver.Subpass
	if len(sub) > 0 {
		s = sub[0]
	}
	cp := make([]driver.Attachment, len(att))
	copy(cp, att)
	return &renderPass{d: d, att: cp, sub: s}, nil
}

func (p *renderPass) Destroy() {}

// roleOf reports how attachment index i is used by the pass's single
// subpass: color (and at what color index), depth/stencil, or
// resolve. All three flags are false if i is not referenced at all.
func (p *renderPass) roleOf(i int) (colorIdx int, isColor, isDS, isResolve bool) {
	for ci, a := range p.sub.Color {
		if a == i {
			return ci, true, false, false
		}
	}
	if p.sub.DS == i {
		return 0, false, true, false
	}
	for _, a := range p.sub.MSR {
		if a == i {
			return 0, false, false, true
		}
	}
	return 0, false, false, false
}

// framebuf implements driver.Framebuf: the concrete image views a
// renderPass's attachment bookkeeping is resolved against, derived
// automatically by device.Device.GetOrCreateFramebuffer (spec.md
// §4.8) rather than constructed directly by application code.
type framebuf struct {
	pass         *renderPass
	width        int
	height       int
	layers       int
	colorViews   []vk.ImageView
	resolveViews []vk.ImageView
	dsView       vk.ImageView
	hasDS        bool
}

// NewFB creates a new framebuffer. iv[i] must correspond to the
// render pass's attachment at index i, per the driver.RenderPass
// contract; this method sorts them into color/depth-stencil/resolve
// roles using the subpass description given at NewRenderPass time.
func (p *renderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	fb := &framebuf{
		pass:       p,
		width:      width,
		height:     height,
		layers:     layers,
		colorViews: make([]vk.ImageView, len(p.sub.Color)),
	}
	if len(p.sub.MSR) > 0 {
		fb.resolveViews = make([]vk.ImageView, len(p.sub.MSR))
	}
	for i, v := range iv {
		vv := v.(*imageView).view
		colorIdx, isColor, isDS, isResolve := p.roleOf(i)
		switch {
		case isColor:
			fb.colorViews[colorIdx] = vv
		case isDS:
			fb.dsView = vv
			fb.hasDS = true
		case isResolve:
			fb.resolveViews[len(fb.resolveViews)-1] = vv
			_ = isResolve
		}
	}
	return fb, nil
}

func (f *framebuf) Destroy() {}
