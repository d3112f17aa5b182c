// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// renderPass implements driver.RenderPass. Unlike driver/vk's
// dynamic-rendering renderPass, which never touches a real API
// object, core OpenGL has no renderpass/subpass concept at all: a
// renderPass here is pure load/store/format bookkeeping (exactly the
// attachment ops spec.md §4.8 calls for), and NewFB is where an
// actual Framebuffer Object gets built.
type renderPass struct {
	d   *Driver
	att []driver.Attachment
	sub driver.Subpass
}

// NewRenderPass creates a new render pass. Only sub[0] is consulted,
// matching driver/vk's renderPass (spec.md's single-subpass model).
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

// roleOf mirrors driver/vk's renderPass.roleOf.
func (p *renderPass) roleOf(i int) (colorIdx int, isColor, isDS, isResolve bool) {
	for ci, a := range p.sub.Color {
		if a == i {
			return ci, true, false, false
		}
	}
	if p.sub.DS == i {
		return 0, false, true, false
	}
	for ri, a := range p.sub.MSR {
		if a == i {
			return ri, false, false, true
		}
	}
	return 0, false, false, false
}

// framebuf implements driver.Framebuf as a real GL Framebuffer Object,
// the concrete image views device.Device's cache resolves a
// renderPass's bookkeeping against (spec.md §4.8's "framebuffer is
// never created by the user").
type framebuf struct {
	pass   *renderPass
	name   uint32
	width  int
	height int
	hasDS  bool
	// drawBuffers lists the GL_COLOR_ATTACHMENTi enums in subpass
	// color-attachment order, passed to glNamedFramebufferDrawBuffers
	// each BeginPass so a pipeline's ColorBlend entries line up with
	// the attachment they target.
	drawBuffers []uint32
}

// NewFB creates a new framebuffer by attaching each view to the role
// its index plays in the render pass's single subpass.
func (p *renderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	var name uint32
	glow.CreateFramebuffers(1, &name)
	fb := &framebuf{pass: p, name: name, width: width, height: height}
	fb.drawBuffers = make([]uint32, len(p.sub.Color))

	for i, v := range iv {
		view := v.(*imageView)
		colorIdx, isColor, isDS, isResolve := p.roleOf(i)
		switch {
		case isColor:
			attach := glow.COLOR_ATTACHMENT0 + uint32(colorIdx)
			attachView(name, attach, view)
			fb.drawBuffers[colorIdx] = attach
		case isDS:
			attach := uint32(glow.DEPTH_ATTACHMENT)
			if view.img.fmt.format == glow.DEPTH_STENCIL {
				attach = glow.DEPTH_STENCIL_ATTACHMENT
			} else if view.img.fmt.format == glow.STENCIL_INDEX {
				attach = glow.STENCIL_ATTACHMENT
			}
			attachView(name, attach, view)
			fb.hasDS = true
		case isResolve:
			// Resolve targets are neither attached nor recorded; no
			// command of this backend writes them.
			_ = isResolve
		}
	}

	if status := glow.CheckNamedFramebufferStatus(name, glow.DRAW_FRAMEBUFFER); status != glow.FRAMEBUFFER_COMPLETE {
		glow.DeleteFramebuffers(1, &name)
		return nil, errIncompleteFB
	}
	return fb, nil
}

func attachView(fbo, attach uint32, v *imageView) {
	if v.target == glow.TEXTURE_2D_MULTISAMPLE || v.layer == 0 {
		glow.NamedFramebufferTexture(fbo, attach, v.name, int32(v.level))
	} else {
		glow.NamedFramebufferTextureLayer(fbo, attach, v.name, int32(v.level), int32(v.layer))
	}
}

func (f *framebuf) Destroy() {
	if f == nil || f.name == 0 {
		return
	}
	glow.DeleteFramebuffers(1, &f.name)
	*f = framebuf{}
}
