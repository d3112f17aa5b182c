// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"

	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

var errCmdBufferFailed = errors.New("gl: command buffer replay failed")

// cbStatus mirrors vk.cbStatus.
type cbStatus int

const (
	cbIdle cbStatus = iota
	cbBegun
	cbEnded
	cbFailed
)

// command is one deferred operation captured during recording and
// replayed in order by (*cmdBuffer).replay, the mechanism spec.md
// §4.11 calls for in place of a native GL command buffer.
type command func(cb *cmdBuffer) error

// cmdBuffer implements driver.CmdBuffer by recording every call into
// cmds and replaying them against the current context at Commit time,
// instead of vk.cmdBuffer's direct vkCmd* recording into a real
// VkCommandBuffer.
type cmdBuffer struct {
	d      *Driver
	status cbStatus
	err    error
	cmds   []command

	curFB       *framebuf
	curPipe     *pipeline
	curTable    *descTable
	curIndexFmt uint32
	curIndexOff int64
}

// NewCmdBuffer creates a new command buffer.
func (d *Driver) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &cmdBuffer{d: d}, nil
}

func (cb *cmdBuffer) push(c command) {
	if cb.status != cbBegun {
		return
	}
	cb.cmds = append(cb.cmds, c)
}

// Begin prepares the command buffer for recording.
func (cb *cmdBuffer) Begin() error {
	cb.cmds = cb.cmds[:0]
	cb.status = cbBegun
	cb.err = nil
	return nil
}

// BeginPass binds the framebuffer, configures its draw buffers and
// clears the attachments that ask for LClear, mirroring
// vk.cmdBuffer.BeginPass's attachment bookkeeping without a
// VkRenderingInfo to build it from.
func (cb *cmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	p := pass.(*renderPass)
	f := fb.(*framebuf)
	clearCp := append([]driver.ClearValue(nil), clear...)
	cb.push(func(cb *cmdBuffer) error {
		cb.curFB = f
		glow.BindFramebuffer(glow.DRAW_FRAMEBUFFER, f.name)
		glow.Viewport(0, 0, int32(f.width), int32(f.height))
		if len(f.drawBuffers) > 0 {
			glow.NamedFramebufferDrawBuffers(f.name, int32(len(f.drawBuffers)), &f.drawBuffers[0])
		}
		for i := range p.att {
			colorIdx, isColor, isDS, _ := p.roleOf(i)
			a := p.att[i]
			switch {
			case isColor && a.Load[0] == driver.LClear:
				c := clearCp[i].Color
				glow.ClearNamedFramebufferfv(f.name, glow.COLOR, int32(colorIdx), &c[0])
			case isDS && f.hasDS:
				switch {
				case a.Load[0] == driver.LClear && a.Load[1] == driver.LClear:
					glow.ClearNamedFramebufferfi(f.name, glow.DEPTH_STENCIL, 0, clearCp[i].Depth, int32(clearCp[i].Stencil))
				case a.Load[0] == driver.LClear:
					d := clearCp[i].Depth
					glow.ClearNamedFramebufferfv(f.name, glow.DEPTH, 0, &d)
				case a.Load[1] == driver.LClear:
					s := int32(clearCp[i].Stencil)
					glow.ClearNamedFramebufferiv(f.name, glow.STENCIL, 0, &s)
				}
			}
		}
		return checkError("BeginPass")
	})
}

// NextSubpass is a no-op: every render pass this backend builds has
// exactly one subpass (see renderPass).
func (cb *cmdBuffer) NextSubpass() {}

// EndPass ends the current pass by clearing the bound framebuffer at
// replay. It performs no multisample resolve: the pass's MSR targets
// are not written.
func (cb *cmdBuffer) EndPass() {
	cb.push(func(cb *cmdBuffer) error {
		cb.curFB = nil
		return nil
	})
}

// BeginWork and EndWork delimit a region of compute commands. GL has
// no compute-scope object; wait is honored with a full memory barrier
// covering shader-storage and image access, matching what a compute
// shader reads back after a prior pass writes it.
func (cb *cmdBuffer) BeginWork(wait bool) {
	if wait {
		cb.push(func(cb *cmdBuffer) error {
			glow.MemoryBarrier(glow.ALL_BARRIER_BITS)
			return nil
		})
	}
}

func (cb *cmdBuffer) EndWork() {}

func (cb *cmdBuffer) BeginBlit(wait bool) {
	if wait {
		cb.push(func(cb *cmdBuffer) error {
			glow.MemoryBarrier(glow.ALL_BARRIER_BITS)
			return nil
		})
	}
}

func (cb *cmdBuffer) EndBlit() {}

// SetPipeline binds the GL program and VAO and applies the pipeline's
// captured fixed-function state, since a GL "pipeline" carries no
// single object Bind can hand to the driver the way VkPipeline does.
func (cb *cmdBuffer) SetPipeline(pl driver.Pipeline) {
	p := pl.(*pipeline)
	cb.push(func(cb *cmdBuffer) error {
		cb.curPipe = p
		glow.UseProgram(p.program)
		if p.compute {
			return checkError("SetPipeline")
		}
		glow.BindVertexArray(p.vao)

		if enable, face := fromCullMode(p.raster.Cull); enable {
			glow.Enable(glow.CULL_FACE)
			glow.CullFace(face)
		} else {
			glow.Disable(glow.CULL_FACE)
		}
		if p.raster.Clockwise {
			glow.FrontFace(glow.CW)
		} else {
			glow.FrontFace(glow.CCW)
		}
		if p.raster.Fill == driver.FLines {
			glow.PolygonMode(glow.FRONT_AND_BACK, glow.LINE)
		} else {
			glow.PolygonMode(glow.FRONT_AND_BACK, glow.FILL)
		}
		if p.raster.DepthBias {
			glow.Enable(glow.POLYGON_OFFSET_FILL)
			glow.PolygonOffsetClamp(p.raster.BiasSlope, p.raster.BiasValue, p.raster.BiasClamp)
		} else {
			glow.Disable(glow.POLYGON_OFFSET_FILL)
		}

		if p.ds.DepthTest {
			glow.Enable(glow.DEPTH_TEST)
			glow.DepthFunc(fromCmpFunc(p.ds.DepthCmp))
		} else {
			glow.Disable(glow.DEPTH_TEST)
		}
		glow.DepthMask(p.ds.DepthWrite)
		if p.ds.StencilTest {
			glow.Enable(glow.STENCIL_TEST)
			setStencilFace(glow.FRONT, p.ds.Front)
			setStencilFace(glow.BACK, p.ds.Back)
		} else {
			glow.Disable(glow.STENCIL_TEST)
		}

		if len(p.blend.Color) == 0 {
			glow.Disable(glow.BLEND)
			return checkError("SetPipeline")
		}
		for i, bl := range p.blend.Color {
			idx := i
			if !p.blend.IndependentBlend {
				idx = 0
				if i > 0 {
					bl = p.blend.Color[0]
				}
			}
			if bl.Blend {
				glow.Enablei(glow.BLEND, uint32(idx))
				glow.BlendFuncSeparatei(uint32(idx), fromBlendFac(bl.SrcFac[0]), fromBlendFac(bl.DstFac[0]), fromBlendFac(bl.SrcFac[1]), fromBlendFac(bl.DstFac[1]))
				glow.BlendEquationSeparatei(uint32(idx), fromBlendOp(bl.Op[0]), fromBlendOp(bl.Op[1]))
			} else {
				glow.Disablei(glow.BLEND, uint32(idx))
			}
			r, g, b, a := fromColorMask(bl.WriteMask)
			glow.ColorMaski(uint32(idx), r, g, b, a)
		}
		return checkError("SetPipeline")
	})
}

func setStencilFace(face uint32, s driver.StencilT) {
	glow.StencilOpSeparate(face, fromStencilOp(s.DSFail[0]), fromStencilOp(s.DSFail[1]), fromStencilOp(s.Pass))
	glow.StencilFuncSeparate(face, fromCmpFunc(s.Cmp), 0, s.ReadMask)
	glow.StencilMaskSeparate(face, s.WriteMask)
}

func (cb *cmdBuffer) SetViewport(vp []driver.Viewport) {
	vps := append([]driver.Viewport(nil), vp...)
	cb.push(func(cb *cmdBuffer) error {
		for i, v := range vps {
			glow.ViewportIndexedf(uint32(i), v.X, v.Y, v.Width, v.Height)
			glow.DepthRangeIndexed(uint32(i), float64(v.Znear), float64(v.Zfar))
		}
		return nil
	})
}

// SetScissor applies the spec's documented clamp for out-of-range
// rectangles: a negative origin is clamped to zero with the extent
// shrunk to compensate, and a non-positive extent disables drawing in
// that dimension by collapsing the rectangle instead of passing GL a
// negative width/height, which glScissorIndexed rejects.
func (cb *cmdBuffer) SetScissor(sciss []driver.Scissor) {
	scs := append([]driver.Scissor(nil), sciss...)
	cb.push(func(cb *cmdBuffer) error {
		for i, s := range scs {
			x, y, w, h := s.X, s.Y, s.Width, s.Height
			if x < 0 {
				w += x
				x = 0
			}
			if y < 0 {
				h += y
				y = 0
			}
			if w < 0 {
				w = 0
			}
			if h < 0 {
				h = 0
			}
			glow.ScissorIndexed(uint32(i), int32(x), int32(y), int32(w), int32(h))
		}
		return nil
	})
}

func (cb *cmdBuffer) SetBlendColor(r, g, b, a float32) {
	cb.push(func(cb *cmdBuffer) error {
		glow.BlendColor(r, g, b, a)
		return nil
	})
}

func (cb *cmdBuffer) SetStencilRef(value uint32) {
	cb.push(func(cb *cmdBuffer) error {
		glow.StencilFuncSeparate(glow.FRONT, fromCmpFunc(cb.curPipe.ds.Front.Cmp), int32(value), cb.curPipe.ds.Front.ReadMask)
		glow.StencilFuncSeparate(glow.BACK, fromCmpFunc(cb.curPipe.ds.Back.Cmp), int32(value), cb.curPipe.ds.Back.ReadMask)
		return nil
	})
}

// SetVertexBuf binds one buffer per vertex input binding index
// (assigned in pipeline.go's newGraphPipeline), matching the
// non-interleaved-inputs model spec.md's VertexIn documents.
func (cb *cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	bufs := make([]*buffer, len(buf))
	for i := range buf {
		bufs[i] = buf[i].(*buffer)
	}
	offCp := append([]int64(nil), off...)
	cb.push(func(cb *cmdBuffer) error {
		vao := cb.curPipe.vao
		for i, b := range bufs {
			idx := start + i
			stride := int32(0)
			if idx < len(cb.curPipe.input) {
				stride = int32(cb.curPipe.input[idx].Stride)
			}
			glow.VertexArrayVertexBuffer(vao, uint32(idx), b.name, int(offCp[i]), stride)
		}
		return checkError("SetVertexBuf")
	})
}

func (cb *cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	b := buf.(*buffer)
	cb.push(func(cb *cmdBuffer) error {
		glow.VertexArrayElementBuffer(cb.curPipe.vao, b.name)
		cb.curIndexFmt = fromIndexFmt(format)
		cb.curIndexOff = off
		return nil
	})
}

// SetDescTableGraph and SetDescTableComp both resolve to the same
// binding logic: GL has a single unit namespace for buffer/texture/
// sampler bindings, unlike Vulkan's separate graphics/compute bind
// points, so there is no bind-point distinction to preserve here.
func (cb *cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	cb.bindDescTable(table, start, heapCopy)
}

func (cb *cmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	cb.bindDescTable(table, start, heapCopy)
}

func (cb *cmdBuffer) bindDescTable(table driver.DescTable, start int, heapCopy []int) {
	t := table.(*descTable)
	cpyCp := append([]int(nil), heapCopy...)
	cb.push(func(cb *cmdBuffer) error {
		cb.curTable = t
		for i, cpy := range cpyCp {
			h := t.heaps[start+i]
			if cpy >= len(h.copies) {
				continue
			}
			c := h.copies[cpy]
			for nr, bufs := range c.buffers {
				target := uint32(glow.SHADER_STORAGE_BUFFER)
				if typ, ok := h.bindingType(nr); ok && typ == driver.DConstant {
					target = glow.UNIFORM_BUFFER
				}
				for j, bb := range bufs {
					glow.BindBufferRange(target, uint32(nr+j), bb.buf.name, int(bb.off), int(bb.size))
				}
			}
			for nr, imgs := range c.images {
				for j, iv := range imgs {
					glow.BindTextureUnit(uint32(nr+j), iv.name)
				}
			}
			for nr, splrs := range c.samplers {
				for j, s := range splrs {
					glow.BindSampler(uint32(nr+j), s.name)
				}
			}
		}
		return checkError("bindDescTable")
	})
}

func (cb *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	topo := cb.curTopology()
	cb.push(func(cb *cmdBuffer) error {
		glow.DrawArraysInstancedBaseInstance(topo(cb), int32(baseVert), int32(vertCount), int32(instCount), uint32(baseInst))
		return checkError("Draw")
	})
}

func (cb *cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	topo := cb.curTopology()
	cb.push(func(cb *cmdBuffer) error {
		size := int64(2)
		if cb.curIndexFmt == glow.UNSIGNED_INT {
			size = 4
		}
		off := cb.curIndexOff + int64(baseIdx)*size
		glow.DrawElementsInstancedBaseVertexBaseInstance(topo(cb), int32(idxCount), cb.curIndexFmt, int(off), int32(instCount), int32(vertOff), uint32(baseInst))
		return checkError("DrawIndexed")
	})
}

// curTopology defers reading curPipe.topology until replay time,
// since it is only known once SetPipeline's own deferred command runs.
func (cb *cmdBuffer) curTopology() func(cb *cmdBuffer) uint32 {
	return func(cb *cmdBuffer) uint32 { return cb.curPipe.topology }
}

func (cb *cmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	cb.push(func(cb *cmdBuffer) error {
		glow.DispatchCompute(uint32(grpCountX), uint32(grpCountY), uint32(grpCountZ))
		return checkError("Dispatch")
	})
}

func (cb *cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	from := param.From.(*buffer)
	to := param.To.(*buffer)
	fromOff, toOff, size := param.FromOff, param.ToOff, param.Size
	cb.push(func(cb *cmdBuffer) error {
		glow.CopyNamedBufferSubData(from.name, to.name, int(fromOff), int(toOff), int(size))
		return checkError("CopyBuffer")
	})
}

func (cb *cmdBuffer) CopyImage(param *driver.ImageCopy) {
	from := param.From.(*image)
	to := param.To.(*image)
	p := *param
	cb.push(func(cb *cmdBuffer) error {
		glow.CopyImageSubData(
			from.name, from.target, int32(p.FromLevel), int32(p.FromOff.X), int32(p.FromOff.Y), int32(p.FromLayer+p.FromOff.Z),
			to.name, to.target, int32(p.ToLevel), int32(p.ToOff.X), int32(p.ToOff.Y), int32(p.ToLayer+p.ToOff.Z),
			int32(p.Size.Width), int32(p.Size.Height), int32(p.Layers),
		)
		return checkError("CopyImage")
	})
}

func (cb *cmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	buf := param.Buf.(*buffer)
	img := param.Img.(*image)
	p := *param
	cb.push(func(cb *cmdBuffer) error {
		glow.BindBuffer(glow.PIXEL_UNPACK_BUFFER, buf.name)
		glow.PixelStorei(glow.UNPACK_ROW_LENGTH, int32(p.Stride[0]))
		glow.PixelStorei(glow.UNPACK_IMAGE_HEIGHT, int32(p.Stride[1]))
		format, typ := img.fmt.format, img.fmt.typ
		glow.TextureSubImage3D(img.name, int32(p.Level), int32(p.ImgOff.X), int32(p.ImgOff.Y), int32(p.Layer),
			int32(p.Size.Width), int32(p.Size.Height), int32(p.Size.Depth), format, typ, glow.PtrOffset(int(p.BufOff)))
		glow.BindBuffer(glow.PIXEL_UNPACK_BUFFER, 0)
		return checkError("CopyBufToImg")
	})
}

func (cb *cmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	buf := param.Buf.(*buffer)
	img := param.Img.(*image)
	p := *param
	cb.push(func(cb *cmdBuffer) error {
		glow.BindBuffer(glow.PIXEL_PACK_BUFFER, buf.name)
		glow.PixelStorei(glow.PACK_ROW_LENGTH, int32(p.Stride[0]))
		glow.PixelStorei(glow.PACK_IMAGE_HEIGHT, int32(p.Stride[1]))
		format, typ := img.fmt.format, img.fmt.typ
		glow.GetTextureSubImage(img.name, int32(p.Level), int32(p.ImgOff.X), int32(p.ImgOff.Y), int32(p.Layer),
			int32(p.Size.Width), int32(p.Size.Height), int32(p.Size.Depth), format, typ, 1<<30, glow.PtrOffset(int(p.BufOff)))
		glow.BindBuffer(glow.PIXEL_PACK_BUFFER, 0)
		return checkError("CopyImgToBuf")
	})
}

func (cb *cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	b := buf.(*buffer)
	cb.push(func(cb *cmdBuffer) error {
		v := [4]byte{value, value, value, value}
		glow.ClearNamedBufferSubData(b.name, glow.R8, int(off), int(size), glow.RED, glow.UNSIGNED_BYTE, glow.Ptr(&v[0]))
		return checkError("Fill")
	})
}

// Barrier and Transition both translate to glMemoryBarrier: core GL
// has no per-resource barrier scope, only a global set of bits
// naming which caches to invalidate before the next stage reads, so
// layout transitions collapse to a no-op beyond the barrier itself.
func (cb *cmdBuffer) Barrier(b []driver.Barrier) {
	bits := barrierBits(b)
	cb.push(func(cb *cmdBuffer) error {
		if bits != 0 {
			glow.MemoryBarrier(bits)
		}
		return nil
	})
}

func (cb *cmdBuffer) Transition(t []driver.Transition) {
	bs := make([]driver.Barrier, len(t))
	for i, x := range t {
		bs[i] = x.Barrier
	}
	bits := barrierBits(bs)
	cb.push(func(cb *cmdBuffer) error {
		if bits != 0 {
			glow.MemoryBarrier(bits)
		}
		return nil
	})
}

func barrierBits(bs []driver.Barrier) uint32 {
	var bits uint32
	for _, b := range bs {
		a := b.AccessBefore | b.AccessAfter
		if a&(driver.AVertexBufRead) != 0 {
			bits |= glow.VERTEX_ATTRIB_ARRAY_BARRIER_BIT
		}
		if a&driver.AIndexBufRead != 0 {
			bits |= glow.ELEMENT_ARRAY_BARRIER_BIT
		}
		if a&(driver.AColorRead|driver.AColorWrite|driver.ADSRead|driver.ADSWrite) != 0 {
			bits |= glow.FRAMEBUFFER_BARRIER_BIT
		}
		if a&(driver.ACopyRead|driver.ACopyWrite) != 0 {
			bits |= glow.TEXTURE_UPDATE_BARRIER_BIT | glow.BUFFER_UPDATE_BARRIER_BIT
		}
		if a&(driver.AShaderRead|driver.AShaderWrite) != 0 {
			bits |= glow.SHADER_STORAGE_BARRIER_BIT | glow.TEXTURE_FETCH_BARRIER_BIT | glow.SHADER_IMAGE_ACCESS_BARRIER_BIT
		}
		if a&(driver.AAnyRead|driver.AAnyWrite) != 0 {
			bits = glow.ALL_BARRIER_BITS
		}
	}
	return bits
}

// End ends command recording.
func (cb *cmdBuffer) End() error {
	cb.status = cbEnded
	return nil
}

// Reset discards all recorded commands.
func (cb *cmdBuffer) Reset() error {
	cb.cmds = cb.cmds[:0]
	cb.status = cbIdle
	cb.err = nil
	cb.curFB = nil
	cb.curPipe = nil
	cb.curTable = nil
	return nil
}

// Destroy destroys the command buffer.
func (cb *cmdBuffer) Destroy() {
	if cb == nil {
		return
	}
	*cb = cmdBuffer{}
}

// replay executes every captured command in order, stopping at the
// first error, mirroring how a failed vkEndCommandBuffer would short
// circuit submission in driver/vk.
func (cb *cmdBuffer) replay() error {
	if cb.status != cbEnded {
		return errCmdBufferFailed
	}
	for _, c := range cb.cmds {
		if err := c(cb); err != nil {
			cb.status = cbFailed
			cb.err = err
			return err
		}
	}
	return nil
}
