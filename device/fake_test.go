package device

import (
	"errors"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// fakeGPU is a minimal in-memory driver.GPU used to exercise the
// device package's caching and frame-pacing logic without a real
// Vulkan or OpenGL backend.
type fakeGPU struct {
	drv driver.Driver
}

func (g *fakeGPU) Driver() driver.Driver { return g.drv }

func (g *fakeGPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	ch <- nil
}

func (g *fakeGPU) NewCmdBuffer() (driver.CmdBuffer, error) { return &fakeCmdBuffer{}, nil }

func (g *fakeGPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	return &fakeRenderPass{}, nil
}

func (g *fakeGPU) NewShaderCode(data []byte) (driver.ShaderCode, error) { return &fakeDestroyer{}, nil }

func (g *fakeGPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &fakeDescHeap{}, nil
}

func (g *fakeGPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return &fakeDestroyer{}, nil
}

func (g *fakeGPU) NewPipeline(state any) (driver.Pipeline, error) { return &fakeDestroyer{}, nil }

func (g *fakeGPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	return &fakeBuffer{cap: size, visible: visible, data: make([]byte, size)}, nil
}

func (g *fakeGPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	return &fakeImage{}, nil
}

func (g *fakeGPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	return &fakeDestroyer{}, nil
}

func (g *fakeGPU) Limits() driver.Limits { return driver.Limits{} }

type fakeDriver struct{ name string }

func (d *fakeDriver) Open() (driver.GPU, error) { return &fakeGPU{drv: d}, nil }
func (d *fakeDriver) Name() string              { return d.name }
func (d *fakeDriver) Close()                    {}

type fakeDestroyer struct{ destroyed bool }

func (f *fakeDestroyer) Destroy() { f.destroyed = true }

type fakeBuffer struct {
	cap     int64
	visible bool
	data    []byte
}

func (b *fakeBuffer) Destroy()       {}
func (b *fakeBuffer) Visible() bool  { return b.visible }
func (b *fakeBuffer) Bytes() []byte  { return b.data }
func (b *fakeBuffer) Cap() int64     { return b.cap }

type fakeImage struct {
	views int
}

func (i *fakeImage) Destroy() {}
func (i *fakeImage) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	i.views++
	return &fakeDestroyer{}, nil
}

type fakeRenderPass struct{ fbs int }

func (p *fakeRenderPass) Destroy() {}
func (p *fakeRenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	p.fbs++
	return &fakeDestroyer{}, nil
}

type fakeDescHeap struct {
	fakeDestroyer
	count int
}

func (h *fakeDescHeap) New(n int) error { h.count = n; return nil }
func (h *fakeDescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {}
func (h *fakeDescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView)                   {}
func (h *fakeDescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler)                 {}
func (h *fakeDescHeap) Count() int                                                           { return h.count }

type fakeCmdBuffer struct {
	began bool
}

func (c *fakeCmdBuffer) Destroy() {}
func (c *fakeCmdBuffer) Begin() error {
	c.began = true
	return nil
}
func (c *fakeCmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
}
func (c *fakeCmdBuffer) NextSubpass()      {}
func (c *fakeCmdBuffer) EndPass()          {}
func (c *fakeCmdBuffer) BeginWork(wait bool) {}
func (c *fakeCmdBuffer) EndWork()          {}
func (c *fakeCmdBuffer) BeginBlit(wait bool) {}
func (c *fakeCmdBuffer) EndBlit()          {}
func (c *fakeCmdBuffer) SetPipeline(pl driver.Pipeline)                                  {}
func (c *fakeCmdBuffer) SetViewport(vp []driver.Viewport)                                {}
func (c *fakeCmdBuffer) SetScissor(sciss []driver.Scissor)                               {}
func (c *fakeCmdBuffer) SetBlendColor(r, g, b, a float32)                                {}
func (c *fakeCmdBuffer) SetStencilRef(value uint32)                                      {}
func (c *fakeCmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64)         {}
func (c *fakeCmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {}
func (c *fakeCmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {}
func (c *fakeCmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int)  {}
func (c *fakeCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)                {}
func (c *fakeCmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)  {}
func (c *fakeCmdBuffer) Dispatch(x, y, z int)                                             {}
func (c *fakeCmdBuffer) CopyBuffer(param *driver.BufferCopy)                              {}
func (c *fakeCmdBuffer) CopyImage(param *driver.ImageCopy)                                {}
func (c *fakeCmdBuffer) CopyBufToImg(param *driver.BufImgCopy)                            {}
func (c *fakeCmdBuffer) CopyImgToBuf(param *driver.BufImgCopy)                            {}
func (c *fakeCmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64)        {}
func (c *fakeCmdBuffer) Barrier(b []driver.Barrier)                                       {}
func (c *fakeCmdBuffer) Transition(t []driver.Transition)                                 {}
func (c *fakeCmdBuffer) End() error                                                       { return nil }
func (c *fakeCmdBuffer) Reset() error                                                     { c.began = false; return nil }

// fakeSwapchain lets frame pacing tests control exactly when
// acquisition/presentation fail, to exercise the recreate-then-retry
// policy deterministically.
type fakeSwapchain struct {
	nextErrs    []error
	presentErrs []error
	recreated   int
	calls       int
}

func (s *fakeSwapchain) Destroy()               {}
func (s *fakeSwapchain) Views() []driver.ImageView { return nil }

func (s *fakeSwapchain) Next(cb driver.CmdBuffer) (int, error) {
	i := s.calls
	s.calls++
	if i < len(s.nextErrs) && s.nextErrs[i] != nil {
		return 0, s.nextErrs[i]
	}
	return 0, nil
}

func (s *fakeSwapchain) Present(index int, cb driver.CmdBuffer) error {
	if index < len(s.presentErrs) && s.presentErrs[index] != nil {
		return s.presentErrs[index]
	}
	return nil
}

func (s *fakeSwapchain) Recreate() error {
	s.recreated++
	return nil
}

func (s *fakeSwapchain) Format() driver.PixelFmt { return driver.RGBA8un }

var errBoom = errors.New("fake: boom")
