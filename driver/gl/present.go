// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/wsi"
)

// swapchain implements driver.Swapchain. Core OpenGL has no
// presentation-engine object: the "swapchain" is a ring of offscreen
// color textures, each owning its own FBO, that Present blits into the
// window's default framebuffer (name 0) before calling glfw.SwapBuffers,
// unlike vk.swapchain's VkSwapchainKHR-owned images acquired through a
// real presentation queue.
type swapchain struct {
	d      *Driver
	win    glfwWin
	pf     driver.PixelFmt
	width  int
	height int
	images []*image
	views  []*imageView
	fbos   []uint32
	next   int
}

// glfwWin is the minimal surface this package needs from the
// *glfw.Window that wsi.GLFWWindow hands back, kept as an interface so
// present.go does not need to import go-gl/glfw directly.
type glfwWin interface {
	SwapBuffers()
	GetFramebufferSize() (int, int)
}

// NewSwapchain creates a ring of imageCount offscreen render targets
// presented to win.
func (d *Driver) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	if imageCount < 1 {
		imageCount = 1
	}
	w, h := win.Width(), win.Height()
	sc := &swapchain{
		d:      d,
		win:    wsi.GLFWWindow(win),
		pf:     driver.BGRA8sRGB,
		width:  w,
		height: h,
	}
	if err := sc.create(imageCount); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *swapchain) create(n int) error {
	sc.destroyImages()
	sc.images = make([]*image, n)
	sc.views = make([]*imageView, n)
	sc.fbos = make([]uint32, n)

	for i := 0; i < n; i++ {
		img, err := sc.d.NewImage(sc.pf, driver.Dim3D{Width: sc.width, Height: sc.height, Depth: 1}, 1, 1, 1, driver.UGeneric)
		if err != nil {
			return err
		}
		v, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return err
		}
		var fbo uint32
		glow.CreateFramebuffers(1, &fbo)
		iv := v.(*imageView)
		glow.NamedFramebufferTexture(fbo, glow.COLOR_ATTACHMENT0, iv.name, 0)
		if status := glow.CheckNamedFramebufferStatus(fbo, glow.DRAW_FRAMEBUFFER); status != glow.FRAMEBUFFER_COMPLETE {
			glow.DeleteFramebuffers(1, &fbo)
			return errIncompleteFB
		}
		sc.images[i] = img.(*image)
		sc.views[i] = iv
		sc.fbos[i] = fbo
	}
	return nil
}

func (sc *swapchain) destroyImages() {
	for _, fbo := range sc.fbos {
		if fbo != 0 {
			glow.DeleteFramebuffers(1, &fbo)
		}
	}
	for _, v := range sc.views {
		v.Destroy()
	}
	for _, img := range sc.images {
		img.Destroy()
	}
	sc.images, sc.views, sc.fbos = nil, nil, nil
}

// Views returns the swapchain's image views.
func (sc *swapchain) Views() []driver.ImageView {
	vs := make([]driver.ImageView, len(sc.views))
	for i, v := range sc.views {
		vs[i] = v
	}
	return vs
}

// Next returns the next writable image index, round-robin. Unlike
// vk.swapchain.Next, there is no presentation engine to synchronize
// with: the previous frame's blit into the default framebuffer already
// happened synchronously in Present, so any offscreen index not
// currently queued for replay is immediately available.
func (sc *swapchain) Next(cb driver.CmdBuffer) (int, error) {
	idx := sc.next
	sc.next = (sc.next + 1) % len(sc.images)
	return idx, nil
}

// Present blits the image at index into the window's default
// framebuffer and swaps it to the screen.
func (sc *swapchain) Present(index int, cb driver.CmdBuffer) error {
	fbo := sc.fbos[index]
	glow.BlitNamedFramebuffer(fbo, 0, 0, 0, int32(sc.width), int32(sc.height), 0, 0, int32(sc.width), int32(sc.height), glow.COLOR_BUFFER_BIT, glow.NEAREST)
	if err := checkError("Present"); err != nil {
		return err
	}
	sc.win.SwapBuffers()
	return nil
}

// Recreate rebuilds the offscreen targets, e.g. after a window resize.
func (sc *swapchain) Recreate() error {
	w, h := sc.win.GetFramebufferSize()
	sc.width, sc.height = w, h
	return sc.create(len(sc.images))
}

// Format returns the swapchain images' pixel format.
func (sc *swapchain) Format() driver.PixelFmt { return sc.pf }

// Destroy destroys the swapchain's offscreen targets.
func (sc *swapchain) Destroy() {
	if sc == nil {
		return
	}
	sc.destroyImages()
	*sc = swapchain{}
}
