// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/wsi"
)

// swapchain implements driver.Swapchain.
//
// Next blocks on a dedicated fence until the acquired image is ready
// rather than threading an acquire semaphore through to Commit's
// submission, since driver.GPU.Commit takes no semaphore parameters.
// This trades a small amount of CPU/GPU overlap for keeping the
// Presenter contract exactly as narrow as the driver package defines
// it; device.Device's own frame pacing (frames-in-flight slots) is
// what actually keeps the pipeline full across frames.
type swapchain struct {
	d       *Driver
	win     wsi.Window
	surf    vk.Surface
	sc      vk.Swapchain
	format  vk.Format
	pf      driver.PixelFmt
	extent  vk.Extent2D
	images  []vk.Image
	views   []*imageView
	acqSem  vk.Semaphore
	relSem  vk.Semaphore
	acqFence vk.Fence
}

// NewSwapchain creates a new swapchain presenting to win.
func (d *Driver) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	surfPtr, err := wsi.VulkanSurface(win, unsafe.Pointer(d.inst))
	if err != nil {
		return nil, driver.ErrWindow
	}
	surf := vk.SurfaceFromPointer(surfPtr)

	var supported vk.Bool32
	if err := checkResult(vk.GetPhysicalDeviceSurfaceSupport(d.pdev, d.qfam, surf, &supported)); err != nil {
		return nil, err
	}
	if supported == vk.False {
		return nil, driver.ErrCannotPresent
	}

	sc := &swapchain{d: d, win: win, surf: surf}
	if err := sc.create(imageCount); err != nil {
		vk.DestroySurface(d.inst, surf, nil)
		return nil, err
	}
	return sc, nil
}

// create builds (or rebuilds) the VkSwapchainKHR and its image views.
func (sc *swapchain) create(imageCount int) error {
	d := sc.d

	var caps vk.SurfaceCapabilities
	if err := checkResult(vk.GetPhysicalDeviceSurfaceCapabilities(d.pdev, sc.surf, &caps)); err != nil {
		return err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()

	var fmtCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.pdev, sc.surf, &fmtCount, nil)
	fmts := make([]vk.SurfaceFormat, fmtCount)
	vk.GetPhysicalDeviceSurfaceFormats(d.pdev, sc.surf, &fmtCount, fmts)
	format := fmts[0]
	for _, f := range fmts {
		f.Deref()
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			format = f
			break
		}
	}
	format.Deref()

	var pmCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(d.pdev, sc.surf, &pmCount, nil)
	pms := make([]vk.PresentMode, pmCount)
	vk.GetPhysicalDeviceSurfacePresentModes(d.pdev, sc.surf, &pmCount, pms)
	mode := vk.PresentModeFifo
	for _, m := range pms {
		if m == vk.PresentModeMailbox {
			mode = m
			break
		}
	}

	extent := caps.CurrentExtent
	if extent.Width == 0xFFFFFFFF {
		w, h := sc.win.Width(), sc.win.Height()
		if fs, ok := sc.win.(interface{ FramebufferSize() (int, int) }); ok {
			w, h = fs.FramebufferSize()
		}
		extent = vk.Extent2D{Width: uint32(w), Height: uint32(h)}
	}

	n := uint32(imageCount)
	if n < caps.MinImageCount {
		n = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.surf,
		MinImageCount:    n,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     sc.sc,
	}
	var newSC vk.Swapchain
	if err := checkResult(vk.CreateSwapchain(d.dev, &info, nil, &newSC)); err != nil {
		return err
	}
	if sc.sc != nil {
		sc.destroyImages()
		vk.DestroySwapchain(d.dev, sc.sc, nil)
	}
	sc.sc = newSC
	sc.format = format.Format
	sc.pf, _ = toPixelFmt(format.Format)
	sc.extent = extent

	var imgCount uint32
	vk.GetSwapchainImages(d.dev, sc.sc, &imgCount, nil)
	images := make([]vk.Image, imgCount)
	vk.GetSwapchainImages(d.dev, sc.sc, &imgCount, images)
	sc.images = images

	sc.views = make([]*imageView, len(images))
	for i, img := range images {
		wrapped := &image{
			d:              d,
			img:            img,
			format:         format.Format,
			aspect:         vk.ImageAspectFlags(vk.ImageAspectColorBit),
			extent:         vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
			layers:         1,
			levels:         1,
			samples:        1,
			swapchainOwned: true,
		}
		v, err := wrapped.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			return err
		}
		sc.views[i] = v.(*imageView)
	}

	if sc.acqSem == nil {
		semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
		if err := checkResult(vk.CreateSemaphore(d.dev, &semInfo, nil, &sc.acqSem)); err != nil {
			return err
		}
		if err := checkResult(vk.CreateSemaphore(d.dev, &semInfo, nil, &sc.relSem)); err != nil {
			return err
		}
		fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
		if err := checkResult(vk.CreateFence(d.dev, &fenceInfo, nil, &sc.acqFence)); err != nil {
			return err
		}
	}
	return nil
}

func (sc *swapchain) destroyImages() {
	for _, v := range sc.views {
		v.Destroy()
	}
	sc.views = nil
	sc.images = nil
}

// Views returns the swapchain's image views.
func (sc *swapchain) Views() []driver.ImageView {
	vs := make([]driver.ImageView, len(sc.views))
	for i, v := range sc.views {
		vs[i] = v
	}
	return vs
}

// Next acquires the next writable image.
func (sc *swapchain) Next(cb driver.CmdBuffer) (int, error) {
	var idx uint32
	res := vk.AcquireNextImage(sc.d.dev, sc.sc, ^uint64(0), sc.acqSem, sc.acqFence, &idx)
	switch res {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return 0, driver.ErrSwapchain
	default:
		return 0, checkResult(res)
	}
	vk.WaitForFences(sc.d.dev, 1, []vk.Fence{sc.acqFence}, vk.True, ^uint64(0))
	vk.ResetFences(sc.d.dev, 1, []vk.Fence{sc.acqFence})
	return int(idx), nil
}

// Present presents the image at index.
func (sc *swapchain) Present(index int, cb driver.CmdBuffer) error {
	idx := uint32(index)
	info := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{sc.sc},
		PImageIndices:  []uint32{idx},
	}
	res := vk.QueuePresent(sc.d.ques[0], &info)
	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return driver.ErrSwapchain
	default:
		return checkResult(res)
	}
}

// Recreate rebuilds the swapchain, e.g. after a window resize.
func (sc *swapchain) Recreate() error {
	return sc.create(len(sc.images))
}

// Format returns the swapchain images' pixel format.
func (sc *swapchain) Format() driver.PixelFmt { return sc.pf }

// Destroy destroys the swapchain and its surface.
func (sc *swapchain) Destroy() {
	if sc == nil || sc.sc == nil {
		return
	}
	sc.destroyImages()
	vk.DestroySwapchain(sc.d.dev, sc.sc, nil)
	vk.DestroySemaphore(sc.d.dev, sc.acqSem, nil)
	vk.DestroySemaphore(sc.d.dev, sc.relSem, nil)
	vk.DestroyFence(sc.d.dev, sc.acqFence, nil)
	vk.DestroySurface(sc.d.inst, sc.surf, nil)
	*sc = swapchain{}
}
