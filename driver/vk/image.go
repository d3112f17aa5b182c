// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// image implements driver.Image.
type image struct {
	d       *Driver
	img     vk.Image
	mem     *memory
	format  vk.Format
	aspect  vk.ImageAspectFlags
	extent  vk.Extent3D
	layers  int
	levels  int
	samples int
	// swapchainOwned is set for images wrapping a swapchain's own
	// VkImage; Destroy is then a no-op on the vk.Image itself since
	// the swapchain owns it, matching the driver contract that
	// wrapping an image never implies ownership transfer.
	swapchainOwned bool
}

func aspectFor(f vk.Format) vk.ImageAspectFlags {
	switch f {
	case vk.FormatD16Unorm, vk.FormatD32Sfloat:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	case vk.FormatS8Uint:
		return vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	case vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit) | vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	default:
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
}

// NewImage creates a new image. Cube images (layers == 6) request the
// cube-compatible creation flag; every other image is created as a
// plain 2D image, per spec.md's Non-goals (no 1D/3D images exposed
// beyond what driver.Image itself can describe).
func (d *Driver) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	f := fromPixelFmt(pf)
	_, iu := fromUsage(usg)

	var flags vk.ImageCreateFlags
	imgType := vk.ImageType2d
	if layers == 6 {
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: imgType,
		Format:    f,
		Extent: vk.Extent3D{
			Width:  uint32(size.Width),
			Height: uint32(size.Height),
			Depth:  1,
		},
		MipLevels:     uint32(levels),
		ArrayLayers:   uint32(layers),
		Samples:       sampleCountFlag(samples),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         iu,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var img vk.Image
	if err := checkResult(vk.CreateImage(d.dev, &info, nil, &img)); err != nil {
		return nil, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.dev, img, &req)
	mem, err := d.newMemory(req, false)
	if err != nil {
		vk.DestroyImage(d.dev, img, nil)
		return nil, err
	}
	if err := checkResult(vk.BindImageMemory(d.dev, img, mem.mem, 0)); err != nil {
		mem.free()
		vk.DestroyImage(d.dev, img, nil)
		return nil, err
	}
	mem.bound = true

	return &image{
		d:       d,
		img:     img,
		mem:     mem,
		format:  f,
		aspect:  aspectFor(f),
		extent:  info.Extent,
		layers:  layers,
		levels:  levels,
		samples: samples,
	}, nil
}

// sampleCountFlag translates a plain sample count into the matching
// vk.SampleCountFlagBits. The abstract and Vulkan bit layouts coincide
// for every power-of-two count driver.Image supports, so this is a
// direct conversion rather than a lookup table.
func sampleCountFlag(samples int) vk.SampleCountFlagBits {
	if samples <= 1 {
		return vk.SampleCount1Bit
	}
	return vk.SampleCountFlagBits(samples)
}

// imageView implements driver.ImageView.
type imageView struct {
	d    *Driver
	view vk.ImageView
	img  *image
}

// NewView creates a new view of the image.
func (img *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.img,
		ViewType: fromViewType(typ),
		Format:   img.format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     img.aspect,
			BaseMipLevel:   uint32(level),
			LevelCount:     uint32(levels),
			BaseArrayLayer: uint32(layer),
			LayerCount:     uint32(layers),
		},
	}
	var view vk.ImageView
	if err := checkResult(vk.CreateImageView(img.d.dev, &info, nil, &view)); err != nil {
		return nil, err
	}
	return &imageView{d: img.d, view: view, img: img}, nil
}

// Destroy destroys the view. The owning image is unaffected.
func (v *imageView) Destroy() {
	if v == nil || v.view == nil {
		return
	}
	vk.DestroyImageView(v.d.dev, v.view, nil)
	*v = imageView{}
}

// Destroy destroys the image and frees its memory. Swapchain-owned
// images are skipped: the swapchain itself destroys the VkImage on
// teardown.
func (img *image) Destroy() {
	if img == nil || img.img == nil {
		return
	}
	if !img.swapchainOwned {
		vk.DestroyImage(img.d.dev, img.img, nil)
		img.mem.free()
	}
	*img = image{}
}

// sampler implements driver.Sampler.
type sampler struct {
	d   *Driver
	spl vk.Sampler
}

// NewSampler creates a new Sampler. Per spec.md §4.6, the mip LOD
// range is plumbed through unmodified as [spln.MinLOD, spln.MaxLOD]
// rather than derived from the image's level count — preserved as-is
// per spec.md §9's open question, not fixed here.
func (d *Driver) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               fromFilter(spln.Mag),
		MinFilter:               fromFilter(spln.Min),
		MipmapMode:              fromMipFilter(spln.Mipmap),
		AddressModeU:            fromAddrMode(spln.AddrU),
		AddressModeV:            fromAddrMode(spln.AddrV),
		AddressModeW:            fromAddrMode(spln.AddrW),
		AnisotropyEnable:        vk.Bool32(b2i(spln.MaxAniso > 1)),
		MaxAnisotropy:           float32(spln.MaxAniso),
		CompareEnable:           vk.Bool32(b2i(spln.Cmp != driver.CAlways)),
		CompareOp:               fromCmpFunc(spln.Cmp),
		MinLod:                  spln.MinLOD,
		MaxLod:                  spln.MaxLOD,
		BorderColor:             vk.BorderColorFloatOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var spl vk.Sampler
	if err := checkResult(vk.CreateSampler(d.dev, &info, nil, &spl)); err != nil {
		return nil, err
	}
	return &sampler{d: d, spl: spl}, nil
}

func (s *sampler) Destroy() {
	if s == nil || s.spl == nil {
		return
	}
	vk.DestroySampler(s.d.dev, s.spl, nil)
	*s = sampler{}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
