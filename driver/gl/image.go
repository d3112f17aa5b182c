// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gl

import (
	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// image implements driver.Image. GL textures carry their own storage
// (no separate memory object to bind), so image is a thinner wrapper
// than vk.image.
type image struct {
	d       *Driver
	name    uint32
	target  uint32
	fmt     glFormat
	width   int
	height  int
	layers  int
	levels  int
	samples int
	// There is no ownership flag: swapchain color targets (see
	// present.go) are ordinary images this backend allocated itself,
	// and Destroy deletes their texture like any other (unlike
	// vk.image's swapchainOwned).
}

// NewImage creates a new immutable-storage 2D or cube texture.
// samples > 1 allocates a multisample texture storage and ignores
// levels (matching core GL, which forbids mipmapped multisample
// textures).
func (d *Driver) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	f := fromPixelFmt(pf)
	var name uint32
	target := uint32(glow.TEXTURE_2D)
	switch {
	case samples > 1:
		target = glow.TEXTURE_2D_MULTISAMPLE
	case layers == 6:
		target = glow.TEXTURE_CUBE_MAP
	case layers > 1:
		target = glow.TEXTURE_2D_ARRAY
	}
	glow.CreateTextures(target, 1, &name)

	switch target {
	case glow.TEXTURE_2D_MULTISAMPLE:
		glow.TextureStorage2DMultisample(name, int32(samples), uint32(f.internal), int32(size.Width), int32(size.Height), true)
	case glow.TEXTURE_2D_ARRAY, glow.TEXTURE_CUBE_MAP:
		glow.TextureStorage3D(name, int32(levels), uint32(f.internal), int32(size.Width), int32(size.Height), int32(layers))
	default:
		glow.TextureStorage2D(name, int32(levels), uint32(f.internal), int32(size.Width), int32(size.Height))
	}
	if err := checkError("NewImage"); err != nil {
		glow.DeleteTextures(1, &name)
		return nil, err
	}

	return &image{
		d:       d,
		name:    name,
		target:  target,
		fmt:     f,
		width:   size.Width,
		height:  size.Height,
		layers:  layers,
		levels:  levels,
		samples: samples,
	}, nil
}

// imageView implements driver.ImageView. OpenGL has no first-class
// view object for the common case of "the whole texture"; a view is
// only materialized as a distinct glTextureView name when it selects
// a layer/level subrange narrower than the parent, mirroring how
// vk.imageView always creates a real VkImageView but letting this
// backend skip the extra object when it would be a no-op alias.
type imageView struct {
	d      *Driver
	name   uint32
	owned  bool
	target uint32
	img    *image
	layer  int
	level  int
}

// NewView creates a new view of the image.
func (img *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	full := layer == 0 && level == 0 && layers == img.layers && levels == img.levels
	if full {
		return &imageView{d: img.d, name: img.name, owned: false, target: img.target, img: img}, nil
	}
	var name uint32
	tgt := viewTarget(typ)
	glow.GenTextures(1, &name)
	glow.TextureView(name, tgt, img.name, img.fmt.internal, uint32(level), uint32(levels), uint32(layer), uint32(layers))
	if err := checkError("NewView"); err != nil {
		glow.DeleteTextures(1, &name)
		return nil, err
	}
	return &imageView{d: img.d, name: name, owned: true, target: tgt, img: img, layer: layer, level: level}, nil
}

// Destroy destroys the view if it owns a distinct texture name. The
// owning image is unaffected.
func (v *imageView) Destroy() {
	if v == nil || v.name == 0 {
		return
	}
	if v.owned {
		glow.DeleteTextures(1, &v.name)
	}
	*v = imageView{}
}

// Destroy destroys the texture.
func (img *image) Destroy() {
	if img == nil || img.name == 0 {
		return
	}
	glow.DeleteTextures(1, &img.name)
	*img = image{}
}

// sampler implements driver.Sampler.
type sampler struct {
	d    *Driver
	name uint32
}

// NewSampler creates a new sampler object. Per spec.md §4.6/§9, the
// mip LOD range is plumbed through unmodified from spln rather than
// derived from an image's level count; preserved as-is.
func (d *Driver) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	var name uint32
	glow.CreateSamplers(1, &name)
	glow.SamplerParameteri(name, glow.TEXTURE_MAG_FILTER, int32(fromFilter(spln.Mag)))
	glow.SamplerParameteri(name, glow.TEXTURE_MIN_FILTER, int32(fromMinFilter(spln.Min, spln.Mipmap)))
	glow.SamplerParameteri(name, glow.TEXTURE_WRAP_S, fromAddrMode(spln.AddrU))
	glow.SamplerParameteri(name, glow.TEXTURE_WRAP_T, fromAddrMode(spln.AddrV))
	glow.SamplerParameteri(name, glow.TEXTURE_WRAP_R, fromAddrMode(spln.AddrW))
	glow.SamplerParameterf(name, glow.TEXTURE_MIN_LOD, spln.MinLOD)
	glow.SamplerParameterf(name, glow.TEXTURE_MAX_LOD, spln.MaxLOD)
	if spln.MaxAniso > 1 {
		glow.SamplerParameterf(name, glow.TEXTURE_MAX_ANISOTROPY, float32(spln.MaxAniso))
	}
	if spln.Cmp != driver.CAlways {
		glow.SamplerParameteri(name, glow.TEXTURE_COMPARE_MODE, glow.COMPARE_REF_TO_TEXTURE)
		glow.SamplerParameteri(name, glow.TEXTURE_COMPARE_FUNC, int32(fromCmpFunc(spln.Cmp)))
	}
	if err := checkError("NewSampler"); err != nil {
		glow.DeleteSamplers(1, &name)
		return nil, err
	}
	return &sampler{d: d, name: name}, nil
}

func (s *sampler) Destroy() {
	if s == nil || s.name == 0 {
		return
	}
	glow.DeleteSamplers(1, &s.name)
	*s = sampler{}
}
