package device

import "github.com/x2w-soda/Ludens-sub000/driver"

// Image is a handle to a GPU image allocated through a Device.
//
// Each Image keeps a back-set of the framebuffer cache hashes that
// reference it through one of its views, mirroring RImageObj's
// fboHashes set. Destroying the image invalidates every framebuffer
// in that set before the image itself goes away.
type Image struct {
	object
	img       driver.Image
	fboHashes map[uint32]struct{}
}

// NewImage creates a new image.
func (d *Device) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (*Image, error) {
	img, err := d.gpu.NewImage(pf, size, layers, levels, samples, usg)
	if err != nil {
		return nil, err
	}
	return &Image{
		object:    d.newObject(kindImage),
		img:       img,
		fboHashes: make(map[uint32]struct{}),
	}, nil
}

// ImageView is a handle to a typed view of an Image.
type ImageView struct {
	object
	view  driver.ImageView
	owner *Image
}

// NewImageView creates a new view of img.
func (d *Device) NewImageView(img *Image, typ driver.ViewType, layer, layers, level, levels int) (*ImageView, error) {
	v, err := img.img.NewView(typ, layer, layers, level, levels)
	if err != nil {
		return nil, err
	}
	return &ImageView{object: d.newObject(kindImageView), view: v, owner: img}, nil
}

// Driver returns the underlying driver.ImageView.
func (v *ImageView) Driver() driver.ImageView { return v.view }

// DestroyImageView destroys a view previously created with NewImageView.
func (d *Device) DestroyImageView(v *ImageView) {
	d.forget(v.object)
	v.view.Destroy()
}

// Driver returns the underlying driver.Image.
func (img *Image) Driver() driver.Image { return img.img }

// addFBHash records that the framebuffer cached under hash h
// references this image. Called by the framebuffer get-or-create path
// for each attachment it resolves to an owning Image.
func (img *Image) addFBHash(h uint32) {
	img.fboHashes[h] = struct{}{}
}

// DestroyImage destroys the image. Per the concurrency model, this
// first waits for the GPU to finish all in-flight work (an image may
// still be referenced by commands already committed), then destroys
// every framebuffer that referenced the image through one of its
// views, invalidating the corresponding cache entries, and finally
// destroys the image itself.
//
// Callers must destroy all of the image's views (via
// DestroyImageView) before calling DestroyImage; this mirrors the
// driver-level Image/ImageView lifetime contract.
func (d *Device) DestroyImage(img *Image) error {
	if err := d.WaitIdle(); err != nil {
		return err
	}
	for h := range img.fboHashes {
		d.caches.framebuffers.delete(h)
	}
	img.fboHashes = nil
	d.forget(img.object)
	img.img.Destroy()
	return nil
}
