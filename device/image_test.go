package device

import (
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

func TestFramebufferInvalidationOnImageDestroy(t *testing.T) {
	d := newTestDevice()

	att := []driver.Attachment{{Format: driver.RGBA8un, Samples: 1}}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1}}
	pass, err := d.GetOrCreatePass(att, sub)
	if err != nil {
		t.Fatal(err)
	}

	img, err := d.NewImage(driver.RGBA8un, driver.Dim3D{Width: 64, Height: 64, Depth: 1}, 1, 1, 1, driver.URenderTarget)
	if err != nil {
		t.Fatal(err)
	}
	view, err := d.NewImageView(img, driver.IView2D, 0, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}

	fb, err := d.GetOrCreateFramebuffer(pass, []*ImageView{view}, []*Image{img}, 64, 64, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(img.fboHashes) != 1 {
		t.Fatalf("expected the image to record one fbo hash, got %d", len(img.fboHashes))
	}
	if len(d.caches.framebuffers.m) != 1 {
		t.Fatalf("expected one cached framebuffer, got %d", len(d.caches.framebuffers.m))
	}

	fb2, err := d.GetOrCreateFramebuffer(pass, []*ImageView{view}, []*Image{img}, 64, 64, 1)
	if err != nil {
		t.Fatal(err)
	}
	if fb.ID() != fb2.ID() {
		t.Fatal("requesting the same framebuffer parameters must hit the cache")
	}

	if err := d.DestroyImage(img); err != nil {
		t.Fatal(err)
	}
	if len(d.caches.framebuffers.m) != 0 {
		t.Fatal("destroying the backing image must invalidate every framebuffer that referenced it")
	}
}
