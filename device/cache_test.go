package device

import (
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

func newTestDevice() *Device {
	drv := &fakeDriver{name: "fake"}
	gpu, _ := drv.Open()
	return New(gpu, Config{})
}

func TestPassCacheIdempotent(t *testing.T) {
	d := newTestDevice()
	att := []driver.Attachment{{Format: driver.RGBA8un, Samples: 1}}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1}}

	p1, err := d.GetOrCreatePass(att, sub)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := d.GetOrCreatePass(att, sub)
	if err != nil {
		t.Fatal(err)
	}
	if p1.ID() != p2.ID() {
		t.Fatalf("identical pass creation parameters produced different rids: %d != %d", p1.ID(), p2.ID())
	}
	if len(d.caches.passes.m) != 1 {
		t.Fatalf("expected exactly one cached pass, got %d", len(d.caches.passes.m))
	}

	att2 := []driver.Attachment{{Format: driver.BGRA8un, Samples: 1}}
	p3, err := d.GetOrCreatePass(att2, sub)
	if err != nil {
		t.Fatal(err)
	}
	if p3.ID() == p1.ID() {
		t.Fatal("different attachment formats must not collapse onto the same cache entry")
	}
}

func TestSetLayoutCacheIdempotent(t *testing.T) {
	d := newTestDevice()
	ds := []driver.Descriptor{{Type: driver.DConstant, Stages: driver.SVertex, Nr: 0, Len: 1}}

	l1, err := d.GetOrCreateSetLayout(ds)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := d.GetOrCreateSetLayout(ds)
	if err != nil {
		t.Fatal(err)
	}
	if l1.ID() != l2.ID() {
		t.Fatal("identical set layout parameters produced different rids")
	}
}

func TestPipelineLayoutCacheIdempotent(t *testing.T) {
	d := newTestDevice()
	ds := []driver.Descriptor{{Type: driver.DConstant, Stages: driver.SVertex, Nr: 0, Len: 1}}
	l, err := d.GetOrCreateSetLayout(ds)
	if err != nil {
		t.Fatal(err)
	}

	pl1, err := d.GetOrCreatePipelineLayout([]*SetLayout{l})
	if err != nil {
		t.Fatal(err)
	}
	pl2, err := d.GetOrCreatePipelineLayout([]*SetLayout{l})
	if err != nil {
		t.Fatal(err)
	}
	if pl1.ID() != pl2.ID() {
		t.Fatal("identical pipeline layout parameters produced different rids")
	}
}

func TestDestroyEmptiesCaches(t *testing.T) {
	d := newTestDevice()
	att := []driver.Attachment{{Format: driver.RGBA8un, Samples: 1}}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1}}
	if _, err := d.GetOrCreatePass(att, sub); err != nil {
		t.Fatal(err)
	}
	ds := []driver.Descriptor{{Type: driver.DConstant, Stages: driver.SVertex, Nr: 0, Len: 1}}
	l, err := d.GetOrCreateSetLayout(ds)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetOrCreatePipelineLayout([]*SetLayout{l}); err != nil {
		t.Fatal(err)
	}

	d.Destroy()

	if len(d.caches.passes.m) != 0 || len(d.caches.setLayouts.m) != 0 || len(d.caches.pipelineLayouts.m) != 0 {
		t.Fatal("Destroy must empty every cache")
	}
}
