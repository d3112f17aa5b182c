package device

import (
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

func TestVariantHashDeterministic(t *testing.T) {
	d := newTestDevice()
	att := []driver.Attachment{{Format: driver.RGBA8un, Samples: 1}}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1}}
	pass, err := d.GetOrCreatePass(att, sub)
	if err != nil {
		t.Fatal(err)
	}

	masks := []driver.ColorMask{driver.CAll}
	h1 := variantHash(pass, masks)
	h2 := variantHash(pass, masks)
	if h1 != h2 {
		t.Fatalf("variantHash not deterministic: %x != %x", h1, h2)
	}

	h3 := variantHash(pass, []driver.ColorMask{driver.CRed})
	if h3 == h1 {
		t.Fatal("different color write masks must produce different variant hashes")
	}
}

func TestGraphPipelineVariantCaching(t *testing.T) {
	d := newTestDevice()
	att := []driver.Attachment{{Format: driver.RGBA8un, Samples: 1}}
	sub := []driver.Subpass{{Color: []int{0}, DS: -1}}
	pass, err := d.GetOrCreatePass(att, sub)
	if err != nil {
		t.Fatal(err)
	}
	ds := []driver.Descriptor{{Type: driver.DConstant, Stages: driver.SVertex, Nr: 0, Len: 1}}
	layout, err := d.GetOrCreateSetLayout(ds)
	if err != nil {
		t.Fatal(err)
	}
	pLayout, err := d.GetOrCreatePipelineLayout([]*SetLayout{layout})
	if err != nil {
		t.Fatal(err)
	}

	tmpl := &GraphTemplate{
		Layout:   pLayout,
		Topology: driver.TTriangle,
		Blend:    driver.BlendState{Color: []driver.ColorBlend{{WriteMask: driver.CAll}}},
	}
	pl := d.NewGraphPipeline(tmpl)

	v1, err := pl.GetVariant(pass, []driver.ColorMask{driver.CAll})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := pl.GetVariant(pass, []driver.ColorMask{driver.CAll})
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Fatal("identical variant inputs must return the same cached driver.Pipeline")
	}
	if len(pl.variants) != 1 {
		t.Fatalf("expected one cached variant, got %d", len(pl.variants))
	}

	v3, err := pl.GetVariant(pass, []driver.ColorMask{driver.CRed})
	if err != nil {
		t.Fatal(err)
	}
	if v3 == v1 {
		t.Fatal("a different color write mask must build a distinct variant")
	}
	if len(pl.variants) != 2 {
		t.Fatalf("expected two cached variants, got %d", len(pl.variants))
	}
}

func TestComputePipelineSingleVariant(t *testing.T) {
	d := newTestDevice()
	pl, err := d.NewCompPipeline(&driver.CompState{})
	if err != nil {
		t.Fatal(err)
	}
	if len(pl.variants) != 1 {
		t.Fatalf("compute pipelines must have exactly one variant, got %d", len(pl.variants))
	}
	if pl.Compute() == nil {
		t.Fatal("Compute must return the eagerly built variant")
	}
}
