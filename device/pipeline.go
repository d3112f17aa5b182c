package device

import (
	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rhash"
)

// GraphTemplate describes a graphics pipeline independently of the
// render pass and per-target color write masks it will eventually be
// used with. Concrete driver.Pipeline objects (variants) are built
// lazily from a template the first time a given (pass, write mask)
// combination is requested.
type GraphTemplate struct {
	VertFunc driver.ShaderFunc
	FragFunc driver.ShaderFunc
	Layout   *PipelineLayout
	Input    []driver.VertexIn
	Topology driver.Topology
	Raster   driver.RasterState
	Samples  int
	DS       driver.DSState
	Blend    driver.BlendState
}

// Pipeline is a handle to a graphics pipeline template together with
// the set of variants lazily built from it.
type Pipeline struct {
	object
	template *GraphTemplate
	compute  *driver.CompState
	variants map[uint32]driver.Pipeline
	gpu      driver.GPU
}

// NewGraphPipeline creates a new pipeline handle from a template. No
// driver.Pipeline is built until GetVariant is first called for a
// given (pass, color write mask) combination.
func (d *Device) NewGraphPipeline(t *GraphTemplate) *Pipeline {
	o := d.newObject(kindPipeline)
	return &Pipeline{object: o, template: t, variants: make(map[uint32]driver.Pipeline), gpu: d.gpu}
}

// NewCompPipeline creates a compute pipeline. Compute pipelines have
// exactly one variant, built eagerly since there is nothing left to
// vary it on.
func (d *Device) NewCompPipeline(state *driver.CompState) (*Pipeline, error) {
	pl, err := d.gpu.NewPipeline(state)
	if err != nil {
		return nil, err
	}
	o := d.newObject(kindPipeline)
	return &Pipeline{
		object:   o,
		compute:  state,
		variants: map[uint32]driver.Pipeline{0: pl},
		gpu:      d.gpu,
	}, nil
}

// variantHash computes the key a graphics pipeline variant is cached
// under: the owning pass's hash combined with the per-target color
// write masks, the two things a variant actually varies on. Compute
// pipelines always use key 0, since they have no render pass or color
// targets to vary on.
func variantHash(pass *Pass, writeMasks []driver.ColorMask) uint32 {
	h := pass.hash
	var wm uint32
	for i, m := range writeMasks {
		wm = rhash.Uint32(wm, uint32(m)<<(uint(i)%24))
	}
	return h ^ rhash.CombineAll(wm)
}

// GetVariant returns the driver.Pipeline for the given pass and color
// write masks, building and caching it on first use. It must not be
// called on a Pipeline created with NewCompPipeline; use Compute
// instead.
func (p *Pipeline) GetVariant(pass *Pass, writeMasks []driver.ColorMask) (driver.Pipeline, error) {
	if p.template == nil {
		panic("device: GetVariant called on a compute pipeline")
	}
	h := variantHash(pass, writeMasks)
	if pl, ok := p.variants[h]; ok {
		return pl, nil
	}
	blend := p.template.Blend
	if len(writeMasks) > 0 {
		blend.Color = make([]driver.ColorBlend, len(p.template.Blend.Color))
		copy(blend.Color, p.template.Blend.Color)
		for i, m := range writeMasks {
			if i < len(blend.Color) {
				blend.Color[i].WriteMask = m
			}
		}
	}
	state := &driver.GraphState{
		VertFunc: p.template.VertFunc,
		FragFunc: p.template.FragFunc,
		Desc:     p.template.Layout.table,
		Input:    p.template.Input,
		Topology: p.template.Topology,
		Raster:   p.template.Raster,
		Samples:  p.template.Samples,
		DS:       p.template.DS,
		Blend:    blend,
		Pass:     pass.pass,
		Subpass:  0,
	}
	pl, err := p.gpu.NewPipeline(state)
	if err != nil {
		return nil, err
	}
	p.variants[h] = pl
	return pl, nil
}

// Compute returns the single driver.Pipeline built for a compute
// Pipeline. It must not be called on a graphics pipeline.
func (p *Pipeline) Compute() driver.Pipeline {
	if p.template != nil {
		panic("device: Compute called on a graphics pipeline")
	}
	return p.variants[0]
}

// DestroyPipeline destroys every variant built for p.
func (d *Device) DestroyPipeline(p *Pipeline) {
	d.forget(p.object)
	for h, pl := range p.variants {
		pl.Destroy()
		delete(p.variants, h)
	}
}
