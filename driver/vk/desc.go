// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// bindingInfo records what a given binding number was declared as, so
// SetBuffer/SetImage/SetSampler can fill in the right vk.DescriptorType
// without the caller repeating it on every update.
type bindingInfo struct {
	typ vk.DescriptorType
	len int
}

// descHeap implements driver.DescHeap: a descriptor set layout plus,
// after New(n), a descriptor pool sized for exactly n copies of every
// binding and the n descriptor sets carved from it.
type descHeap struct {
	d        *Driver
	layout   vk.DescriptorSetLayout
	bindings map[int]bindingInfo
	pool     vk.DescriptorPool
	sets     []vk.DescriptorSet
}

// NewDescHeap creates a new descriptor heap (the Vulkan backing for a
// device.SetLayout). The heap has no storage until New is called.
func (d *Driver) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	binds := make([]vk.DescriptorSetLayoutBinding, len(ds))
	info := make(map[int]bindingInfo, len(ds))
	for i, desc := range ds {
		dt := fromDescType(desc.Type)
		binds[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(desc.Nr),
			DescriptorType:  dt,
			DescriptorCount: uint32(desc.Len),
			StageFlags:      fromStage(desc.Stages),
		}
		info[desc.Nr] = bindingInfo{typ: dt, len: desc.Len}
	}
	linfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(binds)),
		PBindings:    binds,
	}
	var layout vk.DescriptorSetLayout
	if err := checkResult(vk.CreateDescriptorSetLayout(d.dev, &linfo, nil, &layout)); err != nil {
		return nil, err
	}
	return &descHeap{d: d, layout: layout, bindings: info}, nil
}

// New reallocates the heap's storage for n copies, destroying
// whatever pool and sets it previously held (unless n already matches
// Count, in which case this is a no-op). New(0) frees all storage.
func (h *descHeap) New(n int) error {
	if n == h.Count() {
		return nil
	}
	h.freePool()
	if n == 0 {
		return nil
	}

	sizes := make(map[vk.DescriptorType]int)
	for _, b := range h.bindings {
		sizes[b.typ] += b.len * n
	}
	poolSizes := make([]vk.DescriptorPoolSize, 0, len(sizes))
	for t, c := range sizes {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{Type: t, DescriptorCount: uint32(c)})
	}
	pinfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(n),
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if err := checkResult(vk.CreateDescriptorPool(h.d.dev, &pinfo, nil, &pool)); err != nil {
		return err
	}

	layouts := make([]vk.DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = h.layout
	}
	ainfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(n),
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, n)
	if err := checkResult(vk.AllocateDescriptorSets(h.d.dev, &ainfo, &sets[0])); err != nil {
		vk.DestroyDescriptorPool(h.d.dev, pool, nil)
		return err
	}

	h.pool = pool
	h.sets = sets
	return nil
}

func (h *descHeap) freePool() {
	if h.pool != nil {
		vk.DestroyDescriptorPool(h.d.dev, h.pool, nil)
	}
	h.pool = nil
	h.sets = nil
}

// Count returns the number of heap copies currently allocated.
func (h *descHeap) Count() int { return len(h.sets) }

// SetBuffer updates a DBuffer/DConstant binding for one heap copy.
func (h *descHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	infos := make([]vk.DescriptorBufferInfo, len(buf))
	for i := range buf {
		infos[i] = vk.DescriptorBufferInfo{
			Buffer: buf[i].(*buffer).buf,
			Offset: vk.DeviceSize(off[i]),
			Range:  vk.DeviceSize(size[i]),
		}
	}
	w := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  h.bindings[nr].typ,
		PBufferInfo:     infos,
	}
	vk.UpdateDescriptorSets(h.d.dev, 1, []vk.WriteDescriptorSet{w}, 0, nil)
}

// SetImage updates a DImage/DTexture binding for one heap copy. The
// image views are bound as either a storage image (vk.ImageLayoutGeneral)
// or a sampled image (vk.ImageLayoutShaderReadOnlyOptimal) according
// to the binding's declared descriptor type.
func (h *descHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	layout := vk.ImageLayoutShaderReadOnlyOptimal
	if h.bindings[nr].typ == vk.DescriptorTypeStorageImage {
		layout = vk.ImageLayoutGeneral
	}
	infos := make([]vk.DescriptorImageInfo, len(iv))
	for i := range iv {
		infos[i] = vk.DescriptorImageInfo{
			ImageView:   iv[i].(*imageView).view,
			ImageLayout: layout,
		}
	}
	w := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  h.bindings[nr].typ,
		PImageInfo:      infos,
	}
	vk.UpdateDescriptorSets(h.d.dev, 1, []vk.WriteDescriptorSet{w}, 0, nil)
}

// SetSampler updates a DSampler binding for one heap copy.
func (h *descHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	infos := make([]vk.DescriptorImageInfo, len(splr))
	for i := range splr {
		infos[i] = vk.DescriptorImageInfo{Sampler: splr[i].(*sampler).spl}
	}
	w := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  vk.DescriptorTypeSampler,
		PImageInfo:      infos,
	}
	vk.UpdateDescriptorSets(h.d.dev, 1, []vk.WriteDescriptorSet{w}, 0, nil)
}

// Destroy destroys the heap's layout and any storage allocated by New.
func (h *descHeap) Destroy() {
	if h == nil || h.layout == nil {
		return
	}
	h.freePool()
	vk.DestroyDescriptorSetLayout(h.d.dev, h.layout, nil)
	*h = descHeap{}
}

// pushConstantSize is the single push-constant range's size, visible
// to every shader stage, implicit in every pipeline layout per
// spec.md §3/§6.
const pushConstantSize = 128

// descTable implements driver.DescTable: a vk.PipelineLayout built
// from an ordered list of descHeaps, plus the 128-byte push-constant
// range implicit in every layout.
type descTable struct {
	d      *Driver
	layout vk.PipelineLayout
	heaps  []*descHeap
}

// NewDescTable creates a new descriptor table binding dh's set
// layouts, in order, to a single pipeline layout.
func (d *Driver) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	heaps := make([]*descHeap, len(dh))
	layouts := make([]vk.DescriptorSetLayout, len(dh))
	for i, h := range dh {
		heaps[i] = h.(*descHeap)
		layouts[i] = heaps[i].layout
	}
	push := vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit) | vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		Offset:     0,
		Size:       pushConstantSize,
	}
	info := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(layouts)),
		PSetLayouts:            layouts,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{push},
	}
	var layout vk.PipelineLayout
	if err := checkResult(vk.CreatePipelineLayout(d.dev, &info, nil, &layout)); err != nil {
		return nil, err
	}
	return &descTable{d: d, layout: layout, heaps: heaps}, nil
}

func (t *descTable) Destroy() {
	if t == nil || t.layout == nil {
		return
	}
	vk.DestroyPipelineLayout(t.d.dev, t.layout, nil)
	*t = descTable{}
}
