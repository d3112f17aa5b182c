// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// cbStatus tracks where a cmdBuffer is in its Begin/record/End/Commit
// lifecycle, mirroring the status machine device.CommandList layers
// on top at the handle level.
type cbStatus int

const (
	cbIdle cbStatus = iota
	cbBegun
	cbEnded
	cbFailed
)

// cmdBuffer implements driver.CmdBuffer. Its pool is exclusive to the
// buffer so Reset can always use
// VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT without contending
// with sibling buffers.
type cmdBuffer struct {
	d      *Driver
	pool   vk.CommandPool
	cb     vk.CommandBuffer
	status cbStatus
	err    error

	curPass *renderPass
	curFB   *framebuf
	curGx   vk.PipelineBindPoint
}

// NewCmdBuffer creates a new command buffer.
func (d *Driver) NewCmdBuffer() (driver.CmdBuffer, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.qfam,
	}
	var pool vk.CommandPool
	if err := checkResult(vk.CreateCommandPool(d.dev, &poolInfo, nil, &pool)); err != nil {
		return nil, err
	}
	cbInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cbs := make([]vk.CommandBuffer, 1)
	if err := checkResult(vk.AllocateCommandBuffers(d.dev, &cbInfo, cbs)); err != nil {
		vk.DestroyCommandPool(d.dev, pool, nil)
		return nil, err
	}
	return &cmdBuffer{d: d, pool: pool, cb: cbs[0]}, nil
}

// Begin prepares the command buffer for recording.
func (cb *cmdBuffer) Begin() error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := checkResult(vk.BeginCommandBuffer(cb.cb, &info)); err != nil {
		return err
	}
	cb.status = cbBegun
	cb.err = nil
	return nil
}

// BeginPass begins rendering via VK1.3 dynamic rendering, replaying
// the render pass' attachment load/store bookkeeping and the
// framebuffer's concrete views into a vk.RenderingInfo. There is no
// VkRenderPass/VkFramebuffer to begin against; see renderPass.
func (cb *cmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	p := pass.(*renderPass)
	f := fb.(*framebuf)
	cb.curPass = p
	cb.curFB = f

	area := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: uint32(f.width), Height: uint32(f.height)},
	}

	colorAtts := make([]vk.RenderingAttachmentInfo, len(f.colorViews))
	ci := 0
	for i := range p.att {
		colorIdx, isColor, isDS, _ := p.roleOf(i)
		a := p.att[i]
		if isColor {
			var cv vk.ClearValue
			cv.SetColor(clear[i].Color[:])
			colorAtts[colorIdx] = vk.RenderingAttachmentInfo{
				SType:       vk.StructureTypeRenderingAttachmentInfo,
				ImageView:   f.colorViews[colorIdx],
				ImageLayout: vk.ImageLayoutColorAttachmentOptimal,
				LoadOp:      fromLoadOp(a.Load[0]),
				StoreOp:     fromStoreOp(a.Store[0]),
				ClearValue:  cv,
			}
			ci++
		}
		_ = isDS
	}

	var dsAtt *vk.RenderingAttachmentInfo
	var stAtt *vk.RenderingAttachmentInfo
	if f.hasDS {
		for i := range p.att {
			_, _, isDS, _ := p.roleOf(i)
			if !isDS {
				continue
			}
			a := p.att[i]
			var cv vk.ClearValue
			cv.SetDepthStencil(clear[i].Depth, clear[i].Stencil)
			info := vk.RenderingAttachmentInfo{
				SType:       vk.StructureTypeRenderingAttachmentInfo,
				ImageView:   f.dsView,
				ImageLayout: vk.ImageLayoutDepthStencilAttachmentOptimal,
				LoadOp:      fromLoadOp(a.Load[0]),
				StoreOp:     fromStoreOp(a.Store[0]),
				ClearValue:  cv,
			}
			stInfo := info
			stInfo.LoadOp = fromLoadOp(a.Load[1])
			stInfo.StoreOp = fromStoreOp(a.Store[1])
			dsAtt = &info
			stAtt = &stInfo
		}
	}

	rinfo := vk.RenderingInfo{
		SType:                vk.StructureTypeRenderingInfo,
		RenderArea:           area,
		LayerCount:           uint32(f.layers),
		ColorAttachmentCount: uint32(len(colorAtts)),
		PColorAttachments:    colorAtts,
		PDepthAttachment:     dsAtt,
		PStencilAttachment:   stAtt,
	}
	vk.CmdBeginRendering(cb.cb, &rinfo)
}

// NextSubpass is a no-op: every render pass this backend builds has
// exactly one subpass (see renderPass), so there is nothing to
// advance to.
func (cb *cmdBuffer) NextSubpass() {}

// EndPass ends the current rendering scope.
func (cb *cmdBuffer) EndPass() {
	vk.CmdEndRendering(cb.cb)
	cb.curPass = nil
	cb.curFB = nil
}

// BeginWork and EndWork delimit a region of compute commands.
// Vulkan has no notion of "compute scope" the way it does render
// passes; wait is honored by a pipeline barrier that stalls compute
// shader stage work on everything recorded so far.
func (cb *cmdBuffer) BeginWork(wait bool) {
	if wait {
		cb.fullBarrier(vk.PipelineStageAllCommandsBit, vk.PipelineStageComputeShaderBit)
	}
}

func (cb *cmdBuffer) EndWork() {}

// BeginBlit and EndBlit delimit a region of transfer commands.
func (cb *cmdBuffer) BeginBlit(wait bool) {
	if wait {
		cb.fullBarrier(vk.PipelineStageAllCommandsBit, vk.PipelineStageTransferBit)
	}
}

func (cb *cmdBuffer) EndBlit() {}

func (cb *cmdBuffer) fullBarrier(src, dst vk.PipelineStageFlagBits) {
	b := vk.MemoryBarrier{SType: vk.StructureTypeMemoryBarrier}
	vk.CmdPipelineBarrier(cb.cb, vk.PipelineStageFlags(src), vk.PipelineStageFlags(dst), 0, 1, []vk.MemoryBarrier{b}, 0, nil, 0, nil)
}

// SetPipeline binds a graphics or compute pipeline, remembering its
// bind point so later Set* calls that are bind-point-specific (the
// descriptor table setters) know which binding point to target.
func (cb *cmdBuffer) SetPipeline(pl driver.Pipeline) {
	p := pl.(*pipeline)
	cb.curGx = p.bind
	vk.CmdBindPipeline(cb.cb, p.bind, p.pl)
}

func (cb *cmdBuffer) SetViewport(vp []driver.Viewport) {
	vps := make([]vk.Viewport, len(vp))
	for i, v := range vp {
		vps[i] = vk.Viewport{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height, MinDepth: v.Znear, MaxDepth: v.Zfar}
	}
	vk.CmdSetViewport(cb.cb, 0, uint32(len(vps)), vps)
}

func (cb *cmdBuffer) SetScissor(sciss []driver.Scissor) {
	scs := make([]vk.Rect2D, len(sciss))
	for i, s := range sciss {
		scs[i] = vk.Rect2D{
			Offset: vk.Offset2D{X: int32(s.X), Y: int32(s.Y)},
			Extent: vk.Extent2D{Width: uint32(s.Width), Height: uint32(s.Height)},
		}
	}
	vk.CmdSetScissor(cb.cb, 0, uint32(len(scs)), scs)
}

func (cb *cmdBuffer) SetBlendColor(r, g, b, a float32) {
	vk.CmdSetBlendConstants(cb.cb, [4]float32{r, g, b, a})
}

func (cb *cmdBuffer) SetStencilRef(value uint32) {
	vk.CmdSetStencilReference(cb.cb, vk.StencilFaceFlags(vk.StencilFrontAndBack), value)
}

func (cb *cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	bufs := make([]vk.Buffer, len(buf))
	offs := make([]vk.DeviceSize, len(buf))
	for i := range buf {
		bufs[i] = buf[i].(*buffer).buf
		offs[i] = vk.DeviceSize(off[i])
	}
	vk.CmdBindVertexBuffers(cb.cb, uint32(start), uint32(len(bufs)), bufs, offs)
}

func (cb *cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	idxType := vk.IndexTypeUint16
	if format == driver.Index32 {
		idxType = vk.IndexTypeUint32
	}
	vk.CmdBindIndexBuffer(cb.cb, buf.(*buffer).buf, vk.DeviceSize(off), idxType)
}

func (cb *cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	cb.bindDescTable(vk.PipelineBindPointGraphics, table, start, heapCopy)
}

func (cb *cmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	cb.bindDescTable(vk.PipelineBindPointCompute, table, start, heapCopy)
}

func (cb *cmdBuffer) bindDescTable(bind vk.PipelineBindPoint, table driver.DescTable, start int, heapCopy []int) {
	t := table.(*descTable)
	sets := make([]vk.DescriptorSet, len(heapCopy))
	for i, cpy := range heapCopy {
		sets[i] = t.heaps[start+i].sets[cpy]
	}
	vk.CmdBindDescriptorSets(cb.cb, bind, t.layout, uint32(start), uint32(len(sets)), sets, 0, nil)
}

func (cb *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	vk.CmdDraw(cb.cb, uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
}

func (cb *cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	vk.CmdDrawIndexed(cb.cb, uint32(idxCount), uint32(instCount), uint32(baseIdx), int32(vertOff), uint32(baseInst))
}

func (cb *cmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	vk.CmdDispatch(cb.cb, uint32(grpCountX), uint32(grpCountY), uint32(grpCountZ))
}

func (cb *cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	r := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(param.FromOff),
		DstOffset: vk.DeviceSize(param.ToOff),
		Size:      vk.DeviceSize(param.Size),
	}
	vk.CmdCopyBuffer(cb.cb, param.From.(*buffer).buf, param.To.(*buffer).buf, 1, []vk.BufferCopy{r})
}

func (cb *cmdBuffer) CopyImage(param *driver.ImageCopy) {
	from := param.From.(*image)
	to := param.To.(*image)
	r := vk.ImageCopy{
		SrcSubresource: vk.ImageSubresourceLayers{
			AspectMask:     from.aspect,
			MipLevel:       uint32(param.FromLevel),
			BaseArrayLayer: uint32(param.FromLayer),
			LayerCount:     uint32(param.Layers),
		},
		SrcOffset: vk.Offset3D{X: int32(param.FromOff.X), Y: int32(param.FromOff.Y), Z: int32(param.FromOff.Z)},
		DstSubresource: vk.ImageSubresourceLayers{
			AspectMask:     to.aspect,
			MipLevel:       uint32(param.ToLevel),
			BaseArrayLayer: uint32(param.ToLayer),
			LayerCount:     uint32(param.Layers),
		},
		DstOffset: vk.Offset3D{X: int32(param.ToOff.X), Y: int32(param.ToOff.Y), Z: int32(param.ToOff.Z)},
		Extent:    vk.Extent3D{Width: uint32(param.Size.Width), Height: uint32(param.Size.Height), Depth: uint32(param.Size.Depth)},
	}
	vk.CmdCopyImage(cb.cb, from.img, vk.ImageLayoutTransferSrcOptimal, to.img, vk.ImageLayoutTransferDstOptimal, 1, []vk.ImageCopy{r})
}

func (cb *cmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	img := param.Img.(*image)
	aspect := img.aspect
	if param.DepthCopy {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	r := vk.BufferImageCopy{
		BufferOffset:      vk.DeviceSize(param.BufOff),
		BufferRowLength:   uint32(param.Stride[0]),
		BufferImageHeight: uint32(param.Stride[1]),
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     aspect,
			MipLevel:       uint32(param.Level),
			BaseArrayLayer: uint32(param.Layer),
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: int32(param.ImgOff.X), Y: int32(param.ImgOff.Y), Z: int32(param.ImgOff.Z)},
		ImageExtent: vk.Extent3D{Width: uint32(param.Size.Width), Height: uint32(param.Size.Height), Depth: uint32(param.Size.Depth)},
	}
	vk.CmdCopyBufferToImage(cb.cb, param.Buf.(*buffer).buf, img.img, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{r})
}

func (cb *cmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	img := param.Img.(*image)
	aspect := img.aspect
	if param.DepthCopy {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	r := vk.BufferImageCopy{
		BufferOffset:      vk.DeviceSize(param.BufOff),
		BufferRowLength:   uint32(param.Stride[0]),
		BufferImageHeight: uint32(param.Stride[1]),
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     aspect,
			MipLevel:       uint32(param.Level),
			BaseArrayLayer: uint32(param.Layer),
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: int32(param.ImgOff.X), Y: int32(param.ImgOff.Y), Z: int32(param.ImgOff.Z)},
		ImageExtent: vk.Extent3D{Width: uint32(param.Size.Width), Height: uint32(param.Size.Height), Depth: uint32(param.Size.Depth)},
	}
	vk.CmdCopyImageToBuffer(cb.cb, img.img, vk.ImageLayoutTransferSrcOptimal, param.Buf.(*buffer).buf, 1, []vk.BufferImageCopy{r})
}

func (cb *cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	word := uint32(value) | uint32(value)<<8 | uint32(value)<<16 | uint32(value)<<24
	vk.CmdFillBuffer(cb.cb, buf.(*buffer).buf, vk.DeviceSize(off), vk.DeviceSize(size), word)
}

// convSyncStage and convAccessFlags translate the abstract
// synchronization-scope and access-scope enums into core 1.0 pipeline
// stage/access flags. The vulkan-go binding this backend uses does
// not expose VK_KHR_synchronization2's VkPipelineStageFlags2/
// VkAccessFlags2 entry points, unlike the cgo bindings a
// synchronization2-enabled device would otherwise use, so barriers
// here go through vkCmdPipelineBarrier instead of vkCmdPipelineBarrier2.
func convSyncStage(s driver.Sync) vk.PipelineStageFlags {
	var f vk.PipelineStageFlags
	if s&driver.SVertexInput != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)
	}
	if s&driver.SVertexShading != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit)
	}
	if s&driver.SFragmentShading != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}
	if s&driver.SComputeShading != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit)
	}
	if s&driver.SColorOutput != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	if s&driver.SDSOutput != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) | vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit)
	}
	if s&driver.SDraw != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageDrawIndirectBit)
	}
	if s&driver.SResolve != 0 || s&driver.SCopy != 0 {
		f |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	}
	if s&driver.SAll != 0 || f == 0 {
		f = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}
	return f
}

func convAccessFlags(a driver.Access) vk.AccessFlags {
	var f vk.AccessFlags
	if a&driver.AVertexBufRead != 0 {
		f |= vk.AccessFlags(vk.AccessVertexAttributeReadBit)
	}
	if a&driver.AIndexBufRead != 0 {
		f |= vk.AccessFlags(vk.AccessIndexReadBit)
	}
	if a&driver.AColorRead != 0 {
		f |= vk.AccessFlags(vk.AccessColorAttachmentReadBit)
	}
	if a&driver.AColorWrite != 0 {
		f |= vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	}
	if a&driver.ADSRead != 0 {
		f |= vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit)
	}
	if a&driver.ADSWrite != 0 {
		f |= vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	}
	if a&(driver.AResolveRead|driver.ACopyRead) != 0 {
		f |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if a&(driver.AResolveWrite|driver.ACopyWrite) != 0 {
		f |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if a&driver.AShaderRead != 0 {
		f |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if a&driver.AShaderWrite != 0 {
		f |= vk.AccessFlags(vk.AccessShaderWriteBit)
	}
	if a&driver.AAnyRead != 0 {
		f |= vk.AccessFlags(vk.AccessMemoryReadBit)
	}
	if a&driver.AAnyWrite != 0 {
		f |= vk.AccessFlags(vk.AccessMemoryWriteBit)
	}
	return f
}

func (cb *cmdBuffer) Barrier(b []driver.Barrier) {
	for _, x := range b {
		mb := vk.MemoryBarrier{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: convAccessFlags(x.AccessBefore),
			DstAccessMask: convAccessFlags(x.AccessAfter),
		}
		vk.CmdPipelineBarrier(cb.cb, convSyncStage(x.SyncBefore), convSyncStage(x.SyncAfter), 0, 1, []vk.MemoryBarrier{mb}, 0, nil, 0, nil)
	}
}

func (cb *cmdBuffer) Transition(t []driver.Transition) {
	for _, x := range t {
		iv := x.IView.(*imageView)
		ib := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       convAccessFlags(x.AccessBefore),
			DstAccessMask:       convAccessFlags(x.AccessAfter),
			OldLayout:           fromLayout(x.LayoutBefore),
			NewLayout:           fromLayout(x.LayoutAfter),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               iv.img.img,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     iv.img.aspect,
				BaseMipLevel:   0,
				LevelCount:     vk.RemainingMipLevels,
				BaseArrayLayer: 0,
				LayerCount:     vk.RemainingArrayLayers,
			},
		}
		vk.CmdPipelineBarrier(cb.cb, convSyncStage(x.SyncBefore), convSyncStage(x.SyncAfter), 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{ib})
	}
}

// End ends command recording.
func (cb *cmdBuffer) End() error {
	if err := checkResult(vk.EndCommandBuffer(cb.cb)); err != nil {
		cb.status = cbFailed
		cb.err = err
		vk.ResetCommandBuffer(cb.cb, 0)
		return err
	}
	cb.status = cbEnded
	return nil
}

// Reset discards all recorded commands.
func (cb *cmdBuffer) Reset() error {
	if err := checkResult(vk.ResetCommandBuffer(cb.cb, 0)); err != nil {
		return err
	}
	cb.status = cbIdle
	cb.err = nil
	return nil
}

// Destroy destroys the command buffer and its exclusive pool.
func (cb *cmdBuffer) Destroy() {
	if cb == nil || cb.pool == nil {
		return
	}
	vk.DestroyCommandPool(cb.d.dev, cb.pool, nil)
	*cb = cmdBuffer{}
}

var errCmdBufferFailed = errors.New("vk: command buffer recording failed")

// Commit submits cb for execution, reporting the aggregate result on
// ch once the GPU finishes. Every buffer must be in the cbEnded state.
func (d *Driver) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	bufs := make([]vk.CommandBuffer, len(cb))
	for i, c := range cb {
		b := c.(*cmdBuffer)
		if b.status != cbEnded {
			ch <- errCmdBufferFailed
			return
		}
		bufs[i] = b.cb
	}
	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if err := checkResult(vk.CreateFence(d.dev, &fenceInfo, nil, &fence)); err != nil {
		ch <- err
		return
	}
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(bufs)),
		PCommandBuffers:    bufs,
	}
	if err := checkResult(vk.QueueSubmit(d.ques[0], 1, []vk.SubmitInfo{info}, fence)); err != nil {
		vk.DestroyFence(d.dev, fence, nil)
		ch <- err
		return
	}
	go func() {
		err := checkResult(vk.WaitForFences(d.dev, 1, []vk.Fence{fence}, vk.True, ^uint64(0)))
		vk.DestroyFence(d.dev, fence, nil)
		ch <- err
	}()
}
