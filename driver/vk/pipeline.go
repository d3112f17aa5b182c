// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"errors"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// pipeline implements driver.Pipeline. Both graphics and compute
// pipelines share the same wrapper since neither needs a distinct
// method set beyond Destroy.
type pipeline struct {
	d    *Driver
	pl   vk.Pipeline
	bind vk.PipelineBindPoint
}

func (p *pipeline) Destroy() {
	if p == nil || p.pl == nil {
		return
	}
	vk.DestroyPipeline(p.d.dev, p.pl, nil)
	*p = pipeline{}
}

// errBadPipelineState is returned when NewPipeline is given something
// other than *driver.GraphState or *driver.CompState.
var errBadPipelineState = errors.New("vk: state must be *driver.GraphState or *driver.CompState")

// entryPoint is the fixed entry point name every shader module this
// backend creates is expected to use (rshader always emits "main").
const entryPoint = "main\x00"

// NewPipeline creates a new graphics or compute pipeline, depending on
// the concrete type of state.
func (d *Driver) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		return d.newGraphPipeline(s)
	case *driver.CompState:
		return d.newCompPipeline(s)
	default:
		return nil, errBadPipelineState
	}
}

func shaderStageInfo(stage vk.ShaderStageFlagBits, fn driver.ShaderFunc) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: fn.Code.(*shaderCode).mod,
		PName:  entryPoint,
	}
}

// vertexFmtInfo translates a driver.VertexFmt into its matching
// vk.Format and byte size.
func vertexFmtInfo(f driver.VertexFmt) (vk.Format, int) {
	switch f {
	case driver.Int8:
		return vk.FormatR8Sint, 1
	case driver.Int8x2:
		return vk.FormatR8g8Sint, 2
	case driver.Int8x3:
		return vk.FormatR8g8b8Sint, 3
	case driver.Int8x4:
		return vk.FormatR8g8b8a8Sint, 4
	case driver.Int16:
		return vk.FormatR16Sint, 2
	case driver.Int16x2:
		return vk.FormatR16g16Sint, 4
	case driver.Int16x3:
		return vk.FormatR16g16b16Sint, 6
	case driver.Int16x4:
		return vk.FormatR16g16b16a16Sint, 8
	case driver.Int32:
		return vk.FormatR32Sint, 4
	case driver.Int32x2:
		return vk.FormatR32g32Sint, 8
	case driver.Int32x3:
		return vk.FormatR32g32b32Sint, 12
	case driver.Int32x4:
		return vk.FormatR32g32b32a32Sint, 16
	case driver.UInt8:
		return vk.FormatR8Uint, 1
	case driver.UInt8x2:
		return vk.FormatR8g8Uint, 2
	case driver.UInt8x3:
		return vk.FormatR8g8b8Uint, 3
	case driver.UInt8x4:
		return vk.FormatR8g8b8a8Uint, 4
	case driver.UInt16:
		return vk.FormatR16Uint, 2
	case driver.UInt16x2:
		return vk.FormatR16g16Uint, 4
	case driver.UInt16x3:
		return vk.FormatR16g16b16Uint, 6
	case driver.UInt16x4:
		return vk.FormatR16g16b16a16Uint, 8
	case driver.UInt32:
		return vk.FormatR32Uint, 4
	case driver.UInt32x2:
		return vk.FormatR32g32Uint, 8
	case driver.UInt32x3:
		return vk.FormatR32g32b32Uint, 12
	case driver.UInt32x4:
		return vk.FormatR32g32b32a32Uint, 16
	case driver.Float32:
		return vk.FormatR32Sfloat, 4
	case driver.Float32x2:
		return vk.FormatR32g32Sfloat, 8
	case driver.Float32x3:
		return vk.FormatR32g32b32Sfloat, 12
	case driver.Float32x4:
		return vk.FormatR32g32b32a32Sfloat, 16
	default:
		return vk.FormatR32g32b32a32Sfloat, 16
	}
}

// newGraphPipeline builds a graphics pipeline for use with VK1.3
// dynamic rendering: instead of referencing a VkRenderPass/subpass
// index, it carries a VkPipelineRenderingCreateInfo built from the
// render pass' attachment formats, per renderPass's own comment on
// why this backend has no classic render-pass objects. Viewport,
// scissor, blend constants and stencil reference are left dynamic so a
// single pipeline can serve every Viewport/Scissor/BlendColor/
// StencilRef the command list sets at draw time. Depth test, depth
// write, depth compare op and stencil test enable are not dynamic:
// they are fixed at creation from s.DS.
func (d *Driver) newGraphPipeline(s *driver.GraphState) (driver.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{
		shaderStageInfo(vk.ShaderStageVertexBit, s.VertFunc),
		shaderStageInfo(vk.ShaderStageFragmentBit, s.FragFunc),
	}

	binds := make([]vk.VertexInputBindingDescription, len(s.Input))
	attrs := make([]vk.VertexInputAttributeDescription, len(s.Input))
	for i, in := range s.Input {
		format, _ := vertexFmtInfo(in.Format)
		binds[i] = vk.VertexInputBindingDescription{
			Binding:   uint32(i),
			Stride:    uint32(in.Stride),
			InputRate: vk.VertexInputRateVertex,
		}
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: uint32(in.Nr),
			Binding:  uint32(i),
			Format:   format,
			Offset:   0,
		}
	}
	vertIn := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(binds)),
		PVertexBindingDescriptions:      binds,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}

	asm := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: fromTopology(s.Topology),
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	raster := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             fillModeOf(s.Raster.Fill),
		CullMode:                fromCullMode(s.Raster.Cull),
		FrontFace:               frontFaceOf(s.Raster.Clockwise),
		DepthBiasEnable:         vk.Bool32(b2i(s.Raster.DepthBias)),
		DepthBiasConstantFactor: s.Raster.BiasValue,
		DepthBiasSlopeFactor:    s.Raster.BiasSlope,
		DepthBiasClamp:          s.Raster.BiasClamp,
		LineWidth:               1,
	}

	ms := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: sampleCountFlag(maxInt(s.Samples, 1)),
	}

	ds := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.Bool32(b2i(s.DS.DepthTest)),
		DepthWriteEnable:      vk.Bool32(b2i(s.DS.DepthWrite)),
		DepthCompareOp:        fromCmpFunc(s.DS.DepthCmp),
		StencilTestEnable:     vk.Bool32(b2i(s.DS.StencilTest)),
		Front:                 stencilOpStateOf(s.DS.Front),
		Back:                  stencilOpStateOf(s.DS.Back),
	}

	nAtt := 1
	if s.Blend.IndependentBlend {
		nAtt = len(s.Blend.Color)
	}
	attachments := make([]vk.PipelineColorBlendAttachmentState, nAtt)
	for i := range attachments {
		cb := s.Blend.Color[0]
		if s.Blend.IndependentBlend {
			cb = s.Blend.Color[i]
		}
		attachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vk.Bool32(b2i(cb.Blend)),
			SrcColorBlendFactor: fromBlendFac(cb.SrcFac[0]),
			DstColorBlendFactor: fromBlendFac(cb.DstFac[0]),
			ColorBlendOp:        fromBlendOp(cb.Op[0]),
			SrcAlphaBlendFactor: fromBlendFac(cb.SrcFac[1]),
			DstAlphaBlendFactor: fromBlendFac(cb.DstFac[1]),
			AlphaBlendOp:        fromBlendOp(cb.Op[1]),
			ColorWriteMask:      fromColorMask(cb.WriteMask),
		}
	}
	blend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}

	dynStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateBlendConstants,
		vk.DynamicStateStencilReference,
	}
	dyn := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynStates)),
		PDynamicStates:    dynStates,
	}

	pass := s.Pass.(*renderPass)
	var colorFmts []vk.Format
	var dsFmt vk.Format
	for i, a := range pass.att {
		_, isColor, isDS, isResolve := pass.roleOf(i)
		if isColor {
			colorFmts = append(colorFmts, fromPixelFmt(a.Format))
		}
		if isDS {
			dsFmt = fromPixelFmt(a.Format)
		}
		_ = isResolve
	}
	renderInfo := vk.PipelineRenderingCreateInfo{
		SType:                   vk.StructureTypePipelineRenderingCreateInfo,
		ColorAttachmentCount:    uint32(len(colorFmts)),
		PColorAttachmentFormats: colorFmts,
		DepthAttachmentFormat:   dsFmt,
		StencilAttachmentFormat: dsFmt,
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               unsafe.Pointer(&renderInfo),
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertIn,
		PInputAssemblyState: &asm,
		PViewportState:      &viewportState,
		PRasterizationState: &raster,
		PMultisampleState:   &ms,
		PDepthStencilState:  &ds,
		PColorBlendState:    &blend,
		PDynamicState:       &dyn,
		Layout:              s.Desc.(*descTable).layout,
		BasePipelineIndex:   -1,
	}
	pls := make([]vk.Pipeline, 1)
	if err := checkResult(vk.CreateGraphicsPipelines(d.dev, nil, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pls)); err != nil {
		return nil, err
	}
	return &pipeline{d: d, pl: pls[0], bind: vk.PipelineBindPointGraphics}, nil
}

func (d *Driver) newCompPipeline(s *driver.CompState) (driver.Pipeline, error) {
	info := vk.ComputePipelineCreateInfo{
		SType:             vk.StructureTypeComputePipelineCreateInfo,
		Stage:             shaderStageInfo(vk.ShaderStageComputeBit, s.Func),
		Layout:            s.Desc.(*descTable).layout,
		BasePipelineIndex: -1,
	}
	pls := make([]vk.Pipeline, 1)
	if err := checkResult(vk.CreateComputePipelines(d.dev, nil, 1, []vk.ComputePipelineCreateInfo{info}, nil, pls)); err != nil {
		return nil, err
	}
	return &pipeline{d: d, pl: pls[0], bind: vk.PipelineBindPointCompute}, nil
}

func fillModeOf(f driver.FillMode) vk.PolygonMode {
	if f == driver.FLines {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func frontFaceOf(clockwise bool) vk.FrontFace {
	if clockwise {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func stencilOpOf(op driver.StencilOp) vk.StencilOp {
	switch op {
	case driver.SKeep:
		return vk.StencilOpKeep
	case driver.SZero:
		return vk.StencilOpZero
	case driver.SReplace:
		return vk.StencilOpReplace
	case driver.SIncClamp:
		return vk.StencilOpIncrementAndClamp
	case driver.SDecClamp:
		return vk.StencilOpDecrementAndClamp
	case driver.SInvert:
		return vk.StencilOpInvert
	case driver.SIncWrap:
		return vk.StencilOpIncrementAndWrap
	case driver.SDecWrap:
		return vk.StencilOpDecrementAndWrap
	default:
		return vk.StencilOpKeep
	}
}

func stencilOpStateOf(s driver.StencilT) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:    stencilOpOf(s.DSFail[0]),
		PassOp:    stencilOpOf(s.Pass),
		DepthFailOp: stencilOpOf(s.DSFail[1]),
		CompareOp: fromCmpFunc(s.Cmp),
		CompareMask: s.ReadMask,
		WriteMask: s.WriteMask,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
