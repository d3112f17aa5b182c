package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// pixelFmtTab maps driver.PixelFmt to its vk.Format equivalent.
// Index is the PixelFmt's int value; internal formats (FInternal
// bit set) never reach this table.
var pixelFmtTab = [...]vk.Format{
	driver.RGBA8un:    vk.FormatR8g8b8a8Unorm,
	driver.RGBA8n:     vk.FormatR8g8b8a8Snorm,
	driver.RGBA8sRGB:  vk.FormatR8g8b8a8Srgb,
	driver.BGRA8un:    vk.FormatB8g8r8a8Unorm,
	driver.BGRA8sRGB:  vk.FormatB8g8r8a8Srgb,
	driver.RG8un:      vk.FormatR8g8Unorm,
	driver.RG8n:       vk.FormatR8g8Snorm,
	driver.R8un:       vk.FormatR8Unorm,
	driver.R8n:        vk.FormatR8Snorm,
	driver.RGBA16f:    vk.FormatR16g16b16a16Sfloat,
	driver.RG16f:      vk.FormatR16g16Sfloat,
	driver.R16f:       vk.FormatR16Sfloat,
	driver.RGBA32f:    vk.FormatR32g32b32a32Sfloat,
	driver.RG32f:      vk.FormatR32g32Sfloat,
	driver.R32f:       vk.FormatR32Sfloat,
	driver.D16un:      vk.FormatD16Unorm,
	driver.D32f:       vk.FormatD32Sfloat,
	driver.S8ui:       vk.FormatS8Uint,
	driver.D24unS8ui:  vk.FormatD24UnormS8Uint,
	driver.D32fS8ui:   vk.FormatD32SfloatS8Uint,
}

func fromPixelFmt(pf driver.PixelFmt) vk.Format {
	if pf.IsInternal() || int(pf) >= len(pixelFmtTab) {
		return vk.FormatUndefined
	}
	return pixelFmtTab[pf]
}

func toPixelFmt(f vk.Format) (driver.PixelFmt, bool) {
	for i, x := range pixelFmtTab {
		if x == f {
			return driver.PixelFmt(i), true
		}
	}
	return 0, false
}

// Buffer and image usage flags are ORed independently, so usage
// conversion walks every bit rather than indexing a table.
// Every buffer and image is additionally marked as a transfer src/dst
// so device.Device can always stage data into it regardless of how
// it was requested; the driver contract has no separate bit for this.
func fromUsage(u driver.Usage) (vk.BufferUsageFlags, vk.ImageUsageFlags) {
	bu := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	iu := vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit)
	if u&driver.UShaderRead != 0 {
		bu |= vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
		iu |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if u&driver.UShaderWrite != 0 {
		bu |= vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
		iu |= vk.ImageUsageFlags(vk.ImageUsageStorageBit)
	}
	if u&driver.UShaderSample != 0 {
		iu |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if u&driver.UShaderConst != 0 {
		bu |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	if u&driver.UVertexData != 0 {
		bu |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if u&driver.UIndexData != 0 {
		bu |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if u&driver.URenderTarget != 0 {
		iu |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
		iu |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	}
	return bu, iu
}

func fromLayout(l driver.Layout) vk.ImageLayout {
	switch l {
	case driver.LUndefined:
		return vk.ImageLayoutUndefined
	case driver.LCommon:
		return vk.ImageLayoutGeneral
	case driver.LColorTarget:
		return vk.ImageLayoutColorAttachmentOptimal
	case driver.LDSTarget:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case driver.LDSRead:
		return vk.ImageLayoutDepthStencilReadOnlyOptimal
	case driver.LResolveSrc:
		return vk.ImageLayoutTransferSrcOptimal
	case driver.LResolveDst:
		return vk.ImageLayoutTransferDstOptimal
	case driver.LCopySrc:
		return vk.ImageLayoutTransferSrcOptimal
	case driver.LCopyDst:
		return vk.ImageLayoutTransferDstOptimal
	case driver.LShaderRead:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case driver.LPresent:
		return vk.ImageLayoutPresentSrc
	default:
		return vk.ImageLayoutGeneral
	}
}

func fromLoadOp(op driver.LoadOp) vk.AttachmentLoadOp {
	switch op {
	case driver.LDontCare:
		return vk.AttachmentLoadOpDontCare
	case driver.LLoad:
		return vk.AttachmentLoadOpLoad
	case driver.LClear:
		return vk.AttachmentLoadOpClear
	default:
		return vk.AttachmentLoadOpDontCare
	}
}

func fromStoreOp(op driver.StoreOp) vk.AttachmentStoreOp {
	switch op {
	case driver.SDontCare:
		return vk.AttachmentStoreOpDontCare
	case driver.SStore:
		return vk.AttachmentStoreOpStore
	default:
		return vk.AttachmentStoreOpDontCare
	}
}

func fromTopology(t driver.Topology) vk.PrimitiveTopology {
	switch t {
	case driver.TPoint:
		return vk.PrimitiveTopologyPointList
	case driver.TLine:
		return vk.PrimitiveTopologyLineList
	case driver.TLnStrip:
		return vk.PrimitiveTopologyLineStrip
	case driver.TTriangle:
		return vk.PrimitiveTopologyTriangleList
	case driver.TTriStrip:
		return vk.PrimitiveTopologyTriangleStrip
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func fromCullMode(c driver.CullMode) vk.CullModeFlags {
	switch c {
	case driver.CNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case driver.CFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case driver.CBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	default:
		return vk.CullModeFlags(vk.CullModeNone)
	}
}

func fromCmpFunc(c driver.CmpFunc) vk.CompareOp {
	switch c {
	case driver.CNever:
		return vk.CompareOpNever
	case driver.CLess:
		return vk.CompareOpLess
	case driver.CEqual:
		return vk.CompareOpEqual
	case driver.CLessEqual:
		return vk.CompareOpLessOrEqual
	case driver.CGreater:
		return vk.CompareOpGreater
	case driver.CNotEqual:
		return vk.CompareOpNotEqual
	case driver.CGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case driver.CAlways:
		return vk.CompareOpAlways
	default:
		return vk.CompareOpAlways
	}
}

func fromBlendOp(b driver.BlendOp) vk.BlendOp {
	switch b {
	case driver.BAdd:
		return vk.BlendOpAdd
	case driver.BSubtract:
		return vk.BlendOpSubtract
	case driver.BRevSubtract:
		return vk.BlendOpReverseSubtract
	case driver.BMin:
		return vk.BlendOpMin
	case driver.BMax:
		return vk.BlendOpMax
	default:
		return vk.BlendOpAdd
	}
}

func fromBlendFac(f driver.BlendFac) vk.BlendFactor {
	switch f {
	case driver.BZero:
		return vk.BlendFactorZero
	case driver.BOne:
		return vk.BlendFactorOne
	case driver.BSrcColor:
		return vk.BlendFactorSrcColor
	case driver.BInvSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case driver.BSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case driver.BInvSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case driver.BDstColor:
		return vk.BlendFactorDstColor
	case driver.BInvDstColor:
		return vk.BlendFactorOneMinusDstColor
	case driver.BDstAlpha:
		return vk.BlendFactorDstAlpha
	case driver.BInvDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	case driver.BSrcAlphaSaturated:
		return vk.BlendFactorSrcAlphaSaturate
	case driver.BBlendColor:
		return vk.BlendFactorConstantColor
	case driver.BInvBlendColor:
		return vk.BlendFactorOneMinusConstantColor
	default:
		return vk.BlendFactorOne
	}
}

func fromColorMask(m driver.ColorMask) vk.ColorComponentFlags {
	var f vk.ColorComponentFlags
	if m&driver.CRed != 0 {
		f |= vk.ColorComponentFlags(vk.ColorComponentRBit)
	}
	if m&driver.CGreen != 0 {
		f |= vk.ColorComponentFlags(vk.ColorComponentGBit)
	}
	if m&driver.CBlue != 0 {
		f |= vk.ColorComponentFlags(vk.ColorComponentBBit)
	}
	if m&driver.CAlpha != 0 {
		f |= vk.ColorComponentFlags(vk.ColorComponentABit)
	}
	return f
}

func fromStage(s driver.Stage) vk.ShaderStageFlags {
	var f vk.ShaderStageFlags
	if s&driver.SVertex != 0 {
		f |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if s&driver.SFragment != 0 {
		f |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	if s&driver.SCompute != 0 {
		f |= vk.ShaderStageFlags(vk.ShaderStageComputeBit)
	}
	return f
}

func fromDescType(t driver.DescType) vk.DescriptorType {
	switch t {
	case driver.DBuffer:
		return vk.DescriptorTypeStorageBuffer
	case driver.DImage:
		return vk.DescriptorTypeStorageImage
	case driver.DConstant:
		return vk.DescriptorTypeUniformBuffer
	case driver.DTexture:
		return vk.DescriptorTypeSampledImage
	case driver.DSampler:
		return vk.DescriptorTypeSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

func fromFilter(f driver.Filter) vk.Filter {
	if f == driver.FLinear {
		return vk.FilterLinear
	}
	return vk.FilterNearest
}

func fromMipFilter(f driver.Filter) vk.SamplerMipmapMode {
	if f == driver.FLinear {
		return vk.SamplerMipmapModeLinear
	}
	return vk.SamplerMipmapModeNearest
}

func fromAddrMode(a driver.AddrMode) vk.SamplerAddressMode {
	switch a {
	case driver.AWrap:
		return vk.SamplerAddressModeRepeat
	case driver.AMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case driver.AClamp:
		return vk.SamplerAddressModeClampToEdge
	default:
		return vk.SamplerAddressModeRepeat
	}
}

func fromViewType(t driver.ViewType) vk.ImageViewType {
	switch t {
	case driver.IView1D:
		return vk.ImageViewType1d
	case driver.IView2D:
		return vk.ImageViewType2d
	case driver.IView3D:
		return vk.ImageViewType3d
	case driver.IViewCube:
		return vk.ImageViewTypeCube
	case driver.IView1DArray:
		return vk.ImageViewType1dArray
	case driver.IView2DArray:
		return vk.ImageViewType2dArray
	case driver.IViewCubeArray:
		return vk.ImageViewTypeCubeArray
	case driver.IView2DMS, driver.IView2DMSArray:
		return vk.ImageViewType2d
	default:
		return vk.ImageViewType2d
	}
}
