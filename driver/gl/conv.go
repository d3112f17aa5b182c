package gl

import (
	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// pixelFmtTab mirrors driver/vk/conv.go's pixelFmtTab, mapping the
// same abstract PixelFmt ordinals to GL (internalformat, format,
// type) triples instead of a single vk.Format.
type glFormat struct {
	internal int32
	format   uint32
	typ      uint32
}

var pixelFmtTab = [...]glFormat{
	driver.RGBA8un:   {glow.RGBA8, glow.RGBA, glow.UNSIGNED_BYTE},
	driver.RGBA8n:    {glow.RGBA8_SNORM, glow.RGBA, glow.BYTE},
	driver.RGBA8sRGB: {glow.SRGB8_ALPHA8, glow.RGBA, glow.UNSIGNED_BYTE},
	driver.BGRA8un:   {glow.RGBA8, glow.BGRA, glow.UNSIGNED_BYTE},
	driver.BGRA8sRGB: {glow.SRGB8_ALPHA8, glow.BGRA, glow.UNSIGNED_BYTE},
	driver.RG8un:     {glow.RG8, glow.RG, glow.UNSIGNED_BYTE},
	driver.RG8n:      {glow.RG8_SNORM, glow.RG, glow.BYTE},
	driver.R8un:      {glow.R8, glow.RED, glow.UNSIGNED_BYTE},
	driver.R8n:       {glow.R8_SNORM, glow.RED, glow.BYTE},
	driver.RGBA16f:   {glow.RGBA16F, glow.RGBA, glow.HALF_FLOAT},
	driver.RG16f:     {glow.RG16F, glow.RG, glow.HALF_FLOAT},
	driver.R16f:      {glow.R16F, glow.RED, glow.HALF_FLOAT},
	driver.RGBA32f:   {glow.RGBA32F, glow.RGBA, glow.FLOAT},
	driver.RG32f:     {glow.RG32F, glow.RG, glow.FLOAT},
	driver.R32f:      {glow.R32F, glow.RED, glow.FLOAT},
	driver.D16un:     {glow.DEPTH_COMPONENT16, glow.DEPTH_COMPONENT, glow.UNSIGNED_SHORT},
	driver.D32f:      {glow.DEPTH_COMPONENT32F, glow.DEPTH_COMPONENT, glow.FLOAT},
	driver.S8ui:      {glow.STENCIL_INDEX8, glow.STENCIL_INDEX, glow.UNSIGNED_BYTE},
	driver.D24unS8ui: {glow.DEPTH24_STENCIL8, glow.DEPTH_STENCIL, glow.UNSIGNED_INT_24_8},
	driver.D32fS8ui:  {glow.DEPTH32F_STENCIL8, glow.DEPTH_STENCIL, glow.FLOAT_32_UNSIGNED_INT_24_8_REV},
}

func fromPixelFmt(pf driver.PixelFmt) glFormat {
	if pf.IsInternal() || int(pf) >= len(pixelFmtTab) {
		return glFormat{}
	}
	return pixelFmtTab[pf]
}

func fromTopology(t driver.Topology) uint32 {
	switch t {
	case driver.TPoint:
		return glow.POINTS
	case driver.TLine:
		return glow.LINES
	case driver.TLnStrip:
		return glow.LINE_STRIP
	case driver.TTriangle:
		return glow.TRIANGLES
	case driver.TTriStrip:
		return glow.TRIANGLE_STRIP
	default:
		return glow.TRIANGLES
	}
}

func fromCullMode(c driver.CullMode) (enable bool, face uint32) {
	switch c {
	case driver.CFront:
		return true, glow.FRONT
	case driver.CBack:
		return true, glow.BACK
	default:
		return false, 0
	}
}

func fromCmpFunc(c driver.CmpFunc) uint32 {
	switch c {
	case driver.CNever:
		return glow.NEVER
	case driver.CLess:
		return glow.LESS
	case driver.CEqual:
		return glow.EQUAL
	case driver.CLessEqual:
		return glow.LEQUAL
	case driver.CGreater:
		return glow.GREATER
	case driver.CNotEqual:
		return glow.NOTEQUAL
	case driver.CGreaterEqual:
		return glow.GEQUAL
	case driver.CAlways:
		return glow.ALWAYS
	default:
		return glow.ALWAYS
	}
}

func fromBlendOp(b driver.BlendOp) uint32 {
	switch b {
	case driver.BAdd:
		return glow.FUNC_ADD
	case driver.BSubtract:
		return glow.FUNC_SUBTRACT
	case driver.BRevSubtract:
		return glow.FUNC_REVERSE_SUBTRACT
	case driver.BMin:
		return glow.MIN
	case driver.BMax:
		return glow.MAX
	default:
		return glow.FUNC_ADD
	}
}

func fromBlendFac(f driver.BlendFac) uint32 {
	switch f {
	case driver.BZero:
		return glow.ZERO
	case driver.BOne:
		return glow.ONE
	case driver.BSrcColor:
		return glow.SRC_COLOR
	case driver.BInvSrcColor:
		return glow.ONE_MINUS_SRC_COLOR
	case driver.BSrcAlpha:
		return glow.SRC_ALPHA
	case driver.BInvSrcAlpha:
		return glow.ONE_MINUS_SRC_ALPHA
	case driver.BDstColor:
		return glow.DST_COLOR
	case driver.BInvDstColor:
		return glow.ONE_MINUS_DST_COLOR
	case driver.BDstAlpha:
		return glow.DST_ALPHA
	case driver.BInvDstAlpha:
		return glow.ONE_MINUS_DST_ALPHA
	case driver.BSrcAlphaSaturated:
		return glow.SRC_ALPHA_SATURATE
	case driver.BBlendColor:
		return glow.CONSTANT_COLOR
	case driver.BInvBlendColor:
		return glow.ONE_MINUS_CONSTANT_COLOR
	default:
		return glow.ONE
	}
}

func fromStencilOp(op driver.StencilOp) uint32 {
	switch op {
	case driver.SKeep:
		return glow.KEEP
	case driver.SZero:
		return glow.ZERO
	case driver.SReplace:
		return glow.REPLACE
	case driver.SIncClamp:
		return glow.INCR
	case driver.SDecClamp:
		return glow.DECR
	case driver.SInvert:
		return glow.INVERT
	case driver.SIncWrap:
		return glow.INCR_WRAP
	case driver.SDecWrap:
		return glow.DECR_WRAP
	default:
		return glow.KEEP
	}
}

func fromFilter(f driver.Filter) uint32 {
	if f == driver.FNearest {
		return glow.NEAREST
	}
	return glow.LINEAR
}

// fromMinFilter combines the minification and mipmap filters into the
// single GL_TEXTURE_MIN_FILTER enum OpenGL expects.
func fromMinFilter(min, mip driver.Filter) uint32 {
	switch {
	case mip == driver.FNoMipmap:
		return fromFilter(min)
	case min == driver.FNearest && mip == driver.FNearest:
		return glow.NEAREST_MIPMAP_NEAREST
	case min == driver.FNearest && mip == driver.FLinear:
		return glow.NEAREST_MIPMAP_LINEAR
	case min == driver.FLinear && mip == driver.FNearest:
		return glow.LINEAR_MIPMAP_NEAREST
	default:
		return glow.LINEAR_MIPMAP_LINEAR
	}
}

func fromAddrMode(a driver.AddrMode) int32 {
	switch a {
	case driver.AWrap:
		return glow.REPEAT
	case driver.AMirror:
		return glow.MIRRORED_REPEAT
	case driver.AClamp:
		return glow.CLAMP_TO_EDGE
	default:
		return glow.REPEAT
	}
}

func fromIndexFmt(f driver.IndexFmt) uint32 {
	if f == driver.Index16 {
		return glow.UNSIGNED_SHORT
	}
	return glow.UNSIGNED_INT
}

// vertexAttrib describes how a VertexFmt decomposes into a
// glVertexAttribPointer/glVertexAttribIPointer call: component count,
// element type and whether the shader reads it through the integer
// ("I") attribute path (signed/unsigned int formats are never
// normalized, matching vk's use of *Sint/*Uint vertex formats rather
// than normalized ones).
type vertexAttrib struct {
	size    int32
	typ     uint32
	integer bool
}

func fromVertexFmt(f driver.VertexFmt) vertexAttrib {
	switch f {
	case driver.Int8, driver.Int8x2, driver.Int8x3, driver.Int8x4:
		return vertexAttrib{int32(f-driver.Int8) + 1, glow.BYTE, true}
	case driver.Int16, driver.Int16x2, driver.Int16x3, driver.Int16x4:
		return vertexAttrib{int32(f-driver.Int16) + 1, glow.SHORT, true}
	case driver.Int32, driver.Int32x2, driver.Int32x3, driver.Int32x4:
		return vertexAttrib{int32(f-driver.Int32) + 1, glow.INT, true}
	case driver.UInt8, driver.UInt8x2, driver.UInt8x3, driver.UInt8x4:
		return vertexAttrib{int32(f-driver.UInt8) + 1, glow.UNSIGNED_BYTE, true}
	case driver.UInt16, driver.UInt16x2, driver.UInt16x3, driver.UInt16x4:
		return vertexAttrib{int32(f-driver.UInt16) + 1, glow.UNSIGNED_SHORT, true}
	case driver.UInt32, driver.UInt32x2, driver.UInt32x3, driver.UInt32x4:
		return vertexAttrib{int32(f-driver.UInt32) + 1, glow.UNSIGNED_INT, true}
	case driver.Float32, driver.Float32x2, driver.Float32x3, driver.Float32x4:
		return vertexAttrib{int32(f-driver.Float32) + 1, glow.FLOAT, false}
	default:
		return vertexAttrib{4, glow.FLOAT, false}
	}
}

func fromColorMask(m driver.ColorMask) (r, g, b, a bool) {
	return m&driver.CRed != 0, m&driver.CGreen != 0, m&driver.CBlue != 0, m&driver.CAlpha != 0
}

// viewTarget returns the GL texture target for a given ViewType.
func viewTarget(t driver.ViewType) uint32 {
	switch t {
	case driver.IView1D:
		return glow.TEXTURE_1D
	case driver.IView2D:
		return glow.TEXTURE_2D
	case driver.IView3D:
		return glow.TEXTURE_3D
	case driver.IViewCube:
		return glow.TEXTURE_CUBE_MAP
	case driver.IView1DArray:
		return glow.TEXTURE_1D_ARRAY
	case driver.IView2DArray:
		return glow.TEXTURE_2D_ARRAY
	case driver.IViewCubeArray:
		return glow.TEXTURE_CUBE_MAP_ARRAY
	case driver.IView2DMS:
		return glow.TEXTURE_2D_MULTISAMPLE
	case driver.IView2DMSArray:
		return glow.TEXTURE_2D_MULTISAMPLE_ARRAY
	default:
		return glow.TEXTURE_2D
	}
}
