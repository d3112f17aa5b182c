package vk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// TestPixelFmtRoundtrip exercises the property every C1 format table
// must satisfy: translating an abstract PixelFmt to its backend value
// and back must yield the original value, for every non-internal
// format the table covers.
func TestPixelFmtRoundtrip(t *testing.T) {
	for pf := driver.RGBA8un; pf <= driver.D32fS8ui; pf++ {
		vf := fromPixelFmt(pf)
		if vf == vk.FormatUndefined {
			t.Fatalf("fromPixelFmt(%d): no mapping in pixelFmtTab", pf)
		}
		got, ok := toPixelFmt(vf)
		if !ok {
			t.Fatalf("toPixelFmt(%v): no reverse mapping for PixelFmt %d", vf, pf)
		}
		if got != pf {
			t.Fatalf("roundtrip broke: %d -> %v -> %d", pf, vf, got)
		}
	}
}

func TestPixelFmtInternalNeverMapped(t *testing.T) {
	internal := driver.FInternal | driver.PixelFmt(1)
	if fromPixelFmt(internal) != vk.FormatUndefined {
		t.Fatal("an internal-bit format must not resolve to a real vk.Format")
	}
}

func TestFromUsageAlwaysIncludesTransferBits(t *testing.T) {
	bu, iu := fromUsage(0)
	wantB := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
	wantI := vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit)
	if bu != wantB {
		t.Fatalf("expected bare transfer bits %v, got %v", wantB, bu)
	}
	if iu != wantI {
		t.Fatalf("expected bare transfer bits %v, got %v", wantI, iu)
	}
}

func TestFromUsageAddsRequestedBits(t *testing.T) {
	bu, _ := fromUsage(driver.UVertexData | driver.UIndexData)
	if bu&vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit) == 0 {
		t.Fatal("UVertexData must set BufferUsageVertexBufferBit")
	}
	if bu&vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit) == 0 {
		t.Fatal("UIndexData must set BufferUsageIndexBufferBit")
	}
}

func TestFromTopologyCoversEveryAbstractValue(t *testing.T) {
	cases := map[driver.Topology]vk.PrimitiveTopology{
		driver.TPoint:    vk.PrimitiveTopologyPointList,
		driver.TLine:     vk.PrimitiveTopologyLineList,
		driver.TLnStrip:  vk.PrimitiveTopologyLineStrip,
		driver.TTriangle: vk.PrimitiveTopologyTriangleList,
		driver.TTriStrip: vk.PrimitiveTopologyTriangleStrip,
	}
	for in, want := range cases {
		if got := fromTopology(in); got != want {
			t.Fatalf("fromTopology(%d): want %v, got %v", in, want, got)
		}
	}
}

func TestFromCullModeCoversEveryAbstractValue(t *testing.T) {
	cases := map[driver.CullMode]vk.CullModeFlags{
		driver.CNone:  vk.CullModeFlags(vk.CullModeNone),
		driver.CFront: vk.CullModeFlags(vk.CullModeFrontBit),
		driver.CBack:  vk.CullModeFlags(vk.CullModeBackBit),
	}
	for in, want := range cases {
		if got := fromCullMode(in); got != want {
			t.Fatalf("fromCullMode(%d): want %v, got %v", in, want, got)
		}
	}
}
