package gl

import (
	"testing"

	glow "github.com/go-gl/gl/v4.6-core/gl"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// TestPixelFmtTableCoversEveryAbstractFormat mirrors driver/vk's own
// roundtrip property test: every non-internal PixelFmt must resolve
// to a populated glFormat triple, matching driver/vk/conv_test.go's
// TestPixelFmtRoundtrip for the same abstract table on the other
// backend.
func TestPixelFmtTableCoversEveryAbstractFormat(t *testing.T) {
	for pf := driver.RGBA8un; pf <= driver.D32fS8ui; pf++ {
		got := fromPixelFmt(pf)
		if got == (glFormat{}) {
			t.Fatalf("fromPixelFmt(%d): no entry in pixelFmtTab", pf)
		}
	}
}

func TestPixelFmtInternalNeverMapped(t *testing.T) {
	internal := driver.FInternal | driver.PixelFmt(1)
	if fromPixelFmt(internal) != (glFormat{}) {
		t.Fatal("an internal-bit format must not resolve to a real glFormat")
	}
}

func TestFromTopologyCoversEveryAbstractValue(t *testing.T) {
	cases := map[driver.Topology]uint32{
		driver.TPoint:    glow.POINTS,
		driver.TLine:     glow.LINES,
		driver.TLnStrip:  glow.LINE_STRIP,
		driver.TTriangle: glow.TRIANGLES,
		driver.TTriStrip: glow.TRIANGLE_STRIP,
	}
	for in, want := range cases {
		if got := fromTopology(in); got != want {
			t.Fatalf("fromTopology(%d): want %v, got %v", in, want, got)
		}
	}
}
