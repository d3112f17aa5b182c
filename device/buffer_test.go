package device

import (
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

func TestBufferMapUnmapRoundtrip(t *testing.T) {
	d := newTestDevice()
	buf, err := d.NewBuffer(256, true, driver.UShaderConst)
	if err != nil {
		t.Fatal(err)
	}
	if !buf.Visible() {
		t.Fatal("buffer created with visible=true must report Visible")
	}
	if buf.Cap() != 256 {
		t.Fatalf("expected capacity 256, got %d", buf.Cap())
	}

	b := buf.Bytes()
	if len(b) != 256 {
		t.Fatalf("expected a 256-byte mapped slice, got %d", len(b))
	}
	for i := range b {
		b[i] = byte(i)
	}

	// A second call to Bytes must return a view of the same
	// persistently mapped storage, not a fresh unrelated slice.
	b2 := buf.Bytes()
	for i := range b2 {
		if b2[i] != byte(i) {
			t.Fatalf("byte %d: expected %d, got %d (mapped storage not stable across Bytes calls)", i, byte(i), b2[i])
		}
	}

	d.DestroyBuffer(buf)
}

func TestBufferNotVisibleHasNoBytes(t *testing.T) {
	d := newTestDevice()
	buf, err := d.NewBuffer(64, false, driver.UShaderRead)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Visible() {
		t.Fatal("buffer created with visible=false must not report Visible")
	}
}
