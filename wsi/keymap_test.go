package wsi

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestKeyFromKnownCodes(t *testing.T) {
	cases := map[glfw.Key]Key{
		glfw.KeyA:       KeyA,
		glfw.KeyGraveAccent: KeyGrave,
		glfw.KeyEnter:   KeyReturn,
		glfw.KeySpace:   KeySpace,
		glfw.KeyApostrophe: KeyApostrophe,
	}
	for code, want := range cases {
		if got := keyFrom(int(code)); got != want {
			t.Fatalf("keyFrom(%v): want %v, got %v", code, want, got)
		}
	}
}

func TestKeyFromOutOfRangeIsUnknown(t *testing.T) {
	if got := keyFrom(len(keymap) + 1000); got != KeyUnknown {
		t.Fatalf("keyFrom(out of range): want KeyUnknown, got %v", got)
	}
	if got := keyFrom(-1); got != KeyUnknown {
		t.Fatalf("keyFrom(-1): want KeyUnknown, got %v", got)
	}
}
