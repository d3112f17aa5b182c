package rhash

import "testing"

func TestBytesDeterministic(t *testing.T) {
	b := []byte("pipeline-layout")
	h1 := Bytes(b)
	h2 := Bytes(b)
	if h1 != h2 {
		t.Fatalf("Bytes not deterministic: %x != %x", h1, h2)
	}
}

func TestStringMatchesBytes(t *testing.T) {
	s := "render-pass-key"
	if String(s) != Bytes([]byte(s)) {
		t.Fatal("String and Bytes disagree on the same content")
	}
}

func TestCombineOrderSensitive(t *testing.T) {
	a := Bytes([]byte("a"))
	b := Bytes([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("Combine must not be commutative in general")
	}
}

func TestCombineAllEmpty(t *testing.T) {
	if CombineAll() != 0 {
		t.Fatal("CombineAll with no inputs must return the zero seed")
	}
}

func TestCombineAllDeterministic(t *testing.T) {
	hs := []uint32{1, 2, 3, 4}
	if CombineAll(hs...) != CombineAll(hs...) {
		t.Fatal("CombineAll not deterministic")
	}
}
