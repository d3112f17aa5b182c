package device

import (
	"errors"
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

func TestNextFrameWaitsForOldestSlot(t *testing.T) {
	d := newTestDevice() // FramesInFlight defaults to 2
	sc := &fakeSwapchain{}
	cb := &fakeCmdBuffer{}

	for i := 0; i < d.FramesInFlight()+1; i++ {
		idx, err := d.NextFrame(sc, cb)
		if err != nil {
			t.Fatalf("frame %d: NextFrame: %v", i, err)
		}
		if err := d.PresentFrame(sc, idx, cb); err != nil {
			t.Fatalf("frame %d: PresentFrame: %v", i, err)
		}
	}
	// By the time this returns, frame 0's slot must have been waited
	// on before being reused for frame (FramesInFlight).
	if sc.calls != d.FramesInFlight()+1 {
		t.Fatalf("expected %d acquisitions, got %d", d.FramesInFlight()+1, sc.calls)
	}
}

func TestSwapchainRecreateOnTransientFailure(t *testing.T) {
	d := newTestDevice()
	sc := &fakeSwapchain{nextErrs: []error{driver.ErrSwapchain}}
	cb := &fakeCmdBuffer{}

	idx, err := d.NextFrame(sc, cb)
	if err != nil {
		t.Fatalf("expected transient swapchain failure to recover, got %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected index 0 after recovery, got %d", idx)
	}
	if sc.recreated != 1 {
		t.Fatalf("expected exactly one Recreate call, got %d", sc.recreated)
	}
}

func TestSwapchainFatalOnConsecutiveFailure(t *testing.T) {
	d := newTestDevice()
	sc := &fakeSwapchain{}
	cb := &fakeCmdBuffer{}

	// Mark one swapchain failure as already counted, then make the
	// next acquisition fail too: that is the second consecutive
	// failure, which NextFrame reports without recreating or retrying.
	d.frame.consecutiveFailures = 1
	sc.nextErrs = []error{driver.ErrSwapchain}

	_, err := d.NextFrame(sc, cb)
	if !errors.Is(err, ErrSwapchainLost) {
		t.Fatalf("expected ErrSwapchainLost on a second consecutive failure, got %v", err)
	}
}

func TestNextFrameNonSwapchainErrorPropagates(t *testing.T) {
	d := newTestDevice()
	sc := &fakeSwapchain{nextErrs: []error{errBoom}}
	cb := &fakeCmdBuffer{}

	_, err := d.NextFrame(sc, cb)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected the underlying error to propagate unchanged, got %v", err)
	}
}
