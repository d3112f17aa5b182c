package device

import (
	"errors"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// frameSlot holds the completion channel for the most recent commit
// made against a given in-flight frame slot. It plays the role a
// frame-complete fence would play in a lower-level backend: NextFrame
// blocks on it before reusing the slot, bounding the number of frames
// that may be queued on the GPU at once to Config.FramesInFlight.
type frameSlot struct {
	pending chan error
}

// frameState is the Device-owned, per-Device frame pacing state.
// Config.FramesInFlight controls its capacity; it replaces what a
// lower-level backend would keep as a fixed-size global array of
// per-frame sync objects with a Device property and an inline slice
// sized once at construction.
type frameState struct {
	slots []frameSlot
	cur   int
	// consecutiveFailures counts swapchain failures (and failed
	// commits that NextFrame awaits) not yet cleared by a successful
	// Next; reaching two is treated as fatal, per the recreate-then-
	// retry-once policy.
	consecutiveFailures int
}

func newFrameState(d *Device, framesInFlight int) frameState {
	return frameState{slots: make([]frameSlot, framesInFlight)}
}

func (f *frameState) destroy() {
	f.slots = nil
}

// NextFrame waits for the GPU to finish with the frame slot that is
// about to be reused (the one submitted Config.FramesInFlight frames
// ago, or immediately if fewer frames have been submitted than that),
// then acquires the next swapchain image.
//
// On an ErrSwapchain error, it waits for the GPU to go idle, destroys
// and recreates the swapchain, and retries acquisition exactly once;
// a second consecutive failure is reported as ErrSwapchainLost and
// must be treated as fatal by the caller.
func (d *Device) NextFrame(sc driver.Swapchain, cb driver.CmdBuffer) (int, error) {
	slot := &d.frame.slots[d.frame.cur%len(d.frame.slots)]
	if slot.pending != nil {
		if err := <-slot.pending; err != nil {
			d.frame.consecutiveFailures++
		}
		slot.pending = nil
	}

	idx, err := sc.Next(cb)
	if err == nil {
		d.frame.consecutiveFailures = 0
		return idx, nil
	}
	if !errors.Is(err, driver.ErrSwapchain) {
		return 0, err
	}

	d.frame.consecutiveFailures++
	if d.frame.consecutiveFailures >= 2 {
		return 0, ErrSwapchainLost
	}
	if err := d.WaitIdle(); err != nil {
		return 0, err
	}
	if err := sc.Recreate(); err != nil {
		return 0, err
	}
	idx, err = sc.Next(cb)
	if err != nil {
		return 0, ErrSwapchainLost
	}
	d.frame.consecutiveFailures = 0
	return idx, nil
}

// PresentFrame commits cb (which must end with the recording
// presenting to index via sc.Present) and registers its completion
// channel in the current frame slot, then advances the frame counter.
// Completion is awaited lazily, the next time this slot is reused by
// NextFrame, rather than synchronously here, so that host-side
// recording of the next frame can proceed while this one is still
// executing on the GPU.
func (d *Device) PresentFrame(sc driver.Swapchain, idx int, cb driver.CmdBuffer) error {
	if err := sc.Present(idx, cb); err != nil {
		if errors.Is(err, driver.ErrSwapchain) {
			d.frame.consecutiveFailures++
			if d.frame.consecutiveFailures >= 2 {
				return ErrSwapchainLost
			}
			if werr := d.WaitIdle(); werr != nil {
				return werr
			}
			if rerr := sc.Recreate(); rerr != nil {
				return rerr
			}
		} else {
			return err
		}
	}

	ch := make(chan error, 1)
	d.gpu.Commit([]driver.CmdBuffer{cb}, ch)
	d.frame.slots[d.frame.cur%len(d.frame.slots)].pending = ch
	d.frame.cur++
	return nil
}

// FramesInFlight returns the configured number of frames that may be
// queued for GPU execution at once.
func (d *Device) FramesInFlight() int {
	return len(d.frame.slots)
}
