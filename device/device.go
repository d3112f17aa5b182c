// Package device wraps a driver.GPU with the handle-based, cached,
// frame-paced runtime that application code actually programs
// against: content-addressed deduplication for render passes,
// descriptor set layouts, pipeline layouts and framebuffers; lazily
// built pipeline variants; and a two-method frame pacing protocol
// built on top of driver.GPU.Commit.
//
// A Device owns exactly one driver.GPU and is not safe for concurrent
// use from more than one host thread, matching the driver it wraps;
// up to Config.FramesInFlight frames may nonetheless be executing on
// the GPU concurrently with host-side recording.
package device

import (
	"errors"
	"fmt"
	"log"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

// DefaultFramesInFlight is the number of frames that may be queued for
// GPU execution at once when Config.FramesInFlight is left at zero.
const DefaultFramesInFlight = 2

// Logger receives diagnostic traces from a Device and the objects it
// creates. It defaults to the standard library logger, matching the
// driver package's own use of log.Printf; an embedder may replace it
// wholesale with SetLogger.
var Logger = log.New(log.Writer(), "", log.LstdFlags)

// SetLogger replaces the package-level logger.
func SetLogger(l *log.Logger) { Logger = l }

type logFunc func(format string, v ...any)

func (d *Device) logf(format string, v ...any) {
	if Logger != nil {
		Logger.Printf("device: "+format, v...)
	}
}

// ErrSwapchainLost is returned by frame-pacing methods when the
// swapchain became unusable and could not be recovered after one
// retry. The caller must treat the Device's presentation path as
// fatal and recreate it from scratch.
var ErrSwapchainLost = errors.New("device: swapchain lost")

// Config configures a new Device.
type Config struct {
	// FramesInFlight bounds how many frames may be queued for GPU
	// execution simultaneously. Zero selects DefaultFramesInFlight.
	FramesInFlight int
	// Debug is kept with the Device's configuration. The device
	// package does not read it: the same traces are logged whether or
	// not it is set, and it has no effect on the underlying driver's
	// own validation layers.
	Debug bool
}

// Device is the runtime built on top of a driver.GPU.
type Device struct {
	gpu    driver.GPU
	cfg    Config
	caches caches

	ridCount uint64
	table    map[rid]kind

	frame frameState
}

// New creates a Device wrapping gpu. gpu must already be open
// (driver.Driver.Open must have succeeded).
func New(gpu driver.GPU, cfg Config) *Device {
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = DefaultFramesInFlight
	}
	d := &Device{
		gpu:    gpu,
		cfg:    cfg,
		caches: newCaches(),
		table:  make(map[rid]kind),
	}
	d.frame = newFrameState(d, cfg.FramesInFlight)
	d.logf("opened on driver %q, %d frames in flight", gpu.Driver().Name(), cfg.FramesInFlight)
	return d
}

// GPU returns the underlying driver.GPU. Most application code should
// not need it; it is exposed for embedders that need driver-level
// escape hatches (e.g. querying Limits).
func (d *Device) GPU() driver.GPU { return d.gpu }

// Limits returns the wrapped driver's implementation limits.
func (d *Device) Limits() driver.Limits { return d.gpu.Limits() }

// WaitIdle blocks until all commands previously committed to the GPU
// have finished executing. It is used internally before destroying
// resources that may still be referenced by in-flight work (images
// that back live framebuffers, in particular) and is exported for
// callers that need the same guarantee, e.g. before process exit.
func (d *Device) WaitIdle() error {
	ch := make(chan error, 1)
	d.gpu.Commit(nil, ch)
	return <-ch
}

// Destroy tears down every cached object and the frame driver's sync
// state. It does not destroy buffers, images or pipelines created
// through the Device; those remain the caller's responsibility and
// must be destroyed (in dependency order) before Destroy is called.
func (d *Device) Destroy() {
	d.frame.destroy()
	d.caches.destroyAll(d.logf)
	d.table = nil
}

// describeRID is used by error messages; it never fails even for an
// rid the Device does not recognize.
func (d *Device) describeRID(id rid) string {
	if k, ok := d.table[id]; ok {
		return fmt.Sprintf("%s#%d", k, id)
	}
	return fmt.Sprintf("rid#%d (unknown)", id)
}
