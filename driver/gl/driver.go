// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package gl implements driver interfaces using OpenGL 4.6 core
// profile, through the github.com/go-gl/gl/v4.6-core/gl bindings.
// Unlike driver/vk, which records commands directly into a native
// command buffer, this backend has no such object: CmdBuffer instead
// captures every cmd_* call into an in-memory list (cmd.go) and
// replays it against the context on Commit, exactly as spec.md §4.11
// describes for the deferred OpenGL path.
package gl

import (
	"errors"
	"fmt"

	glow "github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/wsi"
)

const driverName = "opengl"

// Driver implements driver.Driver and driver.GPU. Unlike vk.Driver,
// it has no instance/physical-device selection step: opening the
// driver makes whatever window's context was prepared by Open's
// caller current and queries its limits directly.
type Driver struct {
	win    *glfw.Window
	opened bool
	lim    driver.Limits

	// There is no queue of committed cmdBuffers: Commit replays them
	// synchronously against the current context (see
	// (*Driver).Commit).
}

func init() {
	driver.Register(&Driver{})
}

// ErrNoWindow means Open was called without ever creating a window
// through wsi.RequestGLContext + wsi.NewWindow; this backend has
// nothing to make current.
var ErrNoWindow = errors.New("gl: Open requires a window created after wsi.RequestGLContext")

// errIncompleteFB is returned by renderPass.NewFB when the attached
// views do not form a complete GL framebuffer.
var errIncompleteFB = errors.New("gl: incomplete framebuffer")

// Window is set by the embedder before calling Driver.Open, using the
// wsi.Window returned by wsi.NewWindow after a prior call to
// wsi.RequestGLContext(4, 6). This mirrors the teacher's own pattern
// of handing a windowing-package handle to the driver at open time
// (driver/vk.Driver.Open has no window parameter either; it learns
// about a window only later, through NewSwapchain).
var Window wsi.Window

// Open makes Window's context current, loads the GL 4.6 core-profile
// function pointers, and queries implementation limits. Only one
// gl.Driver may be open per process: go-gl/gl's function pointers are
// loaded into package-level state shared by every *Driver.
func (d *Driver) Open() (driver.GPU, error) {
	if d.opened {
		return d, nil
	}
	if Window == nil {
		return nil, ErrNoWindow
	}
	d.win = wsi.GLFWWindow(Window)
	d.win.MakeContextCurrent()
	if err := glow.Init(); err != nil {
		return nil, fmt.Errorf("gl: %w", err)
	}
	glow.Enable(glow.FRAMEBUFFER_SRGB)
	d.setLimits()
	d.opened = true
	return d, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close releases the driver. It does not destroy the window; the
// embedder owns that through wsi.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	*d = Driver{}
}

// Driver returns the receiver, for driver.GPU conformance.
func (d *Driver) Driver() driver.Driver { return d }

// Limits returns the implementation limits.
func (d *Driver) Limits() driver.Limits { return d.lim }

func (d *Driver) setLimits() {
	geti := func(name uint32) int {
		var v int32
		glow.GetIntegerv(name, &v)
		return int(v)
	}
	var dispatch [3]int32
	for i := range dispatch {
		glow.GetIntegeri_v(glow.MAX_COMPUTE_WORK_GROUP_COUNT, uint32(i), &dispatch[i])
	}
	d.lim = driver.Limits{
		MaxImage1D:   geti(glow.MAX_TEXTURE_SIZE),
		MaxImage2D:   geti(glow.MAX_TEXTURE_SIZE),
		MaxImageCube: geti(glow.MAX_CUBE_MAP_TEXTURE_SIZE),
		MaxImage3D:   geti(glow.MAX_3D_TEXTURE_SIZE),
		MaxLayers:    geti(glow.MAX_ARRAY_TEXTURE_LAYERS),

		MaxDescHeaps:      4,
		MaxDBuffer:        geti(glow.MAX_SHADER_STORAGE_BUFFER_BINDINGS),
		MaxDImage:         geti(glow.MAX_IMAGE_UNITS),
		MaxDConstant:      geti(glow.MAX_UNIFORM_BUFFER_BINDINGS),
		MaxDTexture:       geti(glow.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		MaxDSampler:       geti(glow.MAX_COMBINED_TEXTURE_IMAGE_UNITS),
		MaxDBufferRange:   int64(geti(glow.MAX_SHADER_STORAGE_BLOCK_SIZE)),
		MaxDConstantRange: int64(geti(glow.MAX_UNIFORM_BLOCK_SIZE)),

		MaxColorTargets: geti(glow.MAX_COLOR_ATTACHMENTS),
		MaxFBSize:       [2]int{geti(glow.MAX_FRAMEBUFFER_WIDTH), geti(glow.MAX_FRAMEBUFFER_HEIGHT)},
		MaxFBLayers:     geti(glow.MAX_FRAMEBUFFER_LAYERS),
		MaxPointSize:    1,
		MaxViewports:    geti(glow.MAX_VIEWPORTS),

		MaxVertexIn:   geti(glow.MAX_VERTEX_ATTRIBS),
		MaxFragmentIn: geti(glow.MAX_FRAGMENT_INPUT_COMPONENTS) / 4,

		MaxDispatch: [3]int{int(dispatch[0]), int(dispatch[1]), int(dispatch[2])},
	}
}

// Commit replays every captured cmdBuffer in cb, in order, against
// the current context, then reports completion on ch. There is no
// asynchronous submission in core OpenGL short of fences the host
// would have to poll; since all GL calls on this thread execute (or
// at minimum are ordered) synchronously with respect to the host
// program, replay-then-signal is indistinguishable from the
// Vulkan backend's fence wait from the caller's point of view, modulo
// the actual GPU work still draining asynchronously after Flush --
// a simplification recorded in DESIGN.md.
func (d *Driver) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	for _, c := range cb {
		b := c.(*cmdBuffer)
		if err := b.replay(); err != nil {
			if ch != nil {
				ch <- err
			}
			return
		}
	}
	glow.Flush()
	if ch != nil {
		ch <- nil
	}
}

func checkError(where string) error {
	if e := glow.GetError(); e != glow.NO_ERROR {
		return fmt.Errorf("gl: %s: error 0x%x", where, e)
	}
	return nil
}
