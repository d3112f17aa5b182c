// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow implements Window on top of a *glfw.Window. It is the
// single cross-platform path this package now offers: it replaces
// what used to be three platform-specific backends (XCB, Wayland,
// Win32) with the one windowing layer glfw already provides uniformly
// on every desktop target, matching the combined Vulkan/OpenGL
// backend repositories in the wider ecosystem that settle on glfw for
// exactly this reason.
type glfwWindow struct {
	w             *glfw.Window
	width, height int
	title         string
}

func init() {
	newWindow = newGlfwWindow
	dispatch = glfw.PollEvents
	setAppName = func(string) {}
	platform = glfwPlatform()
}

var glfwInitErr error
var glfwInitDone bool

func ensureInit() error {
	if glfwInitDone {
		return glfwInitErr
	}
	glfwInitDone = true
	glfwInitErr = glfw.Init()
	return glfwInitErr
}

// glMajor and glMinor select an OpenGL core-profile context for
// windows created after RequestGLContext is called; zero (the
// default) keeps the NoAPI hint below, which is what driver/vk's
// surface creation requires.
var glMajor, glMinor int

// RequestGLContext selects an OpenGL core-profile context of the
// given version for windows created by this package from this point
// on. An embedder using driver/gl calls this once, before the
// application's first wsi.NewWindow, so that the window it eventually hands to
// Driver.Open already carries a context driver/gl can make current;
// it has no effect on windows already created. Calling it with
// major == 0 restores the default NoAPI (Vulkan-only) window, should
// an embedder need to switch backends within one process.
func RequestGLContext(major, minor int) {
	glMajor, glMinor = major, minor
}

func newGlfwWindow(width, height int, title string) (Window, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	if glMajor != 0 {
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, glMajor)
		glfw.WindowHint(glfw.ContextVersionMinor, glMinor)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	} else {
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	win := &glfwWindow{w: w, width: width, height: height, title: title}

	w.SetCloseCallback(func(*glfw.Window) {
		if windowHandler != nil {
			windowHandler.WindowClose(win)
		}
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		win.width, win.height = width, height
		if windowHandler != nil {
			windowHandler.WindowResize(win, width, height)
		}
	})
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if keyboardHandler == nil || action == glfw.Repeat {
			return
		}
		keyboardHandler.KeyboardKey(keyFrom(int(key)), action == glfw.Press, modFrom(mods))
	})
	w.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if pointerHandler == nil {
			return
		}
		x, y := w.GetCursorPos()
		if entered {
			pointerHandler.PointerIn(win, int(x), int(y))
		} else {
			pointerHandler.PointerOut(win)
		}
	})
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if pointerHandler != nil {
			pointerHandler.PointerMotion(int(x), int(y))
		}
	})
	w.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if pointerHandler == nil {
			return
		}
		x, y := w.GetCursorPos()
		pointerHandler.PointerButton(btnFrom(button), action == glfw.Press, int(x), int(y))
	})

	return win, nil
}

func (w *glfwWindow) Map() error {
	w.w.Show()
	return nil
}

func (w *glfwWindow) Unmap() error {
	w.w.Hide()
	return nil
}

func (w *glfwWindow) Resize(width, height int) error {
	w.w.SetSize(width, height)
	w.width, w.height = width, height
	return nil
}

func (w *glfwWindow) SetTitle(title string) error {
	w.w.SetTitle(title)
	w.title = title
	return nil
}

func (w *glfwWindow) Close() {
	closeWindow(w)
	w.w.Destroy()
}

func (w *glfwWindow) Width() int  { return w.width }
func (w *glfwWindow) Height() int { return w.height }
func (w *glfwWindow) Title() string { return w.title }

// FramebufferSize returns the window's current framebuffer size in
// pixels, which may differ from Width/Height on HiDPI displays. The
// swapchain driver uses this instead of the surface's reported
// currentExtent when the latter is the sentinel "undefined" value.
func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.w.GetFramebufferSize()
}

// GLFWWindow exposes the underlying *glfw.Window for driver packages
// that need it directly (Vulkan surface creation, GL context
// activation). It panics if win was not created by this package.
func GLFWWindow(win Window) *glfw.Window {
	gw, ok := win.(*glfwWindow)
	if !ok {
		panic("wsi: not a glfw-backed window")
	}
	return gw.w
}

// RequiredInstanceExtensions returns the Vulkan instance extensions
// glfw requires for presentation on the current platform. It returns
// nil if Vulkan is not supported by the installed glfw/loader.
func RequiredInstanceExtensions() []string {
	if err := ensureInit(); err != nil || !glfw.VulkanSupported() {
		return nil
	}
	return glfw.GetRequiredInstanceExtensions()
}

// VulkanSurface creates a VkSurfaceKHR for win against instance
// (a vk.Instance value passed as a raw, backend-opaque pointer to
// keep this package free of a Vulkan binding dependency) and returns
// the raw VkSurfaceKHR handle as a uintptr, for the caller to wrap
// with its own Vulkan binding's surface type.
func VulkanSurface(win Window, instance unsafe.Pointer) (uintptr, error) {
	gw := GLFWWindow(win)
	surf, err := gw.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, err
	}
	return surf, nil
}

// ErrVulkanUnsupported means glfw was built without Vulkan loader
// support, or no Vulkan ICD could be found on the system.
var ErrVulkanUnsupported = errors.New("wsi: vulkan not supported by glfw")

func glfwPlatform() Platform {
	// glfw abstracts the windowing backend itself; from this
	// package's point of view there is exactly one platform now,
	// so report the generic value closest in spirit to what the
	// multi-backend original reported on Linux.
	return XCB
}

func modFrom(mods glfw.ModifierKey) Modifier {
	var m Modifier
	if mods&glfw.ModShift != 0 {
		m |= ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= ModCtrl
	}
	if mods&glfw.ModAlt != 0 {
		m |= ModAlt
	}
	if mods&glfw.ModCapsLock != 0 {
		m |= ModCapsLock
	}
	return m
}

func btnFrom(b glfw.MouseButton) Button {
	switch b {
	case glfw.MouseButtonLeft:
		return BtnLeft
	case glfw.MouseButtonRight:
		return BtnRight
	case glfw.MouseButtonMiddle:
		return BtnMiddle
	case glfw.MouseButton4:
		return BtnSide
	case glfw.MouseButton5:
		return BtnForward
	case glfw.MouseButton6:
		return BtnBackward
	default:
		return BtnUnknown
	}
}

// keymap translates glfw key codes (glfw.Key values, which are
// themselves small dense integers) to wsi.Key. Indexed directly per
// keyFrom's contract in keymap.go.
var keymap = buildKeymap()

func buildKeymap() []Key {
	m := make([]Key, glfw.KeyLast+1)
	set := func(gk glfw.Key, k Key) {
		if int(gk) >= 0 && int(gk) < len(m) {
			m[gk] = k
		}
	}
	set(glfw.KeyGraveAccent, KeyGrave)
	set(glfw.Key1, Key1)
	set(glfw.Key2, Key2)
	set(glfw.Key3, Key3)
	set(glfw.Key4, Key4)
	set(glfw.Key5, Key5)
	set(glfw.Key6, Key6)
	set(glfw.Key7, Key7)
	set(glfw.Key8, Key8)
	set(glfw.Key9, Key9)
	set(glfw.Key0, Key0)
	set(glfw.KeyMinus, KeyMinus)
	set(glfw.KeyEqual, KeyEqual)
	set(glfw.KeyBackspace, KeyBackspace)
	set(glfw.KeyTab, KeyTab)
	set(glfw.KeyQ, KeyQ)
	set(glfw.KeyW, KeyW)
	set(glfw.KeyE, KeyE)
	set(glfw.KeyR, KeyR)
	set(glfw.KeyT, KeyT)
	set(glfw.KeyY, KeyY)
	set(glfw.KeyU, KeyU)
	set(glfw.KeyI, KeyI)
	set(glfw.KeyO, KeyO)
	set(glfw.KeyP, KeyP)
	set(glfw.KeyLeftBracket, KeyLBracket)
	set(glfw.KeyRightBracket, KeyRBracket)
	set(glfw.KeyBackslash, KeyBackslash)
	set(glfw.KeyCapsLock, KeyCapsLock)
	set(glfw.KeyA, KeyA)
	set(glfw.KeyS, KeyS)
	set(glfw.KeyD, KeyD)
	set(glfw.KeyF, KeyF)
	set(glfw.KeyG, KeyG)
	set(glfw.KeyH, KeyH)
	set(glfw.KeyJ, KeyJ)
	set(glfw.KeyK, KeyK)
	set(glfw.KeyL, KeyL)
	set(glfw.KeySemicolon, KeySemicolon)
	set(glfw.KeyApostrophe, KeyApostrophe)
	set(glfw.KeyEnter, KeyReturn)
	set(glfw.KeyLeftShift, KeyLShift)
	set(glfw.KeyZ, KeyZ)
	set(glfw.KeyX, KeyX)
	set(glfw.KeyC, KeyC)
	set(glfw.KeyV, KeyV)
	set(glfw.KeyB, KeyB)
	set(glfw.KeyN, KeyN)
	set(glfw.KeyM, KeyM)
	set(glfw.KeyComma, KeyComma)
	set(glfw.KeyPeriod, KeyDot)
	set(glfw.KeySlash, KeySlash)
	set(glfw.KeyRightShift, KeyRShift)
	set(glfw.KeyLeftControl, KeyLCtrl)
	set(glfw.KeyLeftAlt, KeyLAlt)
	set(glfw.KeyLeftSuper, KeyLMeta)
	set(glfw.KeySpace, KeySpace)
	set(glfw.KeyRightSuper, KeyRMeta)
	set(glfw.KeyRightAlt, KeyRAlt)
	set(glfw.KeyRightControl, KeyRCtrl)
	set(glfw.KeyEscape, KeyEsc)
	set(glfw.KeyF1, KeyF1)
	set(glfw.KeyF2, KeyF2)
	set(glfw.KeyF3, KeyF3)
	set(glfw.KeyF4, KeyF4)
	set(glfw.KeyF5, KeyF5)
	set(glfw.KeyF6, KeyF6)
	set(glfw.KeyF7, KeyF7)
	set(glfw.KeyF8, KeyF8)
	set(glfw.KeyF9, KeyF9)
	set(glfw.KeyF10, KeyF10)
	set(glfw.KeyF11, KeyF11)
	set(glfw.KeyF12, KeyF12)
	set(glfw.KeyInsert, KeyInsert)
	set(glfw.KeyDelete, KeyDelete)
	set(glfw.KeyHome, KeyHome)
	set(glfw.KeyEnd, KeyEnd)
	set(glfw.KeyPageUp, KeyPageUp)
	set(glfw.KeyPageDown, KeyPageDown)
	set(glfw.KeyUp, KeyUp)
	set(glfw.KeyDown, KeyDown)
	set(glfw.KeyLeft, KeyLeft)
	set(glfw.KeyRight, KeyRight)
	set(glfw.KeyPrintScreen, KeySysrq)
	set(glfw.KeyScrollLock, KeyScrollLock)
	set(glfw.KeyPause, KeyPause)
	set(glfw.KeyNumLock, KeyPadNumLock)
	set(glfw.KeyKPDivide, KeyPadSlash)
	set(glfw.KeyKPMultiply, KeyPadStar)
	set(glfw.KeyKPSubtract, KeyPadMinus)
	set(glfw.KeyKPAdd, KeyPadPlus)
	set(glfw.KeyKP1, KeyPad1)
	set(glfw.KeyKP2, KeyPad2)
	set(glfw.KeyKP3, KeyPad3)
	set(glfw.KeyKP4, KeyPad4)
	set(glfw.KeyKP5, KeyPad5)
	set(glfw.KeyKP6, KeyPad6)
	set(glfw.KeyKP7, KeyPad7)
	set(glfw.KeyKP8, KeyPad8)
	set(glfw.KeyKP9, KeyPad9)
	set(glfw.KeyKP0, KeyPad0)
	set(glfw.KeyKPDecimal, KeyPadDot)
	set(glfw.KeyKPEnter, KeyPadEnter)
	set(glfw.KeyKPEqual, KeyPadEqual)
	set(glfw.KeyF13, KeyF13)
	set(glfw.KeyF14, KeyF14)
	set(glfw.KeyF15, KeyF15)
	set(glfw.KeyF16, KeyF16)
	set(glfw.KeyF17, KeyF17)
	set(glfw.KeyF18, KeyF18)
	set(glfw.KeyF19, KeyF19)
	set(glfw.KeyF20, KeyF20)
	set(glfw.KeyF21, KeyF21)
	set(glfw.KeyF22, KeyF22)
	set(glfw.KeyF23, KeyF23)
	set(glfw.KeyF24, KeyF24)
	return m
}
