package vk

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/wsi"
)

// requiredInstanceExtensions returns the instance extensions this
// backend requests: whatever glfw reports as necessary for
// presentation on the current platform (none when glfw cannot be
// initialized or reports no Vulkan support, see
// wsi.RequiredInstanceExtensions) plus the debug-utils extension when
// DebugEnabled is set.
func requiredInstanceExtensions() []string {
	exts := wsi.RequiredInstanceExtensions()
	if DebugEnabled {
		exts = append(exts, vk.ExtDebugUtilsExtensionName)
	}
	return exts
}

// DebugEnabled makes a new Driver request the debug-utils instance
// extension. No debug messenger is created and no validation layer is
// enabled. It defaults to false and is read by the first Driver.Open.
var DebugEnabled = false

// deviceExtensions enumerates the extensions a physical device
// exposes, null-terminated C strings and all, used only to score
// candidate devices during selection (initDevice favors one that
// advertises VK_KHR_swapchain).
func deviceExtensions(pdev vk.PhysicalDevice) ([]string, error) {
	var n uint32
	if err := checkResult(vk.EnumerateDeviceExtensionProperties(pdev, "", &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	props := make([]vk.ExtensionProperties, n)
	if err := checkResult(vk.EnumerateDeviceExtensionProperties(pdev, "", &n, props)); err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range props {
		props[i].Deref()
		names[i] = vk.ToString(props[i].ExtensionName[:])
	}
	return names, nil
}
