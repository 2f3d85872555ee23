package diesel2d

import vk "github.com/vulkan-go/vulkan"

const (
	validationLayerName  = "VK_LAYER_KHRONOS_validation"
	debugReportExtension = "VK_EXT_debug_report"
	swapchainExtension   = "VK_KHR_swapchain"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions(driver Driver) ([]string, error) {
	names, ret := driver.EnumerateInstanceExtensions()
	if err := wrapResult(ret, "enumerate instance extensions"); err != nil {
		return nil, err
	}
	return names, nil
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(driver Driver, gpu vk.PhysicalDevice) ([]string, error) {
	names, ret := driver.EnumerateDeviceExtensions(gpu)
	if err := wrapResult(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	return names, nil
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers(driver Driver) ([]string, error) {
	names, ret := driver.EnumerateInstanceLayers()
	if err := wrapResult(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	return names, nil
}

// checkExisting returns the NUL-terminated subset of required names that
// appear in actual, and the names that do not.
func checkExisting(actual, required []string) (existing []string, missing []string) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[trimNul(name)] = struct{}{}
	}
	for _, name := range required {
		if _, ok := have[trimNul(name)]; ok {
			existing = append(existing, name)
		} else {
			missing = append(missing, trimNul(name))
		}
	}
	return safeStrings(existing), missing
}
