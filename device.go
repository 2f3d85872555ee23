package diesel2d

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultDeviceTypePriority prefers a discrete GPU, then an integrated one.
var DefaultDeviceTypePriority = []vk.PhysicalDeviceType{
	vk.PhysicalDeviceTypeDiscreteGpu,
	vk.PhysicalDeviceTypeIntegratedGpu,
}

// ParseDeviceType converts the textual form used in config files.
func ParseDeviceType(s string) (vk.PhysicalDeviceType, error) {
	switch strings.ToLower(s) {
	case "discrete":
		return vk.PhysicalDeviceTypeDiscreteGpu, nil
	case "integrated":
		return vk.PhysicalDeviceTypeIntegratedGpu, nil
	case "virtual":
		return vk.PhysicalDeviceTypeVirtualGpu, nil
	case "cpu":
		return vk.PhysicalDeviceTypeCpu, nil
	case "other":
		return vk.PhysicalDeviceTypeOther, nil
	}
	return 0, fmt.Errorf("unknown device type %q", s)
}

type physicalDeviceCandidate struct {
	handle     vk.PhysicalDevice
	deviceType vk.PhysicalDeviceType
	name       string
	families   QueueFamilies
}

// deviceTypeScore is len(priority)-index for listed types and 0 otherwise.
func deviceTypeScore(t vk.PhysicalDeviceType, priority []vk.PhysicalDeviceType) int {
	for i, p := range priority {
		if p == t {
			return len(priority) - i
		}
	}
	return 0
}

// rankPhysicalDevices returns the index of the best candidate. Ties keep
// the first-scanned device.
func rankPhysicalDevices(candidates []physicalDeviceCandidate, priority []vk.PhysicalDeviceType) (int, bool) {
	best, bestScore := -1, -1
	for i, c := range candidates {
		if score := deviceTypeScore(c.deviceType, priority); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, best >= 0
}

// Device is a logical device bound to one presentable surface. It owns
// the surface and destroys it after the logical device.
type Device struct {
	driver   Driver
	instance *Instance

	gpu        vk.PhysicalDevice
	handle     vk.Device
	surface    vk.Surface
	deviceType vk.PhysicalDeviceType
	name       string

	families      QueueFamilies
	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	memoryProperties vk.PhysicalDeviceMemoryProperties
}

// NewDevice creates the window surface, selects a physical device by type
// priority and creates the logical device with its queues.
func NewDevice(instance *Instance, window Window, priority []vk.PhysicalDeviceType) (dev *Device, err error) {
	driver := instance.Driver()
	surface, err := window.CreateVulkanSurface(instance.Handle())
	if err != nil {
		return nil, errors.Wrap(err, "create window surface")
	}
	defer func() {
		if err != nil {
			driver.DestroySurface(instance.Handle(), surface)
		}
	}()

	candidates, err := findPhysicalDevices(driver, instance.Handle(), surface)
	if err != nil {
		return nil, err
	}
	best, ok := rankPhysicalDevices(candidates, priority)
	if !ok {
		return nil, ErrNoCompatibleDevice
	}
	chosen := candidates[best]

	queueInfos := queueCreateInfos(chosen.families)
	extensions := []string{safeString(swapchainExtension)}
	handle, ret := driver.CreateDevice(chosen.handle, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(instance.Layers())),
		PpEnabledLayerNames:     instance.Layers(),
	})
	if err := wrapResult(ret, "create device"); err != nil {
		return nil, err
	}

	dev = &Device{
		driver:           driver,
		instance:         instance,
		gpu:              chosen.handle,
		handle:           handle,
		surface:          surface,
		deviceType:       chosen.deviceType,
		name:             chosen.name,
		families:         chosen.families,
		memoryProperties: driver.PhysicalDeviceMemoryProperties(chosen.handle),
	}
	dev.graphicsQueue = driver.DeviceQueue(handle, chosen.families.Graphics, 0)
	dev.presentQueue = dev.graphicsQueue
	if chosen.families.Separate() {
		dev.presentQueue = driver.DeviceQueue(handle, chosen.families.Present, 0)
	}
	Logger().Info("vulkan device selected",
		"name", chosen.name,
		"type", int(chosen.deviceType),
		"graphics_family", chosen.families.Graphics,
		"present_family", chosen.families.Present,
	)
	return dev, nil
}

// findPhysicalDevices returns the devices that expose the swapchain
// extension, a graphics family and a family that can present to surface.
func findPhysicalDevices(driver Driver, instance vk.Instance, surface vk.Surface) ([]physicalDeviceCandidate, error) {
	gpus, ret := driver.EnumeratePhysicalDevices(instance)
	if err := wrapResult(ret, "enumerate physical devices"); err != nil {
		return nil, err
	}
	var candidates []physicalDeviceCandidate
	for _, gpu := range gpus {
		exts, err := DeviceExtensions(driver, gpu)
		if err != nil {
			return nil, err
		}
		if _, missing := checkExisting(exts, []string{swapchainExtension}); len(missing) > 0 {
			continue
		}
		props := driver.QueueFamilyProperties(gpu)
		support := make([]bool, len(props))
		for i := range props {
			ok, ret := driver.SurfaceSupport(gpu, uint32(i), surface)
			if err := wrapResult(ret, "query surface support"); err != nil {
				return nil, err
			}
			support[i] = ok
		}
		families, ok := chooseQueueFamilies(props, support)
		if !ok {
			continue
		}
		gpuProps := driver.PhysicalDeviceProperties(gpu)
		candidates = append(candidates, physicalDeviceCandidate{
			handle:     gpu,
			deviceType: gpuProps.DeviceType,
			name:       vk.ToString(gpuProps.DeviceName[:]),
			families:   families,
		})
	}
	return candidates, nil
}

func (d *Device) Driver() Driver {
	return d.driver
}

func (d *Device) Instance() *Instance {
	return d.instance
}

func (d *Device) Handle() vk.Device {
	return d.handle
}

func (d *Device) PhysicalDevice() vk.PhysicalDevice {
	return d.gpu
}

func (d *Device) Surface() vk.Surface {
	return d.surface
}

// Type is the physical device type of the selected GPU.
func (d *Device) Type() vk.PhysicalDeviceType {
	return d.deviceType
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) QueueFamilies() QueueFamilies {
	return d.families
}

func (d *Device) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

func (d *Device) PresentQueue() vk.Queue {
	return d.presentQueue
}

func (d *Device) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return d.memoryProperties
}

func (d *Device) WaitIdle() error {
	return wrapResult(d.driver.DeviceWaitIdle(d.handle), "device wait idle")
}

// Destroy destroys the logical device and then the surface.
func (d *Device) Destroy() {
	if d.handle == nil {
		return
	}
	d.driver.DestroyDevice(d.handle)
	d.handle = nil
	if d.surface != vk.NullSurface {
		d.driver.DestroySurface(d.instance.Handle(), d.surface)
		d.surface = vk.NullSurface
	}
}
