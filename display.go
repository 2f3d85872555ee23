package diesel2d

import (
	"math"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// PhysicalSize is a size in device pixels.
type PhysicalSize struct {
	Width  uint32
	Height uint32
}

// LogicalSize is a size in DPI-independent pixels.
type LogicalSize struct {
	Width  uint32
	Height uint32
}

// ToLogical divides by the scale factor, rounding to the nearest pixel.
func (s PhysicalSize) ToLogical(scale float64) LogicalSize {
	if scale <= 0 {
		scale = 1
	}
	return LogicalSize{
		Width:  uint32(math.Round(float64(s.Width) / scale)),
		Height: uint32(math.Round(float64(s.Height) / scale)),
	}
}

// ToPhysical multiplies by the scale factor, rounding to the nearest pixel.
func (s LogicalSize) ToPhysical(scale float64) PhysicalSize {
	if scale <= 0 {
		scale = 1
	}
	return PhysicalSize{
		Width:  uint32(math.Round(float64(s.Width) * scale)),
		Height: uint32(math.Round(float64(s.Height) * scale)),
	}
}

func (s PhysicalSize) Extent() vk.Extent2D {
	return vk.Extent2D{Width: s.Width, Height: s.Height}
}

func (s PhysicalSize) Empty() bool {
	return s.Width == 0 || s.Height == 0
}

// Window is implemented by the host windowing layer.
//
// DECORATORS:
//
//	VulkanProcAddrProvider
type Window interface {
	PhysicalSize() PhysicalSize
	LogicalSize() LogicalSize
	ScaleFactor() float64
	// CreateVulkanSurface creates a presentable surface for the window.
	// Ownership passes to the caller.
	CreateVulkanSurface(instance vk.Instance) (vk.Surface, error)
	// ExtensionNames lists the instance extensions the window system
	// needs for surface creation.
	ExtensionNames() ([]string, error)
}

// VulkanProcAddrProvider is implemented by windows that can hand out the
// loader's vkGetInstanceProcAddr.
type VulkanProcAddrProvider interface {
	VulkanProcAddr() unsafe.Pointer
}
