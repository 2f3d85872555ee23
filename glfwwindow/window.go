// Package glfwwindow adapts a GLFW window to the diesel2d Window interface.
package glfwwindow

import (
	"runtime"
	"unsafe"

	"github.com/andewx/diesel2d"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Window wraps a GLFW window created with the NoAPI client hint.
type Window struct {
	win *glfw.Window
}

var (
	_ diesel2d.Window                 = (*Window)(nil)
	_ diesel2d.VulkanProcAddrProvider = (*Window)(nil)
)

func New(win *glfw.Window) *Window {
	return &Window{win: win}
}

// GLFW returns the wrapped window.
func (w *Window) GLFW() *glfw.Window {
	return w.win
}

// PhysicalSize is the framebuffer size in pixels.
func (w *Window) PhysicalSize() diesel2d.PhysicalSize {
	width, height := w.win.GetFramebufferSize()
	return diesel2d.PhysicalSize{Width: clampSize(width), Height: clampSize(height)}
}

// LogicalSize is the window size in screen coordinates. On Windows screen
// coordinates are pixels, so the framebuffer size is scaled down instead.
func (w *Window) LogicalSize() diesel2d.LogicalSize {
	if runtime.GOOS == "windows" {
		return w.PhysicalSize().ToLogical(w.ScaleFactor())
	}
	width, height := w.win.GetSize()
	return diesel2d.LogicalSize{Width: clampSize(width), Height: clampSize(height)}
}

// ScaleFactor is the horizontal content scale.
func (w *Window) ScaleFactor() float64 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

func (w *Window) CreateVulkanSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "glfw create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *Window) ExtensionNames() ([]string, error) {
	names := w.win.GetRequiredInstanceExtensions()
	if len(names) == 0 {
		return nil, errors.New("glfw reports no vulkan instance extensions")
	}
	return names, nil
}

// VulkanProcAddr hands GLFW's loader entry point to the driver.
func (w *Window) VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func clampSize(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
