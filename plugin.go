package diesel2d

import vk "github.com/vulkan-go/vulkan"

// Plugin adds GPU passes to every frame. Its command buffers are submitted
// after the composite command buffer in the same queue submission, in
// registration order.
//
// A plugin owns the GPU resources it creates and must release all of them
// in SwapchainDestroyed, which always runs before the device is destroyed.
type Plugin interface {
	// SwapchainCreated is called after each swapchain build.
	SwapchainCreated(dev *Device, sc *Swapchain) error
	// SwapchainDestroyed is called before each swapchain teardown, with the
	// device idle.
	SwapchainDestroyed()
	// Render returns the command buffers to submit for swapchain image
	// imageIndex. Buffers must either be safe to re-record every frame or
	// be kept per image.
	Render(window Window, dev *Device, imageIndex uint32) ([]vk.CommandBuffer, error)
}
