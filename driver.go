package diesel2d

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Driver is the set of Vulkan entry points the renderer uses. Create calls
// take the regular vk create-info structs and return the new handle with the
// call's result. Query calls return values that are already dereferenced.
//
// NewVulkanDriver returns the implementation backed by the system loader.
type Driver interface {
	EnumerateInstanceLayers() ([]string, vk.Result)
	EnumerateInstanceExtensions() ([]string, vk.Result)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result)
	DestroyInstance(instance vk.Instance)
	CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, vk.Result)
	DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result)
	PhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties
	PhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	QueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties
	EnumerateDeviceExtensions(gpu vk.PhysicalDevice) ([]string, vk.Result)
	SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result)
	SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result)
	SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result)
	SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result)

	CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result)
	DestroyDevice(device vk.Device)
	DeviceQueue(device vk.Device, family, index uint32) vk.Queue
	DeviceWaitIdle(device vk.Device) vk.Result
	QueueWaitIdle(queue vk.Queue) vk.Result
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result)
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result)

	CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)
	CreateFence(device vk.Device, signaled bool) (vk.Fence, vk.Result)
	DestroyFence(device vk.Device, fence vk.Fence)
	WaitForFences(device vk.Device, fences []vk.Fence, timeout uint64) vk.Result
	ResetFences(device vk.Device, fences []vk.Fence) vk.Result

	CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result)
	DestroyBuffer(device vk.Device, buffer vk.Buffer)
	BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements
	CreateImage(device vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result)
	DestroyImage(device vk.Device, image vk.Image)
	ImageMemoryRequirements(device vk.Device, image vk.Image) vk.MemoryRequirements
	AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result)
	FreeMemory(device vk.Device, memory vk.DeviceMemory)
	BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result
	BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result
	MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, vk.Result)
	UnmapMemory(device vk.Device, memory vk.DeviceMemory)
	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result)
	DestroyImageView(device vk.Device, view vk.ImageView)
	CreateSampler(device vk.Device, info *vk.SamplerCreateInfo) (vk.Sampler, vk.Result)
	DestroySampler(device vk.Device, sampler vk.Sampler)

	CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result)
	FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer)
	BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result
	EndCommandBuffer(cmd vk.CommandBuffer) vk.Result
	ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result

	CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, deps vk.DependencyFlags, barriers []vk.ImageMemoryBarrier)
	CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy)
	CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy)
	CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo)
	CmdEndRenderPass(cmd vk.CommandBuffer)
	CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline)
	CmdBindVertexBuffers(cmd vk.CommandBuffer, buffers []vk.Buffer, offsets []vk.DeviceSize)
	CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	CmdBindDescriptorSets(cmd vk.CommandBuffer, layout vk.PipelineLayout, sets []vk.DescriptorSet)
	CmdDrawIndexed(cmd vk.CommandBuffer, indexCount uint32)
	CmdClearAttachments(cmd vk.CommandBuffer, attachments []vk.ClearAttachment, rects []vk.ClearRect)

	CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result)
	DestroyRenderPass(device vk.Device, renderPass vk.RenderPass)
	CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)
	CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)
	CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result)
	DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout)
	CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result)
	DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool)
	AllocateDescriptorSet(device vk.Device, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result)
	UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet)
}
