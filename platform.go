package diesel2d

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// NewVulkanDriver loads the Vulkan entry points and returns a Driver that
// forwards to them. procAddr is the loader's vkGetInstanceProcAddr as
// handed out by the windowing library; nil asks vulkan-go to locate the
// system loader itself.
func NewVulkanDriver(procAddr unsafe.Pointer) (Driver, error) {
	if procAddr != nil {
		vk.SetGetInstanceProcAddr(procAddr)
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, errors.Wrap(ErrInit, err.Error())
	}
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(ErrInit, err.Error())
	}
	return vkDriver{}, nil
}

type vkDriver struct{}

func (vkDriver) EnumerateInstanceLayers() (names []string, ret vk.Result) {
	var count uint32
	if ret = vk.EnumerateInstanceLayerProperties(&count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.LayerProperties, count)
	if ret = vk.EnumerateInstanceLayerProperties(&count, list); isError(ret) {
		return nil, ret
	}
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, vk.Success
}

func (vkDriver) EnumerateInstanceExtensions() (names []string, ret vk.Result) {
	var count uint32
	if ret = vk.EnumerateInstanceExtensionProperties("", &count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	if ret = vk.EnumerateInstanceExtensionProperties("", &count, list); isError(ret) {
		return nil, ret
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, vk.Success
}

func (vkDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	var instance vk.Instance
	ret := vk.CreateInstance(info, nil, &instance)
	if isError(ret) {
		return nil, ret
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, vk.ErrorInitializationFailed
	}
	return instance, ret
}

func (vkDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (vkDriver) CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, vk.Result) {
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(instance, info, nil, &cb)
	return cb, ret
}

func (vkDriver) DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

func (vkDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (vkDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(instance, &count, nil); isError(ret) {
		return nil, ret
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret := vk.EnumeratePhysicalDevices(instance, &count, gpus)
	return gpus[:count], ret
}

func (vkDriver) PhysicalDeviceProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()
	return props
}

func (vkDriver) PhysicalDeviceMemoryProperties(gpu vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
	props.Deref()
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < props.MemoryHeapCount; i++ {
		props.MemoryHeaps[i].Deref()
	}
	return props
}

func (vkDriver) QueueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return props
}

func (vkDriver) EnumerateDeviceExtensions(gpu vk.PhysicalDevice) (names []string, ret vk.Result) {
	var count uint32
	if ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil); isError(ret) {
		return nil, ret
	}
	list := make([]vk.ExtensionProperties, count)
	if ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list); isError(ret) {
		return nil, ret
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, vk.Success
}

func (vkDriver) SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, vk.Result) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported)
	return supported.B(), ret
}

func (vkDriver) SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, ret
}

func (vkDriver) SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	var count uint32
	if ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil); isError(ret) {
		return nil, ret
	}
	formats := make([]vk.SurfaceFormat, count)
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	for i := range formats {
		formats[i].Deref()
	}
	return formats, ret
}

func (vkDriver) SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, vk.Result) {
	var count uint32
	if ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil); isError(ret) {
		return nil, ret
	}
	modes := make([]vk.PresentMode, count)
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	return modes, ret
}

func (vkDriver) CreateDevice(gpu vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	var device vk.Device
	ret := vk.CreateDevice(gpu, info, nil, &device)
	return device, ret
}

func (vkDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (vkDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (vkDriver) DeviceWaitIdle(device vk.Device) vk.Result {
	return vk.DeviceWaitIdle(device)
}

func (vkDriver) QueueWaitIdle(queue vk.Queue) vk.Result {
	return vk.QueueWaitIdle(queue)
}

func (vkDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	return vk.QueueSubmit(queue, uint32(len(submits)), submits, fence)
}

func (vkDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (vkDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(device, info, nil, &swapchain)
	return swapchain, ret
}

func (vkDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (vkDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, vk.Result) {
	var count uint32
	if ret := vk.GetSwapchainImages(device, swapchain, &count, nil); isError(ret) {
		return nil, ret
	}
	images := make([]vk.Image, count)
	ret := vk.GetSwapchainImages(device, swapchain, &count, images)
	return images, ret
}

func (vkDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(device, swapchain, timeout, semaphore, fence, &index)
	return index, ret
}

func (vkDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, vk.Result) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	return semaphore, ret
}

func (vkDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (vkDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, vk.Result) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	return fence, ret
}

func (vkDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (vkDriver) WaitForFences(device vk.Device, fences []vk.Fence, timeout uint64) vk.Result {
	return vk.WaitForFences(device, uint32(len(fences)), fences, vk.True, timeout)
}

func (vkDriver) ResetFences(device vk.Device, fences []vk.Fence) vk.Result {
	return vk.ResetFences(device, uint32(len(fences)), fences)
}

func (vkDriver) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(device, info, nil, &buffer)
	return buffer, ret
}

func (vkDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(device, buffer, nil)
}

func (vkDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) vk.MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &reqs)
	reqs.Deref()
	return reqs
}

func (vkDriver) CreateImage(device vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result) {
	var image vk.Image
	ret := vk.CreateImage(device, info, nil, &image)
	return image, ret
}

func (vkDriver) DestroyImage(device vk.Device, image vk.Image) {
	vk.DestroyImage(device, image, nil)
}

func (vkDriver) ImageMemoryRequirements(device vk.Device, image vk.Image) vk.MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &reqs)
	reqs.Deref()
	return reqs
}

func (vkDriver) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, info, nil, &memory)
	return memory, ret
}

func (vkDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(device, memory, nil)
}

func (vkDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result {
	return vk.BindBufferMemory(device, buffer, memory, offset)
}

func (vkDriver) BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) vk.Result {
	return vk.BindImageMemory(device, image, memory, offset)
}

func (vkDriver) MapMemory(device vk.Device, memory vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	var data unsafe.Pointer
	ret := vk.MapMemory(device, memory, offset, size, 0, &data)
	return data, ret
}

func (vkDriver) UnmapMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.UnmapMemory(device, memory)
}

func (vkDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, info, nil, &view)
	return view, ret
}

func (vkDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (vkDriver) CreateSampler(device vk.Device, info *vk.SamplerCreateInfo) (vk.Sampler, vk.Result) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(device, info, nil, &sampler)
	return sampler, ret
}

func (vkDriver) DestroySampler(device vk.Device, sampler vk.Sampler) {
	vk.DestroySampler(device, sampler, nil)
}

func (vkDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, info, nil, &pool)
	return pool, ret
}

func (vkDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (vkDriver) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	ret := vk.AllocateCommandBuffers(device, info, buffers)
	return buffers, ret
}

func (vkDriver) FreeCommandBuffers(device vk.Device, pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, uint32(len(buffers)), buffers)
}

func (vkDriver) BeginCommandBuffer(cmd vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	return vk.BeginCommandBuffer(cmd, info)
}

func (vkDriver) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(cmd)
}

func (vkDriver) ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.ResetCommandBuffer(cmd, 0)
}

func (vkDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, deps vk.DependencyFlags, barriers []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(cmd, src, dst, deps, 0, nil, 0, nil, uint32(len(barriers)), barriers)
}

func (vkDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	vk.CmdCopyBuffer(cmd, src, dst, uint32(len(regions)), regions)
}

func (vkDriver) CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	vk.CmdCopyBufferToImage(cmd, src, dst, layout, uint32(len(regions)), regions)
}

func (vkDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cmd, info, vk.SubpassContentsInline)
}

func (vkDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (vkDriver) CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
}

func (vkDriver) CmdBindVertexBuffers(cmd vk.CommandBuffer, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(cmd, 0, uint32(len(buffers)), buffers, offsets)
}

func (vkDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(cmd, buffer, offset, indexType)
}

func (vkDriver) CmdBindDescriptorSets(cmd vk.CommandBuffer, layout vk.PipelineLayout, sets []vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layout, 0, uint32(len(sets)), sets, 0, nil)
}

func (vkDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount uint32) {
	vk.CmdDrawIndexed(cmd, indexCount, 1, 0, 0, 0)
}

func (vkDriver) CmdClearAttachments(cmd vk.CommandBuffer, attachments []vk.ClearAttachment, rects []vk.ClearRect) {
	vk.CmdClearAttachments(cmd, uint32(len(attachments)), attachments, uint32(len(rects)), rects)
}

func (vkDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	var renderPass vk.RenderPass
	ret := vk.CreateRenderPass(device, info, nil, &renderPass)
	return renderPass, ret
}

func (vkDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (vkDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(device, info, nil, &framebuffer)
	return framebuffer, ret
}

func (vkDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (vkDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, info, nil, &module)
	return module, ret
}

func (vkDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (vkDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device, info, nil, &layout)
	return layout, ret
}

func (vkDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (vkDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(device, nil, 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	return pipelines[0], ret
}

func (vkDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (vkDriver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(device, info, nil, &layout)
	return layout, ret
}

func (vkDriver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(device, layout, nil)
}

func (vkDriver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(device, info, nil, &pool)
	return pool, ret
}

func (vkDriver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	vk.DestroyDescriptorPool(device, pool, nil)
}

func (vkDriver) AllocateDescriptorSet(device vk.Device, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	return set, ret
}

func (vkDriver) UpdateDescriptorSets(device vk.Device, writes []vk.WriteDescriptorSet) {
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
}
