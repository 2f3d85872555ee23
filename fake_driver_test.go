package diesel2d

import (
	"fmt"
	"sort"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// fakeDriver is an in-memory Driver. Handles are unique Go pointers, every
// create and destroy is counted, and the GPU finishes submitted work
// instantly, so a fence passed to QueueSubmit is signaled on return.
type fakeDriver struct {
	instanceExtensions []string
	instanceLayers     []string
	gpus               []fakeGPU

	surfaceCaps    vk.SurfaceCapabilities
	surfaceCapsRet vk.Result
	surfaceFormats []vk.SurfaceFormat
	presentModes   []vk.PresentMode
	imageCount     int

	// acquireResults and presentResults are consumed one per call; an
	// empty queue means vk.Success.
	acquireResults []vk.Result
	presentResults []vk.Result
	nextImage      uint32

	live      map[unsafe.Pointer]string
	created   map[string]int
	destroyed map[string]int
	problems  []string

	fences       map[vk.Fence]bool
	sizes        map[unsafe.Pointer]vk.DeviceSize
	memory       map[vk.DeviceMemory][]byte
	boundSets    map[vk.CommandBuffer][]vk.DescriptorSet
	swapchainOld []vk.Swapchain
	renderPasses []vk.RenderPassCreateInfo
	setLayouts   [][]vk.DescriptorSetLayoutBinding
	setWrites    []vk.WriteDescriptorSet
	submits      []fakeSubmit
	presents     []fakePresent
	acquires     int
	waitIdles    int
	copies       int
}

type fakeGPU struct {
	handle     vk.PhysicalDevice
	name       string
	deviceType vk.PhysicalDeviceType
	extensions []string
	families   []vk.QueueFamilyProperties
	present    []bool
}

type fakeSubmit struct {
	queue            vk.Queue
	waitSemaphores   []vk.Semaphore
	commandBuffers   []vk.CommandBuffer
	signalSemaphores []vk.Semaphore
	fence            vk.Fence
}

type fakePresent struct {
	waitSemaphores []vk.Semaphore
	swapchain      vk.Swapchain
	imageIndex     uint32
}

var _ Driver = (*fakeDriver)(nil)

// newFakeDriver reports one discrete GPU with a single graphics+present
// family and a surface that follows the requested extent.
func newFakeDriver() *fakeDriver {
	f := &fakeDriver{
		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension},
		instanceLayers:     []string{validationLayerName},
		surfaceCaps: vk.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 16384, Height: 16384},
		},
		surfaceFormats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		presentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		imageCount:   3,
		live:         make(map[unsafe.Pointer]string),
		created:      make(map[string]int),
		destroyed:    make(map[string]int),
		fences:       make(map[vk.Fence]bool),
		sizes:        make(map[unsafe.Pointer]vk.DeviceSize),
		memory:       make(map[vk.DeviceMemory][]byte),
		boundSets:    make(map[vk.CommandBuffer][]vk.DescriptorSet),
	}
	f.gpus = []fakeGPU{f.newGPU("fake discrete", vk.PhysicalDeviceTypeDiscreteGpu)}
	return f
}

func (f *fakeDriver) newGPU(name string, t vk.PhysicalDeviceType) fakeGPU {
	return fakeGPU{
		handle:     vk.PhysicalDevice(f.alloc("physical device")),
		name:       name,
		deviceType: t,
		extensions: []string{swapchainExtension},
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit),
			QueueCount: 1,
		}},
		present: []bool{true},
	}
}

func (f *fakeDriver) alloc(kind string) unsafe.Pointer {
	p := unsafe.Pointer(new(uint64))
	f.live[p] = kind
	f.created[kind]++
	return p
}

func (f *fakeDriver) free(kind string, p unsafe.Pointer) {
	if p == nil {
		return
	}
	got, ok := f.live[p]
	switch {
	case !ok:
		f.problems = append(f.problems, fmt.Sprintf("%s %p destroyed twice or never created", kind, p))
		return
	case got != kind:
		f.problems = append(f.problems, fmt.Sprintf("%s %p destroyed as %s", got, p, kind))
	}
	delete(f.live, p)
	f.destroyed[kind]++
}

// liveKinds lists the kinds of handles still alive, ignoring physical
// devices, queues and swapchain images, which are never destroyed.
func (f *fakeDriver) liveKinds() []string {
	var kinds []string
	for _, kind := range f.live {
		if kind == "physical device" || kind == "queue" || kind == "swapchain image" {
			continue
		}
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (f *fakeDriver) gpu(h vk.PhysicalDevice) *fakeGPU {
	for i := range f.gpus {
		if f.gpus[i].handle == h {
			return &f.gpus[i]
		}
	}
	return nil
}

func (f *fakeDriver) EnumerateInstanceLayers() ([]string, vk.Result) {
	return f.instanceLayers, vk.Success
}

func (f *fakeDriver) EnumerateInstanceExtensions() ([]string, vk.Result) {
	return f.instanceExtensions, vk.Success
}

func (f *fakeDriver) CreateInstance(*vk.InstanceCreateInfo) (vk.Instance, vk.Result) {
	return vk.Instance(f.alloc("instance")), vk.Success
}

func (f *fakeDriver) DestroyInstance(instance vk.Instance) {
	f.free("instance", unsafe.Pointer(instance))
}

func (f *fakeDriver) CreateDebugReportCallback(vk.Instance, *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, vk.Result) {
	return vk.DebugReportCallback(f.alloc("debug callback")), vk.Success
}

func (f *fakeDriver) DestroyDebugReportCallback(_ vk.Instance, cb vk.DebugReportCallback) {
	f.free("debug callback", unsafe.Pointer(cb))
}

func (f *fakeDriver) DestroySurface(_ vk.Instance, surface vk.Surface) {
	f.free("surface", unsafe.Pointer(surface))
}

func (f *fakeDriver) EnumeratePhysicalDevices(vk.Instance) ([]vk.PhysicalDevice, vk.Result) {
	handles := make([]vk.PhysicalDevice, len(f.gpus))
	for i, g := range f.gpus {
		handles[i] = g.handle
	}
	return handles, vk.Success
}

func (f *fakeDriver) PhysicalDeviceProperties(h vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	if g := f.gpu(h); g != nil {
		props.DeviceType = g.deviceType
		copy(props.DeviceName[:], g.name)
	}
	return props
}

// PhysicalDeviceMemoryProperties reports a device-local type and a
// host-visible coherent type, in that order.
func (f *fakeDriver) PhysicalDeviceMemoryProperties(vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 2
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	props.MemoryHeapCount = 1
	return props
}

func (f *fakeDriver) QueueFamilyProperties(h vk.PhysicalDevice) []vk.QueueFamilyProperties {
	if g := f.gpu(h); g != nil {
		return g.families
	}
	return nil
}

func (f *fakeDriver) EnumerateDeviceExtensions(h vk.PhysicalDevice) ([]string, vk.Result) {
	if g := f.gpu(h); g != nil {
		return g.extensions, vk.Success
	}
	return nil, vk.Success
}

func (f *fakeDriver) SurfaceSupport(h vk.PhysicalDevice, family uint32, _ vk.Surface) (bool, vk.Result) {
	g := f.gpu(h)
	if g == nil || int(family) >= len(g.present) {
		return false, vk.Success
	}
	return g.present[family], vk.Success
}

func (f *fakeDriver) SurfaceCapabilities(vk.PhysicalDevice, vk.Surface) (vk.SurfaceCapabilities, vk.Result) {
	return f.surfaceCaps, f.surfaceCapsRet
}

func (f *fakeDriver) SurfaceFormats(vk.PhysicalDevice, vk.Surface) ([]vk.SurfaceFormat, vk.Result) {
	return f.surfaceFormats, vk.Success
}

func (f *fakeDriver) SurfacePresentModes(vk.PhysicalDevice, vk.Surface) ([]vk.PresentMode, vk.Result) {
	return f.presentModes, vk.Success
}

func (f *fakeDriver) CreateDevice(vk.PhysicalDevice, *vk.DeviceCreateInfo) (vk.Device, vk.Result) {
	return vk.Device(f.alloc("device")), vk.Success
}

func (f *fakeDriver) DestroyDevice(device vk.Device) {
	f.free("device", unsafe.Pointer(device))
}

func (f *fakeDriver) DeviceQueue(vk.Device, uint32, uint32) vk.Queue {
	return vk.Queue(f.alloc("queue"))
}

func (f *fakeDriver) DeviceWaitIdle(vk.Device) vk.Result {
	f.waitIdles++
	return vk.Success
}

func (f *fakeDriver) QueueWaitIdle(vk.Queue) vk.Result {
	return vk.Success
}

func (f *fakeDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	for _, s := range submits {
		f.submits = append(f.submits, fakeSubmit{
			queue:            queue,
			waitSemaphores:   append([]vk.Semaphore(nil), s.PWaitSemaphores...),
			commandBuffers:   append([]vk.CommandBuffer(nil), s.PCommandBuffers...),
			signalSemaphores: append([]vk.Semaphore(nil), s.PSignalSemaphores...),
			fence:            fence,
		})
	}
	if fence != vk.NullFence {
		if f.fences[fence] {
			f.problems = append(f.problems, "submit with a signaled fence")
		}
		f.fences[fence] = true
	}
	return vk.Success
}

func (f *fakeDriver) QueuePresent(_ vk.Queue, info *vk.PresentInfo) vk.Result {
	f.presents = append(f.presents, fakePresent{
		waitSemaphores: append([]vk.Semaphore(nil), info.PWaitSemaphores...),
		swapchain:      info.PSwapchains[0],
		imageIndex:     info.PImageIndices[0],
	})
	if len(f.presentResults) > 0 {
		ret := f.presentResults[0]
		f.presentResults = f.presentResults[1:]
		return ret
	}
	return vk.Success
}

func (f *fakeDriver) CreateSwapchain(_ vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, vk.Result) {
	f.swapchainOld = append(f.swapchainOld, info.OldSwapchain)
	return vk.Swapchain(f.alloc("swapchain")), vk.Success
}

func (f *fakeDriver) DestroySwapchain(_ vk.Device, swapchain vk.Swapchain) {
	f.free("swapchain", unsafe.Pointer(swapchain))
}

func (f *fakeDriver) SwapchainImages(vk.Device, vk.Swapchain) ([]vk.Image, vk.Result) {
	images := make([]vk.Image, f.imageCount)
	for i := range images {
		images[i] = vk.Image(f.alloc("swapchain image"))
	}
	return images, vk.Success
}

func (f *fakeDriver) AcquireNextImage(vk.Device, vk.Swapchain, uint64, vk.Semaphore, vk.Fence) (uint32, vk.Result) {
	f.acquires++
	if len(f.acquireResults) > 0 {
		ret := f.acquireResults[0]
		f.acquireResults = f.acquireResults[1:]
		if ret == vk.ErrorOutOfDate {
			return 0, ret
		}
		i := f.nextImage
		f.nextImage = (f.nextImage + 1) % uint32(f.imageCount)
		return i, ret
	}
	i := f.nextImage
	f.nextImage = (f.nextImage + 1) % uint32(f.imageCount)
	return i, vk.Success
}

func (f *fakeDriver) CreateSemaphore(vk.Device) (vk.Semaphore, vk.Result) {
	return vk.Semaphore(f.alloc("semaphore")), vk.Success
}

func (f *fakeDriver) DestroySemaphore(_ vk.Device, s vk.Semaphore) {
	f.free("semaphore", unsafe.Pointer(s))
}

func (f *fakeDriver) CreateFence(_ vk.Device, signaled bool) (vk.Fence, vk.Result) {
	fence := vk.Fence(f.alloc("fence"))
	f.fences[fence] = signaled
	return fence, vk.Success
}

func (f *fakeDriver) DestroyFence(_ vk.Device, fence vk.Fence) {
	delete(f.fences, fence)
	f.free("fence", unsafe.Pointer(fence))
}

// WaitForFences returns vk.Timeout for an unsignaled fence, since nothing
// would ever signal it.
func (f *fakeDriver) WaitForFences(_ vk.Device, fences []vk.Fence, _ uint64) vk.Result {
	for _, fence := range fences {
		if !f.fences[fence] {
			f.problems = append(f.problems, "wait on an unsignaled fence")
			return vk.Timeout
		}
	}
	return vk.Success
}

func (f *fakeDriver) ResetFences(_ vk.Device, fences []vk.Fence) vk.Result {
	for _, fence := range fences {
		f.fences[fence] = false
	}
	return vk.Success
}

const fakeAlignment = 256

func alignUp(size vk.DeviceSize) vk.DeviceSize {
	return (size + fakeAlignment - 1) / fakeAlignment * fakeAlignment
}

func (f *fakeDriver) CreateBuffer(_ vk.Device, info *vk.BufferCreateInfo) (vk.Buffer, vk.Result) {
	p := f.alloc("buffer")
	f.sizes[p] = alignUp(info.Size)
	return vk.Buffer(p), vk.Success
}

func (f *fakeDriver) DestroyBuffer(_ vk.Device, b vk.Buffer) {
	delete(f.sizes, unsafe.Pointer(b))
	f.free("buffer", unsafe.Pointer(b))
}

func (f *fakeDriver) BufferMemoryRequirements(_ vk.Device, b vk.Buffer) vk.MemoryRequirements {
	return vk.MemoryRequirements{Size: f.sizes[unsafe.Pointer(b)], Alignment: fakeAlignment, MemoryTypeBits: 0b11}
}

func (f *fakeDriver) CreateImage(_ vk.Device, info *vk.ImageCreateInfo) (vk.Image, vk.Result) {
	p := f.alloc("image")
	f.sizes[p] = alignUp(vk.DeviceSize(info.Extent.Width) * vk.DeviceSize(info.Extent.Height) * 4)
	return vk.Image(p), vk.Success
}

func (f *fakeDriver) DestroyImage(_ vk.Device, image vk.Image) {
	delete(f.sizes, unsafe.Pointer(image))
	f.free("image", unsafe.Pointer(image))
}

func (f *fakeDriver) ImageMemoryRequirements(_ vk.Device, image vk.Image) vk.MemoryRequirements {
	return vk.MemoryRequirements{Size: f.sizes[unsafe.Pointer(image)], Alignment: fakeAlignment, MemoryTypeBits: 0b11}
}

// AllocateMemory backs host-visible allocations with a Go slice. Device
// local memory has no backing and cannot be mapped.
func (f *fakeDriver) AllocateMemory(_ vk.Device, info *vk.MemoryAllocateInfo) (vk.DeviceMemory, vk.Result) {
	mem := vk.DeviceMemory(f.alloc("memory"))
	if info.MemoryTypeIndex == 1 {
		f.memory[mem] = make([]byte, info.AllocationSize)
	} else {
		f.memory[mem] = nil
	}
	return mem, vk.Success
}

func (f *fakeDriver) FreeMemory(_ vk.Device, mem vk.DeviceMemory) {
	delete(f.memory, mem)
	f.free("memory", unsafe.Pointer(mem))
}

func (f *fakeDriver) BindBufferMemory(vk.Device, vk.Buffer, vk.DeviceMemory, vk.DeviceSize) vk.Result {
	return vk.Success
}

func (f *fakeDriver) BindImageMemory(vk.Device, vk.Image, vk.DeviceMemory, vk.DeviceSize) vk.Result {
	return vk.Success
}

func (f *fakeDriver) MapMemory(_ vk.Device, mem vk.DeviceMemory, offset, _ vk.DeviceSize) (unsafe.Pointer, vk.Result) {
	data, ok := f.memory[mem]
	if !ok || len(data) == 0 {
		return nil, vk.ErrorMemoryMapFailed
	}
	return unsafe.Pointer(&data[offset]), vk.Success
}

func (f *fakeDriver) UnmapMemory(vk.Device, vk.DeviceMemory) {}

func (f *fakeDriver) CreateImageView(vk.Device, *vk.ImageViewCreateInfo) (vk.ImageView, vk.Result) {
	return vk.ImageView(f.alloc("image view")), vk.Success
}

func (f *fakeDriver) DestroyImageView(_ vk.Device, view vk.ImageView) {
	f.free("image view", unsafe.Pointer(view))
}

func (f *fakeDriver) CreateSampler(vk.Device, *vk.SamplerCreateInfo) (vk.Sampler, vk.Result) {
	return vk.Sampler(f.alloc("sampler")), vk.Success
}

func (f *fakeDriver) DestroySampler(_ vk.Device, s vk.Sampler) {
	f.free("sampler", unsafe.Pointer(s))
}

func (f *fakeDriver) CreateCommandPool(vk.Device, *vk.CommandPoolCreateInfo) (vk.CommandPool, vk.Result) {
	return vk.CommandPool(f.alloc("command pool")), vk.Success
}

func (f *fakeDriver) DestroyCommandPool(_ vk.Device, pool vk.CommandPool) {
	f.free("command pool", unsafe.Pointer(pool))
}

func (f *fakeDriver) AllocateCommandBuffers(_ vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, vk.Result) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		buffers[i] = vk.CommandBuffer(f.alloc("command buffer"))
	}
	return buffers, vk.Success
}

func (f *fakeDriver) FreeCommandBuffers(_ vk.Device, _ vk.CommandPool, buffers []vk.CommandBuffer) {
	for _, cmd := range buffers {
		delete(f.boundSets, cmd)
		f.free("command buffer", unsafe.Pointer(cmd))
	}
}

func (f *fakeDriver) BeginCommandBuffer(vk.CommandBuffer, *vk.CommandBufferBeginInfo) vk.Result {
	return vk.Success
}

func (f *fakeDriver) EndCommandBuffer(vk.CommandBuffer) vk.Result {
	return vk.Success
}

func (f *fakeDriver) ResetCommandBuffer(vk.CommandBuffer) vk.Result {
	return vk.Success
}

func (f *fakeDriver) CmdPipelineBarrier(vk.CommandBuffer, vk.PipelineStageFlags, vk.PipelineStageFlags, vk.DependencyFlags, []vk.ImageMemoryBarrier) {
}

func (f *fakeDriver) CmdCopyBuffer(vk.CommandBuffer, vk.Buffer, vk.Buffer, []vk.BufferCopy) {
	f.copies++
}

func (f *fakeDriver) CmdCopyBufferToImage(vk.CommandBuffer, vk.Buffer, vk.Image, vk.ImageLayout, []vk.BufferImageCopy) {
	f.copies++
}

func (f *fakeDriver) CmdBeginRenderPass(vk.CommandBuffer, *vk.RenderPassBeginInfo) {}

func (f *fakeDriver) CmdEndRenderPass(vk.CommandBuffer) {}

func (f *fakeDriver) CmdBindPipeline(vk.CommandBuffer, vk.Pipeline) {}

func (f *fakeDriver) CmdBindVertexBuffers(vk.CommandBuffer, []vk.Buffer, []vk.DeviceSize) {}

func (f *fakeDriver) CmdBindIndexBuffer(vk.CommandBuffer, vk.Buffer, vk.DeviceSize, vk.IndexType) {}

func (f *fakeDriver) CmdBindDescriptorSets(cmd vk.CommandBuffer, _ vk.PipelineLayout, sets []vk.DescriptorSet) {
	f.boundSets[cmd] = append([]vk.DescriptorSet(nil), sets...)
}

func (f *fakeDriver) CmdDrawIndexed(vk.CommandBuffer, uint32) {}

func (f *fakeDriver) CmdClearAttachments(vk.CommandBuffer, []vk.ClearAttachment, []vk.ClearRect) {}

func (f *fakeDriver) CreateRenderPass(_ vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, vk.Result) {
	f.renderPasses = append(f.renderPasses, *info)
	return vk.RenderPass(f.alloc("render pass")), vk.Success
}

func (f *fakeDriver) DestroyRenderPass(_ vk.Device, rp vk.RenderPass) {
	f.free("render pass", unsafe.Pointer(rp))
}

func (f *fakeDriver) CreateFramebuffer(vk.Device, *vk.FramebufferCreateInfo) (vk.Framebuffer, vk.Result) {
	return vk.Framebuffer(f.alloc("framebuffer")), vk.Success
}

func (f *fakeDriver) DestroyFramebuffer(_ vk.Device, fb vk.Framebuffer) {
	f.free("framebuffer", unsafe.Pointer(fb))
}

func (f *fakeDriver) CreateShaderModule(vk.Device, *vk.ShaderModuleCreateInfo) (vk.ShaderModule, vk.Result) {
	return vk.ShaderModule(f.alloc("shader module")), vk.Success
}

func (f *fakeDriver) DestroyShaderModule(_ vk.Device, m vk.ShaderModule) {
	f.free("shader module", unsafe.Pointer(m))
}

func (f *fakeDriver) CreatePipelineLayout(vk.Device, *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	return vk.PipelineLayout(f.alloc("pipeline layout")), vk.Success
}

func (f *fakeDriver) DestroyPipelineLayout(_ vk.Device, l vk.PipelineLayout) {
	f.free("pipeline layout", unsafe.Pointer(l))
}

func (f *fakeDriver) CreateGraphicsPipeline(vk.Device, *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, vk.Result) {
	return vk.Pipeline(f.alloc("pipeline")), vk.Success
}

func (f *fakeDriver) DestroyPipeline(_ vk.Device, p vk.Pipeline) {
	f.free("pipeline", unsafe.Pointer(p))
}

func (f *fakeDriver) CreateDescriptorSetLayout(_ vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	f.setLayouts = append(f.setLayouts, append([]vk.DescriptorSetLayoutBinding(nil), info.PBindings...))
	return vk.DescriptorSetLayout(f.alloc("descriptor set layout")), vk.Success
}

func (f *fakeDriver) DestroyDescriptorSetLayout(_ vk.Device, l vk.DescriptorSetLayout) {
	f.free("descriptor set layout", unsafe.Pointer(l))
}

func (f *fakeDriver) CreateDescriptorPool(vk.Device, *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	return vk.DescriptorPool(f.alloc("descriptor pool")), vk.Success
}

// DestroyDescriptorPool also frees the sets allocated from it.
func (f *fakeDriver) DestroyDescriptorPool(_ vk.Device, pool vk.DescriptorPool) {
	for p, kind := range f.live {
		if kind == "descriptor set" {
			delete(f.live, p)
			f.destroyed[kind]++
		}
	}
	f.free("descriptor pool", unsafe.Pointer(pool))
}

func (f *fakeDriver) AllocateDescriptorSet(vk.Device, vk.DescriptorPool, vk.DescriptorSetLayout) (vk.DescriptorSet, vk.Result) {
	return vk.DescriptorSet(f.alloc("descriptor set")), vk.Success
}

func (f *fakeDriver) UpdateDescriptorSets(_ vk.Device, writes []vk.WriteDescriptorSet) {
	f.setWrites = append(f.setWrites, writes...)
}

// fakeWindow is a Window of fixed size whose surface comes from the
// fake driver.
type fakeWindow struct {
	driver   *fakeDriver
	physical PhysicalSize
	scale    float64
	exts     []string
}

var _ Window = (*fakeWindow)(nil)

func newFakeWindow(driver *fakeDriver, width, height uint32) *fakeWindow {
	return &fakeWindow{
		driver:   driver,
		physical: PhysicalSize{Width: width, Height: height},
		scale:    1,
		exts:     []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
	}
}

func (w *fakeWindow) PhysicalSize() PhysicalSize {
	return w.physical
}

func (w *fakeWindow) LogicalSize() LogicalSize {
	return w.physical.ToLogical(w.scale)
}

func (w *fakeWindow) ScaleFactor() float64 {
	return w.scale
}

func (w *fakeWindow) CreateVulkanSurface(vk.Instance) (vk.Surface, error) {
	return vk.Surface(w.driver.alloc("surface")), nil
}

func (w *fakeWindow) ExtensionNames() ([]string, error) {
	return w.exts, nil
}
