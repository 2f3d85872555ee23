package diesel2d

import (
	"unsafe"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DrawFunc draws one frame. The canvas is only valid during the call.
type DrawFunc func(canvas *gg.Context, coords *CoordinateSystemHelper) error

// Renderer presents a 2D canvas in a window through a Vulkan swapchain.
// It is not safe for concurrent use: Draw and Destroy must be called from
// one goroutine.
type Renderer struct {
	cfg    rendererConfig
	window Window

	instance   *Instance
	device     *Device
	ctx2d      Context2D
	swapchain  *Swapchain
	surfaces   *SurfacePool
	compositor *Compositor
	shaderCode []uint32

	// pluginsCreated counts the leading plugins whose SwapchainCreated
	// succeeded for the current swapchain.
	pluginsCreated int

	previousExtent vk.Extent2D
	syncFrameIndex int
	needsRebuild   bool
}

// NewRenderer creates the instance, device, 2D context and swapchain for
// window.
func NewRenderer(window Window, opts ...Option) (_ *Renderer, err error) {
	r := &Renderer{
		cfg:    defaultRendererConfig(),
		window: window,
	}
	for _, opt := range opts {
		opt(&r.cfg)
	}
	defer func() {
		if err != nil {
			r.Destroy()
		}
	}()

	driver := r.cfg.driver
	if driver == nil {
		var procAddr unsafe.Pointer
		if p, ok := window.(VulkanProcAddrProvider); ok {
			procAddr = p.VulkanProcAddr()
		}
		if driver, err = NewVulkanDriver(procAddr); err != nil {
			return nil, err
		}
	}

	extensions, err := window.ExtensionNames()
	if err != nil {
		return nil, errors.Wrap(ErrExtensionMissing, err.Error())
	}
	if r.instance, err = NewInstance(driver, r.cfg.app, r.cfg.validation, extensions); err != nil {
		return nil, err
	}
	if r.device, err = NewDevice(r.instance, window, r.cfg.deviceTypes); err != nil {
		return nil, err
	}
	if r.shaderCode, err = r.cfg.shaderCode(); err != nil {
		return nil, err
	}
	if r.ctx2d, err = r.cfg.context2D(r.device); err != nil {
		return nil, errors.Wrap(err, "create 2D context")
	}

	extent := window.PhysicalSize().Extent()
	if r.swapchain, err = NewSwapchain(r.device, extent, vk.NullSwapchain, r.cfg.presentModes); err != nil {
		return nil, err
	}
	if err = r.createSwapchainDependents(); err != nil {
		return nil, err
	}
	r.previousExtent = extent

	Logger().Info("renderer created",
		"device", r.device.Name(),
		"images", r.swapchain.ImageCount(),
		"plugins", len(r.cfg.plugins),
		"coordinates", r.cfg.coordinates.Kind.String(),
	)
	return r, nil
}

// createSwapchainDependents builds the surface pool and the compositor for
// the current swapchain and notifies the plugins.
func (r *Renderer) createSwapchainDependents() error {
	var err error
	if r.surfaces, err = NewSurfacePool(r.ctx2d, r.swapchain.Extent(), r.swapchain.ImageCount()); err != nil {
		return err
	}
	if r.compositor, err = NewCompositor(r.device, r.swapchain, r.surfaces, r.shaderCode); err != nil {
		return err
	}
	for _, p := range r.cfg.plugins {
		if err := p.SwapchainCreated(r.device, r.swapchain); err != nil {
			return errors.Wrap(err, "plugin swapchain created")
		}
		r.pluginsCreated++
	}
	return nil
}

// destroySwapchainDependents notifies the plugins and releases the
// compositor and surface pool. The device must be idle.
func (r *Renderer) destroySwapchainDependents() {
	for _, p := range r.cfg.plugins[:r.pluginsCreated] {
		p.SwapchainDestroyed()
	}
	r.pluginsCreated = 0
	if r.compositor != nil {
		r.compositor.Destroy()
		r.compositor = nil
	}
	if r.surfaces != nil {
		r.surfaces.Destroy()
		r.surfaces = nil
	}
}

// rebuild replaces the swapchain and everything sized by it. The old
// swapchain is handed to the driver and destroyed once the new one exists.
// A failed rebuild leaves needsRebuild set so the next Draw retries it.
func (r *Renderer) rebuild(extent vk.Extent2D) error {
	r.needsRebuild = true
	if err := r.device.WaitIdle(); err != nil {
		return err
	}
	r.destroySwapchainDependents()

	old := r.swapchain
	sc, err := NewSwapchain(r.device, extent, old.Handle(), r.cfg.presentModes)
	if err != nil {
		return err
	}
	old.Destroy()
	r.swapchain = sc
	if err := r.createSwapchainDependents(); err != nil {
		return err
	}
	r.previousExtent = extent
	r.needsRebuild = false
	Logger().Debug("swapchain rebuilt",
		"width", extent.Width,
		"height", extent.Height,
		"images", sc.ImageCount(),
	)
	return nil
}

func sameExtent(a, b vk.Extent2D) bool {
	return a.Width == b.Width && a.Height == b.Height
}

// Draw renders and presents one frame. A minimized window skips the frame.
// Stale swapchains are rebuilt here and never reported; device loss, out
// of memory, surface loss and errors from fn or plugins are returned.
func (r *Renderer) Draw(fn DrawFunc) error {
	size := r.window.PhysicalSize()
	if size.Empty() {
		return nil
	}
	extent := size.Extent()
	if !sameExtent(extent, r.previousExtent) {
		r.needsRebuild = true
	}
	if r.needsRebuild {
		if err := r.rebuild(extent); err != nil {
			return err
		}
	}
	if r.compositor == nil || r.surfaces == nil {
		return errors.New("renderer has no swapchain resources")
	}

	driver, device := r.device.Driver(), r.device.Handle()
	k := r.syncFrameIndex
	sync := r.swapchain.Sync(k)
	if err := r.swapchain.sync.wait(k); err != nil {
		return err
	}

	imageIndex, ret := driver.AcquireNextImage(device, r.swapchain.Handle(), vk.MaxUint64, sync.ImageAvailable, vk.NullFence)
	switch ret {
	case vk.Success:
	case vk.Suboptimal:
		Logger().Warn("swapchain suboptimal on acquire")
		r.needsRebuild = true
	case vk.ErrorOutOfDate:
		Logger().Warn("swapchain out of date on acquire")
		return r.rebuild(extent)
	default:
		return wrapResult(ret, "acquire next image")
	}

	commandBuffers, err := r.drawFrame(fn, int(imageIndex), size)
	if err != nil {
		r.abandonFrame(sync)
		return err
	}

	if err := r.swapchain.sync.reset(k); err != nil {
		return err
	}
	ret = driver.QueueSubmit(r.device.GraphicsQueue(), []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{sync.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   uint32(len(commandBuffers)),
		PCommandBuffers:      commandBuffers,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sync.RenderFinished},
	}}, sync.InFlight)
	if err := wrapResult(ret, "queue submit"); err != nil {
		return err
	}

	ret = driver.QueuePresent(r.device.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain.Handle()},
		PImageIndices:      []uint32{imageIndex},
	})
	switch ret {
	case vk.Success:
	case vk.Suboptimal, vk.ErrorOutOfDate:
		Logger().Warn("swapchain stale on present", "result", int(ret))
		r.needsRebuild = true
	default:
		return wrapResult(ret, "queue present")
	}

	r.syncFrameIndex = (k + 1) % MaxFramesInFlight
	return nil
}

// drawFrame runs the caller and the plugins for image i and returns the
// command buffers to submit, composite first.
func (r *Renderer) drawFrame(fn DrawFunc, i int, size PhysicalSize) ([]vk.CommandBuffer, error) {
	surface := r.surfaces.Surface(i)
	canvas := surface.Canvas()
	coords := NewCoordinateSystemHelper(r.swapchain.Extent(), r.window.LogicalSize(), size, r.window.ScaleFactor())
	canvas.Identity()
	if err := coords.Apply(canvas, r.cfg.coordinates); err != nil {
		Logger().Warn("coordinate system not applied", "kind", r.cfg.coordinates.Kind.String(), "err", err)
	}
	if fn != nil {
		if err := fn(canvas, coords); err != nil {
			return nil, err
		}
	}
	if err := r.ctx2d.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush 2D context")
	}

	commandBuffers := []vk.CommandBuffer{r.compositor.CommandBuffer(i)}
	for _, p := range r.cfg.plugins {
		buffers, err := p.Render(r.window, r.device, uint32(i))
		if err != nil {
			return nil, err
		}
		commandBuffers = append(commandBuffers, buffers...)
	}
	return commandBuffers, nil
}

// abandonFrame consumes the image-available semaphore of a frame that
// failed before submission and schedules a rebuild, which returns the
// acquired image to the swapchain.
func (r *Renderer) abandonFrame(sync FrameSync) {
	ret := r.device.Driver().QueueSubmit(r.device.GraphicsQueue(), []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.ImageAvailable},
		PWaitDstStageMask:  []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}}, vk.NullFence)
	if err := wrapResult(ret, "abandon frame"); err != nil {
		Logger().Warn("abandon frame", "err", err)
	}
	r.needsRebuild = true
}

// SyncFrameIndex is the in-flight slot the next frame will use.
func (r *Renderer) SyncFrameIndex() int {
	return r.syncFrameIndex
}

func (r *Renderer) ImageCount() int {
	return r.swapchain.ImageCount()
}

func (r *Renderer) SwapchainExtent() vk.Extent2D {
	return r.swapchain.Extent()
}

// NeedsRebuild reports whether the next Draw rebuilds the swapchain.
func (r *Renderer) NeedsRebuild() bool {
	return r.needsRebuild
}

func (r *Renderer) Device() *Device {
	return r.device
}

func (r *Renderer) Swapchain() *Swapchain {
	return r.swapchain
}

func (r *Renderer) Compositor() *Compositor {
	return r.compositor
}

func (r *Renderer) Surfaces() *SurfacePool {
	return r.surfaces
}

func (r *Renderer) Window() Window {
	return r.window
}

// Destroy waits for the device to go idle and releases everything the
// renderer owns, plugins' swapchain resources first.
func (r *Renderer) Destroy() {
	if r.device != nil {
		if err := r.device.WaitIdle(); err != nil {
			Logger().Warn("device wait idle on destroy", "err", err)
		}
	}
	r.destroySwapchainDependents()
	if r.ctx2d != nil {
		r.ctx2d.Destroy()
		r.ctx2d = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
	if r.device != nil {
		r.device.Destroy()
		r.device = nil
	}
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}
