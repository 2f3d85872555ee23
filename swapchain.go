package diesel2d

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultPresentModePriority is strict vsync, which every device supports.
var DefaultPresentModePriority = []vk.PresentMode{vk.PresentModeFifo}

// ParsePresentMode converts the textual form used in config files.
func ParsePresentMode(s string) (vk.PresentMode, error) {
	switch strings.ToLower(s) {
	case "immediate":
		return vk.PresentModeImmediate, nil
	case "mailbox":
		return vk.PresentModeMailbox, nil
	case "fifo":
		return vk.PresentModeFifo, nil
	case "fifo_relaxed", "fiforelaxed":
		return vk.PresentModeFifoRelaxed, nil
	}
	return 0, fmt.Errorf("unknown present mode %q", s)
}

// chooseSurfaceFormat prefers BGRA8_UNORM with the sRGB non-linear color
// space and otherwise takes the first reported pair.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, bool) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, false
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, true
		}
	}
	return formats[0], true
}

// choosePresentMode returns the first supported mode from priority and
// falls back to FIFO.
func choosePresentMode(supported []vk.PresentMode, priority []vk.PresentMode) vk.PresentMode {
	for _, want := range priority {
		for _, have := range supported {
			if want == have {
				return want
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's fixed extent when it reports one, and
// otherwise clamps the requested extent to the supported range.
func chooseExtent(caps vk.SurfaceCapabilities, requested vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, capped by the
// maximum when the surface reports one.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Swapchain owns the swapchain handle, one view per swapchain image and
// the per-slot synchronization primitives. The images themselves belong
// to the presentation engine.
type Swapchain struct {
	device *Device

	handle      vk.Swapchain
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D
	images      []vk.Image
	views       []vk.ImageView
	sync        *frameSyncSet
}

// NewSwapchain negotiates format, present mode, extent and image count
// with the device's surface. old may be vk.NullSwapchain; when set, it is
// handed to the driver for resource reuse but not destroyed.
func NewSwapchain(dev *Device, extent vk.Extent2D, old vk.Swapchain, presentModes []vk.PresentMode) (_ *Swapchain, err error) {
	driver, gpu, surface := dev.Driver(), dev.PhysicalDevice(), dev.Surface()

	caps, ret := driver.SurfaceCapabilities(gpu, surface)
	if err := wrapResult(ret, "query surface capabilities"); err != nil {
		return nil, err
	}
	formats, ret := driver.SurfaceFormats(gpu, surface)
	if err := wrapResult(ret, "query surface formats"); err != nil {
		return nil, err
	}
	format, ok := chooseSurfaceFormat(formats)
	if !ok {
		return nil, errors.New("surface reports no formats")
	}
	modes, ret := driver.SurfacePresentModes(gpu, surface)
	if err := wrapResult(ret, "query present modes"); err != nil {
		return nil, err
	}

	sc := &Swapchain{
		device:      dev,
		format:      format,
		presentMode: choosePresentMode(modes, presentModes),
		extent:      chooseExtent(caps, extent),
	}
	defer func() {
		if err != nil {
			sc.Destroy()
		}
	}()

	info := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    chooseImageCount(caps),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      sc.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      sc.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	if families := dev.QueueFamilies(); families.Separate() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	}
	handle, ret := driver.CreateSwapchain(dev.Handle(), info)
	if err := wrapResult(ret, "create swapchain"); err != nil {
		return nil, err
	}
	sc.handle = handle

	images, ret := driver.SwapchainImages(dev.Handle(), handle)
	if err := wrapResult(ret, "get swapchain images"); err != nil {
		return nil, err
	}
	sc.images = images
	for _, image := range images {
		view, err := createImageView2D(driver, dev.Handle(), image, format.Format)
		if err != nil {
			return nil, err
		}
		sc.views = append(sc.views, view)
	}
	if sc.sync, err = newFrameSyncSet(driver, dev.Handle()); err != nil {
		return nil, err
	}
	Logger().Debug("swapchain created",
		"width", sc.extent.Width,
		"height", sc.extent.Height,
		"images", len(images),
		"present_mode", int(sc.presentMode),
	)
	return sc, nil
}

func (s *Swapchain) Handle() vk.Swapchain {
	return s.handle
}

func (s *Swapchain) Format() vk.Format {
	return s.format.Format
}

func (s *Swapchain) PresentMode() vk.PresentMode {
	return s.presentMode
}

func (s *Swapchain) Extent() vk.Extent2D {
	return s.extent
}

// ImageCount is N, the length of every per-image resource vector.
func (s *Swapchain) ImageCount() int {
	return len(s.images)
}

func (s *Swapchain) Images() []vk.Image {
	return s.images
}

func (s *Swapchain) ImageViews() []vk.ImageView {
	return s.views
}

// Sync returns the primitives of in-flight slot k.
func (s *Swapchain) Sync(k int) FrameSync {
	return s.sync.slot(k)
}

// Destroy releases semaphores, fences, image views and the swapchain, in
// that order.
func (s *Swapchain) Destroy() {
	driver, device := s.device.Driver(), s.device.Handle()
	if s.sync != nil {
		s.sync.destroy()
		s.sync = nil
	}
	for _, view := range s.views {
		driver.DestroyImageView(device, view)
	}
	s.views = nil
	if s.handle != vk.NullSwapchain {
		driver.DestroySwapchain(device, s.handle)
		s.handle = vk.NullSwapchain
	}
	s.images = nil
}
