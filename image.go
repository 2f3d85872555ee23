package diesel2d

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var colorSubresourceRange = vk.ImageSubresourceRange{
	AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	LevelCount: 1,
	LayerCount: 1,
}

// Image is a device-local 2D color image with a view over its single mip.
type Image struct {
	driver Driver
	device vk.Device

	Image  vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Extent vk.Extent2D
}

func (im *Image) Destroy() {
	if im == nil || im.device == nil {
		return
	}
	if im.View != nil {
		im.driver.DestroyImageView(im.device, im.View)
	}
	im.driver.DestroyImage(im.device, im.Image)
	im.driver.FreeMemory(im.device, im.Memory)
	im.device = nil
}

func createImageView2D(driver Driver, device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	view, ret := driver.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorSubresourceRange,
	})
	if err := wrapResult(ret, "create image view"); err != nil {
		return nil, err
	}
	return view, nil
}

// allocateImage creates an optimally tiled device-local image in the
// UNDEFINED layout, binds memory and creates its view.
func allocateImage(dev *Device, extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlags) (*Image, error) {
	driver, device := dev.Driver(), dev.Handle()
	image, ret := driver.CreateImage(device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	})
	if err := wrapResult(ret, "create image"); err != nil {
		return nil, err
	}
	im := &Image{
		driver: driver,
		device: device,
		Image:  image,
		Format: format,
		Extent: extent,
	}

	reqs := driver.ImageMemoryRequirements(device, image)
	memType, ok := findMemoryType(dev.MemoryProperties(), reqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if !ok {
		driver.DestroyImage(device, image)
		return nil, errors.Wrap(ErrOutOfDeviceMemory, "no device-local memory type for image")
	}
	im.Memory, ret = driver.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	})
	if err := wrapResult(ret, "allocate image memory"); err != nil {
		driver.DestroyImage(device, image)
		return nil, err
	}
	if err := wrapResult(driver.BindImageMemory(device, image, im.Memory, 0), "bind image memory"); err != nil {
		im.Destroy()
		return nil, err
	}
	view, err := createImageView2D(driver, device, image, format)
	if err != nil {
		im.Destroy()
		return nil, err
	}
	im.View = view
	return im, nil
}

// imageBarrier builds a same-queue layout transition over the whole color
// subresource.
func imageBarrier(image vk.Image, oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags) vk.ImageMemoryBarrier {
	return vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange:    colorSubresourceRange,
	}
}

// layoutAccess returns the access mask and pipeline stage that touch an
// image in layout.
func layoutAccess(layout vk.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch layout {
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessShaderReadBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return colorAttachmentAccess, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
}

// recordTransition records a layout change of image from oldLayout to
// newLayout.
func recordTransition(driver Driver, cmd vk.CommandBuffer, image vk.Image, oldLayout, newLayout vk.ImageLayout) {
	srcAccess, srcStage := layoutAccess(oldLayout)
	dstAccess, dstStage := layoutAccess(newLayout)
	driver.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, []vk.ImageMemoryBarrier{
		imageBarrier(image, oldLayout, newLayout, srcAccess, dstAccess),
	})
}

// transitionImageLayout moves image to newLayout with a single-use
// submission on the graphics queue.
func transitionImageLayout(dev *Device, pool vk.CommandPool, image vk.Image, oldLayout, newLayout vk.ImageLayout) error {
	return submitSingleUse(dev, dev.GraphicsQueue(), pool, func(cmd vk.CommandBuffer) {
		recordTransition(dev.Driver(), cmd, image, oldLayout, newLayout)
	})
}
