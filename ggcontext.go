package diesel2d

import (
	"unsafe"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// surfaceFormat is the layout of gg's pixmap: 8-bit RGBA, top-left origin.
const surfaceFormat = vk.FormatR8g8b8a8Unorm

// GGContext backs Context2D with gogpu/gg. Each surface rasterizes into a
// gg.Context and Flush uploads the pixels of every surface drawn since the
// previous flush into its device-local image. The uploads go to the
// graphics queue, ahead of the composite submission of the same frame.
type GGContext struct {
	dev  *Device
	pool vk.CommandPool

	live  map[*ggSurface]struct{}
	dirty []*ggSurface
}

var _ Context2D = (*GGContext)(nil)

// NewGGContext binds a gg-backed 2D context to dev.
func NewGGContext(dev *Device) (*GGContext, error) {
	pool, err := NewCommandPool(dev, dev.QueueFamilies().Graphics)
	if err != nil {
		return nil, err
	}
	return &GGContext{
		dev:  dev,
		pool: pool,
		live: make(map[*ggSurface]struct{}),
	}, nil
}

// NewGGContextFactory adapts NewGGContext to a Context2DFactory.
func NewGGContextFactory() Context2DFactory {
	return func(dev *Device) (Context2D, error) {
		return NewGGContext(dev)
	}
}

func (c *GGContext) NewSurface(extent vk.Extent2D) (_ Surface2D, err error) {
	if extent.Width == 0 || extent.Height == 0 {
		return nil, errors.Errorf("surface extent %dx%d is empty", extent.Width, extent.Height)
	}
	driver, device := c.dev.Driver(), c.dev.Handle()
	s := &ggSurface{
		ctx:    c,
		canvas: gg.NewContext(int(extent.Width), int(extent.Height)),
		extent: extent,
	}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit | vk.ImageUsageColorAttachmentBit)
	if s.image, err = allocateImage(c.dev, extent, surfaceFormat, usage); err != nil {
		return nil, err
	}
	size := vk.DeviceSize(extent.Width) * vk.DeviceSize(extent.Height) * 4
	s.staging, err = allocateBuffer(c.dev,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		size)
	if err != nil {
		return nil, err
	}
	var ret vk.Result
	if s.mapped, ret = driver.MapMemory(device, s.staging.Memory, 0, size); isError(ret) {
		return nil, wrapResult(ret, "map surface staging buffer")
	}
	buffers, err := AllocatePrimary(c.dev, c.pool, 1)
	if err != nil {
		return nil, err
	}
	s.cmd = buffers[0]
	if s.fence, ret = driver.CreateFence(device, true); isError(ret) {
		return nil, wrapResult(ret, "create surface upload fence")
	}
	err = transitionImageLayout(c.dev, c.pool, s.image.Image,
		vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal)
	if err != nil {
		return nil, err
	}
	c.live[s] = struct{}{}
	return s, nil
}

// Flush uploads every surface whose canvas was fetched since the last
// flush.
func (c *GGContext) Flush() error {
	dirty := c.dirty
	c.dirty = c.dirty[:0]
	for _, s := range dirty {
		s.dirty = false
	}
	for _, s := range dirty {
		if _, ok := c.live[s]; !ok {
			continue
		}
		if err := s.upload(); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases every surface still alive and the command pool.
func (c *GGContext) Destroy() {
	for s := range c.live {
		s.Destroy()
	}
	if c.pool != nil {
		c.dev.Driver().DestroyCommandPool(c.dev.Handle(), c.pool)
		c.pool = nil
	}
}

type ggSurface struct {
	ctx    *GGContext
	canvas *gg.Context
	extent vk.Extent2D

	image   *Image
	staging *Buffer
	mapped  unsafe.Pointer
	cmd     vk.CommandBuffer
	fence   vk.Fence

	dirty bool
}

func (s *ggSurface) Canvas() *gg.Context {
	if !s.dirty {
		s.dirty = true
		s.ctx.dirty = append(s.ctx.dirty, s)
	}
	return s.canvas
}

func (s *ggSurface) Image() vk.Image {
	return s.image.Image
}

func (s *ggSurface) ImageView() vk.ImageView {
	return s.image.View
}

func (s *ggSurface) Extent() vk.Extent2D {
	return s.extent
}

// upload copies the pixmap into the staging buffer and records the
// buffer-to-image copy. The previous upload of this surface must have
// completed before the staging memory is overwritten.
func (s *ggSurface) upload() error {
	driver, device := s.ctx.dev.Driver(), s.ctx.dev.Handle()
	if err := s.canvas.FlushGPU(); err != nil {
		return errors.Wrap(err, "flush canvas")
	}
	fences := []vk.Fence{s.fence}
	if err := wrapResult(driver.WaitForFences(device, fences, vk.MaxUint64), "wait for surface upload"); err != nil {
		return err
	}
	if err := wrapResult(driver.ResetFences(device, fences), "reset surface upload fence"); err != nil {
		return err
	}

	pixels := s.canvas.ResizeTarget().Data()
	if vk.DeviceSize(len(pixels)) > s.staging.Size {
		return errors.Errorf("pixmap of %d bytes exceeds staging size %d", len(pixels), s.staging.Size)
	}
	vk.Memcopy(s.mapped, pixels)

	if err := wrapResult(driver.ResetCommandBuffer(s.cmd), "reset surface command buffer"); err != nil {
		return err
	}
	ret := driver.BeginCommandBuffer(s.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := wrapResult(ret, "begin surface upload"); err != nil {
		return err
	}
	recordTransition(driver, s.cmd, s.image.Image,
		vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutTransferDstOptimal)
	driver.CmdCopyBufferToImage(s.cmd, s.staging.Buffer, s.image.Image, vk.ImageLayoutTransferDstOptimal,
		[]vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: s.extent.Width, Height: s.extent.Height, Depth: 1},
		}})
	recordTransition(driver, s.cmd, s.image.Image,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutColorAttachmentOptimal)
	if err := wrapResult(driver.EndCommandBuffer(s.cmd), "end surface upload"); err != nil {
		return err
	}
	ret = driver.QueueSubmit(s.ctx.dev.GraphicsQueue(), []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{s.cmd},
	}}, s.fence)
	return wrapResult(ret, "submit surface upload")
}

// Destroy waits for a pending upload and releases the surface.
func (s *ggSurface) Destroy() {
	if _, ok := s.ctx.live[s]; !ok {
		return
	}
	delete(s.ctx.live, s)
	s.release()
}

func (s *ggSurface) release() {
	driver, device := s.ctx.dev.Driver(), s.ctx.dev.Handle()
	if s.fence != vk.NullFence {
		driver.WaitForFences(device, []vk.Fence{s.fence}, vk.MaxUint64)
		driver.DestroyFence(device, s.fence)
		s.fence = vk.NullFence
	}
	if s.cmd != nil {
		driver.FreeCommandBuffers(device, s.ctx.pool, []vk.CommandBuffer{s.cmd})
		s.cmd = nil
	}
	if s.staging != nil {
		if s.mapped != nil {
			driver.UnmapMemory(device, s.staging.Memory)
			s.mapped = nil
		}
		s.staging.Destroy()
		s.staging = nil
	}
	if s.image != nil {
		s.image.Destroy()
		s.image = nil
	}
	if s.canvas != nil {
		s.canvas.Close()
		s.canvas = nil
	}
}
