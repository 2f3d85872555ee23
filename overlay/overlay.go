// Package overlay is a diesel2d plugin that clears rectangles of the
// presented image to a solid color after compositing.
package overlay

import (
	"github.com/andewx/diesel2d"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Rect is a region of the swapchain image in physical pixels.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Plugin clears its rects on every frame. The rects are clipped to the
// swapchain extent when recorded. Command buffers are recorded once per
// swapchain and again after SetRects.
type Plugin struct {
	color [4]float32
	rects []Rect
	stale bool

	dev            *diesel2d.Device
	extent         vk.Extent2D
	renderPass     vk.RenderPass
	framebuffers   []vk.Framebuffer
	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer
}

var _ diesel2d.Plugin = (*Plugin)(nil)

// New returns a plugin painting rects with the RGBA color.
func New(color [4]float32, rects ...Rect) *Plugin {
	return &Plugin{color: color, rects: rects}
}

// SetRects replaces the rects. They take effect on the next frame.
func (p *Plugin) SetRects(rects ...Rect) {
	p.rects = rects
	p.stale = true
}

func (p *Plugin) SwapchainCreated(dev *diesel2d.Device, sc *diesel2d.Swapchain) (err error) {
	defer func() {
		if err != nil {
			p.SwapchainDestroyed()
		}
	}()
	p.dev = dev
	p.extent = sc.Extent()
	if p.renderPass, err = diesel2d.NewOverlayRenderPass(dev, sc.Format()); err != nil {
		return err
	}
	if p.framebuffers, err = diesel2d.NewFramebuffers(dev, p.renderPass, sc.ImageViews(), p.extent); err != nil {
		return err
	}
	if p.commandPool, err = diesel2d.NewCommandPool(dev, dev.QueueFamilies().Graphics); err != nil {
		return err
	}
	if p.commandBuffers, err = diesel2d.AllocatePrimary(dev, p.commandPool, sc.ImageCount()); err != nil {
		return err
	}
	return p.recordAll()
}

func (p *Plugin) SwapchainDestroyed() {
	if p.dev == nil {
		return
	}
	driver, device := p.dev.Driver(), p.dev.Handle()
	if len(p.commandBuffers) > 0 {
		driver.FreeCommandBuffers(device, p.commandPool, p.commandBuffers)
		p.commandBuffers = nil
	}
	if p.commandPool != nil {
		driver.DestroyCommandPool(device, p.commandPool)
		p.commandPool = nil
	}
	diesel2d.DestroyFramebuffers(p.dev, p.framebuffers)
	p.framebuffers = nil
	if p.renderPass != nil {
		driver.DestroyRenderPass(device, p.renderPass)
		p.renderPass = nil
	}
	p.dev = nil
}

// Render returns the command buffer of image i. Pending rect changes wait
// for the device to go idle before the buffers are re-recorded.
func (p *Plugin) Render(_ diesel2d.Window, dev *diesel2d.Device, imageIndex uint32) ([]vk.CommandBuffer, error) {
	if int(imageIndex) >= len(p.commandBuffers) {
		return nil, errors.Errorf("overlay: image %d out of range", imageIndex)
	}
	if p.stale {
		if err := dev.WaitIdle(); err != nil {
			return nil, err
		}
		if err := p.recordAll(); err != nil {
			return nil, err
		}
	}
	return []vk.CommandBuffer{p.commandBuffers[imageIndex]}, nil
}

func (p *Plugin) recordAll() error {
	rects := p.clearRects()
	for i, cmd := range p.commandBuffers {
		if err := p.record(cmd, p.framebuffers[i], rects); err != nil {
			return err
		}
	}
	p.stale = false
	return nil
}

func (p *Plugin) record(cmd vk.CommandBuffer, fb vk.Framebuffer, rects []vk.ClearRect) error {
	driver := p.dev.Driver()
	if err := diesel2d.NewError(driver.ResetCommandBuffer(cmd)); err != nil {
		return errors.Wrap(err, "overlay: reset command buffer")
	}
	ret := driver.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := diesel2d.NewError(ret); err != nil {
		return errors.Wrap(err, "overlay: begin command buffer")
	}
	driver.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  p.renderPass,
		Framebuffer: fb,
		RenderArea:  vk.Rect2D{Extent: p.extent},
	})
	if len(rects) > 0 {
		driver.CmdClearAttachments(cmd, []vk.ClearAttachment{{
			AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
			ColorAttachment: 0,
			ClearValue:      vk.NewClearValue(p.color[:]),
		}}, rects)
	}
	driver.CmdEndRenderPass(cmd)
	return errors.Wrap(diesel2d.NewError(driver.EndCommandBuffer(cmd)), "overlay: end command buffer")
}

// clearRects clips the rects to the extent and drops the empty ones.
func (p *Plugin) clearRects() []vk.ClearRect {
	rects := make([]vk.ClearRect, 0, len(p.rects))
	for _, r := range p.rects {
		x0, y0 := max(r.X, 0), max(r.Y, 0)
		x1 := min(int64(r.X)+int64(r.Width), int64(p.extent.Width))
		y1 := min(int64(r.Y)+int64(r.Height), int64(p.extent.Height))
		if x1 <= int64(x0) || y1 <= int64(y0) {
			continue
		}
		rects = append(rects, vk.ClearRect{
			Rect: vk.Rect2D{
				Offset: vk.Offset2D{X: x0, Y: y0},
				Extent: vk.Extent2D{Width: uint32(x1 - int64(x0)), Height: uint32(y1 - int64(y0))},
			},
			BaseArrayLayer: 0,
			LayerCount:     1,
		})
	}
	return rects
}
