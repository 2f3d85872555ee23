package diesel2d

import (
	"github.com/gogpu/gg"
	vk "github.com/vulkan-go/vulkan"
)

// Surface2D is an off-screen render target of the 2D library. Its image
// is kept in COLOR_ATTACHMENT_OPTIMAL between frames.
type Surface2D interface {
	// Canvas returns the drawing context. Fetching it marks the surface as
	// drawn, so the next Flush uploads it.
	Canvas() *gg.Context
	Image() vk.Image
	ImageView() vk.ImageView
	Extent() vk.Extent2D
	Destroy()
}

// Context2D is the 2D library's GPU context bound to the renderer's
// device and graphics queue.
type Context2D interface {
	NewSurface(extent vk.Extent2D) (Surface2D, error)
	// Flush submits the GPU work deferred by drawing since the last flush.
	Flush() error
	Destroy()
}

// Context2DFactory creates the 2D context once the device exists.
type Context2DFactory func(dev *Device) (Context2D, error)

// SurfacePool holds one surface per swapchain image. Surface i is sampled
// only by descriptor set i.
type SurfacePool struct {
	surfaces []Surface2D
}

// NewSurfacePool creates count surfaces of max(extent, 1x1).
func NewSurfacePool(ctx Context2D, extent vk.Extent2D, count int) (*SurfacePool, error) {
	if extent.Width == 0 {
		extent.Width = 1
	}
	if extent.Height == 0 {
		extent.Height = 1
	}
	p := &SurfacePool{surfaces: make([]Surface2D, 0, count)}
	for i := 0; i < count; i++ {
		s, err := ctx.NewSurface(extent)
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.surfaces = append(p.surfaces, s)
	}
	Logger().Debug("surface pool created",
		"count", count,
		"width", extent.Width,
		"height", extent.Height,
	)
	return p, nil
}

func (p *SurfacePool) Len() int {
	return len(p.surfaces)
}

func (p *SurfacePool) Surface(i int) Surface2D {
	return p.surfaces[i]
}

// Views lists the image view of every surface in pool order.
func (p *SurfacePool) Views() []vk.ImageView {
	views := make([]vk.ImageView, len(p.surfaces))
	for i, s := range p.surfaces {
		views[i] = s.ImageView()
	}
	return views
}

func (p *SurfacePool) Images() []vk.Image {
	images := make([]vk.Image, len(p.surfaces))
	for i, s := range p.surfaces {
		images[i] = s.Image()
	}
	return images
}

func (p *SurfacePool) Destroy() {
	for _, s := range p.surfaces {
		s.Destroy()
	}
	p.surfaces = nil
}
