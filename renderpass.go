package diesel2d

import vk "github.com/vulkan-go/vulkan"

var colorAttachmentAccess = vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit)

// externalColorDependency orders the subpass after the color-output stage
// of earlier work. srcAccess names the writes that must be visible before
// the attachment is loaded; a pass that clears an undefined image needs none.
func externalColorDependency(srcAccess vk.AccessFlags) vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:    vk.MaxUint32,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: srcAccess,
		DstAccessMask: colorAttachmentAccess,
	}
}

func newColorRenderPass(dev *Device, format vk.Format, loadOp vk.AttachmentLoadOp, initial, final vk.ImageLayout, dependency vk.SubpassDependency) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         loadOp,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  initial,
		FinalLayout:    final,
	}}
	colorReferences := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorReferences,
	}}
	dependencies := []vk.SubpassDependency{dependency}

	renderPass, ret := dev.Driver().CreateRenderPass(dev.Handle(), &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	})
	if err := wrapResult(ret, "create render pass"); err != nil {
		return nil, err
	}
	return renderPass, nil
}

// NewCompositeRenderPass creates the pass that clears the swapchain image
// and leaves it ready for presentation.
func NewCompositeRenderPass(dev *Device, format vk.Format) (vk.RenderPass, error) {
	return newColorRenderPass(dev, format, vk.AttachmentLoadOpClear,
		vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc,
		externalColorDependency(0))
}

// NewOverlayRenderPass creates a pass for plugins that draw on top of the
// composited image. It keeps the existing contents and the present layout,
// and waits for the composite pass's color writes before loading them.
func NewOverlayRenderPass(dev *Device, format vk.Format) (vk.RenderPass, error) {
	return newColorRenderPass(dev, format, vk.AttachmentLoadOpLoad,
		vk.ImageLayoutPresentSrc, vk.ImageLayoutPresentSrc,
		externalColorDependency(vk.AccessFlags(vk.AccessColorAttachmentWriteBit)))
}

// NewFramebuffers creates one framebuffer per view for renderPass.
func NewFramebuffers(dev *Device, renderPass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) ([]vk.Framebuffer, error) {
	framebuffers := make([]vk.Framebuffer, 0, len(views))
	for _, view := range views {
		fb, ret := dev.Driver().CreateFramebuffer(dev.Handle(), &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		})
		if err := wrapResult(ret, "create framebuffer"); err != nil {
			DestroyFramebuffers(dev, framebuffers)
			return nil, err
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}

func DestroyFramebuffers(dev *Device, framebuffers []vk.Framebuffer) {
	for _, fb := range framebuffers {
		dev.Driver().DestroyFramebuffer(dev.Handle(), fb)
	}
}
