package diesel2d

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// compositeBinding is the combined image sampler of descriptor set 0 in
// the composite shader.
const compositeBinding = 0

// Compositor samples surface i onto swapchain image i. All per-image
// vectors have the swapchain's image count and the command buffers are
// recorded once, at construction.
type Compositor struct {
	dev *Device

	descriptorSetLayout vk.DescriptorSetLayout
	pipelineLayout      vk.PipelineLayout
	renderPass          vk.RenderPass
	pipeline            vk.Pipeline
	framebuffers        []vk.Framebuffer

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	vertexBuffer *Buffer
	indexBuffer  *Buffer

	sampler        vk.Sampler
	descriptorPool vk.DescriptorPool
	descriptorSets []vk.DescriptorSet
}

// NewCompositor builds the composite pipeline for sc and binds one surface
// of surfaces to each swapchain image.
func NewCompositor(dev *Device, sc *Swapchain, surfaces *SurfacePool, shaderCode []uint32) (_ *Compositor, err error) {
	n := sc.ImageCount()
	if surfaces.Len() != n {
		return nil, errors.Errorf("surface pool has %d surfaces for %d swapchain images", surfaces.Len(), n)
	}
	driver, device := dev.Driver(), dev.Handle()
	c := &Compositor{dev: dev}
	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	if err = c.createLayouts(); err != nil {
		return nil, err
	}
	if c.renderPass, err = NewCompositeRenderPass(dev, sc.Format()); err != nil {
		return nil, err
	}

	module, err := loadShaderModule(driver, device, shaderCode)
	if err != nil {
		return nil, err
	}
	c.pipeline, err = newCompositePipelineBuilder(module).Build(dev, c.renderPass, c.pipelineLayout, sc.Extent())
	driver.DestroyShaderModule(device, module)
	if err != nil {
		return nil, err
	}

	if c.framebuffers, err = NewFramebuffers(dev, c.renderPass, sc.ImageViews(), sc.Extent()); err != nil {
		return nil, err
	}
	if c.commandPool, err = NewCommandPool(dev, dev.QueueFamilies().Graphics); err != nil {
		return nil, err
	}
	if c.vertexBuffer, err = allocateDeviceLocalFromSlice(dev, c.commandPool,
		asBytes(quadVertices), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return nil, err
	}
	if c.indexBuffer, err = allocateDeviceLocalFromSlice(dev, c.commandPool,
		asBytes(quadIndices), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
		return nil, err
	}
	if err = c.createDescriptors(surfaces.Views()); err != nil {
		return nil, err
	}
	if c.commandBuffers, err = AllocatePrimary(dev, c.commandPool, n); err != nil {
		return nil, err
	}
	images := surfaces.Images()
	for i, cmd := range c.commandBuffers {
		if err = c.record(cmd, i, images[i], sc.Extent()); err != nil {
			return nil, err
		}
	}
	Logger().Debug("compositor created", "images", n)
	return c, nil
}

func (c *Compositor) createLayouts() error {
	driver, device := c.dev.Driver(), c.dev.Handle()
	bindings := []vk.DescriptorSetLayoutBinding{{
		Binding:         compositeBinding,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}}
	layout, ret := driver.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	})
	if err := wrapResult(ret, "create descriptor set layout"); err != nil {
		return err
	}
	c.descriptorSetLayout = layout

	pipelineLayout, ret := driver.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{layout},
	})
	if err := wrapResult(ret, "create pipeline layout"); err != nil {
		return err
	}
	c.pipelineLayout = pipelineLayout
	return nil
}

// createDescriptors creates the shared sampler and one set per view.
func (c *Compositor) createDescriptors(views []vk.ImageView) error {
	driver, device := c.dev.Driver(), c.dev.Handle()
	sampler, ret := driver.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeMirroredRepeat,
		AddressModeV:            vk.SamplerAddressModeMirroredRepeat,
		AddressModeW:            vk.SamplerAddressModeMirroredRepeat,
		MipLodBias:              0,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	})
	if err := wrapResult(ret, "create sampler"); err != nil {
		return err
	}
	c.sampler = sampler

	n := uint32(len(views))
	pool, ret := driver.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       n,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: n},
		},
	})
	if err := wrapResult(ret, "create descriptor pool"); err != nil {
		return err
	}
	c.descriptorPool = pool

	c.descriptorSets = make([]vk.DescriptorSet, 0, len(views))
	writes := make([]vk.WriteDescriptorSet, 0, len(views))
	for _, view := range views {
		set, ret := driver.AllocateDescriptorSet(device, pool, c.descriptorSetLayout)
		if err := wrapResult(ret, "allocate descriptor set"); err != nil {
			return err
		}
		c.descriptorSets = append(c.descriptorSets, set)
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      compositeBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		})
	}
	driver.UpdateDescriptorSets(device, writes)
	return nil
}

// record writes the command buffer of image i: surface i is moved to
// SHADER_READ_ONLY, drawn over a cleared swapchain image and moved back
// to COLOR_ATTACHMENT.
func (c *Compositor) record(cmd vk.CommandBuffer, i int, surface vk.Image, extent vk.Extent2D) error {
	driver := c.dev.Driver()
	ret := driver.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := wrapResult(ret, "begin composite command buffer"); err != nil {
		return err
	}

	fragment := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	byRegion := vk.DependencyFlags(vk.DependencyByRegionBit)
	driver.CmdPipelineBarrier(cmd, fragment, fragment, byRegion, []vk.ImageMemoryBarrier{
		imageBarrier(surface,
			vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			colorAttachmentAccess, vk.AccessFlags(vk.AccessShaderReadBit)),
	})

	clearValues := []vk.ClearValue{vk.NewClearValue([]float32{0, 0, 0, 1})}
	driver.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      c.renderPass,
		Framebuffer:     c.framebuffers[i],
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	})
	driver.CmdBindPipeline(cmd, c.pipeline)
	driver.CmdBindVertexBuffers(cmd, []vk.Buffer{c.vertexBuffer.Buffer}, []vk.DeviceSize{0})
	driver.CmdBindIndexBuffer(cmd, c.indexBuffer.Buffer, 0, vk.IndexTypeUint16)
	driver.CmdBindDescriptorSets(cmd, c.pipelineLayout, []vk.DescriptorSet{c.descriptorSets[i]})
	driver.CmdDrawIndexed(cmd, uint32(len(quadIndices)))
	driver.CmdEndRenderPass(cmd)

	driver.CmdPipelineBarrier(cmd, fragment, fragment, byRegion, []vk.ImageMemoryBarrier{
		imageBarrier(surface,
			vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutColorAttachmentOptimal,
			vk.AccessFlags(vk.AccessShaderReadBit), colorAttachmentAccess),
	})
	return wrapResult(driver.EndCommandBuffer(cmd), "end composite command buffer")
}

// CommandBuffer returns the pre-recorded command buffer of image i.
func (c *Compositor) CommandBuffer(i int) vk.CommandBuffer {
	return c.commandBuffers[i]
}

func (c *Compositor) CommandBuffers() []vk.CommandBuffer {
	return c.commandBuffers
}

func (c *Compositor) DescriptorSet(i int) vk.DescriptorSet {
	return c.descriptorSets[i]
}

func (c *Compositor) DescriptorSets() []vk.DescriptorSet {
	return c.descriptorSets
}

func (c *Compositor) Framebuffers() []vk.Framebuffer {
	return c.framebuffers
}

func (c *Compositor) RenderPass() vk.RenderPass {
	return c.renderPass
}

// Destroy releases everything in reverse creation order. The device must
// be idle.
func (c *Compositor) Destroy() {
	driver, device := c.dev.Driver(), c.dev.Handle()
	if c.commandBuffers != nil {
		driver.FreeCommandBuffers(device, c.commandPool, c.commandBuffers)
		c.commandBuffers = nil
	}
	if c.descriptorPool != nil {
		driver.DestroyDescriptorPool(device, c.descriptorPool)
		c.descriptorPool = nil
		c.descriptorSets = nil
	}
	if c.sampler != nil {
		driver.DestroySampler(device, c.sampler)
		c.sampler = nil
	}
	c.indexBuffer.Destroy()
	c.indexBuffer = nil
	c.vertexBuffer.Destroy()
	c.vertexBuffer = nil
	if c.commandPool != nil {
		driver.DestroyCommandPool(device, c.commandPool)
		c.commandPool = nil
	}
	DestroyFramebuffers(c.dev, c.framebuffers)
	c.framebuffers = nil
	if c.pipeline != vk.NullPipeline {
		driver.DestroyPipeline(device, c.pipeline)
		c.pipeline = vk.NullPipeline
	}
	if c.renderPass != nil {
		driver.DestroyRenderPass(device, c.renderPass)
		c.renderPass = nil
	}
	if c.pipelineLayout != nil {
		driver.DestroyPipelineLayout(device, c.pipelineLayout)
		c.pipelineLayout = nil
	}
	if c.descriptorSetLayout != nil {
		driver.DestroyDescriptorSetLayout(device, c.descriptorSetLayout)
		c.descriptorSetLayout = nil
	}
}
