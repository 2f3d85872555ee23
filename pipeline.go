package diesel2d

import vk "github.com/vulkan-go/vulkan"

// PipelineBuilder collects the fixed-function state of a graphics pipeline.
type PipelineBuilder struct {
	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexBindings       []vk.VertexInputBindingDescription
	vertexAttributes     []vk.VertexInputAttributeDescription
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	multisampling        vk.PipelineMultisampleStateCreateInfo
}

// newCompositePipelineBuilder describes the textured-quad pipeline: a
// triangle list of QuadVertex, straight alpha blending into a single
// color attachment, no depth and no multisampling.
func newCompositePipelineBuilder(module vk.ShaderModule) *PipelineBuilder {
	pb := &PipelineBuilder{}

	pb.shaderStages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module,
			PName:  safeString(vertexEntryPoint),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module,
			PName:  safeString(fragmentEntryPoint),
		},
	}

	pb.vertexBindings = []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    quadVertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
	pb.vertexAttributes = []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 8},
	}

	pb.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pb.rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb.multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	pb.colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	return pb
}

// Build creates the pipeline for renderPass with a static viewport and
// scissor covering extent.
func (p *PipelineBuilder) Build(dev *Device, renderPass vk.RenderPass, layout vk.PipelineLayout, extent vk.Extent2D) (vk.Pipeline, error) {
	viewports := []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}}
	scissors := []vk.Rect2D{{Extent: extent}}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p.vertexBindings)),
		PVertexBindingDescriptions:      p.vertexBindings,
		VertexAttributeDescriptionCount: uint32(len(p.vertexAttributes)),
		PVertexAttributeDescriptions:    p.vertexAttributes,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    viewports,
		ScissorCount:  1,
		PScissors:     scissors,
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment},
	}
	depthState := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}

	pipeline, ret := dev.Driver().CreateGraphicsPipeline(dev.Handle(), &vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PDepthStencilState:  &depthState,
		PColorBlendState:    &blendState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
	})
	if err := wrapResult(ret, "create graphics pipeline"); err != nil {
		return vk.NullPipeline, err
	}
	return pipeline, nil
}
