package gpu

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
)

// PipelineConfig names everything a mesh pipeline needs: the SPIR-V shader
// files, the vertex layout the vertex buffer will be bound with and the number
// of push constant bytes the vertex stage consumes.
type PipelineConfig struct {
	VertexShader     string
	FragmentShader   string
	VertexLayout     model.VertexLayout
	PushConstantSize int
}

// Pipeline is a compiled graphics pipeline together with its layout. It
// implements model.Pipeline.
type Pipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout

	hasVert bool
	hasFrag bool

	dev *Device
}

func (p *Pipeline) HasVertexStage() bool   { return p.hasVert }
func (p *Pipeline) HasFragmentStage() bool { return p.hasFrag }

// Destroy releases the pipeline and its layout.
func (p *Pipeline) Destroy() {
	vk.DestroyPipeline(p.dev.D, p.Handle, nil)
	vk.DestroyPipelineLayout(p.dev.D, p.Layout, nil)
}

// NewPipeline compiles a graphics pipeline with dynamic viewport and scissor
// against the given render pass. Both shader stages must be configured; a
// missing one fails with the model package's stage sentinel so callers can
// treat it like a builder validation error.
func NewPipeline(dev *Device, renderPass vk.RenderPass, cfg PipelineConfig) (*Pipeline, error) {
	if cfg.VertexShader == "" {
		return nil, model.ErrMissingVertexShader
	}
	if cfg.FragmentShader == "" {
		return nil, model.ErrMissingFragmentShader
	}

	// Shader module deletion can be done right after pipeline creation.
	vertShaderMod, vertStageInfo, err := loadShaderStage(dev.D, cfg.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	defer deleteShaderMod(dev.D, vertShaderMod)
	fragShaderMod, fragStageInfo, err := loadShaderStage(dev.D, cfg.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return nil, err
	}
	defer deleteShaderMod(dev.D, fragShaderMod)
	shaderStages := []vk.PipelineShaderStageCreateInfo{vertStageInfo, fragStageInfo}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		PNext:             nil,
		Flags:             0,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	bindingDesc, attributeDesc, err := vertexInputDescriptions(cfg.VertexLayout)
	if err != nil {
		return nil, err
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		PNext:                           nil,
		Flags:                           0,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDesc},
		VertexAttributeDescriptionCount: uint32(len(attributeDesc)),
		PVertexAttributeDescriptions:    attributeDesc,
	}
	inputAssemblyInfo := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewportStateInfo := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		PNext:         nil,
		Flags:         0,
		ViewportCount: 1,
		PViewports:    nil,
		ScissorCount:  1,
		PScissors:     nil,
	}
	rasterizerInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		DepthBiasConstantFactor: 0,
		DepthBiasClamp:          0,
		DepthBiasSlopeFactor:    0,
		LineWidth:               1.0,
	}
	multisamplingInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	colorBlendAttachmentInfo := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlendingInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		PNext:           nil,
		Flags:           0,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentInfo},
		BlendConstants:  [4]float32{0, 0, 0, 0},
	}

	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PNext:                  nil,
		Flags:                  0,
		SetLayoutCount:         0,
		PSetLayouts:            nil,
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}
	if cfg.PushConstantSize > 0 {
		pipelineLayoutInfo.PushConstantRangeCount = 1
		pipelineLayoutInfo.PPushConstantRanges = []vk.PushConstantRange{
			{
				StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
				Offset:     0,
				Size:       uint32(cfg.PushConstantSize),
			},
		}
	}
	layout, err := vkCreatePipelineLayout(dev.D, &pipelineLayoutInfo)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline layout: %w", err)
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               nil,
		Flags:               0,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssemblyInfo,
		PTessellationState:  nil,
		PViewportState:      &viewportStateInfo,
		PRasterizationState: &rasterizerInfo,
		PMultisampleState:   &multisamplingInfo,
		PDepthStencilState:  nil,
		PColorBlendState:    &colorBlendingInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  nil,
		BasePipelineIndex:   -1,
	}
	pipelines, err := vkCreateGraphicsPipelines(dev.D, []vk.GraphicsPipelineCreateInfo{pipelineInfo})
	if err != nil {
		vk.DestroyPipelineLayout(dev.D, layout, nil)
		return nil, fmt.Errorf("creating graphics pipeline: %w", err)
	}
	logger.Info("created graphics pipeline")

	return &Pipeline{
		Handle:  pipelines[0],
		Layout:  layout,
		hasVert: true,
		hasFrag: true,
		dev:     dev,
	}, nil
}

func vkFormatOf(f model.Format) (vk.Format, error) {
	switch f {
	case model.FormatFloat32x2:
		return vk.FormatR32g32Sfloat, nil
	case model.FormatFloat32x3:
		return vk.FormatR32g32b32Sfloat, nil
	case model.FormatFloat32x4:
		return vk.FormatR32g32b32a32Sfloat, nil
	}
	return vk.FormatUndefined, fmt.Errorf("unsupported vertex attribute format %v", f)
}

func vertexInputDescriptions(layout model.VertexLayout) (vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	binding := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(layout.Stride),
		InputRate: vk.VertexInputRateVertex,
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(layout.Attributes))
	for i, a := range layout.Attributes {
		format, err := vkFormatOf(a.Format)
		if err != nil {
			return binding, nil, err
		}
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   format,
			Offset:   uint32(a.Offset),
		}
	}
	return binding, attrs, nil
}

// NewRenderPass creates a single subpass render pass with one color attachment
// that clears on load and transitions to present.
func NewRenderPass(dev *Device, colorFormat vk.Format) (vk.RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		InputAttachmentCount:    0,
		PInputAttachments:       nil,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PResolveAttachments:     nil,
		PDepthStencilAttachment: nil,
		PreserveAttachmentCount: 0,
		PPreserveAttachments:    nil,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		DependencyFlags: 0,
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	rp, err := vkCreateRenderPass(dev.D, &renderPassInfo)
	if err != nil {
		return nil, fmt.Errorf("creating render pass: %w", err)
	}
	return rp, nil
}
