package testbed

import (
	"path/filepath"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/assets"
	"github.com/mnrn/ReVK/engine/renderer/vulkan"
)

type quadVertex struct {
	pos mgl32.Vec2
	uv  mgl32.Vec2
}

var quadVertices = []quadVertex{
	{pos: mgl32.Vec2{-0.75, -0.75}, uv: mgl32.Vec2{0, 0}},
	{pos: mgl32.Vec2{0.75, -0.75}, uv: mgl32.Vec2{1, 0}},
	{pos: mgl32.Vec2{0.75, 0.75}, uv: mgl32.Vec2{1, 1}},
	{pos: mgl32.Vec2{-0.75, 0.75}, uv: mgl32.Vec2{0, 1}},
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// TexturedQuadScene samples an image file onto a quad. The texture is
// uploaded once through a staging buffer and stays device local; a missing
// file falls back to the loader's checkerboard so the scene always draws.
type TexturedQuadScene struct {
	vulkan.BaseScene

	shaderDir   string
	texturePath string

	pipeline     *vulkan.VulkanPipeline
	vertexBuffer *vulkan.VulkanBuffer
	indexBuffer  *vulkan.VulkanBuffer

	texture *vulkan.VulkanImage
	sampler vk.Sampler

	descriptorPool   vk.DescriptorPool
	descriptorLayout vk.DescriptorSetLayout
	descriptorSet    vk.DescriptorSet
}

func NewTexturedQuadScene(shaderDir, texturePath string) *TexturedQuadScene {
	return &TexturedQuadScene{
		shaderDir:   shaderDir,
		texturePath: texturePath,
	}
}

func (s *TexturedQuadScene) BuildPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache, imageCount uint32) error {
	if err := s.uploadTexture(context); err != nil {
		return err
	}

	sampler, err := vulkan.SamplerCreate(context)
	if err != nil {
		return err
	}
	s.sampler = sampler

	layout, err := vulkan.DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	})
	if err != nil {
		return err
	}
	s.descriptorLayout = layout

	pool, err := vulkan.DescriptorPoolCreate(context, []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1},
	}, 1)
	if err != nil {
		return err
	}
	s.descriptorPool = pool

	sets, err := vulkan.DescriptorSetsAllocate(context, pool, layout, 1)
	if err != nil {
		return err
	}
	s.descriptorSet = sets[0]
	vulkan.DescriptorWriteCombinedSampler(context, s.descriptorSet, 0, s.texture.View, s.sampler)

	vertexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), quadVerticesToBytes(quadVertices))
	if err != nil {
		return err
	}
	s.vertexBuffer = vertexBuffer

	indexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), indicesToBytes(quadIndices))
	if err != nil {
		return err
	}
	s.indexBuffer = indexBuffer

	return s.buildPipeline(context, pass, cache)
}

// uploadTexture decodes the image file, stages its pixels into a host
// visible buffer and copies them into a device local image, transitioning
// the layout around the copy on a single use command buffer.
func (s *TexturedQuadScene) uploadTexture(context *vulkan.VulkanContext) error {
	data, err := assets.LoadTexture(s.texturePath)
	if err != nil {
		return err
	}

	staging, err := vulkan.BufferCreate(context, vk.DeviceSize(len(data.Pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data.Pixels); err != nil {
		return err
	}

	texture, err := vulkan.ImageCreate(context, vk.ImageType2d, data.Width, data.Height,
		vk.FormatR8g8b8a8Srgb, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}

	pool := context.Device.GraphicsCommandPool
	commandBuffer, err := vulkan.AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		texture.ImageDestroy(context)
		return err
	}
	if err := texture.TransitionLayout(commandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		texture.ImageDestroy(context)
		return err
	}
	texture.CopyFromBuffer(commandBuffer, staging.Handle)
	if err := texture.TransitionLayout(commandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		texture.ImageDestroy(context)
		return err
	}
	if err := commandBuffer.EndSingleUse(context, pool, context.Device.GraphicsQueue); err != nil {
		texture.ImageDestroy(context)
		return err
	}

	s.texture = texture
	return nil
}

func (s *TexturedQuadScene) ReloadPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	return s.buildPipeline(context, pass, cache)
}

func (s *TexturedQuadScene) buildPipeline(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	vertModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "quad.vert.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, vertModule)

	fragModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "quad.frag.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, fragModule)

	pipeline, err := vulkan.NewGraphicsPipeline(context, cache, &vulkan.VulkanPipelineConfig{
		Renderpass: pass,
		Stride:     uint32(unsafe.Sizeof(quadVertex{})),
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(quadVertex{}.pos))},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(quadVertex{}.uv))},
		},
		DescriptorSetLayouts: []vk.DescriptorSetLayout{s.descriptorLayout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			vulkan.ShaderStage(vertModule, vk.ShaderStageVertexBit),
			vulkan.ShaderStage(fragModule, vk.ShaderStageFragmentBit),
		},
		CullMode: vk.CullModeNone,
	})
	if err != nil {
		return err
	}

	if s.pipeline != nil {
		s.pipeline.Destroy(context)
	}
	s.pipeline = pipeline
	return nil
}

func (s *TexturedQuadScene) RecordDraw(context *vulkan.VulkanContext, commandBuffer *vulkan.VulkanCommandBuffer, imageIndex uint32) error {
	s.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{s.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, s.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, s.pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{s.descriptorSet}, 0, nil)
	vk.CmdDrawIndexed(commandBuffer.Handle, uint32(len(quadIndices)), 1, 0, 0, 0)
	return nil
}

func (s *TexturedQuadScene) Cleanup(context *vulkan.VulkanContext) {
	if s.pipeline != nil {
		s.pipeline.Destroy(context)
		s.pipeline = nil
	}
	vulkan.DescriptorPoolDestroy(context, s.descriptorPool)
	s.descriptorPool = vk.NullDescriptorPool
	s.descriptorSet = vk.NullDescriptorSet
	vulkan.DescriptorSetLayoutDestroy(context, s.descriptorLayout)
	s.descriptorLayout = vk.NullDescriptorSetLayout

	vulkan.SamplerDestroy(context, s.sampler)
	s.sampler = vk.NullSampler
	if s.texture != nil {
		s.texture.ImageDestroy(context)
		s.texture = nil
	}

	if s.indexBuffer != nil {
		s.indexBuffer.Destroy(context)
		s.indexBuffer = nil
	}
	if s.vertexBuffer != nil {
		s.vertexBuffer.Destroy(context)
		s.vertexBuffer = nil
	}
}

func quadVerticesToBytes(verts []quadVertex) []byte {
	size := len(verts) * int(unsafe.Sizeof(quadVertex{}))
	out := make([]byte, size)
	src := (*[1 << 30]byte)(unsafe.Pointer(&verts[0]))[:size:size]
	copy(out, src)
	return out
}
