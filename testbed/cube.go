package testbed

import (
	"path/filepath"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/renderer/components"
	"github.com/mnrn/ReVK/engine/renderer/vulkan"
)

type cubeVertex struct {
	pos   mgl32.Vec3
	color mgl32.Vec3
}

var cubeVertices = []cubeVertex{
	{pos: mgl32.Vec3{-1, -1, -1}, color: mgl32.Vec3{1, 0, 0}},
	{pos: mgl32.Vec3{1, -1, -1}, color: mgl32.Vec3{0, 1, 0}},
	{pos: mgl32.Vec3{1, 1, -1}, color: mgl32.Vec3{0, 0, 1}},
	{pos: mgl32.Vec3{-1, 1, -1}, color: mgl32.Vec3{1, 1, 0}},
	{pos: mgl32.Vec3{-1, -1, 1}, color: mgl32.Vec3{1, 0, 1}},
	{pos: mgl32.Vec3{1, -1, 1}, color: mgl32.Vec3{0, 1, 1}},
	{pos: mgl32.Vec3{1, 1, 1}, color: mgl32.Vec3{1, 1, 1}},
	{pos: mgl32.Vec3{-1, 1, 1}, color: mgl32.Vec3{0.2, 0.6, 1}},
}

var cubeIndices = []uint32{
	0, 1, 2, 2, 3, 0, // back
	4, 5, 6, 6, 7, 4, // front
	4, 5, 1, 1, 0, 4, // bottom
	7, 6, 2, 2, 3, 7, // top
	4, 0, 3, 3, 7, 4, // left
	5, 1, 2, 2, 6, 5, // right
}

type sceneUniforms struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// CubeScene rotates a colored cube. It carries one uniform buffer and one
// descriptor set per swapchain image so an update for frame N never
// touches memory a queued frame still reads.
type CubeScene struct {
	vulkan.BaseScene

	shaderDir string
	camera    *components.Camera
	rotation  float64

	pipeline       *vulkan.VulkanPipeline
	vertexBuffer   *vulkan.VulkanBuffer
	indexBuffer    *vulkan.VulkanBuffer
	uniformBuffers []*vulkan.VulkanBuffer

	descriptorPool   vk.DescriptorPool
	descriptorLayout vk.DescriptorSetLayout
	descriptorSets   []vk.DescriptorSet
}

func NewCubeScene(shaderDir string) *CubeScene {
	camera := components.NewCamera()
	camera.SetPosition(mgl32.Vec3{3, 3, 3})
	return &CubeScene{
		shaderDir: shaderDir,
		camera:    camera,
	}
}

func (s *CubeScene) BuildPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache, imageCount uint32) error {
	s.camera.SetAspect(context.FramebufferWidth, context.FramebufferHeight)

	vertexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), cubeVerticesToBytes(cubeVertices))
	if err != nil {
		return err
	}
	s.vertexBuffer = vertexBuffer

	indexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), indicesToBytes(cubeIndices))
	if err != nil {
		return err
	}
	s.indexBuffer = indexBuffer

	// Uniform buffers stay host visible; they are rewritten every frame.
	uniformSize := vk.DeviceSize(unsafe.Sizeof(sceneUniforms{}))
	s.uniformBuffers = make([]*vulkan.VulkanBuffer, imageCount)
	for i := range s.uniformBuffers {
		buffer, err := vulkan.BufferCreate(context, uniformSize,
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return err
		}
		s.uniformBuffers[i] = buffer
	}

	layout, err := vulkan.DescriptorSetLayoutCreate(context, []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
	})
	if err != nil {
		return err
	}
	s.descriptorLayout = layout

	pool, err := vulkan.DescriptorPoolCreate(context, []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: imageCount},
	}, imageCount)
	if err != nil {
		return err
	}
	s.descriptorPool = pool

	sets, err := vulkan.DescriptorSetsAllocate(context, pool, layout, imageCount)
	if err != nil {
		return err
	}
	s.descriptorSets = sets
	for i, set := range sets {
		vulkan.DescriptorWriteUniformBuffer(context, set, 0, s.uniformBuffers[i])
	}

	return s.buildPipeline(context, pass, cache)
}

func (s *CubeScene) ReloadPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	return s.buildPipeline(context, pass, cache)
}

func (s *CubeScene) buildPipeline(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	vertModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "cube.vert.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, vertModule)

	fragModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "cube.frag.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, fragModule)

	pipeline, err := vulkan.NewGraphicsPipeline(context, cache, &vulkan.VulkanPipelineConfig{
		Renderpass: pass,
		Stride:     uint32(unsafe.Sizeof(cubeVertex{})),
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(cubeVertex{}.pos))},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(cubeVertex{}.color))},
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

// Update advances the rotation and rewrites the uniform buffer the given
// image reads from.
func (s *CubeScene) Update(context *vulkan.VulkanContext, imageIndex uint32, deltaTime float64) error {
	s.rotation += deltaTime

	uniforms := sceneUniforms{
		Model: mgl32.HomogRotate3D(float32(s.rotation)*mgl32.DegToRad(45), mgl32.Vec3{0, 0, 1}),
		View:  s.camera.ViewMatrix(),
		Proj:  s.camera.ProjectionMatrix(),
	}
	return s.uniformBuffers[imageIndex].LoadData(context, 0, uniformsToBytes(&uniforms))
}

// ViewChanged keeps the projection in step with the swapchain extent.
func (s *CubeScene) ViewChanged(width, height uint32) {
	s.camera.SetAspect(width, height)
}

func (s *CubeScene) RecordDraw(context *vulkan.VulkanContext, commandBuffer *vulkan.VulkanCommandBuffer, imageIndex uint32) error {
	s.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{s.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, s.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(commandBuffer.Handle, vk.PipelineBindPointGraphics, s.pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{s.descriptorSets[imageIndex]}, 0, nil)
	vk.CmdDrawIndexed(commandBuffer.Handle, uint32(len(cubeIndices)), 1, 0, 0, 0)
	return nil
}

func (s *CubeScene) Cleanup(context *vulkan.VulkanContext) {
	if s.pipeline != nil {
		s.pipeline.Destroy(context)
		s.pipeline = nil
	}
	// Destroying the pool releases the sets allocated from it.
	vulkan.DescriptorPoolDestroy(context, s.descriptorPool)
	s.descriptorPool = vk.NullDescriptorPool
	s.descriptorSets = nil
	vulkan.DescriptorSetLayoutDestroy(context, s.descriptorLayout)
	s.descriptorLayout = vk.NullDescriptorSetLayout

	for _, buffer := range s.uniformBuffers {
		if buffer != nil {
			buffer.Destroy(context)
		}
	}
	s.uniformBuffers = nil

	if s.indexBuffer != nil {
		s.indexBuffer.Destroy(context)
		s.indexBuffer = nil
	}
	if s.vertexBuffer != nil {
		s.vertexBuffer.Destroy(context)
		s.vertexBuffer = nil
	}
}

func cubeVerticesToBytes(verts []cubeVertex) []byte {
	size := len(verts) * int(unsafe.Sizeof(cubeVertex{}))
	out := make([]byte, size)
	src := (*[1 << 30]byte)(unsafe.Pointer(&verts[0]))[:size:size]
	copy(out, src)
	return out
}

func uniformsToBytes(uniforms *sceneUniforms) []byte {
	size := int(unsafe.Sizeof(*uniforms))
	out := make([]byte, size)
	src := (*[1 << 30]byte)(unsafe.Pointer(uniforms))[:size:size]
	copy(out, src)
	return out
}
