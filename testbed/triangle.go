package testbed

import (
	"path/filepath"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/renderer/vulkan"
)

type triangleVertex struct {
	pos   mgl32.Vec2
	color mgl32.Vec3
}

var triangleVertices = []triangleVertex{
	{pos: mgl32.Vec2{0, -0.5}, color: mgl32.Vec3{1, 0, 0}},
	{pos: mgl32.Vec2{0.5, 0.5}, color: mgl32.Vec3{0, 1, 0}},
	{pos: mgl32.Vec2{-0.5, 0.5}, color: mgl32.Vec3{0, 0, 1}},
}

var triangleIndices = []uint32{0, 1, 2}

// TriangleScene draws a single static triangle. It is the smallest
// possible exercise of the presentation chain: no uniforms, no
// descriptors, one pipeline.
type TriangleScene struct {
	vulkan.BaseScene

	shaderDir    string
	pipeline     *vulkan.VulkanPipeline
	vertexBuffer *vulkan.VulkanBuffer
	indexBuffer  *vulkan.VulkanBuffer
}

func NewTriangleScene(shaderDir string) *TriangleScene {
	return &TriangleScene{shaderDir: shaderDir}
}

func (s *TriangleScene) BuildPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache, imageCount uint32) error {
	vertexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), triangleVerticesToBytes(triangleVertices))
	if err != nil {
		return err
	}
	s.vertexBuffer = vertexBuffer

	indexBuffer, err := vulkan.BufferCreateDeviceLocal(context,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), indicesToBytes(triangleIndices))
	if err != nil {
		return err
	}
	s.indexBuffer = indexBuffer

	return s.buildPipeline(context, pass, cache)
}

func (s *TriangleScene) ReloadPipelines(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	return s.buildPipeline(context, pass, cache)
}

func (s *TriangleScene) buildPipeline(context *vulkan.VulkanContext, pass *vulkan.VulkanRenderpass, cache vk.PipelineCache) error {
	vertModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "triangle.vert.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, vertModule)

	fragModule, err := vulkan.ShaderModuleCreateFromFile(context, filepath.Join(s.shaderDir, "triangle.frag.spv"))
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, fragModule)

	pipeline, err := vulkan.NewGraphicsPipeline(context, cache, &vulkan.VulkanPipelineConfig{
		Renderpass: pass,
		Stride:     uint32(unsafe.Sizeof(triangleVertex{})),
		Attributes: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(triangleVertex{}.pos))},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(triangleVertex{}.color))},
		},
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

func (s *TriangleScene) RecordDraw(context *vulkan.VulkanContext, commandBuffer *vulkan.VulkanCommandBuffer, imageIndex uint32) error {
	s.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{s.vertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, s.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(commandBuffer.Handle, uint32(len(triangleIndices)), 1, 0, 0, 0)
	return nil
}

func (s *TriangleScene) Cleanup(context *vulkan.VulkanContext) {
	if s.pipeline != nil {
		s.pipeline.Destroy(context)
		s.pipeline = nil
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

func triangleVerticesToBytes(verts []triangleVertex) []byte {
	size := len(verts) * int(unsafe.Sizeof(triangleVertex{}))
	out := make([]byte, size)
	src := (*[1 << 30]byte)(unsafe.Pointer(&verts[0]))[:size:size]
	copy(out, src)
	return out
}

func indicesToBytes(indices []uint32) []byte {
	size := len(indices) * 4
	out := make([]byte, size)
	src := (*[1 << 30]byte)(unsafe.Pointer(&indices[0]))[:size:size]
	copy(out, src)
	return out
}
