package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Scene is what the renderer runs. It is handed in at construction and
// called back at three well-defined points of the renderer's life; the
// renderer owns everything else about presentation, so a scene never
// touches the swapchain, submission or synchronization.
type Scene interface {
	// BuildRenderPass creates the render pass frames are recorded into.
	// Called once at startup with the swapchain's color format; the pass
	// survives swapchain rebuilds, since formats do not change with window
	// size. Embed BaseScene for the standard color+depth pass.
	BuildRenderPass(context *VulkanContext, colorFormat vk.Format) (*VulkanRenderpass, error)

	// BuildPipelines creates the scene's pipelines and GPU resources.
	// imageCount is the number of swapchain images, for per-image
	// resources such as uniform buffers.
	BuildPipelines(context *VulkanContext, pass *VulkanRenderpass, cache vk.PipelineCache, imageCount uint32) error

	// RecordDraw fills one command buffer with the scene's draw commands.
	// The render pass is already begun on the buffer and viewport and
	// scissor are set; the scene must not submit or present.
	RecordDraw(context *VulkanContext, commandBuffer *VulkanCommandBuffer, imageIndex uint32) error

	// Cleanup releases everything the scene created. The device is idle
	// when it runs.
	Cleanup(context *VulkanContext)
}

// SceneUpdater is implemented by scenes that mutate per-image state
// between acquiring an image and submitting its command buffer, typically
// to write uniform buffers.
type SceneUpdater interface {
	Update(context *VulkanContext, imageIndex uint32, deltaTime float64) error
}

// ViewChangedListener is implemented by scenes that care about the
// framebuffer size, typically to fix a projection's aspect ratio. Called
// after every swapchain rebuild.
type ViewChangedListener interface {
	ViewChanged(width, height uint32)
}

// PipelineReloader is implemented by scenes that support shader hot
// reload. The renderer calls it with an idle device after shader binaries
// change on disk; the scene replaces its pipelines and the renderer then
// re-records all command buffers.
type PipelineReloader interface {
	ReloadPipelines(context *VulkanContext, pass *VulkanRenderpass, cache vk.PipelineCache) error
}

// BaseScene is the embeddable default for scenes that have no special
// render pass needs. It clears to the engine's dark blue and uses the
// device depth format.
type BaseScene struct{}

func (BaseScene) BuildRenderPass(context *VulkanContext, colorFormat vk.Format) (*VulkanRenderpass, error) {
	return RenderpassCreate(
		context,
		colorFormat,
		context.Device.DepthFormat,
		float32(context.FramebufferWidth), float32(context.FramebufferHeight),
		0.0, 0.0, 0.2, 1.0,
		1.0,
		0,
	)
}
