package vulkan

import (
	"fmt"
	gmath "math"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/core"
	"github.com/mnrn/ReVK/engine/platform"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// VulkanRenderer owns the whole presentation chain: instance, device,
// swapchain, depth resource, render pass, framebuffers, command buffers
// and the frame synchronizer. Everything runs on the main thread; the only
// cross-thread entry point is MarkPipelinesDirty.
type VulkanRenderer struct {
	platform *platform.Platform
	scene    Scene
	context  *VulkanContext

	swapchain      *VulkanSwapchain
	depth          *VulkanDepthResource
	mainRenderpass *VulkanRenderpass
	framebuffers   []*VulkanFramebuffer
	commandBuffers []*VulkanCommandBuffer
	frame          *FrameSynchronizer
	pipelineCache  vk.PipelineCache

	// Framebuffer size from the most recent resize notification. Swapchain
	// creation consumes these; they may run ahead of the live swapchain
	// extent between a resize and the rebuild that follows.
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	frameNumber    uint64
	pipelinesDirty atomic.Bool
	debug          bool
}

func New(p *platform.Platform, scene Scene, debug bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		scene:    scene,
		debug:    debug,
		context: &VulkanContext{
			Device: &VulkanDevice{
				GraphicsQueueIndex: -1,
				PresentQueueIndex:  -1,
				TransferQueueIndex: -1,
			},
		},
	}
}

// Initialize brings up the entire chain in dependency order. Any failure
// is fatal; the caller shuts the application down.
func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	vr.cachedFramebufferWidth = appWidth
	vr.cachedFramebufferHeight = appHeight
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil, no Vulkan loader found")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan: %w", err)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		EngineVersion:      uint32(vk.MakeVersion(0, 1, 0)),
		PEngineName:        VulkanSafeString("ReVK Engine"),
	}
	appInfo.Deref()

	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		// MoltenVK is a non-conformant implementation and only shows up
		// when portability enumeration is requested.
		requiredExtensions = appendUnique(requiredExtensions, "VK_KHR_portability_enumeration")
		requiredExtensions = appendUnique(requiredExtensions, "VK_KHR_get_physical_device_properties2")
	}
	if vr.debug {
		requiredExtensions = appendUnique(requiredExtensions, "VK_EXT_debug_report")
	}
	core.LogDebug("Required instance extensions: %v", requiredExtensions)

	var requiredLayers []string
	if vr.debug {
		available, err := availableLayerNames()
		if err != nil {
			return err
		}
		found := false
		for _, name := range available {
			if name == validationLayerName {
				found = true
				break
			}
		}
		if found {
			requiredLayers = append(requiredLayers, validationLayerName)
		} else {
			core.LogWarn("Validation requested but %s is not installed; continuing without it.", validationLayerName)
		}
	}

	instanceCreateInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredExtensions),
		EnabledLayerCount:       uint32(len(requiredLayers)),
		PpEnabledLayerNames:     VulkanSafeStrings(requiredLayers),
	}
	if runtime.GOOS == "darwin" {
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR, not exposed as a
		// named constant by the bindings.
		instanceCreateInfo.Flags |= 1
	}
	instanceCreateInfo.Deref()

	var instance vk.Instance
	if res := vk.CreateInstance(&instanceCreateInfo, vr.context.Allocator, &instance); res != vk.Success {
		return vkError("vkCreateInstance", res)
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return fmt.Errorf("failed to initialize vulkan instance: %w", err)
	}
	core.LogInfo("Vulkan instance created.")

	if vr.debug && len(requiredLayers) > 0 {
		if err := vr.createDebugMessenger(); err != nil {
			return err
		}
	}

	if err := vr.createVulkanSurface(); err != nil {
		return err
	}
	core.LogInfo("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	swapchain, err := SwapchainCreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight)
	if err != nil {
		return err
	}
	vr.swapchain = swapchain

	renderpass, err := vr.scene.BuildRenderPass(vr.context, vr.swapchain.ImageFormat.Format)
	if err != nil {
		return fmt.Errorf("scene render pass: %w", err)
	}
	vr.mainRenderpass = renderpass
	core.LogInfo("Renderpass created.")

	depth, err := DepthResourceCreate(vr.context, vr.swapchain.Extent)
	if err != nil {
		return err
	}
	vr.depth = depth

	cache, err := PipelineCacheCreate(vr.context)
	if err != nil {
		return err
	}
	vr.pipelineCache = cache

	if err := vr.scene.BuildPipelines(vr.context, vr.mainRenderpass, vr.pipelineCache, vr.swapchain.ImageCount); err != nil {
		return fmt.Errorf("scene pipelines: %w", err)
	}
	core.LogInfo("Scene pipelines built.")

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	core.LogInfo("Framebuffers created.")

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	core.LogInfo("Command buffers created.")

	frame, err := NewFrameSynchronizer(vr.context, vr.swapchain.ImageCount)
	if err != nil {
		return err
	}
	vr.frame = frame

	if err := vr.recordAllCommandBuffers(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

// Shutdown tears the chain down in reverse dependency order and reports
// any resource the tracker believes is still alive.
func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device != nil && vr.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	}

	if vr.frame != nil {
		vr.frame.Destroy(vr.context)
		vr.frame = nil
	}
	vr.freeCommandBuffers()
	vr.destroyFramebuffers()

	if vr.scene != nil {
		vr.scene.Cleanup(vr.context)
	}

	PipelineCacheDestroy(vr.context, vr.pipelineCache)
	vr.pipelineCache = vk.NullPipelineCache

	if vr.mainRenderpass != nil {
		vr.mainRenderpass.RenderpassDestroy(vr.context)
		vr.mainRenderpass = nil
	}
	if vr.depth != nil {
		vr.depth.Destroy(vr.context)
		vr.depth = nil
	}
	if vr.swapchain != nil {
		vr.swapchain.Destroy(vr.context)
		vr.swapchain = nil
	}

	DeviceDestroy(vr.context)

	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}
	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, nil)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}
	if vr.context.Instance != nil {
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}

	if leaked := core.IdentifierLeaked(); len(leaked) > 0 {
		core.LogWarn("%d GPU resources were never released:", len(leaked))
		for _, name := range leaked {
			core.LogWarn("  leaked: %s", name)
		}
	}

	core.LogInfo("Vulkan renderer shut down.")
	return nil
}

// Resized records the new framebuffer size and flags the frame
// synchronizer. The actual rebuild happens inside the frame protocol.
func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++
	if vr.frame != nil {
		vr.frame.NotifyResize()
	}
	core.LogDebug("Renderer resized to %dx%d (generation %d).", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

// DrawFrame runs one frame through the synchronizer. Returns
// core.ErrFrameSkipped when the frame was dropped for a rebuild.
func (vr *VulkanRenderer) DrawFrame(deltaTime float64) error {
	err := vr.frame.DrawFrame(vr, deltaTime)
	if err == nil {
		vr.frameNumber++
	}
	return err
}

// MarkPipelinesDirty requests a pipeline rebuild before the next frame.
// Safe to call from any goroutine; the shader watcher calls it.
func (vr *VulkanRenderer) MarkPipelinesDirty() {
	vr.pipelinesDirty.Store(true)
}

// FrameNumber returns how many frames have been presented since startup.
func (vr *VulkanRenderer) FrameNumber() uint64 {
	return vr.frameNumber
}

// frameOps implementation. These run on the main thread only.

func (vr *VulkanRenderer) acquireNextImage(imageAvailable vk.Semaphore) (uint32, SurfaceStatus, error) {
	return vr.swapchain.AcquireNextImage(vr.context, gmath.MaxUint64, imageAvailable)
}

func (vr *VulkanRenderer) recordFrame(imageIndex uint32, deltaTime float64) error {
	if vr.pipelinesDirty.Swap(false) {
		if reloader, ok := vr.scene.(PipelineReloader); ok {
			core.LogInfo("Shader change detected, rebuilding pipelines.")
			if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
				return vkError("vkDeviceWaitIdle", res)
			}
			if err := reloader.ReloadPipelines(vr.context, vr.mainRenderpass, vr.pipelineCache); err != nil {
				return fmt.Errorf("pipeline reload: %w", err)
			}
			if err := vr.recordAllCommandBuffers(); err != nil {
				return err
			}
		} else {
			core.LogDebug("Shader change ignored: scene does not support pipeline reload.")
		}
	}

	if updater, ok := vr.scene.(SceneUpdater); ok {
		return updater.Update(vr.context, imageIndex, deltaTime)
	}
	return nil
}

func (vr *VulkanRenderer) submitFrame(imageIndex uint32, imageAvailable, renderComplete vk.Semaphore, fence *VulkanFence) error {
	// The fence gates reuse of this image's command buffer. With the
	// queue-idle wait after present it is signaled almost always; the wait
	// is here so the protocol stays correct if that coarse wait ever goes
	// away.
	signaled, err := fence.Wait(vr.context, gmath.MaxUint64)
	if err != nil {
		return err
	}
	if !signaled {
		return fmt.Errorf("command buffer fence for image %d never signaled", imageIndex)
	}
	if err := fence.Reset(vr.context); err != nil {
		return err
	}

	commandBuffer := vr.commandBuffers[imageIndex]
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{imageAvailable},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{renderComplete},
		// Writes to the color attachment hold until the image is actually
		// available; earlier pipeline stages run regardless.
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}
	submitInfo.Deref()

	if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		return vkError("vkQueueSubmit", res)
	}
	commandBuffer.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) presentFrame(imageIndex uint32, renderComplete vk.Semaphore) (SurfaceStatus, error) {
	return vr.swapchain.Present(vr.context, vr.context.Device.PresentQueue, renderComplete, imageIndex)
}

func (vr *VulkanRenderer) waitQueueIdle() error {
	if res := vk.QueueWaitIdle(vr.context.Device.PresentQueue); res != vk.Success {
		return vkError("vkQueueWaitIdle", res)
	}
	return nil
}

// rebuildResources runs the full rebuild protocol: wait for a usable
// framebuffer, drain the device, requery surface support, then tear down
// and recreate everything that depends on the swapchain, in dependency
// order, and re-record all command buffers.
func (vr *VulkanRenderer) rebuildResources() error {
	width, height := waitForValidFramebuffer(vr.platform.FramebufferSize, vr.platform.WaitMessages)
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height

	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
		return vkError("vkDeviceWaitIdle", res)
	}

	// Surface capabilities move with the window; requery before sizing.
	if err := DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport); err != nil {
		return err
	}
	if err := DeviceDetectDepthFormat(vr.context.Device); err != nil {
		return err
	}

	oldImageCount := vr.swapchain.ImageCount

	// Framebuffers reference swapchain and depth views, so they go first.
	vr.destroyFramebuffers()
	vr.depth.Destroy(vr.context)

	swapchain, err := vr.swapchain.Recreate(vr.context, width, height)
	if err != nil {
		return err
	}
	vr.swapchain = swapchain

	depth, err := DepthResourceCreate(vr.context, vr.swapchain.Extent)
	if err != nil {
		return err
	}
	vr.depth = depth

	vr.mainRenderpass.SetRenderArea(float32(vr.swapchain.Extent.Width), float32(vr.swapchain.Extent.Height))
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	vr.freeCommandBuffers()
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	if err := vr.frame.ResetImages(vr.context, vr.swapchain.ImageCount); err != nil {
		return err
	}

	if vr.swapchain.ImageCount != oldImageCount {
		// Scene per-image resources are sized at build time; a changed
		// image count would leave them short.
		core.LogWarn("Swapchain image count changed from %d to %d across rebuild.", oldImageCount, vr.swapchain.ImageCount)
	}

	if err := vr.recordAllCommandBuffers(); err != nil {
		return err
	}

	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
		return vkError("vkDeviceWaitIdle", res)
	}

	if listener, ok := vr.scene.(ViewChangedListener); ok {
		listener.ViewChanged(vr.swapchain.Extent.Width, vr.swapchain.Extent.Height)
	}

	core.LogInfo("Presentation resources rebuilt at %dx%d.", vr.swapchain.Extent.Width, vr.swapchain.Extent.Height)
	return nil
}

// waitForValidFramebuffer blocks until the framebuffer reports non-zero
// area, processing window events while it waits. A minimized window
// reports zero and must not drive resource creation.
func waitForValidFramebuffer(size func() (int, int), wait func()) (uint32, uint32) {
	width, height := size()
	for width == 0 || height == 0 {
		wait()
		width, height = size()
	}
	return uint32(width), uint32(height)
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	framebuffers := make([]*VulkanFramebuffer, vr.swapchain.ImageCount)
	for i := uint32(0); i < vr.swapchain.ImageCount; i++ {
		attachments := []vk.ImageView{
			vr.swapchain.Views[i],
			vr.depth.Attachment.View,
		}
		framebuffer, err := FramebufferCreate(
			vr.context,
			vr.mainRenderpass,
			vr.swapchain.Extent.Width,
			vr.swapchain.Extent.Height,
			attachments,
		)
		if err != nil {
			// Never keep a partial set.
			for _, fb := range framebuffers {
				if fb != nil {
					fb.FramebufferDestroy(vr.context)
				}
			}
			return err
		}
		framebuffers[i] = framebuffer
	}
	vr.framebuffers = framebuffers
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	for _, framebuffer := range vr.framebuffers {
		if framebuffer != nil {
			framebuffer.FramebufferDestroy(vr.context)
		}
	}
	vr.framebuffers = nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	commandBuffers := make([]*VulkanCommandBuffer, vr.swapchain.ImageCount)
	for i := range commandBuffers {
		commandBuffer, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		commandBuffers[i] = commandBuffer
	}
	vr.commandBuffers = commandBuffers
	return nil
}

func (vr *VulkanRenderer) freeCommandBuffers() {
	for _, commandBuffer := range vr.commandBuffers {
		if commandBuffer != nil {
			commandBuffer.Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.commandBuffers = nil
}

// recordAllCommandBuffers records the scene's draw commands once per
// swapchain image. Command buffers stay static between structural changes;
// per-frame animation goes through uniform updates instead.
func (vr *VulkanRenderer) recordAllCommandBuffers() error {
	for i := range vr.commandBuffers {
		commandBuffer := vr.commandBuffers[i]
		commandBuffer.Reset()
		if err := commandBuffer.Begin(false, false, false); err != nil {
			return err
		}

		viewport := vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(vr.swapchain.Extent.Width),
			Height:   float32(vr.swapchain.Extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		}
		viewport.Deref()
		scissor := vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vr.swapchain.Extent,
		}
		scissor.Deref()
		vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
		vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

		vr.mainRenderpass.RenderpassBegin(commandBuffer, vr.framebuffers[i].Handle)
		if err := vr.scene.RecordDraw(vr.context, commandBuffer, uint32(i)); err != nil {
			return fmt.Errorf("scene draw for image %d: %w", i, err)
		}
		vr.mainRenderpass.RenderpassEnd(commandBuffer)

		if err := commandBuffer.End(); err != nil {
			return err
		}
	}
	return nil
}

func (vr *VulkanRenderer) createVulkanSurface() error {
	surfPtr, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		return fmt.Errorf("failed to create window surface: %w", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surfPtr)
	return nil
}

func (vr *VulkanRenderer) createDebugMessenger() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}
	debugCreateInfo.Deref()

	var callback vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &callback); res != vk.Success {
		return vkError("vkCreateDebugReportCallbackEXT", res)
	}
	vr.context.debugMessenger = callback
	core.LogInfo("Vulkan debug messenger created.")
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
	location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[%s] perf: %s", pLayerPrefix, pMessage)
	default:
		core.LogInfo("[%s] %s", pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}

func availableLayerNames() ([]string, error) {
	var availableLayerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
		return nil, vkError("vkEnumerateInstanceLayerProperties", res)
	}
	availableLayers := make([]vk.LayerProperties, availableLayerCount)
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
		return nil, vkError("vkEnumerateInstanceLayerProperties", res)
	}

	names := make([]string, 0, availableLayerCount)
	for i := range availableLayers {
		availableLayers[i].Deref()
		names = append(names, vkString(availableLayers[i].LayerName[:]))
	}
	return names, nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
