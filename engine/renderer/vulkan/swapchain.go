package vulkan

import (
	"fmt"
	gmath "math"

	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/core"
	"github.com/mnrn/ReVK/engine/math"
)

// SurfaceStatus classifies the outcome of an acquire or present against
// the surface. Anything not representable here is a hard error.
type SurfaceStatus int

const (
	// SurfaceOK means the swapchain still matches the surface.
	SurfaceOK SurfaceStatus = iota
	// SurfaceSuboptimal means presentation succeeded but the swapchain no
	// longer matches the surface exactly. Treated the same as out of date:
	// the whole presentation chain is rebuilt.
	SurfaceSuboptimal
	// SurfaceOutOfDate means the swapchain is unusable and must be rebuilt
	// before the next frame.
	SurfaceOutOfDate
)

func (s SurfaceStatus) String() string {
	switch s {
	case SurfaceOK:
		return "ok"
	case SurfaceSuboptimal:
		return "suboptimal"
	case SurfaceOutOfDate:
		return "out of date"
	default:
		return fmt.Sprintf("SurfaceStatus(%d)", int(s))
	}
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

// VulkanSwapchain owns the swapchain handle, its images and their views.
// The depth attachment and framebuffers layered on top live with the
// renderer; they are rebuilt together with the swapchain but are not part
// of it.
type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView
}

// SwapchainCreate builds a swapchain sized to the given framebuffer
// dimensions against the current surface support info, then fetches the
// images and creates one view per image.
func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	support := &context.Device.SwapchainSupport
	if support.FormatCount == 0 || support.PresentModeCount == 0 {
		return nil, fmt.Errorf("surface reports no formats or present modes")
	}

	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
		PresentMode: choosePresentMode(support.PresentModes),
		Extent:      chooseExtent(&support.Capabilities, width, height),
	}

	imageCount := chooseImageCount(&support.Capabilities)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Image ownership crosses queue families only when presentation runs
	// on a different family than graphics.
	graphicsIndex := uint32(context.Device.GraphicsQueueIndex)
	presentIndex := uint32(context.Device.PresentQueueIndex)
	if graphicsIndex != presentIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{graphicsIndex, presentIndex}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}
	swapchainCreateInfo.Deref()

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateSwapchainKHR", res)
	}
	swapchain.Handle = handle

	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		swapchain.Destroy(context)
		return nil, vkError("vkGetSwapchainImagesKHR", res)
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		swapchain.Destroy(context)
		return nil, vkError("vkGetSwapchainImagesKHR", res)
	}

	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	for i := uint32(0); i < swapchain.ImageCount; i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		viewInfo.Deref()
		var view vk.ImageView
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
			swapchain.Destroy(context)
			return nil, vkError("vkCreateImageView", res)
		}
		swapchain.Views[i] = view
	}

	context.FramebufferWidth = swapchain.Extent.Width
	context.FramebufferHeight = swapchain.Extent.Height

	core.LogInfo("Swapchain created: %dx%d, %d images, %s present mode.",
		swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount, presentModeName(swapchain.PresentMode))
	return swapchain, nil
}

// Destroy releases the image views and the swapchain handle. The images
// themselves belong to the swapchain and go with it. The caller is
// responsible for making sure the device is idle.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	for _, view := range vs.Views {
		if view != vk.NullImageView {
			vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
	vs.ImageCount = 0
}

// Recreate replaces the swapchain with one sized to the given framebuffer
// dimensions, destroying the old views and handle first. The caller must
// already have torn down everything referencing them and requeried the
// surface support info.
func (vs *VulkanSwapchain) Recreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	vs.Destroy(context)
	return SwapchainCreate(context, width, height)
}

// AcquireNextImage asks the presentation engine for the next image,
// signaling the given semaphore once the image is ready to be rendered to.
// A SurfaceOutOfDate status means no image was acquired.
func (vs *VulkanSwapchain) AcquireNextImage(context *VulkanContext, timeoutNS uint64, imageAvailable vk.Semaphore) (uint32, SurfaceStatus, error) {
	var imageIndex uint32
	res := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailable, vk.NullFence, &imageIndex)
	switch res {
	case vk.Success:
		return imageIndex, SurfaceOK, nil
	case vk.Suboptimal:
		// The image was acquired and the semaphore will be signaled; the
		// caller still rebuilds before using it again.
		return imageIndex, SurfaceSuboptimal, nil
	case vk.ErrorOutOfDate:
		return 0, SurfaceOutOfDate, nil
	default:
		return 0, SurfaceOK, vkError("vkAcquireNextImageKHR", res)
	}
}

// Present queues the image for presentation, waiting on renderComplete.
func (vs *VulkanSwapchain) Present(context *VulkanContext, presentQueue vk.Queue, renderComplete vk.Semaphore, imageIndex uint32) (SurfaceStatus, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	presentInfo.Deref()

	res := vk.QueuePresent(presentQueue, &presentInfo)
	switch res {
	case vk.Success:
		return SurfaceOK, nil
	case vk.Suboptimal:
		return SurfaceSuboptimal, nil
	case vk.ErrorOutOfDate:
		return SurfaceOutOfDate, nil
	default:
		return SurfaceOK, vkError("vkQueuePresentKHR", res)
	}
}

// chooseSurfaceFormat prefers 8-bit BGRA with sRGB nonlinear color space
// and falls back to whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox for its low latency without tearing.
// FIFO is the only mode every driver provides, so it is the fallback.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent when the platform fixes
// it, otherwise clamps the framebuffer size into the supported range.
func chooseExtent(capabilities *vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != gmath.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  math.Clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: math.Clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// chooseImageCount requests one image beyond the minimum so the driver is
// never starved, honoring the surface maximum when it has one. A maximum
// of zero means no limit.
func chooseImageCount(capabilities *vk.SurfaceCapabilities) uint32 {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

func presentModeName(mode vk.PresentMode) string {
	switch mode {
	case vk.PresentModeImmediate:
		return "immediate"
	case vk.PresentModeMailbox:
		return "mailbox"
	case vk.PresentModeFifo:
		return "fifo"
	case vk.PresentModeFifoRelaxed:
		return "fifo relaxed"
	default:
		return fmt.Sprintf("mode %d", mode)
	}
}
