package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanFramebuffer binds one swapchain image view plus the shared depth
// view to the render pass. One exists per swapchain image, always as a
// complete set; the renderer never keeps a partial set alive.
type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func FramebufferCreate(
	context *VulkanContext,
	renderpass *VulkanRenderpass,
	width uint32,
	height uint32,
	attachments []vk.ImageView,
) (*VulkanFramebuffer, error) {
	framebuffer := &VulkanFramebuffer{
		Attachments: make([]vk.ImageView, len(attachments)),
		Renderpass:  renderpass,
	}
	copy(framebuffer.Attachments, attachments)

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(framebuffer.Attachments)),
		PAttachments:    framebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	framebufferCreateInfo.Deref()

	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateFramebuffer", res)
	}
	framebuffer.Handle = handle
	return framebuffer, nil
}

// FramebufferDestroy releases the framebuffer. The attachment views are
// owned by the swapchain and depth resource, not by the framebuffer.
func (vf *VulkanFramebuffer) FramebufferDestroy(context *VulkanContext) {
	if vf.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = vk.NullFramebuffer
	}
	vf.Attachments = nil
	vf.Renderpass = nil
}
