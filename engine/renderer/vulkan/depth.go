package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanDepthResource is the depth/stencil attachment shared by every
// framebuffer of a swapchain. Its lifetime mirrors the swapchain's: it is
// destroyed and recreated on every rebuild so its extent always matches
// the swapchain images.
type VulkanDepthResource struct {
	Attachment *VulkanImage
	Format     vk.Format
	Extent     vk.Extent2D
}

// DepthResourceCreate builds a device-local depth image and view at the
// given extent using the device's detected depth format.
func DepthResourceCreate(context *VulkanContext, extent vk.Extent2D) (*VulkanDepthResource, error) {
	format := context.Device.DepthFormat
	if format == vk.FormatUndefined {
		return nil, fmt.Errorf("depth resource: device has no detected depth format")
	}

	attachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		extent.Width,
		extent.Height,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return nil, fmt.Errorf("depth resource: %w", err)
	}

	return &VulkanDepthResource{
		Attachment: attachment,
		Format:     format,
		Extent:     extent,
	}, nil
}

func (d *VulkanDepthResource) Destroy(context *VulkanContext) {
	if d == nil || d.Attachment == nil {
		return
	}
	d.Attachment.ImageDestroy(context)
	d.Attachment = nil
}
