package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanContext bundles the instance-wide state every Vulkan operation
// needs. It is passed explicitly to creation and destruction functions so
// ownership stays visible at each call site; nothing in this package reads
// renderer state through globals.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	Device *VulkanDevice

	// The framebuffer's current width and height, cached from the last
	// resize notification or swapchain build.
	FramebufferWidth  uint32
	FramebufferHeight uint32

	// Generation counter bumped on every resize notification. When it does
	// not match FramebufferSizeLastGeneration the swapchain no longer fits
	// the window and must be rebuilt.
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	debugMessenger vk.DebugReportCallback
}

// FindMemoryIndex returns the index of a device memory type that matches
// the type filter and has all the requested property flags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 &&
			(memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type matches filter 0x%08X with properties 0x%08X", typeFilter, propertyFlags)
}
