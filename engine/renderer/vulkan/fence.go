package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanFence tracks a fence handle together with the signaled state the
// host believes it is in, so redundant waits and resets are skipped.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

// NewFence creates a fence, optionally in the signaled state. Fences that
// gate command buffer reuse start signaled so the first frame does not
// wait on work that was never submitted.
func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	fenceCreateInfo.Deref()

	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vkError("vkCreateFence", res)
	}
	fence.Handle = handle
	return fence, nil
}

// Wait blocks until the fence signals or the timeout expires. Returns true
// when the fence is signaled. An already signaled fence returns
// immediately without calling into the driver.
func (f *VulkanFence) Wait(context *VulkanContext, timeoutNS uint64) (bool, error) {
	if f.IsSignaled {
		return true, nil
	}

	res := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, timeoutNS)
	switch res {
	case vk.Success:
		f.IsSignaled = true
		return true, nil
	case vk.Timeout:
		return false, nil
	default:
		return false, vkError("vkWaitForFences", res)
	}
}

// Reset returns a signaled fence to the unsignaled state.
func (f *VulkanFence) Reset(context *VulkanContext) error {
	if !f.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}); res != vk.Success {
		return vkError("vkResetFences", res)
	}
	f.IsSignaled = false
	return nil
}

func (f *VulkanFence) Destroy(context *VulkanContext) {
	if f.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, f.Handle, context.Allocator)
		f.Handle = vk.NullFence
	}
	f.IsSignaled = false
}
