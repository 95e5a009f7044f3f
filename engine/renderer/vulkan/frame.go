package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/mnrn/ReVK/engine/core"
)

// FrameState is where the frame protocol currently stands. With one frame
// in flight the machine walks Idle, Acquiring, Recording, Submitted,
// Presenting and back to Idle every frame; Rebuilding is entered from
// Acquiring or Presenting whenever the surface reports the swapchain
// stale.
type FrameState int

const (
	FrameStateIdle FrameState = iota
	FrameStateAcquiring
	FrameStateRecording
	FrameStateSubmitted
	FrameStatePresenting
	FrameStateRebuilding
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "idle"
	case FrameStateAcquiring:
		return "acquiring"
	case FrameStateRecording:
		return "recording"
	case FrameStateSubmitted:
		return "submitted"
	case FrameStatePresenting:
		return "presenting"
	case FrameStateRebuilding:
		return "rebuilding"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// frameOps is the GPU boundary of the frame protocol. The renderer
// implements it against the real device; tests drive the state machine
// with scripted outcomes instead.
type frameOps interface {
	// acquireNextImage asks for the next swapchain image, signaling
	// imageAvailable when the image is ready.
	acquireNextImage(imageAvailable vk.Semaphore) (uint32, SurfaceStatus, error)
	// recordFrame prepares per-image state for the acquired image and
	// re-records command buffers if they went stale.
	recordFrame(imageIndex uint32, deltaTime float64) error
	// submitFrame waits for the image's fence, resets it, and submits the
	// image's command buffer gated on the two semaphores.
	submitFrame(imageIndex uint32, imageAvailable, renderComplete vk.Semaphore, fence *VulkanFence) error
	// presentFrame hands the image to the presentation engine.
	presentFrame(imageIndex uint32, renderComplete vk.Semaphore) (SurfaceStatus, error)
	// waitQueueIdle blocks until the presentation queue drains, which is
	// what keeps exactly one frame in flight.
	waitQueueIdle() error
	// rebuildResources runs the full swapchain rebuild protocol, including
	// its own device-idle wait and sync object reset.
	rebuildResources() error
}

// FrameSynchronizer owns the per-swapchain synchronization primitives and
// drives the frame protocol over them. One semaphore pair orders the GPU
// within a frame; one signaled fence per swapchain image gates command
// buffer reuse; a queue-idle wait at frame end keeps a single frame in
// flight.
type FrameSynchronizer struct {
	ImageAvailable vk.Semaphore
	RenderComplete vk.Semaphore
	InFlight       []*VulkanFence

	// Index of the most recently acquired swapchain image.
	CurrentImage uint32

	state         FrameState
	resizePending bool
}

func NewFrameSynchronizer(context *VulkanContext, imageCount uint32) (*FrameSynchronizer, error) {
	fs := &FrameSynchronizer{
		state: FrameStateIdle,
	}
	if err := fs.ResetImages(context, imageCount); err != nil {
		fs.Destroy(context)
		return nil, err
	}
	return fs, nil
}

// ResetImages recreates the semaphore pair and the per-image fences for a
// new swapchain generation of imageCount images. Recreating the semaphores
// discards any signal left by an acquire whose frame was abandoned. The
// device must be idle.
func (fs *FrameSynchronizer) ResetImages(context *VulkanContext, imageCount uint32) error {
	fs.destroySyncObjects(context)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	semaphoreCreateInfo.Deref()

	var imageAvailable vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &imageAvailable); res != vk.Success {
		return vkError("vkCreateSemaphore", res)
	}
	fs.ImageAvailable = imageAvailable

	var renderComplete vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &renderComplete); res != vk.Success {
		return vkError("vkCreateSemaphore", res)
	}
	fs.RenderComplete = renderComplete

	// Fences start signaled so the first use of each command buffer does
	// not wait on work that was never submitted.
	fs.InFlight = make([]*VulkanFence, imageCount)
	for i := range fs.InFlight {
		fence, err := NewFence(context, true)
		if err != nil {
			return err
		}
		fs.InFlight[i] = fence
	}

	fs.CurrentImage = 0
	return nil
}

func (fs *FrameSynchronizer) Destroy(context *VulkanContext) {
	fs.destroySyncObjects(context)
}

func (fs *FrameSynchronizer) destroySyncObjects(context *VulkanContext) {
	if fs.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, fs.ImageAvailable, context.Allocator)
		fs.ImageAvailable = vk.NullSemaphore
	}
	if fs.RenderComplete != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, fs.RenderComplete, context.Allocator)
		fs.RenderComplete = vk.NullSemaphore
	}
	for _, fence := range fs.InFlight {
		if fence != nil {
			fence.Destroy(context)
		}
	}
	fs.InFlight = nil
}

func (fs *FrameSynchronizer) State() FrameState {
	return fs.state
}

// NotifyResize flags that the windowing layer reported a new framebuffer
// size. The flag is consumed after the next successful present, or
// together with any surface-triggered rebuild.
func (fs *FrameSynchronizer) NotifyResize() {
	fs.resizePending = true
}

// DrawFrame runs one frame of the protocol: acquire, record, submit,
// present, then drain the queue. A stale surface at acquire drops the
// frame, rebuilds and returns core.ErrFrameSkipped; a stale surface or a
// pending resize at present rebuilds after the frame's work is already
// submitted. Any other failure is returned as is and is fatal to the
// caller.
func (fs *FrameSynchronizer) DrawFrame(ops frameOps, deltaTime float64) error {
	fs.state = FrameStateAcquiring
	imageIndex, status, err := fs.acquire(ops)
	if err != nil {
		fs.state = FrameStateIdle
		return err
	}
	if status != SurfaceOK {
		if err := fs.rebuild(ops); err != nil {
			return err
		}
		return core.ErrFrameSkipped
	}
	fs.CurrentImage = imageIndex

	fs.state = FrameStateRecording
	if err := ops.recordFrame(imageIndex, deltaTime); err != nil {
		fs.state = FrameStateIdle
		return err
	}

	fs.state = FrameStateSubmitted
	if err := ops.submitFrame(imageIndex, fs.ImageAvailable, fs.RenderComplete, fs.InFlight[imageIndex]); err != nil {
		fs.state = FrameStateIdle
		return err
	}

	fs.state = FrameStatePresenting
	status, err = ops.presentFrame(imageIndex, fs.RenderComplete)
	if err != nil {
		fs.state = FrameStateIdle
		return err
	}
	if status != SurfaceOK || fs.resizePending {
		// The frame's work was submitted; only the chain is stale.
		return fs.rebuild(ops)
	}

	if err := ops.waitQueueIdle(); err != nil {
		fs.state = FrameStateIdle
		return err
	}

	fs.state = FrameStateIdle
	return nil
}

func (fs *FrameSynchronizer) acquire(ops frameOps) (uint32, SurfaceStatus, error) {
	imageIndex, status, err := ops.acquireNextImage(fs.ImageAvailable)
	if err != nil {
		return 0, SurfaceOK, fmt.Errorf("acquire next image: %w", err)
	}
	return imageIndex, status, nil
}

func (fs *FrameSynchronizer) rebuild(ops frameOps) error {
	fs.state = FrameStateRebuilding
	fs.resizePending = false
	if err := ops.rebuildResources(); err != nil {
		fs.state = FrameStateIdle
		return fmt.Errorf("rebuild presentation resources: %w", err)
	}
	fs.state = FrameStateIdle
	return nil
}
