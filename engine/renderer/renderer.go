package renderer

import (
	"github.com/mnrn/ReVK/engine/platform"
	"github.com/mnrn/ReVK/engine/renderer/vulkan"
)

// Scene is what an application hands the renderer to draw. Scenes that
// also implement vulkan.SceneUpdater, vulkan.ViewChangedListener or
// vulkan.PipelineReloader get those calls as well.
type Scene = vulkan.Scene

// Renderer fronts a backend. Construct one per window.
type Renderer struct {
	backend RendererBackend
}

func New(p *platform.Platform, scene Scene, debug bool) *Renderer {
	return &Renderer{
		backend: vulkan.New(p, scene, debug),
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	return r.backend.Initialize(appName, appWidth, appHeight)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// OnResize forwards the new framebuffer size to the backend. The backend
// defers the actual swapchain rebuild to the next frame.
func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// DrawFrame renders and presents one frame. A core.ErrFrameSkipped return
// means the presentation chain was rebuilt and no image was presented;
// callers should carry on with the next frame.
func (r *Renderer) DrawFrame(deltaTime float64) error {
	return r.backend.DrawFrame(deltaTime)
}

// MarkPipelinesDirty schedules a pipeline rebuild. Safe from any goroutine.
func (r *Renderer) MarkPipelinesDirty() {
	r.backend.MarkPipelinesDirty()
}
