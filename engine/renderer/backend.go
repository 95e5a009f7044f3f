package renderer

// RendererBackend is the surface the application loop drives. The Vulkan
// backend is the only implementation; the interface keeps the loop free
// of graphics API types.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	DrawFrame(deltaTime float64) error
	MarkPipelinesDirty()
}
