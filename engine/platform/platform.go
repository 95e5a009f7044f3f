package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/mnrn/ReVK/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() *Platform {
	return &Platform{}
}

// Startup initializes GLFW, creates the window at the requested position
// and size, and wires the window callbacks into the engine event and input
// systems.
func (p *Platform) Startup(appName string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	if !glfw.VulkanSupported() {
		return fmt.Errorf("GLFW reports no Vulkan loader available")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(width), int(height), appName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	p.Window = window

	p.Window.SetPos(int(x), int(y))

	p.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			core.InputProcessKey(core.KeyCode(key), true)
		case glfw.Release:
			core.InputProcessKey(core.KeyCode(key), false)
		}
	})

	p.Window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: core.ResizeEventData{Width: uint32(fbWidth), Height: uint32(fbHeight)},
		})
	})

	p.Window.SetCloseCallback(func(w *glfw.Window) {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	})

	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
}

// PumpMessages processes pending window events without blocking.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// WaitMessages blocks until at least one window event arrives. Used while
// the window is minimized and there is nothing to render.
func (p *Platform) WaitMessages() {
	glfw.WaitEvents()
}

// Wake posts an empty event so a goroutine blocked in WaitMessages
// returns. Safe to call from any thread.
func (p *Platform) Wake() {
	glfw.PostEmptyEvent()
}

// FramebufferSize returns the window's framebuffer size in pixels. It can
// differ from the window size on high-DPI displays and is zero in either
// dimension while the window is minimized.
func (p *Platform) FramebufferSize() (int, int) {
	return p.Window.GetFramebufferSize()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

// GetRequiredExtensionNames returns the instance extensions GLFW needs to
// create a surface on this platform.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}
