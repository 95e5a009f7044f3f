package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/mnrn/ReVK/engine/assets"
	"github.com/mnrn/ReVK/engine/core"
	"github.com/mnrn/ReVK/engine/platform"
	"github.com/mnrn/ReVK/engine/renderer"
)

// How often the running FPS average goes to the log, in seconds.
const metricsLogInterval = 5.0

// Application ties the platform window, the renderer and the core systems
// into one main loop. Everything except RequestQuit runs on the main
// thread.
type Application struct {
	config   *ApplicationConfig
	platform *platform.Platform
	renderer *renderer.Renderer
	watcher  *assets.ShaderWatcher

	clock       *core.Clock
	lastTime    float64
	metricsDue  float64
	isRunning   bool
	isSuspended bool
	quit        atomic.Bool

	width  uint32
	height uint32
}

func New(config *ApplicationConfig, scene renderer.Scene) (*Application, error) {
	if scene == nil {
		return nil, fmt.Errorf("application needs a scene")
	}
	if err := core.SetLogLevel(config.LogLevel); err != nil {
		return nil, err
	}

	p := platform.New()
	app := &Application{
		config:   config,
		platform: p,
		renderer: renderer.New(p, scene, config.Validation),
		clock:    core.NewClock(),
		width:    config.StartWidth,
		height:   config.StartHeight,
	}
	return app, nil
}

func (app *Application) Initialize() error {
	core.InputInitialize()
	core.EventInitialize()
	core.MetricsInitialize()

	if err := core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, app.onQuit); err != nil {
		return err
	}
	if err := core.EventRegister(core.EVENT_CODE_KEY_PRESSED, app.onKey); err != nil {
		return err
	}
	if err := core.EventRegister(core.EVENT_CODE_RESIZED, app.onResized); err != nil {
		return err
	}

	if err := app.platform.Startup(app.config.Name,
		app.config.StartPosX, app.config.StartPosY,
		app.config.StartWidth, app.config.StartHeight); err != nil {
		return err
	}

	if err := app.renderer.Initialize(app.config.Name, app.width, app.height); err != nil {
		return err
	}

	if app.config.WatchShaders {
		watcher, err := assets.NewShaderWatcher(app.config.ShaderDir, func(string) {
			app.renderer.MarkPipelinesDirty()
		})
		if err != nil {
			// The watcher is a convenience; run without it.
			core.LogWarn("Shader watcher disabled: %s", err.Error())
		} else {
			app.watcher = watcher
		}
	}

	app.isRunning = true
	return nil
}

// Run drives the main loop until the window closes, ESC is pressed or
// RequestQuit is called. It owns the calling goroutine.
func (app *Application) Run() error {
	app.clock.Start()
	app.clock.Update()
	app.lastTime = app.clock.Elapsed()

	for app.isRunning {
		app.platform.PumpMessages()
		if app.platform.ShouldClose() || app.quit.Load() {
			app.isRunning = false
			break
		}

		if app.isSuspended {
			// Minimized. Block on the next window event instead of spinning,
			// and drop the blocked time so the next delta stays sane.
			app.platform.WaitMessages()
			app.clock.Update()
			app.lastTime = app.clock.Elapsed()
			continue
		}

		app.clock.Update()
		currentTime := app.clock.Elapsed()
		delta := currentTime - app.lastTime
		app.lastTime = currentTime

		if core.InputWasKeyPressed(core.KEY_F5) {
			core.LogInfo("Manual pipeline reload requested.")
			app.renderer.MarkPipelinesDirty()
		}

		if err := app.renderer.DrawFrame(delta); err != nil {
			if err == core.ErrFrameSkipped {
				core.LogDebug("Frame skipped: %s", err.Error())
			} else {
				core.LogError("Draw frame failed, shutting down: %s", err.Error())
				app.isRunning = false
				return err
			}
		}

		core.MetricsUpdate(delta)
		app.metricsDue += delta
		if app.metricsDue >= metricsLogInterval {
			app.metricsDue = 0
			core.LogInfo("%.1f fps (%.2f ms), frame %d", core.MetricsFPS(), core.MetricsFrameTime(), core.MetricsFrame())
		}

		// Input state rolls over last so handlers above see this frame's
		// edges.
		core.InputUpdate()
	}

	return nil
}

func (app *Application) Shutdown() error {
	if app.watcher != nil {
		app.watcher.Close()
		app.watcher = nil
	}
	if err := app.renderer.Shutdown(); err != nil {
		core.LogError("Renderer shutdown: %s", err.Error())
	}
	app.platform.Shutdown()
	core.EventShutdown()
	core.InputShutdown()
	core.LogInfo("Application shut down cleanly.")
	return nil
}

// RequestQuit asks the main loop to exit after the current frame. Safe to
// call from any goroutine, including signal handlers. The wake-up kicks
// the loop out of WaitMessages when the window is minimized.
func (app *Application) RequestQuit() {
	app.quit.Store(true)
	app.platform.Wake()
}

func (app *Application) onQuit(core.EventContext) bool {
	core.LogInfo("Quit requested, shutting down.")
	app.isRunning = false
	return true
}

func (app *Application) onKey(ctx core.EventContext) bool {
	data, ok := ctx.Data.(core.KeyEventData)
	if !ok {
		core.LogError("Key event carried unexpected payload %T.", ctx.Data)
		return false
	}
	if data.Key == core.KEY_ESCAPE {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return false
}

func (app *Application) onResized(ctx core.EventContext) bool {
	data, ok := ctx.Data.(core.ResizeEventData)
	if !ok {
		core.LogError("Resize event carried unexpected payload %T.", ctx.Data)
		return false
	}
	if data.Width == app.width && data.Height == app.height {
		return false
	}
	app.width = data.Width
	app.height = data.Height

	if data.Width == 0 || data.Height == 0 {
		core.LogInfo("Window minimized, suspending.")
		app.isSuspended = true
		return true
	}
	if app.isSuspended {
		core.LogInfo("Window restored, resuming.")
		app.isSuspended = false
	}
	if err := app.renderer.OnResize(data.Width, data.Height); err != nil {
		core.LogError("Resize handling failed: %s", err.Error())
	}
	return true
}
