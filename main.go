/*
ReVK opens a window, drives the Vulkan presentation loop and draws one of
the built-in test scenes. Configuration comes from a TOML file; flags
override it.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnrn/ReVK/engine"
	"github.com/mnrn/ReVK/engine/core"
	"github.com/mnrn/ReVK/testbed"
)

func main() {
	configPath := flag.String("config", "revk.toml", "path to the configuration file")
	sceneName := flag.String("scene", "", "scene to run, overrides the configuration")
	validation := flag.Bool("validation", false, "enable Vulkan validation layers")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("Bad configuration: %s", err.Error())
	}
	if *sceneName != "" {
		config.Scene = *sceneName
	}
	if *validation {
		config.Validation = true
	}

	scene, err := testbed.NewScene(config.Scene, config.ShaderDir)
	if err != nil {
		core.LogFatal("%s", err.Error())
	}

	app, err := engine.New(config, scene)
	if err != nil {
		core.LogFatal("Application setup failed: %s", err.Error())
	}

	if err := app.Initialize(); err != nil {
		core.LogFatal("Initialization failed: %s", err.Error())
	}

	// Capture termination signals so the window and device still shut
	// down in order.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		app.RequestQuit()
	}()

	runErr := app.Run()
	if err := app.Shutdown(); err != nil {
		core.LogError("Shutdown: %s", err.Error())
	}
	if runErr != nil {
		os.Exit(1)
	}
}
