package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ApplicationConfig drives window placement, scene selection and the
// ambient toggles. It is read from a TOML file; zero values fall back to
// the defaults below so a partial file is fine.
type ApplicationConfig struct {
	// The application name used for the window title.
	Name string `toml:"name"`
	// Window starting position, if the window system honors it.
	StartPosX uint32 `toml:"pos_x"`
	StartPosY uint32 `toml:"pos_y"`
	// Window starting size.
	StartWidth  uint32 `toml:"width"`
	StartHeight uint32 `toml:"height"`
	// Which testbed scene to run.
	Scene string `toml:"scene"`
	// Log level name: debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// Enables the Vulkan validation layer and debug callback.
	Validation bool `toml:"validation"`
	// Directory holding compiled shaders, watched for hot reload.
	ShaderDir string `toml:"shader_dir"`
	// Disables the shader watcher when false.
	WatchShaders bool `toml:"watch_shaders"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:         "ReVK",
		StartPosX:    100,
		StartPosY:    100,
		StartWidth:   1280,
		StartHeight:  720,
		Scene:        "triangle",
		LogLevel:     "info",
		Validation:   false,
		ShaderDir:    "assets/shaders",
		WatchShaders: true,
	}
}

// LoadConfig reads a TOML config file over the defaults. A missing file is
// not an error; the defaults run as-is.
func LoadConfig(path string) (*ApplicationConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if config.StartWidth == 0 || config.StartHeight == 0 {
		return nil, fmt.Errorf("config %s: window size must be non-zero", path)
	}
	return config, nil
}
