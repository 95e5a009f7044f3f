package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revk.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := DefaultConfig()
	if *config != *want {
		t.Errorf("LoadConfig() = %+v, want defaults %+v", config, want)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
scene = "cube"
width = 1920
height = 1080
watch_shaders = false
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Scene != "cube" {
		t.Errorf("Scene = %q, want %q", config.Scene, "cube")
	}
	if config.StartWidth != 1920 || config.StartHeight != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", config.StartWidth, config.StartHeight)
	}
	if config.WatchShaders {
		t.Error("WatchShaders = true, want false")
	}
	// Everything the file does not mention stays at its default.
	defaults := DefaultConfig()
	if config.Name != defaults.Name {
		t.Errorf("Name = %q, want default %q", config.Name, defaults.Name)
	}
	if config.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q, want default %q", config.LogLevel, defaults.LogLevel)
	}
	if config.ShaderDir != defaults.ShaderDir {
		t.Errorf("ShaderDir = %q, want default %q", config.ShaderDir, defaults.ShaderDir)
	}
}

func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `scene = [unterminated`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() on malformed TOML returned no error")
	}
}

func TestLoadConfigRejectsZeroWindowSize(t *testing.T) {
	path := writeConfig(t, `
width = 0
height = 720
`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with zero width returned no error")
	}
}
