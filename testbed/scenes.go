// Package testbed holds small scenes that exercise the renderer: a static
// triangle, a rotating cube with per-image uniform buffers, and a textured
// quad with a sampled image.
package testbed

import (
	"fmt"

	"github.com/mnrn/ReVK/engine/renderer"
)

// NewScene builds the named scene. Shader bytecode is read from shaderDir
// at pipeline build time, so a reload picks up recompiled files.
func NewScene(name, shaderDir string) (renderer.Scene, error) {
	switch name {
	case "triangle":
		return NewTriangleScene(shaderDir), nil
	case "cube":
		return NewCubeScene(shaderDir), nil
	case "textured_quad":
		return NewTexturedQuadScene(shaderDir, "assets/textures/statue.png"), nil
	default:
		return nil, fmt.Errorf("unknown scene %q (have: triangle, cube, textured_quad)", name)
	}
}
