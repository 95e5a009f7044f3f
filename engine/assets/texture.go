package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/mnrn/ReVK/engine/core"
)

// Textures larger than this on either axis get scaled down before upload.
const maxTextureDim = 2048

// TextureData is a decoded image in the layout the GPU upload path expects:
// tightly packed 8-bit RGBA rows, top to bottom.
type TextureData struct {
	Pixels []byte
	Width  uint32
	Height uint32
}

// LoadTexture reads and decodes an image file. A missing file is not fatal;
// it yields a checkerboard placeholder so the scene still renders.
func LoadTexture(path string) (*TextureData, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		core.LogWarn("Texture %s not found, using placeholder.", path)
		return Checkerboard(256, 256, 32), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture %s has zero size", path)
	}

	dstWidth, dstHeight := clampDimensions(width, height)
	rgba := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	if dstWidth == width && dstHeight == height {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		core.LogDebug("Texture %s scaled from %dx%d to %dx%d.", path, width, height, dstWidth, dstHeight)
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	core.LogDebug("Loaded texture %s (%s, %dx%d).", path, format, dstWidth, dstHeight)
	return &TextureData{
		Pixels: rgba.Pix,
		Width:  uint32(dstWidth),
		Height: uint32(dstHeight),
	}, nil
}

// Checkerboard builds a magenta and black test pattern. It stands in for
// missing textures so a bad asset path is obvious on screen.
func Checkerboard(width, height, cell uint32) *TextureData {
	pixels := make([]byte, width*height*4)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			i := (y*width + x) * 4
			if ((x/cell)+(y/cell))%2 == 0 {
				pixels[i+0] = 0xFF
				pixels[i+2] = 0xFF
			}
			pixels[i+3] = 0xFF
		}
	}
	return &TextureData{Pixels: pixels, Width: width, Height: height}
}

func clampDimensions(width, height int) (int, int) {
	if width <= maxTextureDim && height <= maxTextureDim {
		return width, height
	}
	longest := width
	if height > longest {
		longest = height
	}
	scale := float64(maxTextureDim) / float64(longest)
	scaledW := int(float64(width) * scale)
	scaledH := int(float64(height) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}
	return scaledW, scaledH
}
