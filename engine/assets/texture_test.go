package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, width, height int, fill color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	path := filepath.Join(t.TempDir(), "texture.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

func TestLoadTextureDecodesRGBA(t *testing.T) {
	path := writePNG(t, 4, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture() error = %v", err)
	}
	if data.Width != 4 || data.Height != 2 {
		t.Fatalf("size = %dx%d, want 4x2", data.Width, data.Height)
	}
	if len(data.Pixels) != 4*2*4 {
		t.Fatalf("pixel bytes = %d, want %d", len(data.Pixels), 4*2*4)
	}
	if data.Pixels[0] != 10 || data.Pixels[1] != 20 || data.Pixels[2] != 30 || data.Pixels[3] != 255 {
		t.Errorf("first pixel = %v, want [10 20 30 255]", data.Pixels[:4])
	}
}

func TestLoadTextureMissingFileFallsBack(t *testing.T) {
	data, err := LoadTexture(filepath.Join(t.TempDir(), "absent.png"))
	if err != nil {
		t.Fatalf("LoadTexture() on missing file error = %v", err)
	}
	if data.Width != 256 || data.Height != 256 {
		t.Errorf("placeholder size = %dx%d, want 256x256", data.Width, data.Height)
	}
}

func TestLoadTextureRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(path); err == nil {
		t.Error("LoadTexture() on junk data returned no error")
	}
}

func TestCheckerboardPattern(t *testing.T) {
	data := Checkerboard(4, 4, 2)

	if data.Width != 4 || data.Height != 4 || len(data.Pixels) != 4*4*4 {
		t.Fatalf("checkerboard shape = %dx%d, %d bytes", data.Width, data.Height, len(data.Pixels))
	}

	pixel := func(x, y uint32) []byte {
		i := (y*4 + x) * 4
		return data.Pixels[i : i+4]
	}
	// Top-left cell is magenta, the cell to its right is black; both are
	// fully opaque.
	if p := pixel(0, 0); p[0] != 0xFF || p[1] != 0x00 || p[2] != 0xFF || p[3] != 0xFF {
		t.Errorf("pixel(0,0) = %v, want magenta", p)
	}
	if p := pixel(2, 0); p[0] != 0x00 || p[1] != 0x00 || p[2] != 0x00 || p[3] != 0xFF {
		t.Errorf("pixel(2,0) = %v, want black", p)
	}
	if p := pixel(2, 2); p[0] != 0xFF || p[2] != 0xFF {
		t.Errorf("pixel(2,2) = %v, want magenta", p)
	}
}

func TestClampDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{name: "small image untouched", width: 640, height: 480, wantW: 640, wantH: 480},
		{name: "at the limit untouched", width: maxTextureDim, height: maxTextureDim, wantW: maxTextureDim, wantH: maxTextureDim},
		{name: "wide image scales by width", width: 4096, height: 1024, wantW: 2048, wantH: 512},
		{name: "tall image scales by height", width: 1024, height: 4096, wantW: 512, wantH: 2048},
		{name: "extreme ratio keeps at least one pixel", width: 1, height: 4096, wantW: 1, wantH: 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := clampDimensions(tt.width, tt.height)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("clampDimensions(%d, %d) = %dx%d, want %dx%d",
					tt.width, tt.height, gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestIsCompiledShader(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "shaders/triangle.vert.spv", want: true},
		{path: "SHADER.SPV", want: true},
		{path: "shaders/triangle.vert", want: false},
		{path: "readme.md", want: false},
		{path: "spv", want: false},
	}

	for _, tt := range tests {
		if got := isCompiledShader(tt.path); got != tt.want {
			t.Errorf("isCompiledShader(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
