package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.SurfaceFormat
	}{
		{
			name: "preferred format wins over earlier entries",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				preferred,
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			want: preferred,
		},
		{
			name: "no preferred format falls back to the first entry",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			want: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		{
			name: "single entry",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			want: vk.SurfaceFormat{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseSurfaceFormat(tt.formats)
			if got.Format != tt.want.Format || got.ColorSpace != tt.want.ColorSpace {
				t.Errorf("chooseSurfaceFormat() = {%d %d}, want {%d %d}",
					got.Format, got.ColorSpace, tt.want.Format, tt.want.ColorSpace)
			}
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name  string
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{
			name:  "mailbox preferred when offered",
			modes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox, vk.PresentModeImmediate},
			want:  vk.PresentModeMailbox,
		},
		{
			name:  "fifo fallback ignores immediate",
			modes: []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed},
			want:  vk.PresentModeFifo,
		},
		{
			name:  "empty list still yields fifo",
			modes: nil,
			want:  vk.PresentModeFifo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choosePresentMode(tt.modes); got != tt.want {
				t.Errorf("choosePresentMode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChooseExtent(t *testing.T) {
	tests := []struct {
		name          string
		capabilities  vk.SurfaceCapabilities
		width, height uint32
		want          vk.Extent2D
	}{
		{
			name: "fixed current extent overrides the framebuffer size",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:  1920,
			height: 1080,
			want:   vk.Extent2D{Width: 1024, Height: 768},
		},
		{
			name: "flexible extent keeps an in-range framebuffer size",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:  1280,
			height: 720,
			want:   vk.Extent2D{Width: 1280, Height: 720},
		},
		{
			name: "flexible extent clamps below the minimum",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 200, Height: 200},
				MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
			},
			width:  32,
			height: 4000,
			want:   vk.Extent2D{Width: 200, Height: 4000},
		},
		{
			name: "flexible extent clamps above the maximum",
			capabilities: vk.SurfaceCapabilities{
				CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
				MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
				MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
			},
			width:  3840,
			height: 2160,
			want:   vk.Extent2D{Width: 1920, Height: 1080},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseExtent(&tt.capabilities, tt.width, tt.height)
			if got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("chooseExtent() = %dx%d, want %dx%d",
					got.Width, got.Height, tt.want.Width, tt.want.Height)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{name: "one over the minimum", min: 2, max: 8, want: 3},
		{name: "capped at the maximum", min: 3, max: 3, want: 3},
		{name: "zero maximum means unbounded", min: 2, max: 0, want: 3},
		{name: "single buffered surface", min: 1, max: 8, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capabilities := vk.SurfaceCapabilities{
				MinImageCount: tt.min,
				MaxImageCount: tt.max,
			}
			if got := chooseImageCount(&capabilities); got != tt.want {
				t.Errorf("chooseImageCount(min %d, max %d) = %d, want %d", tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestSurfaceStatusString(t *testing.T) {
	if got := SurfaceOutOfDate.String(); got != "out of date" {
		t.Errorf("SurfaceOutOfDate.String() = %q, want %q", got, "out of date")
	}
	if got := SurfaceStatus(42).String(); got != "SurfaceStatus(42)" {
		t.Errorf("SurfaceStatus(42).String() = %q, want %q", got, "SurfaceStatus(42)")
	}
}
