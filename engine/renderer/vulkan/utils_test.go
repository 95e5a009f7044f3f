package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestResultString(t *testing.T) {
	tests := []struct {
		name   string
		result vk.Result
		want   string
	}{
		{name: "success", result: vk.Success, want: "VK_SUCCESS"},
		{name: "out of date", result: vk.ErrorOutOfDate, want: "VK_ERROR_OUT_OF_DATE_KHR"},
		{name: "device lost", result: vk.ErrorDeviceLost, want: "VK_ERROR_DEVICE_LOST"},
		{name: "unknown code", result: vk.Result(42), want: "VK_RESULT(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultString(tt.result); got != tt.want {
				t.Errorf("ResultString(%d) = %q, want %q", tt.result, got, tt.want)
			}
		})
	}
}

func TestVkError(t *testing.T) {
	err := vkError("vkCreateFence", vk.ErrorDeviceLost)
	want := "vkCreateFence failed: VK_ERROR_DEVICE_LOST (-4)"
	if err.Error() != want {
		t.Errorf("vkError() = %q, want %q", err.Error(), want)
	}
}

func TestVulkanSafeString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain string gains a terminator", in: "VK_LAYER_KHRONOS_validation", want: "VK_LAYER_KHRONOS_validation\x00"},
		{name: "terminated string is unchanged", in: "main\x00", want: "main\x00"},
		{name: "empty string becomes a lone terminator", in: "", want: "\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VulkanSafeString(tt.in); got != tt.want {
				t.Errorf("VulkanSafeString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestVulkanSafeStrings(t *testing.T) {
	got := VulkanSafeStrings([]string{"a", "b\x00"})
	if len(got) != 2 || got[0] != "a\x00" || got[1] != "b\x00" {
		t.Errorf("VulkanSafeStrings() = %q", got)
	}
}

func TestVkString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "stops at the first null", in: []byte{'a', 'b', 0, 'x'}, want: "ab"},
		{name: "no null consumes everything", in: []byte{'a', 'b', 'c'}, want: "abc"},
		{name: "empty input", in: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vkString(tt.in); got != tt.want {
				t.Errorf("vkString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
