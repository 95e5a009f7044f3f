package vulkan

import "testing"

func TestWaitForValidFramebuffer(t *testing.T) {
	tests := []struct {
		name       string
		sizes      [][2]int
		wantWidth  uint32
		wantHeight uint32
		wantWaits  int
	}{
		{
			name:       "valid size returns immediately",
			sizes:      [][2]int{{800, 600}},
			wantWidth:  800,
			wantHeight: 600,
			wantWaits:  0,
		},
		{
			name:       "waits through minimized frames",
			sizes:      [][2]int{{0, 0}, {0, 0}, {1280, 720}},
			wantWidth:  1280,
			wantHeight: 720,
			wantWaits:  2,
		},
		{
			name:       "one zero dimension still counts as minimized",
			sizes:      [][2]int{{640, 0}, {640, 480}},
			wantWidth:  640,
			wantHeight: 480,
			wantWaits:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := 0
			size := func() (int, int) {
				s := tt.sizes[call]
				if call < len(tt.sizes)-1 {
					call++
				}
				return s[0], s[1]
			}
			waits := 0
			wait := func() { waits++ }

			width, height := waitForValidFramebuffer(size, wait)
			if width != tt.wantWidth || height != tt.wantHeight {
				t.Errorf("waitForValidFramebuffer() = %dx%d, want %dx%d",
					width, height, tt.wantWidth, tt.wantHeight)
			}
			if waits != tt.wantWaits {
				t.Errorf("wait calls = %d, want %d", waits, tt.wantWaits)
			}
		})
	}
}
