package math

import "testing"

func TestClamp(t *testing.T) {
	t.Run("uint32", func(t *testing.T) {
		tests := []struct {
			name         string
			f, low, high uint32
			want         uint32
		}{
			{name: "inside range", f: 5, low: 1, high: 10, want: 5},
			{name: "below low", f: 0, low: 1, high: 10, want: 1},
			{name: "above high", f: 11, low: 1, high: 10, want: 10},
			{name: "at low", f: 1, low: 1, high: 10, want: 1},
			{name: "at high", f: 10, low: 1, high: 10, want: 10},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Clamp(tt.f, tt.low, tt.high); got != tt.want {
					t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.f, tt.low, tt.high, got, tt.want)
				}
			})
		}
	})

	t.Run("float64", func(t *testing.T) {
		if got := Clamp(-0.5, 0.0, 1.0); got != 0.0 {
			t.Errorf("Clamp(-0.5, 0, 1) = %v, want 0", got)
		}
		if got := Clamp(0.25, 0.0, 1.0); got != 0.25 {
			t.Errorf("Clamp(0.25, 0, 1) = %v, want 0.25", got)
		}
	})
}
