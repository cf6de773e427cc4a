package record

import "testing"

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{70.5, 70.5},
		{70.125, 70.13},
		{141.0 / 2, 70.5},
		{212.0 / 3, 70.67},
		{70.004, 70},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Fatalf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
