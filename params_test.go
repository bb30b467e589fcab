package tally

import (
	"errors"
	"math"
	"testing"
)

func TestOptimalDimensions(t *testing.T) {
	tests := []struct {
		epsilon, delta float64
		wantWidth      int
		wantK          int
	}{
		{0.01, 0.01, 272, 5},
		{0.001, 0.001, 2719, 7},
		{0.1, 0.5, 28, 1},
		{0.5, 0.9, 6, 1},
	}

	for _, tt := range tests {
		width, k, err := OptimalDimensions(tt.epsilon, tt.delta)
		if err != nil {
			t.Fatalf("epsilon=%g delta=%g: unexpected error %v", tt.epsilon, tt.delta, err)
		}
		if width != tt.wantWidth || k != tt.wantK {
			t.Errorf("epsilon=%g delta=%g: got width=%d k=%d, want width=%d k=%d",
				tt.epsilon, tt.delta, width, k, tt.wantWidth, tt.wantK)
		}
	}
}

func TestOptimalDimensionsInvalid(t *testing.T) {
	for _, tt := range []struct{ epsilon, delta float64 }{
		{0, 0.1},
		{1, 0.1},
		{0.1, 0},
		{0.1, 1},
		{-0.5, 0.1},
	} {
		if _, _, err := OptimalDimensions(tt.epsilon, tt.delta); !errors.Is(err, ErrInvalidEstimate) {
			t.Errorf("epsilon=%g delta=%g: got err %v, want %v", tt.epsilon, tt.delta, err, ErrInvalidEstimate)
		}
	}
}

func TestEstimateErrorBound(t *testing.T) {
	got := EstimateErrorBound(100, 5000)
	want := math.E / 100 * 5000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}

	if !math.IsInf(EstimateErrorBound(0, 10), 1) {
		t.Error("expected +Inf for zero width")
	}
	if EstimateErrorBound(10, 0) != 0 {
		t.Error("expected 0 for empty stream")
	}
}
