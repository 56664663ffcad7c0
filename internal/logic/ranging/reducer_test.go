package ranging

import (
	"math"
	"testing"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/lidar"
)

func TestMinForwardPicksSectorMinimum(t *testing.T) {
	// 10 samples: sector is [3, 7). The 0.2 at index 0 is outside the
	// sector and must be ignored.
	scan := lidar.Scan{0.2, 5, 5, 2.5, 1.8, 3.0, 4.2, 5, 5, 5}

	r := NewReducer(DefaultConfig())
	got := r.MinForward(scan)
	if got != 1.8 {
		t.Errorf("MinForward = %v, want 1.8", got)
	}
}

func TestMinForwardIgnoresNoise(t *testing.T) {
	scan := lidar.Scan{5, 5, 5, 0.01, 0.05, 2.0, 0.0, 5, 5, 5}

	r := NewReducer(DefaultConfig())
	got := r.MinForward(scan)
	if got != 2.0 {
		t.Errorf("MinForward = %v, want 2.0 (noise samples must be skipped)", got)
	}
}

func TestMinForwardAllNoiseIsUnbounded(t *testing.T) {
	scan := make(lidar.Scan, 10)
	for i := range scan {
		scan[i] = 0.05
	}

	r := NewReducer(DefaultConfig())
	if got := r.MinForward(scan); !math.IsInf(got, 1) {
		t.Errorf("MinForward = %v, want +Inf", got)
	}
}

func TestMinForwardMissingScanIsUnbounded(t *testing.T) {
	r := NewReducer(DefaultConfig())
	if got := r.MinForward(nil); !math.IsInf(got, 1) {
		t.Errorf("MinForward(nil) = %v, want +Inf", got)
	}
	if got := r.MinForward(lidar.Scan{}); !math.IsInf(got, 1) {
		t.Errorf("MinForward(empty) = %v, want +Inf", got)
	}
}

func TestMinForwardNeverBelowNoiseFloor(t *testing.T) {
	scan := make(lidar.Scan, 100)
	for i := range scan {
		scan[i] = float64(i%7) * 0.02
	}

	r := NewReducer(DefaultConfig())
	got := r.MinForward(scan)
	if got <= 0.05 {
		t.Errorf("MinForward = %v, must be > 0.05", got)
	}
}
