package ranging

import (
	"math"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/lidar"
)

// Config restricts the scan to the robot's forward cone.
type Config struct {
	SectorStart float64 // fraction of the scan width, inclusive
	SectorEnd   float64 // fraction of the scan width, exclusive
	NoiseFloor  float64 // returns at or below this are sensor artifacts
}

// DefaultConfig returns the stock forward-sector tuning: the middle 40%
// of the sweep, ignoring returns at or below 5 cm.
func DefaultConfig() Config {
	return Config{
		SectorStart: 0.3,
		SectorEnd:   0.7,
		NoiseFloor:  0.05,
	}
}

// Reducer collapses a range scan into the closest valid forward return.
type Reducer struct {
	cfg Config
}

func NewReducer(cfg Config) *Reducer {
	return &Reducer{cfg: cfg}
}

// MinForward returns the minimum sample above the noise floor within the
// forward sector. A nil/empty scan, or a sector with no valid return,
// yields +Inf: unbounded distance, no obstacle detected.
func (r *Reducer) MinForward(scan lidar.Scan) float64 {
	min := math.Inf(1)
	if len(scan) == 0 {
		return min
	}

	start := int(float64(len(scan)) * r.cfg.SectorStart)
	end := int(float64(len(scan)) * r.cfg.SectorEnd)

	for i := start; i < end; i++ {
		if scan[i] < min && scan[i] > r.cfg.NoiseFloor {
			min = scan[i]
		}
	}
	return min
}
