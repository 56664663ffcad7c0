package vision

import (
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/camera"
)

// Config holds the fire color classifier thresholds.
type Config struct {
	FireRed        int // reference color, red channel
	FireGreen      int // reference color, green channel
	FireBlue       int // reference color, blue channel
	ColorTolerance int // per-channel band around the reference
	RedMargin      int // red must exceed green by this much

	// Ground masking: when the forward range estimate exceeds
	// GroundMaskDistance, rows below GroundMaskRatio of the frame height
	// are skipped to suppress ground-plane reflections at long range.
	GroundMaskDistance float64
	GroundMaskRatio    float64
}

// DefaultConfig returns the stock fire classifier tuning.
func DefaultConfig() Config {
	return Config{
		FireRed:            251,
		FireGreen:          72,
		FireBlue:           15,
		ColorTolerance:     50,
		RedMargin:          40,
		GroundMaskDistance: 1.0,
		GroundMaskRatio:    0.60,
	}
}

// Detection is the per-tick output of the detector. CenterX/CenterY are
// only meaningful when Found is true.
type Detection struct {
	Found   bool
	CenterX float64
	CenterY float64
	Size    int // classified pixel count
}

// Detector reduces a camera frame to the fire blob's centroid and size.
// It is stateless: identical inputs give identical outputs.
type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect scans every pixel of the frame and classifies fire-colored ones.
// distance is the current forward range estimate, used only for the
// ground mask. This is the dominant per-tick cost; the loop body stays
// branch-light on purpose.
func (d *Detector) Detect(f *camera.Frame, distance float64) Detection {
	if f == nil || f.Width == 0 || f.Height == 0 {
		return Detection{}
	}

	maskGround := distance > d.cfg.GroundMaskDistance
	groundRow := int(float64(f.Height) * d.cfg.GroundMaskRatio)

	var (
		pixels     int
		sumX, sumY float64
	)

	for x := 0; x < f.Width; x++ {
		for y := 0; y < f.Height; y++ {
			// Ignore ground if far
			if maskGround && y > groundRow {
				continue
			}

			r := f.Red(x, y)
			g := f.Green(x, y)
			b := f.Blue(x, y)

			if r > g+d.cfg.RedMargin &&
				absInt(r-d.cfg.FireRed) < d.cfg.ColorTolerance &&
				absInt(g-d.cfg.FireGreen) < d.cfg.ColorTolerance &&
				absInt(b-d.cfg.FireBlue) < d.cfg.ColorTolerance {
				pixels++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}

	if pixels == 0 {
		return Detection{}
	}
	return Detection{
		Found:   true,
		CenterX: sumX / float64(pixels),
		CenterY: sumY / float64(pixels),
		Size:    pixels,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
