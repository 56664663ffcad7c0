package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MotorConfig holds the GPIO wiring for one wheel motor (H-bridge channel).
type MotorConfig struct {
	PWMPin     int `yaml:"pwm_pin"`     // hardware PWM pin (BCM) for speed
	ForwardPin int `yaml:"forward_pin"` // H-bridge direction input A
	ReversePin int `yaml:"reverse_pin"` // H-bridge direction input B
}

// DriveConfig describes the differential drive base.
type DriveConfig struct {
	LeftMotor      MotorConfig `yaml:"left_motor"`
	RightMotor     MotorConfig `yaml:"right_motor"`
	MaxSpeed       float64     `yaml:"max_speed"`        // velocity clamp, both wheels
	PWMFrequencyHz int         `yaml:"pwm_frequency_hz"` // H-bridge PWM carrier frequency
}

// VisionConfig holds the fire color classifier thresholds.
type VisionConfig struct {
	FireRed            int     `yaml:"fire_red"`             // reference color, red channel
	FireGreen          int     `yaml:"fire_green"`           // reference color, green channel
	FireBlue           int     `yaml:"fire_blue"`            // reference color, blue channel
	ColorTolerance     int     `yaml:"color_tolerance"`      // per-channel band around the reference
	RedMargin          int     `yaml:"red_margin"`           // red must exceed green by this much
	GroundMaskDistance float64 `yaml:"ground_mask_distance"` // mask ground rows when farther than this
	GroundMaskRatio    float64 `yaml:"ground_mask_ratio"`    // fraction of height where masking starts
}

// LidarConfig restricts the range scan to the forward sector.
type LidarConfig struct {
	SectorStart float64 `yaml:"sector_start"` // fraction of scan width, inclusive
	SectorEnd   float64 `yaml:"sector_end"`   // fraction of scan width, exclusive
	NoiseFloor  float64 `yaml:"noise_floor"`  // returns at or below this are artifacts
}

// NavConfig holds the state machine distances and timers.
type NavConfig struct {
	ProximityStop  float64 `yaml:"proximity_stop"`  // hard stop distance
	SafeDistance   float64 `yaml:"safe_distance"`   // visual stop distance
	AvoidDistance  float64 `yaml:"avoid_distance"`  // obstacle check distance while approaching
	AvoidBlobSize  int     `yaml:"avoid_blob_size"` // below this the blob is an obstacle, not the fire
	BlindDistance  float64 `yaml:"blind_distance"`  // keep driving when fire lost closer than this
	WallAbort      float64 `yaml:"wall_abort"`      // abort avoidance when a wall is this close
	AlignTolerance float64 `yaml:"align_tolerance"` // |offset| below which alignment is done
	SteerTolerance float64 `yaml:"steer_tolerance"` // |offset| above which approach steering kicks in
	PreAvoidTicks  int     `yaml:"pre_avoid_ticks"` // hold ticks before the avoidance turn
	AvoidTurnTicks int     `yaml:"avoid_turn_ticks"` // ticks spent turning away
	AvoidSpanTicks int     `yaml:"avoid_span_ticks"` // total avoidance ticks before resuming search
}

// DefaultsConfig contains generic runtime parameters.
type DefaultsConfig struct {
	TimeStepMs int  `yaml:"time_step_ms"` // control tick period
	DebugLevel int  `yaml:"debug_level"`  // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`    // use mock GPIO + synthetic world (true=dev/test)
}

// Config aggregates all application configuration.
type Config struct {
	Drive    DriveConfig    `yaml:"drive"`
	Vision   VisionConfig   `yaml:"vision"`
	Lidar    LidarConfig    `yaml:"lidar"`
	Nav      NavConfig      `yaml:"nav"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero values with the stock controller tuning.
func (c *Config) applyDefaults() {
	if c.Drive.MaxSpeed == 0 {
		c.Drive.MaxSpeed = 3.0
	}
	if c.Drive.PWMFrequencyHz == 0 {
		c.Drive.PWMFrequencyHz = 10000
	}

	if c.Vision.FireRed == 0 && c.Vision.FireGreen == 0 && c.Vision.FireBlue == 0 {
		c.Vision.FireRed, c.Vision.FireGreen, c.Vision.FireBlue = 251, 72, 15
	}
	if c.Vision.ColorTolerance == 0 {
		c.Vision.ColorTolerance = 50
	}
	if c.Vision.RedMargin == 0 {
		c.Vision.RedMargin = 40
	}
	if c.Vision.GroundMaskDistance == 0 {
		c.Vision.GroundMaskDistance = 1.0
	}
	if c.Vision.GroundMaskRatio == 0 {
		c.Vision.GroundMaskRatio = 0.60
	}

	if c.Lidar.SectorStart == 0 && c.Lidar.SectorEnd == 0 {
		c.Lidar.SectorStart, c.Lidar.SectorEnd = 0.3, 0.7
	}
	if c.Lidar.NoiseFloor == 0 {
		c.Lidar.NoiseFloor = 0.05
	}

	if c.Nav.ProximityStop == 0 {
		c.Nav.ProximityStop = 0.6
	}
	if c.Nav.SafeDistance == 0 {
		c.Nav.SafeDistance = 0.8
	}
	if c.Nav.AvoidDistance == 0 {
		c.Nav.AvoidDistance = 1.2
	}
	if c.Nav.AvoidBlobSize == 0 {
		c.Nav.AvoidBlobSize = 50
	}
	if c.Nav.BlindDistance == 0 {
		c.Nav.BlindDistance = 0.9
	}
	if c.Nav.WallAbort == 0 {
		c.Nav.WallAbort = 0.5
	}
	if c.Nav.AlignTolerance == 0 {
		c.Nav.AlignTolerance = 0.15
	}
	if c.Nav.SteerTolerance == 0 {
		c.Nav.SteerTolerance = 0.2
	}
	if c.Nav.PreAvoidTicks == 0 {
		c.Nav.PreAvoidTicks = 6
	}
	if c.Nav.AvoidTurnTicks == 0 {
		c.Nav.AvoidTurnTicks = 12
	}
	if c.Nav.AvoidSpanTicks == 0 {
		c.Nav.AvoidSpanTicks = 60
	}

	if c.Defaults.TimeStepMs == 0 {
		c.Defaults.TimeStepMs = 64
	}
}

// validate rejects configurations the controller cannot run with.
func (c *Config) validate() error {
	if c.Drive.MaxSpeed <= 0 {
		return fmt.Errorf("drive.max_speed must be > 0, got %.2f", c.Drive.MaxSpeed)
	}
	if c.Vision.ColorTolerance <= 0 || c.Vision.ColorTolerance > 255 {
		return fmt.Errorf("vision.color_tolerance must be in 1-255, got %d", c.Vision.ColorTolerance)
	}
	if c.Vision.GroundMaskRatio <= 0 || c.Vision.GroundMaskRatio > 1 {
		return fmt.Errorf("vision.ground_mask_ratio must be in (0, 1], got %.2f", c.Vision.GroundMaskRatio)
	}
	if c.Lidar.SectorStart < 0 || c.Lidar.SectorEnd > 1 || c.Lidar.SectorStart >= c.Lidar.SectorEnd {
		return fmt.Errorf("lidar sector [%.2f, %.2f) must satisfy 0 <= start < end <= 1",
			c.Lidar.SectorStart, c.Lidar.SectorEnd)
	}
	if c.Lidar.NoiseFloor < 0 {
		return fmt.Errorf("lidar.noise_floor must be >= 0, got %.3f", c.Lidar.NoiseFloor)
	}
	if c.Nav.ProximityStop <= 0 || c.Nav.SafeDistance <= 0 || c.Nav.AvoidDistance <= 0 {
		return fmt.Errorf("nav distances must be > 0")
	}
	if c.Nav.PreAvoidTicks <= 0 || c.Nav.AvoidTurnTicks <= 0 || c.Nav.AvoidSpanTicks <= c.Nav.AvoidTurnTicks {
		return fmt.Errorf("nav timers must satisfy pre_avoid > 0 and avoid_span > avoid_turn > 0")
	}
	if c.Defaults.TimeStepMs <= 0 {
		return fmt.Errorf("defaults.time_step_ms must be > 0, got %d", c.Defaults.TimeStepMs)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be 0-4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// TimeStep returns the control tick period.
func (c *Config) TimeStep() time.Duration {
	return time.Duration(c.Defaults.TimeStepMs) * time.Millisecond
}
