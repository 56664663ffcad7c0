package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/config"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/debug"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/gpio"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/motor"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/drive"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/mission"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/nav"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/ranging"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/vision"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/sim"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	maxTicks := flag.Int("ticks", 0, "stop the synthetic world after this many ticks (0 = run until interrupted)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Value("Time step", cfg.TimeStep())

	// The synthetic world supplies frames, range scans, and the world
	// step; it also doubles as the fire supervisor.
	debug.Step(1, "Building world")
	world := sim.NewWorld()
	world.AddObstacle(2.5, 0.4, 0.15)
	world.MaxTicks = *maxTicks
	world.StepWait = cfg.TimeStep()

	// Actuation: the world integrates wheel commands; with real GPIO the
	// same commands also drive the H-bridge (bench mode for the drive
	// train).
	debug.Step(2, "Initializing drive")
	var motors motor.Drive = world
	if !cfg.Defaults.MockGPIO {
		gpioDriver, err := gpio.NewDriver(false)
		if err != nil {
			log.Fatalf("init GPIO failed: %v", err)
		}
		defer func() {
			if err := gpioDriver.Close(); err != nil {
				log.Printf("closing GPIO driver failed: %v", err)
			}
		}()

		hbridge, err := motor.NewHBridge(
			gpioDriver,
			motor.Config{
				PWMPin:     cfg.Drive.LeftMotor.PWMPin,
				ForwardPin: cfg.Drive.LeftMotor.ForwardPin,
				ReversePin: cfg.Drive.LeftMotor.ReversePin,
			},
			motor.Config{
				PWMPin:     cfg.Drive.RightMotor.PWMPin,
				ForwardPin: cfg.Drive.RightMotor.ForwardPin,
				ReversePin: cfg.Drive.RightMotor.ReversePin,
			},
			cfg.Drive.MaxSpeed,
			cfg.Drive.PWMFrequencyHz,
		)
		if err != nil {
			log.Fatalf("init drive failed: %v", err)
		}
		motors = &teeDrive{a: hbridge, b: world}
	}

	debug.Step(3, "Creating perception and navigation")
	detector := vision.NewDetector(vision.Config{
		FireRed:            cfg.Vision.FireRed,
		FireGreen:          cfg.Vision.FireGreen,
		FireBlue:           cfg.Vision.FireBlue,
		ColorTolerance:     cfg.Vision.ColorTolerance,
		RedMargin:          cfg.Vision.RedMargin,
		GroundMaskDistance: cfg.Vision.GroundMaskDistance,
		GroundMaskRatio:    cfg.Vision.GroundMaskRatio,
	})
	reducer := ranging.NewReducer(ranging.Config{
		SectorStart: cfg.Lidar.SectorStart,
		SectorEnd:   cfg.Lidar.SectorEnd,
		NoiseFloor:  cfg.Lidar.NoiseFloor,
	})
	machine := nav.NewMachine(nav.Config{
		MaxSpeed:       cfg.Drive.MaxSpeed,
		ProximityStop:  cfg.Nav.ProximityStop,
		SafeDistance:   cfg.Nav.SafeDistance,
		AvoidDistance:  cfg.Nav.AvoidDistance,
		AvoidBlobSize:  cfg.Nav.AvoidBlobSize,
		BlindDistance:  cfg.Nav.BlindDistance,
		WallAbort:      cfg.Nav.WallAbort,
		AlignTolerance: cfg.Nav.AlignTolerance,
		SteerTolerance: cfg.Nav.SteerTolerance,
		PreAvoidTicks:  cfg.Nav.PreAvoidTicks,
		AvoidTurnTicks: cfg.Nav.AvoidTurnTicks,
		AvoidSpanTicks: cfg.Nav.AvoidSpanTicks,
	})
	commander := drive.NewCommander(motors, cfg.Drive.MaxSpeed)

	runner := mission.NewRunner(mission.Params{
		World:      world,
		Camera:     world,
		Lidar:      world,
		Detector:   detector,
		Reducer:    reducer,
		Machine:    machine,
		Commander:  commander,
		Supervisor: world,
	})

	if port := webPort.port(); port > 0 {
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, runner.Snapshot, cfg)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		}()
	}

	if err := runner.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("mission failed: %v", err)
	}
}

// teeDrive mirrors wheel commands to two sinks: the real H-bridge and
// the synthetic world, so the scene tracks what the hardware is told.
type teeDrive struct {
	a, b motor.Drive
}

func (t *teeDrive) SetVelocity(left, right float64) error {
	if err := t.a.SetVelocity(left, right); err != nil {
		return err
	}
	return t.b.SetVelocity(left, right)
}

func (t *teeDrive) Stop() error {
	if err := t.a.Stop(); err != nil {
		return err
	}
	return t.b.Stop()
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
