// Command armctl runs non-real-time Cartesian pure motion control: it holds
// or sine-sweeps the robot TCP at a chosen command frequency, applies a
// repeating schedule of online parameter changes, and optionally stops the
// robot on a simple collision heuristic.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/marcusholm/go-armctl/internal/config"
	"github.com/marcusholm/go-armctl/internal/log"
	"github.com/marcusholm/go-armctl/pkg/arm"
	"github.com/marcusholm/go-armctl/pkg/dashboard"
	"github.com/marcusholm/go-armctl/pkg/motion"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: armctl [flags] <robot-sn> <frequency>\n")
	fmt.Fprintf(os.Stderr, "  robot-sn   serial number of the robot to connect to, e.g. Rizon4s-123456\n")
	fmt.Fprintf(os.Stderr, "  frequency  command frequency, %d to %d [Hz]\n\n",
		motion.MinFrequencyHz, motion.MaxFrequencyHz)
	flag.PrintDefaults()
}

func main() {
	hold := flag.Bool("hold", false, "Hold the current TCP pose instead of sine-sweeping")
	collision := flag.Bool("collision", false, "Enable collision detection, robot stops upon collision")
	sim := flag.Bool("sim", false, "Run against the in-memory simulated backend")
	dashAddr := flag.String("dashboard", "", "Serve the telemetry dashboard on this address, e.g. :8080")
	cfgPath := flag.String("config", "", "Optional TOML profile with loop tuning parameters")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	log.Init(*logLevel)

	robotSN := flag.Arg(0)
	frequency, err := strconv.Atoi(flag.Arg(1))
	if err != nil || frequency < motion.MinFrequencyHz || frequency > motion.MaxFrequencyHz {
		log.Error("invalid frequency", "arg", flag.Arg(1))
		usage()
		os.Exit(2)
	}

	if err := run(robotSN, frequency, *hold, *collision, *sim, *dashAddr, *cfgPath); err != nil {
		log.Error("armctl failed", "err", err)
		os.Exit(1)
	}
}

func run(robotSN string, frequency int, hold, collision, sim bool, dashAddr, cfgPath string) error {
	profile, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if hold {
		log.Info("robot will hold the current TCP pose")
	} else {
		log.Info("robot will run a TCP sine-sweep")
	}
	if collision {
		log.Info("collision detection enabled")
	} else {
		log.Info("collision detection disabled")
	}

	// Stop everything on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var robot arm.Robot
	if sim {
		robot = arm.NewSim(robotSN)
	} else {
		// The daemon is reached by serial-number hostname unless ARM_ADDR
		// overrides it.
		robot = arm.NewHTTPRobot(config.DaemonAPIURL(config.DaemonAddr(robotSN)))
	}
	defer robot.Close()

	sess := arm.NewSession(robot)
	if err := sess.Start(ctx); err != nil {
		return err
	}

	log.Info("moving to home pose")
	if err := sess.RunPrimitive(ctx, arm.PrimHome); err != nil {
		return err
	}

	// Zero the force/torque sensors so the collision heuristic sees accurate
	// wrench readings.
	if err := arm.ZeroFTSensors(ctx, sess); err != nil {
		return err
	}

	if err := sess.EnsureMode(ctx, arm.ModeCartesianMotionForce); err != nil {
		return err
	}

	states, err := robot.States(ctx)
	if err != nil {
		return err
	}
	initPose := states.TCPPose
	log.Info("initial TCP pose captured",
		"position_m", initPose.Position, "orientation_wxyz", initPose.Orientation)

	info, err := robot.Info(ctx)
	if err != nil {
		return err
	}

	sched := motion.TutorialSchedule(info.NominalStiffness,
		profile.Posture.PreferredA, profile.Posture.PreferredB)

	loop, err := motion.NewLoop(robot, motion.Config{
		FrequencyHz:     frequency,
		Hold:            hold,
		CollisionCheck:  collision,
		ForceThreshold:  profile.Collision.ForceThreshold,
		TorqueThreshold: profile.Collision.TorqueThreshold,
		SwingAmp:        profile.Loop.SwingAmp,
		SwingFreqHz:     profile.Loop.SwingFreqHz,
		SwingAxis:       profile.Loop.SwingAxis,
		TickTolerance:   profile.Loop.TickTolerance,
		MissBudget:      profile.Loop.MissBudget,
	}, sched, initPose)
	if err != nil {
		return err
	}

	var dash *dashboard.Server
	if dashAddr != "" {
		dash = dashboard.NewServer(dashAddr, dashboard.Status{
			Session:        sess.ID(),
			Serial:         robotSN,
			FrequencyHz:    frequency,
			Hold:           hold,
			CollisionCheck: collision,
		})
		loop.OnTick = dash.PublishSnapshot
		loop.OnAction = dash.PublishAction
		dash.StartAsync(ctx)
		defer dash.Shutdown()
	}

	err = loop.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info("motion loop stopped")
		return nil
	case errors.Is(err, motion.ErrCollision):
		// The loop already stopped the robot; ending here is the intended
		// outcome, not a harness failure.
		log.Warn("collision detected, robot stopped")
		return nil
	case errors.Is(err, motion.ErrFault):
		if dash != nil {
			dash.PublishFault()
		}
		return err
	default:
		return err
	}
}
