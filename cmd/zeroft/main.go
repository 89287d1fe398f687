// Command zeroft zeros the robot's force and torque sensors, a recommended
// step before any operation that relies on accurate force/torque
// measurement. The robot must not be in contact with anything while it runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcusholm/go-armctl/internal/config"
	"github.com/marcusholm/go-armctl/internal/log"
	"github.com/marcusholm/go-armctl/pkg/arm"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: zeroft [flags] <robot-sn>\n")
	fmt.Fprintf(os.Stderr, "  robot-sn   serial number of the robot to connect to, e.g. Rizon4s-123456\n\n")
	flag.PrintDefaults()
}

func main() {
	sim := flag.Bool("sim", false, "Run against the in-memory simulated backend")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	log.Init(*logLevel)

	if err := run(flag.Arg(0), *sim); err != nil {
		log.Error("zeroft failed", "err", err)
		os.Exit(1)
	}
}

func run(robotSN string, sim bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var robot arm.Robot
	if sim {
		robot = arm.NewSim(robotSN)
	} else {
		robot = arm.NewHTTPRobot(config.DaemonAPIURL(config.DaemonAddr(robotSN)))
	}
	defer robot.Close()

	sess := arm.NewSession(robot)
	if err := sess.Start(ctx); err != nil {
		return err
	}

	return arm.ZeroFTSensors(ctx, sess)
}
