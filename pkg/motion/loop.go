package motion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/marcusholm/go-armctl/internal/log"
	"github.com/marcusholm/go-armctl/pkg/arm"
)

// Command frequency bounds [Hz].
const (
	MinFrequencyHz = 1
	MaxFrequencyHz = 100
)

// Loop errors.
var (
	// ErrFault is returned when a fault is observed on the connected robot.
	ErrFault = errors.New("fault occurred on the connected robot")
	// ErrCollision is returned when the collision heuristic triggers.
	ErrCollision = errors.New("collision detected")
)

// Robot is the backend surface the loop needs: fault polling, motion
// commands, online tuning, telemetry and stop.
type Robot interface {
	Fault(ctx context.Context) (bool, error)
	SendCartesianMotionForce(ctx context.Context, target arm.Pose) error
	Stop(ctx context.Context) error
	States(ctx context.Context) (arm.States, error)
	arm.TuningController
}

// Config parameterizes the loop.
type Config struct {
	// FrequencyHz is the command frequency, 1 to 100.
	FrequencyHz int
	// Hold keeps the TCP at the initial pose instead of sine-sweeping.
	Hold bool
	// CollisionCheck enables the collision heuristic; the robot is stopped
	// and the loop ends when it triggers.
	CollisionCheck bool
	// Collision thresholds; zero values take the demo defaults.
	ForceThreshold  float64
	TorqueThreshold float64

	// Sweep parameters. Zero amplitude or frequency takes the tutorial
	// default; the axis is taken as-is (0=X, 1=Y, 2=Z).
	SwingAmp    float64
	SwingFreqHz float64
	SwingAxis   int

	// Timeliness parameters; zero values take the defaults.
	TickTolerance float64
	MissBudget    int
}

// Snapshot is the per-tick state published to the OnTick sink.
type Snapshot struct {
	Tick        uint64          `json:"tick"`
	Elapsed     float64         `json:"elapsed_s"`
	Target      arm.Pose        `json:"target"`
	Wrench      arm.Wrench      `json:"wrench"`
	TauExt      arm.JointVector `json:"tau_ext,omitempty"`
	LastAction  string          `json:"last_action,omitempty"`
	Collision   bool            `json:"collision"`
	AvgInterval time.Duration   `json:"avg_interval_ns"`
}

// Loop sends a Cartesian motion target every period, applies the parameter
// schedule and runs the collision heuristic. It is single-threaded: one
// command per tick, never queued.
type Loop struct {
	robot  Robot
	cfg    Config
	period time.Duration

	gen   TargetGenerator
	sched *Schedule
	det   CollisionDetector
	mon   *TimelinessMonitor
	clk   clock.Clock

	// OnTick, when set, receives a state snapshot after every tick.
	OnTick func(Snapshot)
	// OnAction, when set, is called after a scheduled action applied.
	OnAction func(name string)
}

// NewLoop creates a loop commanding the given backend from initPose. The
// schedule may be nil to disable online parameter changes.
func NewLoop(robot Robot, cfg Config, sched *Schedule, initPose arm.Pose) (*Loop, error) {
	if cfg.FrequencyHz < MinFrequencyHz || cfg.FrequencyHz > MaxFrequencyHz {
		return nil, fmt.Errorf("frequency must be within [%d, %d] Hz, got %d",
			MinFrequencyHz, MaxFrequencyHz, cfg.FrequencyHz)
	}
	if cfg.SwingAmp == 0 {
		cfg.SwingAmp = DefaultSwingAmp
	}
	if cfg.SwingFreqHz == 0 {
		cfg.SwingFreqHz = DefaultSwingFreqHz
	}
	if cfg.ForceThreshold == 0 {
		cfg.ForceThreshold = DefaultForceThreshold
	}
	if cfg.TorqueThreshold == 0 {
		cfg.TorqueThreshold = DefaultTorqueThreshold
	}

	period := time.Second / time.Duration(cfg.FrequencyHz)
	return &Loop{
		robot:  robot,
		cfg:    cfg,
		period: period,
		gen: TargetGenerator{
			Init:   initPose,
			Hold:   cfg.Hold,
			Amp:    cfg.SwingAmp,
			FreqHz: cfg.SwingFreqHz,
			Axis:   cfg.SwingAxis,
		},
		sched: sched,
		det: CollisionDetector{
			ForceThreshold:  cfg.ForceThreshold,
			TorqueThreshold: cfg.TorqueThreshold,
		},
		mon:   NewTimelinessMonitor(period, cfg.TickTolerance, cfg.MissBudget),
		clk:   clock.New(),
	}, nil
}

// Period returns the loop period.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Run drives the loop until ctx is cancelled or the first error: a robot
// fault, a detected collision, a backend error or a tripped timeliness
// budget. There is no retry; the first failure ends the loop.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("motion loop started",
		"frequency_hz", l.cfg.FrequencyHz,
		"period", l.period,
		"hold", l.cfg.Hold,
		"collision_check", l.cfg.CollisionCheck)

	ticker := l.clk.Ticker(l.period)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := l.step(ctx, tick, now); err != nil {
				return err
			}
			tick++
		}
	}
}

// step executes one control cycle at tick index i.
func (l *Loop) step(ctx context.Context, i uint64, now time.Time) error {
	// Elapsed time uses the tick counter, as the tutorial does, so the
	// schedule arithmetic is exact regardless of ticker jitter.
	elapsed := time.Duration(i) * l.period

	fault, err := l.robot.Fault(ctx)
	if err != nil {
		return fmt.Errorf("tick %d: %w", i, err)
	}
	if fault {
		return ErrFault
	}

	target := l.gen.TargetAt(elapsed)
	if err := l.robot.SendCartesianMotionForce(ctx, target); err != nil {
		return fmt.Errorf("tick %d: %w", i, err)
	}

	snap := Snapshot{
		Tick:    i,
		Elapsed: elapsed.Seconds(),
		Target:  target,
	}

	if l.sched != nil {
		if action := l.sched.Due(elapsed); action != nil {
			if err := action.Apply(ctx, l.robot); err != nil {
				return fmt.Errorf("apply %q at tick %d: %w", action.Name, i, err)
			}
			log.Info("applied scheduled parameter change", "action", action.Name, "elapsed", elapsed)
			snap.LastAction = action.Name
			if l.OnAction != nil {
				l.OnAction(action.Name)
			}
		}
	}

	if l.cfg.CollisionCheck || l.OnTick != nil {
		states, err := l.robot.States(ctx)
		if err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		snap.Wrench = states.ExtWrenchInWorld
		snap.TauExt = states.TauExt

		if l.cfg.CollisionCheck && l.det.Check(states.ExtWrenchInWorld, states.TauExt) {
			snap.Collision = true
			if l.OnTick != nil {
				l.OnTick(snap)
			}
			log.Warn("collision detected, stopping robot",
				"force_norm_n", states.ExtWrenchInWorld.ForceNorm())
			if err := l.robot.Stop(ctx); err != nil {
				return fmt.Errorf("stop after collision: %w", err)
			}
			return ErrCollision
		}
	}

	late, err := l.mon.Observe(now)
	if late {
		log.Warn("loop tick was late",
			"misses", l.mon.Misses(), "avg_interval", l.mon.Average())
	}
	if err != nil {
		return fmt.Errorf("tick %d: %w", i, err)
	}

	snap.AvgInterval = l.mon.Average()
	if l.OnTick != nil {
		l.OnTick(snap)
	}
	return nil
}
