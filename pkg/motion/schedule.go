package motion

import (
	"context"
	"sort"
	"time"

	"github.com/marcusholm/go-armctl/pkg/arm"
)

// DefaultWindow is the repeat period of the parameter-change schedule.
const DefaultWindow = 20 * time.Second

// Action is one scheduled online parameter change within the window.
type Action struct {
	// Offset is the position within the window at which the action is due.
	Offset time.Duration
	// Name identifies the action in logs and telemetry.
	Name string
	// Apply performs the parameter change.
	Apply func(ctx context.Context, r arm.TuningController) error
}

// Schedule fires each action once per repeating window, on the first tick
// whose elapsed time reaches the action's offset. Triggering on reaching the
// offset rather than on exact modulo equality means a loop period that does
// not divide the offsets delays an action to the next tick instead of
// skipping it for the whole window. For divisor periods the two behaviors
// coincide.
type Schedule struct {
	window  time.Duration
	actions []Action
	fired   []bool
	win     int
}

// NewSchedule creates a schedule over the given window. Actions are kept in
// offset order; offsets must be smaller than the window.
func NewSchedule(window time.Duration, actions []Action) *Schedule {
	sorted := make([]Action, len(actions))
	copy(sorted, actions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	return &Schedule{
		window:  window,
		actions: sorted,
		fired:   make([]bool, len(sorted)),
		win:     -1,
	}
}

// Due returns the action to fire at the given elapsed time, or nil. At most
// one action fires per tick; when several are pending the earliest wins and
// the rest fire on subsequent ticks.
func (s *Schedule) Due(elapsed time.Duration) *Action {
	if s.window <= 0 || len(s.actions) == 0 {
		return nil
	}

	win := int(elapsed / s.window)
	if win != s.win {
		s.win = win
		for i := range s.fired {
			s.fired[i] = false
		}
	}

	pos := elapsed % s.window
	for i := range s.actions {
		if s.fired[i] {
			continue
		}
		if pos >= s.actions[i].Offset {
			s.fired[i] = true
			return &s.actions[i]
		}
	}
	return nil
}

// TutorialSchedule builds the 20-second parameter-change sequence from the
// motion tutorial: swap preferred joint postures, halve and restore Cartesian
// stiffness, and toggle max contact wrench regulation.
func TutorialSchedule(nominal arm.Stiffness, postureA, postureB arm.JointVector) *Schedule {
	maxWrench := arm.Wrench{
		Force:  [3]float64{10.0, 10.0, 10.0},
		Torque: [3]float64{2.0, 2.0, 2.0},
	}

	return NewSchedule(DefaultWindow, []Action{
		{
			Offset: 3 * time.Second,
			Name:   "set null-space posture A",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.SetNullSpacePosture(ctx, postureA)
			},
		},
		{
			Offset: 6 * time.Second,
			Name:   "halve cartesian stiffness",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.SetCartesianStiffness(ctx, nominal.Scale(0.5))
			},
		},
		{
			Offset: 9 * time.Second,
			Name:   "set null-space posture B",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.SetNullSpacePosture(ctx, postureB)
			},
		},
		{
			Offset: 12 * time.Second,
			Name:   "reset cartesian stiffness",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.ResetCartesianStiffness(ctx)
			},
		},
		{
			Offset: 14 * time.Second,
			Name:   "reset null-space posture",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.ResetNullSpacePosture(ctx)
			},
		},
		{
			Offset: 16 * time.Second,
			Name:   "set max contact wrench",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.SetMaxContactWrench(ctx, maxWrench)
			},
		},
		{
			Offset: 19 * time.Second,
			Name:   "reset max contact wrench",
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return r.ResetMaxContactWrench(ctx)
			},
		},
	})
}
