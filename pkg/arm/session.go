package arm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/marcusholm/go-armctl/internal/log"
)

// Named primitives used by the harness.
const (
	PrimHome         = "Home()"
	PrimZeroFTSensor = "ZeroFTSensor()"
)

// ErrFaultNotCleared is returned by Start when a fault cannot be cleared and
// manual intervention is required.
var ErrFaultNotCleared = errors.New("robot fault could not be cleared")

// Session binds a Robot backend to one bring-up lifecycle. It owns the
// discrete-command invariant: one primitive in flight at a time, completion
// observed via Busy polling before the next dispatch.
type Session struct {
	robot Robot
	id    string
	mode  Mode

	pollInterval time.Duration
	clk          clock.Clock
}

// NewSession creates a session around the given backend. Polling intervals
// default to 1 second, matching the vendor tutorials.
func NewSession(robot Robot) *Session {
	return &Session{
		robot:        robot,
		id:           uuid.NewString(),
		pollInterval: time.Second,
		clk:          clock.New(),
	}
}

// ID returns the session identifier, used in logs and telemetry.
func (s *Session) ID() string {
	return s.id
}

// Robot returns the underlying backend.
func (s *Session) Robot() Robot {
	return s.robot
}

// Start brings the robot up: clears an active fault if possible, enables the
// robot and waits until it reports operational.
func (s *Session) Start(ctx context.Context) error {
	fault, err := s.robot.Fault(ctx)
	if err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	if fault {
		log.Warn("fault active on the connected robot, trying to clear", "session", s.id)
		cleared, err := s.robot.ClearFault(ctx)
		if err != nil {
			return fmt.Errorf("session start: %w", err)
		}
		if !cleared {
			return ErrFaultNotCleared
		}
		log.Info("fault cleared", "session", s.id)
	}

	log.Info("enabling robot, make sure the E-stop is released", "session", s.id)
	if err := s.robot.Enable(ctx); err != nil {
		return fmt.Errorf("session start: %w", err)
	}

	for {
		operational, err := s.robot.Operational(ctx)
		if err != nil {
			return fmt.Errorf("session start: %w", err)
		}
		if operational {
			break
		}
		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
	log.Info("robot is now operational", "session", s.id)
	return nil
}

// EnsureMode switches the daemon control mode if it differs from the last
// mode this session set.
func (s *Session) EnsureMode(ctx context.Context, m Mode) error {
	if s.mode == m {
		return nil
	}
	if err := s.robot.SwitchMode(ctx, m); err != nil {
		return err
	}
	s.mode = m
	return nil
}

// RunPrimitive dispatches a named primitive and blocks until the robot
// reports it complete. There is no deadline of its own: if the backend never
// clears the busy flag this blocks until ctx is cancelled.
func (s *Session) RunPrimitive(ctx context.Context, name string) error {
	if err := s.EnsureMode(ctx, ModePrimitiveExecution); err != nil {
		return fmt.Errorf("run primitive %s: %w", name, err)
	}
	if err := s.robot.ExecutePrimitive(ctx, name); err != nil {
		return fmt.Errorf("run primitive %s: %w", name, err)
	}
	for {
		busy, err := s.robot.Busy(ctx)
		if err != nil {
			return fmt.Errorf("run primitive %s: %w", name, err)
		}
		if !busy {
			return nil
		}
		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

// sleep waits one poll interval or until ctx is cancelled.
func (s *Session) sleep(ctx context.Context) error {
	t := s.clk.Timer(s.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
