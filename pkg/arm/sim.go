package arm

import (
	"context"
	"fmt"
	"sync"
)

// Sim implements Robot in memory for tests and --sim runs.
//
// Progress is poll-driven rather than time-driven: each Operational poll
// advances bring-up, each Busy poll advances the in-flight primitive. That
// keeps tests deterministic without sleeping.
type Sim struct {
	mu sync.Mutex

	info    Info
	states  States
	mode    Mode
	fault   bool
	enabled bool
	stopped bool
	closed  bool

	// FaultClearable controls whether ClearFault succeeds.
	FaultClearable bool

	// EnablePolls is how many Operational polls it takes after Enable before
	// the robot reports operational.
	EnablePolls int

	// PrimitiveBusyPolls is how many Busy polls an executing primitive stays
	// busy for.
	PrimitiveBusyPolls int

	operationalIn int
	busyFor       int
	pendingPrim   string

	// Recorded calls for verification.
	Primitives  []string
	SentTargets []Pose
	TuningCalls []string

	// Overrides. When nil the default behavior applies.
	SendFunc   func(ctx context.Context, target Pose) error
	StatesFunc func(ctx context.Context) (States, error)
}

// NewSim creates a simulated 7-DOF robot with a plausible home pose and
// nominal stiffness.
func NewSim(serial string) *Sim {
	return &Sim{
		info: Info{
			SerialNumber:     serial,
			DOF:              7,
			NominalStiffness: Stiffness{4000, 4000, 4000, 1900, 1900, 1900},
		},
		states: States{
			TCPPose: Pose{
				Position:    [3]float64{0.68, -0.11, 0.42},
				Orientation: [4]float64{0, 0, 1, 0},
			},
			TauExt: make(JointVector, 7),
			Q:      make(JointVector, 7),
		},
		FaultClearable:     true,
		EnablePolls:        2,
		PrimitiveBusyPolls: 2,
	}
}

// InjectFault puts the simulated robot into fault state.
func (s *Sim) InjectFault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = true
}

// SetExtWrench sets the external TCP wrench reported in States.
func (s *Sim) SetExtWrench(w Wrench) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states.ExtWrenchInWorld = w
}

// SetTauExt sets the external joint torques reported in States.
func (s *Sim) SetTauExt(tau JointVector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states.TauExt = tau.Copy()
}

// Stopped reports whether Stop has been called.
func (s *Sim) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// TargetCount returns how many Cartesian targets have been sent.
func (s *Sim) TargetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.SentTargets)
}

// TuningCallNames returns a copy of the recorded tuning calls.
func (s *Sim) TuningCallNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.TuningCalls))
	copy(out, s.TuningCalls)
	return out
}

// LastTarget returns the most recent Cartesian target, if any.
func (s *Sim) LastTarget() (Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.SentTargets) == 0 {
		return Pose{}, false
	}
	return s.SentTargets[len(s.SentTargets)-1], true
}

// Fault reports the injected fault state.
func (s *Sim) Fault(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault, nil
}

// ClearFault clears the fault when FaultClearable is set.
func (s *Sim) ClearFault(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.FaultClearable {
		return false, nil
	}
	s.fault = false
	return true, nil
}

// Enable releases the simulated robot; Operational turns true after
// EnablePolls polls.
func (s *Sim) Enable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault {
		return fmt.Errorf("cannot enable: fault active")
	}
	s.enabled = true
	s.operationalIn = s.EnablePolls
	return nil
}

// Operational reports readiness, advancing the simulated bring-up one poll.
func (s *Sim) Operational(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.fault {
		return false, nil
	}
	if s.operationalIn > 0 {
		s.operationalIn--
		return s.operationalIn == 0, nil
	}
	return true, nil
}

// Busy reports primitive progress, advancing it one poll.
func (s *Sim) Busy(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busyFor > 0 {
		s.busyFor--
		if s.busyFor == 0 {
			s.finishPrimitiveLocked()
		}
		return true, nil
	}
	return false, nil
}

// finishPrimitiveLocked applies the completed primitive's effect.
func (s *Sim) finishPrimitiveLocked() {
	if s.pendingPrim == "ZeroFTSensor()" {
		s.states.ExtWrenchInWorld = Wrench{}
	}
	s.pendingPrim = ""
}

// Stop halts motion and aborts any in-flight primitive.
func (s *Sim) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.busyFor = 0
	s.pendingPrim = ""
	return nil
}

// SwitchMode changes the active control mode.
func (s *Sim) SwitchMode(ctx context.Context, m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault {
		return fmt.Errorf("cannot switch mode: fault active")
	}
	s.mode = m
	return nil
}

// ExecutePrimitive starts a named primitive.
func (s *Sim) ExecutePrimitive(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModePrimitiveExecution {
		return fmt.Errorf("execute primitive %s: mode is %s", name, s.mode)
	}
	if s.busyFor > 0 {
		return fmt.Errorf("execute primitive %s: %s still in flight", name, s.pendingPrim)
	}
	s.Primitives = append(s.Primitives, name)
	s.pendingPrim = name
	s.busyFor = s.PrimitiveBusyPolls
	return nil
}

// SendCartesianMotionForce records the target and echoes it into the state.
func (s *Sim) SendCartesianMotionForce(ctx context.Context, target Pose) error {
	if s.SendFunc != nil {
		return s.SendFunc(ctx, target)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeCartesianMotionForce {
		return fmt.Errorf("send cartesian target: mode is %s", s.mode)
	}
	s.SentTargets = append(s.SentTargets, target)
	s.states.TCPPose = target
	return nil
}

// SetNullSpacePosture records the call.
func (s *Sim) SetNullSpacePosture(ctx context.Context, preferred JointVector) error {
	return s.recordTuning("SetNullSpacePosture")
}

// ResetNullSpacePosture records the call.
func (s *Sim) ResetNullSpacePosture(ctx context.Context) error {
	return s.recordTuning("ResetNullSpacePosture")
}

// SetCartesianStiffness records the call.
func (s *Sim) SetCartesianStiffness(ctx context.Context, k Stiffness) error {
	return s.recordTuning("SetCartesianStiffness")
}

// ResetCartesianStiffness records the call.
func (s *Sim) ResetCartesianStiffness(ctx context.Context) error {
	return s.recordTuning("ResetCartesianStiffness")
}

// SetMaxContactWrench records the call.
func (s *Sim) SetMaxContactWrench(ctx context.Context, max Wrench) error {
	return s.recordTuning("SetMaxContactWrench")
}

// ResetMaxContactWrench records the call.
func (s *Sim) ResetMaxContactWrench(ctx context.Context) error {
	return s.recordTuning("ResetMaxContactWrench")
}

func (s *Sim) recordTuning(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TuningCalls = append(s.TuningCalls, name)
	return nil
}

// States returns a snapshot of the simulated state.
func (s *Sim) States(ctx context.Context) (States, error) {
	if s.StatesFunc != nil {
		return s.StatesFunc(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.states
	out.TauExt = s.states.TauExt.Copy()
	out.Q = s.states.Q.Copy()
	return out, nil
}

// Info returns the static robot info.
func (s *Sim) Info(ctx context.Context) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info, nil
}

// Close marks the simulated connection as closed.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
