package arm

import "context"

// The interfaces below are segregated by concern so consumers can depend on
// only what they use: the zeroing flow needs primitives and state readout,
// the motion loop needs motion commands and tuning.

// SessionController covers connection lifecycle: fault handling, enabling
// and mode switching.
type SessionController interface {
	// Fault reports whether a fault is active on the connected robot.
	Fault(ctx context.Context) (bool, error)
	// ClearFault attempts to clear an active fault. It returns false when the
	// fault persists and manual intervention is needed.
	ClearFault(ctx context.Context) (bool, error)
	// Enable releases the robot for operation. The E-stop must be released
	// before calling this.
	Enable(ctx context.Context) error
	// Operational reports whether the robot is ready to take commands.
	Operational(ctx context.Context) (bool, error)
	// Busy reports whether a discrete primitive is still executing.
	Busy(ctx context.Context) (bool, error)
	// Stop halts all motion and discards the active command.
	Stop(ctx context.Context) error
	// SwitchMode changes the daemon control mode.
	SwitchMode(ctx context.Context, m Mode) error
	// Close tears down the connection.
	Close() error
}

// PrimitiveExecutor dispatches named discrete operations such as "Home()" or
// "ZeroFTSensor()". Exactly one primitive may be in flight at a time; callers
// poll Busy until it clears before issuing the next.
type PrimitiveExecutor interface {
	ExecutePrimitive(ctx context.Context, name string) error
}

// MotionCommander transmits periodic Cartesian targets. Sending only a target
// pose results in pure motion control.
type MotionCommander interface {
	SendCartesianMotionForce(ctx context.Context, target Pose) error
}

// TuningController adjusts control-law parameters online. Each parameter can
// be set independently and reset to its nominal default.
type TuningController interface {
	SetNullSpacePosture(ctx context.Context, preferred JointVector) error
	ResetNullSpacePosture(ctx context.Context) error
	SetCartesianStiffness(ctx context.Context, k Stiffness) error
	ResetCartesianStiffness(ctx context.Context) error
	SetMaxContactWrench(ctx context.Context, max Wrench) error
	ResetMaxContactWrench(ctx context.Context) error
}

// StateReader provides pose, wrench and joint telemetry on demand.
type StateReader interface {
	States(ctx context.Context) (States, error)
	Info(ctx context.Context) (Info, error)
}

// Robot is the composite interface for full robot control.
type Robot interface {
	SessionController
	PrimitiveExecutor
	MotionCommander
	TuningController
	StateReader
}

// Ensure the provided backends implement Robot
var (
	_ Robot = (*HTTPRobot)(nil)
	_ Robot = (*Sim)(nil)
)
