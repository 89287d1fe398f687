// Package arm provides the abstraction over a collaborative arm's controller
// daemon: session management, named primitives, Cartesian motion commands,
// online tuning and state readout.
//
// The daemon performs all real control, kinematics and estimation. This
// package only marshals commands and telemetry; the hard guarantees live on
// the other side of the wire.
package arm

import "math"

// Pose is a Cartesian TCP pose: position in meters plus an orientation
// unit quaternion (w, x, y, z), expressed in the robot world frame.
type Pose struct {
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"`
}

// Translated returns a copy of p with delta added to the given position axis
// (0=X, 1=Y, 2=Z). Orientation is unchanged.
func (p Pose) Translated(axis int, delta float64) Pose {
	out := p
	out.Position[axis] += delta
	return out
}

// Wrench is a combined force/torque vector: force in N, torque in Nm.
type Wrench struct {
	Force  [3]float64 `json:"force"`
	Torque [3]float64 `json:"torque"`
}

// ForceNorm returns the 2-norm of the force component.
func (w Wrench) ForceNorm() float64 {
	return math.Sqrt(w.Force[0]*w.Force[0] + w.Force[1]*w.Force[1] + w.Force[2]*w.Force[2])
}

// Vec6 returns the wrench flattened to [Fx, Fy, Fz, Tx, Ty, Tz].
func (w Wrench) Vec6() [6]float64 {
	return [6]float64{w.Force[0], w.Force[1], w.Force[2], w.Torque[0], w.Torque[1], w.Torque[2]}
}

// Stiffness holds the 6 Cartesian stiffness coefficients: 3 translational
// (N/m) followed by 3 rotational (Nm/rad).
type Stiffness [6]float64

// Scale returns the stiffness with every coefficient multiplied by k.
func (s Stiffness) Scale(k float64) Stiffness {
	var out Stiffness
	for i, v := range s {
		out[i] = v * k
	}
	return out
}

// JointVector is a joint-space vector (positions, torques), one entry per DOF.
type JointVector []float64

// Copy returns an independent copy of the vector.
func (j JointVector) Copy() JointVector {
	out := make(JointVector, len(j))
	copy(out, j)
	return out
}

// Mode is the daemon's control mode.
type Mode int

const (
	// ModeIdle means no control mode is active.
	ModeIdle Mode = iota
	// ModePrimitiveExecution accepts named discrete primitives.
	ModePrimitiveExecution
	// ModeCartesianMotionForce accepts periodic Cartesian motion/force targets.
	ModeCartesianMotionForce
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModePrimitiveExecution:
		return "primitive_execution"
	case ModeCartesianMotionForce:
		return "cartesian_motion_force"
	default:
		return "idle"
	}
}

// States is a snapshot of the robot state as reported by the daemon.
type States struct {
	// TCPPose is the measured TCP pose in the world frame.
	TCPPose Pose `json:"tcp_pose"`
	// ExtWrenchInWorld is the estimated external TCP wrench in the world frame.
	ExtWrenchInWorld Wrench `json:"ext_wrench_in_world"`
	// TauExt is the estimated external torque on each joint [Nm].
	TauExt JointVector `json:"tau_ext"`
	// Q is the measured joint positions [rad].
	Q JointVector `json:"q"`
}

// Info holds static information about the connected robot.
type Info struct {
	SerialNumber     string    `json:"serial_number"`
	DOF              int       `json:"dof"`
	NominalStiffness Stiffness `json:"nominal_stiffness"`
}
