package motion

import (
	"math"

	"github.com/marcusholm/go-armctl/pkg/arm"
)

// Collision heuristic thresholds. Demo values, not safety-rated.
const (
	// DefaultForceThreshold is the external TCP force limit [N].
	DefaultForceThreshold = 10.0
	// DefaultTorqueThreshold is the external joint torque limit [Nm].
	DefaultTorqueThreshold = 5.0
)

// CollisionDetector flags a collision when the external TCP force magnitude
// exceeds ForceThreshold or any external joint torque magnitude exceeds
// TorqueThreshold.
type CollisionDetector struct {
	ForceThreshold  float64
	TorqueThreshold float64
}

// NewCollisionDetector returns a detector with the demo thresholds.
func NewCollisionDetector() CollisionDetector {
	return CollisionDetector{
		ForceThreshold:  DefaultForceThreshold,
		TorqueThreshold: DefaultTorqueThreshold,
	}
}

// Check reports whether the given telemetry indicates a collision.
func (d CollisionDetector) Check(w arm.Wrench, tauExt arm.JointVector) bool {
	if w.ForceNorm() > d.ForceThreshold {
		return true
	}
	for _, tau := range tauExt {
		if math.Abs(tau) > d.TorqueThreshold {
			return true
		}
	}
	return false
}
