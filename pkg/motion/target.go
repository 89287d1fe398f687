// Package motion implements the periodic Cartesian motion loop: target
// generation (hold or sine sweep), scheduled online parameter changes, a
// simple collision heuristic and tick timeliness monitoring.
package motion

import (
	"math"
	"time"

	"github.com/marcusholm/go-armctl/pkg/arm"
)

// Sine-sweep defaults, matching the vendor motion tutorial.
const (
	// DefaultSwingAmp is the TCP sine-sweep amplitude [m].
	DefaultSwingAmp = 0.1
	// DefaultSwingFreqHz is the TCP sine-sweep frequency [Hz].
	DefaultSwingFreqHz = 0.3
	// DefaultSwingAxis sweeps along the world Y axis.
	DefaultSwingAxis = 1
)

// TargetGenerator computes the commanded TCP pose for a given elapsed time.
// It either holds the initial pose or offsets one position axis sinusoidally.
type TargetGenerator struct {
	Init   arm.Pose
	Hold   bool
	Amp    float64
	FreqHz float64
	Axis   int
}

// TargetAt returns the target pose at elapsed time t since loop start.
func (g TargetGenerator) TargetAt(t time.Duration) arm.Pose {
	if g.Hold {
		return g.Init
	}
	offset := g.Amp * math.Sin(2*math.Pi*g.FreqHz*t.Seconds())
	return g.Init.Translated(g.Axis, offset)
}
