// Package config provides configuration helpers for go-armctl commands.
//
// Connection settings come from the environment, tuning parameters from an
// optional TOML profile. Anything not set falls back to the defaults used by
// the motion tutorial.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Default controller daemon configuration.
const (
	DefaultDaemonPort    = "7447"
	DefaultDashboardAddr = ":8080"
)

// DaemonAddr returns the controller daemon address from the ARM_ADDR env var.
// Falls back to the provided default if not set.
func DaemonAddr(defaultAddr string) string {
	if addr := os.Getenv("ARM_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

// DaemonAPIURL returns the controller daemon HTTP API URL for a host.
func DaemonAPIURL(host string) string {
	return fmt.Sprintf("http://%s:%s", host, DefaultDaemonPort)
}

// Profile holds tunable parameters for the motion loop. Zero values are
// replaced by defaults, so a profile file only needs to override what differs.
type Profile struct {
	Loop      LoopProfile      `toml:"loop"`
	Collision CollisionProfile `toml:"collision"`
	Posture   PostureProfile   `toml:"posture"`
}

// LoopProfile tunes the periodic control loop.
type LoopProfile struct {
	SwingAmp      float64 `toml:"swing_amp"`       // sine-sweep amplitude [m]
	SwingFreqHz   float64 `toml:"swing_freq_hz"`   // sine-sweep frequency [Hz]
	SwingAxis     int     `toml:"swing_axis"`      // 0=X, 1=Y, 2=Z
	TickTolerance float64 `toml:"tick_tolerance"`  // late-tick tolerance, fraction of period
	MissBudget    int     `toml:"miss_budget"`     // late ticks allowed before aborting
}

// CollisionProfile tunes the collision heuristic.
type CollisionProfile struct {
	ForceThreshold  float64 `toml:"force_threshold"`  // external TCP force limit [N]
	TorqueThreshold float64 `toml:"torque_threshold"` // external joint torque limit [Nm]
}

// PostureProfile holds the preferred joint positions applied by the schedule.
type PostureProfile struct {
	PreferredA []float64 `toml:"preferred_a"`
	PreferredB []float64 `toml:"preferred_b"`
}

// Default returns the profile used when no file is given, matching the
// tutorial constants.
func Default() Profile {
	return Profile{
		Loop: LoopProfile{
			SwingAmp:      0.1,
			SwingFreqHz:   0.3,
			SwingAxis:     1,
			TickTolerance: 0.2,
			MissBudget:    10,
		},
		Collision: CollisionProfile{
			ForceThreshold:  10.0,
			TorqueThreshold: 5.0,
		},
		Posture: PostureProfile{
			PreferredA: []float64{0.938, -1.108, -1.254, 1.464, 1.073, 0.278, -0.658},
			PreferredB: []float64{-0.938, -1.108, 1.254, 1.464, -1.073, 0.278, 0.658},
		},
	}
}

// Load reads a TOML profile from path, layered over Default.
// An empty path returns Default unchanged.
func Load(path string) (Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Loop.SwingAmp < 0 {
		return fmt.Errorf("loop.swing_amp must be >= 0, got %v", p.Loop.SwingAmp)
	}
	if p.Loop.SwingFreqHz <= 0 {
		return fmt.Errorf("loop.swing_freq_hz must be > 0, got %v", p.Loop.SwingFreqHz)
	}
	if p.Loop.SwingAxis < 0 || p.Loop.SwingAxis > 2 {
		return fmt.Errorf("loop.swing_axis must be 0, 1 or 2, got %d", p.Loop.SwingAxis)
	}
	if p.Collision.ForceThreshold <= 0 || p.Collision.TorqueThreshold <= 0 {
		return fmt.Errorf("collision thresholds must be > 0")
	}
	return nil
}
