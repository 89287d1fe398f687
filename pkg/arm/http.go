package arm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marcusholm/go-armctl/internal/httpc"
)

// HTTPRobot implements Robot against a controller daemon's HTTP/JSON API.
// This is the primary backend for real hardware.
type HTTPRobot struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRobot creates a backend talking to the daemon at baseURL,
// e.g. "http://10.0.0.20:7447".
func NewHTTPRobot(baseURL string) *HTTPRobot {
	return &HTTPRobot{
		baseURL: baseURL,
		client:  httpc.Client,
	}
}

// Fault reports whether a fault is active.
func (r *HTTPRobot) Fault(ctx context.Context) (bool, error) {
	var out struct {
		Fault bool `json:"fault"`
	}
	if err := httpc.GetJSON(ctx, r.client, r.baseURL+"/api/fault", &out); err != nil {
		return false, fmt.Errorf("query fault: %w", err)
	}
	return out.Fault, nil
}

// ClearFault attempts to clear an active fault.
func (r *HTTPRobot) ClearFault(ctx context.Context) (bool, error) {
	var out struct {
		Cleared bool `json:"cleared"`
	}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/fault/clear", nil, &out); err != nil {
		return false, fmt.Errorf("clear fault: %w", err)
	}
	return out.Cleared, nil
}

// Enable releases the robot for operation.
func (r *HTTPRobot) Enable(ctx context.Context) error {
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/enable", nil, nil); err != nil {
		return fmt.Errorf("enable: %w", err)
	}
	return nil
}

// Operational reports whether the robot is ready to take commands.
func (r *HTTPRobot) Operational(ctx context.Context) (bool, error) {
	var out struct {
		Operational bool `json:"operational"`
	}
	if err := httpc.GetJSON(ctx, r.client, r.baseURL+"/api/operational", &out); err != nil {
		return false, fmt.Errorf("query operational: %w", err)
	}
	return out.Operational, nil
}

// Busy reports whether a primitive is still executing.
func (r *HTTPRobot) Busy(ctx context.Context) (bool, error) {
	var out struct {
		Busy bool `json:"busy"`
	}
	if err := httpc.GetJSON(ctx, r.client, r.baseURL+"/api/busy", &out); err != nil {
		return false, fmt.Errorf("query busy: %w", err)
	}
	return out.Busy, nil
}

// Stop halts all motion.
func (r *HTTPRobot) Stop(ctx context.Context) error {
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/stop", nil, nil); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// SwitchMode changes the daemon control mode.
func (r *HTTPRobot) SwitchMode(ctx context.Context, m Mode) error {
	in := struct {
		Mode string `json:"mode"`
	}{Mode: m.String()}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/mode", in, nil); err != nil {
		return fmt.Errorf("switch mode to %s: %w", m, err)
	}
	return nil
}

// ExecutePrimitive dispatches a named primitive such as "Home()".
func (r *HTTPRobot) ExecutePrimitive(ctx context.Context, name string) error {
	in := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/primitive", in, nil); err != nil {
		return fmt.Errorf("execute primitive %s: %w", name, err)
	}
	return nil
}

// SendCartesianMotionForce transmits a Cartesian motion target.
func (r *HTTPRobot) SendCartesianMotionForce(ctx context.Context, target Pose) error {
	in := struct {
		Target Pose `json:"target"`
	}{Target: target}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/motion/cartesian", in, nil); err != nil {
		return fmt.Errorf("send cartesian target: %w", err)
	}
	return nil
}

// SetNullSpacePosture sets the preferred joint positions.
func (r *HTTPRobot) SetNullSpacePosture(ctx context.Context, preferred JointVector) error {
	in := struct {
		Preferred JointVector `json:"preferred"`
	}{Preferred: preferred}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/null-space-posture", in, nil); err != nil {
		return fmt.Errorf("set null-space posture: %w", err)
	}
	return nil
}

// ResetNullSpacePosture restores the nominal preferred joint positions.
func (r *HTTPRobot) ResetNullSpacePosture(ctx context.Context) error {
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/null-space-posture/reset", nil, nil); err != nil {
		return fmt.Errorf("reset null-space posture: %w", err)
	}
	return nil
}

// SetCartesianStiffness sets the Cartesian stiffness coefficients.
func (r *HTTPRobot) SetCartesianStiffness(ctx context.Context, k Stiffness) error {
	in := struct {
		Stiffness Stiffness `json:"stiffness"`
	}{Stiffness: k}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/cartesian-stiffness", in, nil); err != nil {
		return fmt.Errorf("set cartesian stiffness: %w", err)
	}
	return nil
}

// ResetCartesianStiffness restores the nominal stiffness.
func (r *HTTPRobot) ResetCartesianStiffness(ctx context.Context) error {
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/cartesian-stiffness/reset", nil, nil); err != nil {
		return fmt.Errorf("reset cartesian stiffness: %w", err)
	}
	return nil
}

// SetMaxContactWrench enables regulation of the maximum contact wrench.
func (r *HTTPRobot) SetMaxContactWrench(ctx context.Context, max Wrench) error {
	in := struct {
		Max Wrench `json:"max"`
	}{Max: max}
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/max-contact-wrench", in, nil); err != nil {
		return fmt.Errorf("set max contact wrench: %w", err)
	}
	return nil
}

// ResetMaxContactWrench disables contact wrench regulation.
func (r *HTTPRobot) ResetMaxContactWrench(ctx context.Context) error {
	if err := httpc.PostJSON(ctx, r.client, r.baseURL+"/api/tuning/max-contact-wrench/reset", nil, nil); err != nil {
		return fmt.Errorf("reset max contact wrench: %w", err)
	}
	return nil
}

// States returns the current robot state snapshot.
func (r *HTTPRobot) States(ctx context.Context) (States, error) {
	var out States
	if err := httpc.GetJSON(ctx, r.client, r.baseURL+"/api/states", &out); err != nil {
		return States{}, fmt.Errorf("query states: %w", err)
	}
	return out, nil
}

// Info returns static robot information.
func (r *HTTPRobot) Info(ctx context.Context) (Info, error) {
	var out Info
	if err := httpc.GetJSON(ctx, r.client, r.baseURL+"/api/info", &out); err != nil {
		return Info{}, fmt.Errorf("query info: %w", err)
	}
	return out, nil
}

// Close is a no-op for the HTTP backend; connections are pooled.
func (r *HTTPRobot) Close() error {
	return nil
}
