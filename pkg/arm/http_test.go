package arm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// daemonStub records requests against the controller daemon API and serves
// canned responses.
type daemonStub struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]json.RawMessage
	respond  map[string]any
}

func newDaemonStub() *daemonStub {
	return &daemonStub{
		bodies:  make(map[string]json.RawMessage),
		respond: make(map[string]any),
	}
}

func (d *daemonStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	key := r.Method + " " + r.URL.Path
	d.requests = append(d.requests, key)
	if r.Body != nil {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			d.bodies[key] = raw
		}
	}
	resp, ok := d.respond[r.URL.Path]
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte("{}"))
		return
	}
	json.NewEncoder(w).Encode(resp)
}

func (d *daemonStub) sawRequest(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.requests {
		if r == key {
			return true
		}
	}
	return false
}

func (d *daemonStub) body(key string) json.RawMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodies[key]
}

func TestHTTPRobot_StatusQueries(t *testing.T) {
	stub := newDaemonStub()
	stub.respond["/api/fault"] = map[string]bool{"fault": true}
	stub.respond["/api/operational"] = map[string]bool{"operational": true}
	stub.respond["/api/busy"] = map[string]bool{"busy": true}

	srv := httptest.NewServer(stub)
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)
	ctx := context.Background()

	fault, err := robot.Fault(ctx)
	if err != nil || !fault {
		t.Errorf("Fault = %v, %v; want true, nil", fault, err)
	}
	operational, err := robot.Operational(ctx)
	if err != nil || !operational {
		t.Errorf("Operational = %v, %v; want true, nil", operational, err)
	}
	busy, err := robot.Busy(ctx)
	if err != nil || !busy {
		t.Errorf("Busy = %v, %v; want true, nil", busy, err)
	}

	for _, key := range []string{"GET /api/fault", "GET /api/operational", "GET /api/busy"} {
		if !stub.sawRequest(key) {
			t.Errorf("daemon never saw %s", key)
		}
	}
}

func TestHTTPRobot_ClearFault(t *testing.T) {
	stub := newDaemonStub()
	stub.respond["/api/fault/clear"] = map[string]bool{"cleared": true}

	srv := httptest.NewServer(stub)
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)

	cleared, err := robot.ClearFault(context.Background())
	if err != nil || !cleared {
		t.Errorf("ClearFault = %v, %v; want true, nil", cleared, err)
	}
	if !stub.sawRequest("POST /api/fault/clear") {
		t.Error("daemon never saw POST /api/fault/clear")
	}
}

func TestHTTPRobot_CommandPayloads(t *testing.T) {
	stub := newDaemonStub()
	srv := httptest.NewServer(stub)
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)
	ctx := context.Background()

	if err := robot.SwitchMode(ctx, ModeCartesianMotionForce); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := robot.ExecutePrimitive(ctx, PrimHome); err != nil {
		t.Fatalf("ExecutePrimitive: %v", err)
	}
	target := Pose{Position: [3]float64{0.68, -0.11, 0.42}, Orientation: [4]float64{0, 0, 1, 0}}
	if err := robot.SendCartesianMotionForce(ctx, target); err != nil {
		t.Fatalf("SendCartesianMotionForce: %v", err)
	}

	var mode struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(stub.body("POST /api/mode"), &mode); err != nil {
		t.Fatalf("decode mode body: %v", err)
	}
	if mode.Mode != "cartesian_motion_force" {
		t.Errorf("mode payload = %q, want cartesian_motion_force", mode.Mode)
	}

	var prim struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(stub.body("POST /api/primitive"), &prim); err != nil {
		t.Fatalf("decode primitive body: %v", err)
	}
	if prim.Name != PrimHome {
		t.Errorf("primitive payload = %q, want %q", prim.Name, PrimHome)
	}

	var motion struct {
		Target Pose `json:"target"`
	}
	if err := json.Unmarshal(stub.body("POST /api/motion/cartesian"), &motion); err != nil {
		t.Fatalf("decode motion body: %v", err)
	}
	if motion.Target != target {
		t.Errorf("motion payload = %+v, want %+v", motion.Target, target)
	}
}

func TestHTTPRobot_TuningEndpoints(t *testing.T) {
	stub := newDaemonStub()
	srv := httptest.NewServer(stub)
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)
	ctx := context.Background()

	calls := []struct {
		name string
		do   func() error
		key  string
	}{
		{"SetNullSpacePosture", func() error {
			return robot.SetNullSpacePosture(ctx, JointVector{1, 2, 3})
		}, "POST /api/tuning/null-space-posture"},
		{"ResetNullSpacePosture", func() error {
			return robot.ResetNullSpacePosture(ctx)
		}, "POST /api/tuning/null-space-posture/reset"},
		{"SetCartesianStiffness", func() error {
			return robot.SetCartesianStiffness(ctx, Stiffness{1, 2, 3, 4, 5, 6})
		}, "POST /api/tuning/cartesian-stiffness"},
		{"ResetCartesianStiffness", func() error {
			return robot.ResetCartesianStiffness(ctx)
		}, "POST /api/tuning/cartesian-stiffness/reset"},
		{"SetMaxContactWrench", func() error {
			return robot.SetMaxContactWrench(ctx, Wrench{Force: [3]float64{10, 10, 10}})
		}, "POST /api/tuning/max-contact-wrench"},
		{"ResetMaxContactWrench", func() error {
			return robot.ResetMaxContactWrench(ctx)
		}, "POST /api/tuning/max-contact-wrench/reset"},
	}

	for _, c := range calls {
		if err := c.do(); err != nil {
			t.Errorf("%s: %v", c.name, err)
		}
		if !stub.sawRequest(c.key) {
			t.Errorf("%s: daemon never saw %s", c.name, c.key)
		}
	}
}

func TestHTTPRobot_States(t *testing.T) {
	stub := newDaemonStub()
	stub.respond["/api/states"] = States{
		TCPPose:          Pose{Position: [3]float64{0.5, 0, 0.4}, Orientation: [4]float64{0, 0, 1, 0}},
		ExtWrenchInWorld: Wrench{Force: [3]float64{1, 2, 3}},
		TauExt:           JointVector{0.1, 0.2},
		Q:                JointVector{1, 2},
	}
	stub.respond["/api/info"] = Info{SerialNumber: "Rizon4s-123456", DOF: 7}

	srv := httptest.NewServer(stub)
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)
	ctx := context.Background()

	states, err := robot.States(ctx)
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if states.TCPPose.Position[0] != 0.5 || states.ExtWrenchInWorld.Force[2] != 3 {
		t.Errorf("states decoded wrong: %+v", states)
	}

	info, err := robot.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.SerialNumber != "Rizon4s-123456" || info.DOF != 7 {
		t.Errorf("info decoded wrong: %+v", info)
	}
}

func TestHTTPRobot_DaemonErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mode switch rejected", http.StatusConflict)
	}))
	defer srv.Close()
	robot := NewHTTPRobot(srv.URL)

	if err := robot.Enable(context.Background()); err == nil {
		t.Error("Enable: expected error from 409 response")
	}
}
