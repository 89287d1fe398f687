package dashboard

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/marcusholm/go-armctl/pkg/arm"
	"github.com/marcusholm/go-armctl/pkg/motion"
	"github.com/marcusholm/go-armctl/pkg/telemetry"
)

func newTestServer() *Server {
	return NewServer(":0", Status{
		Session:     "test-session",
		Serial:      "Rizon4s-123456",
		FrequencyHz: 20,
	})
}

func getJSON(t *testing.T, s *Server, path string, out any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode %s: %v\n%s", path, err, body)
	}
}

func TestServer_Status(t *testing.T) {
	s := newTestServer()

	var status Status
	getJSON(t, s, "/api/status", &status)

	if status.Session != "test-session" || status.Serial != "Rizon4s-123456" {
		t.Errorf("status = %+v", status)
	}
	if status.Ticks != 0 || status.Collision {
		t.Errorf("fresh server reports activity: %+v", status)
	}
}

func TestServer_PublishSnapshotUpdatesState(t *testing.T) {
	s := newTestServer()

	snap := motion.Snapshot{
		Tick:    4,
		Elapsed: 0.25,
		Target:  arm.Pose{Position: [3]float64{0.68, -0.05, 0.42}},
		Wrench:  arm.Wrench{Force: [3]float64{0, 1, 0}},
	}
	s.PublishSnapshot(snap)

	var got motion.Snapshot
	getJSON(t, s, "/api/state", &got)
	if got.Tick != 4 || got.Target.Position[1] != -0.05 {
		t.Errorf("state = %+v", got)
	}

	var status Status
	getJSON(t, s, "/api/status", &status)
	if status.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", status.Ticks)
	}
	if status.Collision {
		t.Error("collision flagged without a collision snapshot")
	}
}

func TestServer_CollisionSnapshotRetainsEvent(t *testing.T) {
	s := newTestServer()

	s.PublishSnapshot(motion.Snapshot{
		Tick:      9,
		Wrench:    arm.Wrench{Force: [3]float64{0, 0, 12}},
		Collision: true,
	})

	var status Status
	getJSON(t, s, "/api/status", &status)
	if !status.Collision {
		t.Error("status does not flag the collision")
	}

	var events []telemetry.Event
	getJSON(t, s, "/api/events", &events)
	if len(events) != 1 || events[0].Type != telemetry.TypeCollision {
		t.Fatalf("events = %+v, want one collision event", events)
	}
	var data telemetry.CollisionData
	if err := events[0].ParseData(&data); err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if data.ForceNorm != 12 {
		t.Errorf("force norm = %v, want 12", data.ForceNorm)
	}
}

func TestServer_PublishActionAndFault(t *testing.T) {
	s := newTestServer()

	s.PublishAction("set null-space posture A")
	s.PublishFault()

	var events []telemetry.Event
	getJSON(t, s, "/api/events", &events)
	if len(events) != 2 {
		t.Fatalf("events = %+v, want two", events)
	}
	if events[0].Type != telemetry.TypeAction || events[1].Type != telemetry.TypeFault {
		t.Errorf("event types = %s, %s", events[0].Type, events[1].Type)
	}

	var data telemetry.ActionData
	if err := events[0].ParseData(&data); err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if data.Name != "set null-space posture A" {
		t.Errorf("action name = %q", data.Name)
	}
}

func TestServer_EventRetentionCaps(t *testing.T) {
	s := newTestServer()

	for i := 0; i < maxEvents+50; i++ {
		s.PublishAction("tick")
	}

	var events []telemetry.Event
	getJSON(t, s, "/api/events", &events)
	if len(events) != maxEvents {
		t.Errorf("retained %d events, want %d", len(events), maxEvents)
	}
}

func TestServer_WSRequiresUpgrade(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("GET", "/ws/state", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("GET /ws/state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 426 {
		t.Errorf("plain GET on websocket route: status %d, want 426", resp.StatusCode)
	}
}
