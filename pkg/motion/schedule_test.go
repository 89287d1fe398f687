package motion

import (
	"context"
	"testing"
	"time"

	"github.com/marcusholm/go-armctl/pkg/arm"
)

// namedSchedule builds a schedule with no-op actions at the tutorial offsets.
func namedSchedule() *Schedule {
	offsets := []time.Duration{3, 6, 9, 12, 14, 16, 19}
	names := []string{"a3", "a6", "a9", "a12", "a14", "a16", "a19"}

	actions := make([]Action, len(offsets))
	for i := range offsets {
		actions[i] = Action{
			Offset: offsets[i] * time.Second,
			Name:   names[i],
			Apply: func(ctx context.Context, r arm.TuningController) error {
				return nil
			},
		}
	}
	return NewSchedule(DefaultWindow, actions)
}

func TestSchedule_DivisorPeriodFiresOnExactOffsets(t *testing.T) {
	periods := []time.Duration{
		time.Second,            // 1 Hz
		500 * time.Millisecond, // 2 Hz
		100 * time.Millisecond, // 10 Hz
		10 * time.Millisecond,  // 100 Hz
	}

	wantMod := map[time.Duration]string{
		3 * time.Second:  "a3",
		6 * time.Second:  "a6",
		9 * time.Second:  "a9",
		12 * time.Second: "a12",
		14 * time.Second: "a14",
		16 * time.Second: "a16",
		19 * time.Second: "a19",
	}

	for _, period := range periods {
		s := namedSchedule()
		ticks := int(40 * time.Second / period) // two full windows

		for i := 0; i <= ticks; i++ {
			elapsed := time.Duration(i) * period
			action := s.Due(elapsed)

			want, expected := wantMod[elapsed%DefaultWindow]
			if expected && action == nil {
				t.Fatalf("period %v: no action at elapsed %v, want %s", period, elapsed, want)
			}
			if !expected && action != nil {
				t.Fatalf("period %v: unexpected action %s at elapsed %v", period, action.Name, elapsed)
			}
			if expected && action.Name != want {
				t.Fatalf("period %v: got action %s at elapsed %v, want %s", period, action.Name, elapsed, want)
			}
		}
	}
}

func TestSchedule_NonDivisorPeriodFiresOncePerWindow(t *testing.T) {
	// 0.3s does not divide the offsets; exact modulo matching would skip
	// every action. Each must still fire exactly once per window.
	period := 300 * time.Millisecond
	s := namedSchedule()

	counts := make(map[string]int)
	ticks := int(40 * time.Second / period)
	for i := 0; i <= ticks; i++ {
		if action := s.Due(time.Duration(i) * period); action != nil {
			counts[action.Name]++
		}
	}

	for _, name := range []string{"a3", "a6", "a9", "a12", "a14", "a16", "a19"} {
		if counts[name] != 2 {
			t.Errorf("action %s fired %d times over two windows, want 2", name, counts[name])
		}
	}
}

func TestSchedule_AtMostOneActionPerTick(t *testing.T) {
	// A long stall leaves several actions pending; the earliest fires first
	// and the rest drain one per tick.
	s := namedSchedule()

	if got := s.Due(0); got != nil {
		t.Fatalf("unexpected action at t=0: %s", got.Name)
	}

	got := s.Due(10 * time.Second)
	if got == nil || got.Name != "a3" {
		t.Fatalf("after stall to 10s: got %v, want a3", got)
	}
	got = s.Due(10*time.Second + time.Second)
	if got == nil || got.Name != "a6" {
		t.Fatalf("second tick after stall: got %v, want a6", got)
	}
	got = s.Due(10*time.Second + 2*time.Second)
	if got == nil || got.Name != "a9" {
		t.Fatalf("third tick after stall: got %v, want a9", got)
	}
}

func TestSchedule_WindowRepeats(t *testing.T) {
	s := namedSchedule()

	first := s.Due(3 * time.Second)
	if first == nil || first.Name != "a3" {
		t.Fatalf("first window: got %v, want a3", first)
	}
	if again := s.Due(4 * time.Second); again != nil {
		t.Fatalf("a3 fired twice in one window: %s", again.Name)
	}

	second := s.Due(23 * time.Second)
	if second == nil || second.Name != "a3" {
		t.Fatalf("second window: got %v, want a3", second)
	}
}

func TestTutorialSchedule_AppliesExpectedCalls(t *testing.T) {
	sim := arm.NewSim("sched-test")
	nominal := arm.Stiffness{4000, 4000, 4000, 1900, 1900, 1900}
	postureA := arm.JointVector{0.938, -1.108, -1.254, 1.464, 1.073, 0.278, -0.658}
	postureB := arm.JointVector{-0.938, -1.108, 1.254, 1.464, -1.073, 0.278, 0.658}

	s := TutorialSchedule(nominal, postureA, postureB)

	period := time.Second
	for i := 0; i <= 19; i++ {
		if action := s.Due(time.Duration(i) * period); action != nil {
			if err := action.Apply(context.Background(), sim); err != nil {
				t.Fatalf("apply %s: %v", action.Name, err)
			}
		}
	}

	want := []string{
		"SetNullSpacePosture",
		"SetCartesianStiffness",
		"SetNullSpacePosture",
		"ResetCartesianStiffness",
		"ResetNullSpacePosture",
		"SetMaxContactWrench",
		"ResetMaxContactWrench",
	}
	if len(sim.TuningCalls) != len(want) {
		t.Fatalf("got %d tuning calls %v, want %d", len(sim.TuningCalls), sim.TuningCalls, len(want))
	}
	for i := range want {
		if sim.TuningCalls[i] != want[i] {
			t.Errorf("call %d: got %s, want %s", i, sim.TuningCalls[i], want[i])
		}
	}
}
