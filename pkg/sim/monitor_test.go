package sim

import (
	"errors"
	"math"
	"testing"
)

func TestMonitor_ConvergesOnThreshold(t *testing.T) {
	m := NewMonitor(0.9, 100)
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, order := range []float64{0.1, 0.5, 0.89} {
		stop, err := m.Observe(order)
		if err != nil {
			t.Fatalf("observe(%g): %v", order, err)
		}
		if stop {
			t.Fatalf("stopped below threshold at order %g", order)
		}
	}

	stop, err := m.Observe(0.9)
	if err != nil {
		t.Fatalf("observe(0.9): %v", err)
	}
	if !stop {
		t.Fatal("order at threshold must stop the run")
	}

	agg, err := m.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !agg.Converged {
		t.Error("expected converged run")
	}
	if agg.Elapsed != 4 {
		t.Errorf("elapsed = %d, want 4", agg.Elapsed)
	}
	if agg.FinalOrder != 0.9 {
		t.Errorf("final order = %g, want 0.9", agg.FinalOrder)
	}
	want := (0.1 + 0.5 + 0.89 + 0.9) / 4
	if math.Abs(agg.IntegratedOrder-want) > 1e-12 {
		t.Errorf("integrated order = %g, want %g", agg.IntegratedOrder, want)
	}
}

func TestMonitor_TimesOut(t *testing.T) {
	m := NewMonitor(0.99, 3)
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var stop bool
	var err error
	for i := 0; i < 4; i++ {
		stop, err = m.Observe(0.1)
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
	}
	if !stop {
		t.Fatal("run must stop once elapsed time exceeds the budget")
	}

	agg, err := m.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if agg.Converged {
		t.Error("timed-out run must not report convergence")
	}
	if agg.Elapsed != 4 {
		t.Errorf("elapsed = %d, want 4", agg.Elapsed)
	}
}

func TestMonitor_RejectsBadTransitions(t *testing.T) {
	m := NewMonitor(0.9, 10)

	if _, err := m.Observe(0.5); !errors.Is(err, ErrBadTransition) {
		t.Errorf("observe before start: got %v, want ErrBadTransition", err)
	}
	if _, err := m.Finish(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("finish before start: got %v, want ErrBadTransition", err)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("double start: got %v, want ErrBadTransition", err)
	}
	if _, err := m.Finish(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("finish while running: got %v, want ErrBadTransition", err)
	}

	if stop, err := m.Observe(1.0); err != nil || !stop {
		t.Fatalf("observe(1.0) = (%v, %v), want stop", stop, err)
	}
	if _, err := m.Observe(1.0); !errors.Is(err, ErrBadTransition) {
		t.Errorf("observe after stop: got %v, want ErrBadTransition", err)
	}

	if _, err := m.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := m.Finish(); !errors.Is(err, ErrBadTransition) {
		t.Errorf("double finish: got %v, want ErrBadTransition", err)
	}
	if m.State() != StateFinished {
		t.Errorf("state = %s, want finished", m.State())
	}
}

func TestRunState_String(t *testing.T) {
	states := map[RunState]string{
		StateInitialized: "initialized",
		StateRunning:     "running",
		StateStopped:     "stopped",
		StateFinished:    "finished",
		RunState(99):     "unknown",
	}
	for s, want := range states {
		if got := s.String(); got != want {
			t.Errorf("RunState(%d).String() = %q, want %q", s, got, want)
		}
	}
}
