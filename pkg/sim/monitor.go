package sim

import (
	"fmt"
)

// RunState is the lifecycle state of a run.
type RunState int

const (
	StateInitialized RunState = iota
	StateRunning
	StateStopped
	StateFinished
)

// String returns the state name.
func (s RunState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Monitor owns the stop decision of a run. It moves through
// Initialized -> Running -> Stopped -> Finished; both stop conditions are
// terminal and nothing else ends a run.
type Monitor struct {
	state          RunState
	orderThreshold float64
	timeThreshold  int64

	elapsed   int64
	orderSum  float64
	lastOrder float64
	converged bool
}

// Aggregates are the final metrics the monitor produces on Finish.
type Aggregates struct {
	FinalOrder      float64
	IntegratedOrder float64 // running order sum over elapsed simulated time
	Elapsed         int64
	Converged       bool
}

// NewMonitor creates a monitor in the Initialized state.
func NewMonitor(orderThreshold float64, timeThreshold int64) *Monitor {
	return &Monitor{
		state:          StateInitialized,
		orderThreshold: orderThreshold,
		timeThreshold:  timeThreshold,
	}
}

// State returns the current lifecycle state.
func (m *Monitor) State() RunState {
	return m.state
}

// Elapsed returns the simulated time observed so far, in steps.
func (m *Monitor) Elapsed() int64 {
	return m.elapsed
}

// Start moves the monitor into the Running state.
func (m *Monitor) Start() error {
	if m.state != StateInitialized {
		return fmt.Errorf("%w: start from %s", ErrBadTransition, m.state)
	}
	m.state = StateRunning
	return nil
}

// Observe records one step's global order and decides whether the run stops:
// order reaching the threshold, or elapsed time exceeding the budget. Once
// Stopped, further observations are rejected.
func (m *Monitor) Observe(order float64) (bool, error) {
	if m.state != StateRunning {
		return false, fmt.Errorf("%w: observe in %s", ErrBadTransition, m.state)
	}

	m.elapsed++
	m.orderSum += order
	m.lastOrder = order

	if order >= m.orderThreshold {
		m.converged = true
		m.state = StateStopped
	} else if m.elapsed > m.timeThreshold {
		m.state = StateStopped
	}

	return m.state == StateStopped, nil
}

// Finish moves Stopped to Finished and returns the final aggregates.
func (m *Monitor) Finish() (Aggregates, error) {
	if m.state != StateStopped {
		return Aggregates{}, fmt.Errorf("%w: finish from %s", ErrBadTransition, m.state)
	}
	m.state = StateFinished

	agg := Aggregates{
		FinalOrder: m.lastOrder,
		Elapsed:    m.elapsed,
		Converged:  m.converged,
	}
	if m.elapsed > 0 {
		agg.IntegratedOrder = m.orderSum / float64(m.elapsed)
	}
	return agg, nil
}
