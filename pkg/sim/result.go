package sim

// Result is everything a finished run reports.
type Result struct {
	RunID  string
	Policy string

	Steps     int64
	Converged bool

	FinalOrder      float64
	IntegratedOrder float64

	InitialDensity float64
	FinalDensity   float64

	Modularity float64

	// EdgeUsage holds the min-max normalized coupling frequency per edge,
	// indexed like the graph's edge list.
	EdgeUsage []float64
}
