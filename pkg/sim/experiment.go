package sim

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tmercer/syncwave/pkg/config"
	"github.com/tmercer/syncwave/pkg/coupling"
	"github.com/tmercer/syncwave/pkg/logging"
	"github.com/tmercer/syncwave/pkg/metrics"
	"github.com/tmercer/syncwave/pkg/oscillator"
	"github.com/tmercer/syncwave/pkg/parallel"
	"github.com/tmercer/syncwave/pkg/pubsub"
	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/timeseries"
	"github.com/tmercer/syncwave/pkg/topology"
)

// GlobalSeries is the name of the whole-network order series.
const GlobalSeries = "global"

// ClusterSeries returns the series name for one cluster's order.
func ClusterSeries(c int) string {
	return fmt.Sprintf("cluster-%d", c)
}

// Deps are the optional collaborators of an experiment. Nil fields are
// either defaulted (Logger, Pool) or disabled (Metrics, Broker).
type Deps struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
	Broker  *pubsub.Broker[timeseries.Point]
	Pool    *parallel.WorkerPool
}

// Experiment is one simulation run over a fixed topology. It implements
// Lifecycle[Result]; drive it with Run.
type Experiment struct {
	cfg  config.Experiment
	g    *topology.Graph
	log  logging.Logger
	reg  *metrics.Registry
	brk  *pubsub.Broker[timeseries.Point]
	pool *parallel.WorkerPool

	ownPool bool
	runID   string
	started time.Time

	src       *randx.Source
	st        *oscillator.Store
	engine    *coupling.Engine
	pacemaker *coupling.Pacemaker
	monitor   *Monitor
	edgeStats *EdgeStats
	recorder  *timeseries.Recorder

	clusterOrders []float64
	result        Result
}

// NewExperiment validates the configuration against the topology and builds
// an experiment. The heavy lifting happens in Init.
func NewExperiment(cfg config.Experiment, g *topology.Graph, deps Deps) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g.VertexCount() != cfg.Vertices {
		return nil, fmt.Errorf("%w: topology has %d vertices, configuration says %d",
			topology.ErrInvalidTopology, g.VertexCount(), cfg.Vertices)
	}

	log := deps.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	return &Experiment{
		cfg:  cfg,
		g:    g,
		log:  log,
		reg:  deps.Metrics,
		brk:  deps.Broker,
		pool: deps.Pool,
	}, nil
}

// RunID returns the unique id of this run, empty before Init.
func (e *Experiment) RunID() string {
	return e.runID
}

// Init prepares all per-vertex state from the topology and the frequency
// distributions. Every rejectable condition surfaces here; after Init
// returns nil, steps cannot fail.
func (e *Experiment) Init(ctx context.Context) error {
	e.runID = uuid.NewString()
	e.log = e.log.With(logging.RunID(e.runID))
	e.started = time.Now()
	e.src = randx.New(e.cfg.Seed)

	timer := logging.StartTimer(e.log, "run initialized",
		logging.String("policy", e.cfg.Policy),
		logging.Int("vertices", e.g.VertexCount()),
		logging.Int("edges", e.g.EdgeCount()))

	if err := e.setup(); err != nil {
		err = wrapErr("init", e.runID, err)
		timer.EndError(err)
		return err
	}

	timer.End()
	return nil
}

// setup builds every run-scoped collaborator. Any error here aborts the run
// before its first step.
func (e *Experiment) setup() error {
	st, err := e.buildState()
	if err != nil {
		return err
	}
	e.st = st

	mode, err := coupling.ParseWeightMode(e.cfg.WeightMode)
	if err != nil {
		return err
	}

	strengths := coupling.UniformFromGraph(e.g, e.cfg.CouplingStrength)
	engine, err := coupling.NewEngine(e.g, e.st, strengths, coupling.UniformSelector{},
		coupling.EngineConfig{
			Mode:                mode,
			SamplingProbability: e.cfg.SamplingProbability,
		}, e.src)
	if err != nil {
		return err
	}
	e.engine = engine

	e.edgeStats = NewEdgeStats(e.g.EdgeCount())
	engine.OnEdge(func(v, w int) {
		if idx, ok := e.g.EdgeIndex(v, w); ok {
			e.edgeStats.Record(idx)
		}
	})

	if e.cfg.Policy == config.PolicyKuramoto {
		pm, err := coupling.NewPacemaker(e.g.ClusterCount(), e.cfg.OrderThreshold,
			e.cfg.PacemakerProbability)
		if err != nil {
			return err
		}
		e.pacemaker = pm
	}

	e.monitor = NewMonitor(e.cfg.OrderThreshold, e.cfg.MaxTime)
	e.recorder = timeseries.NewRecorder()
	e.clusterOrders = make([]float64, e.g.ClusterCount())

	if e.pool == nil {
		e.pool = parallel.NewWorkerPool(e.cfg.Workers)
		e.ownPool = true
	}

	e.result = Result{
		RunID:          e.runID,
		Policy:         e.cfg.Policy,
		InitialDensity: engine.Strengths().Density(),
		Modularity:     e.g.Modularity(),
	}
	if e.reg != nil {
		e.reg.CouplingDensity.Set(e.result.InitialDensity)
	}

	return e.monitor.Start()
}

// buildState samples periods and clock skews according to the policy. Draw
// order is fixed per policy, so runs with the same seed see the same draws.
func (e *Experiment) buildState() (*oscillator.Store, error) {
	n := e.g.VertexCount()

	switch e.cfg.Policy {
	case config.PolicyGossip:
		return oscillator.Initialize(n, oscillator.InitOptions{
			PeriodMean:   e.cfg.PeriodMean,
			PeriodStdDev: e.cfg.PeriodStdDev,
			MaxClockSkew: e.cfg.MaxClockSkew,
		}, e.src)
	case config.PolicyKuramoto:
		periods, err := coupling.HierarchicalPeriods(e.g, coupling.FrequencyParams{
			GlobalMean:    e.cfg.PeriodMean,
			GlobalStdDev:  e.cfg.PeriodStdDev,
			ClusterStdDev: e.cfg.ClusterStdDev,
		}, e.src)
		if err != nil {
			return nil, err
		}
		clocks := make([]int64, n)
		for v := range clocks {
			clocks[v] = e.src.ClockSkew(e.cfg.MaxClockSkew)
		}
		return oscillator.NewStore(periods, clocks)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, e.cfg.Policy)
	}
}

type trigSums struct {
	sin float64
	cos float64
}

// Step runs one simulation step: the sequential coupling phase, the
// data-parallel advance-and-measure phase, order bookkeeping, the pacemaker
// evaluation and the stop decision.
func (e *Experiment) Step(ctx context.Context) (bool, error) {
	stepStart := time.Now()

	// Phase 1: pairwise adjustments, strictly sequential. Interactions can
	// share endpoints, so there is no safe naive parallelism here.
	e.engine.CoupleStep()

	// Phase 2: per-vertex clock advance and trig refresh, fanned out over
	// statically partitioned vertex ranges. Each worker owns its range
	// exclusively and returns partial sums, merged in range order.
	sums := parallel.MapReduce(e.pool, e.st.Len(), func(r parallel.Range) trigSums {
		var s trigSums
		for v := r.Lo; v < r.Hi; v++ {
			e.st.Advance(v)
			s.sin += e.st.Sin(v)
			s.cos += e.st.Cos(v)
		}
		return s
	}, func(a, b trigSums) trigSums {
		return trigSums{sin: a.sin + b.sin, cos: a.cos + b.cos}
	})

	globalOrder := oscillator.OrderFromSums(sums.sin, sums.cos, e.st.Len())
	for c := range e.clusterOrders {
		e.clusterOrders[c] = oscillator.OrderParameter(e.st, e.g.ClusterMembers(c))
	}

	simTime := float64(e.monitor.Elapsed() + 1)
	e.sample(GlobalSeries, simTime, globalOrder)
	for c, order := range e.clusterOrders {
		e.sample(ClusterSeries(c), simTime, order)
	}

	// Pacemaker switches take effect from the next step's coupling phase:
	// the strength map mutation happens here on the sequential path, after
	// the measurement that justified it.
	if e.pacemaker != nil {
		switched, zeroed := e.pacemaker.Evaluate(e.g, e.engine.Strengths(), e.clusterOrders, e.src)
		if switched > 0 {
			e.log.Info("pacemaker switched",
				logging.Step(e.monitor.Elapsed()+1),
				logging.Int("clusters", switched),
				logging.Int("decoupled", zeroed))
			if e.reg != nil {
				e.reg.RecordPacemaker(switched, zeroed)
				e.reg.CouplingDensity.Set(e.engine.Strengths().Density())
			}
		}
	}

	stop, err := e.monitor.Observe(globalOrder)
	if err != nil {
		return false, err
	}

	if e.reg != nil {
		e.reg.RecordStep(time.Since(stepStart), globalOrder)
		for c, order := range e.clusterOrders {
			e.reg.ClusterOrder.WithLabelValues(strconv.Itoa(c)).Set(order)
		}
	}

	return stop, nil
}

func (e *Experiment) sample(series string, t, v float64) {
	e.recorder.Append(series, t, v)
	if e.brk != nil {
		e.brk.Publish("samples", timeseries.Point{Series: series, Time: t, Value: v})
	}
}

// Finish produces the final aggregates and writes the output artifact.
func (e *Experiment) Finish(ctx context.Context) error {
	agg, err := e.monitor.Finish()
	if err != nil {
		return wrapErr("finish", e.runID, err)
	}

	e.result.Steps = agg.Elapsed
	e.result.Converged = agg.Converged
	e.result.FinalOrder = agg.FinalOrder
	e.result.IntegratedOrder = agg.IntegratedOrder
	e.result.FinalDensity = e.engine.Strengths().Density()
	e.result.EdgeUsage = e.edgeStats.Normalized()

	if e.ownPool {
		e.pool.Close()
	}

	if e.cfg.OutputPath != "" {
		if err := e.recorder.WriteFile(e.cfg.OutputPath, e.cfg.CompressOutput); err != nil {
			return wrapErr("finish", e.runID, err)
		}
	}

	outcome := "timeout"
	if agg.Converged {
		outcome = "converged"
	}
	if e.reg != nil {
		e.reg.RecordRun(outcome, time.Since(e.started))
	}

	e.log.Info("run finished",
		logging.String("outcome", outcome),
		logging.Step(agg.Elapsed),
		logging.Order(agg.FinalOrder),
		logging.Float64("integrated_order", e.result.IntegratedOrder),
		logging.Float64("final_density", e.result.FinalDensity))

	return nil
}

// Collect returns the run's result. Only meaningful after Finish.
func (e *Experiment) Collect() Result {
	return e.result
}

// Recorder exposes the collected time series, for callers that want the
// samples without reparsing the artifact.
func (e *Experiment) Recorder() *timeseries.Recorder {
	return e.recorder
}

// Close releases resources on abnormal termination. Safe to call after a
// completed run.
func (e *Experiment) Close() {
	if e.ownPool && e.pool != nil {
		e.pool.Close()
	}
}
