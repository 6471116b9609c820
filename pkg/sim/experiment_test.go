package sim

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmercer/syncwave/pkg/config"
	"github.com/tmercer/syncwave/pkg/coupling"
	"github.com/tmercer/syncwave/pkg/logging"
	"github.com/tmercer/syncwave/pkg/metrics"
	"github.com/tmercer/syncwave/pkg/pubsub"
	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/timeseries"
	"github.com/tmercer/syncwave/pkg/topology"
)

func quietDeps() Deps {
	return Deps{Logger: logging.NewJSONLogger(io.Discard, logging.ErrorLevel)}
}

func testConfig() config.Experiment {
	cfg := config.Default()
	cfg.Vertices = 20
	cfg.Edges = 40
	cfg.Clusters = 2
	cfg.MaxTime = 50
	cfg.Workers = 2
	cfg.OutputPath = ""
	return cfg
}

func generated(t *testing.T, cfg config.Experiment) *topology.Graph {
	t.Helper()
	g, err := topology.GenerateClustered(topology.GeneratorConfig{
		Vertices:         cfg.Vertices,
		Edges:            cfg.Edges,
		Clusters:         cfg.Clusters,
		TargetModularity: cfg.TargetModularity,
	}, randx.New(cfg.Seed))
	if err != nil {
		t.Fatalf("generate topology: %v", err)
	}
	return g
}

func runOnce(t *testing.T, cfg config.Experiment, g *topology.Graph) (Result, *timeseries.Recorder) {
	t.Helper()
	exp, err := NewExperiment(cfg, g, quietDeps())
	if err != nil {
		t.Fatalf("new experiment: %v", err)
	}
	res, err := Run[Result](context.Background(), exp)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res, exp.Recorder()
}

func TestExperiment_DeterministicForSameSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 42

	resA, recA := runOnce(t, cfg, generated(t, cfg))
	resB, recB := runOnce(t, cfg, generated(t, cfg))

	if resA.Steps != resB.Steps {
		t.Fatalf("steps differ: %d vs %d", resA.Steps, resB.Steps)
	}
	if math.Float64bits(resA.FinalOrder) != math.Float64bits(resB.FinalOrder) {
		t.Errorf("final order differs: %v vs %v", resA.FinalOrder, resB.FinalOrder)
	}
	if math.Float64bits(resA.IntegratedOrder) != math.Float64bits(resB.IntegratedOrder) {
		t.Errorf("integrated order differs: %v vs %v", resA.IntegratedOrder, resB.IntegratedOrder)
	}

	require.Equal(t, recA.Names(), recB.Names())
	for _, name := range recA.Names() {
		sa, sb := recA.Series(name), recB.Series(name)
		require.Len(t, sb, len(sa), "series %s length", name)
		for i := range sa {
			if math.Float64bits(sa[i].Value) != math.Float64bits(sb[i].Value) {
				t.Fatalf("series %s sample %d differs: %v vs %v", name, i, sa[i].Value, sb[i].Value)
			}
		}
	}
}

func TestExperiment_DifferentSeedsDiverge(t *testing.T) {
	cfgA := testConfig()
	cfgA.Seed = 1
	cfgB := testConfig()
	cfgB.Seed = 2

	resA, _ := runOnce(t, cfgA, generated(t, cfgA))
	resB, _ := runOnce(t, cfgB, generated(t, cfgB))

	if resA.Steps == resB.Steps && resA.FinalOrder == resB.FinalOrder &&
		resA.IntegratedOrder == resB.IntegratedOrder {
		t.Error("different seeds produced identical trajectories")
	}
}

func TestExperiment_CompleteGraphConvergesFast(t *testing.T) {
	g, err := topology.GenerateComplete(8)
	if err != nil {
		t.Fatalf("complete graph: %v", err)
	}

	cfg := testConfig()
	cfg.Vertices = 8
	cfg.Edges = 28
	cfg.Clusters = 1
	cfg.PeriodStdDev = 0.1
	cfg.MaxClockSkew = 2
	cfg.OrderThreshold = 0.95

	res, rec := runOnce(t, cfg, g)
	if !res.Converged {
		t.Fatal("near-homogeneous complete graph must converge")
	}
	if res.FinalOrder < cfg.OrderThreshold {
		t.Errorf("final order %g below threshold %g", res.FinalOrder, cfg.OrderThreshold)
	}
	if got := int64(len(rec.Series(GlobalSeries))); got != res.Steps {
		t.Errorf("global series has %d samples, want %d", got, res.Steps)
	}
}

func TestExperiment_EdgelessGraphTimesOut(t *testing.T) {
	clusterOf := make([]int, 16)
	g, err := topology.NewGraph(16, 1, clusterOf)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	cfg := testConfig()
	cfg.Vertices = 16
	cfg.Edges = 0
	cfg.Clusters = 1
	cfg.WeightMode = "unweighted"
	cfg.OrderThreshold = 1.0
	cfg.MaxTime = 10

	res, _ := runOnce(t, cfg, g)
	if res.Converged {
		t.Error("edgeless graph with scattered phases must not converge")
	}
	if res.Steps != cfg.MaxTime+1 {
		t.Errorf("steps = %d, want %d", res.Steps, cfg.MaxTime+1)
	}
	if res.InitialDensity != 0 || res.FinalDensity != 0 {
		t.Errorf("density = (%g, %g), want zero without edges",
			res.InitialDensity, res.FinalDensity)
	}
}

func TestExperiment_KuramotoPacemakerReducesDensity(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = config.PolicyKuramoto
	cfg.WeightMode = "unweighted"
	cfg.CouplingStrength = 0.5
	cfg.PeriodStdDev = 0.5
	cfg.ClusterStdDev = 0.1
	cfg.MaxClockSkew = 5
	cfg.OrderThreshold = 0.9
	cfg.PacemakerProbability = 1
	cfg.MaxTime = 200

	res, _ := runOnce(t, cfg, generated(t, cfg))
	if res.Policy != config.PolicyKuramoto {
		t.Errorf("policy = %q", res.Policy)
	}
	if res.FinalDensity > res.InitialDensity {
		t.Errorf("density grew: %g -> %g", res.InitialDensity, res.FinalDensity)
	}
	if len(res.EdgeUsage) != cfg.Edges {
		t.Errorf("edge usage has %d entries, want %d", len(res.EdgeUsage), cfg.Edges)
	}
}

func TestExperiment_FailedInitWritesNoArtifact(t *testing.T) {
	// Vertex 2 is isolated; degree weighting rejects that at Init.
	g, err := topology.NewGraph(3, 1, []int{0, 0, 0})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if err := g.AddEdge(0, 1); err != nil {
		t.Fatalf("edge: %v", err)
	}

	cfg := testConfig()
	cfg.Vertices = 3
	cfg.Edges = 1
	cfg.Clusters = 1
	cfg.WeightMode = "degree"
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.csv")

	exp, err := NewExperiment(cfg, g, quietDeps())
	if err != nil {
		t.Fatalf("new experiment: %v", err)
	}
	_, runErr := Run[Result](context.Background(), exp)
	defer exp.Close()
	if !errors.Is(runErr, coupling.ErrZeroDegreeVertex) {
		t.Fatalf("run: got %v, want ErrZeroDegreeVertex", runErr)
	}
	var serr *SimError
	if !errors.As(runErr, &serr) || serr.Op != "init" {
		t.Fatalf("run error %v does not carry the init operation", runErr)
	}

	if _, err := os.Stat(cfg.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed run left an artifact: stat = %v", err)
	}
}

func TestExperiment_WritesCompressedArtifact(t *testing.T) {
	cfg := testConfig()
	cfg.OutputPath = filepath.Join(t.TempDir(), "run.csv.sz")
	cfg.CompressOutput = true

	res, _ := runOnce(t, cfg, generated(t, cfg))

	rec, err := timeseries.ReadFile(cfg.OutputPath, true)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	global := rec.Series(GlobalSeries)
	if int64(len(global)) != res.Steps {
		t.Fatalf("artifact global series has %d samples, want %d", len(global), res.Steps)
	}
	for c := 0; c < cfg.Clusters; c++ {
		if len(rec.Series(ClusterSeries(c))) == 0 {
			t.Errorf("artifact misses series %s", ClusterSeries(c))
		}
	}
}

func TestExperiment_MetricsAndStreaming(t *testing.T) {
	cfg := testConfig()
	broker := pubsub.NewBroker[timeseries.Point]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := broker.Subscribe(ctx, "samples")

	received := make(chan int)
	go func() {
		n := 0
		for range sub.Channel() {
			n++
		}
		received <- n
	}()

	deps := quietDeps()
	deps.Metrics = metrics.NewRegistry()
	deps.Broker = broker

	exp, err := NewExperiment(cfg, generated(t, cfg), deps)
	if err != nil {
		t.Fatalf("new experiment: %v", err)
	}
	res, err := Run[Result](context.Background(), exp)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Steps < 1 {
		t.Fatalf("steps = %d", res.Steps)
	}

	broker.Shutdown()
	if n := <-received; n == 0 {
		t.Error("no samples streamed to the broker")
	}

	families, err := deps.Metrics.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families recorded")
	}
}

func TestNewExperiment_RejectsMismatchedTopology(t *testing.T) {
	cfg := testConfig()
	cfg.Vertices = 5
	cfg.Edges = 4

	g, err := topology.NewGraph(4, 1, []int{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if _, err := NewExperiment(cfg, g, quietDeps()); !errors.Is(err, topology.ErrInvalidTopology) {
		t.Errorf("got %v, want ErrInvalidTopology", err)
	}
}

func TestNewExperiment_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.CouplingStrength = 0

	g, err := topology.NewGraph(cfg.Vertices, 1, make([]int, cfg.Vertices))
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if _, err := NewExperiment(cfg, g, quietDeps()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestRun_HonorsCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.OrderThreshold = 1.0
	cfg.MaxTime = 1 << 30

	exp, err := NewExperiment(cfg, generated(t, cfg), quietDeps())
	if err != nil {
		t.Fatalf("new experiment: %v", err)
	}
	defer exp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run[Result](ctx, exp); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
