package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmercer/syncwave/pkg/config"
	"github.com/tmercer/syncwave/pkg/logging"
	"github.com/tmercer/syncwave/pkg/metrics"
	"github.com/tmercer/syncwave/pkg/pubsub"
	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/sim"
	"github.com/tmercer/syncwave/pkg/stream"
	"github.com/tmercer/syncwave/pkg/timeseries"
	"github.com/tmercer/syncwave/pkg/topology"
)

func main() {
	configPath := flag.String("config", "", "Path to a yaml experiment file (defaults applied when empty)")
	seed := flag.Int64("seed", 0, "Override the configured seed (0 keeps the configured value)")
	policy := flag.String("policy", "", "Override the coupling policy: gossip or kuramoto")
	output := flag.String("output", "", "Override the output artifact path (\"none\" disables it)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *policy != "" {
		cfg.Policy = *policy
	}
	switch *output {
	case "":
	case "none":
		cfg.OutputPath = ""
	default:
		cfg.OutputPath = *output
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.DefaultLogger()

	fmt.Printf("🌊 Syncwave Oscillator Simulator\n")
	fmt.Printf("================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Seed: %d\n", cfg.Seed)
	fmt.Printf("  Policy: %s\n", cfg.Policy)
	fmt.Printf("  Network: %d vertices, %d edges, %d clusters\n", cfg.Vertices, cfg.Edges, cfg.Clusters)
	fmt.Printf("  Order threshold: %g, time budget: %d steps\n\n", cfg.OrderThreshold, cfg.MaxTime)

	g, err := topology.GenerateClustered(topology.GeneratorConfig{
		Vertices:         cfg.Vertices,
		Edges:            cfg.Edges,
		Clusters:         cfg.Clusters,
		TargetModularity: cfg.TargetModularity,
	}, randx.New(cfg.Seed))
	if err != nil {
		log.Fatalf("Failed to generate topology: %v", err)
	}
	fmt.Printf("📡 Generated network (modularity %.3f)\n", g.Modularity())

	reg := metrics.NewRegistry()
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", logging.Error(err))
			}
		}()
		fmt.Printf("📊 Metrics on http://%s/metrics\n", *metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := sim.Deps{Logger: logger, Metrics: reg}

	if cfg.StreamAddr != "" {
		broker := pubsub.NewBroker[timeseries.Point]()
		defer broker.Shutdown()

		pub, err := stream.NewPublisher(cfg.StreamAddr, logger)
		if err != nil {
			log.Fatalf("Failed to bind stream publisher: %v", err)
		}
		defer pub.Close()

		go stream.Bridge(broker.Subscribe(ctx, "samples"), pub)
		deps.Broker = broker
		fmt.Printf("📤 Streaming samples on %s\n", cfg.StreamAddr)
	}

	exp, err := sim.NewExperiment(cfg, g, deps)
	if err != nil {
		log.Fatalf("Failed to build experiment: %v", err)
	}
	defer exp.Close()

	fmt.Printf("\n▶️  Running...\n")
	res, err := sim.Run[sim.Result](ctx, exp)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	outcome := "timed out"
	if res.Converged {
		outcome = "converged"
	}
	fmt.Printf("\nResults (run %s):\n", res.RunID)
	fmt.Printf("  Outcome: %s after %d steps\n", outcome, res.Steps)
	fmt.Printf("  Final order: %.6f\n", res.FinalOrder)
	fmt.Printf("  Integrated order: %.6f\n", res.IntegratedOrder)
	fmt.Printf("  Coupling density: %.4f -> %.4f\n", res.InitialDensity, res.FinalDensity)
	fmt.Printf("  Modularity: %.4f\n", res.Modularity)
	if cfg.OutputPath != "" {
		fmt.Printf("  Artifact: %s\n", cfg.OutputPath)
	}
}
