// Command docgraph is a terminal dashboard over a document collection with
// an interactive force-directed graph of documents, categories and tags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/config"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/health"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
	"github.com/dd0wney/cluso-docgraph/pkg/pubsub"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

func main() {
	configPath := flag.String("config", "docgraph.yaml", "Configuration file (defaults are used when missing)")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	logFile := flag.String("log-file", "", "Log file (overrides log.file)")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics and health endpoints on this address, e.g. :9090")
	seed := flag.Uint64("seed", 0, "Random seed for sample documents (overrides store.random_seed)")
	docs := flag.Int("docs", -1, "Number of sample documents (overrides store.seed_documents)")
	noLatency := flag.Bool("no-latency", false, "Disable simulated store latency")
	placement := flag.String("placement", "", "Initial node placement: spiral, circular or layered")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, *logFile, *metricsAddr, *seed, *docs, *noLatency, *placement)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *writeConfig {
		if err := cfg.Write(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	// The screen belongs to the TUI, so logs go to a file
	logger, f, err := logging.NewFileLogger(cfg.Log.File, cfg.LogLevel())
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer f.Close()
	logging.SetDefaultLogger(logger)

	reg := metrics.DefaultRegistry()
	recorder := activity.NewRecorder(cfg.UI.ActivityBuffer)
	broker := pubsub.NewBroker[activity.Event](cfg.UI.ActivityBuffer)
	defer broker.Close()
	recorder.Attach(broker)
	feed, err := broker.Subscribe(context.Background(), pubsub.AllTopics)
	if err != nil {
		log.Fatalf("Failed to subscribe to activity: %v", err)
	}
	store := newStore(cfg, logger, reg, recorder)

	m := newModel(modelDeps{
		Store:    store,
		Recorder: recorder,
		Feed:     feed.C(),
		Metrics:  reg,
		Logger:   logger.With(logging.Component(logging.ComponentTUI)),
		Config:   cfg,
	})

	if cfg.Metrics.Addr != "" {
		checker := newChecker(m.started, store, recorder, m.graph.simulator)
		go serveOps(cfg.Metrics.Addr, reg, checker, logger)
	}

	logger.Info("docgraph starting",
		logging.Count(store.Len()),
		logging.String("placement", cfg.Layout.Placement),
		logging.Bool("latency", cfg.Store.SimulateLatency))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("program failed", logging.Error(err))
		log.Fatalf("Error running program: %v", err)
	}
	logger.Info("docgraph stopped")
}

func applyFlags(cfg *config.Config, logFile, metricsAddr string, seed uint64, docs int, noLatency bool, placement string) {
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if seed != 0 {
		cfg.Store.RandomSeed = seed
	}
	if docs >= 0 {
		cfg.Store.SeedDocuments = docs
	}
	if noLatency {
		cfg.Store.SimulateLatency = false
	}
	if placement != "" {
		cfg.Layout.Placement = placement
	}
}

func newStore(cfg *config.Config, logger logging.Logger, reg *metrics.Registry, recorder *activity.Recorder) *documents.MemoryStore {
	seed := cfg.Store.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	docs := documents.Seed(cfg.Store.SeedDocuments, rng, time.Now())

	return documents.NewMemoryStore(docs, documents.StoreOptions{
		Latency:  cfg.Store.EffectiveLatency(),
		Logger:   logger,
		Metrics:  reg,
		Activity: recorder,
	})
}

// memoryLimit marks the process degraded in /healthz
const memoryLimit = 512 << 20

func newChecker(startedAt time.Time, store documents.Store, recorder *activity.Recorder, current func() *visualization.Simulator) *health.Checker {
	checker := health.NewChecker(startedAt)
	checker.Register("store", health.StoreCheck(store))
	checker.Register("activity", health.ActivityCheck(recorder, 10))
	checker.Register("simulation", health.SimulationCheck(current))
	checker.Register("memory", health.MemoryCheck(memoryLimit))
	checker.RegisterReadiness("store", health.StoreCheck(store))
	checker.RegisterLiveness("process", health.Alive)
	return checker
}

// serveOps exposes /metrics and the health endpoints
func serveOps(addr string, reg *metrics.Registry, checker *health.Checker, logger logging.Logger) {
	logger = logger.With(logging.Component(logging.ComponentOps))
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	checker.Mount(mux)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("ops server starting", logging.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("ops server failed", logging.Error(err))
	}
}
