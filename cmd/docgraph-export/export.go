package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/canvas"
	"github.com/dd0wney/cluso-docgraph/pkg/config"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

type exportOptions struct {
	Layout   visualization.LayoutConfig
	MaxTicks int
	Compress bool
	Preview  bool
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

type exportResult struct {
	Nodes   int
	Ticks   int
	Settled bool
	Preview string
}

// loadDocuments reads path, or seeds sample documents when path is empty
func loadDocuments(path string, store config.StoreConfig) ([]documents.Document, error) {
	if path == "" {
		seed := store.RandomSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed>>1|1))
		return documents.Seed(store.SeedDocuments, rng, time.Now()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var docs []documents.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse documents %s: %w", path, err)
	}
	return docs, nil
}

// export settles the graph of docs frame by frame and writes its layout to w
func export(docs []documents.Document, opts exportOptions, w io.Writer) (exportResult, error) {
	sched := visualization.NewManualScheduler()
	simOpts := visualization.SimulatorOptions{
		Config:    opts.Layout,
		Scheduler: sched,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	}

	var preview *canvas.Canvas
	if opts.Preview {
		preview = canvas.New(
			int(opts.Layout.Viewport.Width/canvas.CellWidth),
			int(opts.Layout.Viewport.Height/canvas.CellHeight),
		)
		simOpts.Renderer = preview
	}

	sim, err := visualization.NewSimulator(visualization.BuildGraph(docs), simOpts)
	if err != nil {
		return exportResult{}, err
	}
	if err := sim.Start(); err != nil {
		return exportResult{}, err
	}
	ticks := sched.Drain(opts.MaxTicks)
	settled := sim.State() == visualization.StateCold
	sim.Stop()

	layout := sim.Layout()
	if err := visualization.WriteLayout(w, layout, opts.Compress); err != nil {
		return exportResult{}, err
	}

	res := exportResult{Nodes: len(layout.Nodes), Ticks: ticks, Settled: settled}
	if preview != nil {
		res.Preview = preview.Plain()
	}
	return res, nil
}
