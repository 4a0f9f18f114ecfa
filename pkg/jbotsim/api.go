// Package jbotsim is the programmatic entry point: run experiments, then
// query stored runs.
package jbotsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/catalog"
	"github.com/stevengo-git/jbotevolver/internal/config"
	"github.com/stevengo-git/jbotevolver/internal/sim"
	"github.com/stevengo-git/jbotevolver/internal/stats"
	"github.com/stevengo-git/jbotevolver/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultDBPath       = "jbotsim.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Logger       *slog.Logger
}

type Client struct {
	store    storage.Store
	registry *capability.Registry
	log      *slog.Logger

	artifactsDir string

	mu          sync.Mutex
	initialized bool
}

type RunRequest struct {
	// ConfigPath is loaded when set; otherwise Experiment is used as given.
	ConfigPath  string
	Experiment  config.Experiment
	Samples     int
	Workers     int
	Broadcaster sim.Broadcaster
}

type RunSummary struct {
	RunID         string
	ArtifactsDir  string
	Experiment    string
	SampleFitness []float64
	Summary       stats.Summary
	Duration      time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Experiment   string
	Evaluation   string
	Robots       int
	Ticks        int
	Summary      stats.Summary
}

type RunRef struct {
	RunID  string
	Latest bool
}

type FitnessHistoryRequest struct {
	RunRef
	Sample int
	Limit  int
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	reg, err := catalog.NewRegistry()
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		registry:     reg,
		log:          logger,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Registry exposes the capability registry so callers can add their own
// sensors, inputs, controllers or evaluators before running.
func (c *Client) Registry() *capability.Registry { return c.registry }

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	exp := req.Experiment
	if req.ConfigPath != "" {
		loaded, err := config.Load(req.ConfigPath)
		if err != nil {
			return RunSummary{}, err
		}
		exp = loaded
	}
	if req.Samples < 0 || req.Workers < 0 {
		return RunSummary{}, errors.New("samples and workers must be >= 0")
	}
	if req.Samples > 0 {
		exp.Samples = req.Samples
	}
	if req.Workers > 0 {
		exp.Workers = req.Workers
	}
	exp.ApplyDefaults()
	if err := exp.Validate(); err != nil {
		return RunSummary{}, err
	}

	runID := storage.NewRunID()
	logger := c.log.With("run_id", runID, "experiment", exp.Name)
	start := time.Now()

	fitness := make([]float64, 0, exp.Samples)
	histories := make([][]float64, 0, exp.Samples)
	for sample := 0; sample < exp.Samples; sample++ {
		s, err := exp.Build(c.registry, sample, config.BuildOptions{
			Logger:      logger.With("sample", sample),
			Broadcaster: req.Broadcaster,
		})
		if err != nil {
			return RunSummary{}, fmt.Errorf("sample %d: %w", sample, err)
		}
		res, err := s.Run(ctx, exp.Ticks)
		if err != nil {
			return RunSummary{}, fmt.Errorf("sample %d: %w", sample, err)
		}
		logger.Debug("sample finished", "sample", sample, "fitness", res.Fitness)
		fitness = append(fitness, res.Fitness)
		histories = append(histories, res.History)
		if err := c.store.SaveFitnessHistory(ctx, runID, sample, res.History); err != nil {
			return RunSummary{}, err
		}
	}

	summary, err := stats.Summarize(fitness)
	if err != nil {
		return RunSummary{}, err
	}
	createdAt := time.Now().UTC()
	if err := c.store.SaveRun(ctx, storage.RunRecord{
		ID:            runID,
		Experiment:    exp.Name,
		Evaluation:    exp.Evaluation.Name,
		Robots:        exp.Robots.Count,
		Ticks:         exp.Ticks,
		Dt:            exp.Dt,
		Seed:          exp.Seed,
		SampleFitness: fitness,
		CreatedAt:     createdAt,
	}); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		RunID:      runID,
		Experiment: exp,
		Summary:    summary,
		Histories:  histories,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:        runID,
		Experiment:   exp.Name,
		Evaluation:   exp.Evaluation.Name,
		Samples:      summary.Samples,
		Mean:         summary.Mean,
		Std:          summary.Std,
		Best:         summary.Max,
		CreatedAtUTC: createdAt.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	out := RunSummary{
		RunID:         runID,
		ArtifactsDir:  filepath.Clean(runDir),
		Experiment:    exp.Name,
		SampleFitness: fitness,
		Summary:       summary,
		Duration:      time.Since(start),
	}
	logger.Info("run finished", "samples", summary.Samples, "mean", summary.Mean, "std", summary.Std, "elapsed", out.Duration)
	return out, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		item, err := runItem(run)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Summary describes one stored run, by id or the latest.
func (c *Client) Summary(ctx context.Context, ref RunRef) (RunItem, error) {
	run, err := c.resolveRun(ctx, ref)
	if err != nil {
		return RunItem{}, err
	}
	return runItem(run)
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 || req.Sample < 0 {
		return nil, errors.New("limit and sample must be >= 0")
	}
	run, err := c.resolveRun(ctx, req.RunRef)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, run.ID, req.Sample)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id %s sample %d", run.ID, req.Sample)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

// Capabilities lists registered names per kind.
func (c *Client) Capabilities() map[capability.Kind][]string {
	out := make(map[capability.Kind][]string)
	for _, kind := range []capability.Kind{
		capability.KindSensor,
		capability.KindActuator,
		capability.KindInput,
		capability.KindController,
		capability.KindEvaluator,
	} {
		out[kind] = c.registry.List(kind)
	}
	return out
}

func (c *Client) resolveRun(ctx context.Context, ref RunRef) (storage.RunRecord, error) {
	if ref.RunID != "" && ref.Latest {
		return storage.RunRecord{}, errors.New("use either run id or latest")
	}
	if ref.RunID == "" && !ref.Latest {
		return storage.RunRecord{}, errors.New("run id or latest is required")
	}
	if err := c.Init(ctx); err != nil {
		return storage.RunRecord{}, err
	}

	if ref.Latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return storage.RunRecord{}, err
		}
		if len(runs) == 0 {
			return storage.RunRecord{}, errors.New("no runs available")
		}
		return runs[0], nil
	}

	run, ok, err := c.store.GetRun(ctx, ref.RunID)
	if err != nil {
		return storage.RunRecord{}, err
	}
	if !ok {
		return storage.RunRecord{}, fmt.Errorf("run not found: %s", ref.RunID)
	}
	return run, nil
}

func runItem(run storage.RunRecord) (RunItem, error) {
	summary, err := stats.Summarize(run.SampleFitness)
	if err != nil {
		return RunItem{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return RunItem{
		RunID:        run.ID,
		CreatedAtUTC: run.CreatedAt.UTC().Format(time.RFC3339Nano),
		Experiment:   run.Experiment,
		Evaluation:   run.Evaluation,
		Robots:       run.Robots,
		Ticks:        run.Ticks,
		Summary:      summary,
	}, nil
}
