package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunRecord summarizes one experiment run: one fitness value per sample.
type RunRecord struct {
	ID            string    `json:"id"`
	Experiment    string    `json:"experiment"`
	Evaluation    string    `json:"evaluation"`
	Robots        int       `json:"robots"`
	Ticks         int       `json:"ticks"`
	Dt            float64   `json:"dt"`
	Seed          int64     `json:"seed"`
	SampleFitness []float64 `json:"sample_fitness"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion int       `json:"schema_version"`
	CodecVersion  int       `json:"codec_version"`
}

func NewRunID() string {
	return uuid.NewString()
}

// Store persists run records and per-tick fitness history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context) ([]RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, sample int, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string, sample int) ([]float64, bool, error)
}
