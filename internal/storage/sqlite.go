package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

type runRow struct {
	ID            string  `db:"id"`
	Experiment    string  `db:"experiment"`
	Evaluation    string  `db:"evaluation"`
	Robots        int     `db:"robots"`
	Ticks         int     `db:"ticks"`
	Dt            float64 `db:"dt"`
	Seed          int64   `db:"seed"`
	CreatedAt     int64   `db:"created_at"`
	SchemaVersion int     `db:"schema_version"`
	CodecVersion  int     `db:"codec_version"`
	Payload       []byte  `db:"payload"`
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	run = stamp(run)
	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO runs (id, experiment, evaluation, robots, ticks, dt, seed, created_at, schema_version, codec_version, payload)
		VALUES (:id, :experiment, :evaluation, :robots, :ticks, :dt, :seed, :created_at, :schema_version, :codec_version, :payload)
		ON CONFLICT(id) DO UPDATE SET
			experiment = excluded.experiment,
			evaluation = excluded.evaluation,
			robots = excluded.robots,
			ticks = excluded.ticks,
			dt = excluded.dt,
			seed = excluded.seed,
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, runRow{
		ID:            run.ID,
		Experiment:    run.Experiment,
		Evaluation:    run.Evaluation,
		Robots:        run.Robots,
		Ticks:         run.Ticks,
		Dt:            run.Dt,
		Seed:          run.Seed,
		CreatedAt:     run.CreatedAt.UnixNano(),
		SchemaVersion: run.SchemaVersion,
		CodecVersion:  run.CodecVersion,
		Payload:       payload,
	})
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, `SELECT payload FROM runs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var rows []runRow
	if err := db.SelectContext(ctx, &rows, `SELECT * FROM runs ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	runs := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		run, err := DecodeRun(row.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", row.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *SQLiteStore) SaveFitnessHistory(ctx context.Context, runID string, sample int, history []float64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeFitnessHistory(history)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO fitness_history (run_id, sample, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, sample) DO UPDATE SET payload = excluded.payload
	`, runID, sample, payload)
	return err
}

func (s *SQLiteStore) GetFitnessHistory(ctx context.Context, runID string, sample int) ([]float64, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.GetContext(ctx, &payload, `SELECT payload FROM fitness_history WHERE run_id = ? AND sample = ?`, runID, sample)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	history, err := DecodeFitnessHistory(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode fitness history %s/%d: %w", runID, sample, err)
	}
	return history, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			experiment TEXT NOT NULL,
			evaluation TEXT NOT NULL,
			robots INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			dt REAL NOT NULL,
			seed INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS fitness_history (
			run_id TEXT NOT NULL,
			sample INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, sample)
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`)
	return err
}
