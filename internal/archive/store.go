// Package archive persists finished pipeline runs to SQLite so they can
// be inspected and compared after the fact.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Store manages the run archive database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive database at path, creating the
// schema if it does not exist. Use ":memory:" for an ephemeral archive.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	// sqlite serializes writers anyway, and a ":memory:" database is
	// per-connection, so keep the pool at one connection.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			design TEXT,
			problem_yaml TEXT NOT NULL,
			created_at TEXT NOT NULL,
			feasible_ratio REAL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			vector TEXT NOT NULL,
			outputs TEXT NOT NULL,
			feasible INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			label TEXT NOT NULL,
			vector TEXT NOT NULL,
			predicted TEXT NOT NULL,
			actual TEXT,
			relative_error TEXT,
			verified INTEGER NOT NULL,
			feasible INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS gates (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			metric TEXT NOT NULL,
			subject TEXT,
			observed REAL,
			threshold REAL NOT NULL,
			passed INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_run_id ON samples(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_run_id ON candidates(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_gates_run_id ON gates(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunSummary is one row of the archive listing.
type RunSummary struct {
	ID             string
	Design         string
	CreatedAt      time.Time
	FeasibleRatio  float64
	SampleCount    int
	CandidateCount int
}

// SaveRun stores a finished (or partial) pipeline run under runID. The
// problem definition is kept as yaml so a loaded run is self-contained.
func (s *Store) SaveRun(ctx context.Context, runID, problemYAML string, result *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ratio interface{}
	if models.IsNumeric(result.FeasibleRatio) {
		ratio = result.FeasibleRatio
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, design, problem_yaml, created_at, feasible_ratio) VALUES (?, ?, ?, ?, ?)`,
		runID, result.Problem.Design, problemYAML, time.Now().UTC().Format(time.RFC3339), ratio,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, sample := range result.Samples {
		vector, err := json.Marshal(sample.Vector)
		if err != nil {
			return fmt.Errorf("encoding sample vector: %w", err)
		}
		outputs, err := json.Marshal(sample.Outputs)
		if err != nil {
			return fmt.Errorf("encoding sample outputs: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO samples (id, run_id, idx, vector, outputs, feasible) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), runID, i, string(vector), string(outputs), sample.Feasible,
		); err != nil {
			return fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	for i, c := range result.Candidates {
		vector, err := json.Marshal(c.Vector)
		if err != nil {
			return fmt.Errorf("encoding candidate vector: %w", err)
		}
		predicted, err := json.Marshal(c.Predicted)
		if err != nil {
			return fmt.Errorf("encoding candidate prediction: %w", err)
		}
		actual, err := json.Marshal(c.Actual)
		if err != nil {
			return fmt.Errorf("encoding candidate ground truth: %w", err)
		}
		relErr, err := json.Marshal(c.RelativeError)
		if err != nil {
			return fmt.Errorf("encoding candidate error: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO candidates (id, run_id, idx, label, vector, predicted, actual, relative_error, verified, feasible)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), runID, i, c.Label, string(vector), string(predicted),
			string(actual), string(relErr), c.Verified, c.Feasible,
		); err != nil {
			return fmt.Errorf("inserting candidate %d: %w", i, err)
		}
	}

	for i, g := range result.Gates {
		var observed interface{}
		if models.IsNumeric(g.Observed) {
			observed = g.Observed
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gates (id, run_id, idx, metric, subject, observed, threshold, passed) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), runID, i, g.Metric, g.Subject, observed, g.Threshold, g.Passed,
		); err != nil {
			return fmt.Errorf("inserting gate %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// LoadRun reconstructs an archived run, including its problem
// definition, samples, candidates, and gate outcomes.
func (s *Store) LoadRun(ctx context.Context, runID string) (*pipeline.Result, error) {
	var problemYAML string
	var ratio sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT problem_yaml, feasible_ratio FROM runs WHERE id = ?`, runID,
	).Scan(&problemYAML, &ratio)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}

	problem, err := config.ParseProblemYAML([]byte(problemYAML))
	if err != nil {
		return nil, fmt.Errorf("parsing archived problem: %w", err)
	}
	result := &pipeline.Result{Problem: problem}
	if ratio.Valid {
		result.FeasibleRatio = ratio.Float64
	}

	if err := s.loadSamples(ctx, runID, result); err != nil {
		return nil, err
	}
	if err := s.loadCandidates(ctx, runID, result); err != nil {
		return nil, err
	}
	if err := s.loadGates(ctx, runID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadSamples(ctx context.Context, runID string, result *pipeline.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vector, outputs, feasible FROM samples WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return fmt.Errorf("loading samples: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var vector, outputs string
		var sample models.Sample
		if err := rows.Scan(&vector, &outputs, &sample.Feasible); err != nil {
			return fmt.Errorf("scanning sample: %w", err)
		}
		if err := json.Unmarshal([]byte(vector), &sample.Vector); err != nil {
			return fmt.Errorf("decoding sample vector: %w", err)
		}
		if err := json.Unmarshal([]byte(outputs), &sample.Outputs); err != nil {
			return fmt.Errorf("decoding sample outputs: %w", err)
		}
		result.Samples = append(result.Samples, sample)
	}
	return rows.Err()
}

func (s *Store) loadCandidates(ctx context.Context, runID string, result *pipeline.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, label, vector, predicted, actual, relative_error, verified, feasible
		 FROM candidates WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Candidate
		var vector, predicted, actual, relErr string
		if err := rows.Scan(&c.Index, &c.Label, &vector, &predicted, &actual, &relErr, &c.Verified, &c.Feasible); err != nil {
			return fmt.Errorf("scanning candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(vector), &c.Vector); err != nil {
			return fmt.Errorf("decoding candidate vector: %w", err)
		}
		if err := json.Unmarshal([]byte(predicted), &c.Predicted); err != nil {
			return fmt.Errorf("decoding candidate prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(actual), &c.Actual); err != nil {
			return fmt.Errorf("decoding candidate ground truth: %w", err)
		}
		if err := json.Unmarshal([]byte(relErr), &c.RelativeError); err != nil {
			return fmt.Errorf("decoding candidate error: %w", err)
		}
		result.Candidates = append(result.Candidates, c)
	}
	return rows.Err()
}

func (s *Store) loadGates(ctx context.Context, runID string, result *pipeline.Result) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, subject, observed, threshold, passed FROM gates WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return fmt.Errorf("loading gates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g models.GateSignal
		var observed sql.NullFloat64
		if err := rows.Scan(&g.Metric, &g.Subject, &observed, &g.Threshold, &g.Passed); err != nil {
			return fmt.Errorf("scanning gate: %w", err)
		}
		if observed.Valid {
			g.Observed = observed.Float64
		} else {
			g.Observed = math.NaN()
		}
		result.Gates = append(result.Gates, g)
	}
	return rows.Err()
}

// ListRuns returns summaries of every archived run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.design, r.created_at, r.feasible_ratio,
			(SELECT COUNT(*) FROM samples WHERE run_id = r.id),
			(SELECT COUNT(*) FROM candidates WHERE run_id = r.id)
		 FROM runs r ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var createdAt string
		var ratio sql.NullFloat64
		if err := rows.Scan(&sum.ID, &sum.Design, &createdAt, &ratio, &sum.SampleCount, &sum.CandidateCount); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if ratio.Valid {
			sum.FeasibleRatio = ratio.Float64
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeleteRun removes an archived run and its dependent rows.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}
