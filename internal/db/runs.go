package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// Run status values stored in pipeline_runs.status.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is the stored view of a pipeline run without its stages.
type Run struct {
	ID          uuid.UUID        `json:"id"`
	TargetID    string           `json:"target_id"`
	Options     types.RunOptions `json:"options"`
	Status      string           `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// CreateRun inserts a run record in the running state. The run carries its
// own ID; the orchestrator mints it before the first stage executes.
func (db *DB) CreateRun(ctx context.Context, run *types.PipelineRun) error {
	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal run options: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, target_id, options, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.TargetID, optionsJSON, RunStatusRunning, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// SaveStageResult upserts one stage outcome. Position is assigned on first
// insert so stages read back in execution order.
func (db *DB) SaveStageResult(ctx context.Context, runID uuid.UUID, result types.StageResult) error {
	var payloadJSON []byte
	if result.Payload != nil {
		var err error
		payloadJSON, err = json.Marshal(result.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal stage payload: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_stages (run_id, position, name, status, payload, skip_reason, error_message)
		 VALUES ($1, (SELECT COALESCE(MAX(position)+1, 0) FROM run_stages WHERE run_id = $1), $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, name) DO UPDATE
		 SET status = $3, payload = $4, skip_reason = $5, error_message = $6`,
		runID, result.Name, result.Status, payloadJSON,
		nullIfEmpty(result.SkipReason), nullIfEmpty(result.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to save stage result %s: %w", result.Name, err)
	}
	return nil
}

// CompleteRun marks a pipeline run as finished
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun reconstructs a full pipeline run, stages included, from storage.
// Returns (nil, nil) when the run does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.PipelineRun, error) {
	var run types.PipelineRun
	var optionsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, target_id, options, started_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.TargetID, &optionsJSON, &run.StartedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &run.Options); err != nil {
			return nil, fmt.Errorf("failed to decode run options: %w", err)
		}
	}

	rows, err := db.pool.Query(ctx,
		`SELECT name, status, payload, COALESCE(skip_reason, ''), COALESCE(error_message, '')
		 FROM run_stages WHERE run_id = $1 ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run stages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result types.StageResult
		var payloadJSON []byte
		if err := rows.Scan(&result.Name, &result.Status, &payloadJSON, &result.SkipReason, &result.Error); err != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", err)
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &result.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode stage payload: %w", err)
			}
		}
		run.Stages = append(run.Stages, result)
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	TargetID string
	Status   string
	Limit    int
}

// ListRuns retrieves recent runs, newest first, with optional filters.
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT id, target_id, options, status, started_at, completed_at
		FROM pipeline_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TargetID != "" {
		query += fmt.Sprintf(" AND target_id ILIKE $%d", argNum)
		args = append(args, "%"+filters.TargetID+"%")
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var optionsJSON []byte
		if err := rows.Scan(&run.ID, &run.TargetID, &optionsJSON, &run.Status, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if len(optionsJSON) > 0 {
			_ = json.Unmarshal(optionsJSON, &run.Options)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
