package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

// SaveTargetRecord caches a resolved target record, replacing any prior
// record for the same identifier.
func (db *DB) SaveTargetRecord(ctx context.Context, record *types.TargetRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal target record: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO target_records (identifier, record, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (identifier) DO UPDATE
		 SET record = $2, updated_at = NOW()`,
		record.Identifier, recordJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save target record: %w", err)
	}
	return nil
}

// GetTargetRecord returns a cached target record no older than maxAge, or
// (nil, nil) when no fresh record exists. Callers fall back to live
// resolution on a miss.
func (db *DB) GetTargetRecord(ctx context.Context, identifier string, maxAge time.Duration) (*types.TargetRecord, error) {
	cutoff := time.Now().Add(-maxAge)

	var recordJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT record FROM target_records
		 WHERE identifier = $1 AND updated_at > $2`,
		identifier, cutoff,
	).Scan(&recordJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get target record: %w", err)
	}

	var record types.TargetRecord
	if err := json.Unmarshal(recordJSON, &record); err != nil {
		return nil, fmt.Errorf("failed to decode target record: %w", err)
	}
	return &record, nil
}
