package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRecorder persists access entries to the access_audit table.
type PgRecorder struct {
	pool *pgxpool.Pool
}

func NewPgRecorder(pool *pgxpool.Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

func (r *PgRecorder) RecordAccess(ctx context.Context, entry AccessEntry) error {
	query := `
		INSERT INTO access_audit (record_id, record_type, access_source, user_id, accessed_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, entry.RecordID, entry.RecordType,
		entry.AccessSource, entry.UserID, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}
