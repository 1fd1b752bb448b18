package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgServiceLineRepository struct {
	pool *pgxpool.Pool
}

func NewPgServiceLineRepository(pool *pgxpool.Pool) *PgServiceLineRepository {
	return &PgServiceLineRepository{pool: pool}
}

const serviceLineCols = `id, encounter_id, code, modifier1, modifier2, description, units, status, created_at, updated_at`

func scanServiceLine(row pgx.Row) (*ServiceLine, error) {
	var l ServiceLine
	err := row.Scan(&l.ID, &l.EncounterID, &l.Code, &l.Modifier1, &l.Modifier2,
		&l.Description, &l.Units, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PgServiceLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*ServiceLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM billing_service_line WHERE id = $1`, serviceLineCols)

	l, err := scanServiceLine(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service line not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get service line: %w", err)
	}
	return l, nil
}

func (r *PgServiceLineRepository) ListByEncounter(ctx context.Context, encounterID uuid.UUID) ([]*ServiceLine, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM billing_service_line
		WHERE encounter_id = $1
		ORDER BY created_at`, serviceLineCols)

	rows, err := r.pool.Query(ctx, query, encounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service lines: %w", err)
	}
	defer rows.Close()

	var lines []*ServiceLine
	for rows.Next() {
		l, err := scanServiceLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *PgServiceLineRepository) DeleteByEncounter(ctx context.Context, encounterID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM billing_service_line WHERE encounter_id = $1`, encounterID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete service lines: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PgServiceLineRepository) BulkCreate(ctx context.Context, lines []*ServiceLine) []RowResult {
	query := `
		INSERT INTO billing_service_line (id, encounter_id, code, modifier1, modifier2, description, units, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	results := make([]RowResult, 0, len(lines))
	for _, l := range lines {
		err := r.pool.QueryRow(ctx, query, l.ID, l.EncounterID, l.Code, l.Modifier1,
			l.Modifier2, l.Description, l.Units, l.Status).Scan(&l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			results = append(results, RowResult{ID: l.ID, Code: l.Code, Message: err.Error()})
			continue
		}
		results = append(results, RowResult{ID: l.ID, Code: l.Code, Success: true})
	}
	return results
}

func (r *PgServiceLineRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*ServiceLine, error) {
	query := fmt.Sprintf(`
		UPDATE billing_service_line
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, serviceLineCols)

	l, err := scanServiceLine(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service line not found: %s", id)
		}
		return nil, fmt.Errorf("failed to update service line status: %w", err)
	}
	return l, nil
}

func (r *PgServiceLineRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*ServiceLine, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM billing_service_line WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count service lines: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM billing_service_line
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, serviceLineCols)

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list service lines: %w", err)
	}
	defer rows.Close()

	var lines []*ServiceLine
	for rows.Next() {
		l, err := scanServiceLine(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan service line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, total, rows.Err()
}
