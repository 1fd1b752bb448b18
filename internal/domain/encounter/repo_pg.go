package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const encounterCols = `id, participant_id, program_enrollment_id, note_type, service_date, note, locked, created_at, updated_at`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.ParticipantID, &e.ProgramEnrollmentID, &e.NoteType,
		&e.ServiceDate, &e.Note, &e.Locked, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgRepository) Create(ctx context.Context, e *Encounter) error {
	query := `
		INSERT INTO encounter (id, participant_id, program_enrollment_id, note_type, service_date, note, locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.ParticipantID, e.ProgramEnrollmentID,
		e.NoteType, e.ServiceDate, e.Note, e.Locked).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create encounter: %w", err)
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	query := fmt.Sprintf(`SELECT %s FROM encounter WHERE id = $1`, encounterCols)

	e, err := scanEncounter(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("encounter not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get encounter: %w", err)
	}
	return e, nil
}

func (r *PgRepository) Update(ctx context.Context, e *Encounter) error {
	query := `
		UPDATE encounter
		SET note_type = $2, service_date = $3, note = $4, locked = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.NoteType, e.ServiceDate, e.Note, e.Locked).
		Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("encounter not found: %s", e.ID)
		}
		return fmt.Errorf("failed to update encounter: %w", err)
	}
	return nil
}

func (r *PgRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return r.list(ctx, `participant_id`, participantID, limit, offset)
}

func (r *PgRepository) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return r.list(ctx, `program_enrollment_id`, enrollmentID, limit, offset)
}

func (r *PgRepository) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM encounter WHERE %s = $1`, col)
	if err := r.pool.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count encounters: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM encounter
		WHERE %s = $1
		ORDER BY service_date DESC
		LIMIT $2 OFFSET $3`, encounterCols, col)

	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list encounters: %w", err)
	}
	defer rows.Close()

	var encounters []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan encounter: %w", err)
		}
		encounters = append(encounters, e)
	}
	return encounters, total, rows.Err()
}
