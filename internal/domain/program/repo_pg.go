package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgProgramRepository struct {
	pool *pgxpool.Pool
}

func NewPgProgramRepository(pool *pgxpool.Pool) *PgProgramRepository {
	return &PgProgramRepository{pool: pool}
}

const programCols = `id, name, category, active, created_at, updated_at`

func scanProgram(row pgx.Row) (*Program, error) {
	var p Program
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgProgramRepository) Create(ctx context.Context, p *Program) error {
	query := `
		INSERT INTO program (id, name, category, active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Category, p.Active).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}
	return nil
}

func (r *PgProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM program WHERE id = $1`, programCols)

	p, err := scanProgram(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("program not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	return p, nil
}

func (r *PgProgramRepository) GetByName(ctx context.Context, name string) (*Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM program WHERE lower(name) = lower($1)`, programCols)

	p, err := scanProgram(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("program not found: %s", name)
		}
		return nil, fmt.Errorf("failed to get program by name: %w", err)
	}
	return p, nil
}

func (r *PgProgramRepository) Update(ctx context.Context, p *Program) error {
	query := `
		UPDATE program
		SET name = $2, category = $3, active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Category, p.Active).
		Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("program not found: %s", p.ID)
		}
		return fmt.Errorf("failed to update program: %w", err)
	}
	return nil
}

func (r *PgProgramRepository) List(ctx context.Context, limit, offset int) ([]*Program, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM program`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count programs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM program ORDER BY name LIMIT $1 OFFSET $2`, programCols)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var programs []*Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, total, rows.Err()
}

type PgEnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgEnrollmentRepository(pool *pgxpool.Pool) *PgEnrollmentRepository {
	return &PgEnrollmentRepository{pool: pool}
}

const enrollmentCols = `id, participant_id, program_id, status, start_date, end_date, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	err := row.Scan(&e.ID, &e.ParticipantID, &e.ProgramID, &e.Status,
		&e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgEnrollmentRepository) Create(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO program_enrollment (id, participant_id, program_id, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.ParticipantID, e.ProgramID,
		e.Status, e.StartDate, e.EndDate).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *PgEnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM program_enrollment WHERE id = $1`, enrollmentCols)

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("enrollment not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

func (r *PgEnrollmentRepository) GetActive(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM program_enrollment
		WHERE participant_id = $1 AND program_id = $2 AND status = $3`, enrollmentCols)

	e, err := scanEnrollment(r.pool.QueryRow(ctx, query, participantID, programID, EnrollmentActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active enrollment: %w", err)
	}
	return e, nil
}

func (r *PgEnrollmentRepository) Update(ctx context.Context, e *Enrollment) error {
	query := `
		UPDATE program_enrollment
		SET status = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, e.ID, e.Status, e.StartDate, e.EndDate).
		Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("enrollment not found: %s", e.ID)
		}
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return nil
}

func (r *PgEnrollmentRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	return r.list(ctx, `participant_id`, participantID, limit, offset)
}

func (r *PgEnrollmentRepository) ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	return r.list(ctx, `program_id`, programID, limit, offset)
}

func (r *PgEnrollmentRepository) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM program_enrollment WHERE %s = $1`, col)
	if err := r.pool.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM program_enrollment
		WHERE %s = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3`, enrollmentCols, col)

	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, total, rows.Err()
}
