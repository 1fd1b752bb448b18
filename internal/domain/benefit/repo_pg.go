package benefit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgBenefitRepository struct {
	pool *pgxpool.Pool
}

func NewPgBenefitRepository(pool *pgxpool.Pool) *PgBenefitRepository {
	return &PgBenefitRepository{pool: pool}
}

const benefitCols = `id, program_id, name, description, billing_code, clinical, created_at, updated_at`

func scanBenefit(row pgx.Row) (*Benefit, error) {
	var b Benefit
	err := row.Scan(&b.ID, &b.ProgramID, &b.Name, &b.Description, &b.BillingCode,
		&b.Clinical, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PgBenefitRepository) Create(ctx context.Context, b *Benefit) error {
	query := `
		INSERT INTO benefit (id, program_id, name, description, billing_code, clinical)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, b.ID, b.ProgramID, b.Name, b.Description,
		b.BillingCode, b.Clinical).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create benefit: %w", err)
	}
	return nil
}

func (r *PgBenefitRepository) GetByID(ctx context.Context, id uuid.UUID) (*Benefit, error) {
	query := fmt.Sprintf(`SELECT %s FROM benefit WHERE id = $1`, benefitCols)

	b, err := scanBenefit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("benefit not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get benefit: %w", err)
	}
	return b, nil
}

func (r *PgBenefitRepository) Update(ctx context.Context, b *Benefit) error {
	query := `
		UPDATE benefit
		SET name = $2, description = $3, billing_code = $4, clinical = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, b.ID, b.Name, b.Description, b.BillingCode, b.Clinical).
		Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("benefit not found: %s", b.ID)
		}
		return fmt.Errorf("failed to update benefit: %w", err)
	}
	return nil
}

func (r *PgBenefitRepository) ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Benefit, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM benefit WHERE program_id = $1`, programID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count benefits: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM benefit
		WHERE program_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`, benefitCols)

	rows, err := r.pool.Query(ctx, query, programID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	var benefits []*Benefit
	for rows.Next() {
		b, err := scanBenefit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	return benefits, total, rows.Err()
}

type PgAssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAssignmentRepository(pool *pgxpool.Pool) *PgAssignmentRepository {
	return &PgAssignmentRepository{pool: pool}
}

func (r *PgAssignmentRepository) CreateIfAbsent(ctx context.Context, a *Assignment) (bool, error) {
	// The unique index on (program_id, participant_id, benefit_id) makes
	// duplicate creates collapse to zero rows instead of erroring.
	query := `
		INSERT INTO benefit_assignment (id, program_id, participant_id, benefit_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (program_id, participant_id, benefit_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, a.ID, a.ProgramID, a.ParticipantID, a.BenefitID)
	if err != nil {
		return false, fmt.Errorf("failed to create assignment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgAssignmentRepository) Exists(ctx context.Context, programID, participantID, benefitID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM benefit_assignment
			WHERE program_id = $1 AND participant_id = $2 AND benefit_id = $3
		)`

	if err := r.pool.QueryRow(ctx, query, programID, participantID, benefitID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

func (r *PgAssignmentRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM benefit_assignment WHERE participant_id = $1`, participantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	query := `
		SELECT id, program_id, participant_id, benefit_id, created_at
		FROM benefit_assignment
		WHERE participant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, participantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.ProgramID, &a.ParticipantID, &a.BenefitID, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, total, rows.Err()
}

type PgDisbursementRepository struct {
	pool *pgxpool.Pool
}

func NewPgDisbursementRepository(pool *pgxpool.Pool) *PgDisbursementRepository {
	return &PgDisbursementRepository{pool: pool}
}

const disbursementCols = `id, benefit_id, participant_id, program_enrollment_id, service_date, quantity, note, encounter_id, created_at`

func scanDisbursement(row pgx.Row) (*Disbursement, error) {
	var d Disbursement
	err := row.Scan(&d.ID, &d.BenefitID, &d.ParticipantID, &d.ProgramEnrollmentID,
		&d.ServiceDate, &d.Quantity, &d.Note, &d.EncounterID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgDisbursementRepository) BulkCreate(ctx context.Context, ds []*Disbursement) []RowResult {
	query := `
		INSERT INTO benefit_disbursement
			(id, benefit_id, participant_id, program_enrollment_id, service_date, quantity, note, encounter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	results := make([]RowResult, 0, len(ds))
	for _, d := range ds {
		err := r.pool.QueryRow(ctx, query, d.ID, d.BenefitID, d.ParticipantID,
			d.ProgramEnrollmentID, d.ServiceDate, d.Quantity, d.Note, d.EncounterID).
			Scan(&d.CreatedAt)
		if err != nil {
			results = append(results, RowResult{ParticipantID: d.ParticipantID, Message: err.Error()})
			continue
		}
		id := d.ID
		results = append(results, RowResult{ParticipantID: d.ParticipantID, DisbursementID: &id, Success: true})
	}
	return results
}

func (r *PgDisbursementRepository) GetByID(ctx context.Context, id uuid.UUID) (*Disbursement, error) {
	query := fmt.Sprintf(`SELECT %s FROM benefit_disbursement WHERE id = $1`, disbursementCols)

	d, err := scanDisbursement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("disbursement not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get disbursement: %w", err)
	}
	return d, nil
}

func (r *PgDisbursementRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Disbursement, int, error) {
	return r.list(ctx, `participant_id`, participantID, limit, offset)
}

func (r *PgDisbursementRepository) ListByBenefit(ctx context.Context, benefitID uuid.UUID, limit, offset int) ([]*Disbursement, int, error) {
	return r.list(ctx, `benefit_id`, benefitID, limit, offset)
}

func (r *PgDisbursementRepository) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Disbursement, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM benefit_disbursement WHERE %s = $1`, col)
	if err := r.pool.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count disbursements: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM benefit_disbursement
		WHERE %s = $1
		ORDER BY service_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, disbursementCols, col)

	rows, err := r.pool.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list disbursements: %w", err)
	}
	defer rows.Close()

	var ds []*Disbursement
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan disbursement: %w", err)
		}
		ds = append(ds, d)
	}
	return ds, total, rows.Err()
}
