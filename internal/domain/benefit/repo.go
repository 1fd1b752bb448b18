package benefit

import (
	"context"

	"github.com/google/uuid"
)

type BenefitRepository interface {
	Create(ctx context.Context, b *Benefit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Benefit, error)
	Update(ctx context.Context, b *Benefit) error
	ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Benefit, int, error)
}

type AssignmentRepository interface {
	// CreateIfAbsent inserts the assignment unless the
	// (program, participant, benefit) row already exists. It reports
	// whether a row was written; losing a concurrent race is not an error.
	CreateIfAbsent(ctx context.Context, a *Assignment) (bool, error)
	Exists(ctx context.Context, programID, participantID, benefitID uuid.UUID) (bool, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Assignment, int, error)
}

type DisbursementRepository interface {
	// BulkCreate inserts each disbursement independently and returns one
	// result per input, in input order. A failed row never aborts its
	// siblings.
	BulkCreate(ctx context.Context, ds []*Disbursement) []RowResult
	GetByID(ctx context.Context, id uuid.UUID) (*Disbursement, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Disbursement, int, error)
	ListByBenefit(ctx context.Context, benefitID uuid.UUID, limit, offset int) ([]*Disbursement, int, error)
}
