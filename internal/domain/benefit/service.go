package benefit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service covers the benefit catalog. Disbursement flows live on Engine.
type Service struct {
	benefits      BenefitRepository
	assignments   AssignmentRepository
	disbursements DisbursementRepository
}

func NewService(benefits BenefitRepository, assignments AssignmentRepository, disbursements DisbursementRepository) *Service {
	return &Service{benefits: benefits, assignments: assignments, disbursements: disbursements}
}

func (s *Service) CreateBenefit(ctx context.Context, b *Benefit) error {
	if b.Name == "" {
		return fmt.Errorf("benefit name is required")
	}
	if b.ProgramID == uuid.Nil {
		return fmt.Errorf("program id is required")
	}
	if b.BillingCode != nil && *b.BillingCode == "" {
		b.BillingCode = nil
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return s.benefits.Create(ctx, b)
}

func (s *Service) GetBenefit(ctx context.Context, id uuid.UUID) (*Benefit, error) {
	return s.benefits.GetByID(ctx, id)
}

func (s *Service) UpdateBenefit(ctx context.Context, b *Benefit) error {
	if b.ID == uuid.Nil {
		return fmt.Errorf("benefit id is required")
	}
	if b.Name == "" {
		return fmt.Errorf("benefit name is required")
	}
	return s.benefits.Update(ctx, b)
}

func (s *Service) ListBenefitsByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Benefit, int, error) {
	return s.benefits.ListByProgram(ctx, programID, limit, offset)
}

func (s *Service) ListAssignmentsByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return s.assignments.ListByParticipant(ctx, participantID, limit, offset)
}

func (s *Service) GetDisbursement(ctx context.Context, id uuid.UUID) (*Disbursement, error) {
	return s.disbursements.GetByID(ctx, id)
}

func (s *Service) ListDisbursementsByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Disbursement, int, error) {
	return s.disbursements.ListByParticipant(ctx, participantID, limit, offset)
}

func (s *Service) ListDisbursementsByBenefit(ctx context.Context, benefitID uuid.UUID, limit, offset int) ([]*Disbursement, int, error) {
	return s.disbursements.ListByBenefit(ctx, benefitID, limit, offset)
}
