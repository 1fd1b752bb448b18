package encounter

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	Update(ctx context.Context, e *Encounter) error
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Encounter, int, error)
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*Encounter, int, error)
}
