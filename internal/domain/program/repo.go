package program

import (
	"context"

	"github.com/google/uuid"
)

type ProgramRepository interface {
	Create(ctx context.Context, p *Program) error
	GetByID(ctx context.Context, id uuid.UUID) (*Program, error)
	GetByName(ctx context.Context, name string) (*Program, error)
	Update(ctx context.Context, p *Program) error
	List(ctx context.Context, limit, offset int) ([]*Program, int, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	// GetActive returns the active enrollment for the pair, or (nil, nil)
	// when the participant has no active enrollment in the program.
	GetActive(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error)
	Update(ctx context.Context, e *Enrollment) error
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Enrollment, int, error)
	ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, int, error)
}
