package program

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validCategories = map[string]bool{
	CategoryPreTenancy:        true,
	CategoryTenancySustaining: true,
	CategoryOther:             true,
}

var validEnrollmentStatuses = map[string]bool{
	EnrollmentActive:         true,
	EnrollmentAwaitingIntake: true,
	EnrollmentPendingExit:    true,
	EnrollmentExited:         true,
}

// enrollmentTransitions lists the allowed status moves. Exited is terminal.
var enrollmentTransitions = map[string][]string{
	EnrollmentAwaitingIntake: {EnrollmentActive, EnrollmentExited},
	EnrollmentActive:         {EnrollmentPendingExit, EnrollmentExited},
	EnrollmentPendingExit:    {EnrollmentActive, EnrollmentExited},
	EnrollmentExited:         {},
}

type Service struct {
	programs    ProgramRepository
	enrollments EnrollmentRepository
	log         zerolog.Logger
}

func NewService(programs ProgramRepository, enrollments EnrollmentRepository, log zerolog.Logger) *Service {
	return &Service{programs: programs, enrollments: enrollments, log: log}
}

func (s *Service) CreateProgram(ctx context.Context, p *Program) error {
	if p.Name == "" {
		return fmt.Errorf("program name is required")
	}
	if p.Category == "" {
		p.Category = CategoryOther
	}
	if !validCategories[p.Category] {
		return fmt.Errorf("invalid program category: %s", p.Category)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.programs.Create(ctx, p)
}

func (s *Service) GetProgram(ctx context.Context, id uuid.UUID) (*Program, error) {
	return s.programs.GetByID(ctx, id)
}

func (s *Service) UpdateProgram(ctx context.Context, p *Program) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("program id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("program name is required")
	}
	if !validCategories[p.Category] {
		return fmt.Errorf("invalid program category: %s", p.Category)
	}
	return s.programs.Update(ctx, p)
}

func (s *Service) ListPrograms(ctx context.Context, limit, offset int) ([]*Program, int, error) {
	return s.programs.List(ctx, limit, offset)
}

// ResolveProgramID accepts either a program UUID or a program name and
// returns the program's id. Callers that receive program references from
// loosely-typed sources (CSV imports, legacy APIs) use this instead of
// requiring the caller to know which form it holds.
func (s *Service) ResolveProgramID(ctx context.Context, nameOrID string) (uuid.UUID, error) {
	if nameOrID == "" {
		return uuid.Nil, fmt.Errorf("program reference is required")
	}
	if id, err := uuid.Parse(nameOrID); err == nil {
		p, err := s.programs.GetByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return p.ID, nil
	}
	p, err := s.programs.GetByName(ctx, nameOrID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (s *Service) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	if e.ParticipantID == uuid.Nil {
		return fmt.Errorf("participant id is required")
	}
	if e.ProgramID == uuid.Nil {
		return fmt.Errorf("program id is required")
	}
	if e.Status == "" {
		e.Status = EnrollmentAwaitingIntake
	}
	if !validEnrollmentStatuses[e.Status] {
		return fmt.Errorf("invalid enrollment status: %s", e.Status)
	}
	if e.StartDate.IsZero() {
		e.StartDate = time.Now().UTC()
	}
	if _, err := s.programs.GetByID(ctx, e.ProgramID); err != nil {
		return err
	}
	if e.Status == EnrollmentActive {
		existing, err := s.enrollments.GetActive(ctx, e.ParticipantID, e.ProgramID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("participant %s already has an active enrollment in program %s", e.ParticipantID, e.ProgramID)
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return s.enrollments.Create(ctx, e)
}

func (s *Service) GetEnrollment(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	return s.enrollments.GetByID(ctx, id)
}

// GetActiveEnrollment returns the participant's active enrollment in the
// program, or nil when there is none.
func (s *Service) GetActiveEnrollment(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error) {
	return s.enrollments.GetActive(ctx, participantID, programID)
}

// TransitionEnrollment moves an enrollment to a new status. Exiting an
// enrollment stamps its end date; re-activating one clears it.
func (s *Service) TransitionEnrollment(ctx context.Context, id uuid.UUID, newStatus string) (*Enrollment, error) {
	if !validEnrollmentStatuses[newStatus] {
		return nil, fmt.Errorf("invalid enrollment status: %s", newStatus)
	}

	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == newStatus {
		return e, nil
	}

	allowed := false
	for _, next := range enrollmentTransitions[e.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition enrollment from %s to %s", e.Status, newStatus)
	}

	if newStatus == EnrollmentActive {
		existing, err := s.enrollments.GetActive(ctx, e.ParticipantID, e.ProgramID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != e.ID {
			return nil, fmt.Errorf("participant %s already has an active enrollment in program %s", e.ParticipantID, e.ProgramID)
		}
		e.EndDate = nil
	}
	if newStatus == EnrollmentExited {
		now := time.Now().UTC()
		e.EndDate = &now
	}

	e.Status = newStatus
	if err := s.enrollments.Update(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("enrollment_id", e.ID.String()).
		Str("status", e.Status).
		Msg("enrollment status changed")
	return e, nil
}

func (s *Service) ListEnrollmentsByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	return s.enrollments.ListByParticipant(ctx, participantID, limit, offset)
}

func (s *Service) ListEnrollmentsByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, int, error) {
	return s.enrollments.ListByProgram(ctx, programID, limit, offset)
}
