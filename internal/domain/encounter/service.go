package encounter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validNoteTypes = map[string]bool{
	NoteTypeClinical:       true,
	NoteTypePeer:           true,
	NoteTypeCaseManagement: true,
	NoteTypeCompAssess:     true,
}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) CreateEncounter(ctx context.Context, e *Encounter) error {
	if e.ParticipantID == uuid.Nil {
		return fmt.Errorf("participant id is required")
	}
	if e.ProgramEnrollmentID == uuid.Nil {
		return fmt.Errorf("program enrollment id is required")
	}
	if !validNoteTypes[e.NoteType] {
		return fmt.Errorf("invalid note type: %s", e.NoteType)
	}
	if e.ServiceDate.IsZero() {
		e.ServiceDate = time.Now().UTC()
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return s.repo.Create(ctx, e)
}

// CreateStub records a minimal encounter on behalf of another workflow, such
// as a benefit disbursement that needs an encounter to hang service lines on.
func (s *Service) CreateStub(ctx context.Context, participantID, enrollmentID uuid.UUID, noteType string, serviceDate time.Time) (uuid.UUID, error) {
	e := &Encounter{
		ParticipantID:       participantID,
		ProgramEnrollmentID: enrollmentID,
		NoteType:            noteType,
		ServiceDate:         serviceDate,
	}
	if err := s.CreateEncounter(ctx, e); err != nil {
		return uuid.Nil, err
	}
	s.log.Debug().
		Str("encounter_id", e.ID.String()).
		Str("note_type", noteType).
		Msg("encounter stub created")
	return e.ID, nil
}

func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateNote replaces the encounter narrative. Locked encounters are
// read-only.
func (s *Service) UpdateNote(ctx context.Context, id uuid.UUID, note string) (*Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Locked {
		return nil, fmt.Errorf("encounter %s is locked", id)
	}
	e.Note = note
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Lock makes the encounter narrative immutable. Locking an already locked
// encounter is a no-op.
func (s *Service) Lock(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Locked {
		return e, nil
	}
	e.Locked = true
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.log.Info().Str("encounter_id", id.String()).Msg("encounter locked")
	return e, nil
}

func (s *Service) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.ListByParticipant(ctx, participantID, limit, offset)
}

func (s *Service) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.ListByEnrollment(ctx, enrollmentID, limit, offset)
}
