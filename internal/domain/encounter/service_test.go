package encounter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	encounters map[uuid.UUID]*Encounter
}

func newMockRepo() *mockRepo {
	return &mockRepo{encounters: make(map[uuid.UUID]*Encounter)}
}

func (m *mockRepo) Create(_ context.Context, e *Encounter) error {
	m.encounters[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Encounter, error) {
	e, ok := m.encounters[id]
	if !ok {
		return nil, fmt.Errorf("encounter not found: %s", id)
	}
	return e, nil
}

func (m *mockRepo) Update(_ context.Context, e *Encounter) error {
	if _, ok := m.encounters[e.ID]; !ok {
		return fmt.Errorf("encounter not found: %s", e.ID)
	}
	m.encounters[e.ID] = e
	return nil
}

func (m *mockRepo) ListByParticipant(_ context.Context, participantID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if e.ParticipantID == participantID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByEnrollment(_ context.Context, enrollmentID uuid.UUID, limit, offset int) ([]*Encounter, int, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if e.ProgramEnrollmentID == enrollmentID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestCreateEncounter_ValidatesNoteType(t *testing.T) {
	svc, _ := newTestService()
	err := svc.CreateEncounter(context.Background(), &Encounter{
		ParticipantID:       uuid.New(),
		ProgramEnrollmentID: uuid.New(),
		NoteType:            "progress",
	})
	if err == nil {
		t.Fatal("expected error for unknown note type")
	}
}

func TestCreateEncounter_DefaultsServiceDate(t *testing.T) {
	svc, _ := newTestService()
	e := &Encounter{
		ParticipantID:       uuid.New(),
		ProgramEnrollmentID: uuid.New(),
		NoteType:            NoteTypePeer,
	}
	if err := svc.CreateEncounter(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ServiceDate.IsZero() {
		t.Error("expected service date to default")
	}
	if e.ID == uuid.Nil {
		t.Error("expected generated id")
	}
}

func TestCreateStub(t *testing.T) {
	svc, repo := newTestService()
	participant := uuid.New()
	enrollment := uuid.New()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	id, err := svc.CreateStub(context.Background(), participant, enrollment, NoteTypeClinical, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := repo.encounters[id]
	if e == nil {
		t.Fatal("stub not persisted")
	}
	if e.NoteType != NoteTypeClinical || !e.ServiceDate.Equal(date) {
		t.Errorf("unexpected stub: %+v", e)
	}
}

func TestUpdateNote_RejectsLocked(t *testing.T) {
	svc, repo := newTestService()
	e := &Encounter{ID: uuid.New(), ParticipantID: uuid.New(), ProgramEnrollmentID: uuid.New(), NoteType: NoteTypeClinical, Locked: true}
	repo.encounters[e.ID] = e

	if _, err := svc.UpdateNote(context.Background(), e.ID, "revised"); err == nil {
		t.Error("expected error updating a locked encounter")
	}
}

func TestLock_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	e := &Encounter{ID: uuid.New(), ParticipantID: uuid.New(), ProgramEnrollmentID: uuid.New(), NoteType: NoteTypeCaseManagement}
	repo.encounters[e.ID] = e

	if _, err := svc.Lock(context.Background(), e.ID); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	out, err := svc.Lock(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("second lock: %v", err)
	}
	if !out.Locked {
		t.Error("expected encounter to stay locked")
	}
}
