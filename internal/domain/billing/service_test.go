package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func seedLine(repo *mockLineRepo, status string) *ServiceLine {
	l := &ServiceLine{ID: uuid.New(), EncounterID: uuid.New(), Code: "H0043", Status: status, Units: 1}
	repo.lines[l.ID] = l
	return l
}

func TestMarkBilled(t *testing.T) {
	repo := newMockLineRepo()
	svc := NewService(repo, zerolog.Nop())
	l := seedLine(repo, StatusPending)

	out, err := svc.MarkBilled(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusBilled {
		t.Errorf("status = %q, want billed", out.Status)
	}
}

func TestMarkRejected_ThenRebill(t *testing.T) {
	repo := newMockLineRepo()
	svc := NewService(repo, zerolog.Nop())
	l := seedLine(repo, StatusPending)

	if _, err := svc.MarkRejected(context.Background(), l.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	out, err := svc.MarkBilled(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("rebill: %v", err)
	}
	if out.Status != StatusBilled {
		t.Errorf("status = %q, want billed", out.Status)
	}
}

func TestBilledIsTerminal(t *testing.T) {
	repo := newMockLineRepo()
	svc := NewService(repo, zerolog.Nop())
	l := seedLine(repo, StatusBilled)

	if _, err := svc.MarkRejected(context.Background(), l.ID); err == nil {
		t.Error("expected error rejecting a billed line")
	}
}

func TestTransition_SameStatusIsNoOp(t *testing.T) {
	repo := newMockLineRepo()
	svc := NewService(repo, zerolog.Nop())
	l := seedLine(repo, StatusBilled)

	out, err := svc.MarkBilled(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusBilled {
		t.Errorf("status = %q, want billed", out.Status)
	}
}

func TestListByStatus_RejectsUnknown(t *testing.T) {
	repo := newMockLineRepo()
	svc := NewService(repo, zerolog.Nop())

	if _, _, err := svc.ListByStatus(context.Background(), "archived", 20, 0); err == nil {
		t.Error("expected error for unknown status")
	}
}
