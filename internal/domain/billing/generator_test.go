package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebase/carebase/internal/domain/encounter"
	"github.com/carebase/carebase/internal/domain/program"
)

type mockLineRepo struct {
	lines    map[uuid.UUID]*ServiceLine
	failCode string
}

func newMockLineRepo() *mockLineRepo {
	return &mockLineRepo{lines: make(map[uuid.UUID]*ServiceLine)}
}

func (m *mockLineRepo) GetByID(_ context.Context, id uuid.UUID) (*ServiceLine, error) {
	l, ok := m.lines[id]
	if !ok {
		return nil, fmt.Errorf("service line not found: %s", id)
	}
	return l, nil
}

func (m *mockLineRepo) ListByEncounter(_ context.Context, encounterID uuid.UUID) ([]*ServiceLine, error) {
	var out []*ServiceLine
	for _, l := range m.lines {
		if l.EncounterID == encounterID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLineRepo) DeleteByEncounter(_ context.Context, encounterID uuid.UUID) (int, error) {
	n := 0
	for id, l := range m.lines {
		if l.EncounterID == encounterID {
			delete(m.lines, id)
			n++
		}
	}
	return n, nil
}

func (m *mockLineRepo) BulkCreate(_ context.Context, lines []*ServiceLine) []RowResult {
	results := make([]RowResult, 0, len(lines))
	for _, l := range lines {
		if m.failCode != "" && l.Code == m.failCode {
			results = append(results, RowResult{ID: l.ID, Code: l.Code, Message: "insert failed"})
			continue
		}
		m.lines[l.ID] = l
		results = append(results, RowResult{ID: l.ID, Code: l.Code, Success: true})
	}
	return results
}

func (m *mockLineRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*ServiceLine, error) {
	l, ok := m.lines[id]
	if !ok {
		return nil, fmt.Errorf("service line not found: %s", id)
	}
	l.Status = status
	return l, nil
}

func (m *mockLineRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*ServiceLine, int, error) {
	var out []*ServiceLine
	for _, l := range m.lines {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

type mockSource struct {
	infos map[uuid.UUID]*EncounterInfo
}

func (m *mockSource) EncounterInfo(_ context.Context, id uuid.UUID) (*EncounterInfo, error) {
	info, ok := m.infos[id]
	if !ok {
		return nil, fmt.Errorf("encounter not found: %s", id)
	}
	return info, nil
}

func newTestGenerator(encounterID uuid.UUID, info *EncounterInfo) (*Generator, *mockLineRepo) {
	repo := newMockLineRepo()
	source := &mockSource{infos: map[uuid.UUID]*EncounterInfo{encounterID: info}}
	return NewGenerator(repo, source, zerolog.Nop()), repo
}

func peerOutreachInfo() *EncounterInfo {
	return &EncounterInfo{
		NoteType:        encounter.NoteTypePeer,
		ProgramName:     "Outreach and Drop In",
		ProgramCategory: program.CategoryPreTenancy,
	}
}

func TestSave_PeerOutreachExpansion(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())

	result, err := gen.Save(context.Background(), encID, []string{"T1017", "H0043", "H0044", "H2014"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created() != 4 {
		t.Fatalf("expected 4 created lines, got %d", result.Created())
	}

	byCode := make(map[string]*ServiceLine)
	for _, l := range repo.lines {
		byCode[l.Code] = l
	}

	for _, code := range []string{"T1017", "H0043", "H0044", "H2014"} {
		l := byCode[code]
		if l == nil {
			t.Fatalf("missing line for %s", code)
		}
		if l.Modifier1 != "U2" {
			t.Errorf("%s modifier1 = %q, want U2", code, l.Modifier1)
		}
		if l.Status != StatusPending {
			t.Errorf("%s status = %q, want pending", code, l.Status)
		}
		if l.Units != 1 {
			t.Errorf("%s units = %d, want 1", code, l.Units)
		}
	}

	// Targeted case management never carries the program modifier.
	if byCode["T1017"].Modifier2 != nil {
		t.Errorf("T1017 modifier2 = %q, want nil", *byCode["T1017"].Modifier2)
	}
	for _, code := range []string{"H0043", "H0044", "H2014"} {
		if byCode[code].Modifier2 == nil || *byCode[code].Modifier2 != "UA" {
			t.Errorf("%s modifier2 = %v, want UA", code, byCode[code].Modifier2)
		}
	}

	want := "T1017 U2 - Targeted case management, per 15 minutes"
	if byCode["T1017"].Description != want {
		t.Errorf("T1017 description = %q, want %q", byCode["T1017"].Description, want)
	}
	want = "H0043 U2 UA - Supported housing, per diem"
	if byCode["H0043"].Description != want {
		t.Errorf("H0043 description = %q, want %q", byCode["H0043"].Description, want)
	}
}

func TestSave_FullReplace(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())

	first, err := gen.Save(context.Background(), encID, []string{"T1017", "H0043"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	firstIDs := make(map[uuid.UUID]bool)
	for _, r := range first.Results {
		firstIDs[r.ID] = true
	}

	second, err := gen.Save(context.Background(), encID, []string{"T1017", "H0043"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", second.Deleted)
	}
	if len(repo.lines) != 2 {
		t.Errorf("expected 2 lines after resave, got %d", len(repo.lines))
	}
	for _, r := range second.Results {
		if firstIDs[r.ID] {
			t.Error("expected fresh ids on resave")
		}
	}
}

func TestSave_EmptySelectionClears(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())

	if _, err := gen.Save(context.Background(), encID, []string{"H0043"}); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	result, err := gen.Save(context.Background(), encID, nil)
	if err != nil {
		t.Fatalf("clear save: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", result.Deleted)
	}
	if len(repo.lines) != 0 {
		t.Errorf("expected no lines, got %d", len(repo.lines))
	}
}

func TestSave_BilledLineIsImmutable(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())

	billed := &ServiceLine{ID: uuid.New(), EncounterID: encID, Code: "H0043", Status: StatusBilled}
	repo.lines[billed.ID] = billed

	_, err := gen.Save(context.Background(), encID, []string{"T1017"})
	if !errors.Is(err, ErrImmutableBillingLine) {
		t.Fatalf("expected ErrImmutableBillingLine, got %v", err)
	}
	if _, ok := repo.lines[billed.ID]; !ok {
		t.Error("billed line must not be deleted")
	}
}

func TestSave_UnknownCodeFailsRowOnly(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())

	result, err := gen.Save(context.Background(), encID, []string{"99999", "H0043"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created() != 1 {
		t.Errorf("expected 1 created line, got %d", result.Created())
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 row results, got %d", len(result.Results))
	}
	var sawFailure bool
	for _, r := range result.Results {
		if r.Code == "99999" && !r.Success {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Error("expected a row failure for the unknown code")
	}
	if len(repo.lines) != 1 {
		t.Errorf("expected 1 persisted line, got %d", len(repo.lines))
	}
}

func TestSave_InsertFailureDoesNotAbortSiblings(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, peerOutreachInfo())
	repo.failCode = "H0044"

	result, err := gen.Save(context.Background(), encID, []string{"H0043", "H0044", "H2014"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created() != 2 {
		t.Errorf("expected 2 created lines, got %d", result.Created())
	}
	if len(repo.lines) != 2 {
		t.Errorf("expected 2 persisted lines, got %d", len(repo.lines))
	}
}

func TestSave_ClinicalEncounterHasNoModifiers(t *testing.T) {
	encID := uuid.New()
	gen, repo := newTestGenerator(encID, &EncounterInfo{
		NoteType:        encounter.NoteTypeClinical,
		ProgramName:     "Supportive Housing East",
		ProgramCategory: program.CategoryTenancySustaining,
	})

	if _, err := gen.Save(context.Background(), encID, []string{"90834"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range repo.lines {
		if l.Modifier1 != "" || l.Modifier2 != nil {
			t.Errorf("clinical line has modifiers: %q %v", l.Modifier1, l.Modifier2)
		}
		want := "90834 - Psychotherapy, 45 minutes"
		if l.Description != want {
			t.Errorf("description = %q, want %q", l.Description, want)
		}
	}
}
