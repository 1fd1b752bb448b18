package billing

import (
	"testing"

	"github.com/carebase/carebase/internal/domain/encounter"
	"github.com/carebase/carebase/internal/domain/program"
)

func TestDeriveModifiers(t *testing.T) {
	tests := []struct {
		name       string
		noteType   string
		enrollment EnrollmentContext
		wantMod1   string
		wantMod2   string // empty means nil expected
	}{
		{
			name:       "clinical notes carry no modifiers",
			noteType:   encounter.NoteTypeClinical,
			enrollment: EnrollmentContext{ProgramName: "Outreach and Drop In", ProgramCategory: program.CategoryPreTenancy},
		},
		{
			name:       "comprehensive assessment carries no modifiers",
			noteType:   encounter.NoteTypeCompAssess,
			enrollment: EnrollmentContext{ProgramCategory: program.CategoryTenancySustaining},
		},
		{
			name:       "peer note in pre-tenancy program",
			noteType:   encounter.NoteTypePeer,
			enrollment: EnrollmentContext{ProgramCategory: program.CategoryPreTenancy},
			wantMod1:   "U2",
			wantMod2:   "UA",
		},
		{
			name:       "case management in tenancy-sustaining program",
			noteType:   encounter.NoteTypeCaseManagement,
			enrollment: EnrollmentContext{ProgramCategory: program.CategoryTenancySustaining},
			wantMod1:   "U2",
			wantMod2:   "UB",
		},
		{
			name:       "peer note in uncategorized program",
			noteType:   encounter.NoteTypePeer,
			enrollment: EnrollmentContext{ProgramCategory: program.CategoryOther},
			wantMod1:   "U2",
		},
		{
			name:       "program category inferred from name",
			noteType:   encounter.NoteTypePeer,
			enrollment: EnrollmentContext{ProgramName: "Outreach and Drop In"},
			wantMod1:   "U2",
			wantMod2:   "UA",
		},
		{
			name:       "housing program inferred from name",
			noteType:   encounter.NoteTypeCaseManagement,
			enrollment: EnrollmentContext{ProgramName: "Supportive Housing East"},
			wantMod1:   "U2",
			wantMod2:   "UB",
		},
		{
			name:     "unknown note type degrades to no modifiers",
			noteType: "progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod1, mod2 := DeriveModifiers(tt.noteType, tt.enrollment)
			if mod1 != tt.wantMod1 {
				t.Errorf("modifier1 = %q, want %q", mod1, tt.wantMod1)
			}
			if tt.wantMod2 == "" {
				if mod2 != nil {
					t.Errorf("modifier2 = %q, want nil", *mod2)
				}
			} else {
				if mod2 == nil {
					t.Fatalf("modifier2 = nil, want %q", tt.wantMod2)
				}
				if *mod2 != tt.wantMod2 {
					t.Errorf("modifier2 = %q, want %q", *mod2, tt.wantMod2)
				}
			}
		})
	}
}

func TestCodesForNoteType(t *testing.T) {
	clinical := CodesForNoteType(encounter.NoteTypeClinical)
	if len(clinical) != 13 {
		t.Errorf("expected 13 clinical codes, got %d", len(clinical))
	}
	peer := CodesForNoteType(encounter.NoteTypePeer)
	if len(peer) != 4 {
		t.Errorf("expected 4 peer codes, got %d", len(peer))
	}
	if got := CodesForNoteType("unknown"); len(got) != 0 {
		t.Errorf("expected empty list for unknown note type, got %d codes", len(got))
	}
}
