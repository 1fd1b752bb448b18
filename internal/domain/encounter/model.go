package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Note types determine which billing codes an encounter may carry and how
// modifiers are derived for its service lines.
const (
	NoteTypeClinical       = "clinical"
	NoteTypePeer           = "peer"
	NoteTypeCaseManagement = "case_management"
	NoteTypeCompAssess     = "comp_assess"
)

// Encounter maps to the encounter table. A locked encounter's narrative
// content can no longer change; billing service lines attached to it may
// still be regenerated until one of them is billed.
type Encounter struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	ParticipantID       uuid.UUID `db:"participant_id" json:"participant_id"`
	ProgramEnrollmentID uuid.UUID `db:"program_enrollment_id" json:"program_enrollment_id"`
	NoteType            string    `db:"note_type" json:"note_type"`
	ServiceDate         time.Time `db:"service_date" json:"service_date"`
	Note                string    `db:"note" json:"note"`
	Locked              bool      `db:"locked" json:"locked"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
