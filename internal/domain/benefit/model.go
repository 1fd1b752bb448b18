package benefit

import (
	"time"

	"github.com/google/uuid"
)

// Benefit maps to the benefit table. A benefit belongs to a program; its
// optional billing code links clinical disbursements to a service line.
type Benefit struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProgramID   uuid.UUID `db:"program_id" json:"program_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	BillingCode *string   `db:"billing_code" json:"billing_code,omitempty"`
	Clinical    bool      `db:"clinical" json:"clinical"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Assignment maps to the benefit_assignment table. One row per
// (program, participant, benefit); storage enforces uniqueness, so
// concurrent creates collapse to a single row.
type Assignment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProgramID     uuid.UUID `db:"program_id" json:"program_id"`
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`
	BenefitID     uuid.UUID `db:"benefit_id" json:"benefit_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Disbursement maps to the benefit_disbursement table. Disbursements are
// append-only; the same benefit may be disbursed to the same participant on
// the same day any number of times.
type Disbursement struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	BenefitID           uuid.UUID  `db:"benefit_id" json:"benefit_id"`
	ParticipantID       uuid.UUID  `db:"participant_id" json:"participant_id"`
	ProgramEnrollmentID uuid.UUID  `db:"program_enrollment_id" json:"program_enrollment_id"`
	ServiceDate         time.Time  `db:"service_date" json:"service_date"`
	Quantity            float64    `db:"quantity" json:"quantity"`
	Note                string     `db:"note" json:"note"`
	EncounterID         *uuid.UUID `db:"encounter_id" json:"encounter_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// CheckResult reports assignment readiness for a benefit across a batch of
// participants.
type CheckResult struct {
	BenefitID         uuid.UUID   `json:"benefit_id"`
	BenefitName       string      `json:"benefit_name"`
	AllReady          bool        `json:"all_ready"`
	NotEnrolled       []uuid.UUID `json:"not_enrolled,omitempty"`
	MissingAssignment []uuid.UUID `json:"missing_assignment,omitempty"`

	// enrollmentIDs maps enrolled participants to their active enrollment.
	enrollmentIDs map[uuid.UUID]uuid.UUID
}

// EnrollmentID returns the active enrollment recorded for the participant
// during the check.
func (r *CheckResult) EnrollmentID(participantID uuid.UUID) (uuid.UUID, bool) {
	id, ok := r.enrollmentIDs[participantID]
	return id, ok
}

// DisburseRequest is one disbursement batch: a single benefit delivered to
// one or more participants on a service date.
type DisburseRequest struct {
	BenefitID      uuid.UUID   `json:"benefit_id"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	// Program may hold a UUID or a program name; when empty the engine
	// falls back to the benefit's owning program.
	Program     string     `json:"program,omitempty"`
	ServiceDate time.Time  `json:"service_date"`
	Quantity    float64    `json:"quantity"`
	Note        string     `json:"note,omitempty"`
	EncounterID *uuid.UUID `json:"encounter_id,omitempty"`
}

// RowResult is the outcome for one participant in a disbursement batch.
type RowResult struct {
	ParticipantID  uuid.UUID  `json:"participant_id"`
	DisbursementID *uuid.UUID `json:"disbursement_id,omitempty"`
	Success        bool       `json:"success"`
	Message        string     `json:"message,omitempty"`
}

// DisburseOutcome is the aggregate result of a disbursement batch. When
// RemediationRequired is set no rows were written; the caller may create the
// missing assignments and retry.
type DisburseOutcome struct {
	RemediationRequired bool        `json:"remediation_required"`
	MissingAssignment   []uuid.UUID `json:"missing_assignment,omitempty"`
	Warnings            []string    `json:"warnings,omitempty"`
	Results             []RowResult `json:"results,omitempty"`
}

// Succeeded counts rows that were written.
func (o *DisburseOutcome) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Success {
			n++
		}
	}
	return n
}
