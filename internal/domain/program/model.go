package program

import (
	"time"

	"github.com/google/uuid"
)

// Program categories drive billing modifier derivation: pre-tenancy programs
// (outreach, drop-in) bill with the UA modifier, tenancy-sustaining programs
// (supportive-housing residences) with UB.
const (
	CategoryPreTenancy        = "pre-tenancy"
	CategoryTenancySustaining = "tenancy-sustaining"
	CategoryOther             = "other"
)

// Enrollment statuses. An enrollment is never physically deleted; exits are
// recorded as status transitions.
const (
	EnrollmentActive         = "active"
	EnrollmentAwaitingIntake = "awaiting_intake"
	EnrollmentPendingExit    = "pending_exit"
	EnrollmentExited         = "exited"
)

// Program maps to the program table.
type Program struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Active    *bool     `db:"active" json:"active,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment maps to the program_enrollment table. At most one active
// enrollment may exist per (participant, program) pair; the storage layer
// enforces this with a partial unique index.
type Enrollment struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ParticipantID uuid.UUID  `db:"participant_id" json:"participant_id"`
	ProgramID     uuid.UUID  `db:"program_id" json:"program_id"`
	Status        string     `db:"status" json:"status"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the enrollment currently authorizes services.
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentActive
}
