package billing

import (
	"time"

	"github.com/google/uuid"
)

// Service line statuses. Pending lines can be regenerated freely; billed
// lines are immutable; rejected lines stay visible for rework.
const (
	StatusPending  = "pending"
	StatusBilled   = "billed"
	StatusRejected = "rejected"
)

// ServiceLine maps to the billing_service_line table. Modifier2 is null for
// codes that never carry a program modifier, such as targeted case
// management.
type ServiceLine struct {
	ID          uuid.UUID `db:"id" json:"id"`
	EncounterID uuid.UUID `db:"encounter_id" json:"encounter_id"`
	Code        string    `db:"code" json:"code"`
	Modifier1   string    `db:"modifier1" json:"modifier1"`
	Modifier2   *string   `db:"modifier2" json:"modifier2,omitempty"`
	Description string    `db:"description" json:"description"`
	Units       int       `db:"units" json:"units"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CodeConfig is one selectable billing code for a note type.
type CodeConfig struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RowResult reports the outcome of one row in a bulk write. A failed row
// never aborts its siblings.
type RowResult struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code,omitempty"`
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
}

// SaveResult summarizes a full regeneration of an encounter's service lines.
type SaveResult struct {
	EncounterID uuid.UUID   `json:"encounter_id"`
	Deleted     int         `json:"deleted"`
	Results     []RowResult `json:"results"`
}

// Created counts the rows that were written successfully.
func (r *SaveResult) Created() int {
	n := 0
	for _, row := range r.Results {
		if row.Success {
			n++
		}
	}
	return n
}
