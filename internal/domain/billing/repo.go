package billing

import (
	"context"

	"github.com/google/uuid"
)

type ServiceLineRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceLine, error)
	ListByEncounter(ctx context.Context, encounterID uuid.UUID) ([]*ServiceLine, error)
	// DeleteByEncounter removes every line for the encounter and returns the
	// number of rows removed.
	DeleteByEncounter(ctx context.Context, encounterID uuid.UUID) (int, error)
	// BulkCreate inserts each line independently. A failed row never aborts
	// its siblings; callers get one result per input line, in input order.
	BulkCreate(ctx context.Context, lines []*ServiceLine) []RowResult
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*ServiceLine, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*ServiceLine, int, error)
}
