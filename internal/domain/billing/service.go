package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusTransitions lists allowed status moves. Billed is terminal.
var statusTransitions = map[string][]string{
	StatusPending:  {StatusBilled, StatusRejected},
	StatusRejected: {StatusBilled},
	StatusBilled:   {},
}

// Service handles the claim lifecycle of individual service lines after
// generation.
type Service struct {
	repo ServiceLineRepository
	log  zerolog.Logger
}

func NewService(repo ServiceLineRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) GetLine(ctx context.Context, id uuid.UUID) (*ServiceLine, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkBilled transitions a line to billed, after which it can no longer be
// regenerated or deleted.
func (s *Service) MarkBilled(ctx context.Context, id uuid.UUID) (*ServiceLine, error) {
	return s.transition(ctx, id, StatusBilled)
}

// MarkRejected flags a line the payer bounced so staff can rework it.
func (s *Service) MarkRejected(ctx context.Context, id uuid.UUID) (*ServiceLine, error) {
	return s.transition(ctx, id, StatusRejected)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, newStatus string) (*ServiceLine, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == newStatus {
		return l, nil
	}

	allowed := false
	for _, next := range statusTransitions[l.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition service line from %s to %s", l.Status, newStatus)
	}

	out, err := s.repo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("service_line_id", id.String()).
		Str("code", out.Code).
		Str("status", newStatus).
		Msg("service line status changed")
	return out, nil
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*ServiceLine, int, error) {
	if status != StatusPending && status != StatusBilled && status != StatusRejected {
		return nil, 0, fmt.Errorf("invalid service line status: %s", status)
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}
