package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrImmutableBillingLine is returned when a save would delete a line that
// has already been billed.
var ErrImmutableBillingLine = errors.New("encounter has billed service lines")

// EncounterInfo is the billing-relevant slice of an encounter and its
// enrollment.
type EncounterInfo struct {
	NoteType        string
	ProgramName     string
	ProgramCategory string
}

// EncounterSource resolves an encounter id to the context the generator
// needs. The concrete implementation lives in the composition root, where
// the encounter and program services are both in scope.
type EncounterSource interface {
	EncounterInfo(ctx context.Context, encounterID uuid.UUID) (*EncounterInfo, error)
}

// Generator owns billing service lines for encounters. Saving is a full
// replace: the caller sends the complete desired code list and the generator
// reconciles storage to match it.
type Generator struct {
	lines  ServiceLineRepository
	source EncounterSource
	log    zerolog.Logger
}

func NewGenerator(lines ServiceLineRepository, source EncounterSource, log zerolog.Logger) *Generator {
	return &Generator{lines: lines, source: source, log: log}
}

// CodesForNoteType exposes the static catalog for UI pickers.
func (g *Generator) CodesForNoteType(noteType string) []CodeConfig {
	return CodesForNoteType(noteType)
}

// Save replaces the encounter's service lines with one line per selected
// code. An empty selection is valid and clears the encounter's lines.
//
// If any existing line has been billed the save fails with
// ErrImmutableBillingLine and nothing is deleted. Rows that fail
// individually, such as codes absent from the catalog for this note type,
// are reported per row and do not abort their siblings.
func (g *Generator) Save(ctx context.Context, encounterID uuid.UUID, codes []string) (*SaveResult, error) {
	info, err := g.source.EncounterInfo(ctx, encounterID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encounter %s: %w", encounterID, err)
	}

	existing, err := g.lines.ListByEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	var billed []string
	for _, l := range existing {
		if l.Status == StatusBilled {
			billed = append(billed, l.Code)
		}
	}
	if len(billed) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrImmutableBillingLine, strings.Join(billed, ", "))
	}

	deleted, err := g.lines.DeleteByEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{EncounterID: encounterID, Deleted: deleted}
	if len(codes) == 0 {
		g.log.Info().
			Str("encounter_id", encounterID.String()).
			Int("deleted", deleted).
			Msg("service lines cleared")
		return result, nil
	}

	enrollment := EnrollmentContext{
		ProgramName:     info.ProgramName,
		ProgramCategory: info.ProgramCategory,
	}
	mod1, mod2 := DeriveModifiers(info.NoteType, enrollment)

	var toInsert []*ServiceLine
	for _, code := range codes {
		cfg, ok := catalogLookup(info.NoteType, code)
		if !ok {
			result.Results = append(result.Results, RowResult{
				Code:    code,
				Message: fmt.Sprintf("code %s is not billable for note type %s", code, info.NoteType),
			})
			continue
		}

		lineMod2 := mod2
		if caseManagementOnly[code] {
			lineMod2 = nil
		}

		toInsert = append(toInsert, &ServiceLine{
			ID:          uuid.New(),
			EncounterID: encounterID,
			Code:        code,
			Modifier1:   mod1,
			Modifier2:   lineMod2,
			Description: lineDescription(code, mod1, lineMod2, cfg.Description),
			Units:       1,
			Status:      StatusPending,
		})
	}

	if len(toInsert) > 0 {
		result.Results = append(result.Results, g.lines.BulkCreate(ctx, toInsert)...)
	}

	g.log.Info().
		Str("encounter_id", encounterID.String()).
		Int("deleted", deleted).
		Int("created", result.Created()).
		Int("requested", len(codes)).
		Msg("service lines regenerated")
	return result, nil
}

// Lines returns the encounter's current service lines.
func (g *Generator) Lines(ctx context.Context, encounterID uuid.UUID) ([]*ServiceLine, error) {
	return g.lines.ListByEncounter(ctx, encounterID)
}

func lineDescription(code, mod1 string, mod2 *string, catalogDesc string) string {
	var b strings.Builder
	b.WriteString(code)
	if mod1 != "" {
		b.WriteString(" " + mod1)
	}
	if mod2 != nil {
		b.WriteString(" " + *mod2)
	}
	b.WriteString(" - " + catalogDesc)
	return b.String()
}
