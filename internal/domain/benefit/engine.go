package benefit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebase/carebase/internal/domain/encounter"
)

// ProgramDirectory resolves a program reference, which may be a UUID or a
// program name.
type ProgramDirectory interface {
	ResolveProgramID(ctx context.Context, nameOrID string) (uuid.UUID, error)
}

// EncounterCreator records a minimal encounter for a clinical disbursement
// that arrived without one.
type EncounterCreator interface {
	CreateStub(ctx context.Context, participantID, enrollmentID uuid.UUID, noteType string, serviceDate time.Time) (uuid.UUID, error)
}

// ServiceLineWriter regenerates an encounter's billing service lines. The
// billing generator satisfies this through an adapter in the composition
// root.
type ServiceLineWriter interface {
	WriteLines(ctx context.Context, encounterID uuid.UUID, codes []string) error
}

// Engine executes disbursement batches: one benefit to many participants.
// Each participant row stands alone; there is no cross-row transaction and
// a failed row never rolls back its siblings.
type Engine struct {
	resolver      *Resolver
	benefits      BenefitRepository
	disbursements DisbursementRepository
	programs      ProgramDirectory
	encounters    EncounterCreator
	lines         ServiceLineWriter
	log           zerolog.Logger
}

func NewEngine(
	resolver *Resolver,
	benefits BenefitRepository,
	disbursements DisbursementRepository,
	programs ProgramDirectory,
	encounters EncounterCreator,
	lines ServiceLineWriter,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		resolver:      resolver,
		benefits:      benefits,
		disbursements: disbursements,
		programs:      programs,
		encounters:    encounters,
		lines:         lines,
		log:           log,
	}
}

// Disburse runs one batch. Participants without an active enrollment are
// skipped with a warning. If any enrolled participant lacks a benefit
// assignment the batch stops before writing anything and reports
// RemediationRequired; the caller confirms and retries through
// ConfirmAndRetryWithAssignments.
func (e *Engine) Disburse(ctx context.Context, req *DisburseRequest) (*DisburseOutcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	b, err := e.benefits.GetByID(ctx, req.BenefitID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	programID, err := e.resolveProgram(ctx, req, b)
	if err != nil {
		return nil, err
	}

	check, err := e.resolver.Check(ctx, programID, b.ID, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	outcome := &DisburseOutcome{}
	for _, pid := range check.NotEnrolled {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("participant %s skipped: no active enrollment in program %s", pid, programID))
	}

	var eligible []uuid.UUID
	for _, pid := range req.ParticipantIDs {
		if _, ok := check.EnrollmentID(pid); ok {
			eligible = append(eligible, pid)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: benefit %s, program %s", ErrNoEligibleParticipants, b.ID, programID)
	}

	if len(check.MissingAssignment) > 0 {
		outcome.RemediationRequired = true
		outcome.MissingAssignment = check.MissingAssignment
		e.log.Info().
			Str("benefit_id", b.ID.String()).
			Int("missing", len(check.MissingAssignment)).
			Msg("disbursement needs assignment remediation")
		return outcome, nil
	}

	ds := make([]*Disbursement, 0, len(eligible))
	for _, pid := range eligible {
		enrollmentID, _ := check.EnrollmentID(pid)
		ds = append(ds, &Disbursement{
			ID:                  uuid.New(),
			BenefitID:           b.ID,
			ParticipantID:       pid,
			ProgramEnrollmentID: enrollmentID,
			ServiceDate:         req.ServiceDate,
			Quantity:            req.Quantity,
			Note:                req.Note,
			EncounterID:         req.EncounterID,
		})
	}

	outcome.Results = e.disbursements.BulkCreate(ctx, ds)

	if b.Clinical {
		e.attachServiceLines(ctx, req, b, check, outcome)
	}

	e.log.Info().
		Str("benefit_id", b.ID.String()).
		Str("program_id", programID.String()).
		Int("requested", len(req.ParticipantIDs)).
		Int("succeeded", outcome.Succeeded()).
		Int("warnings", len(outcome.Warnings)).
		Msg("disbursement batch completed")
	return outcome, nil
}

// ConfirmAndRetryWithAssignments creates the missing assignments for the
// batch and runs it again. Meant to be called after Disburse reported
// RemediationRequired and staff confirmed.
func (e *Engine) ConfirmAndRetryWithAssignments(ctx context.Context, req *DisburseRequest) (*DisburseOutcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	b, err := e.benefits.GetByID(ctx, req.BenefitID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	programID, err := e.resolveProgram(ctx, req, b)
	if err != nil {
		return nil, err
	}

	remediation, err := e.resolver.CreateMissing(ctx, programID, b.ID, req.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	outcome, err := e.Disburse(ctx, req)
	if err != nil {
		return nil, err
	}
	outcome.Warnings = append(remediation.Warnings, outcome.Warnings...)
	return outcome, nil
}

func validateRequest(req *DisburseRequest) error {
	if req.BenefitID == uuid.Nil {
		return fmt.Errorf("%w: benefit id is required", ErrInvalidInput)
	}
	if len(req.ParticipantIDs) == 0 {
		return fmt.Errorf("%w: at least one participant is required", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if req.ServiceDate.IsZero() {
		return fmt.Errorf("%w: service date is required", ErrInvalidInput)
	}
	return nil
}

// resolveProgram tries each strategy in order and takes the first that
// succeeds: the caller's explicit program reference, then the benefit's
// owning program.
func (e *Engine) resolveProgram(ctx context.Context, req *DisburseRequest, b *Benefit) (uuid.UUID, error) {
	var attempts []string

	if req.Program != "" {
		id, err := e.programs.ResolveProgramID(ctx, req.Program)
		if err == nil {
			return id, nil
		}
		attempts = append(attempts, fmt.Sprintf("program reference %q: %v", req.Program, err))
	}

	if b.ProgramID != uuid.Nil {
		return b.ProgramID, nil
	}
	attempts = append(attempts, fmt.Sprintf("benefit %s has no owning program", b.ID))

	return uuid.Nil, fmt.Errorf("%w: %v", ErrProgramResolution, attempts)
}

// attachServiceLines links clinical disbursements to an encounter and its
// billing service line. Failures here degrade to warnings; the disbursement
// rows already stand.
func (e *Engine) attachServiceLines(ctx context.Context, req *DisburseRequest, b *Benefit, check *CheckResult, outcome *DisburseOutcome) {
	if e.encounters == nil || e.lines == nil {
		return
	}
	for _, r := range outcome.Results {
		if !r.Success {
			continue
		}

		encounterID := uuid.Nil
		if req.EncounterID != nil {
			encounterID = *req.EncounterID
		} else {
			enrollmentID, _ := check.EnrollmentID(r.ParticipantID)
			id, err := e.encounters.CreateStub(ctx, r.ParticipantID, enrollmentID, encounter.NoteTypeClinical, req.ServiceDate)
			if err != nil {
				outcome.Warnings = append(outcome.Warnings,
					fmt.Sprintf("failed to create encounter for participant %s: %v", r.ParticipantID, err))
				continue
			}
			encounterID = id
		}

		if b.BillingCode == nil {
			continue
		}
		if err := e.lines.WriteLines(ctx, encounterID, []string{*b.BillingCode}); err != nil {
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("failed to write service line for participant %s: %v", r.ParticipantID, err))
		}
	}
}
