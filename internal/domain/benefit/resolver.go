package benefit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EnrollmentChecker reports a participant's active enrollment in a program.
// The concrete implementation wraps the program service and is wired in the
// composition root.
type EnrollmentChecker interface {
	ActiveEnrollment(ctx context.Context, participantID, programID uuid.UUID) (uuid.UUID, bool, error)
}

// Resolver answers "who is ready to receive this benefit" and repairs
// missing assignments on request. It never creates assignments implicitly;
// staff confirm remediation first.
type Resolver struct {
	benefits    BenefitRepository
	assignments AssignmentRepository
	enrollments EnrollmentChecker
	log         zerolog.Logger
}

func NewResolver(benefits BenefitRepository, assignments AssignmentRepository, enrollments EnrollmentChecker, log zerolog.Logger) *Resolver {
	return &Resolver{benefits: benefits, assignments: assignments, enrollments: enrollments, log: log}
}

// Check classifies each participant as not enrolled, missing an assignment,
// or ready. It reads only; nothing is created.
func (r *Resolver) Check(ctx context.Context, programID, benefitID uuid.UUID, participantIDs []uuid.UUID) (*CheckResult, error) {
	b, err := r.benefits.GetByID(ctx, benefitID)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		BenefitID:     b.ID,
		BenefitName:   b.Name,
		enrollmentIDs: make(map[uuid.UUID]uuid.UUID),
	}

	for _, pid := range participantIDs {
		enrollmentID, enrolled, err := r.enrollments.ActiveEnrollment(ctx, pid, programID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment for %s: %w", pid, err)
		}
		if !enrolled {
			result.NotEnrolled = append(result.NotEnrolled, pid)
			continue
		}
		result.enrollmentIDs[pid] = enrollmentID

		assigned, err := r.assignments.Exists(ctx, programID, pid, benefitID)
		if err != nil {
			return nil, fmt.Errorf("failed to check assignment for %s: %w", pid, err)
		}
		if !assigned {
			result.MissingAssignment = append(result.MissingAssignment, pid)
		}
	}

	result.AllReady = len(result.NotEnrolled) == 0 && len(result.MissingAssignment) == 0
	return result, nil
}

// RemediationResult summarizes a CreateMissing pass.
type RemediationResult struct {
	Created        int      `json:"created"`
	AlreadyExisted int      `json:"already_existed"`
	Warnings       []string `json:"warnings,omitempty"`
}

// CreateMissing writes an assignment for every enrolled participant that
// lacks one. Participants without an active enrollment are skipped with a
// warning, and one failed row never blocks the rest. Races with concurrent
// creates resolve through the storage uniqueness guarantee.
func (r *Resolver) CreateMissing(ctx context.Context, programID, benefitID uuid.UUID, participantIDs []uuid.UUID) (*RemediationResult, error) {
	if _, err := r.benefits.GetByID(ctx, benefitID); err != nil {
		return nil, err
	}

	result := &RemediationResult{}
	for _, pid := range participantIDs {
		_, enrolled, err := r.enrollments.ActiveEnrollment(ctx, pid, programID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment for %s: %w", pid, err)
		}
		if !enrolled {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("participant %s has no active enrollment in program %s", pid, programID))
			continue
		}

		created, err := r.assignments.CreateIfAbsent(ctx, &Assignment{
			ID:            uuid.New(),
			ProgramID:     programID,
			ParticipantID: pid,
			BenefitID:     benefitID,
		})
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to assign benefit to participant %s: %v", pid, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.AlreadyExisted++
		}
	}

	r.log.Info().
		Str("benefit_id", benefitID.String()).
		Str("program_id", programID.String()).
		Int("created", result.Created).
		Int("already_existed", result.AlreadyExisted).
		Int("skipped", len(result.Warnings)).
		Msg("benefit assignments remediated")
	return result, nil
}
