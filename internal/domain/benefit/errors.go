package benefit

import "errors"

var (
	// ErrInvalidInput covers malformed disbursement requests: no
	// participants, a non-positive quantity, a missing benefit.
	ErrInvalidInput = errors.New("invalid disbursement request")

	// ErrProgramResolution means no strategy produced a program for the
	// batch.
	ErrProgramResolution = errors.New("could not resolve program")

	// ErrNoEligibleParticipants means every participant in the batch lacked
	// an active enrollment.
	ErrNoEligibleParticipants = errors.New("no eligible participants")
)
