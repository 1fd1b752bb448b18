package billing

import (
	"strings"

	"github.com/carebase/carebase/internal/domain/encounter"
	"github.com/carebase/carebase/internal/domain/program"
)

const (
	ModifierPeerDelivered = "U2"
	ModifierPreTenancy    = "UA"
	ModifierTenancySust   = "UB"
)

// EnrollmentContext carries the slice of a program enrollment that modifier
// derivation needs.
type EnrollmentContext struct {
	ProgramName     string
	ProgramCategory string
}

// DeriveModifiers computes the modifier pair for a service line. It is total:
// every (noteType, enrollment) combination produces a result, and unknown
// inputs degrade to no modifiers rather than an error.
//
// Peer and case-management notes bill with U2 in the first position. The
// second position reflects the program: UA for pre-tenancy programs, UB for
// tenancy-sustaining ones, empty otherwise. Clinical and comprehensive
// assessment notes carry no modifiers.
func DeriveModifiers(noteType string, enrollment EnrollmentContext) (string, *string) {
	switch noteType {
	case encounter.NoteTypePeer, encounter.NoteTypeCaseManagement:
	default:
		return "", nil
	}

	var mod2 *string
	switch categoryFor(enrollment) {
	case program.CategoryPreTenancy:
		m := ModifierPreTenancy
		mod2 = &m
	case program.CategoryTenancySustaining:
		m := ModifierTenancySust
		mod2 = &m
	}
	return ModifierPeerDelivered, mod2
}

// categoryFor prefers the program's explicit category and falls back to
// classifying the program name. Legacy imports carry names only.
func categoryFor(enrollment EnrollmentContext) string {
	if enrollment.ProgramCategory != "" && enrollment.ProgramCategory != program.CategoryOther {
		return enrollment.ProgramCategory
	}
	name := strings.ToLower(enrollment.ProgramName)
	switch {
	case strings.Contains(name, "outreach"), strings.Contains(name, "drop in"), strings.Contains(name, "drop-in"):
		return program.CategoryPreTenancy
	case strings.Contains(name, "housing"), strings.Contains(name, "residence"), strings.Contains(name, "residential"):
		return program.CategoryTenancySustaining
	}
	if enrollment.ProgramCategory != "" {
		return enrollment.ProgramCategory
	}
	return program.CategoryOther
}
