package billing

import "github.com/carebase/carebase/internal/domain/encounter"

// Static billing catalogs keyed by encounter note type. These mirror the
// payer contract; changing them is a code change, not configuration.
var codeCatalog = map[string][]CodeConfig{
	encounter.NoteTypeClinical: {
		{Code: "90791", Description: "Psychiatric diagnostic evaluation"},
		{Code: "90792", Description: "Psychiatric diagnostic evaluation with medical services"},
		{Code: "90832", Description: "Psychotherapy, 30 minutes"},
		{Code: "90834", Description: "Psychotherapy, 45 minutes"},
		{Code: "90837", Description: "Psychotherapy, 60 minutes"},
		{Code: "90839", Description: "Psychotherapy for crisis, first 60 minutes"},
		{Code: "90846", Description: "Family psychotherapy without patient present"},
		{Code: "90847", Description: "Family psychotherapy with patient present"},
		{Code: "90853", Description: "Group psychotherapy"},
		{Code: "96130", Description: "Psychological testing evaluation, first hour"},
		{Code: "96372", Description: "Therapeutic injection, subcutaneous or intramuscular"},
		{Code: "99404", Description: "Preventive medicine counseling, 60 minutes"},
		{Code: "H0004", Description: "Behavioral health counseling and therapy, per 15 minutes"},
	},
	encounter.NoteTypePeer: {
		{Code: "T1017", Description: "Targeted case management, per 15 minutes"},
		{Code: "H0043", Description: "Supported housing, per diem"},
		{Code: "H0044", Description: "Supported housing, per month"},
		{Code: "H2014", Description: "Skills training and development, per 15 minutes"},
	},
	encounter.NoteTypeCaseManagement: {
		{Code: "T1017", Description: "Targeted case management, per 15 minutes"},
		{Code: "H0043", Description: "Supported housing, per diem"},
		{Code: "H0044", Description: "Supported housing, per month"},
		{Code: "H2014", Description: "Skills training and development, per 15 minutes"},
	},
	encounter.NoteTypeCompAssess: {
		{Code: "H0031", Description: "Mental health assessment by non-physician"},
		{Code: "90791", Description: "Psychiatric diagnostic evaluation"},
	},
}

// caseManagementOnly lists codes that never carry a program modifier in the
// second position, regardless of the program's category.
var caseManagementOnly = map[string]bool{
	"T1017": true,
}

// CodesForNoteType returns the selectable codes for a note type. Unknown
// note types get an empty list, never an error.
func CodesForNoteType(noteType string) []CodeConfig {
	configs := codeCatalog[noteType]
	out := make([]CodeConfig, len(configs))
	copy(out, configs)
	return out
}

func catalogLookup(noteType, code string) (CodeConfig, bool) {
	for _, cfg := range codeCatalog[noteType] {
		if cfg.Code == code {
			return cfg, true
		}
	}
	return CodeConfig{}, false
}
