package items

import (
	"time"
	"unicode/utf8"

	"disposal-platform/internal/catalog"
)

// Input bounds. Name/note limits are counted in runes; quantity and
// facility age are clamped, not rejected.
const (
	MaxNameLength  = 200
	MinQuantity    = 1
	MaxQuantity    = 1_000_000
	MinFacilityAge = 0
	MaxFacilityAge = 100
	MaxNoteLength  = 500
)

// Item is one inventory record moving through the disposal workflow.
//
// Invariants:
// - Method is "" (stored NULL) until a disposal method is selected.
// - Cost, EnvScore, RiskScore, ExpectedBenefit and NetEffect are zero until
//   a method is selected, and are recomputed (never accumulated) whenever
//   the method changes.
// - Status transitions are guarded by the workflow service; rows are never
//   partially updated thanks to per-operation transactions.
type Item struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Quantity    int    `json:"quantity" db:"quantity"`
	FacilityAge int    `json:"facility_age" db:"facility_age"`

	// Method is empty until selected.
	Method catalog.Method `json:"disposal_method,omitempty" db:"disposal_method"`

	Cost            int64 `json:"cost" db:"cost"`
	EnvScore        int   `json:"env_score" db:"env_score"`
	RiskScore       int   `json:"risk_score" db:"risk_score"`
	ExpectedBenefit int64 `json:"expected_benefit" db:"expected_benefit"`
	NetEffect       int64 `json:"net_effect" db:"net_effect"`

	// MitigationNote justifies approving a high-risk disposal.
	MitigationNote string `json:"mitigation_note,omitempty" db:"mitigation_note"`

	Status Status `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExecuted:
		return true
	default:
		return false
	}
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	NameContains string
	Status       Status
	Method       catalog.Method
}

// ClampQuantity forces a quantity into 1..MaxQuantity.
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// ClampFacilityAge forces a facility age into 0..MaxFacilityAge.
func ClampFacilityAge(a int) int {
	if a < MinFacilityAge {
		return MinFacilityAge
	}
	if a > MaxFacilityAge {
		return MaxFacilityAge
	}
	return a
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
