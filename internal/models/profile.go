package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// DefaultSavedGenerationLimit applies when a profile has no retention cap set.
const DefaultSavedGenerationLimit = 5

// Profile is the per-user plan and usage record.
type Profile struct {
	ID                     uuid.UUID
	Plan                   Plan
	MonthlyGenerationsUsed int
	MonthlyGenerationLimit sql.NullInt64 // NULL = unlimited
	UsageResetAt           time.Time
	SavedGenerationLimit   sql.NullInt64
}

// PlanState is the quota view after any lazy reset has been applied.
type PlanState struct {
	Plan    Plan      `json:"plan"`
	Used    int       `json:"used"`
	Limit   *int      `json:"limit"`
	ResetAt time.Time `json:"reset_at"`
}

// Allows reports whether one more generation may be admitted.
func (s PlanState) Allows() bool {
	return s.Limit == nil || s.Used < *s.Limit
}

// Watermarked is fixed at generation time from the plan tier.
func (p Plan) Watermarked() bool {
	return p != PlanPro
}
