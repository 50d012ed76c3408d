package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/supabase"

	"github.com/google/uuid"
)

// Ledger owns the per-user monthly quota.
type Ledger struct {
	profiles ProfileStore
	bypass   bool
	now      func() time.Time
	log      *logger.Logger
}

type LedgerOption func(*Ledger)

// WithBypass disables quota checks and counting. The caller is responsible
// for never enabling it in production.
func WithBypass(on bool) LedgerOption {
	return func(l *Ledger) { l.bypass = on }
}

func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(profiles ProfileStore, log *logger.Logger, opts ...LedgerOption) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	l := &Ledger{profiles: profiles, now: time.Now, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admission records one admitted generation so it can be undone.
type Admission struct {
	UserID   uuid.UUID
	Plan     models.Plan
	Previous int
	Used     int
	Bypassed bool
}

// StartOfNextMonthUTC returns the first instant of the calendar month after t.
func StartOfNextMonthUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// Profile returns the user's profile after any due reset, creating a
// default one on first use.
func (l *Ledger) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := l.profiles.GetProfile(ctx, userID)
	if errors.Is(err, supabase.ErrNotFound) {
		if err := l.profiles.EnsureProfile(ctx, userID, StartOfNextMonthUTC(l.now())); err != nil {
			return nil, err
		}
		p, err = l.profiles.GetProfile(ctx, userID)
	}
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	now := l.now()
	if now.Before(p.UsageResetAt) {
		return p, nil
	}

	next := StartOfNextMonthUTC(now)
	reset, err := l.profiles.ResetUsage(ctx, userID, p.UsageResetAt, next)
	if err != nil {
		return nil, err
	}
	if reset {
		l.log.Info("monthly usage reset", "user_id", userID, "reset_at", next)
		p.MonthlyGenerationsUsed = 0
		p.UsageResetAt = next
		return p, nil
	}

	// Another request reset it first.
	return l.profiles.GetProfile(ctx, userID)
}

// GetState returns {plan, used, limit, resetAt}, applying the lazy reset.
func (l *Ledger) GetState(ctx context.Context, userID uuid.UUID) (models.PlanState, error) {
	p, err := l.Profile(ctx, userID)
	if err != nil {
		return models.PlanState{}, err
	}
	return stateOf(p), nil
}

func stateOf(p *models.Profile) models.PlanState {
	s := models.PlanState{Plan: p.Plan, Used: p.MonthlyGenerationsUsed, ResetAt: p.UsageResetAt}
	if p.MonthlyGenerationLimit.Valid {
		limit := int(p.MonthlyGenerationLimit.Int64)
		s.Limit = &limit
	}
	return s
}

// SetUsage writes an absolute counter value.
func (l *Ledger) SetUsage(ctx context.Context, userID uuid.UUID, used int) error {
	if used < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUsage, used)
	}
	err := l.profiles.SetUsage(ctx, userID, used)
	if errors.Is(err, supabase.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}

// Admit checks and consumes one unit of quota in a single conditional
// increment. It returns ErrLimitReached when the user has none left.
func (l *Ledger) Admit(ctx context.Context, userID uuid.UUID) (Admission, error) {
	state, err := l.GetState(ctx, userID)
	if err != nil {
		return Admission{}, err
	}
	if l.bypass {
		return Admission{UserID: userID, Plan: state.Plan, Previous: state.Used, Used: state.Used, Bypassed: true}, nil
	}
	if !state.Allows() {
		return Admission{}, ErrLimitReached
	}

	used, ok, err := l.profiles.IncrementUsage(ctx, userID)
	if err != nil {
		return Admission{}, err
	}
	if !ok {
		return Admission{}, ErrLimitReached
	}
	return Admission{UserID: userID, Plan: state.Plan, Previous: used - 1, Used: used}, nil
}

// Rollback returns the unit taken by a. It restores the previous absolute
// value when nothing else moved the counter, and decrements otherwise.
func (l *Ledger) Rollback(ctx context.Context, a Admission) error {
	if a.Bypassed {
		return nil
	}
	restored, err := l.profiles.RestoreUsage(ctx, a.UserID, a.Used, a.Previous)
	if err != nil {
		return err
	}
	if restored {
		return nil
	}
	l.log.Warn("usage moved during generation, decrementing instead of restoring",
		"user_id", a.UserID, "expected", a.Used, "previous", a.Previous)
	return l.profiles.DecrementUsage(ctx, a.UserID)
}
