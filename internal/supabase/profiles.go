package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cozylogic-backend/internal/models"

	"github.com/google/uuid"
)

const profileColumns = `id, plan, monthly_generations_used, monthly_generation_limit, usage_reset_at, saved_generation_limit`

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1
	`, userID).Scan(
		&p.ID, &p.Plan, &p.MonthlyGenerationsUsed, &p.MonthlyGenerationLimit, &p.UsageResetAt, &p.SavedGenerationLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", notFound(err))
	}
	return &p, nil
}

// EnsureProfile creates a free-plan profile with column defaults when the
// user has none yet.
func (d *DatabaseClient) EnsureProfile(ctx context.Context, userID uuid.UUID, resetAt time.Time) error {
	if _, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, usage_reset_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, userID, resetAt); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// ResetUsage zeroes the counter and moves the reset boundary to next, but
// only if usage_reset_at still equals observed. It reports whether this
// call performed the reset.
func (d *DatabaseClient) ResetUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE profiles
		SET monthly_generations_used = 0, usage_reset_at = $3, updated_at = NOW()
		WHERE id = $1 AND usage_reset_at = $2
	`, userID, observed, next)
	if err != nil {
		return false, fmt.Errorf("failed to reset usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// IncrementUsage adds one to the counter if the limit allows it. ok is
// false when the user is at or over the limit.
func (d *DatabaseClient) IncrementUsage(ctx context.Context, userID uuid.UUID) (used int, ok bool, err error) {
	err = d.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET monthly_generations_used = monthly_generations_used + 1, updated_at = NOW()
		WHERE id = $1
			AND (monthly_generation_limit IS NULL OR monthly_generations_used < monthly_generation_limit)
		RETURNING monthly_generations_used
	`, userID).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment usage: %w", err)
	}
	return used, true, nil
}

// RestoreUsage writes prev back only while the counter still reads
// expected, so a concurrent admission is never erased.
func (d *DatabaseClient) RestoreUsage(ctx context.Context, userID uuid.UUID, expected, prev int) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE profiles
		SET monthly_generations_used = $3, updated_at = NOW()
		WHERE id = $1 AND monthly_generations_used = $2
	`, userID, expected, prev)
	if err != nil {
		return false, fmt.Errorf("failed to restore usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// DecrementUsage subtracts one, never going below zero.
func (d *DatabaseClient) DecrementUsage(ctx context.Context, userID uuid.UUID) error {
	if _, err := d.db.ExecContext(ctx, `
		UPDATE profiles
		SET monthly_generations_used = GREATEST(monthly_generations_used - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, userID); err != nil {
		return fmt.Errorf("failed to decrement usage: %w", err)
	}
	return nil
}

// SetUsage is an unconditional absolute write.
func (d *DatabaseClient) SetUsage(ctx context.Context, userID uuid.UUID, used int) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE profiles SET monthly_generations_used = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, used)
	if err != nil {
		return fmt.Errorf("failed to set usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to set usage: %w", ErrNotFound)
	}
	return nil
}
