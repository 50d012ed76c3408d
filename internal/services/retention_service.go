package services

import (
	"context"
	"errors"
	"time"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/supabase"

	"github.com/google/uuid"
)

type PruneResult struct {
	Pruned      int
	HardDeleted int
}

// RetentionService keeps each user's saved generations under their cap.
type RetentionService struct {
	gens          GenerationStore
	profiles      ProfileStore
	objects       ObjectStore
	outputsBucket string
	hardDelete    bool
	now           func() time.Time
	log           *logger.Logger
}

func NewRetentionService(
	gens GenerationStore,
	profiles ProfileStore,
	objects ObjectStore,
	outputsBucket string,
	hardDelete bool,
	log *logger.Logger,
) *RetentionService {
	if log == nil {
		log = logger.Nop()
	}
	return &RetentionService{
		gens:          gens,
		profiles:      profiles,
		objects:       objects,
		outputsBucket: outputsBucket,
		hardDelete:    hardDelete,
		now:           time.Now,
		log:           log,
	}
}

// SetClock replaces the time source.
func (s *RetentionService) SetClock(now func() time.Time) { s.now = now }

// SavedLimit returns the user's retention cap, defaulting when unset.
func (s *RetentionService) SavedLimit(ctx context.Context, userID uuid.UUID) (int, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, supabase.ErrNotFound) {
		return models.DefaultSavedGenerationLimit, nil
	}
	if err != nil {
		return 0, err
	}
	return savedLimitOf(p), nil
}

func savedLimitOf(p *models.Profile) int {
	if !p.SavedGenerationLimit.Valid {
		return models.DefaultSavedGenerationLimit
	}
	if p.SavedGenerationLimit.Int64 < 0 {
		return 0
	}
	return int(p.SavedGenerationLimit.Int64)
}

// Prune soft-deletes every live generation past the newest `limit`, and
// with hard delete on, removes their stored objects.
func (s *RetentionService) Prune(ctx context.Context, userID uuid.UUID) (PruneResult, error) {
	var res PruneResult

	limit, err := s.SavedLimit(ctx, userID)
	if err != nil {
		return res, err
	}
	gens, err := s.gens.ListActiveGenerations(ctx, userID)
	if err != nil {
		return res, err
	}
	if len(gens) <= limit {
		return res, nil
	}

	excess := gens[limit:]
	ids := make([]uuid.UUID, len(excess))
	for i, g := range excess {
		ids[i] = g.ID
	}
	n, err := s.gens.SoftDeleteGenerations(ctx, userID, ids, s.now())
	if err != nil {
		return res, err
	}
	res.Pruned = int(n)
	s.log.Info("pruned generations", "user_id", userID, "pruned", n, "limit", limit)

	if !s.hardDelete {
		return res, nil
	}
	res.HardDeleted, err = s.HardDelete(ctx, userID, excess)
	return res, err
}

// SweepHardDeletes retries object removal for soft-deleted rows whose
// object is still stored.
func (s *RetentionService) SweepHardDeletes(ctx context.Context, userID uuid.UUID) (int, error) {
	pending, err := s.gens.ListPendingHardDeletes(ctx, userID, uuid.NullUUID{})
	if err != nil {
		return 0, err
	}
	return s.HardDelete(ctx, userID, pending)
}

// HardDelete removes each generation's object one at a time and records
// hard_deleted_at only for the ones actually removed. Individual removal
// failures are logged and skipped.
func (s *RetentionService) HardDelete(ctx context.Context, userID uuid.UUID, gens []models.Generation) (int, error) {
	var removed []uuid.UUID
	for _, g := range gens {
		if g.HardDeletedAt.Valid || g.OutputImagePath == "" {
			continue
		}
		if err := s.objects.Remove(ctx, s.outputsBucket, []string{g.OutputImagePath}); err != nil {
			s.log.Warn("object removal failed", "user_id", userID, "generation_id", g.ID, "error", err)
			continue
		}
		removed = append(removed, g.ID)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := s.gens.MarkHardDeleted(ctx, userID, removed, s.now()); err != nil {
		return 0, err
	}
	return len(removed), nil
}
