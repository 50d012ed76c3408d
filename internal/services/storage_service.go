package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/supabase"

	"github.com/google/uuid"
)

// StorageService covers user-facing object access and deletion.
type StorageService struct {
	rooms         RoomStore
	gens          GenerationStore
	objects       ObjectStore
	retention     *RetentionService
	inputsBucket  string
	outputsBucket string
	signedURLTTL  time.Duration
	now           func() time.Time
	log           *logger.Logger
}

func NewStorageService(
	rooms RoomStore,
	gens GenerationStore,
	objects ObjectStore,
	retention *RetentionService,
	inputsBucket, outputsBucket string,
	signedURLTTL time.Duration,
	log *logger.Logger,
) *StorageService {
	if log == nil {
		log = logger.Nop()
	}
	return &StorageService{
		rooms:         rooms,
		gens:          gens,
		objects:       objects,
		retention:     retention,
		inputsBucket:  inputsBucket,
		outputsBucket: outputsBucket,
		signedURLTTL:  signedURLTTL,
		now:           time.Now,
		log:           log,
	}
}

// SignedURL grants time-boxed read access to one of the caller's objects.
func (s *StorageService) SignedURL(ctx context.Context, callerID uuid.UUID, bucket, path string) (string, error) {
	if bucket != s.inputsBucket && bucket != s.outputsBucket {
		return "", ErrBucketNotAllowed
	}
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(path, callerID.String()+"/") {
		return "", ErrForbidden
	}
	return s.objects.CreateSignedURL(ctx, bucket, path, s.signedURLTTL)
}

// DeleteGeneration soft-deletes one generation and then tries to remove its
// object. Deleting twice is not an error.
func (s *StorageService) DeleteGeneration(ctx context.Context, callerID, generationID uuid.UUID) (alreadyDeleted bool, err error) {
	g, err := s.gens.GetGeneration(ctx, generationID, callerID)
	if errors.Is(err, supabase.ErrNotFound) {
		return false, ErrGenerationNotFound
	}
	if err != nil {
		return false, err
	}
	if g.DeletedAt.Valid {
		return true, nil
	}

	if _, err := s.gens.SoftDeleteGenerations(ctx, callerID, []uuid.UUID{g.ID}, s.now()); err != nil {
		return false, err
	}

	bestEffort(s.log, "generation object removal", func() error {
		_, err := s.retention.HardDelete(ctx, callerID, []models.Generation{*g})
		return err
	})
	return false, nil
}

// DeleteRoom soft-deletes the room and its generations, then tries to
// remove every output object of the room that is still stored. A room with
// a generation in flight is rejected with ErrAlreadyGenerating.
func (s *StorageService) DeleteRoom(ctx context.Context, callerID, roomID uuid.UUID) (alreadyDeleted bool, err error) {
	already, err := s.rooms.SoftDeleteRoom(ctx, roomID, callerID, s.now())
	if errors.Is(err, supabase.ErrNotFound) {
		return false, ErrRoomNotFound
	}
	if errors.Is(err, supabase.ErrRoomBusy) {
		return false, ErrAlreadyGenerating
	}
	if err != nil {
		return false, err
	}
	if already {
		return true, nil
	}

	n, err := s.gens.SoftDeleteRoomGenerations(ctx, roomID, callerID, s.now())
	if err != nil {
		return false, err
	}
	s.log.Info("room deleted", "room_id", roomID, "user_id", callerID, "generations", n)

	bestEffort(s.log, "room object removal", func() error {
		pending, err := s.gens.ListPendingHardDeletes(ctx, callerID, uuid.NullUUID{UUID: roomID, Valid: true})
		if err != nil {
			return err
		}
		_, err = s.retention.HardDelete(ctx, callerID, pending)
		return err
	})
	return false, nil
}
