package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/supabase"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadBytes caps a room photo.
const MaxUploadBytes = 10 << 20

var uploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

type RoomService struct {
	rooms        RoomStore
	objects      ObjectStore
	inputsBucket string
	log          *logger.Logger
}

func NewRoomService(rooms RoomStore, objects ObjectStore, inputsBucket string, log *logger.Logger) *RoomService {
	if log == nil {
		log = logger.Nop()
	}
	return &RoomService{rooms: rooms, objects: objects, inputsBucket: inputsBucket, log: log}
}

func loadOwnedRoom(ctx context.Context, rooms RoomStore, roomID, callerID uuid.UUID) (*models.Room, error) {
	room, err := rooms.GetRoom(ctx, roomID)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if room.UserID != callerID {
		return nil, ErrForbidden
	}
	return room, nil
}

// CreateDraft stores the photo under the caller's prefix and creates a
// draft room with default selections.
func (s *RoomService) CreateDraft(ctx context.Context, callerID uuid.UUID, image []byte, roomType *models.RoomType) (*models.Room, error) {
	if len(image) == 0 {
		return nil, ErrUnsupportedImage
	}
	if len(image) > MaxUploadBytes {
		return nil, ErrImageTooLarge
	}
	mt := mimetype.Detect(image)
	ext, ok := uploadTypes[mt.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	path := fmt.Sprintf("%s/%s%s", callerID, uuid.New(), ext)
	if err := s.objects.Upload(ctx, s.inputsBucket, path, image, mt.String()); err != nil {
		return nil, err
	}

	rt := models.DefaultRoomType
	if roomType != nil {
		rt = *roomType
	}
	room, err := s.rooms.CreateRoom(ctx, &models.Room{
		ID:             uuid.New(),
		UserID:         callerID,
		RoomType:       rt,
		Goal:           models.DefaultGoal,
		StyleKey:       models.DefaultStyleKey,
		BudgetTier:     models.DefaultBudgetTier,
		InputImagePath: sql.NullString{String: path, Valid: true},
		Status:         lifecycle.RoomDraft,
	})
	if err != nil {
		bestEffort(s.log, "orphan cleanup", func() error {
			return s.objects.Remove(ctx, s.inputsBucket, []string{path})
		})
		return nil, err
	}
	s.log.Info("draft room created", "room_id", room.ID, "user_id", callerID)
	return room, nil
}

// UpdateSelections is rejected while a generation is in flight.
func (s *RoomService) UpdateSelections(ctx context.Context, roomID, callerID uuid.UUID, sel models.Selections) (*models.Room, error) {
	room, err := loadOwnedRoom(ctx, s.rooms, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if lifecycle.InFlight(room.Status, room.GenerationStatus) {
		return nil, ErrAlreadyGenerating
	}
	updated, err := s.rooms.UpdateSelections(ctx, roomID, callerID, sel)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrAlreadyGenerating
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Status is the poller's read of a room.
func (s *RoomService) Status(ctx context.Context, roomID, callerID uuid.UUID) (*models.Room, error) {
	return loadOwnedRoom(ctx, s.rooms, roomID, callerID)
}
