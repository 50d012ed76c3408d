package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/openai"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound       = errors.New("room_not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrRoomIncomplete     = errors.New("room_incomplete")
	ErrAlreadyGenerating  = errors.New("already_generating")
	ErrLimitReached       = errors.New("limit_reached")
	ErrGenerationFailed   = errors.New("generation_failed")
	ErrProfileNotFound    = errors.New("profile_not_found")
	ErrGenerationNotFound = errors.New("generation_not_found")
	ErrInvalidPath        = errors.New("invalid_path")
	ErrBucketNotAllowed   = errors.New("bucket_not_allowed")
	ErrUnsupportedImage   = errors.New("unsupported_image")
	ErrImageTooLarge      = errors.New("image_too_large")
	ErrInvalidUsage       = errors.New("invalid_usage")
)

// RoomStore is the room half of the datastore. Every method but GetRoom is
// scoped by owner.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	UpdateSelections(ctx context.Context, roomID, userID uuid.UUID, sel models.Selections) (*models.Room, error)
	TransitionRoom(ctx context.Context, roomID, userID uuid.UUID, to lifecycle.GenerationStatus, reason string) (bool, error)
	SoftDeleteRoom(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (bool, error)
}

type GenerationStore interface {
	CreateGeneration(ctx context.Context, g *models.Generation) (*models.Generation, error)
	SetRecommendations(ctx context.Context, generationID, userID uuid.UUID, parsed json.RawMessage, raw string) error
	GetGeneration(ctx context.Context, generationID, userID uuid.UUID) (*models.Generation, error)
	ListActiveGenerations(ctx context.Context, userID uuid.UUID) ([]models.Generation, error)
	ListPendingHardDeletes(ctx context.Context, userID uuid.UUID, roomID uuid.NullUUID) ([]models.Generation, error)
	SoftDeleteGenerations(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error)
	SoftDeleteRoomGenerations(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (int64, error)
	MarkHardDeleted(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID, resetAt time.Time) error
	ResetUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error)
	IncrementUsage(ctx context.Context, userID uuid.UUID) (int, bool, error)
	RestoreUsage(ctx context.Context, userID uuid.UUID, expected, prev int) (bool, error)
	DecrementUsage(ctx context.Context, userID uuid.UUID) error
	SetUsage(ctx context.Context, userID uuid.UUID, used int) error
}

type ObjectStore interface {
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	Remove(ctx context.Context, bucket string, paths []string) error
	CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

type ImageEditor interface {
	EditImage(ctx context.Context, req openai.ImageEditRequest) ([]byte, error)
}

type TextCompleter interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}
