package handlers

import (
	"context"

	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/services"

	"github.com/google/uuid"
)

type RoomManager interface {
	CreateDraft(ctx context.Context, callerID uuid.UUID, image []byte, roomType *models.RoomType) (*models.Room, error)
	UpdateSelections(ctx context.Context, roomID, callerID uuid.UUID, sel models.Selections) (*models.Room, error)
	Status(ctx context.Context, roomID, callerID uuid.UUID) (*models.Room, error)
}

type Generator interface {
	Start(ctx context.Context, roomID, callerID uuid.UUID) (*services.GenerationResult, error)
}

type ObjectManager interface {
	SignedURL(ctx context.Context, callerID uuid.UUID, bucket, path string) (string, error)
	DeleteGeneration(ctx context.Context, callerID, generationID uuid.UUID) (bool, error)
	DeleteRoom(ctx context.Context, callerID, roomID uuid.UUID) (bool, error)
}

type GenerationLister interface {
	ListActiveGenerations(ctx context.Context, userID uuid.UUID) ([]models.Generation, error)
}

type UsageReader interface {
	GetState(ctx context.Context, userID uuid.UUID) (models.PlanState, error)
}

type RetentionRunner interface {
	Prune(ctx context.Context, userID uuid.UUID) (services.PruneResult, error)
	SavedLimit(ctx context.Context, userID uuid.UUID) (int, error)
}

// Pinger reports datastore reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
