package models

import (
	"time"

	"cozylogic-backend/internal/lifecycle"
)

type RoomResponse struct {
	RoomID         string    `json:"room_id"`
	RoomType       string    `json:"room_type"`
	Goal           string    `json:"goal"`
	StyleKey       string    `json:"style_key"`
	BudgetTier     string    `json:"budget_tier"`
	InputImagePath string    `json:"input_image_path,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewRoomResponse(r *Room) RoomResponse {
	return RoomResponse{
		RoomID:         r.ID.String(),
		RoomType:       string(r.RoomType),
		Goal:           string(r.Goal),
		StyleKey:       string(r.StyleKey),
		BudgetTier:     string(r.BudgetTier),
		InputImagePath: r.InputImagePath.String,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type GenerateResponse struct {
	OK              bool   `json:"ok"`
	RoomID          string `json:"room_id"`
	GenerationID    string `json:"generation_id"`
	OutputImagePath string `json:"output_image_path"`
}

type StatusResponse struct {
	RoomID           string              `json:"room_id"`
	Status           string              `json:"status"`
	GenerationStatus *string             `json:"generation_status"`
	GenerationError  *string             `json:"generation_error"`
	Step             lifecycle.StepLabel `json:"step"`
	Terminal         bool                `json:"terminal"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type RecommendationView struct {
	RecommendationItem
	Links []StoreLink `json:"links"`
}

type GenerationResponse struct {
	ID                 string               `json:"id"`
	RoomID             string               `json:"room_id"`
	PromptVersion      string               `json:"prompt_version"`
	OutputImagePath    string               `json:"output_image_path"`
	Watermarked        bool                 `json:"watermarked"`
	Explanation        string               `json:"explanation"`
	Recommendations    []RecommendationView `json:"recommendations,omitempty"`
	RecommendationsRaw string               `json:"recommendations_raw,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
}

type DeleteResponse struct {
	OK             bool `json:"ok"`
	AlreadyDeleted bool `json:"already_deleted,omitempty"`
}

type SignedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

type AccountResponse struct {
	Plan                 string    `json:"plan"`
	Used                 int       `json:"used"`
	Limit                *int      `json:"limit"`
	ResetAt              time.Time `json:"reset_at"`
	SavedGenerationLimit int       `json:"saved_generation_limit"`
}

type PruneResponse struct {
	Pruned      int `json:"pruned"`
	HardDeleted int `json:"hard_deleted"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
