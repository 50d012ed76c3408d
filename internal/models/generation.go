package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Generation struct {
	ID                 uuid.UUID
	RoomID             uuid.UUID
	UserID             uuid.UUID
	Provider           string
	PromptVersion      string
	OutputImagePath    string
	Watermarked        bool
	Explanation        string
	Recommendations    json.RawMessage
	RecommendationsRaw sql.NullString
	CreatedAt          time.Time
	DeletedAt          sql.NullTime
	HardDeletedAt      sql.NullTime
}

// RecommendationItem is one product suggestion returned by the recommendation pass.
type RecommendationItem struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	Why        string `json:"why"`
	Placement  string `json:"placement,omitempty"`
	SizeHint   string `json:"size_hint,omitempty"`
	FinishHint string `json:"finish_hint,omitempty"`
}

type Recommendations struct {
	Items []RecommendationItem `json:"items"`
}

type StoreLink struct {
	Store string `json:"store"`
	URL   string `json:"url"`
}
