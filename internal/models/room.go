package models

import (
	"database/sql"
	"time"

	"cozylogic-backend/internal/lifecycle"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomLivingRoom RoomType = "living_room"
	RoomBedroom    RoomType = "bedroom"
	RoomDiningRoom RoomType = "dining_room"
	RoomOffice     RoomType = "office"
	RoomSmallSpace RoomType = "small_space"
	RoomOther      RoomType = "other"
)

type Goal string

const (
	GoalCozier        Goal = "cozier"
	GoalBrighter      Goal = "brighter"
	GoalModern        Goal = "modern"
	GoalBigger        Goal = "bigger"
	GoalRefreshBudget Goal = "refresh_budget"
)

type StyleKey string

const (
	StyleModernMinimal    StyleKey = "modern_minimal"
	StyleCozyNeutral      StyleKey = "cozy_neutral"
	StyleScandinavian     StyleKey = "scandinavian"
	StyleJapandi          StyleKey = "japandi"
	StyleSoftBoho         StyleKey = "soft_boho"
	StyleCleanTraditional StyleKey = "clean_traditional"
)

type BudgetTier string

const (
	BudgetRearrangeOnly BudgetTier = "rearrange_only"
	BudgetUnder500      BudgetTier = "under_500"
	Budget500To1500     BudgetTier = "500_1500"
	Budget1500To3000    BudgetTier = "1500_3000"
	Budget3000Plus      BudgetTier = "3000_plus"
)

// Defaults written on draft creation; the columns are NOT NULL.
const (
	DefaultGoal       = GoalModern
	DefaultStyleKey   = StyleCozyNeutral
	DefaultBudgetTier = BudgetUnder500
	DefaultRoomType   = RoomLivingRoom
)

var (
	RoomTypes   = []RoomType{RoomLivingRoom, RoomBedroom, RoomDiningRoom, RoomOffice, RoomSmallSpace, RoomOther}
	Goals       = []Goal{GoalCozier, GoalBrighter, GoalModern, GoalBigger, GoalRefreshBudget}
	StyleKeys   = []StyleKey{StyleModernMinimal, StyleCozyNeutral, StyleScandinavian, StyleJapandi, StyleSoftBoho, StyleCleanTraditional}
	BudgetTiers = []BudgetTier{BudgetRearrangeOnly, BudgetUnder500, Budget500To1500, Budget1500To3000, Budget3000Plus}
)

func (t BudgetTier) RearrangeOnly() bool { return t == BudgetRearrangeOnly }

type Room struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RoomType         RoomType
	Goal             Goal
	StyleKey         StyleKey
	BudgetTier       BudgetTier
	InputImagePath   sql.NullString
	Status           lifecycle.RoomStatus
	GenerationStatus lifecycle.GenerationStatus
	GenerationError  sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        sql.NullTime
}

// Complete reports whether every selection and the input image are present.
func (r *Room) Complete() bool {
	return r.RoomType != "" &&
		r.Goal != "" &&
		r.StyleKey != "" &&
		r.BudgetTier != "" &&
		r.InputImagePath.Valid && r.InputImagePath.String != ""
}

// Selections is a partial update of the four user choices.
type Selections struct {
	RoomType   *RoomType
	Goal       *Goal
	StyleKey   *StyleKey
	BudgetTier *BudgetTier
}
