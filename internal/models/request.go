package models

type UpdateRoomRequest struct {
	RoomType   *string `json:"room_type,omitempty" binding:"omitempty,oneof=living_room bedroom dining_room office small_space other" example:"living_room"`
	Goal       *string `json:"goal,omitempty" binding:"omitempty,oneof=cozier brighter modern bigger refresh_budget" example:"cozier"`
	StyleKey   *string `json:"style_key,omitempty" binding:"omitempty,oneof=modern_minimal cozy_neutral scandinavian japandi soft_boho clean_traditional" example:"japandi"`
	BudgetTier *string `json:"budget_tier,omitempty" binding:"omitempty,oneof=rearrange_only under_500 500_1500 1500_3000 3000_plus" example:"under_500"`
}

// Selections converts the request into a partial update.
func (r UpdateRoomRequest) Selections() Selections {
	var s Selections
	if r.RoomType != nil {
		v := RoomType(*r.RoomType)
		s.RoomType = &v
	}
	if r.Goal != nil {
		v := Goal(*r.Goal)
		s.Goal = &v
	}
	if r.StyleKey != nil {
		v := StyleKey(*r.StyleKey)
		s.StyleKey = &v
	}
	if r.BudgetTier != nil {
		v := BudgetTier(*r.BudgetTier)
		s.BudgetTier = &v
	}
	return s
}

type SignedURLRequest struct {
	Bucket string `json:"bucket" binding:"required" example:"cozylogic-outputs"`
	Path   string `json:"path" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
