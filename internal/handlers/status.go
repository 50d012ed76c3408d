package handlers

import (
	"net/http"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	rooms RoomManager
	log   *logger.Logger
}

func NewStatusHandler(rooms RoomManager, log *logger.Logger) *StatusHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusHandler{rooms: rooms, log: log}
}

// GetStatus godoc
// @Summary     Get generation status
// @Description Returns the room's status, generation step and a display label. Responses are never cached.
// @Tags        status
// @Produce     json
// @Security    Bearer
// @Param       room_id path string true "Room ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /rooms/{room_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	callerID, ok := caller(c)
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "room_id")
	if !ok {
		return
	}

	room, err := h.rooms.Status(c.Request.Context(), roomID, callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := models.StatusResponse{
		RoomID:    room.ID.String(),
		Status:    string(room.Status),
		Step:      lifecycle.Label(room.GenerationStatus),
		Terminal:  lifecycle.Terminal(room.Status, room.GenerationStatus),
		UpdatedAt: room.UpdatedAt,
	}
	if room.GenerationStatus != lifecycle.GenNone {
		gs := string(room.GenerationStatus)
		resp.GenerationStatus = &gs
	}
	if room.GenerationError.Valid {
		ge := room.GenerationError.String
		resp.GenerationError = &ge
	}
	c.JSON(http.StatusOK, resp)
}
