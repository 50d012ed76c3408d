package handlers

import (
	"net/http"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	generator Generator
	log       *logger.Logger
}

func NewGenerateHandler(generator Generator, log *logger.Logger) *GenerateHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerateHandler{generator: generator, log: log}
}

// Generate godoc
// @Summary     Generate a redesign
// @Description Runs the two-pass pipeline for a room and returns the stored output.
// @Description Poll /rooms/{room_id}/status from another request to follow progress.
// @Tags        generate
// @Produce     json
// @Security    Bearer
// @Param       room_id path string true "Room ID (UUID)"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse "room_incomplete"
// @Failure     402 {object} models.ErrorResponse "limit_reached"
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse "already_generating"
// @Failure     500 {object} models.ErrorResponse "generation_failed"
// @Router      /rooms/{room_id}/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "room_id")
	if !ok {
		return
	}

	res, err := h.generator.Start(c.Request.Context(), roomID, callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.GenerateResponse{
		OK:              true,
		RoomID:          res.RoomID.String(),
		GenerationID:    res.GenerationID.String(),
		OutputImagePath: res.OutputImagePath,
	})
}
