package handlers

import (
	"io"
	"net/http"
	"slices"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type RoomsHandler struct {
	rooms   RoomManager
	objects ObjectManager
	log     *logger.Logger
}

func NewRoomsHandler(rooms RoomManager, objects ObjectManager, log *logger.Logger) *RoomsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RoomsHandler{rooms: rooms, objects: objects, log: log}
}

// CreateRoom godoc
// @Summary     Create a draft room from a photo
// @Description Stores the uploaded photo under the caller's prefix and creates a draft room
// @Description with default selections (goal=modern, style_key=cozy_neutral, budget_tier=under_500).
// @Tags        rooms
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image     formData file   true  "Room photo (jpeg, png, webp, heic; max 10 MiB)"
// @Param       room_type formData string false "Room type"
// @Success     201 {object} models.RoomResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Router      /rooms [post]
func (h *RoomsHandler) CreateRoom(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var roomType *models.RoomType
	if v := c.PostForm("room_type"); v != "" {
		rt := models.RoomType(v)
		if !slices.Contains(models.RoomTypes, rt) {
			badRequest(c, "invalid room_type")
			return
		}
		roomType = &rt
	}

	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	if fh.Size > services.MaxUploadBytes {
		respondError(c, h.log, services.ErrImageTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "failed to read image")
		return
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, services.MaxUploadBytes+1))
	if err != nil {
		badRequest(c, "failed to read image")
		return
	}

	room, err := h.rooms.CreateDraft(c.Request.Context(), callerID, image, roomType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewRoomResponse(room))
}

// UpdateRoom godoc
// @Summary     Update room selections
// @Description Sets any of room_type, goal, style_key and budget_tier. Rejected while a generation is running.
// @Tags        rooms
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       room_id path string                   true "Room ID (UUID)"
// @Param       request body models.UpdateRoomRequest true "Selections"
// @Success     200 {object} models.RoomResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /rooms/{room_id} [patch]
func (h *RoomsHandler) UpdateRoom(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "room_id")
	if !ok {
		return
	}

	var req models.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	room, err := h.rooms.UpdateSelections(c.Request.Context(), roomID, callerID, req.Selections())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.NewRoomResponse(room))
}

// DeleteRoom godoc
// @Summary     Delete a room
// @Description Soft-deletes the room and all of its generations and removes their stored outputs.
// @Tags        rooms
// @Produce     json
// @Security    Bearer
// @Param       room_id path string true "Room ID (UUID)"
// @Success     200 {object} models.DeleteResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /rooms/{room_id} [delete]
func (h *RoomsHandler) DeleteRoom(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "room_id")
	if !ok {
		return
	}

	already, err := h.objects.DeleteRoom(c.Request.Context(), callerID, roomID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{OK: true, AlreadyDeleted: already})
}
