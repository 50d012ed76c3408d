package handlers

import (
	"errors"
	"net/http"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/middleware"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrRoomNotFound, http.StatusNotFound, "room not found"},
	{services.ErrGenerationNotFound, http.StatusNotFound, "generation not found"},
	{services.ErrProfileNotFound, http.StatusNotFound, "profile not found"},
	{services.ErrForbidden, http.StatusForbidden, "you do not have access to this resource"},
	{services.ErrRoomIncomplete, http.StatusBadRequest, "room is missing a photo or a selection"},
	{services.ErrInvalidPath, http.StatusBadRequest, "invalid object path"},
	{services.ErrBucketNotAllowed, http.StatusBadRequest, "bucket is not allowed"},
	{services.ErrUnsupportedImage, http.StatusBadRequest, "image must be a jpeg, png, webp or heic file"},
	{services.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "image is larger than 10 MiB"},
	{services.ErrAlreadyGenerating, http.StatusConflict, "a generation is already running for this room"},
	{services.ErrLimitReached, http.StatusPaymentRequired, "monthly generation limit reached"},
	{services.ErrGenerationFailed, http.StatusInternalServerError, "generation failed, please try again"},
}

// respondError writes the mapped status and code for a service error.
// Unmapped errors are logged and reported as internal_error.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.JSON(m.status, models.ErrorResponse{Error: m.target.Error(), Message: m.message})
			return
		}
	}
	log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: "something went wrong"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "bad_request", Message: message})
}

// caller returns the authenticated user id or writes a 401.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "user id not found"})
	}
	return id, ok
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
