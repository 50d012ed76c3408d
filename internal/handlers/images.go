package handlers

import (
	"net/http"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type ImagesHandler struct {
	objects ObjectManager
	log     *logger.Logger
}

func NewImagesHandler(objects ObjectManager, log *logger.Logger) *ImagesHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImagesHandler{objects: objects, log: log}
}

// SignedURL godoc
// @Summary     Create a signed read URL
// @Description Grants short-lived read access to one of the caller's stored images.
// @Tags        images
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SignedURLRequest true "Bucket and path"
// @Success     200 {object} models.SignedURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /images/signed-url [post]
func (h *ImagesHandler) SignedURL(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req models.SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	url, err := h.objects.SignedURL(c.Request.Context(), callerID, req.Bucket, req.Path)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.SignedURLResponse{SignedURL: url})
}
