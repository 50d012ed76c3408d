package handlers

import (
	"net/http"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"
	"cozylogic-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type GenerationsHandler struct {
	gens    GenerationLister
	objects ObjectManager
	log     *logger.Logger
}

func NewGenerationsHandler(gens GenerationLister, objects ObjectManager, log *logger.Logger) *GenerationsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerationsHandler{gens: gens, objects: objects, log: log}
}

func newGenerationResponse(g *models.Generation) models.GenerationResponse {
	return models.GenerationResponse{
		ID:                 g.ID.String(),
		RoomID:             g.RoomID.String(),
		PromptVersion:      g.PromptVersion,
		OutputImagePath:    g.OutputImagePath,
		Watermarked:        g.Watermarked,
		Explanation:        g.Explanation,
		Recommendations:    services.RecommendationViews(g),
		RecommendationsRaw: g.RecommendationsRaw.String,
		CreatedAt:          g.CreatedAt,
	}
}

// ListGenerations godoc
// @Summary     List saved generations
// @Description Returns the caller's live generations, newest first, with product recommendations and store links.
// @Tags        generations
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.GenerationListResponse
// @Router      /generations [get]
func (h *GenerationsHandler) ListGenerations(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	gens, err := h.gens.ListActiveGenerations(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := models.GenerationListResponse{Generations: make([]models.GenerationResponse, 0, len(gens))}
	for i := range gens {
		resp.Generations = append(resp.Generations, newGenerationResponse(&gens[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteGeneration godoc
// @Summary     Delete a generation
// @Description Soft-deletes the generation and removes its stored output. Repeating the call is safe.
// @Tags        generations
// @Produce     json
// @Security    Bearer
// @Param       generation_id path string true "Generation ID (UUID)"
// @Success     200 {object} models.DeleteResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /generations/{generation_id} [delete]
func (h *GenerationsHandler) DeleteGeneration(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	genID, ok := uuidParam(c, "generation_id")
	if !ok {
		return
	}

	already, err := h.objects.DeleteGeneration(c.Request.Context(), callerID, genID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{OK: true, AlreadyDeleted: already})
}
