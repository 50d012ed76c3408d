package handlers

import (
	"net/http"

	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	usage     UsageReader
	retention RetentionRunner
	log       *logger.Logger
}

func NewAccountHandler(usage UsageReader, retention RetentionRunner, log *logger.Logger) *AccountHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AccountHandler{usage: usage, retention: retention, log: log}
}

// GetAccount godoc
// @Summary     Get plan and usage
// @Description Returns the caller's plan, monthly usage and limit, next reset time and saved-generation limit.
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AccountResponse
// @Router      /account [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	state, err := h.usage.GetState(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	saved, err := h.retention.SavedLimit(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.AccountResponse{
		Plan:                 string(state.Plan),
		Used:                 state.Used,
		Limit:                state.Limit,
		ResetAt:              state.ResetAt,
		SavedGenerationLimit: saved,
	})
}

// Prune godoc
// @Summary     Apply the retention limit now
// @Description Soft-deletes saved generations beyond the caller's saved-generation limit.
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PruneResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /retention/prune [post]
func (h *AccountHandler) Prune(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	res, err := h.retention.Prune(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.PruneResponse{Pruned: res.Pruned, HardDeleted: res.HardDeleted})
}
