package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/service"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/response"
)

// RewardHandler exposes the dollar-point ledger endpoints.
type RewardHandler struct {
	rewards *service.RewardService
}

// NewRewardHandler constructs RewardHandler.
func NewRewardHandler(rewards *service.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// Grant godoc
// @Summary Grant dollar points to a student
// @Tags Rewards
// @Accept json
// @Produce json
// @Param id path string true "Student primary key"
// @Param payload body service.GrantRewardRequest true "Grant"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/rewards [post]
func (h *RewardHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.GrantRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.rewards.Grant(c.Request.Context(), c.Param("id"), req, claims.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary Reward history for a student, oldest first
// @Tags Rewards
// @Produce json
// @Param id path string true "Student primary key"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/rewards [get]
func (h *RewardHandler) List(c *gin.Context) {
	entries, err := h.rewards.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Summary godoc
// @Summary Reward balance summary for a student
// @Tags Rewards
// @Produce json
// @Param id path string true "Student primary key"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/rewards/summary [get]
func (h *RewardHandler) Summary(c *gin.Context) {
	summary, err := h.rewards.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
