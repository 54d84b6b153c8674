package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/service"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/response"
)

// MessageHandler exposes the shared announcement board endpoints.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// List godoc
// @Summary List the newest messages, oldest first
// @Tags Messages
// @Produce json
// @Param limit query int false "Maximum messages to return"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	messages, err := h.messages.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Post godoc
// @Summary Post a message to the board
// @Description The board keeps a bounded number of messages; posting past the
// @Description cap drops the oldest ones.
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body service.PostMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /messages [post]
func (h *MessageHandler) Post(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	message, err := h.messages.Post(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}
