package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thebethel/portal-api/internal/models"
	"github.com/thebethel/portal-api/internal/service"
	appErrors "github.com/thebethel/portal-api/pkg/errors"
	"github.com/thebethel/portal-api/pkg/response"
)

// FinanceHandler exposes expense tracking endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// List godoc
// @Summary List recorded expenses
// @Tags Finance
// @Produce json
// @Param date_from query string false "Earliest date, inclusive"
// @Param date_to query string false "Latest date, inclusive"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/expenses [get]
func (h *FinanceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := models.ExpenseFilter{Page: page, PageSize: pageSize}
	if from := c.Query("date_from"); from != "" {
		filter.DateFrom = &from
	}
	if to := c.Query("date_to"); to != "" {
		filter.DateTo = &to
	}

	expenses, pagination, err := h.finance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, expenses, pagination)
}

// Record godoc
// @Summary Record an expense
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.RecordExpenseRequest true "Expense"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/expenses [post]
func (h *FinanceHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	expense, err := h.finance.Record(c.Request.Context(), req, claims.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// MonthlySummary godoc
// @Summary Monthly spending totals
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /finance/summary [get]
func (h *FinanceHandler) MonthlySummary(c *gin.Context) {
	rows, cacheHit, err := h.finance.MonthlySummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"cache_hit": cacheHit})
}
