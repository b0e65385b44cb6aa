package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{exchangeRateService: ers}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("", h.recordExchangeRate)
		exchangeRates.GET("/:from/:to", h.getExchangeRate)
		exchangeRates.GET("/:from/:to/history", h.listExchangeRates)
	}
}

// recordExchangeRate godoc
// @Summary Record a new exchange rate
// @Description Appends a rate record to the history for a currency pair
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.RecordExchangeRateRequest true "Exchange Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to record exchange rate"
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) recordExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	logger.Info("Received request to record exchange rate",
		slog.String("from", req.SourceCurrency),
		slog.String("to", req.TargetCurrency),
		slog.Any("rate", req.Rate),
		slog.Time("effective_at", req.EffectiveAt),
	)

	recorded, err := h.exchangeRateService.RecordRate(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Validation error recording exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record exchange rate"})
		}
		return
	}

	logger.Info("Exchange rate recorded", slog.String("rate_id", recorded.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(recorded))
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Description Retrieves the rate in force for a currency pair at a date, falling back to the inverse pair's reciprocal
// @Tags exchange rates
// @Produce  json
// @Param   from path string true "Source Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   to   path string true "Target Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   asOf query string false "Rate date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid currency code format"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Router /exchange-rates/{from}/{to} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Param("from")
	toCode := c.Param("to")

	if len(fromCode) != 3 || len(toCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	rate, err := h.exchangeRateService.GetRate(c.Request.Context(), fromCode, toCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
			return
		}
		logger.Error("Failed to get exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve exchange rate"})
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates godoc
// @Summary List exchange rate history
// @Description Returns the full recorded history for a currency pair, newest first
// @Tags exchange rates
// @Produce  json
// @Param   from path string true "Source Currency Code (3 letters)"
// @Param   to   path string true "Target Currency Code (3 letters)"
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 500 {object} map[string]string "Failed to list exchange rates"
// @Router /exchange-rates/{from}/{to}/history [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Param("from")
	toCode := c.Param("to")

	rates, err := h.exchangeRateService.ListRates(c.Request.Context(), fromCode, toCode)
	if err != nil {
		logger.Error("Failed to list exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exchange rates"})
		return
	}

	responses := make([]dto.ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = dto.ToExchangeRateResponse(&rates[i])
	}
	c.JSON(http.StatusOK, responses)
}
