package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// currencyPolicyHandler handles HTTP requests related to currency policies.
type currencyPolicyHandler struct {
	policyService portssvc.CurrencyPolicySvcFacade
}

// newCurrencyPolicyHandler creates a new currencyPolicyHandler.
func newCurrencyPolicyHandler(cps portssvc.CurrencyPolicySvcFacade) *currencyPolicyHandler {
	return &currencyPolicyHandler{policyService: cps}
}

// registerCurrencyPolicyRoutes registers routes related to the currency policy engine.
func registerCurrencyPolicyRoutes(rg *gin.RouterGroup, policyService portssvc.CurrencyPolicySvcFacade) {
	h := newCurrencyPolicyHandler(policyService)

	policies := rg.Group("/currency-policies")
	{
		policies.POST("", h.createPolicy)
		policies.GET("/active", h.getActivePolicy)
		policies.POST("/:policyID/activate", h.activatePolicy)
		policies.DELETE("/:policyID", h.deletePolicy)
	}

	currency := rg.Group("/currency")
	{
		currency.POST("/convert", h.convert)
		currency.POST("/contexts", h.createTransactionContext)
		currency.POST("/revaluations", h.processRevaluation)
	}
}

// createPolicy godoc
// @Summary Create a currency policy
// @Description Creates a new, initially inactive, currency policy
// @Tags currency policies
// @Accept json
// @Produce json
// @Param   policy body dto.CreateCurrencyPolicyRequest true "Policy details"
// @Success 201 {object} dto.CurrencyPolicyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create policy"
// @Router /currency-policies [post]
func (h *currencyPolicyHandler) createPolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCurrencyPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePolicy", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	policy, err := h.policyService.CreatePolicy(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create currency policy", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create policy"})
		return
	}

	logger.Info("Currency policy created", slog.String("policy_id", policy.PolicyID))
	c.JSON(http.StatusCreated, dto.ToCurrencyPolicyResponse(policy))
}

// getActivePolicy godoc
// @Summary Get the active currency policy
// @Tags currency policies
// @Produce json
// @Success 200 {object} dto.CurrencyPolicyResponse
// @Failure 404 {object} map[string]string "No active policy"
// @Failure 500 {object} map[string]string "Failed to retrieve policy"
// @Router /currency-policies/active [get]
func (h *currencyPolicyHandler) getActivePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	policy, err := h.policyService.GetActivePolicy(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active currency policy"})
			return
		}
		logger.Error("Failed to get active currency policy", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve policy"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyPolicyResponse(policy))
}

// activatePolicy godoc
// @Summary Activate a currency policy
// @Description Makes the target the single active policy; all others are deactivated atomically
// @Tags currency policies
// @Produce json
// @Param   policyID path string true "Policy ID"
// @Success 204 "Activated"
// @Failure 404 {object} map[string]string "Policy not found"
// @Failure 500 {object} map[string]string "Failed to activate policy"
// @Router /currency-policies/{policyID}/activate [post]
func (h *currencyPolicyHandler) activatePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	policyID := c.Param("policyID")

	userID := middleware.GetActorID(c)
	if err := h.policyService.ActivatePolicy(c.Request.Context(), policyID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Policy not found"})
			return
		}
		logger.Error("Failed to activate currency policy", slog.String("policy_id", policyID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate policy"})
		return
	}
	c.Status(http.StatusNoContent)
}

// deletePolicy godoc
// @Summary Delete a currency policy
// @Description Deletes a policy unless it is active or referenced by transaction contexts
// @Tags currency policies
// @Produce json
// @Param   policyID path string true "Policy ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Policy not found"
// @Failure 409 {object} map[string]string "Policy is active or referenced"
// @Failure 500 {object} map[string]string "Failed to delete policy"
// @Router /currency-policies/{policyID} [delete]
func (h *currencyPolicyHandler) deletePolicy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	policyID := c.Param("policyID")

	if err := h.policyService.DeletePolicy(c.Request.Context(), policyID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Policy not found"})
		case errors.Is(err, apperrors.ErrActivePolicyDeletionForbidden):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to delete currency policy", slog.String("policy_id", policyID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete policy"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Multiplies the amount by the rate in force at the date, rounded to the target currency's precision
// @Tags currency policies
// @Accept json
// @Produce json
// @Param   conversion body dto.ConvertRequest true "Conversion details"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No rate available"
// @Failure 500 {object} map[string]string "Failed to convert"
// @Router /currency/convert [post]
func (h *currencyPolicyHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	converted, err := h.policyService.Convert(c.Request.Context(), req.Amount, req.SourceCurrency, req.TargetCurrency, req.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No exchange rate available for the pair"})
			return
		}
		logger.Error("Failed to convert amount", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		return
	}
	c.JSON(http.StatusOK, converted)
}

// createTransactionContext godoc
// @Summary Create a transaction currency context
// @Description Evaluates the active policy for the transaction and records the decision alongside it
// @Tags currency policies
// @Accept json
// @Produce json
// @Param   context body dto.CreateTransactionContextRequest true "Context details"
// @Success 201 {object} domain.TransactionCurrencyContext
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create context"
// @Router /currency/contexts [post]
func (h *currencyPolicyHandler) createTransactionContext(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tcc, err := h.policyService.CreateTransactionContext(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrRateNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create transaction currency context", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create context"})
		return
	}

	logger.Info("Transaction currency context created",
		slog.String("context_id", tcc.ContextID),
		slog.String("decision", string(tcc.Decision)))
	c.JSON(http.StatusCreated, tcc)
}

// processRevaluation godoc
// @Summary Revalue outstanding balances in one currency
// @Description Recognizes unrealized FX gain/loss at a new rate, posts it as one voucher, and records the rate
// @Tags currency policies
// @Accept json
// @Produce json
// @Param   revaluation body dto.ProcessRevaluationRequest true "Revaluation details"
// @Success 200 {object} dto.RevaluationResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Revaluation not enabled by the active policy"
// @Failure 500 {object} map[string]string "Failed to process revaluation"
// @Router /currency/revaluations [post]
func (h *currencyPolicyHandler) processRevaluation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ProcessRevaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	result, err := h.policyService.ProcessRevaluation(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRevaluationNotEnabled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to process revaluation", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process revaluation"})
		}
		return
	}

	logger.Info("Revaluation processed", slog.String("net_effect", result.NetEffect.String()))
	c.JSON(http.StatusOK, result)
}
