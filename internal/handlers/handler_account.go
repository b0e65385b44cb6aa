package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	coaService portssvc.ChartOfAccountsSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(coa portssvc.ChartOfAccountsSvcFacade) *accountHandler {
	return &accountHandler{coaService: coa}
}

// registerAccountRoutes registers routes related to the chart of accounts.
func registerAccountRoutes(rg *gin.RouterGroup, coaService portssvc.ChartOfAccountsSvcFacade) {
	h := newAccountHandler(coaService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccount)
		accounts.GET("/roles/:role", h.resolveRole)
	}
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Description Returns all accounts, optionally restricted to active ones
// @Tags accounts
// @Produce json
// @Param   active query bool false "Only active accounts"
// @Success 200 {array} dto.AccountResponse
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	activeOnly := c.Query("active") == "true"

	accounts, err := h.coaService.ListAccounts(c.Request.Context(), activeOnly)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// getAccount godoc
// @Summary Get an account
// @Description Retrieves one account by its code
// @Tags accounts
// @Produce json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	account, err := h.coaService.Resolve(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to resolve account", slog.String("account_code", code), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// resolveRole godoc
// @Summary Resolve a logical account role
// @Description Maps a role key like "cash" or "retained_earnings" to a concrete account code
// @Tags accounts
// @Produce json
// @Param   role path string true "Role key"
// @Success 200 {object} dto.ResolveRoleResponse
// @Failure 404 {object} map[string]string "No account found for role"
// @Failure 500 {object} map[string]string "Failed to resolve role"
// @Router /accounts/roles/{role} [get]
func (h *accountHandler) resolveRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	role := c.Param("role")

	code, err := h.coaService.ResolveRole(c.Request.Context(), domain.AccountRole(role))
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No account found for role " + role})
			return
		}
		logger.Error("Failed to resolve role", slog.String("role", role), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve role"})
		return
	}
	c.JSON(http.StatusOK, dto.ResolveRoleResponse{Role: role, AccountCode: code})
}
