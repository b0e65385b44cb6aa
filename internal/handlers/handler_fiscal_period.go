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

// fiscalPeriodHandler handles HTTP requests related to fiscal periods.
type fiscalPeriodHandler struct {
	periodService portssvc.FiscalPeriodSvcFacade
}

// newFiscalPeriodHandler creates a new fiscalPeriodHandler.
func newFiscalPeriodHandler(fps portssvc.FiscalPeriodSvcFacade) *fiscalPeriodHandler {
	return &fiscalPeriodHandler{periodService: fps}
}

// registerFiscalPeriodRoutes registers routes related to the period lifecycle.
func registerFiscalPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvcFacade) {
	h := newFiscalPeriodHandler(periodService)

	periods := rg.Group("/fiscal-periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:periodID", h.getPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/lock", h.lockPeriod)
		periods.POST("/:periodID/unlock", h.unlockPeriod)
	}
}

// createPeriod godoc
// @Summary Create a fiscal period
// @Description Creates a new open period; the date range must not overlap any existing period
// @Tags fiscal periods
// @Accept json
// @Produce json
// @Param   period body dto.CreateFiscalPeriodRequest true "Period details"
// @Success 201 {object} dto.FiscalPeriodResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Overlapping period"
// @Failure 500 {object} map[string]string "Failed to create period"
// @Router /fiscal-periods [post]
func (h *fiscalPeriodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	period, err := h.periodService.CreatePeriod(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPeriodOverlap):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create fiscal period", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create period"})
		}
		return
	}

	logger.Info("Fiscal period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToFiscalPeriodResponse(period))
}

// listPeriods godoc
// @Summary List fiscal periods
// @Description Lists all periods, or with ?date=YYYY-MM-DD only the period covering that date
// @Tags fiscal periods
// @Produce json
// @Param   date query string false "Return only the period covering this date (YYYY-MM-DD)"
// @Success 200 {array} dto.FiscalPeriodResponse
// @Failure 404 {object} map[string]string "No period covers the date"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Router /fiscal-periods [get]
func (h *fiscalPeriodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		period, err := h.periodService.FindPeriodForDate(c.Request.Context(), date)
		if err != nil {
			if errors.Is(err, apperrors.ErrPeriodNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No fiscal period covers the given date"})
				return
			}
			logger.Error("Failed to find fiscal period for date", slog.String("date", raw), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list periods"})
			return
		}
		c.JSON(http.StatusOK, []dto.FiscalPeriodResponse{dto.ToFiscalPeriodResponse(period)})
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list fiscal periods", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list periods"})
		return
	}

	responses := make([]dto.FiscalPeriodResponse, len(periods))
	for i := range periods {
		responses[i] = dto.ToFiscalPeriodResponse(&periods[i])
	}
	c.JSON(http.StatusOK, responses)
}

// getPeriod godoc
// @Summary Get a fiscal period
// @Tags fiscal periods
// @Produce json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 500 {object} map[string]string "Failed to retrieve period"
// @Router /fiscal-periods/{periodID} [get]
func (h *fiscalPeriodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodID := c.Param("periodID")

	period, err := h.periodService.GetPeriod(c.Request.Context(), periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPeriodNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
			return
		}
		logger.Error("Failed to get fiscal period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve period"})
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// closePeriod godoc
// @Summary Close a fiscal period
// @Description Computes net income, posts the closing voucher, and marks the period closed. Terminal.
// @Tags fiscal periods
// @Produce json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.ClosePeriodResult
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period already closed or locked"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Router /fiscal-periods/{periodID}/close [post]
func (h *fiscalPeriodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodID := c.Param("periodID")

	userID := middleware.GetActorID(c)
	result, err := h.periodService.ClosePeriod(c.Request.Context(), periodID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPeriodNotFound), errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		case errors.Is(err, apperrors.ErrPeriodClosed), errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to close fiscal period", slog.String("period_id", periodID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close period"})
		}
		return
	}

	logger.Info("Fiscal period closed",
		slog.String("period_id", periodID),
		slog.String("net_income", result.NetIncome.String()))
	c.JSON(http.StatusOK, result)
}

// lockPeriod godoc
// @Summary Lock a fiscal period
// @Description Blocks postings into the period until it is unlocked
// @Tags fiscal periods
// @Produce json
// @Param   periodID path string true "Period ID"
// @Success 204 "Locked"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period closed or already locked"
// @Router /fiscal-periods/{periodID}/lock [post]
func (h *fiscalPeriodHandler) lockPeriod(c *gin.Context) {
	h.setLock(c, true)
}

// unlockPeriod godoc
// @Summary Unlock a fiscal period
// @Tags fiscal periods
// @Produce json
// @Param   periodID path string true "Period ID"
// @Success 204 "Unlocked"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period closed or not locked"
// @Router /fiscal-periods/{periodID}/unlock [post]
func (h *fiscalPeriodHandler) unlockPeriod(c *gin.Context) {
	h.setLock(c, false)
}

func (h *fiscalPeriodHandler) setLock(c *gin.Context, lock bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodID := c.Param("periodID")
	userID := middleware.GetActorID(c)

	var err error
	if lock {
		err = h.periodService.LockPeriod(c.Request.Context(), periodID, userID)
	} else {
		err = h.periodService.UnlockPeriod(c.Request.Context(), periodID, userID)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPeriodNotFound), errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		case errors.Is(err, apperrors.ErrPeriodClosed), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update period lock", slog.String("period_id", periodID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update period lock"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
