package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// ledgerHandler handles HTTP requests related to posting and reading vouchers.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to the posting engine.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/transactions", h.postTransaction)
		ledger.POST("/voucher-numbers", h.nextVoucherNumber)
		ledger.POST("/vouchers/:voucherNumber/reverse", h.reverseTransaction)
		ledger.GET("/vouchers/:voucherNumber", h.getVoucher)
		ledger.GET("/accounts/:code/balance", h.getAccountBalance)
		ledger.GET("/accounts/:code/entries", h.listAccountEntries)
		ledger.GET("/trial-balance", h.getTrialBalance)
	}
}

// parseAsOf reads the optional asOf query parameter, defaulting to now.
func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// postTransaction godoc
// @Summary Post a balanced transaction
// @Description Validates and atomically writes a balanced set of ledger entries as one voucher
// @Tags ledger
// @Accept json
// @Produce json
// @Param   transaction body dto.PostTransactionRequest true "Transaction details"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced entries"
// @Failure 409 {object} map[string]string "Duplicate voucher number or closed period"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Router /ledger/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	voucherNumber, err := h.ledgerService.PostTransaction(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, apperrors.ErrUnbalancedVoucher),
			errors.Is(err, apperrors.ErrAccountInvalid),
			errors.Is(err, apperrors.ErrAccountNotFound):
			logger.Warn("Validation error posting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicateVoucherNumber),
			errors.Is(err, apperrors.ErrPeriodClosed),
			errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrPeriodNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to post transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post transaction"})
		}
		return
	}

	logger.Info("Transaction posted", slog.String("voucher_number", voucherNumber))
	c.JSON(http.StatusCreated, dto.PostTransactionResponse{VoucherNumber: voucherNumber})
}

// nextVoucherNumber godoc
// @Summary Allocate the next voucher number
// @Description Atomically allocates the next number in the sequence for a document type
// @Tags ledger
// @Produce json
// @Param   documentType query string false "Document type prefix (default VOU)"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 500 {object} map[string]string "Failed to allocate voucher number"
// @Router /ledger/voucher-numbers [post]
func (h *ledgerHandler) nextVoucherNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentType := c.Query("documentType")

	voucherNumber, err := h.ledgerService.NextVoucherNumber(c.Request.Context(), documentType)
	if err != nil {
		logger.Error("Failed to allocate voucher number",
			slog.String("document_type", documentType), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate voucher number"})
		return
	}
	c.JSON(http.StatusCreated, dto.PostTransactionResponse{VoucherNumber: voucherNumber})
}

// reverseTransaction godoc
// @Summary Reverse a voucher
// @Description Posts a mirror voucher offsetting an earlier one, dated at reversal time
// @Tags ledger
// @Accept json
// @Produce json
// @Param   voucherNumber path string true "Voucher number"
// @Param   reversal body dto.ReverseTransactionRequest true "Reversal details"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Voucher already reversed"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Router /ledger/vouchers/{voucherNumber}/reverse [post]
func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherNumber := c.Param("voucherNumber")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := middleware.GetActorID(c)
	reversalVoucher, err := h.ledgerService.ReverseTransaction(c.Request.Context(), voucherNumber, req.Reason, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrVoucherNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
		case errors.Is(err, apperrors.ErrAlreadyReversed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrPeriodClosed), errors.Is(err, apperrors.ErrPeriodLocked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse transaction",
				slog.String("voucher_number", voucherNumber), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse transaction"})
		}
		return
	}

	logger.Info("Transaction reversed",
		slog.String("voucher_number", voucherNumber),
		slog.String("reversal_voucher_number", reversalVoucher))
	c.JSON(http.StatusCreated, dto.PostTransactionResponse{VoucherNumber: reversalVoucher})
}

// getVoucher godoc
// @Summary Get a voucher
// @Description Retrieves one voucher with all its entries
// @Tags ledger
// @Produce json
// @Param   voucherNumber path string true "Voucher number"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 500 {object} map[string]string "Failed to retrieve voucher"
// @Router /ledger/vouchers/{voucherNumber} [get]
func (h *ledgerHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherNumber := c.Param("voucherNumber")

	voucher, err := h.ledgerService.GetVoucher(c.Request.Context(), voucherNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrVoucherNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
			return
		}
		logger.Error("Failed to get voucher", slog.String("voucher_number", voucherNumber), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve voucher"})
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// getAccountBalance godoc
// @Summary Get an account balance
// @Description Returns the account's balance on its normal side over entries up to asOf
// @Tags ledger
// @Produce json
// @Param   code path string true "Account code"
// @Param   asOf query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Router /ledger/accounts/{code}/balance [get]
func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	asOf, err := parseAsOf(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
		return
	}

	balance, err := h.ledgerService.GetAccountBalance(c.Request.Context(), code, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to get account balance", slog.String("account_code", code), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{AccountCode: code, AsOf: asOf, Balance: balance})
}

// listAccountEntries godoc
// @Summary List an account's entries
// @Description Returns the most recent ledger entries for one account
// @Tags ledger
// @Produce json
// @Param   code path string true "Account code"
// @Param   limit query int false "Maximum entries to return (default 50)"
// @Success 200 {array} dto.EntryResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /ledger/accounts/{code}/entries [get]
func (h *ledgerHandler) listAccountEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.ledgerService.ListEntriesByAccount(c.Request.Context(), code, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to list account entries", slog.String("account_code", code), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		return
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = dto.ToEntryResponse(e)
	}
	c.JSON(http.StatusOK, responses)
}

// getTrialBalance godoc
// @Summary Get the trial balance
// @Description Returns per-account debit/credit balances over entries up to asOf
// @Tags ledger
// @Produce json
// @Param   asOf query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.TrialBalance
// @Failure 500 {object} map[string]string "Failed to compute trial balance"
// @Router /ledger/trial-balance [get]
func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseAsOf(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
		return
	}

	tb, err := h.ledgerService.GetTrialBalance(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to compute trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trial balance"})
		return
	}
	c.JSON(http.StatusOK, tb)
}
