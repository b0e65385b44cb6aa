package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerHomeRoutes(r)

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, services.ChartOfAccounts)
	registerLedgerRoutes(v1, services.Ledger)
	registerFiscalPeriodRoutes(v1, services.FiscalPeriod)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerCurrencyPolicyRoutes(v1, services.CurrencyPolicy)
}
