package handlers

import (
	"fmt"
	"net/http"

	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/SscSPs/school_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	if err := RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the tenant-scoped /api/v1 group and delegates to
// the entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	handlers := []gin.HandlerFunc{}
	if cfg.RateLimit != "" {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return err
		}
		handlers = append(handlers, middleware.RateLimit(limiter))
	}
	handlers = append(handlers, middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer), middleware.TenantAccess(cfg.AllowAllTenants))

	tenant := r.Group("/api/v1/tenants/:tenantID", handlers...)

	RegisterAccountRoutes(tenant, services.Account, services.Reporting)
	RegisterFiscalPeriodRoutes(tenant, services.FiscalPeriod)
	RegisterJournalRoutes(tenant, services.Journal)
	RegisterReportingRoutes(tenant, services.Reporting)
	return nil
}
