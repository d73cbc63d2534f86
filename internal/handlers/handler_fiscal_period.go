package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_ledger/internal/dto"
	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fiscalPeriodHandler struct {
	periodService portssvc.FiscalPeriodSvc
}

func newFiscalPeriodHandler(ps portssvc.FiscalPeriodSvc) *fiscalPeriodHandler {
	return &fiscalPeriodHandler{periodService: ps}
}

// RegisterFiscalPeriodRoutes registers routes related to fiscal periods.
func RegisterFiscalPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvc) {
	h := newFiscalPeriodHandler(periodService)

	periods := rg.Group("/fiscal-periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/lookup", h.lookupPeriod)
		periods.GET("/:periodID", h.getPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
	}
}

func (h *fiscalPeriodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	var req dto.CreateFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFiscalPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	in, err := req.ToNewFiscalPeriod()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger = logger.With(slog.String("tenant_id", tenantID))
	period, err := h.periodService.CreatePeriod(c.Request.Context(), tenantID, in, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create fiscal period")
		return
	}

	logger.Info("Fiscal period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToFiscalPeriodResponse(period))
}

func (h *fiscalPeriodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to list fiscal periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFiscalPeriodsResponse(periods))
}

func (h *fiscalPeriodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	period, err := h.periodService.GetPeriod(c.Request.Context(), c.Param("tenantID"), c.Param("periodID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve fiscal period")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// lookupPeriod returns the period covering ?date, or 404 when none does.
func (h *fiscalPeriodHandler) lookupPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.FiscalPeriodLookupParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	date, err := dto.ParseDate("date", params.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period, err := h.periodService.PeriodForDate(c.Request.Context(), c.Param("tenantID"), date)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve fiscal period")
		return
	}
	if period == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No fiscal period covers " + params.Date})
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

func (h *fiscalPeriodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	periodID := c.Param("periodID")
	logger = logger.With(slog.String("period_id", periodID))
	period, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("tenantID"), periodID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to close fiscal period")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}
