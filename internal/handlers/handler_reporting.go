package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_ledger/internal/dto"
	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		now:              time.Now,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement reports over ?periodId when given, otherwise over ?from..?to.
// Missing dates default to the start of the current year and today.
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.IncomeStatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid income statement parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	tenantID := c.Param("tenantID")

	var (
		report *domain.IncomeStatementReport
		err    error
	)
	if params.PeriodID != "" {
		report, err = h.reportingService.IncomeStatementForPeriod(c.Request.Context(), tenantID, params.PeriodID)
	} else {
		to := domain.NormalizeDate(h.now())
		from := time.Date(to.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		if params.To != "" {
			if to, err = dto.ParseDate("to", params.To); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if params.From != "" {
			if from, err = dto.ParseDate("from", params.From); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		report, err = h.reportingService.IncomeStatement(c.Request.Context(), tenantID, from, to)
	}
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report))
}

func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUser(c, logger); !ok {
		return
	}

	var params dto.BalanceSheetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid asOf date format", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}
	asOf := domain.NormalizeDate(h.now())
	if params.AsOf != "" {
		var err error
		if asOf, err = dto.ParseDate("asOf", params.AsOf); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), c.Param("tenantID"), asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}
