package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError maps a service error to an HTTP response. Ledger errors that
// carry detail (totals, current status, draft count, missing codes) expose it in
// the body. Anything unrecognised becomes a 500 with fallbackMsg.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var (
		unbalanced    *apperrors.UnbalancedError
		invalidStatus *apperrors.InvalidStatusError
		openEntries   *apperrors.OpenEntriesError
		notConfigured *apperrors.AccountNotConfiguredError
	)

	switch {
	case errors.As(err, &unbalanced):
		logger.Warn("Unbalanced journal entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"totalDebit":  unbalanced.TotalDebit,
			"totalCredit": unbalanced.TotalCredit,
		})
	case errors.As(err, &invalidStatus):
		logger.Warn("Invalid journal entry status", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "currentStatus": invalidStatus.Current})
	case errors.As(err, &openEntries):
		logger.Warn("Fiscal period has draft entries", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "draftCount": openEntries.Count})
	case errors.As(err, &notConfigured):
		logger.Warn("Account not configured", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missingCodes": notConfigured.Codes})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
