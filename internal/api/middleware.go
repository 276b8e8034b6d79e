package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mkurbatov/coach-assistant/internal/domain"
	"mkurbatov/coach-assistant/internal/service"
)

// Constants for context/header keys
const (
	ContextCoachKey = "coach"

	HeaderTelegramID = "X-Telegram-ID"
	HeaderRequestID  = "X-Request-ID"
)

// abortWithError sends a uniform error body and stops the chain.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RequestIDMiddleware tags every request with an id for log correlation,
// honoring one supplied by the caller.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// IdentityMiddleware resolves the opaque external identity key from the
// X-Telegram-ID header to a coach record and stores it in the context. There
// is deliberately no credential check beyond the key lookup.
func IdentityMiddleware(coachService service.CoachService) gin.HandlerFunc {
	return func(c *gin.Context) {
		telegramID := c.GetHeader(HeaderTelegramID)
		if telegramID == "" {
			abortWithError(c, http.StatusUnauthorized, "X-Telegram-ID header is missing")
			return
		}

		coach, err := coachService.CoachByTelegramID(c.Request.Context(), telegramID)
		if err != nil {
			if errors.Is(err, service.ErrCoachNotFound) {
				abortWithError(c, http.StatusUnauthorized, "No coach registered for this identity")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve coach identity")
			return
		}

		c.Set(ContextCoachKey, coach)
		c.Next()
	}
}

// getCoachFromContext returns the coach the identity middleware resolved.
func getCoachFromContext(c *gin.Context) (*domain.Coach, error) {
	raw, exists := c.Get(ContextCoachKey)
	if !exists {
		return nil, errors.New("coach not found in context")
	}
	coach, ok := raw.(*domain.Coach)
	if !ok {
		return nil, errors.New("invalid coach type in context")
	}
	return coach, nil
}
