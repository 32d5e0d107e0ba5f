package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperr "coupon-service/pkg/errors"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	ctxKeyUserID    = "userID"
	ctxKeyRequestID = "requestID"
)

// requestID assigns each request an id, reusing the caller's if present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", c.GetString(ctxKeyRequestID)),
			slog.String("remote_addr", c.ClientIP()),
		)
	}
}

// identity extracts the caller identity resolved by the upstream auth
// proxy. Authentication itself happens there; this service only trusts
// the header it injects.
func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(headerUserID); userID != "" {
			c.Set(ctxKeyUserID, userID)
		}
		c.Next()
	}
}

// callerID returns the authenticated user id, failing the request when
// the operation requires one.
func callerID(c *gin.Context) (string, bool) {
	userID := c.GetString(ctxKeyUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": apiError{
			Code:    apperr.CodeValidation,
			Message: "missing " + headerUserID + " header",
		}})
		return "", false
	}
	return userID, true
}
