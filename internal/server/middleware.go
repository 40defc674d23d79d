package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/security"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// TokenParser validates bearer tokens
type TokenParser interface {
	Parse(token string) (*security.Claims, error)
}

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(requestIDKey),
		"client_ip":  c.ClientIP(),
	}
	if userID := helpers.CurrentUserID(c); userID != 0 {
		fields["user_id"] = userID
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}
	utils.Info("HTTP Request", fields)
}

// AuthMiddleware requires a valid bearer token and stores the caller's id.
// Browsers cannot set headers on EventSource requests, so the token may also
// come from the access_token query parameter.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, auctionerrors.ErrUnauthorized, "missing bearer token")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			utils.Warn("AuthMiddleware: rejected token", map[string]any{
				"request_id": c.GetString(requestIDKey),
				"error":      err.Error(),
			})
			utils.AbortJSONError(c, http.StatusUnauthorized, errors.Join(auctionerrors.ErrUnauthorized, err), "invalid or expired token")
			return
		}

		userID, _ := claims.UserID()
		c.Set(helpers.UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return c.Query("access_token")
}
