package middleware

import (
	"context"
	"net/http"
	"strings"

	"lumo/task-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLookup reports whether an account still exists.
type UserLookup func(ctx context.Context, id string) (bool, error)

// NewJWTMiddleware accepts requests carrying "Authorization: Bearer <token>"
// with a valid access token and sets userID for the handlers downstream.
// Tokens of deleted accounts are rejected when exists is set.
func NewJWTMiddleware(s security.Signer, exists UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing or malformed authorization header",
				"requestID": requestID,
			})
			return
		}

		claims, err := s.Verify(strings.TrimSpace(tokenStr), security.PurposeAuth)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid or expired",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if exists != nil {
			found, err := exists(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
				return
			}

			// Someone deleted their account and kept the token around
			if !found {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Authorization token invalid",
					"requestID": requestID,
				})
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

// SelfOnly lets a request through only when the path parameter param names
// the authenticated user. Anyone else gets the same 404 as a missing account.
func SelfOnly(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) != c.GetString("userID") {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
