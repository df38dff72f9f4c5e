package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/auth"
)

const (
	// WalletIDKey is the key used to store the authenticated wallet ID in the context
	WalletIDKey = "auth_wallet_id"

	// RoleKey is the key used to store the authenticated role in the context
	RoleKey = "auth_role"
)

// Authenticate validates the bearer token and stores the caller's identity
// in the request context
func Authenticate(tokens *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(WalletIDKey, claims.WalletID)
		c.Set(RoleKey, claims.Role)

		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "FORBIDDEN", "message": "Admin access required"},
			})
			return
		}
		c.Next()
	}
}

// GetWalletID retrieves the authenticated wallet ID from the gin context
func GetWalletID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(WalletIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetRole retrieves the authenticated role from the gin context
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(RoleKey); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}
