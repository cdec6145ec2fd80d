package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"shieldbackend/internal/models"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthMiddleware creates a Gin middleware for JWT authentication. Token
// issuance lives in an external service; this only verifies and extracts
// the claims the ownership checks need.
func AuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret, logger)
		if !ok {
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware accepts both anonymous and authenticated callers.
// A present but invalid token is still rejected.
func OptionalAuthMiddleware(secret []byte, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, ok := parseBearer(c, secret, logger)
		if !ok {
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// UserID returns the authenticated user's id, or nil for anonymous calls.
func UserID(c *gin.Context) *int64 {
	if v, exists := c.Get(ContextUserID); exists {
		id := v.(int64)
		return &id
	}
	return nil
}

func setClaims(c *gin.Context, claims *models.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRole, claims.Role)
}

func parseBearer(c *gin.Context, secret []byte, logger *zap.Logger) (*models.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		c.Abort()
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer <token>"})
		c.Abort()
		return nil, false
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			c.Abort()
			return nil, false
		}
		logger.Error("Invalid JWT token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		c.Abort()
		return nil, false
	}

	if !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		c.Abort()
		return nil, false
	}

	return claims, true
}
