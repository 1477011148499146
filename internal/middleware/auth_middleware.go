package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/pkg/jwt"
)

// AuthContextKey is the key used to store the caller's models.AuthContext in Gin context
const AuthContextKey = "auth"

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("AUTH FAILED: Missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("AUTH FAILED: Invalid auth format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			log.Warn("AUTH FAILED: Empty token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token cannot be empty",
				"code":    "INVALID_AUTH_FORMAT",
			})
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				log.WithError(err).Warn("AUTH FAILED: Token expired")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please log in again.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				log.WithError(err).Warn("AUTH FAILED: Invalid token")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			return
		}

		// The raw token is kept so calls to the booking service run as this user
		authCtx := models.AuthContext{
			UserID: claims.UserID,
			Phone:  claims.Phone,
			Roles:  models.ParseRoles(claims.Roles),
			Token:  tokenString,
		}

		c.Set(AuthContextKey, authCtx)
		c.Set("user_id", claims.UserID.String())
		c.Next()
	}
}

// RequireWalkInAccess allows only roles that may sell at the walk-in counter
func RequireWalkInAccess() gin.HandlerFunc {
	return requireAuth(models.AuthContext.CanSellWalkIn)
}

func requireAuth(allowed func(models.AuthContext) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, exists := GetAuthContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		if !allowed(authCtx) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			return
		}

		c.Next()
	}
}

// GetAuthContext retrieves the caller's auth context from Gin context
func GetAuthContext(c *gin.Context) (models.AuthContext, bool) {
	value, exists := c.Get(AuthContextKey)
	if !exists {
		return models.AuthContext{}, false
	}

	authCtx, ok := value.(models.AuthContext)
	if !ok {
		return models.AuthContext{}, false
	}

	return authCtx, true
}

// MustGetAuthContext retrieves the auth context or panics (use only after AuthMiddleware)
func MustGetAuthContext(c *gin.Context) models.AuthContext {
	authCtx, exists := GetAuthContext(c)
	if !exists {
		panic("auth context not found - ensure AuthMiddleware is applied")
	}
	return authCtx
}
