package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/service/auth"
	"github.com/medisync/hms-api/pkg/httputil"
)

const contextClaims = "auth_claims"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and stores the claims in the
// request context for handlers to pick up.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(contextClaims, claims)
		c.Next()
	}
}

// OptionalAuthenticate sets claims when a valid bearer token is present and
// passes the request through otherwise. Used on routes that behave
// differently for anonymous and authenticated callers.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := m.authService.ValidateToken(parts[1]); err == nil {
				c.Set(contextClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not in the allowed set.
// Finer ownership checks live in the services.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, "missing authentication")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, httputil.Response{Status: "error", Message: "insufficient role"})
		c.Abort()
	}
}

// GetClaims returns the token claims set by Authenticate.
func GetClaims(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(contextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, httputil.Response{Status: "error", Message: message})
	c.Abort()
}
