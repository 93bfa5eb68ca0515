package middleware

import (
	"net/http"
	"os"
	"strings"

	"pos-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by RequireAuth for downstream handlers.
const (
	CtxUserID       = "userID"
	CtxUserRole     = "userRole"
	CtxOperatorName = "operatorName"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireAuth validates the bearer token and stashes the operator identity in
// the gin context. Handlers read the operator from here and thread it
// explicitly into the services; nothing below the HTTP boundary looks at the
// token again.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		c.Set(CtxUserID, claims["sub"])
		if role, ok := claims["role"].(string); ok {
			c.Set(CtxUserRole, role)
		}
		setOperator(c, claims)

		c.Next()
	}
}

// RequireRole validates the bearer token and additionally checks that the
// token's role is one of allowedRoles.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Fail("Role not found in token"))
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Fail("Access denied: insufficient permissions"))
			return
		}

		c.Set(CtxUserID, claims["sub"])
		c.Set(CtxUserRole, userRole)
		setOperator(c, claims)

		c.Next()
	}
}

// Operator returns the display name of the authenticated operator, falling
// back to the username claim.
func Operator(c *gin.Context) string {
	if name := c.GetString(CtxOperatorName); name != "" {
		return name
	}
	return "unknown"
}

func setOperator(c *gin.Context, claims jwt.MapClaims) {
	if name, ok := claims["name"].(string); ok && name != "" {
		c.Set(CtxOperatorName, name)
		return
	}
	if username, ok := claims["username"].(string); ok {
		c.Set(CtxOperatorName, username)
	}
}

func parseBearer(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Authorization is missing"))
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Invalid authorization format. Expected 'Bearer <token>'"))
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Fail("Invalid token claims"))
		return nil, false
	}
	return claims, true
}
