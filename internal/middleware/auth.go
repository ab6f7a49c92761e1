package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"peppolsheet/internal/apierror"
	"peppolsheet/internal/config"
)

const (
	ClaimsKey = "claims"
)

// AppMetadata is the server-controlled part of a Supabase user; the tenant
// lives here so users cannot change it themselves.
type AppMetadata struct {
	TenantID string `json:"tenant_id"`
}

// SupabaseClaims are the claims of a Supabase-issued access token.
type SupabaseClaims struct {
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

func (c *SupabaseClaims) UserID() string   { return c.Subject }
func (c *SupabaseClaims) TenantID() string { return c.AppMetadata.TenantID }

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &SupabaseClaims{}
		token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireTenant rejects users whose token carries no tenant. Every document
// and submission route is tenant scoped.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.TenantID() == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("user is not assigned to a tenant"))
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose email is not mapped to one of roles in acl.
func RequireRole(acl config.AccessControl, roles ...config.Role) gin.HandlerFunc {
	allowed := make(map[config.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		role, ok := acl.RoleFor(claims.Email)
		if !ok || !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims set by JWTAuth, or nil.
func GetClaims(c *gin.Context) *SupabaseClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*SupabaseClaims)
	return claims
}
