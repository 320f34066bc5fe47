package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/identity"
)

// IdentityResolver is implemented by *identity.Resolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, sessionID string) (identity.Identity, error)
}

// Identify resolves the caller once per request. Requests without a token are
// anonymous; a token that is present but invalid is rejected.
func Identify(secret string, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			setIdentity(c, identity.Identity{Kind: identity.Anonymous})
			c.Next()
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}
		sid, _ := claims["sid"].(string)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), userID, sid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

func setIdentity(c *gin.Context, id identity.Identity) {
	c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).Kind == identity.Anonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please login first"})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).Kind != identity.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) identity.Identity {
	return identity.FromContext(c.Request.Context())
}
