package middlewares

import (
	"GoodDental/access"
	"GoodDental/utils"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKey defines a custom context key type to store the caller in the context.
type contextKey string

const identityKey contextKey = "identity"

var errNoIdentity = errors.New("identity not found in context")

// Authenticator resolves an access token to the current identity of its
// employee.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (access.Identity, error)
}

// TokenAuthMiddleware validates the access token and stores the caller's
// identity in the request context. The token is read from the Authorization
// header, then the access token cookie, then the accessToken query parameter.
func TokenAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if !identity.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(utils.AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("accessToken")
}

// RequireRoles lets through callers whose role is in roles.
func RequireRoles(roles access.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := IdentityFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User role not found in context"})
			return
		}
		if !access.Permits(identity, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			return
		}
		c.Next()
	}
}

// RequireRoute restricts a group to the roles the menu grants for path.
func RequireRoute(path string) gin.HandlerFunc {
	return RequireRoles(access.RolesFor(path))
}

func WithIdentity(ctx context.Context, identity access.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the caller stored by TokenAuthMiddleware.
func IdentityFromContext(ctx context.Context) (access.Identity, error) {
	identity, ok := ctx.Value(identityKey).(access.Identity)
	if !ok {
		return access.Identity{}, errNoIdentity
	}
	return identity, nil
}
