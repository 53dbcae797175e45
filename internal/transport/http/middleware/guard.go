package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/core/auth"
	"campus-leave/internal/domain"
	resp "campus-leave/internal/transport/http/response"
	"campus-leave/pkg/apperr"
)

const ctxIdentity = "identity"

// Access describes who may call a route. A zero Access admits any signed-in user.
type Access struct {
	Public bool
	Roles  []domain.RoleName
}

func Public() Access                    { return Access{Public: true} }
func Authenticated() Access             { return Access{} }
func Roles(r ...domain.RoleName) Access { return Access{Roles: r} }

func (a Access) admits(role domain.RoleName) bool {
	if len(a.Roles) == 0 {
		return true
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Capabilities maps "METHOD /route/:pattern" to its Access.
type Capabilities map[string]Access

func CapabilityKey(method, fullPath string) string { return method + " " + fullPath }

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*domain.Identity, error)
}

type GuardOptions struct {
	Caps       Capabilities
	JWT        *auth.JWTer
	Identities IdentityResolver
	CookieName string
}

// Guard authorizes every matched route against the capability table.
// Routes missing from the table are refused.
func Guard(o GuardOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := o.Caps[CapabilityKey(c.Request.Method, c.FullPath())]
		if !ok {
			deny(c, resp.CodeForbidden, "", "unlisted")
			return
		}
		if acc.Public {
			c.Next()
			return
		}

		token := TokenFrom(c, o.CookieName)
		if token == "" {
			deny(c, resp.CodeUnauthorized, "Access denied. No token provided.", "missing_token")
			return
		}
		claims, err := o.JWT.Parse(token)
		if err != nil {
			deny(c, resp.CodeUnauthorized, "Invalid token", "invalid_token")
			return
		}
		id, err := o.Identities.ResolveIdentity(c.Request.Context(), claims.UID)
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthenticated) {
				deny(c, resp.CodeUnauthorized, "Invalid token", "unknown_subject")
				return
			}
			_ = c.Error(err)
			deny(c, resp.CodeServerError, "", "resolve_error")
			return
		}
		if !acc.admits(id.Role) {
			deny(c, resp.CodeForbidden, "", "role")
			return
		}
		SetIdentity(c, *id)
		c.Next()
	}
}

func deny(c *gin.Context, code int, msg, reason string) {
	guardDenied.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(code, resp.Error(code, msg))
}

// TokenFrom reads the session token from the cookie, the token header or a
// bearer Authorization header, in that order.
func TokenFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if v := c.GetHeader("token"); v != "" {
		return v
	}
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	return ""
}

func SetIdentity(c *gin.Context, id domain.Identity) { c.Set(ctxIdentity, id) }

func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
