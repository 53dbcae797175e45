// Package handler binds HTTP routes to services. Authorization by role is
// done by the guard; handlers only pull the caller's identity.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/domain"
	"campus-leave/internal/transport/http/middleware"
	"campus-leave/pkg/apperr"
)

func actor(c *gin.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, apperr.Unauthenticated("Access denied. No token provided.")
	}
	return id, nil
}

type empty struct{}

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	Domain string
	Secure bool
	TTL    time.Duration
}

func (o CookieOptions) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(o.Name, token, int(o.TTL/time.Second), "/", o.Domain, o.Secure, true)
}

func (o CookieOptions) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(o.Name, "", -1, "/", o.Domain, o.Secure, true)
}
