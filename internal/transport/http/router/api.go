package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-leave/internal/core/auth"
	"campus-leave/internal/core/config"
	"campus-leave/internal/core/server"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
	"campus-leave/internal/transport/http/handler"
	mdw "campus-leave/internal/transport/http/middleware"
	resp "campus-leave/internal/transport/http/response"
)

type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	JWT    *auth.JWTer

	Auth    *service.AuthService
	Users   *service.UserService
	Leaves  *service.LeaveService
	Blogs   *service.BlogService
	Uploads *service.UploadService
}

func NewAPIEngine(d Deps) *gin.Engine {
	cfg := d.Config
	h := cfg.App.HTTP

	mode := ""
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	r := server.NewRouter(d.Log, server.Options{
		Name:        cfg.App.Name,
		Mode:        mode,
		CORSOrigins: cfg.App.CORSOrigins,
		Recovery:    mdw.RecoveryEnvelope,
	})
	ez.UseJSONFieldNames()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(h.RPS), h.Burst),
		mdw.ConcurrencyLimit(h.MaxInFlight),
		mdw.MaxBodyBytes(int64(h.MaxBodyMB)<<20),
		mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(resp.CodeNotFound, resp.Error(resp.CodeNotFound, "Route not found"))
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Storage.Driver == "local" {
		r.Static("/images", cfg.Storage.LocalDir)
	}

	api := r.Group("", mdw.Guard(mdw.GuardOptions{
		Caps:       Capabilities(),
		JWT:        d.JWT,
		Identities: d.Auth,
		CookieName: cfg.Cookie.Name,
	}))

	cookie := handler.CookieOptions{
		Name:   cfg.Cookie.Name,
		Domain: cfg.Cookie.Domain,
		Secure: cfg.Cookie.Secure,
		TTL:    cfg.JWT.TTL(),
	}
	throttle := mdw.RateLimitPerIP(rate.Limit(h.AuthRPS), h.AuthBurst, 10*time.Minute)

	var reg Registry
	reg.Register(
		handler.NewAuthHandler(d.Auth, d.Users, cookie, cfg.App.FrontendURL, throttle),
		handler.NewAdminHandler(d.Users),
		handler.NewLeaveHandler(d.Leaves),
		handler.NewBlogHandler(d.Blogs),
		handler.NewUploadHandler(d.Uploads),
	)
	reg.MountAll(ez.New(api, d.Log))
	return r
}
