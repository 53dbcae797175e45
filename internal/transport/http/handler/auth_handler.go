package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/dto"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
	"campus-leave/internal/transport/http/middleware"
	"campus-leave/pkg/apperr"
	"campus-leave/pkg/utils"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	auth        *service.AuthService
	users       *service.UserService
	cookie      CookieOptions
	frontendURL string
	throttle    gin.HandlerFunc
}

// NewAuthHandler serves login, registration and password recovery. throttle,
// when set, guards the credential-guessing routes.
func NewAuthHandler(auth *service.AuthService, users *service.UserService, cookie CookieOptions, frontendURL string, throttle gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookie: cookie, frontendURL: frontendURL, throttle: throttle}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) Mount(e ez.EZ) {
	limited := e
	if h.throttle != nil {
		limited = e.Group(h.throttle)
	}

	ez.RegisterAction(limited, ez.Action[dto.LoginRequest, *dto.LoginResponse]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: "Login successful",
		Handler: func(c *gin.Context, in *dto.LoginRequest) (*dto.LoginResponse, error) {
			out, err := h.auth.Login(c.Request.Context(), *in)
			if err != nil {
				return nil, err
			}
			h.cookie.set(c, out.Token)
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[empty, any]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Binder:  ez.BindNone,
		Message: "Logout successful",
		Handler: func(c *gin.Context, _ *empty) (any, error) {
			h.cookie.clear(c)
			return nil, nil
		},
	})

	ez.RegisterAction(limited, ez.Action[dto.RegisterRequest, *dto.UserView]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Handler: func(c *gin.Context, in *dto.RegisterRequest) (*dto.UserView, error) {
			return h.users.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(limited, ez.Action[dto.ForgotPasswordRequest, any]{
		Method:  http.MethodPost,
		Path:    "/forgetPassword",
		Binder:  ez.BindJSON,
		Message: "OTP sent to your email",
		Handler: func(c *gin.Context, in *dto.ForgotPasswordRequest) (any, error) {
			return nil, h.auth.RequestOTP(c.Request.Context(), in.Email)
		},
	})

	ez.RegisterAction(limited, ez.Action[dto.MatchOTPRequest, any]{
		Method:  http.MethodPost,
		Path:    "/match-otp",
		Binder:  ez.BindJSON,
		Message: "OTP verified",
		Handler: func(c *gin.Context, in *dto.MatchOTPRequest) (any, error) {
			return nil, h.auth.MatchOTP(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(limited, ez.Action[dto.ResetPasswordRequest, any]{
		Method:  http.MethodPost,
		Path:    "/reset-password",
		Binder:  ez.BindJSON,
		Message: "Password reset successfully",
		Handler: func(c *gin.Context, in *dto.ResetPasswordRequest) (any, error) {
			return nil, h.auth.ResetPassword(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, *dto.UserView]{
		Method: http.MethodGet,
		Path:   "/whoami",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) (*dto.UserView, error) {
			id, err := actor(c)
			if err != nil {
				return nil, err
			}
			return h.auth.WhoAmI(c.Request.Context(), id.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.VerifyRequest, *dto.UserView]{
		Method: http.MethodPost,
		Path:   "/verify",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, in *dto.VerifyRequest) (*dto.UserView, error) {
			// an empty body is fine, the cookie or header may carry the token
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(in); err != nil {
					return nil, apperr.Field("Invalid input", "body", "is not valid JSON")
				}
			}
			token := in.Token
			if token == "" {
				token = middleware.TokenFrom(c, h.cookie.Name)
			}
			return h.auth.Verify(c.Request.Context(), token)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.UpdateProfileRequest, *dto.UserView]{
		Method:  http.MethodPatch,
		Path:    "/update-profile",
		Binder:  ez.BindJSON,
		Message: "Profile updated successfully",
		Handler: func(c *gin.Context, in *dto.UpdateProfileRequest) (*dto.UserView, error) {
			id, err := actor(c)
			if err != nil {
				return nil, err
			}
			return h.users.UpdateProfile(c.Request.Context(), id, *in)
		},
	})

	h.mountGoogle(e)
}

type googleCallback struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

func (h *AuthHandler) mountGoogle(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[empty, any]{
		Method: http.MethodGet,
		Path:   "/auth/google",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) (any, error) {
			state, err := utils.RandomToken(16)
			if err != nil {
				return nil, apperr.Internal("oauth state", err)
			}
			url, err := h.auth.GoogleAuthURL(state)
			if err != nil {
				return nil, err
			}
			// Lax: the cookie has to survive the cross-site return from Google
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(oauthStateCookie, state, 600, "/auth/google", h.cookie.Domain, h.cookie.Secure, true)
			c.Redirect(http.StatusFound, url)
			return nil, nil
		},
	})

	ez.RegisterAction(e, ez.Action[googleCallback, any]{
		Method: http.MethodGet,
		Path:   "/auth/google/callback",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *googleCallback) (any, error) {
			want, err := c.Cookie(oauthStateCookie)
			if err != nil || want == "" || want != in.State {
				return nil, apperr.Unauthenticated("Invalid OAuth state")
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(oauthStateCookie, "", -1, "/auth/google", h.cookie.Domain, h.cookie.Secure, true)

			out, err := h.auth.GoogleCallback(c.Request.Context(), in.Code)
			if err != nil {
				return nil, err
			}
			h.cookie.set(c, out.Token)
			c.Redirect(http.StatusFound, h.frontendURL)
			return nil, nil
		},
	})
}
