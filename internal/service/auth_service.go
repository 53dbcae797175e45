package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-leave/internal/core/auth"
	"campus-leave/internal/core/mailer"
	"campus-leave/internal/core/oauth"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
	"campus-leave/pkg/utils"
)

const msgInvalidOTP = "Invalid OTP"

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

type AuthService struct {
	users        domain.UserRepository
	otps         domain.OTPRepository
	jwt          *auth.JWTer
	mail         mailer.Sender
	oauth        OAuthProvider
	defaultTotal float64
	log          *zap.Logger
	now          clock
}

// NewAuthService builds the credential service. provider may be nil when
// Google sign-in is not configured.
func NewAuthService(
	users domain.UserRepository,
	otps domain.OTPRepository,
	jwt *auth.JWTer,
	mail mailer.Sender,
	provider OAuthProvider,
	defaultTotal float64,
	l *zap.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		otps:         otps,
		jwt:          jwt,
		mail:         mail,
		oauth:        provider,
		defaultTotal: defaultTotal,
		log:          l,
		now:          time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, apperr.Internal("find user by email", err)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if u.Provider != domain.ProviderCredentials {
		return nil, apperr.Unauthenticated("This account signs in with Google")
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, apperr.Unauthenticated("Invalid password")
	}
	return s.session(u)
}

func (s *AuthService) session(u *domain.User) (*dto.LoginResponse, error) {
	token, err := s.jwt.Issue(u.Identity())
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &dto.LoginResponse{Token: token, User: dto.NewUserView(u)}, nil
}

// ResolveIdentity loads the live account behind a token subject.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (*domain.Identity, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load identity", err)
	}
	if u == nil {
		return nil, apperr.Unauthenticated(msgUserNotFound)
	}
	id := u.Identity()
	return &id, nil
}

func (s *AuthService) WhoAmI(ctx context.Context, userID string) (*dto.UserView, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("whoami", err)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	v := dto.NewUserView(u)
	return &v, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (*dto.UserView, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Access denied. No token provided.")
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid token")
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, apperr.Internal("verify token", err)
	}
	if u == nil {
		return nil, apperr.Unauthenticated("Invalid token")
	}
	v := dto.NewUserView(u)
	return &v, nil
}

func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", apperr.NotFound("Google sign-in is not configured")
	}
	return s.oauth.AuthCodeURL(state), nil
}

// GoogleCallback signs in the Google account behind code, provisioning a
// student account with a leave balance on first use.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	if s.oauth == nil {
		return nil, apperr.NotFound("Google sign-in is not configured")
	}
	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("google exchange failed", zap.Error(err))
		return nil, apperr.Unauthenticated("Google sign-in failed")
	}
	email := normalizeEmail(profile.Email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("find user by email", err)
	}
	if u != nil {
		return s.session(u)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	u = &domain.User{
		ID:         utils.NewID(),
		Email:      email,
		Provider:   domain.ProviderGoogle,
		Name:       name,
		Department: domain.DeptCSE,
		RoleID:     domain.RoleIDOf(domain.RoleStudent),
		Image:      profile.Picture,
	}
	if u.Image == "" {
		u.Image = domain.DefaultAvatar(name)
	}
	err = s.users.CreateWithBalance(ctx, u, domain.NewLeaveBalance(u.ID, s.defaultTotal, s.now()))
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// lost a race with a parallel callback for the same account
		existing, ferr := s.users.FindByEmail(ctx, email)
		if ferr == nil && existing != nil {
			return s.session(existing)
		}
	}
	if err != nil {
		return nil, apperr.Internal("provision google user", err)
	}
	s.log.Info("google user provisioned", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("find user by email", err)
	}
	if u == nil {
		return apperr.NotFound(msgUserNotFound)
	}
	code, err := utils.NumericCode(domain.OTPDigits)
	if err != nil {
		return apperr.Internal("generate otp", err)
	}
	if err := s.otps.Replace(ctx, &domain.OneTimeCode{Email: email, Code: code, CreatedAt: s.now()}); err != nil {
		return apperr.Internal("store otp", err)
	}
	msg, err := mailer.PasswordResetCode(email, code, int(domain.OTPTTL/time.Minute))
	if err != nil {
		return apperr.Internal("render otp mail", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return apperr.Internal("send otp mail", err)
	}
	return nil
}

func (s *AuthService) checkOTP(ctx context.Context, email, code string) (*domain.OneTimeCode, error) {
	c, err := s.otps.Find(ctx, normalizeEmail(email), code)
	if err != nil {
		return nil, apperr.Internal("find otp", err)
	}
	if c == nil {
		return nil, apperr.NotFound(msgInvalidOTP)
	}
	if c.Expired(s.now()) {
		return nil, apperr.Expired("OTP expired")
	}
	return c, nil
}

// MatchOTP checks a code without consuming it.
func (s *AuthService) MatchOTP(ctx context.Context, in dto.MatchOTPRequest) error {
	_, err := s.checkOTP(ctx, in.Email, in.OTP)
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	c, err := s.checkOTP(ctx, in.Email, in.OTP)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.users.ResetPassword(ctx, c.Email, hash, c.ID); err != nil {
		if errors.Is(err, domain.ErrCodeConsumed) {
			return apperr.NotFound(msgInvalidOTP)
		}
		return apperr.Internal("reset password", err)
	}
	s.log.Info("password reset", zap.String("email", c.Email))
	return nil
}
