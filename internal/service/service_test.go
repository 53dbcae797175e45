package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-leave/internal/core/auth"
	"campus-leave/internal/core/database"
	"campus-leave/internal/core/mailer"
	"campus-leave/internal/core/oauth"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/internal/repo"
	"campus-leave/pkg/apperr"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeOAuth struct{ profile *oauth.Profile }

func (f fakeOAuth) AuthCodeURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (f fakeOAuth) Exchange(context.Context, string) (*oauth.Profile, error) { return f.profile, nil }

type testEnv struct {
	db     *gorm.DB
	users  *repo.UserRepo
	leaves *repo.LeaveRepo
	otps   *repo.OTPRepo
	mail   *fakeMailer
	jwt    *auth.JWTer
	now    time.Time

	Auth  *AuthService
	Users *UserService
	Leave *LeaveService
	Blogs *BlogService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "svc.db"),
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))

	e := &testEnv{
		db:     db,
		users:  repo.NewUserRepo(db),
		leaves: repo.NewLeaveRepo(db),
		otps:   repo.NewOTPRepo(db),
		mail:   &fakeMailer{},
		now:    time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	e.jwt = &auth.JWTer{Secret: []byte("0123456789abcdef0123"), Issuer: "test", TTL: 24 * time.Hour}
	log := zap.NewNop()
	e.Auth = NewAuthService(e.users, e.otps, e.jwt, e.mail, nil, 30, log)
	e.Users = NewUserService(e.users, e.leaves, nil, 30, log)
	e.Leave = NewLeaveService(e.leaves, e.users, log)
	e.Blogs = NewBlogService(repo.NewBlogRepo(db))
	clk := func() time.Time { return e.now }
	e.Auth.now, e.Users.now, e.Leave.now = clk, clk, clk
	return e
}

func (e *testEnv) signup(t *testing.T, email string, role domain.RoleName, dept domain.Department) domain.Identity {
	t.Helper()
	v, err := e.Users.Signup(context.Background(), dto.SignupRequest{
		Email:      email,
		Password:   "password1",
		Name:       email,
		Gender:     domain.GenderFemale,
		Department: dept,
		RoleID:     domain.RoleIDOf(role),
		Phone:      "9999999999",
	})
	require.NoError(t, err)
	u, err := e.users.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	return u.Identity()
}

func (e *testEnv) available(t *testing.T, userID string) float64 {
	t.Helper()
	b, err := e.leaves.LatestBalance(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.AvailableLeave
}

func requireKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apperr.KindOf(err), "error: %v", err)
}
