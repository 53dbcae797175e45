package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-leave/internal/core/cache"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
	"campus-leave/pkg/utils"
)

const (
	dashboardCacheKey = "campus-leave:dashboard-info"
	dashboardCacheTTL = 30 * time.Second
)

type UserService struct {
	users        domain.UserRepository
	leaves       domain.LeaveRepository
	cache        *cache.Cache
	defaultTotal float64
	log          *zap.Logger
	now          clock
}

// NewUserService wires the directory service. c may be nil.
func NewUserService(users domain.UserRepository, leaves domain.LeaveRepository, c *cache.Cache, defaultTotal float64, l *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		leaves:       leaves,
		cache:        c,
		defaultTotal: defaultTotal,
		log:          l,
		now:          time.Now,
	}
}

func (s *UserService) Signup(ctx context.Context, in dto.SignupRequest) (*dto.UserView, error) {
	u := &domain.User{
		Email:      in.Email,
		Name:       strings.TrimSpace(in.Name),
		Gender:     in.Gender,
		Department: in.Department,
		RoleID:     in.RoleID,
		Phone:      in.Phone,
		Address:    in.Address,
		Image:      in.Image,
	}
	return s.create(ctx, u, in.Password)
}

func (s *UserService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserView, error) {
	u := &domain.User{
		Email:      in.Email,
		Name:       strings.TrimSpace(in.Name),
		Gender:     in.Gender,
		Department: in.Department,
		RoleID:     domain.RoleIDOf(domain.RoleStudent),
		Phone:      in.Phone,
		Address:    in.Address,
	}
	return s.create(ctx, u, in.Password)
}

// create stores u with a fresh leave balance. The user never exists without one.
func (s *UserService) create(ctx context.Context, u *domain.User, password string) (*dto.UserView, error) {
	u.Email = normalizeEmail(u.Email)
	existing, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, apperr.Internal("find user by email", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exists")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u.ID = utils.NewID()
	u.PasswordHash = hash
	u.Provider = domain.ProviderCredentials
	if u.Image == "" {
		u.Image = domain.DefaultAvatar(u.Name)
	}
	bal := domain.NewLeaveBalance(u.ID, s.defaultTotal, s.now())
	if err := s.users.CreateWithBalance(ctx, u, bal); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal("create user", err)
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role())))
	s.invalidateDashboard(ctx)
	v := dto.NewUserView(u)
	return &v, nil
}

func (s *UserService) List(ctx context.Context, viewer domain.Identity, in dto.UserListRequest) (domain.Page[dto.UserView], error) {
	pq := domain.NewPageQuery(in.Page, in.Limit)
	sortBy, order := in.Sorting()
	sort, err := sortFor(sortBy, order, "name", "email", "department", "phone", "role", "createdAt")
	if err != nil {
		return domain.Page[dto.UserView]{}, err
	}
	f := domain.UserFilter{ExcludeID: viewer.ID, Search: in.Search}
	if in.RoleID != "" && in.RoleID != "All" {
		f.RoleID = in.RoleID
	}
	if viewer.Department != domain.DeptAdmin {
		f.Department = viewer.Department
	}
	users, total, err := s.users.List(ctx, f, pq, sort)
	if err != nil {
		return domain.Page[dto.UserView]{}, apperr.Internal("list users", err)
	}
	return domain.Page[dto.UserView]{Items: dto.NewUserViews(users), Total: total, Query: pq}, nil
}

func (s *UserService) Students(ctx context.Context) ([]dto.UserView, error) {
	users, err := s.users.ListByRole(ctx, domain.RoleStudent, "")
	if err != nil {
		return nil, apperr.Internal("list students", err)
	}
	return dto.NewUserViews(users), nil
}

func (s *UserService) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserView, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.Department != nil {
		u.Department = *in.Department
	}
	if in.RoleID != nil {
		u.RoleID = *in.RoleID
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal("update user", err)
	}
	v := dto.NewUserView(u)
	return &v, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, viewer domain.Identity, in dto.UpdateProfileRequest) (*dto.UserView, error) {
	return s.Update(ctx, viewer.ID, dto.UpdateUserRequest{
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
		Gender:  in.Gender,
	})
}

func (s *UserService) Delete(ctx context.Context, viewer domain.Identity, id string) error {
	if viewer.ID == id {
		return apperr.Validation("You cannot delete your own account", nil)
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return apperr.Internal("delete user", err)
	}
	if !ok {
		return apperr.NotFound(msgUserNotFound)
	}
	s.log.Info("user deleted", zap.String("user_id", id), zap.String("by", viewer.ID))
	s.invalidateDashboard(ctx)
	return nil
}

func (s *UserService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := cache.GetOrLoadJSON(s.cache, ctx, dashboardCacheKey, dashboardCacheTTL, s.loadDashboard)
	if err != nil {
		return nil, apperr.Internal("dashboard stats", err)
	}
	return stats, nil
}

func (s *UserService) loadDashboard(ctx context.Context) (*dto.DashboardStats, error) {
	counts, err := s.leaves.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count leaves: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	st := &dto.DashboardStats{
		Pending:  counts[domain.StatusPending],
		Approved: counts[domain.StatusApproved],
		Rejected: counts[domain.StatusRejected],
		Users:    users,
	}
	st.Leaves = st.Pending + st.Approved + st.Rejected
	return st, nil
}

func (s *UserService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.log.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}
