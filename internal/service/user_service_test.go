package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus-leave/internal/core/cache"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
)

func TestSignupCreatesBalanceAndRejectsDuplicate(t *testing.T) {
	e := newEnv(t)
	id := e.signup(t, "Asha@College.edu", domain.RoleStaff, domain.DeptCSE)
	assert.Equal(t, "asha@college.edu", id.Email)
	assert.Equal(t, 30.0, e.available(t, id.ID))

	u, err := e.users.FindByID(context.Background(), id.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://avatar.vercel.sh/a", u.Image)
	assert.NotEqual(t, "password1", u.PasswordHash)

	_, err = e.Users.Signup(context.Background(), dto.SignupRequest{
		Email: "asha@college.edu", Password: "password1", Name: "Other", RoleID: "3",
		Gender: domain.GenderMale, Department: domain.DeptIT, Phone: "1",
	})
	requireKind(t, err, apperr.KindConflict)
}

func TestRegisterCreatesStudent(t *testing.T) {
	e := newEnv(t)
	v, err := e.Users.Register(context.Background(), dto.RegisterRequest{
		Email: "new@college.edu", Password: "password1", Name: "New",
		Gender: domain.GenderOther, Department: domain.DeptECE, Phone: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, v.Role)
	assert.Equal(t, 30.0, e.available(t, v.ID))
}

func TestListScopesToCallerDepartment(t *testing.T) {
	e := newEnv(t)
	hod := e.signup(t, "hod@college.edu", domain.RoleHOD, domain.DeptCSE)
	admin := e.signup(t, "admin@college.edu", domain.RoleAdmin, domain.DeptAdmin)
	e.signup(t, "staff@college.edu", domain.RoleStaff, domain.DeptCSE)
	e.signup(t, "it@college.edu", domain.RoleStaff, domain.DeptIT)

	page, err := e.Users.List(context.Background(), hod, dto.UserListRequest{RoleID: "All"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "staff@college.edu", page.Items[0].Email)

	page, err = e.Users.List(context.Background(), admin, dto.UserListRequest{SortBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, "hod@college.edu", page.Items[0].Email)

	_, err = e.Users.List(context.Background(), admin, dto.UserListRequest{SortBy: "password"})
	requireKind(t, err, apperr.KindValidation)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	e := newEnv(t)
	admin := e.signup(t, "admin@college.edu", domain.RoleAdmin, domain.DeptAdmin)
	staff := e.signup(t, "staff@college.edu", domain.RoleStaff, domain.DeptCSE)
	e.signup(t, "taken@college.edu", domain.RoleStaff, domain.DeptCSE)
	ctx := context.Background()

	hod := domain.RoleIDOf(domain.RoleHOD)
	v, err := e.Users.Update(ctx, staff.ID, dto.UpdateUserRequest{RoleID: &hod})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHOD, v.Role)

	taken := "taken@college.edu"
	_, err = e.Users.Update(ctx, staff.ID, dto.UpdateUserRequest{Email: &taken})
	requireKind(t, err, apperr.KindConflict)

	requireKind(t, e.Users.Delete(ctx, admin, admin.ID), apperr.KindValidation)
	require.NoError(t, e.Users.Delete(ctx, admin, staff.ID))
	requireKind(t, e.Users.Delete(ctx, admin, staff.ID), apperr.KindNotFound)
}

func TestDashboardCountsAndCaches(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	e.Users = NewUserService(e.users, e.leaves, c, 30, zap.NewNop())

	student := e.signup(t, "s@college.edu", domain.RoleStudent, domain.DeptCSE)
	staff := e.signup(t, "t@college.edu", domain.RoleStaff, domain.DeptCSE)
	_, err := e.Leave.Apply(context.Background(), student, dto.ApplyLeaveRequest{
		RequestedTo: staff.ID, StartDate: "2024-08-05", EndDate: "2024-08-05",
		LeaveType: domain.LeaveSick, Reason: "fever and cold",
	})
	require.NoError(t, err)

	st, err := e.Users.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Pending)
	assert.Equal(t, int64(1), st.Leaves)
	assert.Equal(t, int64(2), st.Users)
	assert.True(t, mr.Exists(dashboardCacheKey))

	e.signup(t, "x@college.edu", domain.RoleStudent, domain.DeptCSE)
	assert.False(t, mr.Exists(dashboardCacheKey))
}
