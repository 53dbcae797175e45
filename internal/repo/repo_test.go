package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-leave/internal/core/database"
	"campus-leave/internal/domain"
	"campus-leave/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "repo.db"),
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func mkUser(t *testing.T, users *UserRepo, role domain.RoleName, dept domain.Department, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:         utils.NewID(),
		Email:      email,
		Provider:   domain.ProviderCredentials,
		Name:       email,
		Department: dept,
		RoleID:     domain.RoleIDOf(role),
	}
	b := domain.NewLeaveBalance("", 30, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, users.CreateWithBalance(context.Background(), u, b))
	return u
}

func mkLeave(t *testing.T, leaves *LeaveRepo, from, to *domain.User, start, end string) *domain.LeaveRequest {
	t.Helper()
	s, err := domain.ParseDate(start)
	require.NoError(t, err)
	e, err := domain.ParseDate(end)
	require.NoError(t, err)
	l := &domain.LeaveRequest{
		ID:        utils.NewID(),
		UserID:    from.ID,
		RequestTo: to.ID,
		StartDate: s,
		EndDate:   e,
		LeaveType: domain.LeaveFullDay,
		Reason:    "family function",
		Status:    domain.StatusPending,
	}
	require.NoError(t, leaves.Create(context.Background(), l))
	return l
}

func TestCreateWithBalanceRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "dup@college.edu")

	u := &domain.User{ID: utils.NewID(), Email: "dup@college.edu", Name: "x", RoleID: "4"}
	err := users.CreateWithBalance(context.Background(), u, domain.NewLeaveBalance("", 30, time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	var n int64
	require.NoError(t, db.Model(&domain.LeaveBalance{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestTransitionAppliesAdjustmentToLatestYear(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	ctx := context.Background()
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	older := &domain.LeaveBalance{UserID: student.ID, AcademicYear: "2023-2024", TotalLeaves: 30, AvailableLeave: 30}
	require.NoError(t, db.Create(older).Error)

	l := mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-02")
	got, bal, err := leaves.Transition(ctx, domain.Transition{
		LeaveID: l.ID, RequesterID: student.ID, From: domain.StatusPending, To: domain.StatusApproved,
		ApproverID: staff.ID, Adjustment: -2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	require.NotNil(t, got.ApproveBy)
	assert.Equal(t, staff.ID, *got.ApproveBy)
	assert.Equal(t, "2024-2025", bal.AcademicYear)
	assert.Equal(t, 28.0, bal.AvailableLeave)
	assert.Equal(t, 2.0, bal.UsedLeaves)

	require.NoError(t, db.First(older, older.ID).Error)
	assert.Equal(t, 30.0, older.AvailableLeave)
}

func TestTransitionLostRaceChangesNothing(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	ctx := context.Background()
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	l := mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-01")

	tr := domain.Transition{LeaveID: l.ID, RequesterID: student.ID, From: domain.StatusPending,
		To: domain.StatusApproved, ApproverID: staff.ID, Adjustment: -1}
	_, _, err := leaves.Transition(ctx, tr)
	require.NoError(t, err)

	_, _, err = leaves.Transition(ctx, tr)
	assert.ErrorIs(t, err, domain.ErrStaleTransition)

	bal, err := leaves.LatestBalance(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 29.0, bal.AvailableLeave)
}

func TestTransitionRollsBackWithoutBalance(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	ctx := context.Background()
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	l := mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-01")
	require.NoError(t, db.Where("user_id = ?", student.ID).Delete(&domain.LeaveBalance{}).Error)

	_, _, err := leaves.Transition(ctx, domain.Transition{LeaveID: l.ID, RequesterID: student.ID,
		From: domain.StatusPending, To: domain.StatusApproved, ApproverID: staff.ID, Adjustment: -1})
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	got, err := leaves.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.ApproveBy)
}

func TestListPaginatesWithTotal(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	for i := 0; i < 25; i++ {
		d := fmt.Sprintf("2024-09-%02d", i+1)
		mkLeave(t, leaves, student, staff, d, d)
	}

	rows, total, err := leaves.List(context.Background(),
		domain.LeaveFilter{InboxScope: domain.InboxScope{RequestTo: staff.ID}},
		domain.NewPageQuery(2, 10), domain.Sort{Column: "startDate"})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, rows, 10)
	assert.Equal(t, "2024-09-11", rows[0].StartDate.Format(time.DateOnly))
	assert.Equal(t, "s@college.edu", rows[0].RequesterEmail)
	assert.Equal(t, "t@college.edu", rows[0].RequestedToName)
}

func TestHODDepartmentScopeExcludesOwnAndOtherDepartments(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	admin := mkUser(t, users, domain.RoleAdmin, domain.DeptAdmin, "admin@college.edu")
	hod := mkUser(t, users, domain.RoleHOD, domain.DeptCSE, "hod@college.edu")
	staffCSE := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "staff-cse@college.edu")
	staffIT := mkUser(t, users, domain.RoleStaff, domain.DeptIT, "staff-it@college.edu")
	studentCSE := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "stu-cse@college.edu")

	mkLeave(t, leaves, hod, admin, "2024-08-01", "2024-08-01")
	want1 := mkLeave(t, leaves, staffCSE, hod, "2024-08-02", "2024-08-02")
	want2 := mkLeave(t, leaves, studentCSE, staffCSE, "2024-08-03", "2024-08-03")
	mkLeave(t, leaves, staffIT, admin, "2024-08-04", "2024-08-04")

	scope, err := domain.ResolveInbox(hod.Identity(), true)
	require.NoError(t, err)
	rows, total, err := leaves.List(context.Background(), domain.LeaveFilter{InboxScope: scope},
		domain.NewPageQuery(1, 10), domain.Sort{Column: "startDate"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, want1.ID, rows[0].ID)
	assert.Equal(t, want2.ID, rows[1].ID)
}

func TestListSearchAndDateOverlap(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	a := mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-05")
	mkLeave(t, leaves, student, staff, "2024-08-10", "2024-08-12")

	from, _ := domain.ParseDate("2024-08-04")
	to, _ := domain.ParseDate("2024-08-06")
	rows, total, err := leaves.List(context.Background(),
		domain.LeaveFilter{RequesterID: student.ID, From: &from, To: &to},
		domain.NewPageQuery(1, 10), domain.Sort{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, rows[0].ID)

	_, total, err = leaves.List(context.Background(),
		domain.LeaveFilter{RequesterID: student.ID, Search: "FAMILY", SearchMode: domain.SearchPersonal},
		domain.NewPageQuery(1, 10), domain.Sort{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestDeleteApprovedRefunds(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	ctx := context.Background()
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	l := mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-03")
	got, _, err := leaves.Transition(ctx, domain.Transition{LeaveID: l.ID, RequesterID: student.ID,
		From: domain.StatusPending, To: domain.StatusApproved, ApproverID: staff.ID, Adjustment: -3})
	require.NoError(t, err)

	require.NoError(t, leaves.Delete(ctx, got, 3))
	bal, err := leaves.LatestBalance(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, bal.AvailableLeave)
	assert.Equal(t, 0.0, bal.UsedLeaves)

	assert.ErrorIs(t, leaves.Delete(ctx, got, 3), domain.ErrStaleTransition)
}

func TestUserDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	users, leaves, blogs := NewUserRepo(db), NewLeaveRepo(db), NewBlogRepo(db)
	ctx := context.Background()
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	other := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "o@college.edu")
	mkLeave(t, leaves, student, staff, "2024-08-01", "2024-08-01")
	approved := mkLeave(t, leaves, other, staff, "2024-08-02", "2024-08-02")
	_, _, err := leaves.Transition(ctx, domain.Transition{LeaveID: approved.ID, RequesterID: other.ID,
		From: domain.StatusPending, To: domain.StatusApproved, ApproverID: staff.ID, Adjustment: -1})
	require.NoError(t, err)
	require.NoError(t, blogs.Create(ctx, &domain.BlogPost{ID: utils.NewID(), AuthorID: staff.ID, Title: "t", Content: "c"}))

	ok, err := users.Delete(ctx, staff.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var n int64
	require.NoError(t, db.Model(&domain.BlogPost{}).Count(&n).Error)
	assert.Zero(t, n)
	got, err := leaves.FindByID(ctx, approved.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ApproveBy)
	bal, err := leaves.LatestBalance(ctx, staff.ID)
	require.NoError(t, err)
	assert.Nil(t, bal)

	ok, err = users.Delete(ctx, staff.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserListFiltersAndExcludesCaller(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	hod := mkUser(t, users, domain.RoleHOD, domain.DeptCSE, "hod@college.edu")
	mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "staff@college.edu")
	mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "stu@college.edu")
	mkUser(t, users, domain.RoleStudent, domain.DeptIT, "it@college.edu")

	got, total, err := users.List(context.Background(),
		domain.UserFilter{ExcludeID: hod.ID, Department: domain.DeptCSE},
		domain.NewPageQuery(1, 10), domain.Sort{Column: "email"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "staff@college.edu", got[0].Email)

	_, total, err = users.List(context.Background(),
		domain.UserFilter{RoleID: domain.RoleIDOf(domain.RoleStudent), Search: "IT@"},
		domain.NewPageQuery(1, 10), domain.Sort{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestResetPasswordConsumesCode(t *testing.T) {
	db := newTestDB(t)
	users, otps := NewUserRepo(db), NewOTPRepo(db)
	ctx := context.Background()
	u := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")

	first := &domain.OneTimeCode{Email: u.Email, Code: "1111", CreatedAt: time.Now()}
	require.NoError(t, otps.Replace(ctx, first))
	second := &domain.OneTimeCode{Email: u.Email, Code: "2222", CreatedAt: time.Now()}
	require.NoError(t, otps.Replace(ctx, second))

	gone, err := otps.Find(ctx, u.Email, "1111")
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, users.ResetPassword(ctx, u.Email, "hash", second.ID))
	assert.ErrorIs(t, users.ResetPassword(ctx, u.Email, "hash2", second.ID), domain.ErrCodeConsumed)

	got, err := users.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestOTPPurge(t *testing.T) {
	db := newTestDB(t)
	otps := NewOTPRepo(db)
	ctx := context.Background()
	now := time.Date(2024, 8, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, otps.Replace(ctx, &domain.OneTimeCode{Email: "a@x.io", Code: "1234", CreatedAt: now.Add(-11 * time.Minute)}))
	require.NoError(t, otps.Replace(ctx, &domain.OneTimeCode{Email: "b@x.io", Code: "5678", CreatedAt: now.Add(-time.Minute)}))

	n, err := otps.DeleteIssuedBefore(ctx, now.Add(-domain.OTPTTL))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPendingByApproverAndCounts(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	ctx := context.Background()
	s1 := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s1@college.edu")
	s2 := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s2@college.edu")
	staffA := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "a@college.edu")
	staffB := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "b@college.edu")
	mkLeave(t, leaves, s1, staffA, "2024-08-01", "2024-08-01")
	mkLeave(t, leaves, s2, staffA, "2024-08-02", "2024-08-02")
	done := mkLeave(t, leaves, s1, staffB, "2024-08-03", "2024-08-03")
	_, _, err := leaves.Transition(ctx, domain.Transition{LeaveID: done.ID, RequesterID: s1.ID,
		From: domain.StatusPending, To: domain.StatusRejected, ApproverID: staffB.ID})
	require.NoError(t, err)

	digests, err := leaves.PendingByApprover(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, "a@college.edu", digests[0].Email)
	assert.Equal(t, int64(2), digests[0].Pending)

	counts, err := leaves.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusPending])
	assert.Equal(t, int64(1), counts[domain.StatusRejected])
}

func TestBalanceChartKeepsLatestYearPerUser(t *testing.T) {
	db := newTestDB(t)
	users, leaves := NewUserRepo(db), NewLeaveRepo(db)
	student := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "s@college.edu")
	staff := mkUser(t, users, domain.RoleStaff, domain.DeptCSE, "t@college.edu")
	older := &domain.LeaveBalance{UserID: student.ID, AcademicYear: "2023-2024", TotalLeaves: 30, AvailableLeave: 4}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Model(&domain.LeaveBalance{}).
		Where("user_id = ? AND academic_year = ?", staff.ID, "2024-2025").
		Update("available_leave", 12).Error)

	rows, err := leaves.BalanceChart(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, staff.ID, rows[0].UserID)
	assert.Equal(t, 12.0, rows[0].AvailableLeave)
	assert.Equal(t, student.ID, rows[1].UserID)
	assert.Equal(t, "2024-2025", rows[1].AcademicYear)
	assert.Equal(t, 30.0, rows[1].AvailableLeave)
}

func TestBlogFindRowCarriesAuthor(t *testing.T) {
	db := newTestDB(t)
	users, blogs := NewUserRepo(db), NewBlogRepo(db)
	ctx := context.Background()
	author := mkUser(t, users, domain.RoleStudent, domain.DeptCSE, "writer@college.edu")
	b := &domain.BlogPost{ID: utils.NewID(), AuthorID: author.ID, Title: "Hostel rules", Content: "Lights out at 11."}
	require.NoError(t, blogs.Create(ctx, b))

	row, err := blogs.FindRow(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Hostel rules", row.Title)
	assert.Equal(t, "writer@college.edu", row.AuthorName)

	row, err = blogs.FindRow(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, row)
}
