package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
)

type leaveFixture struct {
	e       *testEnv
	student domain.Identity
	staff   domain.Identity
	hod     domain.Identity
	admin   domain.Identity
}

func newLeaveFixture(t *testing.T) *leaveFixture {
	e := newEnv(t)
	return &leaveFixture{
		e:       e,
		student: e.signup(t, "student@college.edu", domain.RoleStudent, domain.DeptCSE),
		staff:   e.signup(t, "staff@college.edu", domain.RoleStaff, domain.DeptCSE),
		hod:     e.signup(t, "hod@college.edu", domain.RoleHOD, domain.DeptCSE),
		admin:   e.signup(t, "admin@college.edu", domain.RoleAdmin, domain.DeptAdmin),
	}
}

func (f *leaveFixture) apply(t *testing.T, typ domain.LeaveType, start, end string) *dto.LeaveView {
	t.Helper()
	v, err := f.e.Leave.Apply(context.Background(), f.student, dto.ApplyLeaveRequest{
		RequestedTo: f.staff.ID, StartDate: start, EndDate: end, LeaveType: typ, Reason: "family function",
	})
	require.NoError(t, err)
	return v
}

func TestHalfDayApprovalDeductsHalf(t *testing.T) {
	f := newLeaveFixture(t)
	l := f.apply(t, domain.LeaveHalfDay, "2024-01-10", "2024-01-10")
	assert.Equal(t, domain.StatusPending, l.Status)
	assert.Equal(t, 30.0, f.e.available(t, f.student.ID))

	res, err := f.e.Leave.UpdateStatus(context.Background(), f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 29.5, res.Balance.AvailableLeave)
	assert.Equal(t, 0.5, res.Balance.UsedLeaves)
	require.NotNil(t, res.Leave.ApprovedBy)
	assert.Equal(t, f.staff.ID, res.Leave.ApprovedBy.ID)
	assert.Equal(t, domain.StatusApproved, res.Leave.Status)
}

func TestApproveThenRejectRestoresBalance(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	l := f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-12")

	_, err := f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 27.0, f.e.available(t, f.student.ID))

	_, err = f.e.Leave.UpdateStatus(ctx, f.hod, l.ID, domain.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 30.0, f.e.available(t, f.student.ID))

	_, err = f.e.Leave.UpdateStatus(ctx, f.admin, l.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 27.0, f.e.available(t, f.student.ID))
}

func TestRepeatedStatusIsConflictWithoutBalanceChange(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	l := f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-10")

	_, err := f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)
	_, err = f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, 29.0, f.e.available(t, f.student.ID))
}

func TestOnlySlotHoldersDecide(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	otherStaff := f.e.signup(t, "staff2@college.edu", domain.RoleStaff, domain.DeptCSE)
	itHOD := f.e.signup(t, "hod-it@college.edu", domain.RoleHOD, domain.DeptIT)
	l := f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-10")

	for _, who := range []domain.Identity{f.student, otherStaff, itHOD} {
		_, err := f.e.Leave.UpdateStatus(ctx, who, l.ID, domain.StatusApproved)
		requireKind(t, err, apperr.KindForbidden)
	}
	_, err := f.e.Leave.UpdateStatus(ctx, f.staff, "missing", domain.StatusApproved)
	requireKind(t, err, apperr.KindNotFound)
}

func TestApplyValidatesDatesAndApprover(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	itStaff := f.e.signup(t, "it-staff@college.edu", domain.RoleStaff, domain.DeptIT)

	in := dto.ApplyLeaveRequest{RequestedTo: f.staff.ID, StartDate: "2024-01-12", EndDate: "2024-01-10",
		LeaveType: domain.LeaveSick, Reason: "fever and cold"}
	_, err := f.e.Leave.Apply(ctx, f.student, in)
	requireKind(t, err, apperr.KindValidation)

	in.StartDate, in.EndDate = "2024-01-10", "2024-01-10"
	in.RequestedTo = itStaff.ID
	_, err = f.e.Leave.Apply(ctx, f.student, in)
	requireKind(t, err, apperr.KindValidation)

	in.RequestedTo = f.hod.ID
	_, err = f.e.Leave.Apply(ctx, f.student, in)
	requireKind(t, err, apperr.KindValidation)

	in.RequestedTo = "nobody"
	_, err = f.e.Leave.Apply(ctx, f.student, in)
	requireKind(t, err, apperr.KindNotFound)

	in.RequestedTo = f.hod.ID
	v, err := f.e.Leave.Apply(ctx, f.staff, in)
	require.NoError(t, err)
	assert.Equal(t, "hod@college.edu", v.RequestedTo.Name)
}

func TestEditOnlyWhilePending(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	l := f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-10")

	in := dto.ApplyLeaveRequest{RequestedTo: f.staff.ID, StartDate: "2024-01-11", EndDate: "2024-01-13",
		LeaveType: domain.LeaveCasual, Reason: "cousin's wedding"}
	_, err := f.e.Leave.Edit(ctx, f.staff, l.ID, in)
	requireKind(t, err, apperr.KindForbidden)

	v, err := f.e.Leave.Edit(ctx, f.student, l.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Days)
	assert.Equal(t, domain.StatusPending, v.Status)

	_, err = f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 27.0, f.e.available(t, f.student.ID))

	_, err = f.e.Leave.Edit(ctx, f.student, l.ID, in)
	requireKind(t, err, apperr.KindConflict)
}

func TestDeleteApprovedLeaveRefunds(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	l := f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-11")
	_, err := f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)

	requireKind(t, f.e.Leave.Delete(ctx, f.staff, l.ID), apperr.KindForbidden)
	require.NoError(t, f.e.Leave.Delete(ctx, f.student, l.ID))
	assert.Equal(t, 30.0, f.e.available(t, f.student.ID))
	requireKind(t, f.e.Leave.Delete(ctx, f.student, l.ID), apperr.KindNotFound)
}

func TestInboxVisibility(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-10")
	_, err := f.e.Leave.Apply(ctx, f.hod, dto.ApplyLeaveRequest{RequestedTo: f.admin.ID,
		StartDate: "2024-01-15", EndDate: "2024-01-15", LeaveType: domain.LeaveOther, Reason: "conference travel"})
	require.NoError(t, err)

	page, err := f.e.Leave.Inbox(ctx, f.staff, dto.InboxQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = f.e.Leave.Inbox(ctx, f.hod, dto.InboxQuery{Leave: "all"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, f.student.ID, page.Items[0].User.ID)

	page, err = f.e.Leave.Inbox(ctx, f.admin, dto.InboxQuery{Leave: "all", SortBy: "startDate", SortOrder: "desc"})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	assert.Equal(t, "2024-01-15", page.Items[0].StartDate)

	_, err = f.e.Leave.Inbox(ctx, f.student, dto.InboxQuery{})
	requireKind(t, err, apperr.KindForbidden)

	_, err = f.e.Leave.Inbox(ctx, f.admin, dto.InboxQuery{SortBy: "password"})
	requireKind(t, err, apperr.KindValidation)
}

func TestPersonalAndBalanceAccess(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	other := f.e.signup(t, "other@college.edu", domain.RoleStudent, domain.DeptCSE)
	f.apply(t, domain.LeaveFullDay, "2024-01-10", "2024-01-10")

	page, err := f.e.Leave.Personal(ctx, f.student, f.student.ID, dto.PersonalLeaveQuery{Search: "STAFF@"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = f.e.Leave.Personal(ctx, other, f.student.ID, dto.PersonalLeaveQuery{})
	requireKind(t, err, apperr.KindForbidden)

	b, err := f.e.Leave.Balance(ctx, f.staff, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, b.TotalLeaves)

	_, err = f.e.Leave.Balance(ctx, other, f.student.ID)
	requireKind(t, err, apperr.KindForbidden)
}

func TestApproversCalendarAndChart(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := context.Background()
	f.e.signup(t, "it-staff@college.edu", domain.RoleStaff, domain.DeptIT)

	approvers, err := f.e.Leave.Approvers(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, f.staff.ID, approvers[0].ID)

	approvers, err = f.e.Leave.Approvers(ctx, f.hod)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, f.admin.ID, approvers[0].ID)

	_, err = f.e.Leave.Approvers(ctx, domain.Identity{ID: "x", Role: domain.RoleStudent})
	requireKind(t, err, apperr.KindForbidden)

	l := f.apply(t, domain.LeaveSick, "2024-01-10", "2024-01-11")
	_, err = f.e.Leave.UpdateStatus(ctx, f.staff, l.ID, domain.StatusApproved)
	require.NoError(t, err)

	events, err := f.e.Leave.Calendar(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "student@college.edu", events[0].Title)
	assert.Equal(t, "2024-01-11", events[0].End)
	assert.Equal(t, domain.LeaveSick, events[0].CalendarID)

	rows, err := f.e.Leave.Chart(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, f.student.ID, rows[0].UserID)
	assert.Equal(t, 2.0, rows[0].UsedLeaves)
	assert.Equal(t, domain.RoleStudent, rows[0].Role)
}
