package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
	"campus-leave/pkg/utils"
)

const msgLeaveNotFound = "Leave not found"

var (
	inboxSortColumns    = []string{"name", "email", "requestedTo", "startDate", "endDate", "status", "reason", "approvedBy", "leaveType", "createdAt"}
	personalSortColumns = []string{"startDate", "endDate", "status", "requestedTo", "approvedBy", "createdAt"}
)

type LeaveService struct {
	leaves domain.LeaveRepository
	users  domain.UserRepository
	log    *zap.Logger
	now    clock
}

func NewLeaveService(leaves domain.LeaveRepository, users domain.UserRepository, l *zap.Logger) *LeaveService {
	return &LeaveService{leaves: leaves, users: users, log: l, now: time.Now}
}

type leaveDraft struct {
	start, end time.Time
	approver   *domain.User
}

// draft validates the editable fields of a request for requester.
func (s *LeaveService) draft(ctx context.Context, requester domain.Identity, in dto.ApplyLeaveRequest) (*leaveDraft, error) {
	var details []apperr.FieldError
	start, err := domain.ParseDate(in.StartDate)
	if err != nil {
		details = append(details, apperr.FieldError{Field: "startDate", Message: "must be YYYY-MM-DD or RFC3339"})
	}
	end, err := domain.ParseDate(in.EndDate)
	if err != nil {
		details = append(details, apperr.FieldError{Field: "endDate", Message: "must be YYYY-MM-DD or RFC3339"})
	}
	if len(in.Reason) > 0 && len(strings.TrimSpace(in.Reason)) < 5 {
		details = append(details, apperr.FieldError{Field: "reason", Message: "must be at least 5 characters"})
	}
	if len(details) > 0 {
		return nil, apperr.Validation(msgInvalidInput, details)
	}
	if start.After(end) {
		return nil, apperr.Field(msgInvalidInput, "endDate", "must be on or after startDate")
	}
	if in.RequestedTo == requester.ID {
		return nil, apperr.Field(msgInvalidInput, "requestedTo", "cannot request leave from yourself")
	}

	approver, err := s.users.FindByID(ctx, in.RequestedTo)
	if err != nil {
		return nil, apperr.Internal("find approver", err)
	}
	if approver == nil {
		return nil, apperr.NotFound("Approver not found")
	}
	if !domain.ResolveApprover(requester.Role, requester.Department).Allows(approver) {
		return nil, apperr.Field(msgInvalidInput, "requestedTo", "approver is not eligible for this requester")
	}
	return &leaveDraft{start: start, end: end, approver: approver}, nil
}

func (s *LeaveService) Apply(ctx context.Context, requester domain.Identity, in dto.ApplyLeaveRequest) (*dto.LeaveView, error) {
	d, err := s.draft(ctx, requester, in)
	if err != nil {
		return nil, err
	}
	l := &domain.LeaveRequest{
		ID:        utils.NewID(),
		UserID:    requester.ID,
		RequestTo: d.approver.ID,
		StartDate: d.start,
		EndDate:   d.end,
		LeaveType: in.LeaveType,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    domain.StatusPending,
	}
	if err := s.leaves.Create(ctx, l); err != nil {
		return nil, apperr.Internal("create leave", err)
	}
	v := dto.NewLeaveView(&domain.LeaveRow{
		LeaveRequest:     *l,
		RequesterName:    requester.Name,
		RequesterEmail:   requester.Email,
		RequestedToName:  d.approver.Name,
		RequestedToEmail: d.approver.Email,
	})
	return &v, nil
}

func (s *LeaveService) load(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	l, err := s.leaves.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find leave", err)
	}
	if l == nil {
		return nil, apperr.NotFound(msgLeaveNotFound)
	}
	return l, nil
}

// canDecide reports whether actor holds the approver slot of l: the addressed
// approver, any ADMIN, or the HOD of the requester's department.
func canDecide(actor domain.Identity, l *domain.LeaveRequest, requester *domain.User) bool {
	switch {
	case actor.ID == l.UserID:
		return false
	case actor.ID == l.RequestTo, actor.Role == domain.RoleAdmin:
		return true
	case actor.Role == domain.RoleHOD:
		return requester != nil && requester.Department == actor.Department
	}
	return false
}

func (s *LeaveService) UpdateStatus(ctx context.Context, actor domain.Identity, id string, to domain.LeaveStatus) (*dto.TransitionResult, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	requester, err := s.users.FindByID(ctx, l.UserID)
	if err != nil {
		return nil, apperr.Internal("find requester", err)
	}
	if !canDecide(actor, l, requester) {
		return nil, apperr.Forbidden("You cannot decide on this leave")
	}
	adj, err := domain.BalanceAdjustment(l.Weight(), l.Status, to)
	switch {
	case errors.Is(err, domain.ErrNoopTransition):
		return nil, apperr.Conflict("Leave is already " + strings.ToLower(string(to)))
	case err != nil:
		return nil, apperr.Field(msgInvalidInput, "status", err.Error())
	}

	updated, bal, err := s.leaves.Transition(ctx, domain.Transition{
		LeaveID:     l.ID,
		RequesterID: l.UserID,
		From:        l.Status,
		To:          to,
		ApproverID:  actor.ID,
		Adjustment:  adj,
	})
	switch {
	case errors.Is(err, domain.ErrStaleTransition):
		return nil, apperr.Conflict("Leave status changed, reload and try again")
	case errors.Is(err, domain.ErrBalanceNotFound):
		return nil, apperr.NotFound("Leave balance not found")
	case err != nil:
		return nil, apperr.Internal("transition leave", err)
	}
	if bal.AvailableLeave < 0 {
		s.log.Warn("leave balance overdrawn",
			zap.String("user_id", l.UserID), zap.Float64("available", bal.AvailableLeave))
	}
	s.log.Info("leave transitioned",
		zap.String("leave_id", l.ID),
		zap.String("from", string(l.Status)),
		zap.String("to", string(to)),
		zap.Float64("adjustment", adj),
		zap.String("by", actor.ID))

	row := domain.LeaveRow{LeaveRequest: *updated, ApprovedByName: actor.Name, ApprovedByEmail: actor.Email}
	if requester != nil {
		row.RequesterName, row.RequesterEmail = requester.Name, requester.Email
	}
	return &dto.TransitionResult{Leave: dto.NewLeaveView(&row), Balance: bal}, nil
}

func (s *LeaveService) Edit(ctx context.Context, actor domain.Identity, id string, in dto.ApplyLeaveRequest) (*dto.LeaveView, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != l.UserID && actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("You cannot edit this leave")
	}
	if l.Status != domain.StatusPending {
		return nil, apperr.Conflict("Only pending leaves can be edited")
	}
	requester := actor
	if actor.ID != l.UserID {
		u, err := s.users.FindByID(ctx, l.UserID)
		if err != nil {
			return nil, apperr.Internal("find requester", err)
		}
		if u == nil {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		requester = u.Identity()
	}
	d, err := s.draft(ctx, requester, in)
	if err != nil {
		return nil, err
	}
	l.RequestTo = d.approver.ID
	l.StartDate, l.EndDate = d.start, d.end
	l.LeaveType = in.LeaveType
	l.Reason = strings.TrimSpace(in.Reason)
	if err := s.leaves.UpdateDetails(ctx, l); err != nil {
		if errors.Is(err, domain.ErrStaleTransition) {
			return nil, apperr.Conflict("Only pending leaves can be edited")
		}
		return nil, apperr.Internal("edit leave", err)
	}
	v := dto.NewLeaveView(&domain.LeaveRow{
		LeaveRequest:     *l,
		RequesterName:    requester.Name,
		RequesterEmail:   requester.Email,
		RequestedToName:  d.approver.Name,
		RequestedToEmail: d.approver.Email,
	})
	return &v, nil
}

func (s *LeaveService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	l, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != l.UserID && actor.Role != domain.RoleAdmin {
		return apperr.Forbidden("You cannot delete this leave")
	}
	refund := 0.0
	if l.Status == domain.StatusApproved {
		refund = l.Weight()
	}
	switch err := s.leaves.Delete(ctx, l, refund); {
	case errors.Is(err, domain.ErrStaleTransition):
		return apperr.Conflict("Leave status changed, reload and try again")
	case errors.Is(err, domain.ErrBalanceNotFound):
		return apperr.NotFound("Leave balance not found")
	case err != nil:
		return apperr.Internal("delete leave", err)
	}
	return nil
}

func parseOptionalDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(v)
	if err != nil {
		return nil, apperr.Field(msgInvalidInput, field, "must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}

func (s *LeaveService) Inbox(ctx context.Context, viewer domain.Identity, q dto.InboxQuery) (domain.Page[dto.LeaveView], error) {
	var empty domain.Page[dto.LeaveView]
	scope, err := domain.ResolveInbox(viewer, q.Leave == "all")
	if err != nil {
		return empty, apperr.Forbidden("Access forbidden. Insufficient permissions.")
	}
	sortBy, order := q.Sorting()
	sort, err := sortFor(sortBy, order, inboxSortColumns...)
	if err != nil {
		return empty, err
	}
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return empty, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return empty, err
	}
	f := domain.LeaveFilter{
		InboxScope: scope,
		Status:     domain.LeaveStatus(q.Status),
		From:       from,
		To:         to,
		ApprovedBy: q.ApprovedBy,
		Search:     q.Search,
		SearchMode: domain.SearchInbox,
	}
	return s.page(ctx, f, domain.NewPageQuery(q.Page, q.Limit), sort)
}

func (s *LeaveService) Personal(ctx context.Context, viewer domain.Identity, userID string, q dto.PersonalLeaveQuery) (domain.Page[dto.LeaveView], error) {
	var empty domain.Page[dto.LeaveView]
	if !canViewUser(viewer, userID) {
		return empty, apperr.Forbidden("Access forbidden. Insufficient permissions.")
	}
	sortBy, order := q.Sorting()
	sort, err := sortFor(sortBy, order, personalSortColumns...)
	if err != nil {
		return empty, err
	}
	f := domain.LeaveFilter{
		RequesterID: userID,
		Status:      domain.LeaveStatus(q.Status),
		Search:      q.Search,
		SearchMode:  domain.SearchPersonal,
	}
	return s.page(ctx, f, domain.NewPageQuery(q.Page, q.Limit), sort)
}

func (s *LeaveService) page(ctx context.Context, f domain.LeaveFilter, pq domain.PageQuery, sort domain.Sort) (domain.Page[dto.LeaveView], error) {
	rows, total, err := s.leaves.List(ctx, f, pq, sort)
	if err != nil {
		return domain.Page[dto.LeaveView]{}, apperr.Internal("list leaves", err)
	}
	return domain.Page[dto.LeaveView]{Items: dto.NewLeaveViews(rows), Total: total, Query: pq}, nil
}

func (s *LeaveService) Balance(ctx context.Context, viewer domain.Identity, userID string) (*domain.LeaveBalance, error) {
	if !canViewUser(viewer, userID) {
		return nil, apperr.Forbidden("Access forbidden. Insufficient permissions.")
	}
	b, err := s.leaves.LatestBalance(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("load balance", err)
	}
	if b == nil {
		return nil, apperr.NotFound("Leave balance not found")
	}
	return b, nil
}

// Approvers lists who viewer may address a leave request to.
func (s *LeaveService) Approvers(ctx context.Context, viewer domain.Identity) ([]dto.ApproverView, error) {
	if viewer.Role != domain.RoleHOD && !viewer.Department.Valid() {
		return nil, apperr.Forbidden("A department is required to request leave")
	}
	rule := domain.ResolveApprover(viewer.Role, viewer.Department)
	users, err := s.users.ListByRole(ctx, rule.Role, rule.Department)
	if err != nil {
		return nil, apperr.Internal("list approvers", err)
	}
	out := make([]dto.ApproverView, 0, len(users))
	for _, u := range users {
		if u.ID == viewer.ID {
			continue
		}
		out = append(out, dto.ApproverView{ID: u.ID, Name: u.Name})
	}
	return out, nil
}

func (s *LeaveService) Calendar(ctx context.Context) ([]dto.CalendarEvent, error) {
	rows, err := s.leaves.ListApproved(ctx)
	if err != nil {
		return nil, apperr.Internal("list approved leaves", err)
	}
	out := make([]dto.CalendarEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CalendarEvent{
			ID:         r.ID,
			Title:      r.RequesterName,
			Start:      r.StartDate.Format(time.DateOnly),
			End:        r.EndDate.Format(time.DateOnly),
			CalendarID: r.LeaveType,
		})
	}
	return out, nil
}

func (s *LeaveService) Chart(ctx context.Context) ([]dto.ChartRow, error) {
	rows, err := s.leaves.BalanceChart(ctx)
	if err != nil {
		return nil, apperr.Internal("balance chart", err)
	}
	out := make([]dto.ChartRow, 0, len(rows))
	for _, r := range rows {
		role, _ := domain.RoleByID(r.RoleID)
		out = append(out, dto.ChartRow{
			UserID:         r.UserID,
			Name:           r.Name,
			Department:     r.Department,
			Role:           role.Name,
			AcademicYear:   r.AcademicYear,
			TotalLeaves:    r.TotalLeaves,
			AvailableLeave: r.AvailableLeave,
			UsedLeaves:     r.TotalLeaves - r.AvailableLeave,
		})
	}
	return out, nil
}
