package dto

import (
	"time"

	"campus-leave/internal/domain"
)

type ApplyLeaveRequest struct {
	RequestedTo string           `json:"requestedTo" binding:"required"`
	StartDate   string           `json:"startDate" binding:"required"`
	EndDate     string           `json:"endDate" binding:"required"`
	LeaveType   domain.LeaveType `json:"leaveType" binding:"required,oneof=FULL_DAY HALF_DAY SICK CASUAL OTHER"`
	Reason      string           `json:"reason" binding:"required,min=5,max=2000"`
}

type StatusRequest struct {
	Status domain.LeaveStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

type InboxQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
	Leave      string `form:"leave" binding:"omitempty,oneof=all own"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	From       string `form:"from"`
	To         string `form:"to"`
	ApprovedBy string `form:"approvedBy"`
	Search     string `form:"search" binding:"max=100"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Col        string `form:"col"`
	Sort       string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

func (q InboxQuery) Sorting() (string, string) { return sorting(q.SortBy, q.SortOrder, q.Col, q.Sort) }

type PersonalLeaveQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Search    string `form:"search" binding:"max=100"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Col       string `form:"col"`
	Sort      string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

func (q PersonalLeaveQuery) Sorting() (string, string) {
	return sorting(q.SortBy, q.SortOrder, q.Col, q.Sort)
}

// sorting prefers sortBy/sortOrder and falls back to the col/sort pair that
// older frontends send.
func sorting(sortBy, order, col, sort string) (string, string) {
	if sortBy == "" {
		sortBy = col
	}
	if order == "" {
		order = sort
	}
	return sortBy, order
}

type PersonRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type LeaveView struct {
	ID          string             `json:"id"`
	StartDate   string             `json:"startDate"`
	EndDate     string             `json:"endDate"`
	Days        int                `json:"days"`
	LeaveType   domain.LeaveType   `json:"leaveType"`
	Reason      string             `json:"reason"`
	Status      domain.LeaveStatus `json:"status"`
	User        PersonRef          `json:"user"`
	RequestedTo PersonRef          `json:"requestedTo"`
	ApprovedBy  *PersonRef         `json:"approvedBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func NewLeaveView(r *domain.LeaveRow) LeaveView {
	v := LeaveView{
		ID:          r.ID,
		StartDate:   r.StartDate.Format(time.DateOnly),
		EndDate:     r.EndDate.Format(time.DateOnly),
		Days:        domain.InclusiveDays(r.StartDate, r.EndDate),
		LeaveType:   r.LeaveType,
		Reason:      r.Reason,
		Status:      r.Status,
		User:        PersonRef{ID: r.UserID, Name: r.RequesterName, Email: r.RequesterEmail},
		RequestedTo: PersonRef{ID: r.RequestTo, Name: r.RequestedToName, Email: r.RequestedToEmail},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ApproveBy != nil {
		v.ApprovedBy = &PersonRef{ID: *r.ApproveBy, Name: r.ApprovedByName, Email: r.ApprovedByEmail}
	}
	return v
}

func NewLeaveViews(rows []domain.LeaveRow) []LeaveView {
	out := make([]LeaveView, 0, len(rows))
	for i := range rows {
		out = append(out, NewLeaveView(&rows[i]))
	}
	return out
}

type TransitionResult struct {
	Leave   LeaveView            `json:"leave"`
	Balance *domain.LeaveBalance `json:"balance"`
}

type ApproverView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CalendarEvent struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Start      string           `json:"start"`
	End        string           `json:"end"`
	CalendarID domain.LeaveType `json:"calendarId"`
}

type ChartRow struct {
	UserID         string            `json:"userId"`
	Name           string            `json:"name"`
	Department     domain.Department `json:"department"`
	Role           domain.RoleName   `json:"role"`
	AcademicYear   string            `json:"academicYear"`
	TotalLeaves    float64           `json:"totalLeaves"`
	AvailableLeave float64           `json:"availableLeave"`
	UsedLeaves     float64           `json:"usedLeaves"`
}
