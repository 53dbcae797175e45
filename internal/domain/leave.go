package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type LeaveType string

const (
	LeaveFullDay LeaveType = "FULL_DAY"
	LeaveHalfDay LeaveType = "HALF_DAY"
	LeaveSick    LeaveType = "SICK"
	LeaveCasual  LeaveType = "CASUAL"
	LeaveOther   LeaveType = "OTHER"
)

type LeaveStatus string

const (
	StatusPending  LeaveStatus = "PENDING"
	StatusApproved LeaveStatus = "APPROVED"
	StatusRejected LeaveStatus = "REJECTED"
)

var (
	ErrNoopTransition    = errors.New("leave already has this status")
	ErrInvalidTransition = errors.New("unsupported status transition")
	ErrStaleTransition   = errors.New("leave status changed concurrently")
	ErrBalanceNotFound   = errors.New("leave balance not found")
	ErrInvalidDateRange  = errors.New("start date is after end date")
)

type LeaveRequest struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	UserID    string      `gorm:"size:36;not null;index" json:"userId"`
	RequestTo string      `gorm:"size:36;not null;index" json:"requestTo"`
	ApproveBy *string     `gorm:"size:36;index" json:"approveBy"`
	StartDate time.Time   `gorm:"not null" json:"startDate"`
	EndDate   time.Time   `gorm:"not null" json:"endDate"`
	LeaveType LeaveType   `gorm:"size:16;not null" json:"leaveType"`
	Reason    string      `gorm:"type:text;not null" json:"reason"`
	Status    LeaveStatus `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// LeaveRow is a request joined with the display names of the people on it.
type LeaveRow struct {
	LeaveRequest
	RequesterName    string
	RequesterEmail   string
	RequestedToName  string
	RequestedToEmail string
	ApprovedByName   string
	ApprovedByEmail  string
}

type LeaveBalance struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"size:36;not null;uniqueIndex:idx_balance_user_year" json:"userId"`
	AcademicYear   string    `gorm:"size:9;not null;uniqueIndex:idx_balance_user_year" json:"academicYear"`
	TotalLeaves    float64   `gorm:"not null" json:"totalLeaves"`
	AvailableLeave float64   `gorm:"not null" json:"availableLeave"`
	UsedLeaves     float64   `gorm:"not null;default:0" json:"usedLeaves"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (LeaveBalance) TableName() string { return "leave_balances" }

func NewLeaveBalance(userID string, total float64, now time.Time) *LeaveBalance {
	return &LeaveBalance{
		UserID:         userID,
		AcademicYear:   AcademicYear(now),
		TotalLeaves:    total,
		AvailableLeave: total,
	}
}

// AcademicYear labels the year that starts in June, e.g. "2024-2025".
func AcademicYear(t time.Time) string {
	y := t.Year()
	if t.Month() < time.June {
		y--
	}
	return fmt.Sprintf("%d-%d", y, y+1)
}

func LeaveValue(t LeaveType) float64 {
	if t == LeaveHalfDay {
		return 0.5
	}
	return 1
}

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	s := DateOnly(start)
	e := DateOnly(end)
	return int(e.Sub(s).Hours()/24) + 1
}

// Weight is the number of leave days a request consumes once approved.
func (l *LeaveRequest) Weight() float64 {
	return LeaveValue(l.LeaveType) * float64(InclusiveDays(l.StartDate, l.EndDate))
}

// BalanceAdjustment is the signed change to available leave when a request of
// the given weight moves from one status to another.
func BalanceAdjustment(weight float64, from, to LeaveStatus) (float64, error) {
	if from == to {
		return 0, ErrNoopTransition
	}
	switch {
	case from == StatusPending && to == StatusApproved:
		return -weight, nil
	case from == StatusPending && to == StatusRejected:
		return 0, nil
	case from == StatusApproved && to == StatusRejected:
		return weight, nil
	case from == StatusRejected && to == StatusApproved:
		return -weight, nil
	}
	return 0, ErrInvalidTransition
}

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveFullDay, LeaveHalfDay, LeaveSick, LeaveCasual, LeaveOther:
		return true
	}
	return false
}

func (s LeaveStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns UTC midnight of that date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOnly(t), nil
}
