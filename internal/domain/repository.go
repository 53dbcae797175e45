package domain

import (
	"context"
	"time"
)

// Find methods return (nil, nil) when the row does not exist.

type UserFilter struct {
	ExcludeID  string
	RoleID     string
	Department Department
	Search     string
}

type UserRepository interface {
	CreateWithBalance(ctx context.Context, u *User, b *LeaveBalance) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	// Delete removes the user with everything they own and clears approvals
	// they recorded. It reports false when the user did not exist.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f UserFilter, q PageQuery, s Sort) ([]User, int64, error)
	ListByRole(ctx context.Context, role RoleName, dept Department) ([]User, error)
	Count(ctx context.Context) (int64, error)
	// ResetPassword stores hash and consumes the one-time code atomically.
	ResetPassword(ctx context.Context, email, hash string, codeID uint) error
}

type SearchMode int

const (
	SearchInbox SearchMode = iota
	SearchPersonal
)

type LeaveFilter struct {
	InboxScope
	RequesterID string
	Status      LeaveStatus
	From        *time.Time
	To          *time.Time
	ApprovedBy  string
	Search      string
	SearchMode  SearchMode
}

type Transition struct {
	LeaveID     string
	RequesterID string
	From        LeaveStatus
	To          LeaveStatus
	ApproverID  string
	Adjustment  float64
}

type BalanceRow struct {
	UserID         string
	Name           string
	Department     Department
	RoleID         string
	AcademicYear   string
	TotalLeaves    float64
	AvailableLeave float64
}

type PendingDigest struct {
	ApproverID string
	Email      string
	Name       string
	Pending    int64
}

type LeaveRepository interface {
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// UpdateDetails rewrites the editable fields of a request that is still PENDING.
	UpdateDetails(ctx context.Context, l *LeaveRequest) error
	Transition(ctx context.Context, t Transition) (*LeaveRequest, *LeaveBalance, error)
	// Delete removes l if its status is unchanged and credits refund to the
	// requester's latest balance in the same transaction.
	Delete(ctx context.Context, l *LeaveRequest, refund float64) error
	List(ctx context.Context, f LeaveFilter, q PageQuery, s Sort) ([]LeaveRow, int64, error)
	ListApproved(ctx context.Context) ([]LeaveRow, error)
	LatestBalance(ctx context.Context, userID string) (*LeaveBalance, error)
	BalanceChart(ctx context.Context) ([]BalanceRow, error)
	CountByStatus(ctx context.Context) (map[LeaveStatus]int64, error)
	PendingByApprover(ctx context.Context) ([]PendingDigest, error)
}

type OTPRepository interface {
	// Replace deletes any code held for c.Email and stores c.
	Replace(ctx context.Context, c *OneTimeCode) error
	Find(ctx context.Context, email, code string) (*OneTimeCode, error)
	DeleteIssuedBefore(ctx context.Context, t time.Time) (int64, error)
}

type BlogRepository interface {
	Create(ctx context.Context, b *BlogPost) error
	FindByID(ctx context.Context, id string) (*BlogPost, error)
	FindRow(ctx context.Context, id string) (*BlogRow, error)
	Update(ctx context.Context, b *BlogPost) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search string, q PageQuery) ([]BlogRow, int64, error)
}
