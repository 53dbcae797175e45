package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campus-leave/internal/domain"
)

var leaveSortColumns = map[string]string{
	"name":        "requester.name",
	"email":       "requester.email",
	"requestedTo": "target.name",
	"approvedBy":  "approver.name",
	"startDate":   "leave_requests.start_date",
	"endDate":     "leave_requests.end_date",
	"status":      "leave_requests.status",
	"reason":      "leave_requests.reason",
	"leaveType":   "leave_requests.leave_type",
	"createdAt":   "leave_requests.created_at",
}

const leaveRowSelect = `leave_requests.*,
	requester.name AS requester_name, requester.email AS requester_email,
	COALESCE(target.name, '') AS requested_to_name, COALESCE(target.email, '') AS requested_to_email,
	COALESCE(approver.name, '') AS approved_by_name, COALESCE(approver.email, '') AS approved_by_email`

type LeaveRepo struct{ db *gorm.DB }

func NewLeaveRepo(db *gorm.DB) *LeaveRepo { return &LeaveRepo{db: db} }

func (r *LeaveRepo) Create(ctx context.Context, l *domain.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeaveRepo) FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	var l domain.LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &l, err
}

func (r *LeaveRepo) UpdateDetails(ctx context.Context, l *domain.LeaveRequest) error {
	res := r.db.WithContext(ctx).Model(&domain.LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, domain.StatusPending).
		Updates(map[string]any{
			"request_to": l.RequestTo,
			"start_date": l.StartDate,
			"end_date":   l.EndDate,
			"leave_type": l.LeaveType,
			"reason":     l.Reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleTransition
	}
	return nil
}

// latestBalance must run on tx so it sees the transaction's own writes.
func latestBalance(tx *gorm.DB, userID string) (*domain.LeaveBalance, error) {
	var b domain.LeaveBalance
	err := tx.Where("user_id = ?", userID).Order("academic_year DESC").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func adjustBalance(tx *gorm.DB, b *domain.LeaveBalance, delta float64) error {
	if delta == 0 {
		return nil
	}
	return tx.Model(b).Updates(map[string]any{
		"available_leave": gorm.Expr("available_leave + ?", delta),
		"used_leaves":     gorm.Expr("used_leaves - ?", delta),
	}).Error
}

// Transition moves a request from t.From to t.To and applies t.Adjustment to
// the requester's latest balance. Nothing is written unless both succeed.
func (r *LeaveRepo) Transition(ctx context.Context, t domain.Transition) (*domain.LeaveRequest, *domain.LeaveBalance, error) {
	var (
		leave domain.LeaveRequest
		bal   *domain.LeaveBalance
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.LeaveRequest{}).
			Where("id = ? AND status = ?", t.LeaveID, t.From).
			Updates(map[string]any{"status": t.To, "approve_by": t.ApproverID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStaleTransition
		}
		b, err := latestBalance(tx, t.RequesterID)
		if err != nil {
			return err
		}
		if err := adjustBalance(tx, b, t.Adjustment); err != nil {
			return err
		}
		if err := tx.First(b, b.ID).Error; err != nil {
			return err
		}
		bal = b
		return tx.First(&leave, "id = ?", t.LeaveID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &leave, bal, nil
}

func (r *LeaveRepo) Delete(ctx context.Context, l *domain.LeaveRequest, refund float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", l.ID, l.Status).Delete(&domain.LeaveRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrStaleTransition
		}
		if refund == 0 {
			return nil
		}
		b, err := latestBalance(tx, l.UserID)
		if err != nil {
			return err
		}
		return adjustBalance(tx, b, refund)
	})
}

func (r *LeaveRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("leave_requests").
		Joins("JOIN users AS requester ON requester.id = leave_requests.user_id").
		Joins("LEFT JOIN users AS target ON target.id = leave_requests.request_to").
		Joins("LEFT JOIN users AS approver ON approver.id = leave_requests.approve_by")
}

func (r *LeaveRepo) filtered(ctx context.Context, f domain.LeaveFilter) *gorm.DB {
	q := r.joined(ctx)
	if f.RequestTo != "" {
		q = q.Where("leave_requests.request_to = ?", f.RequestTo)
	}
	if f.RequesterDepartment != "" {
		q = q.Where("requester.department = ?", f.RequesterDepartment)
	}
	if f.ExcludeRequester != "" {
		q = q.Where("leave_requests.user_id <> ?", f.ExcludeRequester)
	}
	if f.RequesterID != "" {
		q = q.Where("leave_requests.user_id = ?", f.RequesterID)
	}
	if f.Status != "" {
		q = q.Where("leave_requests.status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("leave_requests.end_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("leave_requests.start_date <= ?", *f.To)
	}
	if f.ApprovedBy != "" {
		q = q.Where("leave_requests.approve_by = ?", f.ApprovedBy)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		switch f.SearchMode {
		case domain.SearchPersonal:
			q = q.Where("(LOWER(target.name) LIKE ? OR LOWER(approver.name) LIKE ? OR LOWER(leave_requests.reason) LIKE ?)", p, p, p)
		default:
			q = q.Where("(LOWER(requester.name) LIKE ? OR LOWER(requester.email) LIKE ? OR LOWER(leave_requests.reason) LIKE ?)", p, p, p)
		}
	}
	return q
}

func (r *LeaveRepo) List(ctx context.Context, f domain.LeaveFilter, pq domain.PageQuery, s domain.Sort) ([]domain.LeaveRow, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]domain.LeaveRow, 0, pq.Limit)
	err := r.filtered(ctx, f).
		Select(leaveRowSelect).
		Order(orderBy(leaveSortColumns, s, rawDesc("leave_requests.created_at"))).
		Offset(pq.Offset()).Limit(pq.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *LeaveRepo) ListApproved(ctx context.Context) ([]domain.LeaveRow, error) {
	var rows []domain.LeaveRow
	err := r.joined(ctx).
		Select(leaveRowSelect).
		Where("leave_requests.status = ?", domain.StatusApproved).
		Order("leave_requests.start_date").
		Scan(&rows).Error
	return rows, err
}

func (r *LeaveRepo) LatestBalance(ctx context.Context, userID string) (*domain.LeaveBalance, error) {
	b, err := latestBalance(r.db.WithContext(ctx), userID)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return nil, nil
	}
	return b, err
}

// BalanceChart lists each user's latest balance row, lowest available first.
func (r *LeaveRepo) BalanceChart(ctx context.Context) ([]domain.BalanceRow, error) {
	var rows []domain.BalanceRow
	err := r.db.WithContext(ctx).Table("leave_balances").
		Select(`leave_balances.user_id, users.name, users.department, users.role_id,
			leave_balances.academic_year, leave_balances.total_leaves, leave_balances.available_leave`).
		Joins("JOIN users ON users.id = leave_balances.user_id").
		Where(`leave_balances.academic_year = (SELECT MAX(lb.academic_year) FROM leave_balances lb
			WHERE lb.user_id = leave_balances.user_id)`).
		Order("leave_balances.available_leave ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *LeaveRepo) CountByStatus(ctx context.Context) (map[domain.LeaveStatus]int64, error) {
	var rows []struct {
		Status domain.LeaveStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.LeaveRequest{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.LeaveStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *LeaveRepo) PendingByApprover(ctx context.Context) ([]domain.PendingDigest, error) {
	var out []domain.PendingDigest
	err := r.db.WithContext(ctx).Model(&domain.LeaveRequest{}).
		Select("users.id AS approver_id, users.email, users.name, COUNT(*) AS pending").
		Joins("JOIN users ON users.id = leave_requests.request_to").
		Where("leave_requests.status = ?", domain.StatusPending).
		Group("users.id, users.email, users.name").
		Order("users.email").
		Scan(&out).Error
	return out, err
}
