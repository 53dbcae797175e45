// Package job holds the scheduled background work: the daily pending-leave
// reminder and the one-time-code purge that follows it.
package job

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"campus-leave/internal/core/cache"
	"campus-leave/internal/core/mailer"
	"campus-leave/internal/domain"
)

const (
	lockKey     = "campus-leave:sweep-lock"
	lockTTL     = 30 * time.Minute
	runDeadline = 20 * time.Minute
)

var (
	remindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leave_reminders_sent_total",
		Help: "Pending-leave reminder emails delivered",
	})
	remindersFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leave_reminders_failed_total",
		Help: "Pending-leave reminder emails that could not be built or delivered",
	})
	codesPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_codes_purged_total",
		Help: "Expired one-time codes removed by the sweep",
	})
)

func init() { prometheus.MustRegister(remindersSent, remindersFailed, codesPurged) }

type PendingSource interface {
	PendingByApprover(ctx context.Context) ([]domain.PendingDigest, error)
}

type CodePurger interface {
	DeleteIssuedBefore(ctx context.Context, t time.Time) (int64, error)
}

// Locker serializes sweeps across replicas. *cache.Cache satisfies it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type Result struct {
	Sent    int
	Failed  int
	Purged  int64
	Skipped bool
}

type ReminderJob struct {
	leaves      PendingSource
	codes       CodePurger
	mail        mailer.Sender
	lock        Locker
	frontendURL string
	log         *zap.Logger
	now         func() time.Time

	running atomic.Bool
}

// NewReminderJob wires the sweep. lock may be nil on single-instance deployments.
func NewReminderJob(leaves PendingSource, codes CodePurger, mail mailer.Sender, lock Locker, frontendURL string, l *zap.Logger) *ReminderJob {
	return &ReminderJob{
		leaves:      leaves,
		codes:       codes,
		mail:        mail,
		lock:        lock,
		frontendURL: frontendURL,
		log:         l.Named("sweep"),
		now:         time.Now,
	}
}

// Run implements cron.Job.
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
	defer cancel()
	res, err := j.Sweep(ctx)
	if err != nil {
		j.log.Error("sweep failed", zap.Error(err))
		return
	}
	if res.Skipped {
		return
	}
	j.log.Info("sweep done",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int64("purged", res.Purged),
	)
}

func (j *ReminderJob) Sweep(ctx context.Context) (Result, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.log.Warn("previous sweep still running, skipping")
		return Result{Skipped: true}, nil
	}
	defer j.running.Store(false)

	if j.lock != nil {
		release, err := j.lock.TryLock(ctx, lockKey, lockTTL)
		switch {
		case errors.Is(err, cache.ErrLockHeld):
			j.log.Info("sweep lock held elsewhere, skipping")
			return Result{Skipped: true}, nil
		case err != nil:
			// lock backend down: the atomic guard and SkipIfStillRunning still
			// cover this process, so the sweep goes ahead unlocked
			j.log.Warn("sweep lock unavailable, running without it", zap.Error(err))
		default:
			defer release()
		}
	}

	var res Result
	digests, err := j.leaves.PendingByApprover(ctx)
	if err != nil {
		// reminders are lost for today but the purge still runs
		j.log.Error("load pending digests", zap.Error(err))
	}
	for _, d := range digests {
		if err := j.remind(ctx, d); err != nil {
			res.Failed++
			remindersFailed.Inc()
			j.log.Warn("reminder not sent", zap.String("approver_id", d.ApproverID), zap.Error(err))
			continue
		}
		res.Sent++
		remindersSent.Inc()
	}

	n, err := j.codes.DeleteIssuedBefore(ctx, j.now().Add(-domain.OTPTTL))
	if err != nil {
		j.log.Error("purge expired codes", zap.Error(err))
		return res, nil
	}
	res.Purged = n
	codesPurged.Add(float64(n))
	return res, nil
}

func (j *ReminderJob) remind(ctx context.Context, d domain.PendingDigest) error {
	msg, err := mailer.PendingReminder(d.Email, d.Name, d.Pending, j.frontendURL)
	if err != nil {
		return err
	}
	return j.mail.Send(ctx, msg)
}
