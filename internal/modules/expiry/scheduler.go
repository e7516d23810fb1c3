package expiry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the redis sorted set holding pending expiry tasks.
// Scores are due times in unix milliseconds; members are "expiry:<quoteID>",
// so re-scheduling the same quote overwrites the old due time instead of
// queueing a duplicate.
const DefaultQueueKey = "quote:expiries"

// ErrAlreadyDue is returned when the payment window has already lapsed at
// scheduling time. No job is enqueued; the caller reconciles synchronously.
var ErrAlreadyDue = errors.New("payment window already lapsed, nothing scheduled")

// Scheduler enqueues one-shot deferred expiry tasks onto redis.
type Scheduler struct {
	client        *redis.Client
	queueKey      string
	paymentWindow time.Duration
	now           func() time.Time
}

// NewScheduler creates a scheduler. queueKey falls back to DefaultQueueKey.
func NewScheduler(client *redis.Client, queueKey string, paymentWindow time.Duration) *Scheduler {
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	if paymentWindow <= 0 {
		paymentWindow = 24 * time.Hour
	}
	return &Scheduler{client: client, queueKey: queueKey, paymentWindow: paymentWindow, now: time.Now}
}

// ScheduleExpiry arms the payment-window expiry for a quote keyed to this
// quotedAt. A non-positive delay means the window has already lapsed: no job
// is scheduled and ErrAlreadyDue tells the caller to reconcile now.
func (s *Scheduler) ScheduleExpiry(ctx context.Context, quoteID string, quotedAt time.Time) error {
	due := quotedAt.Add(s.paymentWindow)
	if !due.After(s.now()) {
		return ErrAlreadyDue
	}
	err := s.client.ZAdd(ctx, s.queueKey, redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: taskKey(quoteID),
	}).Err()
	if err != nil {
		return fmt.Errorf("expiry.ScheduleExpiry: %w", err)
	}
	return nil
}

// CancelExpiry drops a pending task, e.g. after payment. Missing tasks are
// not an error; the worker tolerates stale deliveries anyway.
func (s *Scheduler) CancelExpiry(ctx context.Context, quoteID string) error {
	if err := s.client.ZRem(ctx, s.queueKey, taskKey(quoteID)).Err(); err != nil {
		return fmt.Errorf("expiry.CancelExpiry: %w", err)
	}
	return nil
}

func taskKey(quoteID string) string {
	return "expiry:" + quoteID
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
