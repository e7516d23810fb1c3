package expiry

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// QuoteExpirer is the slice of the quote service the worker needs: the
// idempotent check-then-transition of a possibly lapsed payment window.
type QuoteExpirer interface {
	ExpireIfLapsed(ctx context.Context, quoteID string, now time.Time) (bool, error)
}

// Worker drains due expiry tasks from the redis queue. Tasks are claimed
// with ZREM so concurrent workers never double-process a member; the expiry
// handler itself is idempotent, so at-least-once delivery is safe regardless.
type Worker struct {
	client   *redis.Client
	queueKey string
	expirer  QuoteExpirer
	log      *logrus.Logger

	pollInterval time.Duration
	taskTimeout  time.Duration
	maxAttempts  int
	backoffBase  time.Duration
	now          func() time.Time
}

// WorkerOptions tunes the polling and retry behavior.
type WorkerOptions struct {
	QueueKey     string
	PollInterval time.Duration
	TaskTimeout  time.Duration
	MaxAttempts  int
	BackoffBase  time.Duration
}

// NewWorker creates an expiry worker with defaults for any zero option.
func NewWorker(client *redis.Client, expirer QuoteExpirer, log *logrus.Logger, opts WorkerOptions) *Worker {
	if opts.QueueKey == "" {
		opts.QueueKey = DefaultQueueKey
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	return &Worker{
		client:       client,
		queueKey:     opts.QueueKey,
		expirer:      expirer,
		log:          log,
		pollInterval: opts.PollInterval,
		taskTimeout:  opts.TaskTimeout,
		maxAttempts:  opts.MaxAttempts,
		backoffBase:  opts.BackoffBase,
		now:          time.Now,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.WithField("queue", w.queueKey).Info("expiry worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("expiry worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.drainDue(ctx)
		}
	}
}

// drainDue claims and processes every task whose due time has passed.
func (w *Worker) drainDue(ctx context.Context) {
	now := w.now()
	members, err := w.client.ZRangeByScore(ctx, w.queueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: formatMillis(now),
	}).Result()
	if err != nil {
		w.log.WithError(err).Error("failed to read due expiry tasks")
		return
	}

	for _, member := range members {
		removed, err := w.client.ZRem(ctx, w.queueKey, member).Result()
		if err != nil {
			w.log.WithError(err).WithField("task", member).Error("failed to claim expiry task")
			continue
		}
		if removed == 0 {
			// Another worker claimed it first.
			continue
		}
		w.process(ctx, member)
	}
}

// process runs one claimed task with bounded retries and a per-attempt
// timeout. After the final failed attempt the task is pushed back onto the
// queue so the next poll cycle picks it up again.
func (w *Worker) process(ctx context.Context, member string) {
	quoteID := strings.TrimPrefix(member, "expiry:")
	entry := w.log.WithField("quote_id", quoteID)

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
		expired, err := w.expirer.ExpireIfLapsed(attemptCtx, quoteID, w.now())
		cancel()

		if err == nil {
			if expired {
				entry.Info("quote payment window lapsed, quote expired")
			} else {
				entry.Debug("expiry task was a no-op")
			}
			return
		}
		lastErr = err
		entry.WithError(err).WithField("attempt", attempt).Warn("expiry attempt failed")

		if attempt < w.maxAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoffBase << (attempt - 1)):
			}
		}
	}

	entry.WithError(lastErr).Error("expiry task exhausted retries, re-queueing")
	if err := w.client.ZAdd(ctx, w.queueKey, redis.Z{
		Score:  float64(w.now().Add(w.pollInterval).UnixMilli()),
		Member: member,
	}).Err(); err != nil {
		entry.WithError(err).Error("failed to re-queue expiry task")
	}
}
