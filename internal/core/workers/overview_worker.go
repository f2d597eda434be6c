package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-calendar/internal/metrics"
)

const (
	queueSize  = 100
	jobTimeout = 10 * time.Second
)

// Refresher warms the cached overview of a user. Invalidation happens on the
// write path, so a dropped job only costs one cold read.
type Refresher interface {
	Refresh(ctx context.Context, userID string) error
}

type RefreshJob struct {
	UserID string
}

type OverviewWorker struct {
	refresher Refresher
	log       *zap.Logger
	jobs      chan RefreshJob
}

func NewOverviewWorker(refresher Refresher, log *zap.Logger) *OverviewWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &OverviewWorker{
		refresher: refresher,
		log:       log.Named("overview_worker"),
		jobs:      make(chan RefreshJob, queueSize),
	}
}

// Start consumes jobs in a goroutine until ctx is done. The returned channel
// is closed once the loop has exited.
func (w *OverviewWorker) Start(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		w.log.Info("overview worker started")
		for {
			select {
			case job := <-w.jobs:
				w.process(ctx, job)
			case <-ctx.Done():
				w.log.Info("overview worker shutting down")
				return
			}
		}
	}()

	return stopped
}

// Enqueue never blocks; jobs are dropped when the queue is full.
func (w *OverviewWorker) Enqueue(userID string) {
	select {
	case w.jobs <- RefreshJob{UserID: userID}:
	default:
		metrics.JobDone("dropped")
		w.log.Warn("queue full, dropping refresh", zap.String("user_id", userID))
	}
}

func (w *OverviewWorker) process(ctx context.Context, job RefreshJob) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := w.refresher.Refresh(ctx, job.UserID); err != nil {
		metrics.JobDone("failed")
		w.log.Error("refresh failed", zap.String("user_id", job.UserID), zap.Error(err))
		return
	}

	metrics.JobDone("ok")
	w.log.Debug("overview refreshed", zap.String("user_id", job.UserID))
}
