package jobs

import (
	"github.com/vytor/flashrecall/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	digestPool *worker.Pool
	stats      worker.StatsSource
	notifier   worker.Notifier
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(digestPool *worker.Pool, stats worker.StatsSource, notifier worker.Notifier) JobQueue {
	return &WorkerQueue{
		digestPool: digestPool,
		stats:      stats,
		notifier:   notifier,
	}
}

func (q *WorkerQueue) EnqueueDigest(userID string) error {
	return q.digestPool.Submit(&worker.DueDigestJob{
		Stats:    q.stats,
		Notifier: q.notifier,
		UserID:   userID,
	})
}
