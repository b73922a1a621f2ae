package worker

import (
	"context"
	"fmt"

	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
)

// DueDigestJob computes one learner's review stats and notifies them when
// any card is due.
type DueDigestJob struct {
	Stats    StatsSource
	Notifier Notifier
	UserID   string
}

func (j *DueDigestJob) Name() string { return "due_digest" }

func (j *DueDigestJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("user_id", j.UserID)
	log.Debug("building due digest")

	stats, err := j.Stats.GetUserReviewStats(ctx, j.UserID, "")
	if err != nil {
		return fmt.Errorf("review stats for %s: %w", j.UserID, err)
	}
	if stats.DueToday == 0 {
		log.Debug("nothing due, skipping notification")
		return nil
	}

	if err := j.Notifier.NotifyDue(ctx, j.UserID, *stats); err != nil {
		return fmt.Errorf("notify %s: %w", j.UserID, err)
	}
	return nil
}

// LogNotifier writes each digest as an INFO line.
type LogNotifier struct {
	Log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Default()
	}
	return &LogNotifier{Log: log.WithPrefix("digest")}
}

func (n *LogNotifier) NotifyDue(ctx context.Context, userID string, stats models.ReviewStats) error {
	n.Log.WithFields(map[string]any{
		"user_id":  userID,
		"due":      stats.DueToday,
		"learning": stats.Learning,
		"mastered": stats.Mastered,
	}).Info("%d cards due for review (%d%% success rate)", stats.DueToday, stats.SuccessRate)
	return nil
}
