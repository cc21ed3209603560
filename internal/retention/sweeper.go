package retention

import (
	"time"

	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/metrics"
)

// RetentionWindow is how long message history is kept. The sweeper deletes
// rows strictly older than now minus this window.
const RetentionWindow = 90 * 24 * time.Hour

// MessageStore is the slice of the message repository the sweeper needs.
type MessageStore interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// Sweeper enforces the retention window on message history. Sweeps are
// idempotent; a failed sweep is logged and simply waits for the next tick.
type Sweeper struct {
	Messages MessageStore
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Sweep deletes expired rows and returns how many were removed.
func (s *Sweeper) Sweep() int64 {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-RetentionWindow)

	deleted, err := s.Messages.DeleteOlderThan(cutoff)
	if err != nil {
		s.Logger.Errorw("retention sweep failed", "cutoff", cutoff, "error", err)
		return 0
	}

	if s.Metrics != nil {
		s.Metrics.RetentionRowsDeleted.Add(float64(deleted))
	}
	if deleted > 0 {
		s.Logger.Infow("retention sweep removed expired messages", "deleted", deleted, "cutoff", cutoff)
	} else {
		s.Logger.Debugw("retention sweep found nothing to remove", "cutoff", cutoff)
	}
	return deleted
}
