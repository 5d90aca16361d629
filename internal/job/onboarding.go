// Package job runs the periodic background work of the server.  Currently
// that is a single scanner that nudges eatery owners who signed up but
// never built a menu.
package job

import (
	"context"
	"log"
	"time"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/queue"
)

const nudgeKind = "ONBOARDING_NUDGE"

// StalledEateryStore lists eateries past the cutoff with no categories.
type StalledEateryStore interface {
	ListStalled(ctx context.Context, cutoff time.Time) ([]model.Eatery, error)
}

// NudgeLog remembers which eateries were already nudged so overlapping or
// restarted runs never send twice.
type NudgeLog interface {
	WasSent(ctx context.Context, eateryID uint64, kind string) (bool, error)
	Record(ctx context.Context, eateryID uint64, kind string) error
}

// OnboardingNudger scans for stalled eateries on a fixed interval and
// publishes one reminder event per eatery, ever.
type OnboardingNudger struct {
	Eateries StalledEateryStore
	Log      NudgeLog
	Publish  func(ctx context.Context, ev queue.OnboardingNudgeEvent) error

	Interval time.Duration // how often to scan
	MaxAge   time.Duration // how long an eatery may stay empty before a nudge
}

// Run blocks until ctx is cancelled.  One scan fires immediately so a
// restart does not delay pending nudges by a full interval.
func (j *OnboardingNudger) Run(ctx context.Context) {
	interval := j.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.scan(ctx)
		}
	}
}

func (j *OnboardingNudger) scan(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.MaxAge)
	stalled, err := j.Eateries.ListStalled(ctx, cutoff)
	if err != nil {
		log.Printf("onboarding-nudge: list stalled eateries: %v", err)
		return
	}
	for _, e := range stalled {
		sent, err := j.Log.WasSent(ctx, e.ID, nudgeKind)
		if err != nil {
			log.Printf("onboarding-nudge: check log for eatery %d: %v", e.ID, err)
			continue
		}
		if sent {
			continue
		}
		ev := queue.OnboardingNudgeEvent{EateryID: e.ID, Name: e.Name, At: time.Now().UTC()}
		if err := j.Publish(ctx, ev); err != nil {
			// leave the log row unwritten so the next scan retries
			continue
		}
		if err := j.Log.Record(ctx, e.ID, nudgeKind); err != nil {
			log.Printf("onboarding-nudge: record log for eatery %d: %v", e.ID, err)
		}
	}
}
