package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/queue"
)

type fakeStalled struct {
	eateries []model.Eatery
}

func (f *fakeStalled) ListStalled(_ context.Context, _ time.Time) ([]model.Eatery, error) {
	return f.eateries, nil
}

type fakeNudgeLog struct {
	sent map[uint64]bool
}

func (f *fakeNudgeLog) WasSent(_ context.Context, eateryID uint64, _ string) (bool, error) {
	return f.sent[eateryID], nil
}

func (f *fakeNudgeLog) Record(_ context.Context, eateryID uint64, _ string) error {
	f.sent[eateryID] = true
	return nil
}

func TestOnboardingNudgeSendsOncePerEatery(t *testing.T) {
	stalled := &fakeStalled{eateries: []model.Eatery{
		{ID: 1, Name: "Empty Diner"},
		{ID: 2, Name: "Blank Bistro"},
	}}
	log := &fakeNudgeLog{sent: map[uint64]bool{2: true}} // eatery 2 already nudged

	var published []queue.OnboardingNudgeEvent
	j := &OnboardingNudger{
		Eateries: stalled,
		Log:      log,
		Publish: func(_ context.Context, ev queue.OnboardingNudgeEvent) error {
			published = append(published, ev)
			return nil
		},
		MaxAge: 72 * time.Hour,
	}

	j.scan(context.Background())
	assert.Len(t, published, 1)
	assert.Equal(t, uint64(1), published[0].EateryID)
	assert.Equal(t, "Empty Diner", published[0].Name)
	assert.True(t, log.sent[1])

	// overlapping or repeated scans stay quiet
	j.scan(context.Background())
	assert.Len(t, published, 1)
}

func TestOnboardingNudgeRetriesAfterPublishFailure(t *testing.T) {
	stalled := &fakeStalled{eateries: []model.Eatery{{ID: 1, Name: "Empty Diner"}}}
	log := &fakeNudgeLog{sent: map[uint64]bool{}}

	fail := true
	var published int
	j := &OnboardingNudger{
		Eateries: stalled,
		Log:      log,
		Publish: func(_ context.Context, _ queue.OnboardingNudgeEvent) error {
			if fail {
				return context.DeadlineExceeded
			}
			published++
			return nil
		},
		MaxAge: 72 * time.Hour,
	}

	j.scan(context.Background())
	assert.Zero(t, published)
	assert.False(t, log.sent[1]) // nothing recorded, so the next scan retries

	fail = false
	j.scan(context.Background())
	assert.Equal(t, 1, published)
	assert.True(t, log.sent[1])
}
