package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestTracker(t *testing.T, interval, ttl time.Duration) *Tracker {
	t.Helper()
	tracker := NewTracker(Options{Interval: interval, TTL: ttl}, log.NewNopLogger())
	t.Cleanup(tracker.Close)
	return tracker
}

func TestTracker_ShowsFirstStepImmediately(t *testing.T) {
	tracker := newTestTracker(t, time.Hour, time.Hour)
	release := make(chan struct{})
	defer close(release)

	draft := models.CampaignDraft{Message: "Summer sale"}
	id := tracker.Start(draft, func(ctx context.Context) (models.GenerateResult, error) {
		<-release
		return models.GenerateResult{}, nil
	})

	snap, err := tracker.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, 5, snap.Percent)
	assert.Equal(t, "Checking compliance...", snap.Message)
	assert.Equal(t, StepActive, snap.Steps[0].State)
	assert.Equal(t, StepPending, snap.Steps[1].State)
	assert.Equal(t, "Summer sale", snap.Draft.Message)
	assert.False(t, snap.Done())
}

func TestTracker_AdvancesAndHoldsOnLastStep(t *testing.T) {
	tracker := newTestTracker(t, 5*time.Millisecond, time.Hour)
	release := make(chan struct{})

	id := tracker.Start(models.CampaignDraft{}, func(ctx context.Context) (models.GenerateResult, error) {
		<-release
		return models.GenerateResult{CampaignID: "abc"}, nil
	})

	require.Eventually(t, func() bool {
		snap, _ := tracker.Snapshot(id)
		return snap.Percent == 95
	}, time.Second, time.Millisecond)

	// more ticks never move past the last step while the backend works
	time.Sleep(30 * time.Millisecond)
	snap, err := tracker.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 95, snap.Percent)
	assert.Equal(t, "Finalizing campaign...", snap.Message)
	for _, s := range snap.Steps[:len(Steps)-1] {
		assert.Equal(t, StepCompleted, s.State, s.ID)
	}
	assert.Equal(t, StepActive, snap.Steps[len(Steps)-1].State)

	close(release)

	require.Eventually(t, func() bool {
		snap, _ := tracker.Snapshot(id)
		return snap.Done()
	}, time.Second, time.Millisecond)

	snap, err = tracker.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Equal(t, 100, snap.Percent)
	assert.Equal(t, SuccessMessage, snap.Message)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "abc", snap.Result.CampaignID)
	for _, s := range snap.Steps {
		assert.Equal(t, StepCompleted, s.State, s.ID)
	}
}

func TestTracker_FailureResetsProgress(t *testing.T) {
	tracker := newTestTracker(t, 5*time.Millisecond, time.Hour)
	boom := errors.New("HTTP error! status: 500")

	id := tracker.Start(models.CampaignDraft{}, func(ctx context.Context) (models.GenerateResult, error) {
		time.Sleep(15 * time.Millisecond)
		return models.GenerateResult{}, boom
	})

	require.Eventually(t, func() bool {
		snap, _ := tracker.Snapshot(id)
		return snap.Done()
	}, time.Second, time.Millisecond)

	snap, err := tracker.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, 0, snap.Percent)
	assert.Equal(t, FailureMessage, snap.Message)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Nil(t, snap.Result)
	for _, s := range snap.Steps {
		assert.Equal(t, StepPending, s.State, s.ID)
	}
}

func TestTracker_UnknownJob(t *testing.T) {
	tracker := newTestTracker(t, time.Hour, time.Hour)

	_, err := tracker.Snapshot("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestTracker_ExpiresFinishedJobs(t *testing.T) {
	tracker := newTestTracker(t, time.Hour, 20*time.Millisecond)

	id := tracker.Start(models.CampaignDraft{}, func(ctx context.Context) (models.GenerateResult, error) {
		return models.GenerateResult{}, nil
	})

	require.Eventually(t, func() bool {
		_, err := tracker.Snapshot(id)
		return errors.Is(err, ErrJobNotFound)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, tracker.Len())
}

func TestTracker_KeepsRunningJobsPastTTL(t *testing.T) {
	tracker := newTestTracker(t, time.Hour, 10*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	id := tracker.Start(models.CampaignDraft{}, func(ctx context.Context) (models.GenerateResult, error) {
		<-release
		return models.GenerateResult{}, nil
	})

	time.Sleep(50 * time.Millisecond)
	_, err := tracker.Snapshot(id)
	assert.NoError(t, err)
}

func TestTracker_CloseCancelsRunningJobs(t *testing.T) {
	tracker := NewTracker(Options{Interval: time.Millisecond, TTL: time.Hour}, log.NewNopLogger())

	started := make(chan struct{})
	id := tracker.Start(models.CampaignDraft{}, func(ctx context.Context) (models.GenerateResult, error) {
		close(started)
		<-ctx.Done()
		return models.GenerateResult{}, ctx.Err()
	})
	<-started

	tracker.Close()
	tracker.Close()

	snap, err := tracker.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.ErrorIs(t, snap.Err, context.Canceled)
}
