package persist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/biolink/internal/models"
)

type recordingUpdater struct {
	mu      sync.Mutex
	patches []models.ProfilePatch
	err     error
}

func (updater *recordingUpdater) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	updater.mu.Lock()
	defer updater.mu.Unlock()
	updater.patches = append(updater.patches, patch)

	return updater.err
}

func (updater *recordingUpdater) recorded() []models.ProfilePatch {
	updater.mu.Lock()
	defer updater.mu.Unlock()

	snapshot := make([]models.ProfilePatch, len(updater.patches))
	copy(snapshot, updater.patches)

	return snapshot
}

func TestScheduleCoalescesToLastPayload(t *testing.T) {
	updater := &recordingUpdater{}
	gateway := New(updater, "user-1", 30*time.Millisecond, nil)

	gateway.Schedule(models.ProfilePatch{models.FieldBio: "d"})
	gateway.Schedule(models.ProfilePatch{models.FieldBio: "dr"})
	gateway.Schedule(models.ProfilePatch{models.FieldBio: "draft"})

	time.Sleep(100 * time.Millisecond)

	patches := updater.recorded()
	require.Len(t, patches, 1)
	assert.Equal(t, models.ProfilePatch{models.FieldBio: "draft"}, patches[0])
}

func TestScheduleWritesOncePerQuietPeriod(t *testing.T) {
	updater := &recordingUpdater{}
	gateway := New(updater, "user-1", 20*time.Millisecond, nil)

	gateway.Schedule(models.ProfilePatch{models.FieldBio: "first"})
	time.Sleep(70 * time.Millisecond)
	gateway.Schedule(models.ProfilePatch{models.FieldBio: "second"})
	time.Sleep(70 * time.Millisecond)

	patches := updater.recorded()
	require.Len(t, patches, 2)
	assert.Equal(t, models.ProfilePatch{models.FieldBio: "first"}, patches[0])
	assert.Equal(t, models.ProfilePatch{models.FieldBio: "second"}, patches[1])
}

func TestImmediateBypassesTheDebounce(t *testing.T) {
	updater := &recordingUpdater{}
	gateway := New(updater, "user-1", time.Hour, nil)

	gateway.Immediate(context.Background(), models.ProfilePatch{models.FieldThemeID: "dark"})

	patches := updater.recorded()
	require.Len(t, patches, 1)
	assert.Equal(t, models.ProfilePatch{models.FieldThemeID: "dark"}, patches[0])
}

func TestFlushWritesThePendingPayload(t *testing.T) {
	updater := &recordingUpdater{}
	gateway := New(updater, "user-1", time.Hour, nil)

	gateway.Schedule(models.ProfilePatch{models.FieldBio: "pending"})
	gateway.Flush(context.Background())

	patches := updater.recorded()
	require.Len(t, patches, 1)
	assert.Equal(t, models.ProfilePatch{models.FieldBio: "pending"}, patches[0])

	// A second flush has nothing left to write.
	gateway.Flush(context.Background())
	assert.Len(t, updater.recorded(), 1)
}

func TestFailuresReachTheErrorCallback(t *testing.T) {
	updater := &recordingUpdater{err: assert.AnError}

	reported := make(chan error, 1)
	gateway := New(updater, "user-1", 10*time.Millisecond, func(err error) {
		reported <- err
	})

	gateway.Schedule(models.ProfilePatch{models.FieldBio: "broken"})

	select {
	case err := <-reported:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(time.Second):
		t.Fatal("error callback was never invoked")
	}
}
