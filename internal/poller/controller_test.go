package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-acting/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	groups []models.DoctorQueueGroup
	err    error
	calls  int
}

func (f *fakeRefresher) Refresh(_ context.Context) ([]models.DoctorQueueGroup, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.groups, nil
}

func group(doctorID int64, waiting int) models.DoctorQueueGroup {
	return models.DoctorQueueGroup{
		Doctor:       models.Doctor{ID: doctorID, Name: "Kim"},
		TotalWaiting: waiting,
	}
}

func testController(f *fakeRefresher, at time.Time) *Controller {
	c := New(f, 5*time.Second, 2*time.Second)
	c.now = func() time.Time { return at }
	return c
}

func TestMutateRefreshesProjection(t *testing.T) {
	f := &fakeRefresher{groups: []models.DoctorQueueGroup{group(1, 0)}}
	c := testController(f, time.Unix(1000, 0))

	err := c.Mutate(context.Background(), func(ctx context.Context) error {
		// The store write lands and the next read sees it
		f.groups = []models.DoctorQueueGroup{group(1, 1)}
		return nil
	})
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].TotalWaiting)
	assert.Equal(t, 1, f.calls)
}

func TestTickSuppressedInsideWindow(t *testing.T) {
	base := time.Unix(1000, 0)
	f := &fakeRefresher{groups: []models.DoctorQueueGroup{group(1, 1)}}
	c := testController(f, base)

	// Local add at t0: projection now has the new task
	require.NoError(t, c.Mutate(context.Background(), func(ctx context.Context) error {
		return nil
	}))
	require.Equal(t, 1, c.Snapshot()[0].TotalWaiting)

	// A stale poll arrives one second later carrying an older snapshot
	f.groups = []models.DoctorQueueGroup{group(1, 0)}
	c.now = func() time.Time { return base.Add(time.Second) }
	c.tick(context.Background())

	// Suppressed: the locally added task is still visible
	assert.Equal(t, 1, c.Snapshot()[0].TotalWaiting)
	assert.Equal(t, 1, f.calls)

	// Past the window the poll goes through again
	c.now = func() time.Time { return base.Add(3 * time.Second) }
	c.tick(context.Background())
	assert.Equal(t, 0, c.Snapshot()[0].TotalWaiting)
	assert.Equal(t, 2, f.calls)
}

func TestFailedMutationDoesNotSuppress(t *testing.T) {
	base := time.Unix(1000, 0)
	f := &fakeRefresher{groups: []models.DoctorQueueGroup{group(1, 0)}}
	c := testController(f, base)

	boom := errors.New("store down")
	err := c.Mutate(context.Background(), func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.calls)

	// Nothing changed locally, so the very next tick must poll normally
	c.tick(context.Background())
	assert.Equal(t, 1, f.calls)
	require.Len(t, c.Snapshot(), 1)
}

func TestFailedPollKeepsPreviousProjection(t *testing.T) {
	f := &fakeRefresher{groups: []models.DoctorQueueGroup{group(1, 2)}}
	c := testController(f, time.Unix(1000, 0))

	c.tick(context.Background())
	require.Equal(t, 2, c.Snapshot()[0].TotalWaiting)

	f.err = errors.New("timeout")
	c.tick(context.Background())

	// Fail-soft: last good board stays up
	assert.Equal(t, 2, c.Snapshot()[0].TotalWaiting)
}

func TestTickWithoutLocalWriteRefreshes(t *testing.T) {
	f := &fakeRefresher{groups: []models.DoctorQueueGroup{group(1, 0), group(2, 3)}}
	c := testController(f, time.Unix(1000, 0))

	c.tick(context.Background())
	assert.Len(t, c.Snapshot(), 2)
	assert.Equal(t, 1, f.calls)
}
