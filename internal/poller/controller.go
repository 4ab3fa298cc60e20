package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"backend-acting/internal/models"
)

// Refresher rebuilds the board projection from the shared store.
type Refresher interface {
	Refresh(ctx context.Context) ([]models.DoctorQueueGroup, error)
}

// Controller keeps this instance's board eventually consistent with the
// shared store. Other front-ends (reception, doctor pad, treatment room)
// write to the same tables with no coordination, so the board is re-pulled
// on a ticker. Polls that land right after a local write are skipped: the
// local mutation already refreshed the projection, and a stale in-flight
// read must not clobber it. This masks the visibility of concurrent writes
// for the window's duration - it does not detect them.
type Controller struct {
	refresher      Refresher
	interval       time.Duration
	suppressWindow time.Duration
	now            func() time.Time

	mu               sync.Mutex
	groups           []models.DoctorQueueGroup
	lastLocalWriteAt time.Time
}

func New(r Refresher, interval, suppressWindow time.Duration) *Controller {
	return &Controller{
		refresher:      r,
		interval:       interval,
		suppressWindow: suppressWindow,
		now:            time.Now,
	}
}

// Run drives the periodic pull until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	if err := c.refresh(ctx); err != nil {
		log.Println("initial board load failed:", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	c.mu.Lock()
	suppressed := !c.lastLocalWriteAt.IsZero() && c.now().Sub(c.lastLocalWriteAt) < c.suppressWindow
	c.mu.Unlock()

	if suppressed {
		return
	}

	// Fail-soft: keep the previous projection when a background pull dies
	if err := c.refresh(ctx); err != nil {
		log.Println("board poll failed:", err)
	}
}

// Mutate runs one mutating intent through the suppression protocol: the
// local-write mark is set before the call so a tick racing with the store
// round trip cannot overwrite the result, and the projection is re-pulled
// right after. A failed mutation clears the mark - nothing changed, the
// next poll should run normally.
func (c *Controller) Mutate(ctx context.Context, fn func(context.Context) error) error {
	c.mu.Lock()
	c.lastLocalWriteAt = c.now()
	c.mu.Unlock()

	if err := fn(ctx); err != nil {
		c.mu.Lock()
		c.lastLocalWriteAt = time.Time{}
		c.mu.Unlock()
		return err
	}

	if err := c.refresh(ctx); err != nil {
		log.Println("refresh after mutation failed:", err)
	}

	return nil
}

func (c *Controller) refresh(ctx context.Context) error {
	groups, err := c.refresher.Refresh(ctx)
	if err != nil {
		return err
	}

	// Whole projection swapped at once - readers never see a torn board
	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()

	return nil
}

// Snapshot returns the last complete projection.
func (c *Controller) Snapshot() []models.DoctorQueueGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups
}
