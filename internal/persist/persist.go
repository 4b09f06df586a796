// Package persist implements the debounced persistence gateway between
// the optimistic in-memory profile state and the document store.
//
// Keystroke-driven edits are coalesced: every Schedule call replaces the
// pending payload and restarts a single quiet-period timer, so at most one
// combined write goes out per quiet period and it carries the last
// payload. Discrete actions bypass the debounce via Immediate. Writes are
// fire-and-forget: a failure is reported through the error callback and
// the optimistic state is never rolled back.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/patric-chuzhbe/biolink/internal/models"
)

type profileUpdater interface {
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error
}

// Gateway wraps the document store's profile update operation.
type Gateway struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending models.ProfilePatch

	db      profileUpdater
	userID  string
	delay   time.Duration
	onError func(error)
}

// New returns a gateway persisting patches of the given user's profile
// after the quiet-period delay. onError receives persistence failures; it
// may be nil.
func New(db profileUpdater, userID string, delay time.Duration, onError func(error)) *Gateway {
	return &Gateway{
		db:      db,
		userID:  userID,
		delay:   delay,
		onError: onError,
	}
}

// Schedule replaces the pending payload with the given patch and restarts
// the quiet-period timer. Only the last payload scheduled within a quiet
// period is written.
func (gateway *Gateway) Schedule(patch models.ProfilePatch) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	gateway.pending = patch
	if gateway.timer != nil {
		gateway.timer.Stop()
	}
	gateway.timer = time.AfterFunc(gateway.delay, gateway.fire)
}

// Immediate writes the patch right away, bypassing the debounce. Used for
// discrete actions such as theme switches, color picks and uploads.
func (gateway *Gateway) Immediate(ctx context.Context, patch models.ProfilePatch) {
	if err := gateway.db.UpdateProfile(ctx, gateway.userID, patch); err != nil {
		gateway.reportError(err)
	}
}

// Flush writes any pending payload out immediately and cancels the timer.
// Called on shutdown so a trailing quiet period does not lose the write.
func (gateway *Gateway) Flush(ctx context.Context) {
	gateway.mu.Lock()
	patch := gateway.pending
	gateway.pending = nil
	if gateway.timer != nil {
		gateway.timer.Stop()
		gateway.timer = nil
	}
	gateway.mu.Unlock()

	if patch == nil {
		return
	}
	if err := gateway.db.UpdateProfile(ctx, gateway.userID, patch); err != nil {
		gateway.reportError(err)
	}
}

func (gateway *Gateway) fire() {
	gateway.mu.Lock()
	patch := gateway.pending
	gateway.pending = nil
	gateway.timer = nil
	gateway.mu.Unlock()

	if patch == nil {
		return
	}
	if err := gateway.db.UpdateProfile(context.Background(), gateway.userID, patch); err != nil {
		gateway.reportError(err)
	}
}

func (gateway *Gateway) reportError(err error) {
	if gateway.onError != nil {
		gateway.onError(err)
	}
}
