// Package notifier implements the transient user-facing notices
// ("toasts") through which every non-fatal failure and status message is
// reported. Notices auto-dismiss after a fixed interval.
package notifier

import (
	"sync"
	"time"
)

// Severity distinguishes the kinds of notices shown to the user.
type Severity string

// Supported severities.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is one transient message.
type Notice struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	ShownAt  time.Time `json:"shown_at"`
}

// Notifier keeps the currently visible notices and dismisses each one
// after the configured TTL.
type Notifier struct {
	mu     sync.Mutex
	active []Notice
	ttl    time.Duration
	onShow func(Notice)
}

// New returns a notifier whose notices live for the given TTL.
func New(ttl time.Duration) *Notifier {
	return &Notifier{ttl: ttl}
}

// OnShow registers a callback invoked for every new notice, e.g. to log it.
func (n *Notifier) OnShow(callback func(Notice)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onShow = callback
}

// Notify shows a notice and schedules its dismissal.
func (n *Notifier) Notify(severity Severity, message string) {
	notice := Notice{
		Severity: severity,
		Message:  message,
		ShownAt:  time.Now(),
	}

	n.mu.Lock()
	n.active = append(n.active, notice)
	callback := n.onShow
	n.mu.Unlock()

	if callback != nil {
		callback(notice)
	}

	time.AfterFunc(n.ttl, func() {
		n.dismissOldest()
	})
}

// Error is shorthand for an error-severity notice.
func (n *Notifier) Error(message string) {
	n.Notify(SeverityError, message)
}

// Active returns a snapshot of the currently visible notices.
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	snapshot := make([]Notice, len(n.active))
	copy(snapshot, n.active)

	return snapshot
}

func (n *Notifier) dismissOldest() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.active) > 0 {
		n.active = n.active[1:]
	}
}
