package session

import (
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// DefaultNotificationTTL is how long a posted notification stays visible
// when neither dismissed nor replaced.
const DefaultNotificationTTL = 5 * time.Second

// NotificationCenter holds at most one transient notification. Posting
// replaces the current one outright and restarts the expiry timer; there is
// never more than one pending timer, and a timer that fires after its
// notification was replaced or dismissed has no effect.
type NotificationCenter struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *domain.Notification
	timer   *time.Timer
	seq     uint64
}

// NewNotificationCenter creates a center with the given expiry duration.
// Non-positive durations fall back to DefaultNotificationTTL.
func NewNotificationCenter(ttl time.Duration) *NotificationCenter {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationCenter{ttl: ttl}
}

// Post replaces any active notification and schedules its expiry.
func (nc *NotificationCenter) Post(kind domain.NotificationKind, message string) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.seq++
	seq := nc.seq

	nc.current = &domain.Notification{
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if nc.timer != nil {
		nc.timer.Stop()
	}
	nc.timer = time.AfterFunc(nc.ttl, func() {
		nc.expire(seq)
	})
}

// Dismiss clears the active notification before its expiry. A later firing
// of the cancelled timer is ignored via the sequence guard.
func (nc *NotificationCenter) Dismiss() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.seq++
	if nc.timer != nil {
		nc.timer.Stop()
		nc.timer = nil
	}
	nc.current = nil
}

// Current returns a copy of the active notification, or nil.
func (nc *NotificationCenter) Current() *domain.Notification {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if nc.current == nil {
		return nil
	}
	n := *nc.current
	return &n
}

// expire clears the notification the timer was scheduled for. The sequence
// check drops stale firings: if the slot was re-posted or dismissed since
// scheduling, this timer no longer owns it.
func (nc *NotificationCenter) expire(seq uint64) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if nc.seq != seq {
		return
	}
	nc.current = nil
	nc.timer = nil
}
