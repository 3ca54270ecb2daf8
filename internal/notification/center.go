// Package notification holds the single active user-facing notification.
//
// Center is a one-slot queue: Show replaces whatever is visible and cancels
// its expiry timer before arming a new one. Views never render directly;
// they subscribe and draw whatever Current returns.
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/domain"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler arms expiry callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Handle identifies a notification returned by Show.
type Handle string

// Observer is told about every change of the active notification.
// A nil argument means the slot is now empty.
type Observer func(current *domain.Notification)

// Option customizes a single Show call.
type Option func(*domain.Notification)

// WithTTL overrides the default lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(n *domain.Notification) {
		n.TTL = ttl
	}
}

// WithDetails attaches structured lines (ids, timestamps).
func WithDetails(details ...domain.NotificationDetail) Option {
	return func(n *domain.Notification) {
		n.Details = append(n.Details, details...)
	}
}

// Center owns the active notification slot.
type Center struct {
	mu          sync.Mutex
	scheduler   Scheduler
	now         func() time.Time
	defaultTTL  time.Duration
	detailedTTL time.Duration
	active      *domain.Notification
	timer       Stopper
	observers   []Observer
	closed      bool
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) CenterOption {
	return func(c *Center) {
		c.scheduler = s
	}
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) CenterOption {
	return func(c *Center) {
		c.now = now
	}
}

// NewCenter creates a center using the configured default lifetimes.
func NewCenter(cfg config.NotificationConfig, opts ...CenterOption) *Center {
	c := &Center{
		scheduler:   timeScheduler{},
		now:         time.Now,
		defaultTTL:  cfg.DefaultTTL(),
		detailedTTL: cfg.DetailedTTL(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show replaces the active notification.
func (c *Center) Show(kind domain.NotificationKind, message string, opts ...Option) Handle {
	n := &domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: c.now(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.TTL <= 0 {
		n.TTL = c.defaultTTL
		if len(n.Details) > 0 {
			n.TTL = c.detailedTTL
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Handle(n.ID)
	}
	c.stopTimerLocked()
	c.active = n
	id := n.ID
	c.timer = c.scheduler.AfterFunc(n.TTL, func() { c.expire(id) })
	observers, snapshot := c.observersLocked()
	c.mu.Unlock()

	notify(observers, snapshot)
	return Handle(id)
}

// Dismiss removes the notification if it is still active. Dismissing a
// replaced or expired notification does nothing.
func (c *Center) Dismiss(h Handle) {
	c.clear(string(h))
}

// Current returns a copy of the active notification.
func (c *Center) Current() (domain.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.Notification{}, false
	}
	return copyNotification(c.active), true
}

// Subscribe registers an observer for every change.
func (c *Center) Subscribe(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Close cancels the pending timer and ignores further Show calls.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.active = nil
	c.closed = true
}

func (c *Center) expire(id string) {
	c.clear(id)
}

func (c *Center) clear(id string) {
	c.mu.Lock()
	if c.active == nil || c.active.ID != id {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.active = nil
	observers, _ := c.observersLocked()
	c.mu.Unlock()

	notify(observers, nil)
}

func (c *Center) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Center) observersLocked() ([]Observer, *domain.Notification) {
	observers := append([]Observer(nil), c.observers...)
	if c.active == nil {
		return observers, nil
	}
	cp := copyNotification(c.active)
	return observers, &cp
}

func notify(observers []Observer, current *domain.Notification) {
	for _, o := range observers {
		o(current)
	}
}

func copyNotification(n *domain.Notification) domain.Notification {
	cp := *n
	cp.Details = append([]domain.NotificationDetail(nil), n.Details...)
	return cp
}
