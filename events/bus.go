package events

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one completed mutation.
// For inserts URI is the new item's locator; otherwise it is the request URI.
type Change struct {
	URI   string    `json:"uri"`
	Op    Op        `json:"op"`
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

// Subscription receives changes for one URI on C until Close is called.
type Subscription struct {
	C <-chan Change

	ch          chan Change
	uri         string
	descendants bool
	bus         *Bus
	once        sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
}

// Bus fans change descriptors out to subscriptions and callbacks.
type Bus struct {
	mu        sync.RWMutex
	subs      map[*Subscription]struct{}
	callbacks []func(Change)
	buffer    int
	logger    *slog.Logger
}

// NewBus creates a bus whose subscriptions buffer up to buffer changes.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer < 1 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers interest in uri. With descendants set, changes on any
// URI below it are delivered as well.
func (b *Bus) Subscribe(uri string, descendants bool) *Subscription {
	ch := make(chan Change, b.buffer)
	sub := &Subscription{
		C:           ch,
		ch:          ch,
		uri:         strings.TrimRight(uri, "/"),
		descendants: descendants,
		bus:         b,
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// OnChange registers a callback invoked synchronously for every change.
func (b *Bus) OnChange(fn func(Change)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, fn)
}

// NotifyChange delivers c to every matching subscription without blocking.
func (b *Bus) NotifyChange(c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	target := strings.TrimRight(c.URI, "/")

	b.mu.RLock()
	for sub := range b.subs {
		if !sub.matches(target) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			b.logger.Warn("dropping change for slow subscriber", "uri", c.URI, "subscriber", sub.uri)
		}
	}
	callbacks := b.callbacks
	b.mu.RUnlock()

	// Callbacks run unlocked so they may subscribe or register more callbacks
	for _, fn := range callbacks {
		fn(c)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every open subscription.
func (b *Bus) Close() {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// matches follows content observer rules: a change on a URI reaches observers
// of that URI and of everything beneath it, and observers registered with
// descendants also see changes beneath their own URI.
func (s *Subscription) matches(target string) bool {
	if target == s.uri {
		return true
	}
	if isAncestor(target, s.uri) {
		return true
	}
	return s.descendants && isAncestor(s.uri, target)
}

func isAncestor(parent, child string) bool {
	return strings.HasPrefix(child, parent+"/")
}
