// Package activity is cadastro's append-only audit trail.
//
// Entries get sequential ids from 1 and are never modified or removed while
// the process lives (Reset exists for tests). Live subscribers receive every
// new entry for their user; a full subscriber queue drops entries instead of
// stalling writers.
package activity

import (
	"sync"
	"time"
)

// Action is the kind of operation recorded.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionLogin  Action = "LOGIN"
	ActionView   Action = "VIEW"
	ActionList   Action = "LIST"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// SystemUserID scopes entries not bound to a single account (listing).
const SystemUserID int64 = 0

const defaultSubscriberQueue = 64

// Entry is one audit record.
type Entry struct {
	ID        int64
	Timestamp time.Time
	UserID    int64
	Action    Action
	Details   string
}

type subscriber struct {
	userID int64
	ch     chan Entry
}

// Log is an in-memory append-only activity log. The zero value is not usable; use New.
type Log struct {
	now func() time.Time

	mu      sync.RWMutex
	nextID  int64
	entries []Entry

	subMu     sync.RWMutex
	subNext   uint64
	subs      map[uint64]subscriber
	queueSize int
}

// Option customizes a Log.
type Option func(*Log)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSubscriberQueue sets the per-subscriber buffer size.
func WithSubscriberQueue(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// New returns an empty Log.
func New(opts ...Option) *Log {
	l := &Log{
		now:       func() time.Time { return time.Now().UTC() },
		nextID:    1,
		subs:      make(map[uint64]subscriber),
		queueSize: defaultSubscriberQueue,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an entry and returns it.
func (l *Log) Record(userID int64, action Action, details string) Entry {
	l.mu.Lock()
	e := Entry{
		ID:        l.nextID,
		Timestamp: l.now(),
		UserID:    userID,
		Action:    action,
		Details:   details,
	}
	l.nextID++
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	l.broadcast(e)
	return e
}

// Query returns up to limit of the user's most recent entries, oldest first.
// A non-positive limit returns nil.
func (l *Log) Query(userID int64, limit int) []Entry {
	if limit <= 0 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0, min(limit, len(l.entries)))
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Count returns the total number of entries.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Reset drops all entries and restarts ids at 1. Subscribers stay attached.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.nextID = 1
}

// Subscribe streams future entries for userID. The returned cancel func is
// idempotent and closes the channel.
func (l *Log) Subscribe(userID int64) (<-chan Entry, func()) {
	ch := make(chan Entry, l.queueSize)

	l.subMu.Lock()
	id := l.subNext
	l.subNext++
	l.subs[id] = subscriber{userID: userID, ch: ch}
	l.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (l *Log) Subscribers() int {
	l.subMu.RLock()
	defer l.subMu.RUnlock()
	return len(l.subs)
}

// broadcast holds subMu for reading so cancel cannot close a channel mid-send.
func (l *Log) broadcast(e Entry) {
	l.subMu.RLock()
	defer l.subMu.RUnlock()

	for _, s := range l.subs {
		if s.userID != e.UserID {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}
