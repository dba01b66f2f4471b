// Package notify delivers user-feedback events for record mutations over
// channels. Producers are the callers of the calculation core (stores and
// commands); the core itself never publishes.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
)

// Kind is what happened.
type Kind int

const (
	RecordSaved Kind = iota + 1
	RecordDeleted
	RecordFailed
	Imported
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case RecordSaved:
		return "saved"
	case RecordDeleted:
		return "deleted"
	case RecordFailed:
		return "failed"
	case Imported:
		return "imported"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Severity maps to the alert style shown to the user.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Event is one notification.
type Event struct {
	Kind     Kind
	Severity Severity
	Message  string
	RecordID string
	Method   emissions.Method
	Count    int
	Err      error
	At       time.Time
}

// Saved builds a success event for a stored record.
func Saved(id string, method emissions.Method) Event {
	return Event{
		Kind:     RecordSaved,
		Severity: SeveritySuccess,
		Message:  fmt.Sprintf("%s record %s saved", method.Category().Label(), id),
		RecordID: id,
		Method:   method,
		Count:    1,
	}
}

// Deleted builds a success event for a removed record.
func Deleted(id string) Event {
	return Event{
		Kind:     RecordDeleted,
		Severity: SeveritySuccess,
		Message:  fmt.Sprintf("record %s deleted", id),
		RecordID: id,
		Count:    1,
	}
}

// Failed builds an error event for a failed mutation.
func Failed(op, id string, err error) Event {
	msg := fmt.Sprintf("%s failed: %v", op, err)
	if id != "" {
		msg = fmt.Sprintf("%s %s failed: %v", op, id, err)
	}
	return Event{Kind: RecordFailed, Severity: SeverityError, Message: msg, RecordID: id, Err: err}
}

// ImportedN builds an info event for a bulk import.
func ImportedN(n int) Event {
	return Event{Kind: Imported, Severity: SeverityInfo, Message: fmt.Sprintf("%d records imported", n), Count: n}
}

// Publisher accepts events.
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers. Each subscriber has its own buffered
// channel; when it is full the event is dropped for that subscriber and
// counted, so a slow reader never blocks a producer.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	dropped int
	closed  bool
	now     func() time.Time
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]chan Event{}, now: time.Now}
}

// Subscribe returns a channel of future events and a cancel func that
// unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, max(buffer, 1))
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers e to every subscriber without blocking. A zero At is set
// to the current time.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if e.At.IsZero() {
		e.At = b.now()
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
		}
	}
}

// Dropped returns how many deliveries were dropped on full subscribers.
func (b *Bus) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Discard is a Publisher that drops every event.
type Discard struct{}

// Publish does nothing.
func (Discard) Publish(Event) {}
