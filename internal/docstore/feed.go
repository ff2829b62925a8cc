package docstore

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-datastore/internal/model"
)

// FeedEvent is a single committed mutation. Fields is nil for deletions.
type FeedEvent struct {
	ID       string         `json:"id"`
	Revision model.Revision `json:"rev"`
	Fields   map[string]any `json:"fields,omitempty"`
	Deleted  bool           `json:"deleted,omitempty"`
}

// SubscribeFrom selects where a subscription starts.
type SubscribeFrom int

const (
	// FromNow delivers only mutations committed after Subscribe returns.
	FromNow SubscribeFrom = iota
	// FromBeginning first replays every existing document as a synthetic
	// create event, then continues live.
	FromBeginning
)

// Subscription is the handle a subscriber owns. The owner must call Cancel
// (directly or via Collection.Unsubscribe) or the subscription leaks for
// the life of the process.
type Subscription struct {
	out  chan FeedEvent
	done chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	pending []FeedEvent
	closed  bool

	cancelOnce sync.Once
	feed       *feed
}

// Events is the delivery channel. It is closed after Cancel once all
// queued events have been dropped.
func (s *Subscription) Events() <-chan FeedEvent { return s.out }

// Cancel stops delivery and releases the subscription. Safe to call more
// than once and with no events in flight.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.feed.remove(s)
		s.mu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.mu.Unlock()
		close(s.done)
	})
}

// enqueue never blocks the publisher; events wait in the pending queue
// until the drain goroutine hands them to the subscriber.
func (s *Subscription) enqueue(ev FeedEvent) {
	s.mu.Lock()
	if !s.closed {
		s.pending = append(s.pending, ev)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *Subscription) drain() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		ev := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

type feed struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newFeed() *feed {
	return &feed{subs: map[*Subscription]struct{}{}}
}

func (f *feed) publish(ev FeedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		sub.enqueue(ev)
	}
}

func (f *feed) add(sub *Subscription) {
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
}

func (f *feed) remove(sub *Subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
}

func (f *feed) closeAll() {
	f.mu.Lock()
	subs := make([]*Subscription, 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}

// Subscribe registers a change-feed listener on the collection. Events for
// one id are delivered in revision order; ordering across ids follows
// commit order. The mutating side never blocks on a slow subscriber.
func (c *Collection) Subscribe(ctx context.Context, from SubscribeFrom) (*Subscription, error) {
	sub := &Subscription{
		out:  make(chan FeedEvent, 16),
		done: make(chan struct{}),
		feed: c.feed,
	}
	sub.cond = sync.NewCond(&sub.mu)

	// Taking the commit mutex makes the replay snapshot and the live
	// registration a single point in the commit order: nothing is missed
	// and nothing is delivered twice.
	c.mu.Lock()
	if from == FromBeginning {
		docs, err := c.ListAll(ctx, OrderInsertion)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		for _, doc := range docs {
			sub.pending = append(sub.pending, FeedEvent{ID: doc.ID, Revision: doc.Revision, Fields: doc.Fields})
		}
	}
	c.feed.add(sub)
	c.mu.Unlock()

	go sub.drain()
	return sub, nil
}

// Unsubscribe releases a subscription obtained from Subscribe. Safe to
// call even if no events are in flight or the handle was already
// cancelled.
func (c *Collection) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}
