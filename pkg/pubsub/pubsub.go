// Package pubsub fans messages out to in-process subscribers by topic.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// AllTopics subscribes to every topic
const AllTopics = "*"

// ErrClosed is returned by Subscribe after Close
var ErrClosed = errors.New("pubsub: broker closed")

// Broker delivers messages of type T. Publish never blocks: a subscriber
// whose buffer is full misses the message and its Dropped count grows.
type Broker[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription[T]]struct{}
	buffer      int
	done        chan struct{}
	closed      bool
}

// Subscription receives the messages published to one topic
type Subscription[T any] struct {
	topic     string
	ch        chan T
	broker    *Broker[T]
	cancel    context.CancelFunc
	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewBroker creates a broker whose subscriptions buffer up to buffer messages
func NewBroker[T any](buffer int) *Broker[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker[T]{
		subscribers: make(map[string]map[*Subscription[T]]struct{}),
		buffer:      buffer,
		done:        make(chan struct{}),
	}
}

// Subscribe registers for topic until ctx ends or Unsubscribe is called
func (b *Broker[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:  topic,
		ch:     make(chan T, b.buffer),
		broker: b,
		cancel: cancel,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription[T]]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.done:
		}
	}()
	return sub, nil
}

// Publish sends msg to the topic's subscribers and to AllTopics
// subscribers, returning how many received it
func (b *Broker[T]) Publish(topic string, msg T) int {
	// Snapshot under the lock; sends happen outside it
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return 0
	}
	subs := make([]*Subscription[T], 0, len(b.subscribers[topic])+len(b.subscribers[AllTopics]))
	for sub := range b.subscribers[topic] {
		subs = append(subs, sub)
	}
	if topic != AllTopics {
		for sub := range b.subscribers[AllTopics] {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.offer(msg) {
			delivered++
		}
	}
	return delivered
}

// Subscribers returns the number of subscriptions to topic
func (b *Broker[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Close ends every subscription; later Publish calls are dropped
func (b *Broker[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	subs := b.subscribers
	b.subscribers = make(map[string]map[*Subscription[T]]struct{})
	b.mu.Unlock()

	for _, topicSubs := range subs {
		for sub := range topicSubs {
			sub.cancel()
			sub.close()
		}
	}
}

// C returns the message channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Dropped returns how many messages were missed because the buffer was full
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// Unsubscribe ends the subscription. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	b := s.broker
	b.mu.Lock()
	if topicSubs := b.subscribers[s.topic]; topicSubs != nil {
		delete(topicSubs, s)
		if len(topicSubs) == 0 {
			delete(b.subscribers, s.topic)
		}
	}
	b.mu.Unlock()

	s.close()
}

// offer delivers msg without blocking. Holding the broker's read lock keeps
// Unsubscribe and Close from closing the channel mid-send.
func (s *Subscription[T]) offer(msg T) bool {
	b := s.broker
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.subscribers[s.topic][s]; !ok {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}
