// Package pubsub provides in-process publish/subscribe fan-out of run
// observations, decoupling the step loop from consumers like the live
// network stream.
package pubsub

import (
	"context"
	"sync"
)

// subscriptionBuffer is the per-subscription channel depth. Slow consumers
// lose messages rather than stalling the step loop.
const subscriptionBuffer = 100

// Broker fans messages of type T out to topic subscribers.
type Broker[T any] struct {
	subscribers map[string]map[*Subscription[T]]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription is a live subscription to one topic.
type Subscription[T any] struct {
	topic     string
	channel   chan T
	broker    *Broker[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subscribers: make(map[string]map[*Subscription[T]]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a subscription to a topic. The subscription ends when the
// context is canceled, Unsubscribe is called or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context, topic string) *Subscription[T] {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, subscriptionBuffer),
		broker:  b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription[T]]bool)
	}
	b.subscribers[topic][sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub
}

// Publish delivers a message to all subscribers of a topic. Full subscriber
// buffers drop the message; the publisher never blocks.
func (b *Broker[T]) Publish(topic string, msg T) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	// Snapshot under lock; sends happen outside it so a slow consumer cannot
	// hold the subscriber map.
	b.mu.RLock()
	topicSubs := b.subscribers[topic]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription[T], 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- msg:
		default:
		}
	}
}

// Shutdown closes every subscription and rejects further publishes.
func (b *Broker[T]) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	close(b.shutdown)
	b.shutdownMu.Unlock()

	b.mu.Lock()
	for _, subs := range b.subscribers {
		for sub := range subs {
			sub.close()
		}
	}
	b.subscribers = make(map[string]map[*Subscription[T]]bool)
	b.mu.Unlock()
}

// Channel returns the receive channel of the subscription.
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Topic returns the topic the subscription listens on.
func (s *Subscription[T]) Topic() string {
	return s.topic
}

// Unsubscribe removes the subscription from its broker and closes its channel.
func (s *Subscription[T]) Unsubscribe() {
	s.broker.mu.Lock()
	if subs := s.broker.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.broker.subscribers, s.topic)
		}
	}
	s.broker.mu.Unlock()
	s.close()
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.channel)
	})
}
