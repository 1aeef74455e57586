// Package event provides the topic-based publish/subscribe bus that carries
// notifications (status completions, invalidations) between background
// workers and the UI.
//
// Delivery is synchronous in the publisher's goroutine. Handlers that touch
// UI state must hand off to the UI loop themselves.
package event

import (
	"context"
	"errors"
	"sync"
)

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event.
	// The event parameter is type-erased; handlers should type-assert.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TopicProvider is implemented by events that know their own topic.
type TopicProvider interface {
	EventTopic() Topic
}

// Envelope carries an arbitrary payload under an explicit topic.
type Envelope struct {
	Topic   Topic
	Payload any
}

// EventTopic implements TopicProvider.
func (e Envelope) EventTopic() Topic {
	return e.Topic
}

// Bus is the event bus interface.
type Bus interface {
	// Publish delivers event to every active subscription whose pattern
	// matches the event topic. Handler errors and panics are collected and
	// returned joined; they never stop delivery to other handlers.
	Publish(ctx context.Context, event any) error

	Subscribe(pattern Topic, handler Handler) (Subscription, error)
	SubscribeFunc(pattern Topic, fn HandlerFunc) (Subscription, error)
	Unsubscribe(sub Subscription) error

	// Close cancels all subscriptions; later calls fail with ErrBusClosed.
	Close()
}

type bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	closed bool
}

// NewBus creates a new event bus.
func NewBus() Bus {
	return &bus{}
}

func (b *bus) Publish(ctx context.Context, event any) error {
	t := topicOf(event)
	if t == "" {
		return ErrInvalidEvent
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.IsActive() && t.Matches(sub.pattern) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, sub := range matched {
		if err := deliver(ctx, sub, t, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliver runs one handler, converting a panic into a PanicError.
func deliver(ctx context.Context, sub *subscription, t Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{SubscriptionID: sub.id, Topic: t, Value: r}
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		return &HandlerError{SubscriptionID: sub.id, Topic: t, Err: herr}
	}
	return nil
}

func (b *bus) Subscribe(pattern Topic, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	sub := newSubscription(pattern, handler)
	b.subs = append(b.subs, sub)
	return sub, nil
}

func (b *bus) SubscribeFunc(pattern Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

func (b *bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		s.Cancel()
	}
	b.subs = nil
	b.closed = true
}

func topicOf(event any) Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}
