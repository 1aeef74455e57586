// Package notify delivers settings changes to observers such as the
// overlay refresh broker and the log level hook.
//
// Delivery is synchronous, in subscription order, on the goroutine that
// made the change. Observers must not block.
package notify

import (
	"strings"
	"sync"
)

// ChangeType tells a runtime set from a full reload.
type ChangeType int

const (
	// ChangeSet is a single setting changed at runtime.
	ChangeSet ChangeType = iota

	// ChangeReload means any setting may have changed.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change describes one settings change.
type Change struct {
	// Path is the dot-separated setting path, e.g. "overlay.project_icons".
	// Empty for reloads.
	Path string

	Type     ChangeType
	OldValue any
	NewValue any

	// Source is where the change came from ("runtime", "file").
	Source string
}

// Affects reports whether the change may touch the settings under prefix.
// A reload affects everything; an empty prefix matches every change.
func (c Change) Affects(prefix string) bool {
	if c.Type == ChangeReload || prefix == "" {
		return true
	}
	return c.Path == prefix || strings.HasPrefix(c.Path, prefix+".")
}

// Observer is called for each change it subscribed to.
type Observer func(change Change)

type entry struct {
	id       uint64
	prefix   string
	observer Observer
}

// Subscription is an observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe stops delivery to the observer. It is safe to call twice.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.remove(s.id)
	}
}

// Notifier fans settings changes out to observers.
type Notifier struct {
	mu      sync.RWMutex
	entries []entry
	nextID  uint64
	closed  bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers observer for changes at or below prefix, and
// for reloads. "overlay" receives "overlay.icon_size" but not "overlayx".
func (n *Notifier) SubscribePath(prefix string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.entries = append(n.entries, entry{id: n.nextID, prefix: prefix, observer: observer})
	return &Subscription{id: n.nextID, notifier: n}
}

// Notify delivers change to every matching observer. Changes sent after
// Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	matched := make([]Observer, 0, len(n.entries))
	for _, e := range n.entries {
		if change.Affects(e.prefix) {
			matched = append(matched, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range matched {
		obs(change)
	}
}

// NotifySet announces a runtime change of one setting.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReload announces that every setting may have changed.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// Close drops all observers. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.entries = nil
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i:i], n.entries[i+1:]...)
			return
		}
	}
}
