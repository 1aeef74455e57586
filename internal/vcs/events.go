package vcs

import "github.com/dshills/statusicons/internal/event"

// Status event topics.
const (
	// TopicStatusCompleted is published when a fetch batch finishes,
	// successfully or not.
	TopicStatusCompleted event.Topic = "vcs.status.completed"

	// TopicStatusInvalidated is published when cached entries are dropped
	// back to LevelNone.
	TopicStatusInvalidated event.Topic = "vcs.status.invalidated"

	// TopicStatusAll matches every status topic.
	TopicStatusAll event.Topic = "vcs.status.*"
)

// StatusCompleted is published after a fetch batch.
type StatusCompleted struct {
	Tier  Tier
	Paths []string
	Err   error
}

// EventTopic implements event.TopicProvider.
func (StatusCompleted) EventTopic() event.Topic {
	return TopicStatusCompleted
}

// StatusInvalidated is published by Fetcher.Invalidate. Empty Paths means
// the whole cache was dropped.
type StatusInvalidated struct {
	Paths []string
}

// EventTopic implements event.TopicProvider.
func (StatusInvalidated) EventTopic() event.Topic {
	return TopicStatusInvalidated
}
