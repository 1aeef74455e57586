// Package vcs holds the version-control status model shown by the overlay
// and the fetch subsystem that fills it.
//
// The overlay only reads Status values and asks for deeper ones through
// RequestStatus. Everything that mutates a Status lives in Fetcher.
package vcs

import (
	"fmt"
	"strings"
)

// ReflectionLevel is how much status information is known for an asset.
// Levels are ordered; a fetch only ever moves an asset forward, except
// that a failed fetch drops it back to LevelNone.
type ReflectionLevel int

const (
	// LevelNone means nothing is known yet.
	LevelNone ReflectionLevel = iota
	// LevelPending means a fetch is in flight.
	LevelPending
	// LevelPrevious means the local working-tree status is known.
	LevelPrevious
	// LevelRepository means the remote-authoritative status is known.
	LevelRepository
)

// Aliases used by per-view configuration.
const (
	LevelLocal  = LevelPrevious
	LevelRemote = LevelRepository
)

// String returns the level name.
func (l ReflectionLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelPending:
		return "pending"
	case LevelPrevious:
		return "local"
	case LevelRepository:
		return "remote"
	default:
		return "unknown"
	}
}

// Kind is the working-tree state of an asset.
type Kind int

const (
	// KindUnknown is the zero value: no local status fetched.
	KindUnknown Kind = iota
	KindNormal
	KindUnversioned
	KindAdded
	KindModified
	KindRenamed
	KindDeleted
	KindConflicted
	KindIgnored
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindNormal:
		return "normal"
	case KindUnversioned:
		return "unversioned"
	case KindAdded:
		return "added"
	case KindModified:
		return "modified"
	case KindRenamed:
		return "renamed"
	case KindDeleted:
		return "deleted"
	case KindConflicted:
		return "conflicted"
	case KindIgnored:
		return "ignored"
	default:
		return "invalid"
	}
}

// weight orders kinds by how much attention they deserve; directories
// report the heaviest kind among their contents.
func (k Kind) weight() int {
	switch k {
	case KindConflicted:
		return 6
	case KindDeleted:
		return 5
	case KindModified, KindRenamed:
		return 4
	case KindAdded:
		return 3
	case KindUnversioned:
		return 2
	case KindNormal, KindIgnored:
		return 1
	default:
		return 0
	}
}

// Status is the cached version-control status of one asset.
type Status struct {
	// AssetPath is the path the status belongs to. Empty means unknown.
	AssetPath string

	// ReflectionLevel is how deep the information below goes.
	ReflectionLevel ReflectionLevel

	// Kind is the working-tree state. Valid from LevelPrevious on.
	Kind Kind

	// Staged indicates the change is in the index.
	Staged bool

	// OutOfDate indicates the upstream branch holds a different version.
	// Valid at LevelRepository only.
	OutOfDate bool
}

// IsEmpty reports whether this is the unknown sentinel.
func (s Status) IsEmpty() bool {
	return s.AssetPath == ""
}

// StatusText returns a short human readable description, used as the
// overlay tooltip and by the status command.
func StatusText(s Status) string {
	if s.IsEmpty() {
		return "no status"
	}
	if s.ReflectionLevel == LevelNone {
		return "not fetched"
	}
	if s.ReflectionLevel == LevelPending && s.Kind == KindUnknown {
		return "fetching"
	}

	parts := []string{s.Kind.String()}
	if s.Staged {
		parts = append(parts, "staged")
	}
	if s.ReflectionLevel == LevelRepository && s.OutOfDate {
		parts = append(parts, "out of date")
	}
	if s.ReflectionLevel == LevelPending {
		parts = append(parts, "refreshing")
	}
	return strings.Join(parts, ", ")
}

// Mode is the reflection target configured per view.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

// String returns the mode name as written in configuration files.
func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// ParseMode parses "local" or "remote".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "previous":
		return ModeLocal, nil
	case "remote", "repository":
		return ModeRemote, nil
	default:
		return ModeLocal, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Tier is the depth an escalation request asks for.
type Tier int

const (
	// TierLocal asks for LevelPrevious.
	TierLocal Tier = iota
	// TierRemote asks for LevelRepository.
	TierRemote
)

// String returns the tier name.
func (t Tier) String() string {
	if t == TierRemote {
		return "remote"
	}
	return "local"
}

// Target returns the level a completed request of this tier reaches.
func (t Tier) Target() ReflectionLevel {
	if t == TierRemote {
		return LevelRepository
	}
	return LevelPrevious
}
