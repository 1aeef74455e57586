package event

import "strings"

// Topic is a hierarchical event type using dot notation,
// e.g. "vcs.status.completed".
type Topic string

// Wildcard segments accepted in subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more trailing segments.
	WildcardMulti = "**"

	separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), separator)
}

// IsValid reports whether the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return t != ""
}

// Matches reports whether the concrete topic t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t {
		return true
	}
	return matchSegments(pattern.Segments(), t.Segments())
}

func matchSegments(pattern, segs []string) bool {
	for i, p := range pattern {
		switch p {
		case WildcardMulti:
			// "**" only makes sense as the final segment.
			return i == len(pattern)-1
		case WildcardSingle:
			if i >= len(segs) {
				return false
			}
		default:
			if i >= len(segs) || segs[i] != p {
				return false
			}
		}
	}
	return len(pattern) == len(segs)
}
