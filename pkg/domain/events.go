package domain

import (
	"strings"
	"time"
)

// EventKind is one of the six phases fired around an intercepted access.
type EventKind string

const (
	EventGetBefore EventKind = "get:before" // may override the read or call result
	EventGet       EventKind = "get"
	EventGetAfter  EventKind = "get:after"
	EventSetBefore EventKind = "set:before" // returning false cancels the write
	EventSet       EventKind = "set"
	EventSetAfter  EventKind = "set:after"
)

// Kinds lists every event kind in dispatch order.
var Kinds = []EventKind{
	EventGetBefore, EventGet, EventGetAfter,
	EventSetBefore, EventSet, EventSetAfter,
}

// IsBefore reports whether listener results of this kind act as overrides.
func (k EventKind) IsBefore() bool {
	return k == EventGetBefore || k == EventSetBefore
}

// Qualified returns the property-specific channel name, e.g. "set:before:x".
func (k EventKind) Qualified(property string) string {
	return string(k) + ":" + property
}

// ParseChannel splits a channel name into its kind and optional property.
// ok is false when the channel does not start with a known kind. Properties named "before"
// or "after" make "get:<property>" ambiguous; the phase reading wins.
func ParseChannel(channel string) (kind EventKind, property string, ok bool) {
	// Longest kinds first so "get:before:x" is not read as "get" + "before:x".
	for _, k := range []EventKind{EventGetBefore, EventGetAfter, EventSetBefore, EventSetAfter, EventGet, EventSet} {
		name := string(k)
		if channel == name {
			return k, "", true
		}
		if strings.HasPrefix(channel, name+":") {
			return k, channel[len(name)+1:], true
		}
	}
	return "", "", false
}

// Change is a committed write, as recorded by journals.
type Change struct {
	Property  string    `json:"property"`
	Value     any       `json:"value"`
	OldValue  any       `json:"old_value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
