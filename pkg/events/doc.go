// Package events provides Hub, the synchronous named-listener registry every observer owns.
package events
