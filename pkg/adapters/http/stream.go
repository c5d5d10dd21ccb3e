package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]map[string]struct{} // channel -> watched properties (empty = all)
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]map[string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a buffered channel receiving changes of the watched properties.
// The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(watch ...string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	filter := make(map[string]struct{}, len(watch))
	for _, name := range watch {
		if name = strings.TrimSpace(name); name != "" {
			filter[name] = struct{}{}
		}
	}

	ch := make(chan string, 10)
	sm.subscribers[ch] = filter

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber watching property.
func (sm *StreamManager) Broadcast(property string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch, filter := range sm.subscribers {
		if len(filter) > 0 {
			if _, ok := filter[property]; !ok {
				continue
			}
		}
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "property", property)
		}
	}
}

// broadcast is the "set" listener. args: target, name, value, oldValue
func (s *Server) broadcast(args ...any) (any, error) {
	if len(args) < 4 {
		return nil, nil
	}
	name, _ := args[1].(string)
	change := domain.Change{Property: name, Value: args[2], OldValue: args[3], Timestamp: time.Now().UTC()}
	bytes, err := json.Marshal(change)
	if err != nil {
		// Values that cannot be encoded are not streamed; the write itself proceeds.
		s.logger.Warn("SSE: change not encodable", "property", name, "error", err)
		return nil, nil
	}
	s.Streams.Broadcast(name, string(bytes))
	return nil, nil
}

// SubscribeEvents handles the GET /events request (SSE). The optional watch query parameter
// is a comma separated list of property names.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = strings.Split(q, ",")
	}
	ch, cancel := s.Streams.Subscribe(watch...)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
