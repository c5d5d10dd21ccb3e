package events

import (
	"reflect"
	"strings"
	"sync"
)

// Listener handles a triggered event. Arguments are forwarded positionally from Trigger.
// A non-nil result is a "defined" value; a returned error aborts dispatch.
type Listener func(args ...any) (any, error)

// Handler identifies one registration made by On. Go functions are not comparable,
// so the handler stands in for the callback when unregistering.
type Handler struct {
	fn    Listener
	names []string
}

// Names returns the event names the handler was registered under.
func (h *Handler) Names() []string {
	return append([]string(nil), h.names...)
}

type binding struct {
	handler *Handler
	context any
}

// Hub is a named multi-listener registry with synchronous dispatch.
// The zero value is ready to use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string][]binding
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string][]binding)}
}

// On registers fn under every space-separated name in names, bound to context.
// Registering the same function again adds an independent entry. A nil fn registers nothing;
// the returned handler then matches no listener.
func (h *Hub) On(names string, fn Listener, context any) *Handler {
	handler := &Handler{fn: fn, names: strings.Fields(names)}
	if fn == nil {
		return handler
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[string][]binding)
	}
	for _, name := range handler.names {
		h.listeners[name] = append(h.listeners[name], binding{handler: handler, context: context})
	}
	return handler
}

// OnMap registers each listener under its key. Keys may themselves be space-separated lists.
func (h *Hub) OnMap(listeners map[string]Listener, context any) map[string]*Handler {
	handlers := make(map[string]*Handler, len(listeners))
	for names, fn := range listeners {
		handlers[names] = h.On(names, fn, context)
	}
	return handlers
}

// Off removes listeners. Each empty filter ("" name, nil handler, nil context) matches
// everything for its dimension: Off("", nil, nil) clears the hub, Off(name, nil, nil) clears
// one name, and handler/context filters select entries matching either of them.
func (h *Hub) Off(name string, handler *Handler, context any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if name == "" && handler == nil && context == nil {
		h.listeners = make(map[string][]binding)
		return
	}

	names := []string{name}
	if name == "" {
		names = make([]string, 0, len(h.listeners))
		for n := range h.listeners {
			names = append(names, n)
		}
	}

	for _, n := range names {
		current, ok := h.listeners[n]
		if !ok {
			continue
		}
		if handler == nil && context == nil {
			delete(h.listeners, n)
			continue
		}
		kept := make([]binding, 0, len(current))
		for _, b := range current {
			if matches(b, handler, context) {
				continue
			}
			kept = append(kept, b)
		}
		if len(kept) == 0 {
			delete(h.listeners, n)
		} else {
			h.listeners[n] = kept
		}
	}
}

func matches(b binding, handler *Handler, context any) bool {
	if handler != nil && b.handler == handler {
		return true
	}
	return context != nil && sameContext(b.context, context)
}

// sameContext compares contexts without panicking on uncomparable types. Maps, slices and
// funcs match only themselves.
func sameContext(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}

// Trigger synchronously invokes every listener registered under name, in registration order.
// It returns the last non-nil result. The first listener error stops dispatch and is returned.
func (h *Hub) Trigger(name string, args ...any) (any, error) {
	h.mu.RLock()
	current := h.listeners[name]
	// Snapshot so listeners may call On/Off without deadlocking.
	snapshot := make([]binding, len(current))
	copy(snapshot, current)
	h.mu.RUnlock()

	var result any
	for _, b := range snapshot {
		out, err := b.handler.fn(args...)
		if err != nil {
			return nil, err
		}
		if out != nil {
			result = out
		}
	}
	return result, nil
}

// Names returns the event names that currently have listeners.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.listeners))
	for n := range h.listeners {
		names = append(names, n)
	}
	return names
}

// Count returns the number of listeners registered under name.
func (h *Hub) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[name])
}
