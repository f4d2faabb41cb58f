package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// BroadcastHook fans out settings events to in-process subscribers.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]chan SettingsEvent
	filters map[chan SettingsEvent]string
	next    int
	userOf  func(*http.Request) string
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs:    make(map[int]chan SettingsEvent),
		filters: make(map[chan SettingsEvent]string),
	}
}

// WithUserResolver makes ServeWebSocket and ServeSSE scope every stream to
// the user fn derives from the request (a session or auth header, not client
// input). Requests that resolve to no user are rejected with 401.
func (h *BroadcastHook) WithUserResolver(fn func(*http.Request) string) *BroadcastHook {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.userOf = fn
	return h
}

// streamUser picks the user a stream is scoped to. Without a resolver the
// client-supplied user_id query parameter is used and an empty value streams
// every user's events, which is only suitable for trusted consumers.
func (h *BroadcastHook) streamUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	h.mu.RLock()
	userOf := h.userOf
	h.mu.RUnlock()
	if userOf == nil {
		return r.URL.Query().Get("user_id"), true
	}
	userID := userOf(r)
	if userID == "" {
		http.Error(w, "dashboard: unknown viewer", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// SettingsChanged satisfies the RefreshHook interface and broadcasts events.
// Slow subscribers drop events instead of blocking the writer.
func (h *BroadcastHook) SettingsChanged(_ context.Context, event SettingsEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		if event.UserID != "" && h.filters[ch] != "" && h.filters[ch] != event.UserID {
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of every settings event and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan SettingsEvent, func()) {
	return h.SubscribeUser("")
}

// SubscribeUser only delivers events for userID. An empty id receives everything.
func (h *BroadcastHook) SubscribeUser(userID string) (<-chan SettingsEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan SettingsEvent, 8)
	h.subs[id] = ch
	h.filters[ch] = userID
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			delete(h.filters, sub)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams settings events as JSON.
// The stream is scoped as described on WithUserResolver.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.streamUser(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribeUser(userID)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for settings events,
// scoped the same way as ServeWebSocket.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.streamUser(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.SubscribeUser(userID)
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
