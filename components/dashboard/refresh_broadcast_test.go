package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := SettingsEvent{UserID: "user-1", Context: ContextAdmin, Reason: "reorder"}
	if err := hook.SettingsChanged(context.Background(), event); err != nil {
		t.Fatalf("SettingsChanged returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.Context != event.Context || e.Reason != "reorder" {
			t.Fatalf("unexpected event %+v", e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookSubscribeUserFiltersOtherUsers(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.SubscribeUser("user-1")
	defer cancel()
	_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-2", Reason: "toggle_module"})
	_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-1", Reason: "reset"})
	select {
	case e := <-ch:
		if e.UserID != "user-1" {
			t.Fatalf("expected only user-1 events, got %+v", e)
		}
	default:
		t.Fatalf("expected user-1 event")
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected extra event %+v", e)
	default:
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	cancel()
}

func TestBroadcastHookServeSSEStreamsUserEvents(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	resp, err := http.Get(server.URL + "?user_id=user-1")
	if err != nil {
		t.Fatalf("GET returned error: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	go func() {
		// The subscription is registered once the handler starts; retry until delivered.
		for i := 0; i < 50; i++ {
			_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-2", Reason: "reset"})
			_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-1", Reason: "reorder"})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var event SettingsEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.UserID != "user-1" || event.Reason != "reorder" {
			t.Fatalf("unexpected event %+v", event)
		}
		return
	}
}

func TestBroadcastHookUserResolverScopesStreams(t *testing.T) {
	hook := NewBroadcastHook().WithUserResolver(func(r *http.Request) string {
		return r.Header.Get("X-User-ID")
	})
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	resp, err := http.Get(server.URL + "?user_id=user-2")
	if err != nil {
		t.Fatalf("GET returned error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a resolved viewer, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"?user_id=user-2", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET returned error: %v", err)
	}
	defer resp.Body.Close()

	go func() {
		for i := 0; i < 50; i++ {
			_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-2", Reason: "reset"})
			_ = hook.SettingsChanged(context.Background(), SettingsEvent{UserID: "user-1", Reason: "toggle"})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var event SettingsEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.UserID != "user-1" {
			t.Fatalf("expected the query parameter to be ignored, got %+v", event)
		}
		return
	}
}
