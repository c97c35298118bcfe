package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"main/internal/model"
)

func TestSignalBroadcastsToEveryURL(t *testing.T) {
	received := make([]map[string]any, 0, 2)
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
			return
		}
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		received = append(received, payload)
	}

	a := httptest.NewServer(http.HandlerFunc(handler))
	defer a.Close()
	b := httptest.NewServer(http.HandlerFunc(handler))
	defer b.Close()

	n := New([]string{a.URL, b.URL})
	n.Signal(context.Background(), "Bandtastic Strategy", "BTCUSDT", model.EnterSignal(model.DirectionLong, 29000))

	if len(received) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(received))
	}
	for _, payload := range received {
		if payload["strategy"] != "Bandtastic Strategy" || payload["symbol"] != "BTCUSDT" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		if payload["time"] == "" {
			t.Fatalf("expected a timestamp: %+v", payload)
		}
	}
}

func TestFailingURLDoesNotBlockOthers(t *testing.T) {
	delivered := 0
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered++
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	n := New([]string{failing.URL, "http://127.0.0.1:1/unreachable", ok.URL})
	n.Trade(context.Background(), "Bandtastic Strategy", model.Trade{Symbol: "BTCUSDT"})

	if delivered != 1 {
		t.Fatalf("expected the healthy URL to receive the payload, got %d deliveries", delivered)
	}
}

func TestEmptyURLListIsNoop(t *testing.T) {
	n := New(nil)
	// Must not panic or block.
	n.Text(context.Background(), "Bandtastic Strategy", "started")
}
