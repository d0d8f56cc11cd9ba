package decoder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/replaysight/replaysight/internal/domain"
)

func newTestDecoder() *Decoder {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func deflateBase64(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("compress fixture: %v", err)
	}
	zw.Close()
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func deflateBinary(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("compress fixture: %v", err)
	}
	zw.Close()
	runes := make([]rune, buf.Len())
	for i, b := range buf.Bytes() {
		runes[i] = rune(b)
	}
	return string(runes)
}

func rawRecords(t *testing.T, vals ...any) []json.RawMessage {
	t.Helper()
	records := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal record: %v", err)
		}
		records[i] = raw
	}
	return records
}

func TestNormalizePlainRecords(t *testing.T) {
	d := newTestDecoder()

	records := rawRecords(t,
		map[string]any{"type": 4, "timestamp": 1000, "data": map[string]any{"href": "https://app.test/home"}},
		map[string]any{"type": 2, "timestamp": 1005, "data": map[string]any{"node": map[string]any{"id": 1}}},
	)

	events, dropped := d.Normalize(records)
	if dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", dropped)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != domain.KindMeta || events[0].Timestamp != 1000 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[0].WindowID != domain.DefaultWindowID {
		t.Errorf("expected default window id, got %q", events[0].WindowID)
	}
}

func TestNormalizeWindowInheritance(t *testing.T) {
	d := newTestDecoder()

	records := rawRecords(t,
		[]any{"win-A", map[string]any{"type": 4, "timestamp": 100, "data": map[string]any{}}},
		map[string]any{"type": 3, "timestamp": 200, "data": map[string]any{"source": 3}},
		map[string]any{"type": 3, "timestamp": 300, "windowId": "win-B", "data": map[string]any{"source": 3}},
		map[string]any{"type": 3, "timestamp": 400, "data": map[string]any{"source": 3}},
	)

	events, dropped := d.Normalize(records)
	if dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", dropped)
	}
	wantWindows := []string{"win-A", "win-A", "win-B", "win-B"}
	for i, want := range wantWindows {
		if events[i].WindowID != want {
			t.Errorf("event %d: window = %q, want %q", i, events[i].WindowID, want)
		}
	}
}

func TestNormalizeCompressedPayload(t *testing.T) {
	d := newTestDecoder()

	inner := []any{
		map[string]any{"type": 3, "timestamp": 500, "data": map[string]any{"source": 1}},
		map[string]any{"type": 3, "timestamp": 600, "data": map[string]any{"source": 3}},
	}

	t.Run("base64 line", func(t *testing.T) {
		records := rawRecords(t, map[string]any{"window_id": "w1", "data": deflateBase64(t, inner)})
		events, dropped := d.Normalize(records)
		if dropped != 0 {
			t.Fatalf("expected 0 dropped, got %d", dropped)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[1].WindowID != "w1" {
			t.Errorf("expected window w1, got %q", events[1].WindowID)
		}
	})

	t.Run("binary string line", func(t *testing.T) {
		records := rawRecords(t, map[string]any{"data": deflateBinary(t, inner)})
		events, dropped := d.Normalize(records)
		if dropped != 0 {
			t.Fatalf("expected 0 dropped, got %d", dropped)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
	})

	t.Run("versioned line", func(t *testing.T) {
		records := rawRecords(t, map[string]any{"data": map[string]any{"cv": "2024-10", "data": deflateBase64(t, inner)}})
		events, dropped := d.Normalize(records)
		if dropped != 0 {
			t.Fatalf("expected 0 dropped, got %d", dropped)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
	})
}

func TestNormalizeDoublyNestedPayload(t *testing.T) {
	d := newTestDecoder()

	// The outer blob carries an event whose data field is itself a
	// compressed string. Decoding must recover the plain object exactly.
	innerData := map[string]any{"source": float64(0), "adds": []any{map[string]any{"parentId": float64(1)}}}
	event := map[string]any{"type": 3, "timestamp": 700, "data": deflateBase64(t, innerData)}
	records := rawRecords(t, map[string]any{"data": deflateBase64(t, []any{event})})

	events, dropped := d.Normalize(records)
	if dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", dropped)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got, err := json.Marshal(events[0].Data)
	if err != nil {
		t.Fatalf("marshal decoded data: %v", err)
	}
	want, _ := json.Marshal(innerData)
	if !bytes.Equal(got, want) {
		t.Errorf("nested payload not recovered: got %s, want %s", got, want)
	}
}

func TestNormalizeDropsUndecodable(t *testing.T) {
	d := newTestDecoder()

	records := []json.RawMessage{
		json.RawMessage(`{not valid json`),
		json.RawMessage(`{"data": "definitely not compressed"}`),
		json.RawMessage(`{"type": 4, "timestamp": 100, "data": {}}`),
		json.RawMessage(`42`),
	}

	events, dropped := d.Normalize(records)
	if dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 surviving event, got %d", len(events))
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	d := newTestDecoder()

	events, dropped := d.Normalize(nil)
	if len(events) != 0 || dropped != 0 {
		t.Errorf("expected empty result, got %d events %d dropped", len(events), dropped)
	}
}
