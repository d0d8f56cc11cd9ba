// Package decoder normalizes raw session-replay records into a flat,
// time-ordered sequence of typed events. Records arrive in several shapes
// (plain objects, window-tagged arrays, compressed snapshot lines); decoding
// is best-effort per record and never aborts the pass.
package decoder

import (
	"encoding/json"
	"log/slog"

	"github.com/replaysight/replaysight/internal/domain"
)

// Decoder turns raw replay records into normalized events. It is stateless
// across calls; window-id inheritance is local to one Normalize pass, so one
// Decoder may serve many sessions concurrently.
type Decoder struct {
	logger *slog.Logger
}

// New creates a Decoder.
func New(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logger.With("component", "decoder")}
}

// Normalize decodes every record it can and drops the rest, returning the
// order-preserving event sequence and the number of dropped records.
func (d *Decoder) Normalize(records []json.RawMessage) ([]domain.NormalizedEvent, int) {
	events := make([]domain.NormalizedEvent, 0, len(records))
	dropped := 0
	lastWindow := ""

	for _, rec := range records {
		var v any
		if err := json.Unmarshal(rec, &v); err != nil {
			dropped++
			continue
		}

		recWindow, payload := splitEnvelope(v)
		if payload == nil {
			dropped++
			continue
		}

		maps := coerceEventMaps(expand(payload))
		if len(maps) == 0 {
			dropped++
			continue
		}

		if recWindow != "" {
			lastWindow = recWindow
		}

		decodedAny := false
		for _, m := range maps {
			ev, ok := eventFromMap(m, recWindow, lastWindow)
			if !ok {
				continue
			}
			if ev.WindowID != domain.DefaultWindowID {
				lastWindow = ev.WindowID
			}
			events = append(events, ev)
			decodedAny = true
		}
		if !decodedAny {
			dropped++
		}
	}

	if dropped > 0 {
		d.logger.Debug("dropped undecodable records", "dropped", dropped, "total", len(records))
	}
	return events, dropped
}

// splitEnvelope resolves the record's outer shape: a [windowId, payload]
// array, an object that is itself an event, or an object wrapping an encoded
// snapshot line in its data field. Returns the explicit window id (may be
// empty) and the payload to decode, or nil when the record has no payload.
func splitEnvelope(v any) (string, any) {
	switch val := v.(type) {
	case []any:
		if len(val) != 2 {
			return "", nil
		}
		win, _ := val[0].(string)
		return win, val[1]
	case map[string]any:
		win := stringField(val, "windowId")
		if win == "" {
			win = stringField(val, "window_id")
		}
		if _, hasType := val["type"]; hasType {
			return win, val
		}
		if data, ok := val["data"]; ok {
			return win, data
		}
		return "", nil
	default:
		return "", nil
	}
}

// coerceEventMaps accepts a decoded payload that is either one event object
// or an array of them.
func coerceEventMaps(v any) []map[string]any {
	switch val := v.(type) {
	case map[string]any:
		if _, ok := val["type"]; ok {
			return []map[string]any{val}
		}
		// Versioned snapshot lines nest the event list one level down,
		// next to a cv marker.
		if inner, ok := val["data"]; ok {
			return coerceEventMaps(inner)
		}
	case []any:
		maps := make([]map[string]any, 0, len(val))
		for _, member := range val {
			if m, ok := member.(map[string]any); ok {
				if _, hasType := m["type"]; hasType {
					maps = append(maps, m)
				}
			}
		}
		return maps
	}
	return nil
}

func eventFromMap(m map[string]any, recWindow, lastWindow string) (domain.NormalizedEvent, bool) {
	kind, ok := numberField(m, "type")
	if !ok {
		return domain.NormalizedEvent{}, false
	}
	ts, _ := numberField(m, "timestamp")

	win := stringField(m, "windowId")
	if win == "" {
		win = recWindow
	}
	if win == "" {
		win = lastWindow
	}
	if win == "" {
		win = domain.DefaultWindowID
	}

	return domain.NormalizedEvent{
		Kind:      domain.EventKind(kind),
		Timestamp: ts,
		WindowID:  win,
		Data:      m["data"],
	}, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func numberField(m map[string]any, key string) (int64, bool) {
	f, ok := m[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
