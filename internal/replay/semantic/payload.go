package semantic

// Accessors for decoded payload trees. Payloads are best-effort: a missing or
// mistyped field reads as the zero value and the caller degrades to "no log
// entry" rather than erroring.

func payloadMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func intField(m map[string]any, key string) (int, bool) {
	f, ok := m[key].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func floatField(m map[string]any, key string) (float64, bool) {
	f, ok := m[key].(float64)
	return f, ok
}

func strField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func sliceField(m map[string]any, key string) []any {
	s, _ := m[key].([]any)
	return s
}

func mapField(m map[string]any, key string) (map[string]any, bool) {
	inner, ok := m[key].(map[string]any)
	return inner, ok
}
