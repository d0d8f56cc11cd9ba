package decoder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// strategy is one attempt at turning an encoded payload string into a parsed
// JSON value. Strategies are tried in a fixed order; the first success wins.
type strategy struct {
	name   string
	decode func(s string) (any, bool)
}

// strategies is the ordered decode cascade: plain JSON, then base64 wrapping a
// compressed blob, then a binary string (one byte per code point) wrapping a
// compressed blob.
var strategies = []strategy{
	{name: "json", decode: decodePlainJSON},
	{name: "base64+inflate", decode: decodeBase64Inflate},
	{name: "binary+inflate", decode: decodeBinaryInflate},
}

func decodePlainJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	// Scalars are not payloads; a quoted number or word stays as-is.
	return nil, false
}

func decodeBase64Inflate(s string) (any, bool) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return inflateAndParse(raw)
}

// decodeBinaryInflate handles compressed bytes smuggled through a JSON string
// one code point per byte. Code points above 0xFF mean the string was never a
// byte blob.
func decodeBinaryInflate(s string) (any, bool) {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, false
		}
		raw = append(raw, byte(r))
	}
	return inflateAndParse(raw)
}

func inflateAndParse(raw []byte) (any, bool) {
	plain, ok := inflate(raw)
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(plain, &v); err != nil {
		return nil, false
	}
	return v, true
}

// inflate decompresses a zlib or gzip blob.
func inflate(raw []byte) ([]byte, bool) {
	if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
		defer zr.Close()
		if plain, err := io.ReadAll(zr); err == nil {
			return plain, true
		}
	}
	if gr, err := gzip.NewReader(bytes.NewReader(raw)); err == nil {
		defer gr.Close()
		if plain, err := io.ReadAll(gr); err == nil {
			return plain, true
		}
	}
	return nil, false
}

// tryDecodeString runs the cascade over one string value.
func tryDecodeString(s string) (any, bool) {
	for _, st := range strategies {
		if v, ok := st.decode(s); ok {
			return v, true
		}
	}
	return nil, false
}

// expand walks a decoded value and re-applies the cascade to every
// string-valued field, recursively, so nested compressed payloads come out
// fully inflated. Strings that decode to nothing are kept verbatim.
func expand(v any) any {
	switch val := v.(type) {
	case string:
		if inner, ok := tryDecodeString(val); ok {
			return expand(inner)
		}
		return val
	case map[string]any:
		for k, member := range val {
			val[k] = expand(member)
		}
		return val
	case []any:
		for i, member := range val {
			val[i] = expand(member)
		}
		return val
	default:
		return v
	}
}
