package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Document is an untyped JSON object as delivered by the upstream provider.
// Nested objects are map[string]any, arrays are []any and numbers are
// json.Number once a Document has been normalized.
type Document map[string]any

var (
	errNotAnObject  = errors.New("payload is not a JSON object")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// DecodeDocument reads exactly one JSON object from r, keeping numbers as
// json.Number. A literal null decodes to an empty document. Anything but
// whitespace after the value is an error.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	if v == nil {
		return Document{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", errNotAnObject, v)
	}
	return Document(obj), nil
}

// optional is the result of a typed document lookup. The default policy for a
// missing or mistyped field is chosen by the caller with Or.
type optional[T any] struct {
	value T
	ok    bool
}

func some[T any](v T) optional[T] {
	return optional[T]{value: v, ok: true}
}

func none[T any]() optional[T] {
	return optional[T]{}
}

// Get returns the value and whether it was present and well-typed.
func (o optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Or returns the value, or def when the lookup failed.
func (o optional[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// valueAt walks path through nested objects. A missing key, a null, or a
// non-object along the way all report absence.
func valueAt(doc Document, path ...string) (any, bool) {
	var cur any = doc
	for _, key := range path {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func objectAt(doc Document, path ...string) optional[Document] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[Document]()
	}
	obj, ok := asObject(v)
	if !ok {
		return none[Document]()
	}
	return some(obj)
}

// objectsAt returns the array at path. Elements that are not objects are
// kept as empty documents so positions in the sequence are preserved.
func objectsAt(doc Document, path ...string) optional[[]Document] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[[]Document]()
	}

	var out []Document
	switch arr := v.(type) {
	case []any:
		out = make([]Document, len(arr))
		for i, el := range arr {
			obj, ok := asObject(el)
			if !ok {
				obj = Document{}
			}
			out[i] = obj
		}
	case []map[string]any:
		out = make([]Document, len(arr))
		for i, el := range arr {
			out[i] = Document(el)
		}
	case []Document:
		out = arr
	default:
		return none[[]Document]()
	}
	return some(out)
}

func stringAt(doc Document, path ...string) optional[string] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[string]()
	}
	s, ok := v.(string)
	if !ok {
		return none[string]()
	}
	return some(s)
}

func floatAt(doc Document, path ...string) optional[float64] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[float64]()
	}
	f, ok := asFloat(v)
	if !ok {
		return none[float64]()
	}
	return some(f)
}

// intAt coerces a numeric field to an integer, rounding half away from zero.
func intAt(doc Document, path ...string) optional[int] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[int]()
	}
	if n, ok := v.(json.Number); ok {
		if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
			return some(int(i))
		}
	}
	f, ok := asFloat(v)
	if !ok {
		return none[int]()
	}
	r := math.Round(f)
	if r < math.MinInt64 || r >= math.MaxInt64 {
		return none[int]()
	}
	return some(int(r))
}

// numericStringAt reads a number the provider may send either as a string
// ("0.42") or as a plain JSON number.
func numericStringAt(doc Document, path ...string) optional[float64] {
	v, ok := valueAt(doc, path...)
	if !ok {
		return none[float64]()
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return none[float64]()
		}
		return some(f)
	}
	f, ok := asFloat(v)
	if !ok {
		return none[float64]()
	}
	return some(f)
}

func asObject(v any) (Document, bool) {
	switch o := v.(type) {
	case Document:
		return o, o != nil
	case map[string]any:
		return Document(o), o != nil
	}
	return nil, false
}

// asFloat accepts every Go numeric kind plus json.Number. Booleans and
// numeric-looking strings are not numbers; NaN and infinities are rejected.
func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeDocument deep-copies doc into the canonical shape produced by
// DecodeDocument, so a snapshot never aliases caller-owned maps and its
// payloads survive an encode/decode cycle unchanged.
func normalizeDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, json.Number:
		return x
	case Document:
		return map[string]any(normalizeDocument(x))
	case map[string]any:
		return map[string]any(normalizeDocument(x))
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalizeValue(el)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalizeValue(el)
		}
		return out
	case []Document:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = normalizeValue(el)
		}
		return out
	case float64:
		return numberFromFloat(x)
	case float32:
		return numberFromFloat(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return json.Number(fmt.Sprint(x))
	}

	// Anything else (structs, typed slices) goes through its JSON form.
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return normalizeValue(out)
}

// numberFromFloat maps non-finite values to null, which is all JSON can carry.
func numberFromFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}
