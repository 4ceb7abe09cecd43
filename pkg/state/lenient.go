package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Narrator output is produced by a language model and is loosely typed:
// numbers arrive as strings, booleans as "true", lists as single objects.
// The types below decode such values without ever failing, so that one bad
// field never discards the rest of a reply.

// MaxFlexInt bounds the magnitude of a FlexInt. Larger values are treated as
// unreadable rather than wrapped.
const MaxFlexInt = math.MaxInt32

// FlexInt is an optional integer. Valid is false when the field was absent
// or held something that could not be read as a number within MaxFlexInt.
type FlexInt struct {
	Value int
	Valid bool
}

func Int(v int) FlexInt { return FlexInt{Value: v, Valid: true} }

// addDelta adds an oracle delta to a stored value, saturating instead of
// wrapping around.
func addDelta(v, delta int) int {
	switch {
	case delta > 0 && v > math.MaxInt-delta:
		return math.MaxInt
	case delta < 0 && v < math.MinInt-delta:
		return math.MinInt
	}
	return v + delta
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= -MaxFlexInt && n <= MaxFlexInt {
			*f = Int(n)
		}
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(fl) {
		return nil
	}
	if fl = math.Round(fl); fl >= -MaxFlexInt && fl <= MaxFlexInt {
		*f = Int(int(fl))
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// FlexBool is an optional boolean accepting true/false and their string forms.
type FlexBool struct {
	Value bool
	Valid bool
}

func Bool(v bool) FlexBool { return FlexBool{Value: v, Valid: true} }

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = FlexBool{}
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		*f = Bool(b)
	}
	return nil
}

func (f FlexBool) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(f.Value)), nil
}

// True reports whether the value was present and true.
func (f FlexBool) True() bool { return f.Valid && f.Value }

// List is a lenient JSON array. Elements that fail to decode are skipped.
// An object with a mistyped field is kept with that field left zero; an
// element that is not an object at all is dropped. A non-array value decodes
// to a nil list, which means "absent".
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	out := make(List[T], 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) || typeErr.Field == "" || !isObject(r) {
				continue
			}
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// FlexString accepts strings, numbers and booleans. Anything else is empty.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*f = FlexString(s)
		}
	case '{', '[':
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string { return strings.TrimSpace(string(f)) }
