package jsondata

import (
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

func Object(v Value) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

func Array(v Value) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

// String returns v as text. Numbers and booleans are formatted, other shapes are rejected.
func String(v Value) (string, bool) {
	switch typed := v.(type) {
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Lookup walks a path of object keys and array indexes (int). ok is false at the first miss.
func Lookup(v Value, path ...any) (Value, bool) {
	current := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := Object(current)
			if !ok {
				return nil, false
			}
			next, exists := obj[key]
			if !exists {
				return nil, false
			}
			current = next
		case int:
			arr, ok := Array(current)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			current = arr[key]
		default:
			return nil, false
		}
	}
	return current, true
}

// SingleEntry returns the only entry of a one-key object. Exports use this shape for
// language-dependent labels whose spelling is not worth tabulating.
func SingleEntry(v Value) (string, Value, bool) {
	obj, ok := Object(v)
	if !ok || len(obj) != 1 {
		return "", nil, false
	}
	for key, value := range obj {
		return key, value, true
	}
	return "", nil, false
}

// RepairMojibake undoes the Latin-1 escaping of UTF-8 bytes found in Instagram JSON exports,
// where "Privéaccount" is stored as "PrivÃ©account". Text that is not mojibake is
// returned unchanged.
func RepairMojibake(s string) string {
	if s == "" || isASCII(s) {
		return s
	}
	for _, r := range s {
		if r > 0xFF {
			return s
		}
	}
	raw, encodeErr := charmap.ISO8859_1.NewEncoder().String(s)
	if encodeErr != nil || !utf8.ValidString(raw) || raw == s {
		return s
	}
	return raw
}

func isASCII(s string) bool {
	for index := 0; index < len(s); index++ {
		if s[index] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
