// Package jsondata decodes export members into generic trees and navigates them.
package jsondata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var ErrDecodeFailure = errors.New("decode failure")

// Value is a decoded tree node: map[string]any, []any or a scalar.
type Value = any

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type attempt struct {
	name    string
	prepare func([]byte) ([]byte, error)
}

var encodings = []attempt{
	{name: "utf-8", prepare: plainUTF8},
	{name: "utf-8-sig", prepare: bomUTF8},
}

// Decode parses data with each supported encoding in order and returns the first result whose
// root is an object or array. On total failure it returns an empty object and ErrDecodeFailure.
func Decode(data []byte) (Value, error) {
	var failures []string
	for _, encoding := range encodings {
		text, prepareErr := encoding.prepare(data)
		if prepareErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", encoding.name, prepareErr))
			continue
		}
		var parsed any
		if unmarshalErr := json.Unmarshal(text, &parsed); unmarshalErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", encoding.name, unmarshalErr))
			continue
		}
		switch parsed.(type) {
		case map[string]any, []any:
			return parsed, nil
		default:
			// a scalar root is a shape failure, not an encoding failure
			return map[string]any{}, fmt.Errorf("%w: root is %T, not an object or array", ErrDecodeFailure, parsed)
		}
	}
	return map[string]any{}, fmt.Errorf("%w: %v", ErrDecodeFailure, failures)
}

func plainUTF8(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return nil, errors.New("unexpected byte order mark")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("invalid utf-8")
	}
	return data, nil
}

// bomUTF8 strips an optional leading BOM. The x/text decoder would silently replace invalid
// sequences, so validity is checked on the raw bytes first.
func bomUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		return nil, errors.New("invalid utf-8")
	}
	return unicode.UTF8BOM.NewDecoder().Bytes(data)
}
