// Package jsonutil provides shared helpers for the JSON parsing patterns used
// by the region asset loader and the sample dataset reader.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v interface{}, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// UnmarshalArray unmarshals JSON data into a slice and validates that
// the result is non-empty.
func UnmarshalArray[T any](data []byte, context string) ([]T, error) {
	var entries []T
	if err := UnmarshalWithContext(data, &entries, context); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: empty result", context)
	}
	return entries, nil
}

// UnmarshalLine unmarshals a single JSON line into v. Returns an error if the
// line is empty or cannot be parsed.
func UnmarshalLine(line string, v interface{}) error {
	if line == "" {
		return fmt.Errorf("empty JSON line")
	}
	return json.Unmarshal([]byte(line), v)
}

// UnmarshalLineSafe unmarshals a single JSON line into v. Returns false if the
// line is empty or cannot be parsed. Useful when scanning datasets where some
// rows may be invalid.
func UnmarshalLineSafe(line string, v interface{}) bool {
	return UnmarshalLine(line, v) == nil
}
