// Package export writes finished tables and documents to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Indent is the indentation used for every JSON file.
const Indent = "    "

// MarshalJSON encodes v indented by four spaces, without HTML escaping,
// with a trailing newline. Map keys are written in sorted order.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", Indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON replaces path with the JSON encoding of v.
func WriteJSON(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, data)
}
