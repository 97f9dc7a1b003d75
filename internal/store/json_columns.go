package store

import (
	"encoding/json"
	"fmt"
)

// The metadata, tags, and credential_ids columns hold JSON-encoded text.
// sqlite has no native array/map types, and the agent never filters on the
// contents of these columns, so opaque JSON blobs are sufficient.

func encodeJSONColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

func decodeJSONColumn(raw string, target any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
