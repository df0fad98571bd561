package store

import (
	"encoding/json"
	"fmt"
)

// Annotations are stored as a JSON string array so the column stays
// queryable. An empty list round-trips as "[]", never NULL.

func marshalAnnotations(notes []string) (string, error) {
	if len(notes) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("marshal annotations: %w", err)
	}
	return string(data), nil
}

func unmarshalAnnotations(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var notes []string
	if err := json.Unmarshal([]byte(data), &notes); err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}
	return notes, nil
}
