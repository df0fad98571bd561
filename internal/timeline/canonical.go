package timeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Canonical JSON for resolved logs. Two runs over the same rows and catalog
// must serialize byte-identically, so the determinism property can be checked
// by hash comparison. Rules:
//
//  1. Object keys sorted (keys are ASCII field names, so byte order suffices)
//  2. No HTML escaping
//  3. Strings NFC-normalized
//  4. No floats: gauge state is serialized in integer points
//
// Floats are forbidden because their formatting is the classic source of
// cross-platform byte drift.

// MarshalCanonical serializes a value to canonical JSON. Supported types:
// string, int, int64, bool, []any, map[string]any, and nil-free compositions
// of those.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonicalString(buf, k); err != nil {
				return fmt.Errorf("object key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString NFC-normalizes and encodes a string without HTML
// escaping.
func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}
	// Encoder appends a trailing newline; strip it.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// canonicalEvent converts an event to the map form used for hashing.
func canonicalEvent(e Event) map[string]any {
	m := map[string]any{
		"frame":        e.Frame,
		"kind":         string(e.Kind),
		"name":         e.Name,
		"row":          e.Row,
		"cost":         e.CostPoints,
		"gauge":        e.GaugePoints,
		"overflow":     e.OverflowPoints,
		"rate":         e.Rate,
		"participants": e.Participants,
	}
	if len(e.Annotations) > 0 {
		notes := make([]any, len(e.Annotations))
		for i, n := range e.Annotations {
			notes[i] = n
		}
		m["annotations"] = notes
	}
	return m
}

// MarshalLog serializes a resolved log to canonical JSON.
func MarshalLog(events []Event) ([]byte, error) {
	list := make([]any, len(events))
	for i, e := range events {
		list[i] = canonicalEvent(e)
	}
	return MarshalCanonical(list)
}

// LogHash returns the hex SHA-256 of the canonical log serialization.
// Identical inputs yield identical hashes; the determinism test relies on it.
func LogHash(events []Event) (string, error) {
	data, err := MarshalLog(events)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
