package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrInvalidJSON is returned when a line is not exactly one JSON document
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrNotObject is returned when a line is valid JSON but not an object
	ErrNotObject = errors.New("JSON value is not an object")
)

// Record is one customer entry. Fields keep their input order and their
// original JSON text so unrelated values round-trip untouched.
type Record struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, json.RawMessage]()}
}

// ParseRecord decodes a single line into a Record
func ParseRecord(line []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(line)

	var probe any
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, ErrNotObject
	}

	rec := NewRecord()
	if err := rec.fields.UnmarshalJSON(trimmed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	return rec, nil
}

// Get returns the raw JSON value of a field
func (r *Record) Get(key string) (json.RawMessage, bool) {
	return r.fields.Get(key)
}

// GetString returns the value of a field when it holds a JSON string
func (r *Record) GetString(key string) (string, bool) {
	raw, ok := r.fields.Get(key)
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Has reports whether the field is present
func (r *Record) Has(key string) bool {
	_, ok := r.fields.Get(key)
	return ok
}

// Set stores a raw JSON value. Existing fields keep their position.
func (r *Record) Set(key string, value json.RawMessage) {
	r.fields.Set(key, value)
}

// SetString stores a string value
func (r *Record) SetString(key, value string) {
	// Marshalling a string cannot fail
	raw, _ := json.Marshal(value)
	r.fields.Set(key, raw)
}

// Delete removes a field and returns its previous raw value
func (r *Record) Delete(key string) (json.RawMessage, bool) {
	return r.fields.Delete(key)
}

// Keys returns the field names in order
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of fields
func (r *Record) Len() int {
	return r.fields.Len()
}

// MarshalJSON encodes the record as a compact, single-line JSON object
func (r *Record) MarshalJSON() ([]byte, error) {
	return r.fields.MarshalJSON()
}

// Encode returns the single-line JSON form of the record
func (r *Record) Encode() ([]byte, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}
