// Package store persists records into named collections of a document store.
//
// Backends are opaque to record shape: Insert serializes whatever validated
// record it is given, List hands back documents that decode into a typed value.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned by every operation when no store connection exists.
	ErrNotConnected = errors.New("store not connected")
	// ErrDuplicate is returned by Insert when a unique field value is already taken.
	ErrDuplicate = errors.New("duplicate value for unique field")
)

// Error is a failed store operation.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Document is one stored record.
type Document interface {
	Decode(v any) error
}

// Store is implemented by every backend. Implementations are safe for concurrent use.
type Store interface {
	// Insert stores record in collection and returns the generated id.
	Insert(ctx context.Context, collection string, record any) (string, error)
	// List returns every document of collection; an absent collection yields an empty slice.
	List(ctx context.Context, collection string) ([]Document, error)
	// EnsureUnique declares field as unique within collection.
	EnsureUnique(ctx context.Context, collection, field string) error

	Ping(ctx context.Context) error
	Name() string
	CollectionNames(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// Timestamp fields added to every stored document.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// jsonDocument is a document stored as JSON by the memory and Redis backends.
type jsonDocument []byte

func (d jsonDocument) Decode(v any) error { return json.Unmarshal(d, v) }

// stampJSON flattens record into a JSON object and adds id and timestamps.
func stampJSON(record any, id string, now time.Time) (map[string]any, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("record must encode to a JSON object")
	}
	ts := now.UTC().Format(time.RFC3339Nano)
	doc[FieldID] = id
	doc[FieldCreatedAt] = ts
	doc[FieldUpdatedAt] = ts
	return doc, nil
}

// uniqueValue renders doc[field] as a comparable key. ok is false when the
// field is absent or null, which never collides.
func uniqueValue(doc map[string]any, field string) (string, bool) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}
