package store

import (
	"context"
	"fmt"
)

// Disconnected stands in when no connection string is configured or the
// connection failed. Every operation fails with ErrNotConnected, so callers can
// tell "no store" apart from "empty collection".
type Disconnected struct {
	// Reason is why no connection exists; nil when none was configured.
	Reason error
}

func (d Disconnected) err(op, collection string) error {
	err := ErrNotConnected
	if d.Reason != nil {
		err = fmt.Errorf("%w: %v", ErrNotConnected, d.Reason)
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

func (d Disconnected) Insert(ctx context.Context, collection string, record any) (string, error) {
	return "", d.err("insert", collection)
}

func (d Disconnected) List(ctx context.Context, collection string) ([]Document, error) {
	return nil, d.err("list", collection)
}

func (d Disconnected) EnsureUnique(ctx context.Context, collection, field string) error {
	return d.err("ensure unique", collection)
}

func (d Disconnected) Ping(ctx context.Context) error { return d.err("ping", "") }

func (d Disconnected) Name() string { return "" }

func (d Disconnected) CollectionNames(ctx context.Context) ([]string, error) {
	return nil, d.err("list collections", "")
}

func (d Disconnected) Close(ctx context.Context) error { return nil }
