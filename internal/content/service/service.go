package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfolio-cms/content-api/internal/content"
	"github.com/portfolio-cms/content-api/internal/schema"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/portfolio-cms/content-api/pkg/logger"
	"github.com/portfolio-cms/content-api/pkg/metrics"
)

// Service validates and persists records of every content kind.
type Service struct {
	store store.Store
}

// NewService returns a Service backed by st. The store is owned by the caller.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Store returns the underlying store, for diagnostics.
func (s *Service) Store() store.Store { return s.store }

// Create validates body against k and inserts it. Validation failures are
// *schema.ValidationError; store failures are *store.Error.
func (s *Service) Create(ctx context.Context, k content.Kind, body []byte) (string, error) {
	rec, err := k.Parse(body)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(k.Name).Inc()
		}
		return "", err
	}
	id, err := s.store.Insert(ctx, k.Collection, rec)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("insert").Inc()
		return "", err
	}
	metrics.RecordsInserted.WithLabelValues(k.Collection).Inc()
	logger.Debugf("inserted %s %s", k.Collection, id)
	return id, nil
}

// List returns every stored record of k, shaped per its schema.
func (s *Service) List(ctx context.Context, k content.Kind) ([]any, error) {
	docs, err := s.store.List(ctx, k.Collection)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		return nil, err
	}
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		rec, err := k.Decode(d)
		if err != nil {
			metrics.StoreErrors.WithLabelValues("decode").Inc()
			return nil, &store.Error{Op: "decode", Collection: k.Collection, Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

// EnsureIndexes declares the unique fields of every kind on the store.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	for _, k := range content.Kinds() {
		for _, field := range k.Unique {
			if err := s.store.EnsureUnique(ctx, k.Collection, field); err != nil {
				return fmt.Errorf("unique %s.%s: %w", k.Collection, field, err)
			}
		}
	}
	return nil
}
