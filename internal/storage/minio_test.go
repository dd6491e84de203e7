package storage

import (
	"context"
	"testing"

	"github.com/portfolio-cms/content-api/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "portfolio-media"})
	require.Error(t, err)
}

func TestNewMinIOStorage_InvalidEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Endpoint: "http://has-a-scheme:9000", Bucket: "portfolio-media"})
	require.Error(t, err)
}
