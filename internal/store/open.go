package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/portfolio-cms/content-api/internal/config"
	"github.com/portfolio-cms/content-api/internal/database"
)

// Open connects to the store selected by the scheme of cfg.URL:
// mongodb:// and mongodb+srv:// (MongoStore), redis:// and rediss:// (RedisStore),
// memory:// (MemoryStore).
//
// Open always returns a usable Store. When cfg.URL is empty it is Disconnected
// with a nil error; when connecting fails it is Disconnected and the error says why.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	if cfg.URL == "" {
		return Disconnected{}, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		// never echo the raw URL, it may carry credentials
		err = fmt.Errorf("invalid DATABASE_URL")
		return Disconnected{Reason: err}, err
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.URL, cfg.Timeout, cfg.ConnectAttempts)
		if err != nil {
			return Disconnected{Reason: err}, err
		}
		return NewMongoStore(client, cfg.Name), nil
	case "redis", "rediss":
		client, err := database.ConnectRedis(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return Disconnected{Reason: err}, err
		}
		return NewRedisStore(client, cfg.Name), nil
	case "memory":
		return NewMemoryStore(cfg.Name), nil
	}
	err = fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	return Disconnected{Reason: err}, err
}
