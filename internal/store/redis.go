package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis.
// Keys, all under the "<name>:" namespace:
//   - col:<collection>                  list of JSON documents, insertion order
//   - collections                       set of collection names
//   - unique:<collection>               set of unique field names
//   - uniq:<collection>:<field>:<value> guard key holding the owning document id
type RedisStore struct {
	client *redis.Client
	name   string
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed store. name namespaces every key.
func NewRedisStore(client *redis.Client, name string) *RedisStore {
	if name == "" {
		name = "portfolio"
	}
	return &RedisStore{client: client, name: name, now: time.Now}
}

func (r *RedisStore) key(parts ...string) string {
	k := r.name
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (r *RedisStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	id := uuid.NewString()
	doc, err := stampJSON(record, id, r.now())
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}

	fields, err := r.client.SMembers(ctx, r.key("unique", collection)).Result()
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	var claimed []string
	release := func() {
		if len(claimed) > 0 {
			_ = r.client.Del(context.WithoutCancel(ctx), claimed...).Err()
		}
	}
	for _, field := range fields {
		v, ok := uniqueValue(doc, field)
		if !ok {
			continue
		}
		guard := r.key("uniq", collection, field, v)
		won, err := r.client.SetNX(ctx, guard, id, 0).Result()
		if err != nil {
			release()
			return "", &Error{Op: "insert", Collection: collection, Err: err}
		}
		if !won {
			release()
			return "", &Error{Op: "insert", Collection: collection, Err: ErrDuplicate}
		}
		claimed = append(claimed, guard)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, r.key("col", collection), b)
		p.SAdd(ctx, r.key("collections"), collection)
		return nil
	})
	if err != nil {
		release()
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	return id, nil
}

func (r *RedisStore) List(ctx context.Context, collection string) ([]Document, error) {
	items, err := r.client.LRange(ctx, r.key("col", collection), 0, -1).Result()
	if err != nil {
		return nil, &Error{Op: "list", Collection: collection, Err: err}
	}
	out := make([]Document, 0, len(items))
	for _, it := range items {
		out = append(out, jsonDocument(it))
	}
	return out, nil
}

// EnsureUnique records the constraint and claims guard keys for documents
// already stored, failing with ErrDuplicate if they collide.
func (r *RedisStore) EnsureUnique(ctx context.Context, collection, field string) error {
	docs, err := r.List(ctx, collection)
	if err != nil {
		return &Error{Op: "ensure unique", Collection: collection, Err: err}
	}
	for _, d := range docs {
		var doc map[string]any
		if err := d.Decode(&doc); err != nil {
			return &Error{Op: "ensure unique", Collection: collection, Err: err}
		}
		v, ok := uniqueValue(doc, field)
		if !ok {
			continue
		}
		id, _ := doc[FieldID].(string)
		guard := r.key("uniq", collection, field, v)
		won, err := r.client.SetNX(ctx, guard, id, 0).Result()
		if err != nil {
			return &Error{Op: "ensure unique", Collection: collection, Err: err}
		}
		if !won {
			owner, err := r.client.Get(ctx, guard).Result()
			if err != nil {
				return &Error{Op: "ensure unique", Collection: collection, Err: err}
			}
			if owner != id {
				return &Error{Op: "ensure unique", Collection: collection, Err: ErrDuplicate}
			}
		}
	}
	if err := r.client.SAdd(ctx, r.key("unique", collection), field).Err(); err != nil {
		return &Error{Op: "ensure unique", Collection: collection, Err: err}
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

func (r *RedisStore) Name() string { return r.name }

func (r *RedisStore) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := r.client.SMembers(ctx, r.key("collections")).Result()
	if err != nil {
		return nil, &Error{Op: "list collections", Err: err}
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStore) Close(ctx context.Context) error {
	return r.client.Close()
}
