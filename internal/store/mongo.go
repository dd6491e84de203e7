package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on one MongoDB database. Ids are ObjectID hex strings.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database), now: time.Now}
}

// bsonDocument is a document read back from Mongo.
type bsonDocument bson.Raw

func (d bsonDocument) Decode(v any) error { return bson.Unmarshal(d, v) }

func (m *MongoStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: fmt.Errorf("encode record: %w", err)}
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	now := m.now().UTC()
	doc = append(doc, bson.E{Key: FieldCreatedAt, Value: now}, bson.E{Key: FieldUpdatedAt, Value: now})

	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", &Error{Op: "insert", Collection: collection, Err: fmt.Errorf("%w: %v", ErrDuplicate, err)}
		}
		return "", &Error{Op: "insert", Collection: collection, Err: err}
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (m *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, &Error{Op: "list", Collection: collection, Err: err}
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		// cur.Current is only valid until the next call to Next
		out = append(out, bsonDocument(append(bson.Raw(nil), cur.Current...)))
	}
	if err := cur.Err(); err != nil {
		return nil, &Error{Op: "list", Collection: collection, Err: err}
	}
	return out, nil
}

func (m *MongoStore) EnsureUnique(ctx context.Context, collection, field string) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_unique"),
	}
	if _, err := m.db.Collection(collection).Indexes().CreateOne(ctx, idx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return &Error{Op: "ensure unique", Collection: collection, Err: err}
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return &Error{Op: "ping", Err: err}
	}
	return nil
}

func (m *MongoStore) Name() string { return m.db.Name() }

func (m *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, &Error{Op: "list collections", Err: err}
	}
	return names, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
