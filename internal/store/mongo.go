package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/normanking/wikidex/internal/document"
)

// serverSelectionTimeout bounds how long connecting waits for a reachable
// server before failing.
const serverSelectionTimeout = 5 * time.Second

// mongoDocument pairs the document body with MongoDB's object id. The body
// is inlined so the stored shape matches the document layout exactly.
type mongoDocument struct {
	OID               primitive.ObjectID `bson:"_id,omitempty"`
	document.Document `bson:",inline"`
}

// MongoBackend persists documents in a MongoDB collection.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoBackend connects to the MongoDB instance at uri and verifies the
// connection with a ping.
func NewMongoBackend(ctx context.Context, uri, database, collection string) (*MongoBackend, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoBackend{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Insert stores doc and returns the hex form of its object id.
func (m *MongoBackend) Insert(ctx context.Context, doc *document.Document) (string, error) {
	res, err := m.coll.InsertOne(ctx, mongoDocument{Document: *doc})
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Replace swaps the stored document body for doc. Unknown ids match
// nothing.
func (m *MongoBackend) Replace(ctx context.Context, id string, doc *document.Document) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": oid}, mongoDocument{Document: *doc}); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Delete removes the document with the given id. Unknown ids match nothing.
func (m *MongoBackend) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Find returns matching documents in natural collection order.
func (m *MongoBackend) Find(ctx context.Context, f Filter) ([]*document.Document, error) {
	filter := bson.M{}
	switch {
	case f.ID != "":
		oid, err := primitive.ObjectIDFromHex(f.ID)
		if err != nil {
			// Malformed identifiers match nothing.
			return nil, nil
		}
		filter["_id"] = oid
	case f.Query != "":
		filter["query"] = f.Query
	case f.URL != "":
		filter["url"] = f.URL
	case f.QueryContains != "":
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.QueryContains), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"query": re},
			bson.M{"metadata.query": re},
		}
	}

	opts := options.Find()
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	var rows []mongoDocument
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	out := make([]*document.Document, 0, len(rows))
	for _, row := range rows {
		doc := row.Document
		doc.ID = row.OID.Hex()
		out = append(out, &doc)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (m *MongoBackend) Count(ctx context.Context) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Totals aggregates the per-document statistics server-side.
func (m *MongoBackend) Totals(ctx context.Context) (*Totals, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_sections", Value: bson.D{{Key: "$sum", Value: "$statistics.total_sections"}}},
			{Key: "total_words", Value: bson.D{{Key: "$sum", Value: "$statistics.total_words"}}},
			{Key: "total_characters", Value: bson.D{{Key: "$sum", Value: "$statistics.total_characters"}}},
			{Key: "avg_sections", Value: bson.D{{Key: "$avg", Value: "$statistics.total_sections"}}},
			{Key: "max_depth", Value: bson.D{{Key: "$max", Value: "$statistics.hierarchy_depth"}}},
		}}},
	}

	cur, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate statistics: %w", err)
	}

	var rows []struct {
		TotalSections   int64   `bson:"total_sections"`
		TotalWords      int64   `bson:"total_words"`
		TotalCharacters int64   `bson:"total_characters"`
		AvgSections     float64 `bson:"avg_sections"`
		MaxDepth        int     `bson:"max_depth"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode statistics: %w", err)
	}

	if len(rows) == 0 {
		return &Totals{}, nil
	}
	return &Totals{
		TotalSections:   rows[0].TotalSections,
		TotalWords:      rows[0].TotalWords,
		TotalCharacters: rows[0].TotalCharacters,
		AvgSections:     rows[0].AvgSections,
		MaxDepth:        rows[0].MaxDepth,
	}, nil
}

// Ping verifies the server connection.
func (m *MongoBackend) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

// Close disconnects from the server.
func (m *MongoBackend) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}
