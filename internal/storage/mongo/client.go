package mongo

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/collegegpt/backend/internal/storage"
	"github.com/collegegpt/backend/internal/storage/models"
	"github.com/collegegpt/backend/pkg/logger"
)

const (
	mappingsCollection = "scraper_mappings"
	queriesCollection  = "student_queries"
)

// Store keeps the topic URL document in scraper_mappings, keyed by
// models.TopicURLsDocument with one array field per topic, and cached
// answers in student_queries.
type Store struct {
	client   *mongo.Client
	mappings *mongo.Collection
	queries  *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, eris.Wrap(err, "failed to ping mongo")
	}

	logger.Info("MongoDB client initialized", zap.String("database", database))

	s := NewStore(client.Database(database))
	s.client = client
	return s, nil
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		mappings: db.Collection(mappingsCollection),
		queries:  db.Collection(queriesCollection),
	}
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the createdAt index used by RecentAnswers.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.queries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return eris.Wrap(err, "failed to create createdAt index")
	}
	return nil
}

func (s *Store) LoadTopicURLs(ctx context.Context) (map[string][]string, error) {
	var doc bson.M
	err := s.mappings.FindOne(ctx, bson.M{"_id": models.TopicURLsDocument}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to load topic urls")
	}

	urls := make(map[string][]string, len(doc))
	for key, value := range doc {
		if key == "_id" {
			continue
		}
		arr, ok := value.(bson.A)
		if !ok {
			continue
		}
		for _, v := range arr {
			if u, ok := v.(string); ok && u != "" {
				urls[key] = append(urls[key], u)
			}
		}
	}
	return urls, nil
}

func (s *Store) SaveTopicURLs(ctx context.Context, urls map[string][]string) error {
	doc := bson.M{"_id": models.TopicURLsDocument}
	for topic, list := range urls {
		doc[topic] = list
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.mappings.ReplaceOne(ctx, bson.M{"_id": models.TopicURLsDocument}, doc, opts); err != nil {
		return eris.Wrap(err, "failed to save topic urls")
	}
	return nil
}

func (s *Store) RecentAnswers(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.queries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query cached answers")
	}
	defer cursor.Close(ctx)

	var entries []models.CacheEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, eris.Wrap(err, "failed to decode cached answers")
	}
	return entries, nil
}

func (s *Store) SaveAnswer(ctx context.Context, entry models.CacheEntry) error {
	if _, err := s.queries.InsertOne(ctx, entry); err != nil {
		return eris.Wrap(err, "failed to insert cached answer")
	}
	return nil
}
