package postStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blinky-z/Board/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultMongoDatabase - database used when none is configured
const DefaultMongoDatabase = "board"

// mongoPost - post document as stored in the collection
type mongoPost struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"created_at"`
}

// MongoStore - store backed by a mongodb collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongoStore - connects to mongodb and checks the connection
func OpenMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("postStore: mongo store requires dsn")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("postStore: connecting mongo: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("postStore: pinging mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Insert - saves a new post. Mongo has no server side defaults, so id and time are set on insert
func (s *MongoStore) Insert(ctx context.Context, post models.NewPost) error {
	document := mongoPost{
		ID:        bson.NewObjectID(),
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.collection.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("postStore: inserting post: %w", err)
	}
	return nil
}

// ListAll - returns all posts, newest first
func (s *MongoStore) ListAll(ctx context.Context) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("postStore: finding posts: %w", err)
	}

	var documents []mongoPost
	if err = cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("postStore: decoding posts: %w", err)
	}

	posts := make([]models.Post, 0, len(documents))
	for _, document := range documents {
		posts = append(posts, models.Post{
			ID:        models.PostID(document.ID.Hex()),
			Title:     document.Title,
			Content:   document.Content,
			CreatedAt: document.CreatedAt,
		})
	}
	return posts, nil
}

// Close - disconnects from mongodb
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
