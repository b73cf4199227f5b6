// Package store wraps MongoDB behind the three document operations the
// crawler uses: count by id, find one by id, insert one. Nothing updates or
// deletes; expiry is left to the database's own TTL mechanism.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/whyando/tft-stat/internal/config"
	"github.com/whyando/tft-stat/internal/constants"
)

// ErrNotFound is returned by FindOneByID when no document has the id.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned by InsertOne when a document with the same id
// already exists, typically one past its expiry that the TTL monitor has not
// reaped yet.
var ErrDuplicate = errors.New("duplicate document id")

type Mongo struct {
	db     *mongo.Database
	logger zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Mongo, error) {
	logger.Info().Str("db_name", cfg.DBName).Msg("connecting to database")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.DBConnectionString).
		SetAppName("tft_stat")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Error().Err(err).Msg("failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection established")
	return &Mongo{db: client.Database(cfg.DBName), logger: logger}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}

func (m *Mongo) CountByID(ctx context.Context, collection, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return m.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
}

func (m *Mongo) FindOneByID(ctx context.Context, collection, id string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
