// Package mongo reads item records from a MongoDB collection.
//
// Documents use the record field names (timestamp, text, hashtags,
// author). They are returned sorted by the configured sort field, which
// fixes their item ids.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/source"
)

// Defaults for [Config].
const (
	DefaultSortField      = "_id"
	DefaultConnectTimeout = 10 * time.Second
)

// Config describes where the records live.
type Config struct {
	URI        string `toml:"uri" json:"uri"`
	Database   string `toml:"database" json:"database"`
	Collection string `toml:"collection" json:"collection"`

	// SortField orders the documents. It defaults to _id, i.e. insertion
	// order for ObjectIDs.
	SortField string `toml:"sort_field" json:"sort_field,omitempty"`

	// Filter restricts the documents read; nil reads the whole collection.
	Filter bson.M `toml:"-" json:"-"`
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if err := errs.ValidateURL(c.URI, "mongodb", "mongodb+srv"); err != nil {
		return err
	}
	if c.Database == "" || c.Collection == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "mongo database and collection are required")
	}
	if c.SortField == "" {
		c.SortField = DefaultSortField
	}
	return nil
}

// Source reads records from one collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
	cfg    Config
}

// Open connects to the server described by cfg and checks the connection.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "ping mongo")
	}
	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:    cfg,
	}, nil
}

// Load returns the collection's records in sort order.
func (s *Source) Load(ctx context.Context) ([]item.Record, error) {
	filter := s.cfg.Filter
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.coll.Find(ctx, filter, FindOptions(s.cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "query %s.%s", s.cfg.Database, s.cfg.Collection)
	}
	records := []item.Record{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode documents")
	}
	return records, nil
}

// Save inserts records as documents.
func (s *Source) Save(ctx context.Context, records []item.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = r
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "insert records")
	}
	return len(res.InsertedIDs), nil
}

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindOptions returns the query options used by Load: sorted by the
// configured field, projecting only record fields.
func FindOptions(cfg Config) *options.FindOptions {
	field := cfg.SortField
	if field == "" {
		field = DefaultSortField
	}
	return options.Find().
		SetSort(bson.D{{Key: field, Value: 1}}).
		SetProjection(bson.M{"timestamp": 1, "text": 1, "hashtags": 1, "author": 1})
}

var _ source.Source = (*Source)(nil)
