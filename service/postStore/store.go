// Package postStore provides clients for the stores that keep posts.
// Every client inserts posts and lists all of them newest first; ids and creation times are assigned
// by the store.
package postStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blinky-z/Board/models"
)

// Store - store client consumed by the board and the rest api
type Store interface {
	// Insert - saves a new post. ID and creation time are assigned by the store
	Insert(ctx context.Context, post models.NewPost) error
	// ListAll - returns all posts ordered by creation time, newest first
	ListAll(ctx context.Context) ([]models.Post, error)
	// Close - releases connections held by the client
	Close() error
}

// supported store drivers
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// DefaultTable - default table (or collection) name
const DefaultTable = "posts"

// ErrUnknownDriver - requested driver is not supported
var ErrUnknownDriver = errors.New("postStore: unknown driver")

// Config - settings required to open a store client
type Config struct {
	Driver string
	// URL and Key are used by the rest driver
	URL string
	Key string
	// DSN is used by sql and mongo drivers
	DSN string
	// Database is used by the mongo driver
	Database string
	Table    string
	// Timeout bounds every call of the rest driver. Zero means no bound
	Timeout time.Duration
}

// Open - opens a store client for the configured driver
func Open(ctx context.Context, config Config) (Store, error) {
	table := config.Table
	if table == "" {
		table = DefaultTable
	}

	switch config.Driver {
	case DriverREST:
		return NewRESTStore(config.URL, config.Key, table, config.Timeout)
	case DriverPostgres, DriverSQLite:
		store, err := OpenSQLStore(config.Driver, config.DSN, table)
		if err != nil {
			return nil, err
		}
		if err = store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case DriverMongo:
		return OpenMongoStore(ctx, config.DSN, config.Database, table)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, config.Driver)
	}
}
