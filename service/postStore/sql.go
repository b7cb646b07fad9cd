package postStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/blinky-z/Board/models"
	_ "github.com/lib/pq"           // import postgres driver
	_ "github.com/mattn/go-sqlite3" // import sqlite driver
)

const (
	// postsInsertFields - fields that should be filled while inserting a new entity
	postsInsertFields = "title, content"
	// postsAllFields - all entity fields
	postsAllFields = "id, title, content, created_at"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dialect - the parts of sql that differ between supported databases
type dialect struct {
	createTable string
	insert      string
}

func newDialect(driver, table string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return dialect{
			createTable: "create table if not exists " + table + " (" +
				"id bigserial primary key, " +
				"title text not null, " +
				"content text not null, " +
				"created_at timestamptz not null default now())",
			insert: "insert into " + table + " (" + postsInsertFields + ") values ($1, $2)",
		}, nil
	case DriverSQLite:
		return dialect{
			createTable: "create table if not exists " + table + " (" +
				"id integer primary key autoincrement, " +
				"title text not null, " +
				"content text not null, " +
				"created_at timestamp not null default (strftime('%Y-%m-%d %H:%M:%f', 'now')))",
			insert: "insert into " + table + " (" + postsInsertFields + ") values (?, ?)",
		}, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// SQLStore - store backed by postgres or sqlite through database/sql
type SQLStore struct {
	db      *sql.DB
	table   string
	dialect dialect
}

// OpenSQLStore - opens database with the given driver ("postgres" or "sqlite3") and data source
func OpenSQLStore(driver, dsn, table string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postStore: sql store requires dsn")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("postStore: opening %s database: %w", driver, err)
	}
	store, err := NewSQLStore(db, driver, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore - wraps already opened database
func NewSQLStore(db *sql.DB, driver, table string) (*SQLStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("postStore: invalid table name %q", table)
	}
	d, err := newDialect(driver, table)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, table: table, dialect: d}, nil
}

// EnsureSchema - creates posts table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postStore: invalid data source: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("postStore: creating table %s: %w", s.table, err)
	}
	return nil
}

// Insert - saves a new post
func (s *SQLStore) Insert(ctx context.Context, post models.NewPost) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.insert, post.Title, post.Content); err != nil {
		return fmt.Errorf("postStore: inserting post: %w", err)
	}
	return nil
}

// ListAll - returns all posts, newest first. Posts created at the same time are ordered by ID
func (s *SQLStore) ListAll(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, "select "+postsAllFields+" from "+s.table+" order by created_at desc, id desc")
	if err != nil {
		return nil, fmt.Errorf("postStore: selecting posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var currentPost models.Post
		if err = rows.Scan(&currentPost.ID, &currentPost.Title, &currentPost.Content, &currentPost.CreatedAt); err != nil {
			return nil, fmt.Errorf("postStore: scanning post: %w", err)
		}
		posts = append(posts, currentPost)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postStore: iterating posts: %w", err)
	}

	return posts, nil
}

// Close - closes database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
