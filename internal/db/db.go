package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Dialect selects the SQL flavour used for DDL and placeholders.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// ParseDSN maps a connection string onto a driver dialect and the string
// handed to sql.Open. sqlite:///rel.db and sqlite:////abs.db follow the
// SQLAlchemy convention.
func ParseDSN(dsn string) (Dialect, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Postgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			path = ":memory:"
		}
		return SQLite, path
	default:
		return SQLite, dsn
	}
}

// Open connects to the database named by dsn and verifies the connection.
func Open(dsn string) (*Store, error) {
	dialect, source := ParseDSN(dsn)

	var (
		conn *sql.DB
		err  error
	)
	switch dialect {
	case Postgres:
		conn, err = sql.Open("postgres", source)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		if source != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		conn, err = sql.Open("sqlite", withPragmas(source))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return &Store{conn: conn, q: conn, dialect: dialect}, nil
}

func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == Postgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users(
			id ` + id + `,
			email VARCHAR(250) UNIQUE NOT NULL,
			password VARCHAR(250) NOT NULL,
			name VARCHAR(250) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blog_posts(
			id ` + id + `,
			author_id BIGINT NOT NULL REFERENCES users(id),
			title VARCHAR(250) UNIQUE NOT NULL,
			subtitle VARCHAR(250) NOT NULL,
			date VARCHAR(250) NOT NULL,
			body TEXT NOT NULL,
			img_url VARCHAR(250) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments(
			id ` + id + `,
			text TEXT NOT NULL,
			author_id BIGINT NOT NULL REFERENCES users(id),
			post_id BIGINT NOT NULL REFERENCES blog_posts(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sessions(
			id VARCHAR(64) PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_post_id ON comments(post_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $N for postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mapError translates driver errors into package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
