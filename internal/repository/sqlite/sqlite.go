// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — it works wherever Go works.
//
// Blog posts are stored document-style: scalar columns for the fields we
// query on, plus the embedded comment sequence serialized into a single
// JSON TEXT column. Each post is one self-contained row, so every
// operation touches exactly one row and no cross-row consistency is
// needed.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The repository interfaces are
// implemented by the per-collection stores returned from Users and
// Blogs; both share this pool. The server owns the lifecycle: New opens
// it, Close releases it on shutdown.
type DB struct {
	conn  *sql.DB
	users *UserStore
	blogs *BlogStore
}

// Users returns the user collection store.
func (db *DB) Users() *UserStore {
	return db.users
}

// Blogs returns the blog collection store.
func (db *DB) Blogs() *BlogStore {
	return db.blogs
}

// New opens (or creates) the SQLite database at dbPath and runs
// migrations. Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only prepares the pool; Ping forces a real connection so
	// a bad path surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// sql.DB is a connection pool, and every ":memory:" connection gets
	// its OWN private database — a second pooled connection would see no
	// tables at all. Pinning the pool to one connection keeps the
	// in-memory database coherent (and tests deterministic).
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// WAL mode allows concurrent reads while a write is in flight —
	// important for a web server with overlapping requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Writers that collide wait up to 5s instead of failing immediately
	// with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}
	db.users = &UserStore{conn: conn}
	db.blogs = &BlogStore{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every startup.
//
// blogs.author holds a User id but deliberately carries no FOREIGN KEY:
// author and comment user references are advisory — a post whose author
// was never registered is still a valid document. (That is also why we
// don't enable PRAGMA foreign_keys here.)
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			username      TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS blogs (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			author     TEXT NOT NULL,
			url        TEXT NOT NULL DEFAULT '',
			likes      INTEGER NOT NULL DEFAULT 0,
			comments   TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_blogs_created_at ON blogs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating blogs table: %w", err)
	}

	return nil
}
