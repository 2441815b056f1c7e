package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB wraps a SQL connection and knows how to speak its dialect.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// OpenSQLite opens (or creates) the SQLite file at path.
func OpenSQLite(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer: limit to a single connection to prevent SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return finishOpen(conn, DialectSQLite)
}

// OpenSQL connects to a Postgres or MySQL server using dsn.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	var driver string
	switch dialect {
	case DialectPostgres:
		driver = "postgres"
	case DialectMySQL:
		driver = "mysql"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return finishOpen(conn, dialect)
}

func finishOpen(conn *sql.DB, dialect Dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: dialect}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (db *DB) rebind(q string) string {
	if db.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
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

// upsert returns the dialect's "insert or replace on key" clause.
func (db *DB) upsert(key string, cols ...string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		if db.dialect == DialectMySQL {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		} else {
			sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
		}
	}
	if db.dialect == DialectMySQL {
		return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", key, strings.Join(sets, ", "))
}

func (db *DB) migrations() []string {
	switch db.dialect {
	case DialectPostgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS state_entries (
				state_key TEXT PRIMARY KEY,
				state_value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS history_entries (
				seq BIGSERIAL PRIMARY KEY,
				label TEXT NOT NULL,
				snapshot_json TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS history_cursor (
				id INTEGER PRIMARY KEY,
				seq BIGINT NOT NULL
			)`,
		}
	case DialectMySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS state_entries (
				state_key VARCHAR(191) PRIMARY KEY,
				state_value LONGTEXT NOT NULL,
				updated_at DATETIME(6) NOT NULL
			) DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS history_entries (
				seq BIGINT AUTO_INCREMENT PRIMARY KEY,
				label VARCHAR(255) NOT NULL,
				snapshot_json LONGTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL
			) DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS history_cursor (
				id INT PRIMARY KEY,
				seq BIGINT NOT NULL
			)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS state_entries (
			state_key TEXT PRIMARY KEY,
			state_value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS history_entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			snapshot_json TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS history_cursor (
			id INTEGER PRIMARY KEY,
			seq INTEGER NOT NULL
		)`,
	}
}

func (db *DB) migrate() error {
	for _, m := range db.migrations() {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", strings.Join(strings.Fields(m)[:6], " "), err)
		}
	}
	return nil
}
