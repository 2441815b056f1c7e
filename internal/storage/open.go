package storage

import (
	"context"
	"fmt"

	"mockingbird/internal/domain"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongodb"
)

// Options select and configure a storage backend. For sqlite DSN is a file
// path; for the other drivers it is the server connection string.
type Options struct {
	Driver       string
	DSN          string
	Database     string
	HistoryLimit int
}

// Backend bundles the two stores a design needs plus the shared handle.
type Backend struct {
	State   domain.StateStore
	History domain.HistoryStore
	// Path is the sqlite file, empty for server backends.
	Path  string
	close func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the configured backend and runs migrations.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		db, err := OpenSQLite(opts.DSN)
		if err != nil {
			return nil, err
		}
		return sqlBackend(db, opts, opts.DSN), nil
	case DriverPostgres, DriverMySQL:
		db, err := OpenSQL(ctx, Dialect(opts.Driver), opts.DSN)
		if err != nil {
			return nil, err
		}
		return sqlBackend(db, opts, ""), nil
	case DriverMongo:
		m, err := OpenMongo(ctx, opts.DSN, opts.Database, opts.HistoryLimit)
		if err != nil {
			return nil, err
		}
		return &Backend{State: m, History: m, close: m.Close}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
}

func sqlBackend(db *DB, opts Options, path string) *Backend {
	return &Backend{
		State:   NewStateStore(db),
		History: NewHistoryStore(db, opts.HistoryLimit),
		Path:    path,
		close:   db.Close,
	}
}
