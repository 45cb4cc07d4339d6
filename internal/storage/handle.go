package storage

import (
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/txn"
	"github.com/deckwave/enginelibrary/pkg/logger"
)

var log = logger.New("storage")

// Handle is an open Engine Library database, either a freshly created one
// or one opened from an existing directory. It owns the *sql.DB pool backing
// every attached database file and the root transaction scope.
type Handle struct {
	Directory string
	Version   schema.Version
	UUID      uuid.UUID

	// LogFormat is the resolved logger.Format this handle was opened with
	// (config.Options.LogFormat, defaulted by config.Resolve). Repository
	// constructors use it to build their own per-instance logger rather
	// than sharing this package's process-wide one, so two libraries opened
	// in the same process with different ENGINELIB_LOG_FORMAT settings log
	// in their own configured format.
	LogFormat logger.Format

	db     *sql.DB // music database: the sole file for v2/v3, m.db for v1
	perfDB *sql.DB // performance database: nil except for v1's p.db
	root   *txn.Scope

	perfRoot *txn.Scope
}

// Log builds a component logger named name using this handle's resolved
// LogFormat, for repository constructors to use in place of the package
// default logger.New.
func (h *Handle) Log(name string) logger.Logger {
	return logger.NewWithConfig(logger.Config{Name: name, Format: h.LogFormat, Level: slog.LevelInfo})
}

// DB exposes the underlying music-database connection pool for repository
// code.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// PerfDB exposes the performance-database connection pool. It is nil for
// v2/v3-family libraries, which keep performance data in the music file.
//
// v1's reference implementation attaches both files onto one sqlite
// connection so a single transaction spans both; this port keeps them as two
// independently-pooled connections instead; each carries its own root scope,
// so a v1 repository that touches both m.db and p.db in one logical
// operation resolves each scope separately rather than atomically across
// both files. See DESIGN.md.
func (h *Handle) PerfDB() *sql.DB {
	return h.perfDB
}

// Root returns the root transaction scope every top-level operation runs
// inside.
func (h *Handle) Root() *txn.Scope {
	return h.root
}

// BeginTransaction opens a nested SAVEPOINT scope under the handle's root
// scope.
func (h *Handle) BeginTransaction() (*txn.Scope, error) {
	return h.root.Begin()
}

// BeginPerfTransaction opens a nested SAVEPOINT scope on the performance
// database. It returns *errs.UnsupportedOperation-free nil, nil when the
// library has no separate performance database (v2/v3).
func (h *Handle) BeginPerfTransaction() (*txn.Scope, error) {
	if h.perfRoot == nil {
		return nil, nil
	}
	return h.perfRoot.Begin()
}

// Close releases the handle's connection pool(s). It does not resolve any
// outstanding nested scope; callers must commit or roll back their own
// transactions first.
func (h *Handle) Close() error {
	l := log.Function("Close")
	if err := h.root.Commit(); err != nil {
		return l.Err("failed to release root scope", err, "directory", h.Directory)
	}
	if h.perfRoot != nil {
		if err := h.perfRoot.Commit(); err != nil {
			return l.Err("failed to release performance root scope", err, "directory", h.Directory)
		}
	}
	if err := h.db.Close(); err != nil {
		return l.Err("failed to close database", err, "directory", h.Directory)
	}
	if h.perfDB != nil {
		if err := h.perfDB.Close(); err != nil {
			return l.Err("failed to close performance database", err, "directory", h.Directory)
		}
	}
	return nil
}
