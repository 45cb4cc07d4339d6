// Package enginelibrary reads and writes the Engine Library DJ database
// format: a schema-versioned SQLite-based relational layer (tracks, crates,
// playlists) plus six bit-exact binary blob formats carrying a track's
// analysis data (beatgrid, hot cues, loops, and waveforms).
//
// Open an existing library with Open, or start a new one with Create or
// CreateTemporary. Every operation on the returned *Library runs against
// exactly one open database handle; a *Library is not safe for concurrent
// use by multiple goroutines (spec.md §5) — callers needing concurrency
// open independent handles against the same directory.
package enginelibrary

import (
	"context"

	"github.com/google/uuid"

	"github.com/deckwave/enginelibrary/internal/config"
	"github.com/deckwave/enginelibrary/internal/repository"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/storage"
	"github.com/deckwave/enginelibrary/internal/txn"
)

// SchemaVersion identifies one enumerated Engine Library schema.
type SchemaVersion = schema.Version

// Latest is the newest enumerated schema version, used by Create when the
// caller does not specify one.
var Latest = schema.Latest

// SchemaVersions returns every enumerated schema version this library can
// create or open, oldest first.
func SchemaVersions() []SchemaVersion {
	out := make([]SchemaVersion, len(schema.All))
	copy(out, schema.All)
	return out
}

// Options controls per-call tuning, mirroring internal/config.Options.
type Options = config.Options

// Library is an open Engine Library database. Obtain one with Open, Create,
// or CreateTemporary, and Close it when done.
type Library struct {
	handle    *storage.Handle
	tracks    *repository.TrackRepository
	crates    *repository.CrateRepository
	playlists *repository.PlaylistRepository // nil for v1-family libraries
}

func wrap(h *storage.Handle) *Library {
	l := &Library{
		handle: h,
		tracks: repository.NewTrackRepository(h),
		crates: repository.NewCrateRepository(h),
	}
	if h.Version.HasPlaylists {
		l.playlists = repository.NewPlaylistRepository(h)
	}
	return l
}

// Open opens an existing library at directory.
func Open(ctx context.Context, directory string, opts Options) (*Library, error) {
	h, err := storage.Open(ctx, directory, opts)
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

// Create creates a new library of version v at directory, failing with
// *DatabaseAlreadyExists if a library file is already present there.
func Create(ctx context.Context, directory string, v SchemaVersion, opts Options) (*Library, error) {
	h, err := storage.Create(ctx, directory, v, opts)
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

// CreateTemporary creates an in-memory library of version v, for scratch or
// test use.
func CreateTemporary(ctx context.Context, v SchemaVersion, opts Options) (*Library, error) {
	h, err := storage.CreateTemporary(ctx, v, opts)
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

// Close releases the library's underlying connection(s).
func (l *Library) Close() error {
	return l.handle.Close()
}

// UUID returns the library's identity, stable across Open/Close cycles.
func (l *Library) UUID() uuid.UUID {
	return l.handle.UUID
}

// VersionName returns the library's detected schema version.
func (l *Library) VersionName() SchemaVersion {
	return l.handle.Version
}

// Verify re-checks that the library's installed schema matches its
// declared version.
func (l *Library) Verify() error {
	db := l.handle.DB()
	if err := schema.Verify(db, l.handle.Version, "m"); err != nil {
		return err
	}
	if l.handle.Version.Family == schema.FamilyV1 {
		return schema.Verify(l.handle.PerfDB(), l.handle.Version, "p")
	}
	return nil
}

// Transaction is a nested savepoint scope opened with BeginTransaction. For
// a v1-family library it wraps a savepoint on both the music and
// performance connections, since the two are independently pooled (see
// internal/storage.Handle.PerfDB); both resolve together under Commit and
// Rollback.
type Transaction struct {
	scope     *txn.Scope
	perfScope *txn.Scope
}

// BeginTransaction opens a nested transaction scope on the library's root
// scope (spec.md §4.8). The caller must Commit or Rollback it.
func (l *Library) BeginTransaction() (*Transaction, error) {
	scope, err := l.handle.BeginTransaction()
	if err != nil {
		return nil, err
	}
	perfScope, err := l.handle.BeginPerfTransaction()
	if err != nil {
		scope.Rollback()
		return nil, err
	}
	return &Transaction{scope: scope, perfScope: perfScope}, nil
}

// Begin opens a nested scope under t, for a caller that wants to isolate a
// sub-operation within an already-open transaction.
func (t *Transaction) Begin() (*Transaction, error) {
	scope, err := t.scope.Begin()
	if err != nil {
		return nil, err
	}
	var perfScope *txn.Scope
	if t.perfScope != nil {
		perfScope, err = t.perfScope.Begin()
		if err != nil {
			scope.Rollback()
			return nil, err
		}
	}
	return &Transaction{scope: scope, perfScope: perfScope}, nil
}

// Commit releases this transaction's savepoint(s).
func (t *Transaction) Commit() error {
	if t.perfScope != nil {
		if err := t.perfScope.Commit(); err != nil {
			return err
		}
	}
	return t.scope.Commit()
}

// Rollback undoes every statement issued since this transaction began.
func (t *Transaction) Rollback() error {
	if t.perfScope != nil {
		if err := t.perfScope.Rollback(); err != nil {
			return err
		}
	}
	return t.scope.Rollback()
}
