// Package txn implements nested transaction scopes using SQLite SAVEPOINTs,
// mirroring the explicit Commit/Rollback idiom of *sql.Tx rather than the
// context-injected transaction style the teacher codebase uses for its
// Postgres/GORM layer.
//
// Callers must pass a *sql.DB configured with SetMaxOpenConns(1): SAVEPOINTs
// are connection-local, so if database/sql's pool handed two statements in
// the same logical scope to different pooled connections, the second would
// not see the first's SAVEPOINT at all. A single-connection pool, combined
// with the library's single-threaded-per-handle usage model (spec §5),
// guarantees every statement lands on the same physical connection.
package txn

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/deckwave/enginelibrary/pkg/logger"
)

var log = logger.New("txn")

// Scope is a handle to one active SAVEPOINT. A Scope obtained from Begin
// must eventually be resolved with Commit or Rollback; a Scope obtained from
// an existing Scope's Begin nests inside it.
//
// Scope is not safe for concurrent use by multiple goroutines, matching
// *sql.Tx.
type Scope struct {
	db       *sql.DB
	ctx      context.Context
	name     string
	resolved bool
	counter  *atomic.Int64
}

// Root begins the outermost SAVEPOINT on db. Callers open and close db
// themselves; Root does not manage its lifetime.
func Root(ctx context.Context, db *sql.DB) (*Scope, error) {
	var counter atomic.Int64
	s := &Scope{db: db, ctx: ctx, counter: &counter}
	return s.beginNamed()
}

// Begin opens a nested SAVEPOINT inside s. The parent Scope remains open and
// usable once the child is resolved.
func (s *Scope) Begin() (*Scope, error) {
	child := &Scope{db: s.db, ctx: s.ctx, counter: s.counter}
	return child.beginNamed()
}

func (s *Scope) beginNamed() (*Scope, error) {
	n := s.counter.Add(1)
	s.name = fmt.Sprintf("enginelibrary_sp_%d", n)

	if _, err := s.db.ExecContext(s.ctx, "SAVEPOINT "+s.name); err != nil {
		return nil, log.Function("Begin").Err("failed to open savepoint", err, "savepoint", s.name)
	}
	return s, nil
}

// Commit releases this scope's SAVEPOINT, making its changes visible to
// (and undoable by) the parent scope. Committing an already-resolved Scope
// is a no-op, matching *sql.Tx.Commit's tolerance of a redundant call site.
func (s *Scope) Commit() error {
	if s.resolved {
		return nil
	}
	s.resolved = true

	if _, err := s.db.ExecContext(s.ctx, "RELEASE SAVEPOINT "+s.name); err != nil {
		return log.Function("Commit").Err("failed to release savepoint", err, "savepoint", s.name)
	}
	return nil
}

// Rollback undoes every statement executed since this scope began. Rolling
// back an already-resolved Scope is a no-op, so a deferred Rollback after an
// explicit Commit is always safe.
func (s *Scope) Rollback() error {
	if s.resolved {
		return nil
	}
	s.resolved = true

	if _, err := s.db.ExecContext(s.ctx, "ROLLBACK TO SAVEPOINT "+s.name); err != nil {
		return log.Function("Rollback").Err("failed to roll back to savepoint", err, "savepoint", s.name)
	}
	if _, err := s.db.ExecContext(s.ctx, "RELEASE SAVEPOINT "+s.name); err != nil {
		return log.Function("Rollback").Err("failed to release savepoint after rollback", err, "savepoint", s.name)
	}
	return nil
}

// DB exposes the underlying connection pool for repository code that needs
// to issue statements within this scope. Every statement submitted through
// it participates in the scope's SAVEPOINT until Commit or Rollback runs.
func (s *Scope) DB() *sql.DB {
	return s.db
}

// Context returns the context this scope's statements run under.
func (s *Scope) Context() context.Context {
	return s.ctx
}
