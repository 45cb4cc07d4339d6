package txn

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	return db, ctx
}

func countRows(t *testing.T, ctx context.Context, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	return n
}

func TestCommitPersistsChanges(t *testing.T) {
	db, ctx := openDB(t)

	root, err := Root(ctx, db)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, root.Commit())

	require.Equal(t, 1, countRows(t, ctx, db))
}

func TestRollbackUndoesChanges(t *testing.T) {
	db, ctx := openDB(t)

	root, err := Root(ctx, db)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, root.Rollback())

	require.Equal(t, 0, countRows(t, ctx, db))
}

func TestNestedScopeRollbackLeavesParentIntact(t *testing.T) {
	db, ctx := openDB(t)

	root, err := Root(ctx, db)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t VALUES (1)")
	require.NoError(t, err)

	child, err := root.Begin()
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO t VALUES (2)")
	require.NoError(t, err)
	require.NoError(t, child.Rollback())

	require.Equal(t, 1, countRows(t, ctx, db))
	require.NoError(t, root.Commit())
	require.Equal(t, 1, countRows(t, ctx, db))
}

func TestCommitAndRollbackAreIdempotentAfterResolve(t *testing.T) {
	db, ctx := openDB(t)

	root, err := Root(ctx, db)
	require.NoError(t, err)
	require.NoError(t, root.Commit())
	require.NoError(t, root.Commit())
	require.NoError(t, root.Rollback())
}
