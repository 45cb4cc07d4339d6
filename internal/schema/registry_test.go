package schema

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/errs"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCreateThenVerifySucceedsForEveryVersion is the registry's core law:
// create(V) followed by verify(V) must succeed for every enumerated V.
func TestCreateThenVerifySucceedsForEveryVersion(t *testing.T) {
	for _, v := range All {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			for key := range BuildDDL(v) {
				db := openMemory(t)
				require.NoError(t, Create(db, v, key))
				require.NoError(t, Verify(db, v, key))
			}
		})
	}
}

// TestVerifyRejectsMismatchedVersion is the registry's second law, held
// unconditionally: for every pair (created, expected) of distinct enumerated
// versions, create(created) followed by verify(expected) fails with
// SchemaMismatch. Versions sharing every capability flag get distinct Track
// column sets (see version.go's Ordinal and ddl.go's trackTableDDL), and
// versions whose table sets differ are caught by Verify's table-count check,
// so no pair ever needs to be skipped as "equivalent."
func TestVerifyRejectsMismatchedVersion(t *testing.T) {
	for _, created := range All {
		for _, expected := range All {
			if created.Equal(expected) {
				continue
			}
			if _, ok := BuildDDL(created)["m"]; !ok {
				continue
			}
			if _, ok := BuildDDL(expected)["m"]; !ok {
				continue
			}

			db := openMemory(t)
			require.NoError(t, Create(db, created, "m"))
			err := Verify(db, expected, "m")
			require.Errorf(t, err, "expected Verify(%s) to fail against a %s database", expected, created)
			var mismatch *errs.SchemaMismatch
			assert.ErrorAs(t, err, &mismatch)
		}
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for _, v := range All {
		got, ok := Lookup(v.Triple)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}
