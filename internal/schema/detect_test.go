package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/errs"
)

// TestDetectRejectsUnknownVersionTriple is scenario 6: a hand-crafted
// Information row with a version triple outside the enumerated set fails
// with *errs.UnsupportedVersion rather than picking the nearest known
// version.
func TestDetectRejectsUnknownVersionTriple(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Create(db, V3_0_1, "m"))

	_, err := db.Exec(`UPDATE Information SET schemaVersionMajor = 9, schemaVersionMinor = 9, schemaVersionPatch = 9`)
	require.NoError(t, err)

	_, err = Detect(db)
	require.Error(t, err)
	var unsupported *errs.UnsupportedVersion
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 9, unsupported.Major)
	assert.Equal(t, 9, unsupported.Minor)
	assert.Equal(t, 9, unsupported.Patch)
}

func TestDetectReturnsSameVersionAsCreated(t *testing.T) {
	for _, v := range All {
		v := v
		t.Run(v.String(), func(t *testing.T) {
			db := openMemory(t)
			require.NoError(t, Create(db, v, "m"))
			got, err := Detect(db)
			require.NoError(t, err)
			assert.True(t, got.Equal(v))
		})
	}
}
