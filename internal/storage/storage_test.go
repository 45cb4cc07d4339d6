package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/config"
	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
)

func TestCreateThenOpenV3RoundTrips(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	h, err := Create(ctx, dir, schema.V3_0_1, config.Options{})
	require.NoError(t, err)
	wantUUID := h.UUID
	require.NoError(t, h.Close())

	reopened, err := Open(ctx, dir, config.Options{})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, wantUUID, reopened.UUID)
	assert.True(t, reopened.Version.Equal(schema.V3_0_1))
	assert.Nil(t, reopened.PerfDB())
}

func TestCreateV1LayoutOpensTwoFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	h, err := Create(ctx, dir, schema.V1_18_0, config.Options{})
	require.NoError(t, err)
	defer h.Close()

	assert.FileExists(t, filepath.Join(dir, v1MusicFile))
	assert.FileExists(t, filepath.Join(dir, v1PerfFile))
	require.NotNil(t, h.PerfDB())

	require.NoError(t, schema.Verify(h.DB(), h.Version, "m"))
	require.NoError(t, schema.Verify(h.PerfDB(), h.Version, "p"))
}

func TestCreateFailsIfAlreadyExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	h, err := Create(ctx, dir, schema.V3_0_1, config.Options{})
	require.NoError(t, err)
	defer h.Close()

	_, err = Create(ctx, dir, schema.V3_0_1, config.Options{})
	require.Error(t, err)
	var alreadyExists *errs.DatabaseAlreadyExists
	assert.ErrorAs(t, err, &alreadyExists)
}

func TestOpenFailsWhenMissing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Open(ctx, dir, config.Options{})
	require.Error(t, err)
	var notFound *errs.DatabaseNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateTemporaryIsUsableWithoutADirectory(t *testing.T) {
	ctx := context.Background()

	h, err := CreateTemporary(ctx, schema.V1_18_0, config.Options{})
	require.NoError(t, err)
	defer h.Close()

	assert.Empty(t, h.Directory)
	require.NotNil(t, h.PerfDB())
	require.NoError(t, schema.Verify(h.DB(), h.Version, "m"))
	require.NoError(t, schema.Verify(h.PerfDB(), h.Version, "p"))
}

func TestBeginPerfTransactionIsNilForV2Family(t *testing.T) {
	ctx := context.Background()

	h, err := CreateTemporary(ctx, schema.V3_0_1, config.Options{})
	require.NoError(t, err)
	defer h.Close()

	scope, err := h.BeginPerfTransaction()
	require.NoError(t, err)
	assert.Nil(t, scope)
}
