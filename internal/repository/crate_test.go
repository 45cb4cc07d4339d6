package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
)

func TestCrateCreateRootAndSub(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	root, err := repo.CreateRoot(ctx, "House")
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	sub, err := repo.CreateSub(ctx, root.ID, "Deep House")
	require.NoError(t, err)
	require.NotNil(t, sub.ParentID)
	assert.Equal(t, root.ID, *sub.ParentID)

	children, err := repo.Children(ctx, &root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, sub.ID, children[0].ID)
}

func TestCrateCreateRejectsDuplicateSiblingName(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	_, err := repo.CreateRoot(ctx, "Techno")
	require.NoError(t, err)

	_, err = repo.CreateRoot(ctx, "Techno")
	require.Error(t, err)
	var exists *errs.CrateAlreadyExists
	assert.ErrorAs(t, err, &exists)
}

func TestCrateCreateRejectsInvalidName(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	_, err := repo.CreateRoot(ctx, "bad;name")
	require.Error(t, err)
	var invalid *errs.CrateInvalidName
	assert.ErrorAs(t, err, &invalid)
}

func TestCrateRenameRecomputesDescendantPaths(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	root, err := repo.CreateRoot(ctx, "Old")
	require.NoError(t, err)
	sub, err := repo.CreateSub(ctx, root.ID, "Child")
	require.NoError(t, err)

	require.NoError(t, repo.Rename(ctx, root.ID, "New"))

	renamedSub, err := repo.ByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Child", renamedSub.Name)

	path, err := repo.pathOf(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "New;Child;", path)
}

func TestCrateReparentRejectsCycle(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	root, err := repo.CreateRoot(ctx, "Parent")
	require.NoError(t, err)
	child, err := repo.CreateSub(ctx, root.ID, "Child")
	require.NoError(t, err)

	err = repo.Reparent(ctx, root.ID, &child.ID)
	require.Error(t, err)
	var invalid *errs.CrateInvalidParent
	assert.ErrorAs(t, err, &invalid)
}

func TestCrateRemoveDeletesRow(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewCrateRepository(h)

	root, err := repo.CreateRoot(ctx, "Gone")
	require.NoError(t, err)
	require.NoError(t, repo.Remove(ctx, root.ID))

	_, err = repo.ByID(ctx, root.ID)
	require.Error(t, err)
	var deleted *errs.CrateDeleted
	assert.ErrorAs(t, err, &deleted)
}
