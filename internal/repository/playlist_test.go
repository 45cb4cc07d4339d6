package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/model"
)

func TestPlaylistCreateAddAndList(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	playlists := NewPlaylistRepository(h)
	tracks := NewTrackRepository(h)

	p, err := playlists.CreateRoot(ctx, "Opening Set")
	require.NoError(t, err)

	t1, _, err := tracks.Create(ctx, trackSnapshot("Music/a.mp3"))
	require.NoError(t, err)
	t2, _, err := tracks.Create(ctx, trackSnapshot("Music/b.mp3"))
	require.NoError(t, err)
	t3, _, err := tracks.Create(ctx, trackSnapshot("Music/c.mp3"))
	require.NoError(t, err)

	require.NoError(t, playlists.AddBack(ctx, p.ID, t1))
	require.NoError(t, playlists.AddBack(ctx, p.ID, t2))
	require.NoError(t, playlists.AddAfter(ctx, p.ID, t1, t3))

	ordered, err := playlists.Tracks(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{t1, t3, t2}, ordered)
}

func TestPlaylistRemoveTrackRelinks(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	playlists := NewPlaylistRepository(h)
	tracks := NewTrackRepository(h)

	p, err := playlists.CreateRoot(ctx, "Set")
	require.NoError(t, err)

	t1, _, err := tracks.Create(ctx, trackSnapshot("Music/1.mp3"))
	require.NoError(t, err)
	t2, _, err := tracks.Create(ctx, trackSnapshot("Music/2.mp3"))
	require.NoError(t, err)
	t3, _, err := tracks.Create(ctx, trackSnapshot("Music/3.mp3"))
	require.NoError(t, err)

	require.NoError(t, playlists.AddBack(ctx, p.ID, t1))
	require.NoError(t, playlists.AddBack(ctx, p.ID, t2))
	require.NoError(t, playlists.AddBack(ctx, p.ID, t3))

	require.NoError(t, playlists.RemoveTrack(ctx, p.ID, t2))

	ordered, err := playlists.Tracks(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{t1, t3}, ordered)
}

func TestPlaylistChildrenAndRename(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	playlists := NewPlaylistRepository(h)

	root, err := playlists.CreateRoot(ctx, "Root")
	require.NoError(t, err)
	sub, err := playlists.CreateSub(ctx, root.ID, "Sub")
	require.NoError(t, err)

	require.NoError(t, playlists.Rename(ctx, sub.ID, "Renamed"))

	children, err := playlists.Children(ctx, &root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Renamed", children[0].Name)
}

func trackSnapshot(path string) model.Track {
	return model.Track{RelativePath: path, Rating: model.RatingNone}
}
