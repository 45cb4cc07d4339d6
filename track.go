package enginelibrary

import (
	"context"

	"github.com/deckwave/enginelibrary/model"
)

// Track is a lightweight handle to one track row: the library it belongs
// to, plus its id. Two Track values compare equal when their ids match and
// they were obtained from libraries with the same UUID (spec.md §9).
type Track struct {
	lib *Library
	ID  int64
}

// Equal reports whether t and other name the same track in the same
// library.
func (t Track) Equal(other Track) bool {
	return t.ID == other.ID && t.lib.UUID() == other.lib.UUID()
}

// CreateTrack inserts snapshot as a new track and returns its handle.
func (l *Library) CreateTrack(ctx context.Context, snapshot model.Track) (Track, error) {
	id, _, err := l.tracks.Create(ctx, snapshot)
	if err != nil {
		return Track{}, err
	}
	return Track{lib: l, ID: id}, nil
}

// TrackByID looks up a track handle by id.
func (l *Library) TrackByID(ctx context.Context, id int64) (Track, error) {
	if _, err := l.tracks.ByID(ctx, id); err != nil {
		return Track{}, err
	}
	return Track{lib: l, ID: id}, nil
}

// TracksByRelativePath looks up a track handle by its file path.
func (l *Library) TracksByRelativePath(ctx context.Context, relativePath string) (Track, error) {
	id, _, err := l.tracks.ByRelativePath(ctx, relativePath)
	if err != nil {
		return Track{}, err
	}
	return Track{lib: l, ID: id}, nil
}

// Tracks lists every track in the library.
func (l *Library) Tracks(ctx context.Context) ([]Track, error) {
	all, err := l.tracks.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Track, 0, len(all))
	for id := range all {
		out = append(out, Track{lib: l, ID: id})
	}
	return out, nil
}

// Snapshot reads t's full current state.
func (t Track) Snapshot(ctx context.Context) (model.Track, error) {
	return t.lib.tracks.ByID(ctx, t.ID)
}

// Update replaces t's row and performance data with snapshot.
func (t Track) Update(ctx context.Context, snapshot model.Track) error {
	return t.lib.tracks.Update(ctx, t.ID, snapshot)
}

// Remove deletes t and its crate/playlist membership.
func (t Track) Remove(ctx context.Context) error {
	return t.lib.tracks.Remove(ctx, t.ID)
}
