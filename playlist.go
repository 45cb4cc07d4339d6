package enginelibrary

import (
	"context"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/repository"
	"github.com/deckwave/enginelibrary/model"
)

// Playlist is a lightweight handle to one playlist row. Playlists only
// exist on v2/v3-family libraries; every method on a v1-family *Library
// fails with *UnsupportedOperation (spec.md §4.4).
type Playlist struct {
	lib *Library
	ID  int64
}

// Equal reports whether p and other name the same playlist in the same
// library.
func (p Playlist) Equal(other Playlist) bool {
	return p.ID == other.ID && p.lib.UUID() == other.lib.UUID()
}

func (l *Library) playlistRepo() (*repository.PlaylistRepository, error) {
	if l.playlists == nil {
		return nil, &errs.UnsupportedOperation{What: "playlists are not supported on a v1-family library"}
	}
	return l.playlists, nil
}

// CreateRootPlaylist creates a new top-level playlist.
func (l *Library) CreateRootPlaylist(ctx context.Context, name string) (Playlist, error) {
	repo, err := l.playlistRepo()
	if err != nil {
		return Playlist{}, err
	}
	p, err := repo.CreateRoot(ctx, name)
	if err != nil {
		return Playlist{}, err
	}
	return Playlist{lib: l, ID: p.ID}, nil
}

// CreateSubPlaylist creates a new playlist under parent.
func (l *Library) CreateSubPlaylist(ctx context.Context, parent Playlist, name string) (Playlist, error) {
	repo, err := l.playlistRepo()
	if err != nil {
		return Playlist{}, err
	}
	p, err := repo.CreateSub(ctx, parent.ID, name)
	if err != nil {
		return Playlist{}, err
	}
	return Playlist{lib: l, ID: p.ID}, nil
}

// PlaylistByID looks up a playlist handle by id.
func (l *Library) PlaylistByID(ctx context.Context, id int64) (Playlist, error) {
	repo, err := l.playlistRepo()
	if err != nil {
		return Playlist{}, err
	}
	if _, err := repo.ByID(ctx, id); err != nil {
		return Playlist{}, err
	}
	return Playlist{lib: l, ID: id}, nil
}

// RootPlaylists lists every top-level playlist.
func (l *Library) RootPlaylists(ctx context.Context) ([]Playlist, error) {
	repo, err := l.playlistRepo()
	if err != nil {
		return nil, err
	}
	children, err := repo.Children(ctx, nil)
	if err != nil {
		return nil, err
	}
	return wrapPlaylists(l, children), nil
}

// Name returns p's current name.
func (p Playlist) Name(ctx context.Context) (string, error) {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return "", err
	}
	playlist, err := repo.ByID(ctx, p.ID)
	if err != nil {
		return "", err
	}
	return playlist.Name, nil
}

// Children lists p's direct sub-playlists.
func (p Playlist) Children(ctx context.Context) ([]Playlist, error) {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return nil, err
	}
	children, err := repo.Children(ctx, &p.ID)
	if err != nil {
		return nil, err
	}
	return wrapPlaylists(p.lib, children), nil
}

// Rename renames p.
func (p Playlist) Rename(ctx context.Context, newName string) error {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return err
	}
	return repo.Rename(ctx, p.ID, newName)
}

// Remove deletes p.
func (p Playlist) Remove(ctx context.Context) error {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return err
	}
	return repo.Remove(ctx, p.ID)
}

// AddTrack appends track to the tail of p's membership list.
func (p Playlist) AddTrack(ctx context.Context, track Track) error {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return err
	}
	return repo.AddBack(ctx, p.ID, track.ID)
}

// AddTrackAfter splices track into p's membership list immediately after
// after.
func (p Playlist) AddTrackAfter(ctx context.Context, after, track Track) error {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return err
	}
	return repo.AddAfter(ctx, p.ID, after.ID, track.ID)
}

// RemoveTrack removes track from p's membership.
func (p Playlist) RemoveTrack(ctx context.Context, track Track) error {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return err
	}
	return repo.RemoveTrack(ctx, p.ID, track.ID)
}

// Tracks lists p's member tracks in membership order.
func (p Playlist) Tracks(ctx context.Context) ([]Track, error) {
	repo, err := p.lib.playlistRepo()
	if err != nil {
		return nil, err
	}
	ids, err := repo.Tracks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Track, len(ids))
	for i, id := range ids {
		out[i] = Track{lib: p.lib, ID: id}
	}
	return out, nil
}

func wrapPlaylists(lib *Library, in []model.Playlist) []Playlist {
	out := make([]Playlist, len(in))
	for i, p := range in {
		out[i] = Playlist{lib: lib, ID: p.ID}
	}
	return out
}
