package model

// NoNextEntityID marks the tail of a playlist's linked-list membership
// (PLAYLIST_ENTITY_NO_NEXT_ENTITY_ID in reference data).
const NoNextEntityID int64 = -1

// Playlist is a v2+-only named, hierarchical, explicitly ordered container
// for tracks.
type Playlist struct {
	ID       int64
	Name     string
	ParentID *int64
}

// PlaylistEntry is one track's position within a playlist's singly-linked
// membership list.
type PlaylistEntry struct {
	TrackID      int64
	NextEntityID int64 // NoNextEntityID marks the tail
}
