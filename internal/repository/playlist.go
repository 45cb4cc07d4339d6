package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/storage"
	"github.com/deckwave/enginelibrary/model"
	"github.com/deckwave/enginelibrary/pkg/logger"
)

// PlaylistRepository implements the playlist tree and membership (spec.md
// §4.7). It is only ever constructed for a v2/v3-family Handle; v1 backends
// reject playlist operations with *errs.UnsupportedOperation before
// reaching this type.
type PlaylistRepository struct {
	handle *storage.Handle
	log    logger.Logger
}

// NewPlaylistRepository constructs a PlaylistRepository bound to handle.
func NewPlaylistRepository(handle *storage.Handle) *PlaylistRepository {
	return &PlaylistRepository{handle: handle, log: handle.Log("playlistRepository")}
}

// ByID reads one playlist by id.
func (r *PlaylistRepository) ByID(ctx context.Context, id int64) (model.Playlist, error) {
	var p model.Playlist
	var parentListID sql.NullInt64
	err := r.handle.DB().QueryRowContext(ctx, `SELECT id, title, parentListId FROM Playlist WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &parentListID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Playlist{}, &errs.PlaylistDeleted{ID: id}
		}
		return model.Playlist{}, err
	}
	if parentListID.Valid && parentListID.Int64 != 0 {
		v := parentListID.Int64
		p.ParentID = &v
	}
	return p, nil
}

// Children lists the direct children of parentID (nil lists roots), matched
// by parentListId in the order SQLite returns them; the nextListId sibling
// chain is not walked.
func (r *PlaylistRepository) Children(ctx context.Context, parentID *int64) ([]model.Playlist, error) {
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = r.handle.DB().QueryContext(ctx, `SELECT id, title, parentListId FROM Playlist WHERE parentListId IS NULL OR parentListId = 0`)
	} else {
		rows, err = r.handle.DB().QueryContext(ctx, `SELECT id, title, parentListId FROM Playlist WHERE parentListId = ?`, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Playlist
	for rows.Next() {
		var p model.Playlist
		var parentListID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &parentListID); err != nil {
			return nil, err
		}
		if parentListID.Valid && parentListID.Int64 != 0 {
			v := parentListID.Int64
			p.ParentID = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateRoot creates a new top-level playlist named name.
func (r *PlaylistRepository) CreateRoot(ctx context.Context, name string) (model.Playlist, error) {
	return r.create(ctx, nil, name)
}

// CreateSub creates a new playlist named name under parentID.
func (r *PlaylistRepository) CreateSub(ctx context.Context, parentID int64, name string) (model.Playlist, error) {
	return r.create(ctx, &parentID, name)
}

func (r *PlaylistRepository) create(ctx context.Context, parentID *int64, name string) (model.Playlist, error) {
	l := r.log.Function("create")

	if !model.ValidateCrateName(name) {
		return model.Playlist{}, &errs.PlaylistInvalidName{Name: name}
	}
	siblings, err := r.Children(ctx, parentID)
	if err != nil {
		return model.Playlist{}, l.Err("failed to list siblings", err)
	}
	for _, s := range siblings {
		if s.Name == name {
			return model.Playlist{}, &errs.PlaylistAlreadyExists{Name: name}
		}
	}

	scope, err := r.handle.BeginTransaction()
	if err != nil {
		return model.Playlist{}, l.Err("failed to begin savepoint", err)
	}
	committed := false
	defer func() {
		if !committed {
			scope.Rollback()
		}
	}()

	db := r.handle.DB()
	var parentValue any
	if parentID != nil {
		parentValue = *parentID
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO Playlist (title, parentListId, isPersisted, nextListId, lastEditTime) VALUES (?, ?, 1, ?, '')`,
		name, parentValue, model.NoNextEntityID)
	if err != nil {
		return model.Playlist{}, l.Err("failed to insert playlist row", err, "name", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Playlist{}, l.Err("failed to read new playlist id", err)
	}

	if len(siblings) > 0 {
		prev := siblings[len(siblings)-1]
		if _, err := db.ExecContext(ctx, `UPDATE Playlist SET nextListId = ? WHERE id = ?`, id, prev.ID); err != nil {
			return model.Playlist{}, l.Err("failed to link sibling chain", err, "id", id)
		}
	}

	if err := scope.Commit(); err != nil {
		return model.Playlist{}, l.Err("failed to commit savepoint", err)
	}
	committed = true

	return model.Playlist{ID: id, Name: name, ParentID: parentID}, nil
}

// Rename updates a playlist's name.
func (r *PlaylistRepository) Rename(ctx context.Context, id int64, newName string) error {
	if !model.ValidateCrateName(newName) {
		return &errs.PlaylistInvalidName{Name: newName}
	}
	_, err := r.handle.DB().ExecContext(ctx, `UPDATE Playlist SET title = ? WHERE id = ?`, newName, id)
	return err
}

// Remove deletes playlist id, its membership rows, and detaches any
// children by promoting them to root.
func (r *PlaylistRepository) Remove(ctx context.Context, id int64) error {
	l := r.log.Function("Remove")
	db := r.handle.DB()

	if _, err := db.ExecContext(ctx, `UPDATE Playlist SET parentListId = NULL WHERE parentListId = ?`, id); err != nil {
		return l.Err("failed to detach children", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM PlaylistEntity WHERE listId = ?`, id); err != nil {
		return l.Err("failed to remove membership rows", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM Playlist WHERE id = ?`, id); err != nil {
		return l.Err("failed to remove playlist row", err, "id", id)
	}
	return nil
}

// AddBack appends trackID to the tail of playlistID's membership list.
func (r *PlaylistRepository) AddBack(ctx context.Context, playlistID, trackID int64) error {
	l := r.log.Function("AddBack")
	db := r.handle.DB()

	tailID, err := r.tailEntryID(ctx, playlistID)
	if err != nil {
		return l.Err("failed to find tail entry", err, "playlistID", playlistID)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO PlaylistEntity (listId, trackId, databaseUuid, nextEntityId, membershipReference) VALUES (?, ?, ?, ?, 0)`,
		playlistID, trackID, r.handle.UUID.String(), model.NoNextEntityID)
	if err != nil {
		return l.Err("failed to insert membership row", err, "playlistID", playlistID, "trackID", trackID)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return l.Err("failed to read new entity id", err)
	}

	if tailID != nil {
		if _, err := db.ExecContext(ctx, `UPDATE PlaylistEntity SET nextEntityId = ? WHERE id = ?`, newID, *tailID); err != nil {
			return l.Err("failed to link tail entry", err, "playlistID", playlistID)
		}
	}
	return nil
}

// AddAfter splices trackID into playlistID's membership list immediately
// after the entry currently holding afterTrackID, by reading the
// predecessor's next_entity_id and pointing the new entry at it.
func (r *PlaylistRepository) AddAfter(ctx context.Context, playlistID, afterTrackID, trackID int64) error {
	l := r.log.Function("AddAfter")
	db := r.handle.DB()

	var predecessorID, nextEntityID int64
	err := db.QueryRowContext(ctx, `SELECT id, nextEntityId FROM PlaylistEntity WHERE listId = ? AND trackId = ?`, playlistID, afterTrackID).
		Scan(&predecessorID, &nextEntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &errs.PlaylistInvalidParent{Reason: fmt.Sprintf("track %d is not a member of playlist %d", afterTrackID, playlistID)}
		}
		return l.Err("failed to find predecessor entry", err, "playlistID", playlistID)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO PlaylistEntity (listId, trackId, databaseUuid, nextEntityId, membershipReference) VALUES (?, ?, ?, ?, 0)`,
		playlistID, trackID, r.handle.UUID.String(), nextEntityID)
	if err != nil {
		return l.Err("failed to insert membership row", err, "playlistID", playlistID, "trackID", trackID)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return l.Err("failed to read new entity id", err)
	}

	if _, err := db.ExecContext(ctx, `UPDATE PlaylistEntity SET nextEntityId = ? WHERE id = ?`, newID, predecessorID); err != nil {
		return l.Err("failed to relink predecessor", err, "playlistID", playlistID)
	}
	return nil
}

// RemoveTrack removes trackID's membership row from playlistID, relinking
// its predecessor (if any) to its successor.
func (r *PlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID int64) error {
	l := r.log.Function("RemoveTrack")
	db := r.handle.DB()

	var id, nextEntityID int64
	err := db.QueryRowContext(ctx, `SELECT id, nextEntityId FROM PlaylistEntity WHERE listId = ? AND trackId = ?`, playlistID, trackID).
		Scan(&id, &nextEntityID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return l.Err("failed to find membership row", err, "playlistID", playlistID, "trackID", trackID)
	}

	if _, err := db.ExecContext(ctx, `UPDATE PlaylistEntity SET nextEntityId = ? WHERE listId = ? AND nextEntityId = ?`, nextEntityID, playlistID, id); err != nil {
		return l.Err("failed to relink predecessor", err, "playlistID", playlistID)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM PlaylistEntity WHERE id = ?`, id); err != nil {
		return l.Err("failed to delete membership row", err, "playlistID", playlistID)
	}
	return nil
}

// Tracks lists trackID values in membership order by following the
// next_entity_id chain from the head (the entry no other entry points to).
func (r *PlaylistRepository) Tracks(ctx context.Context, playlistID int64) ([]int64, error) {
	rows, err := r.handle.DB().QueryContext(ctx, `SELECT id, trackId, nextEntityId FROM PlaylistEntity WHERE listId = ?`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type entry struct{ trackID, next int64 }
	entries := map[int64]entry{}
	referenced := map[int64]bool{}
	for rows.Next() {
		var id, trackID, next int64
		if err := rows.Scan(&id, &trackID, &next); err != nil {
			return nil, err
		}
		entries[id] = entry{trackID: trackID, next: next}
		if next != model.NoNextEntityID {
			referenced[next] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var head int64 = -1
	for id := range entries {
		if !referenced[id] {
			head = id
			break
		}
	}

	var out []int64
	for cur := head; cur != -1 && cur != model.NoNextEntityID; {
		e, ok := entries[cur]
		if !ok {
			break
		}
		out = append(out, e.trackID)
		cur = e.next
	}
	return out, nil
}

func (r *PlaylistRepository) tailEntryID(ctx context.Context, playlistID int64) (*int64, error) {
	var id int64
	err := r.handle.DB().QueryRowContext(ctx,
		`SELECT id FROM PlaylistEntity WHERE listId = ? AND nextEntityId = ?`, playlistID, model.NoNextEntityID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
