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

// CrateRepository implements the crate tree (spec.md §4.6): a Crate row, a
// CrateParentList row mapping each crate to its parent (self-parent for a
// root crate), a CrateHierarchy closure table of strict descendants, and
// CrateTrackList membership.
type CrateRepository struct {
	handle *storage.Handle
	log    logger.Logger
}

// NewCrateRepository constructs a CrateRepository bound to handle.
func NewCrateRepository(handle *storage.Handle) *CrateRepository {
	return &CrateRepository{handle: handle, log: handle.Log("crateRepository")}
}

// ByID reads one crate by id.
func (r *CrateRepository) ByID(ctx context.Context, id int64) (model.Crate, error) {
	row := r.handle.DB().QueryRowContext(ctx, `SELECT id, title FROM Crate WHERE id = ?`, id)
	c, err := scanCrate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Crate{}, &errs.CrateDeleted{ID: id}
		}
		return model.Crate{}, err
	}
	parentID, err := r.parentOf(ctx, id)
	if err != nil {
		return model.Crate{}, err
	}
	c.ParentID = parentID
	return c, nil
}

// Roots lists every crate with no parent (self-parented in CrateParentList).
func (r *CrateRepository) Roots(ctx context.Context) ([]model.Crate, error) {
	rows, err := r.handle.DB().QueryContext(ctx, `
		SELECT c.id, c.title FROM Crate c
		JOIN CrateParentList p ON p.crateOriginId = c.id
		WHERE p.crateParentId = c.id
		ORDER BY c.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Crate
	for rows.Next() {
		c, err := scanCrateRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RootByName looks up a root crate by exact name.
func (r *CrateRepository) RootByName(ctx context.Context, name string) (model.Crate, error) {
	roots, err := r.Roots(ctx)
	if err != nil {
		return model.Crate{}, err
	}
	for _, c := range roots {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Crate{}, &errs.DatabaseInconsistency{Reason: fmt.Sprintf("no root crate named %q", name)}
}

// ByName looks up a crate by name under a given parent (nil for root).
func (r *CrateRepository) ByName(ctx context.Context, parentID *int64, name string) (model.Crate, error) {
	children, err := r.Children(ctx, parentID)
	if err != nil {
		return model.Crate{}, err
	}
	for _, c := range children {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Crate{}, &errs.DatabaseInconsistency{Reason: fmt.Sprintf("no crate named %q under given parent", name)}
}

// Children lists the direct children of parentID (nil lists roots).
func (r *CrateRepository) Children(ctx context.Context, parentID *int64) ([]model.Crate, error) {
	if parentID == nil {
		return r.Roots(ctx)
	}
	rows, err := r.handle.DB().QueryContext(ctx, `
		SELECT c.id, c.title FROM Crate c
		JOIN CrateParentList p ON p.crateOriginId = c.id
		WHERE p.crateParentId = ? AND p.crateOriginId != p.crateParentId
		ORDER BY c.title`, *parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Crate
	for rows.Next() {
		c, err := scanCrateRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateRoot creates a new top-level crate named name.
func (r *CrateRepository) CreateRoot(ctx context.Context, name string) (model.Crate, error) {
	return r.create(ctx, nil, name)
}

// CreateSub creates a new crate named name under parentID, per spec.md
// §4.6's create-sub-crate sequence: begin savepoint, look up the parent's
// path, insert the row with path = parent_path + name + ";", insert the
// parent-list row pointing at the parent plus one closure row per ancestor,
// commit.
func (r *CrateRepository) CreateSub(ctx context.Context, parentID int64, name string) (model.Crate, error) {
	return r.create(ctx, &parentID, name)
}

func (r *CrateRepository) create(ctx context.Context, parentID *int64, name string) (model.Crate, error) {
	l := r.log.Function("create")

	if !model.ValidateCrateName(name) {
		return model.Crate{}, &errs.CrateInvalidName{Name: name}
	}
	if existing, err := r.ByName(ctx, parentID, name); err == nil {
		return model.Crate{}, &errs.CrateAlreadyExists{Name: existing.Name}
	}

	scope, err := r.handle.BeginTransaction()
	if err != nil {
		return model.Crate{}, l.Err("failed to begin savepoint", err)
	}
	committed := false
	defer func() {
		if !committed {
			scope.Rollback()
		}
	}()

	db := r.handle.DB()

	ancestorPath := ""
	var ancestors []int64
	if parentID != nil {
		ancestorPath, err = r.pathOf(ctx, *parentID)
		if err != nil {
			return model.Crate{}, l.Err("failed to look up parent path", err, "parentID", *parentID)
		}
		ancestors, err = r.ancestorsOf(ctx, *parentID)
		if err != nil {
			return model.Crate{}, l.Err("failed to look up parent ancestors", err, "parentID", *parentID)
		}
		ancestors = append(ancestors, *parentID)
	}
	newPath := ancestorPath + name + model.PathSeparator

	res, err := db.ExecContext(ctx, `INSERT INTO Crate (title, path) VALUES (?, ?)`, name, newPath)
	if err != nil {
		return model.Crate{}, l.Err("failed to insert crate row", err, "name", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Crate{}, l.Err("failed to read new crate id", err)
	}

	selfParent := id
	if parentID != nil {
		selfParent = *parentID
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO CrateParentList (crateOriginId, crateParentId) VALUES (?, ?)`, id, selfParent); err != nil {
		return model.Crate{}, l.Err("failed to insert parent-list row", err, "id", id)
	}

	for _, ancestor := range ancestors {
		if _, err := db.ExecContext(ctx, `INSERT INTO CrateHierarchy (crateId, crateIdChild) VALUES (?, ?)`, ancestor, id); err != nil {
			return model.Crate{}, l.Err("failed to insert closure row", err, "id", id, "ancestor", ancestor)
		}
	}

	if err := scope.Commit(); err != nil {
		return model.Crate{}, l.Err("failed to commit savepoint", err)
	}
	committed = true

	return model.Crate{ID: id, Name: name, ParentID: parentID}, nil
}

// Rename updates name and recomputes this crate's path and every
// descendant's path.
func (r *CrateRepository) Rename(ctx context.Context, id int64, newName string) error {
	l := r.log.Function("Rename")

	if !model.ValidateCrateName(newName) {
		return &errs.CrateInvalidName{Name: newName}
	}

	scope, err := r.handle.BeginTransaction()
	if err != nil {
		return l.Err("failed to begin savepoint", err)
	}
	committed := false
	defer func() {
		if !committed {
			scope.Rollback()
		}
	}()

	db := r.handle.DB()

	parentID, err := r.parentOf(ctx, id)
	if err != nil {
		return l.Err("failed to look up parent", err, "id", id)
	}
	parentPath := ""
	if parentID != nil {
		parentPath, err = r.pathOf(ctx, *parentID)
		if err != nil {
			return l.Err("failed to look up parent path", err, "id", id)
		}
	}
	newPath := parentPath + newName + model.PathSeparator

	if _, err := db.ExecContext(ctx, `UPDATE Crate SET title = ?, path = ? WHERE id = ?`, newName, newPath, id); err != nil {
		return l.Err("failed to update crate row", err, "id", id)
	}

	if err := r.recomputeDescendantPaths(ctx, db, id, newPath); err != nil {
		return l.Err("failed to recompute descendant paths", err, "id", id)
	}

	if err := scope.Commit(); err != nil {
		return l.Err("failed to commit savepoint", err)
	}
	committed = true
	return nil
}

func (r *CrateRepository) recomputeDescendantPaths(ctx context.Context, db *sql.DB, id int64, basePath string) error {
	children, err := r.Children(ctx, &id)
	if err != nil {
		return err
	}
	for _, child := range children {
		childPath := basePath + child.Name + model.PathSeparator
		if _, err := db.ExecContext(ctx, `UPDATE Crate SET path = ? WHERE id = ?`, childPath, child.ID); err != nil {
			return err
		}
		if err := r.recomputeDescendantPaths(ctx, db, child.ID, childPath); err != nil {
			return err
		}
	}
	return nil
}

// Reparent moves id to be a child of newParentID (nil for root), rejecting
// self-parenting or parenting onto a descendant, per spec.md §4.6.
func (r *CrateRepository) Reparent(ctx context.Context, id int64, newParentID *int64) error {
	l := r.log.Function("Reparent")

	if newParentID != nil && *newParentID == id {
		return &errs.CrateInvalidParent{Reason: "a crate cannot be parented onto itself"}
	}
	if newParentID != nil {
		isDescendant, err := r.isDescendant(ctx, id, *newParentID)
		if err != nil {
			return l.Err("failed to check descendant", err, "id", id)
		}
		if isDescendant {
			return &errs.CrateInvalidParent{Reason: "a crate cannot be parented onto one of its own descendants"}
		}
	}

	scope, err := r.handle.BeginTransaction()
	if err != nil {
		return l.Err("failed to begin savepoint", err)
	}
	committed := false
	defer func() {
		if !committed {
			scope.Rollback()
		}
	}()

	db := r.handle.DB()

	if _, err := db.ExecContext(ctx, `DELETE FROM CrateParentList WHERE crateOriginId = ?`, id); err != nil {
		return l.Err("failed to delete parent-list row", err, "id", id)
	}
	newParent := id
	if newParentID != nil {
		newParent = *newParentID
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO CrateParentList (crateOriginId, crateParentId) VALUES (?, ?)`, id, newParent); err != nil {
		return l.Err("failed to insert parent-list row", err, "id", id)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM CrateHierarchy WHERE crateIdChild = ?`, id); err != nil {
		return l.Err("failed to delete closure rows", err, "id", id)
	}
	if newParentID != nil {
		ancestors, err := r.ancestorsOf(ctx, *newParentID)
		if err != nil {
			return l.Err("failed to look up new ancestors", err, "id", id)
		}
		ancestors = append(ancestors, *newParentID)
		for _, ancestor := range ancestors {
			if _, err := db.ExecContext(ctx, `INSERT INTO CrateHierarchy (crateId, crateIdChild) VALUES (?, ?)`, ancestor, id); err != nil {
				return l.Err("failed to insert closure row", err, "id", id, "ancestor", ancestor)
			}
		}
	}

	parentPath := ""
	if newParentID != nil {
		parentPath, err = r.pathOf(ctx, *newParentID)
		if err != nil {
			return l.Err("failed to look up new parent path", err, "id", id)
		}
	}
	c, err := r.ByID(ctx, id)
	if err != nil {
		return l.Err("failed to read crate name", err, "id", id)
	}
	newPath := parentPath + c.Name + model.PathSeparator
	if _, err := db.ExecContext(ctx, `UPDATE Crate SET path = ? WHERE id = ?`, newPath, id); err != nil {
		return l.Err("failed to update crate path", err, "id", id)
	}
	if err := r.recomputeDescendantPaths(ctx, db, id, newPath); err != nil {
		return l.Err("failed to recompute descendant paths", err, "id", id)
	}

	if err := scope.Commit(); err != nil {
		return l.Err("failed to commit savepoint", err)
	}
	committed = true
	return nil
}

// Remove deletes crate id, its parent-list and closure rows, and its track
// membership rows. It does not recursively remove descendants; callers
// reparent or remove children first.
func (r *CrateRepository) Remove(ctx context.Context, id int64) error {
	l := r.log.Function("Remove")
	db := r.handle.DB()

	if _, err := db.ExecContext(ctx, `DELETE FROM CrateTrackList WHERE crateId = ?`, id); err != nil {
		return l.Err("failed to remove track membership", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM CrateParentList WHERE crateOriginId = ? OR crateParentId = ?`, id, id); err != nil {
		return l.Err("failed to remove parent-list rows", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM CrateHierarchy WHERE crateId = ? OR crateIdChild = ?`, id, id); err != nil {
		return l.Err("failed to remove closure rows", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM Crate WHERE id = ?`, id); err != nil {
		return l.Err("failed to remove crate row", err, "id", id)
	}
	return nil
}

func (r *CrateRepository) parentOf(ctx context.Context, id int64) (*int64, error) {
	var parent int64
	err := r.handle.DB().QueryRowContext(ctx, `SELECT crateParentId FROM CrateParentList WHERE crateOriginId = ?`, id).Scan(&parent)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errs.DatabaseInconsistency{Reason: "crate has no CrateParentList row", ID: &id}
		}
		return nil, err
	}
	if parent == id {
		return nil, nil
	}
	return &parent, nil
}

func (r *CrateRepository) ancestorsOf(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.handle.DB().QueryContext(ctx, `SELECT crateId FROM CrateHierarchy WHERE crateIdChild = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var a int64
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *CrateRepository) isDescendant(ctx context.Context, ancestor, candidate int64) (bool, error) {
	var count int
	err := r.handle.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM CrateHierarchy WHERE crateId = ? AND crateIdChild = ?`, ancestor, candidate).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CrateRepository) pathOf(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.handle.DB().QueryRowContext(ctx, `SELECT path FROM Crate WHERE id = ?`, id).Scan(&path)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", &errs.CrateDeleted{ID: id}
		}
		return "", err
	}
	return path, nil
}

func scanCrate(row *sql.Row) (model.Crate, error) {
	var c model.Crate
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		return model.Crate{}, err
	}
	return c, nil
}

func scanCrateRows(rows *sql.Rows) (model.Crate, error) {
	var c model.Crate
	if err := rows.Scan(&c.ID, &c.Name); err != nil {
		return model.Crate{}, err
	}
	return c, nil
}
