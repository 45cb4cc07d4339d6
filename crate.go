package enginelibrary

import (
	"context"

	"github.com/deckwave/enginelibrary/model"
)

// Crate is a lightweight handle to one crate row (spec.md §9).
type Crate struct {
	lib *Library
	ID  int64
}

// Equal reports whether c and other name the same crate in the same
// library.
func (c Crate) Equal(other Crate) bool {
	return c.ID == other.ID && c.lib.UUID() == other.lib.UUID()
}

// Name returns c's current name.
func (c Crate) Name(ctx context.Context) (string, error) {
	crate, err := c.lib.crates.ByID(ctx, c.ID)
	if err != nil {
		return "", err
	}
	return crate.Name, nil
}

// Parent returns c's parent crate, ok=false for a root crate.
func (c Crate) Parent(ctx context.Context) (parent Crate, ok bool, err error) {
	crate, err := c.lib.crates.ByID(ctx, c.ID)
	if err != nil {
		return Crate{}, false, err
	}
	if crate.ParentID == nil {
		return Crate{}, false, nil
	}
	return Crate{lib: c.lib, ID: *crate.ParentID}, true, nil
}

// Children lists c's direct sub-crates.
func (c Crate) Children(ctx context.Context) ([]Crate, error) {
	crates, err := c.lib.crates.Children(ctx, &c.ID)
	if err != nil {
		return nil, err
	}
	return wrapCrates(c.lib, crates), nil
}

// Rename renames c and recomputes its own and every descendant's path.
func (c Crate) Rename(ctx context.Context, newName string) error {
	return c.lib.crates.Rename(ctx, c.ID, newName)
}

// Reparent moves c to be a child of newParent (pass a zero Crate{} for
// root).
func (c Crate) Reparent(ctx context.Context, newParent Crate) error {
	var parentID *int64
	if newParent.lib != nil {
		parentID = &newParent.ID
	}
	return c.lib.crates.Reparent(ctx, c.ID, parentID)
}

// Remove deletes c.
func (c Crate) Remove(ctx context.Context) error {
	return c.lib.crates.Remove(ctx, c.ID)
}

// CreateRootCrate creates a new top-level crate.
func (l *Library) CreateRootCrate(ctx context.Context, name string) (Crate, error) {
	crate, err := l.crates.CreateRoot(ctx, name)
	if err != nil {
		return Crate{}, err
	}
	return Crate{lib: l, ID: crate.ID}, nil
}

// CreateSubCrate creates a new crate under parent.
func (l *Library) CreateSubCrate(ctx context.Context, parent Crate, name string) (Crate, error) {
	crate, err := l.crates.CreateSub(ctx, parent.ID, name)
	if err != nil {
		return Crate{}, err
	}
	return Crate{lib: l, ID: crate.ID}, nil
}

// CrateByID looks up a crate handle by id.
func (l *Library) CrateByID(ctx context.Context, id int64) (Crate, error) {
	if _, err := l.crates.ByID(ctx, id); err != nil {
		return Crate{}, err
	}
	return Crate{lib: l, ID: id}, nil
}

// RootCrates lists every top-level crate.
func (l *Library) RootCrates(ctx context.Context) ([]Crate, error) {
	crates, err := l.crates.Roots(ctx)
	if err != nil {
		return nil, err
	}
	return wrapCrates(l, crates), nil
}

// RootCrateByName looks up a root crate by exact name.
func (l *Library) RootCrateByName(ctx context.Context, name string) (Crate, error) {
	crate, err := l.crates.RootByName(ctx, name)
	if err != nil {
		return Crate{}, err
	}
	return Crate{lib: l, ID: crate.ID}, nil
}

// CratesByName looks up a crate by name under parent (pass a zero Crate{}
// for root).
func (l *Library) CratesByName(ctx context.Context, parent Crate, name string) (Crate, error) {
	var parentID *int64
	if parent.lib != nil {
		parentID = &parent.ID
	}
	crate, err := l.crates.ByName(ctx, parentID, name)
	if err != nil {
		return Crate{}, err
	}
	return Crate{lib: l, ID: crate.ID}, nil
}

func wrapCrates(lib *Library, in []model.Crate) []Crate {
	out := make([]Crate, len(in))
	for i, c := range in {
		out[i] = Crate{lib: lib, ID: c.ID}
	}
	return out
}
