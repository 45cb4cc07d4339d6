package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/deckwave/enginelibrary/internal/config"
	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/txn"
)

// Create creates a new Engine Library database of version v under
// directory, failing with *errs.DatabaseAlreadyExists if a library file is
// already present there.
func Create(ctx context.Context, directory string, v schema.Version, opts config.Options) (*Handle, error) {
	l := log.Function("Create")
	resolved := config.Resolve(opts)
	if v == (schema.Version{}) {
		v = resolved.DefaultCreateVersion
	}

	if _, err := detectLayout(directory); err == nil {
		return nil, &errs.DatabaseAlreadyExists{Directory: directory}
	}

	layout := layoutFor(directory, v.Family)
	if err := os.MkdirAll(filepath.Dir(layout.music), 0o755); err != nil {
		return nil, l.Err("failed to create library directory", err, "directory", directory)
	}

	db, err := openFile(layout.music, resolved)
	if err != nil {
		return nil, l.Err("failed to open music database", err, "directory", directory)
	}

	id := uuid.New()
	h, err := createFrom(ctx, directory, v, id, db, layout, resolved)
	if err != nil {
		db.Close()
		return nil, err
	}

	l.Info("created library", "directory", directory, "version", v.String())
	return h, nil
}

// CreateTemporary creates an in-memory database of version v, for callers
// that want a disposable scratch library (tests, imports staged before a
// real write) with the exact same schema a real Create would produce.
func CreateTemporary(ctx context.Context, v schema.Version, opts config.Options) (*Handle, error) {
	l := log.Function("CreateTemporary")
	resolved := config.Resolve(opts)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, l.Err("failed to open temporary music database", err)
	}
	db.SetMaxOpenConns(1)

	id := uuid.New()
	h, err := createFrom(ctx, "", v, id, db, paths{family: v.Family}, resolved)
	if err != nil {
		db.Close()
		return nil, err
	}

	l.Info("created temporary library", "version", v.String())
	return h, nil
}

// createFrom applies v's DDL and seed row to db (already open and pointed
// at the music file, real or in-memory), opening and seeding a second
// performance database for v1-family versions.
func createFrom(ctx context.Context, directory string, v schema.Version, id uuid.UUID, db *sql.DB, layout paths, opts config.Options) (*Handle, error) {
	l := log.Function("createFrom")

	if err := schema.Create(db, v, "m"); err != nil {
		return nil, l.Err("failed to create music schema", err, "version", v.String())
	}
	if _, err := schema.Seed(db, v, id); err != nil {
		return nil, l.Err("failed to seed music Information row", err, "version", v.String())
	}

	root, err := txn.Root(ctx, db)
	if err != nil {
		return nil, l.Err("failed to open root transaction scope", err)
	}

	h := &Handle{
		Directory: directory,
		Version:   v,
		UUID:      id,
		LogFormat: opts.LogFormat,
		db:        db,
		root:      root,
	}

	if v.Family != schema.FamilyV1 {
		return h, nil
	}

	var perfDB *sql.DB
	if directory == "" {
		perfDB, err = sql.Open("sqlite3", ":memory:")
		if err == nil {
			perfDB.SetMaxOpenConns(1)
		}
	} else {
		perfDB, err = openFile(layout.perf, opts)
	}
	if err != nil {
		return nil, l.Err("failed to open performance database", err)
	}

	if err := schema.Create(perfDB, v, "p"); err != nil {
		perfDB.Close()
		return nil, l.Err("failed to create performance schema", err, "version", v.String())
	}
	if _, err := schema.Seed(perfDB, v, id); err != nil {
		perfDB.Close()
		return nil, l.Err("failed to seed performance Information row", err, "version", v.String())
	}

	perfRoot, err := txn.Root(ctx, perfDB)
	if err != nil {
		perfDB.Close()
		return nil, l.Err("failed to open performance root transaction scope", err)
	}

	h.perfDB = perfDB
	h.perfRoot = perfRoot
	return h, nil
}
