package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deckwave/enginelibrary/internal/config"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/txn"
)

// Open opens an existing Engine Library database in directory, detecting
// its on-disk layout (v1's separate m.db/p.db or v2/v3's Database2/m.db)
// and its declared schema version, and verifying that version's DDL is
// actually present before handing back a Handle.
func Open(ctx context.Context, directory string, opts config.Options) (*Handle, error) {
	l := log.Function("Open")
	resolved := config.Resolve(opts)

	layout, err := detectLayout(directory)
	if err != nil {
		return nil, err
	}

	db, err := openFile(layout.music, resolved)
	if err != nil {
		return nil, l.Err("failed to open music database", err, "directory", directory)
	}

	v, err := schema.Detect(db)
	if err != nil {
		db.Close()
		return nil, l.Err("failed to detect schema version", err, "directory", directory)
	}

	if err := schema.Verify(db, v, "m"); err != nil {
		db.Close()
		return nil, l.Err("music schema verification failed", err, "directory", directory, "version", v.String())
	}

	info, err := schema.ReadInformation(db)
	if err != nil {
		db.Close()
		return nil, l.Err("failed to read Information row", err, "directory", directory)
	}

	root, err := txn.Root(ctx, db)
	if err != nil {
		db.Close()
		return nil, l.Err("failed to open root transaction scope", err, "directory", directory)
	}

	h := &Handle{
		Directory: directory,
		Version:   v,
		UUID:      info.UUID,
		LogFormat: resolved.LogFormat,
		db:        db,
		root:      root,
	}

	if layout.family == schema.FamilyV1 {
		perfDB, err := openFile(layout.perf, resolved)
		if err != nil {
			db.Close()
			return nil, l.Err("failed to open performance database", err, "directory", directory)
		}
		if err := schema.Verify(perfDB, v, "p"); err != nil {
			db.Close()
			perfDB.Close()
			return nil, l.Err("performance schema verification failed", err, "directory", directory, "version", v.String())
		}
		perfRoot, err := txn.Root(ctx, perfDB)
		if err != nil {
			db.Close()
			perfDB.Close()
			return nil, l.Err("failed to open performance root transaction scope", err, "directory", directory)
		}
		h.perfDB = perfDB
		h.perfRoot = perfRoot
	}

	l.Info("opened library", "directory", directory, "version", v.String())
	return h, nil
}

// openFile opens a *sql.DB constrained to a single physical connection,
// required for SAVEPOINT locality (see internal/txn).
func openFile(path string, opts config.Options) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", path, opts.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}
