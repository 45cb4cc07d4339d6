package storage

import (
	"os"
	"path/filepath"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
)

// v1MusicFile and v1PerfFile are the two attached-database files a v1-family
// library keeps directly inside its directory.
const (
	v1MusicFile = "m.db"
	v1PerfFile  = "p.db"
)

// v2Subdir and v2MusicFile locate the single database file a v2/v3-family
// library keeps.
const (
	v2Subdir    = "Database2"
	v2MusicFile = "m.db"
)

// paths describes where a library's attached database file(s) live on disk.
type paths struct {
	family schema.Family
	music  string
	perf   string // empty for v2/v3
}

func v1Paths(dir string) paths {
	return paths{family: schema.FamilyV1, music: filepath.Join(dir, v1MusicFile), perf: filepath.Join(dir, v1PerfFile)}
}

func v2Paths(dir string) paths {
	return paths{family: schema.FamilyV2, music: filepath.Join(dir, v2Subdir, v2MusicFile)}
}

// detectLayout inspects dir for an existing library and reports which
// layout it uses. It returns *errs.DatabaseNotFound if neither layout's
// files are present.
func detectLayout(dir string) (paths, error) {
	if fileExists(filepath.Join(dir, v1MusicFile)) {
		return v1Paths(dir), nil
	}
	if fileExists(filepath.Join(dir, v2Subdir, v2MusicFile)) {
		return v2Paths(dir), nil
	}
	return paths{}, &errs.DatabaseNotFound{Directory: dir}
}

// layoutFor returns the paths a version of the given family would occupy
// under dir, without checking whether any file already exists there.
func layoutFor(dir string, family schema.Family) paths {
	if family == schema.FamilyV1 {
		return v1Paths(dir)
	}
	return v2Paths(dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
