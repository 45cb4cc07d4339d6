package schema

import (
	"database/sql"

	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/model"
)

// Detect reads the Information row on db's "m" database (the one every
// layout keeps the declared version in) and resolves it to an enumerated
// Version, disambiguating the 1.18.0 dual variant by probing for the
// Playlist.isExplicitlyExported column that only the ordinary dialect
// carries.
func Detect(db *sql.DB) (Version, error) {
	l := log.Function("Detect")

	var triple model.SchemaVersionTriple
	row := db.QueryRow(`SELECT schemaVersionMajor, schemaVersionMinor, schemaVersionPatch FROM Information`)
	if err := row.Scan(&triple.Major, &triple.Minor, &triple.Patch); err != nil {
		return Version{}, l.Err("failed to read Information row", err)
	}

	v, ok := Lookup(triple)
	if !ok {
		return Version{}, &errs.UnsupportedVersion{Major: triple.Major, Minor: triple.Minor, Patch: triple.Patch}
	}

	if v.Equal(V1_18_0) {
		hasColumn, err := HasColumn(db, "Playlist", "isExplicitlyExported")
		if err != nil {
			return Version{}, l.Err("failed to probe 1.18.0 dual-variant column", err)
		}
		if !hasColumn {
			return V1_18_0fw, nil
		}
	}

	return v, nil
}
