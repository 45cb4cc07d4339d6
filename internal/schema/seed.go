package schema

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/deckwave/enginelibrary/model"
)

// Seed inserts the singleton Information row into the freshly created
// database db. v1-family libraries carry a mirrored Information row
// in both m.db and p.db; callers seed each attached database separately.
func Seed(db *sql.DB, v Version, id uuid.UUID) (model.Information, error) {
	l := log.Function("Seed")

	info := model.Information{
		UUID:                   id,
		Version:                v.Triple,
		CurrentPlayedIndicator: CurrentPlayedIndicator,
		ImportReadCounter:      0,
	}

	_, err := db.Exec(
		`INSERT INTO Information (id, uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch, currentPlayedIndiciator, lastRekordBoxLibraryImportReadCounter)
		 VALUES (1, ?, ?, ?, ?, ?, ?)`,
		info.UUID.String(), info.Version.Major, info.Version.Minor, info.Version.Patch,
		info.CurrentPlayedIndicator, info.ImportReadCounter,
	)
	if err != nil {
		return model.Information{}, l.Err("failed to seed Information row", err, "version", v.String())
	}

	return info, nil
}

// ReadInformation reads the singleton Information row back.
func ReadInformation(db *sql.DB) (model.Information, error) {
	l := log.Function("ReadInformation")

	var (
		info    model.Information
		idStr   string
		major   int
		minor   int
		patch   int
	)
	row := db.QueryRow(`SELECT uuid, schemaVersionMajor, schemaVersionMinor, schemaVersionPatch, currentPlayedIndiciator, lastRekordBoxLibraryImportReadCounter FROM Information`)
	if err := row.Scan(&idStr, &major, &minor, &patch, &info.CurrentPlayedIndicator, &info.ImportReadCounter); err != nil {
		return model.Information{}, l.Err("failed to read Information row", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return model.Information{}, l.Err("Information.uuid is not a valid UUID", err, "uuid", idStr)
	}
	info.UUID = id
	info.Version = model.SchemaVersionTriple{Major: major, Minor: minor, Patch: patch}

	return info, nil
}
