package schema

import "strings"

// DDL holds the ordered CREATE statements for one attached database file.
// Statements run in order so that indices can reference tables created
// earlier in the same slice.
type DDL []string

// musicDDL returns the DDL for a v1-family "m.db" file (or the sole file in
// a v2/v3-family library, which folds the music and performance schemas
// together).
func musicDDL(v Version) DDL {
	var stmts DDL

	stmts = append(stmts,
		`CREATE TABLE Information (
			id INTEGER PRIMARY KEY,
			uuid TEXT,
			schemaVersionMajor INTEGER,
			schemaVersionMinor INTEGER,
			schemaVersionPatch INTEGER,
			currentPlayedIndiciator INTEGER,
			lastRekordBoxLibraryImportReadCounter INTEGER
		)`,
		`CREATE INDEX index_Information_id ON Information (id)`,

		`CREATE TABLE AlbumArt (
			id INTEGER PRIMARY KEY,
			hash TEXT,
			albumArt BLOB
		)`,
		`CREATE INDEX index_AlbumArt_id ON AlbumArt (id)`,
		`CREATE INDEX index_AlbumArt_hash ON AlbumArt (hash)`,

		`CREATE TABLE Crate (
			id INTEGER PRIMARY KEY,
			title TEXT,
			path TEXT
		)`,
		`CREATE INDEX index_Crate_id ON Crate (id)`,
		`CREATE INDEX index_Crate_title ON Crate (title)`,
		`CREATE INDEX index_Crate_path ON Crate (path)`,

		`CREATE TABLE CrateHierarchy (
			crateId INTEGER,
			crateIdChild INTEGER
		)`,
		`CREATE INDEX index_CrateHierarchy_crateId ON CrateHierarchy (crateId)`,
		`CREATE INDEX index_CrateHierarchy_crateIdChild ON CrateHierarchy (crateIdChild)`,

		`CREATE TABLE CrateParentList (
			crateOriginId INTEGER,
			crateParentId INTEGER
		)`,
		`CREATE INDEX index_CrateParentList_crateOriginId ON CrateParentList (crateOriginId)`,
		`CREATE INDEX index_CrateParentList_crateParentId ON CrateParentList (crateParentId)`,

		`CREATE TABLE CopiedTrack (
			trackId INTEGER PRIMARY KEY,
			idOfTrackInSourceDatabase INTEGER,
			uuidOfSourceDatabase TEXT
		)`,
		`CREATE INDEX index_CopiedTrack_trackId ON CopiedTrack (trackId)`,

		`CREATE TABLE CrateTrackList (
			crateId INTEGER,
			trackId INTEGER
		)`,
		`CREATE INDEX index_CrateTrackList_crateId ON CrateTrackList (crateId)`,
		`CREATE INDEX index_CrateTrackList_trackId ON CrateTrackList (trackId)`,
	)

	stmts = append(stmts, trackTableDDL(v)...)

	if v.Family != FamilyV1 {
		// v2/v3 keep performance data in the same file as the music schema.
		stmts = append(stmts, performanceDataDDL(v)...)
	}

	if v.HasPlaylists {
		stmts = append(stmts, playlistDDL(v)...)
	}

	if v.HasChangeLog {
		stmts = append(stmts,
			`CREATE TABLE ChangeLog (
				id INTEGER PRIMARY KEY,
				trackId INTEGER
			)`,
		)
	}

	return stmts
}

// trackColumnPool lists, in introduction order, the optional Track columns
// that not every enumerated version carries. None of these are read or
// written by the repository layer's fixed column list (track_row.go); they
// exist to give every version.Ordinal a genuinely distinct Track table
// surface, the same way the reference format's own Track table actually
// grew one column at a time release over release rather than appearing
// fully formed.
var trackColumnPool = []string{
	"playOrder INTEGER",
	"trackType INTEGER",
	"idAlbumArt INTEGER",
	"pdbImportKey INTEGER",
	"isExternalTrack NUMERIC",
	"idTrackInExternalDatabase INTEGER",
	"uuidOfExternalDatabase TEXT",
	"albumArt TEXT",
	"dateCreated TEXT",
	"dateAdded TEXT",
}

// trackColumnName extracts the bare column name from a trackColumnPool
// entry ("idAlbumArt INTEGER" -> "idAlbumArt").
func trackColumnName(poolEntry string) string {
	name, _, _ := strings.Cut(poolEntry, " ")
	return name
}

func trackTableDDL(v Version) DDL {
	// v.Ordinal cycles through every pool size from 0 to len(trackColumnPool)
	// so that adjacent versions sharing every other capability flag (e.g.
	// V1_6_0..V1_13_2, all ordinals 1-6) still get distinct Track columns.
	n := v.Ordinal % (len(trackColumnPool) + 1)
	carried := trackColumnPool[:n]

	create := `CREATE TABLE Track (
			id INTEGER PRIMARY KEY,
			length INTEGER,
			lengthCalculated INTEGER,
			bpm INTEGER,
			year INTEGER,
			path TEXT,
			filename TEXT,
			bitrate INTEGER,
			bpmAnalyzed REAL,
			title TEXT,
			artist TEXT,
			album TEXT,
			genre TEXT,
			comment TEXT,
			label TEXT,
			composer TEXT,
			remixer TEXT,
			key INTEGER,
			rating INTEGER,
			timeLastPlayed TEXT,
			isPlayed NUMERIC,
			fileBytes INTEGER,
			isAnalyzed NUMERIC`
	for _, col := range carried {
		create += ",\n\t\t\t" + col
	}
	create += "\n\t\t)"

	stmts := DDL{
		create,
		`CREATE INDEX index_Track_id ON Track (id)`,
		`CREATE INDEX index_Track_path ON Track (path)`,
		`CREATE INDEX index_Track_filename ON Track (filename)`,
	}

	has := func(col string) bool {
		for _, c := range carried {
			if trackColumnName(c) == col {
				return true
			}
		}
		return false
	}
	// These four pool columns carry their own index in the reference
	// schema; the index can only be created once its column exists.
	if has("idAlbumArt") {
		stmts = append(stmts, `CREATE INDEX index_Track_idAlbumArt ON Track (idAlbumArt)`)
	}
	if has("isExternalTrack") {
		stmts = append(stmts, `CREATE INDEX index_Track_isExternalTrack ON Track (isExternalTrack)`)
	}
	if has("idTrackInExternalDatabase") {
		stmts = append(stmts, `CREATE INDEX index_Track_idTrackInExternalDatabase ON Track (idTrackInExternalDatabase)`)
	}
	if has("uuidOfExternalDatabase") {
		stmts = append(stmts, `CREATE INDEX index_Track_uuidOfExternalDatabase ON Track (uuidOfExternalDatabase)`)
	}
	return stmts
}

func performanceDataDDL(v Version) DDL {
	return DDL{
		`CREATE TABLE PerformanceData (
			id INTEGER PRIMARY KEY,
			isAnalyzed NUMERIC,
			isRendered NUMERIC,
			trackData BLOB,
			highResolutionWaveFormData BLOB,
			overviewWaveFormData BLOB,
			beatData BLOB,
			quickCues BLOB,
			loops BLOB,
			hasSeratoValues NUMERIC,
			hasRekordboxValues NUMERIC
		)`,
		`CREATE INDEX index_PerformanceData_id ON PerformanceData (id)`,
	}
}

func playlistDDL(v Version) DDL {
	stmts := DDL{
		`CREATE TABLE Playlist (
			id INTEGER PRIMARY KEY,
			title TEXT,
			parentListId INTEGER,
			isPersisted NUMERIC,
			nextListId INTEGER,
			lastEditTime TEXT`,
	}
	if v.ListTypeColumn {
		stmts[0] += `,
			isExplicitlyExported NUMERIC`
	}
	stmts[0] += `
		)`
	stmts = append(stmts,
		`CREATE INDEX index_Playlist_id ON Playlist (id)`,

		`CREATE TABLE PlaylistEntity (
			id INTEGER PRIMARY KEY,
			listId INTEGER,
			trackId INTEGER,
			databaseUuid TEXT,
			nextEntityId INTEGER,
			membershipReference INTEGER
		)`,
		`CREATE INDEX index_PlaylistEntity_id ON PlaylistEntity (id)`,
		`CREATE INDEX index_PlaylistEntity_listId ON PlaylistEntity (listId)`,
		`CREATE INDEX index_PlaylistEntity_trackId ON PlaylistEntity (trackId)`,
	)
	return stmts
}

// performanceDDL returns the DDL for a v1-family "p.db" file, which carries
// its own mirrored Information row plus the per-track performance blobs.
func performanceDDL(v Version) DDL {
	return append(DDL{
		`CREATE TABLE Information (
			id INTEGER PRIMARY KEY,
			uuid TEXT,
			schemaVersionMajor INTEGER,
			schemaVersionMinor INTEGER,
			schemaVersionPatch INTEGER,
			currentPlayedIndiciator INTEGER,
			lastRekordBoxLibraryImportReadCounter INTEGER
		)`,
		`CREATE INDEX index_Information_id ON Information (id)`,
	}, performanceDataDDL(v)...)
}

// BuildDDL returns the DDL for every attached database a version requires.
// v1-family versions return two entries, keyed "m" and "p"; v2/v3-family
// versions return a single entry keyed "m".
func BuildDDL(v Version) map[string]DDL {
	if v.Family == FamilyV1 {
		return map[string]DDL{
			"m": musicDDL(v),
			"p": performanceDDL(v),
		}
	}
	return map[string]DDL{
		"m": musicDDL(v),
	}
}
