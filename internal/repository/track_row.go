package repository

import (
	"context"
	"database/sql"
	"path"
	"time"

	"github.com/deckwave/enginelibrary/internal/derive"
	"github.com/deckwave/enginelibrary/model"
)

const trackSelectColumns = "SELECT path, filename, title, artist, album, genre, comment, label, composer, " +
	"bitrate, length, lengthCalculated, bpm, bpmAnalyzed, key, year, rating, fileBytes, timeLastPlayed, isPlayed, isAnalyzed"

func idPrefixedTrackSelect() string {
	return "SELECT id, path, filename, title, artist, album, genre, comment, label, composer, " +
		"bitrate, length, lengthCalculated, bpm, bpmAnalyzed, key, year, rating, fileBytes, timeLastPlayed, isPlayed, isAnalyzed"
}

// trackRowScan and its methods share the column-to-field mapping between
// the id-prefixed and bare forms of the SELECT above.
type trackRowScan struct {
	path, filename                                          sql.NullString
	title, artist, album, genre, comment, label, composer   sql.NullString
	bitrate, length, lengthCalculated, bpm, year, rating     sql.NullInt64
	bpmAnalyzed                                              sql.NullFloat64
	key                                                      sql.NullInt64
	fileBytes                                                sql.NullInt64
	timeLastPlayed                                           sql.NullString
	isPlayed, isAnalyzed                                     sql.NullInt64
}

func (s *trackRowScan) dest() []any {
	return []any{
		&s.path, &s.filename, &s.title, &s.artist, &s.album, &s.genre, &s.comment, &s.label, &s.composer,
		&s.bitrate, &s.length, &s.lengthCalculated, &s.bpm, &s.bpmAnalyzed, &s.key, &s.year, &s.rating,
		&s.fileBytes, &s.timeLastPlayed, &s.isPlayed, &s.isAnalyzed,
	}
}

func (s *trackRowScan) toSnapshot() model.Track {
	t := model.Track{
		RelativePath: s.path.String,
		Title:        nullableString(s.title),
		Artist:       nullableString(s.artist),
		Album:        nullableString(s.album),
		Genre:        nullableString(s.genre),
		Comment:      nullableString(s.comment),
		Publisher:    nullableString(s.label),
		Composer:     nullableString(s.composer),
		Bitrate:      nullableInt(s.bitrate),
		Year:         nullableInt(s.year),
		Key:          model.MusicalKey(s.key.Int64),
		Rating:       model.RatingNone,
	}
	if s.rating.Valid {
		t.Rating = int(s.rating.Int64)
	}
	if s.bpmAnalyzed.Valid {
		v := s.bpmAnalyzed.Float64
		t.BPM = &v
	} else if s.bpm.Valid {
		v := float64(s.bpm.Int64)
		t.BPM = &v
	}
	if s.fileBytes.Valid {
		v := s.fileBytes.Int64
		t.FileSizeBytes = &v
	}
	if s.timeLastPlayed.Valid && s.timeLastPlayed.String != "" {
		if when, err := time.Parse(time.RFC3339, s.timeLastPlayed.String); err == nil {
			t.LastPlayedAt = &when
		}
	}
	if s.length.Valid && s.length.Int64 != 0 {
		d := time.Duration(s.length.Int64) * time.Millisecond
		t.Duration = &d
	}
	return t
}

func scanTrackRow(row *sql.Row) (model.Track, error) {
	var s trackRowScan
	if err := row.Scan(s.dest()...); err != nil {
		return model.Track{}, err
	}
	return s.toSnapshot(), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIDPrefixedTrackRow(row rowScanner, id *int64) (model.Track, error) {
	var s trackRowScan
	dest := append([]any{id}, s.dest()...)
	if err := row.Scan(dest...); err != nil {
		return model.Track{}, err
	}
	return s.toSnapshot(), nil
}

func insertTrackRow(ctx context.Context, db *sql.DB, snapshot model.Track) (int64, error) {
	lengthCalculated := derive.SampleCountFromDuration(snapshot.Duration, snapshot.Sampling.SampleRate)
	var lengthMs int64
	if snapshot.Duration != nil {
		lengthMs = snapshot.Duration.Milliseconds()
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO Track (path, filename, title, artist, album, genre, comment, label, composer,
			bitrate, length, lengthCalculated, bpm, bpmAnalyzed, key, year, rating, fileBytes, timeLastPlayed, isPlayed, isAnalyzed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.RelativePath, path.Base(snapshot.RelativePath),
		strPtr(snapshot.Title), strPtr(snapshot.Artist), strPtr(snapshot.Album), strPtr(snapshot.Genre),
		strPtr(snapshot.Comment), strPtr(snapshot.Publisher), strPtr(snapshot.Composer),
		intPtr(snapshot.Bitrate), lengthMs, lengthCalculated,
		bpmRounded(snapshot.BPM), bpmPrecise(snapshot.BPM), int(snapshot.Key), intPtr(snapshot.Year),
		snapshot.Rating, int64Ptr(snapshot.FileSizeBytes), lastPlayedString(snapshot.LastPlayedAt),
		boolToInt(snapshot.LastPlayedAt != nil), boolToInt(!snapshot.Analysis.Empty()),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func updateTrackRow(ctx context.Context, db *sql.DB, id int64, snapshot model.Track) error {
	lengthCalculated := derive.SampleCountFromDuration(snapshot.Duration, snapshot.Sampling.SampleRate)
	var lengthMs int64
	if snapshot.Duration != nil {
		lengthMs = snapshot.Duration.Milliseconds()
	}

	_, err := db.ExecContext(ctx,
		`UPDATE Track SET path = ?, filename = ?, title = ?, artist = ?, album = ?, genre = ?, comment = ?, label = ?, composer = ?,
			bitrate = ?, length = ?, lengthCalculated = ?, bpm = ?, bpmAnalyzed = ?, key = ?, year = ?, rating = ?, fileBytes = ?,
			timeLastPlayed = ?, isPlayed = ?, isAnalyzed = ?
		 WHERE id = ?`,
		snapshot.RelativePath, path.Base(snapshot.RelativePath),
		strPtr(snapshot.Title), strPtr(snapshot.Artist), strPtr(snapshot.Album), strPtr(snapshot.Genre),
		strPtr(snapshot.Comment), strPtr(snapshot.Publisher), strPtr(snapshot.Composer),
		intPtr(snapshot.Bitrate), lengthMs, lengthCalculated,
		bpmRounded(snapshot.BPM), bpmPrecise(snapshot.BPM), int(snapshot.Key), intPtr(snapshot.Year),
		snapshot.Rating, int64Ptr(snapshot.FileSizeBytes), lastPlayedString(snapshot.LastPlayedAt),
		boolToInt(snapshot.LastPlayedAt != nil), boolToInt(!snapshot.Analysis.Empty()),
		id,
	)
	return err
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intPtr(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func int64Ptr(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func bpmRounded(bpm *float64) any {
	if bpm == nil {
		return nil
	}
	return int(*bpm + 0.5)
}

func bpmPrecise(bpm *float64) any {
	if bpm == nil {
		return nil
	}
	return *bpm
}

func lastPlayedString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
