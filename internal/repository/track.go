// Package repository implements the track, crate, and playlist repositories
// that translate model-level snapshots into the relational rows and
// performance-data blobs a Handle's database(s) carry, per spec.md §4.5-4.7.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/deckwave/enginelibrary/internal/blob"
	"github.com/deckwave/enginelibrary/internal/derive"
	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/storage"
	"github.com/deckwave/enginelibrary/model"
	"github.com/deckwave/enginelibrary/pkg/logger"
)

// TrackRepository implements track CRUD against one open library Handle. A
// v1-family handle keeps its PerformanceData row in the handle's attached
// performance database; v2/v3 keep it alongside the Track row in the music
// database.
type TrackRepository struct {
	handle *storage.Handle
	log    logger.Logger
}

// NewTrackRepository constructs a TrackRepository bound to handle.
func NewTrackRepository(handle *storage.Handle) *TrackRepository {
	return &TrackRepository{handle: handle, log: handle.Log("trackRepository")}
}

// perfDB returns whichever connection this handle's version keeps
// PerformanceData rows on.
func (r *TrackRepository) perfDB() *sql.DB {
	if r.handle.Version.Family == schema.FamilyV1 {
		return r.handle.PerfDB()
	}
	return r.handle.DB()
}

// Create inserts snapshot as a new track, returning the assigned id and the
// snapshot as it would now be read back (duration filled in from sampling,
// rating clamped).
func (r *TrackRepository) Create(ctx context.Context, snapshot model.Track) (int64, model.Track, error) {
	l := r.log.Function("Create")

	if snapshot.RelativePath == "" {
		return 0, model.Track{}, &errs.InvalidTrackSnapshot{Reason: "relative_path is required"}
	}

	snapshot.Rating = derive.ClampRating(snapshot.Rating)
	if snapshot.Duration == nil {
		snapshot.Duration = derive.DurationFromSamples(snapshot.Sampling.SampleCount, snapshot.Sampling.SampleRate)
	}

	db := r.handle.DB()
	id, err := insertTrackRow(ctx, db, snapshot)
	if err != nil {
		return 0, model.Track{}, l.Err("failed to insert track row", err, "path", snapshot.RelativePath)
	}

	if !snapshot.Analysis.Empty() {
		if err := r.writePerformanceData(ctx, id, snapshot); err != nil {
			return 0, model.Track{}, l.Err("failed to write performance data", err, "id", id)
		}
	}

	l.Info("created track", "id", id, "path", snapshot.RelativePath)
	return id, snapshot, nil
}

// Update replaces the Track row and its performance data for id. A snapshot
// with an empty analysis payload deletes any existing PerformanceData row
// rather than writing one full of absent fields.
func (r *TrackRepository) Update(ctx context.Context, id int64, snapshot model.Track) error {
	l := r.log.Function("Update")

	if snapshot.RelativePath == "" {
		return &errs.InvalidTrackSnapshot{Reason: "relative_path is required"}
	}
	snapshot.Rating = derive.ClampRating(snapshot.Rating)
	if snapshot.Duration == nil {
		snapshot.Duration = derive.DurationFromSamples(snapshot.Sampling.SampleCount, snapshot.Sampling.SampleRate)
	}

	db := r.handle.DB()
	if err := updateTrackRow(ctx, db, id, snapshot); err != nil {
		return l.Err("failed to update track row", err, "id", id)
	}

	if snapshot.Analysis.Empty() {
		if _, err := r.perfDB().ExecContext(ctx, `DELETE FROM PerformanceData WHERE id = ?`, id); err != nil {
			return l.Err("failed to delete performance data", err, "id", id)
		}
		return nil
	}

	if err := r.writePerformanceData(ctx, id, snapshot); err != nil {
		return l.Err("failed to write performance data", err, "id", id)
	}
	return nil
}

// Remove deletes the track row and its performance data, plus its crate and
// playlist membership rows.
func (r *TrackRepository) Remove(ctx context.Context, id int64) error {
	l := r.log.Function("Remove")
	db := r.handle.DB()

	if _, err := db.ExecContext(ctx, `DELETE FROM CrateTrackList WHERE trackId = ?`, id); err != nil {
		return l.Err("failed to remove crate membership", err, "id", id)
	}
	if r.handle.Version.HasPlaylists {
		if _, err := db.ExecContext(ctx, `DELETE FROM PlaylistEntity WHERE trackId = ?`, id); err != nil {
			return l.Err("failed to remove playlist membership", err, "id", id)
		}
	}
	if _, err := r.perfDB().ExecContext(ctx, `DELETE FROM PerformanceData WHERE id = ?`, id); err != nil {
		return l.Err("failed to delete performance data", err, "id", id)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM Track WHERE id = ?`, id); err != nil {
		return l.Err("failed to delete track row", err, "id", id)
	}
	return nil
}

// ByID reads back one track's full snapshot.
func (r *TrackRepository) ByID(ctx context.Context, id int64) (model.Track, error) {
	l := r.log.Function("ByID")
	db := r.handle.DB()

	snapshot, err := scanTrackRow(db.QueryRowContext(ctx, trackSelectColumns+` FROM Track WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Track{}, &errs.TrackDeleted{ID: id}
		}
		return model.Track{}, l.Err("failed to read track row", err, "id", id)
	}

	if err := r.loadPerformanceData(ctx, id, &snapshot); err != nil {
		return model.Track{}, l.Err("failed to load performance data", err, "id", id)
	}
	return snapshot, nil
}

// ByRelativePath reads back one track's full snapshot by its file path.
func (r *TrackRepository) ByRelativePath(ctx context.Context, relativePath string) (int64, model.Track, error) {
	l := r.log.Function("ByRelativePath")
	db := r.handle.DB()

	var id int64
	row := db.QueryRowContext(ctx, idPrefixedTrackSelect()+` FROM Track WHERE path = ?`, relativePath)
	snapshot, scanErr := scanIDPrefixedTrackRow(row, &id)
	if scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return 0, model.Track{}, &errs.DatabaseInconsistency{Reason: fmt.Sprintf("no track at path %q", relativePath)}
		}
		return 0, model.Track{}, l.Err("failed to read track row", scanErr, "path", relativePath)
	}

	if err := r.loadPerformanceData(ctx, id, &snapshot); err != nil {
		return 0, model.Track{}, l.Err("failed to load performance data", err, "id", id)
	}
	return id, snapshot, nil
}

// All lists every track's full snapshot, keyed by id.
func (r *TrackRepository) All(ctx context.Context) (map[int64]model.Track, error) {
	l := r.log.Function("All")
	db := r.handle.DB()

	rows, err := db.QueryContext(ctx, idPrefixedTrackSelect()+` FROM Track`)
	if err != nil {
		return nil, l.Err("failed to query tracks", err)
	}
	defer rows.Close()

	out := map[int64]model.Track{}
	for rows.Next() {
		var id int64
		snapshot, err := scanIDPrefixedTrackRow(rows, &id)
		if err != nil {
			return nil, l.Err("failed to scan track row", err)
		}
		if err := r.loadPerformanceData(ctx, id, &snapshot); err != nil {
			return nil, l.Err("failed to load performance data", err, "id", id)
		}
		out[id] = snapshot
	}
	if err := rows.Err(); err != nil {
		return nil, l.Err("failed to iterate tracks", err)
	}
	return out, nil
}

// writePerformanceData encodes all six blobs for snapshot and writes (or
// replaces) the PerformanceData row for id, then immediately decodes what
// it just encoded to confirm the round trip — any mismatch is always a bug
// in this library, never in the caller's data (spec.md §7).
func (r *TrackRepository) writePerformanceData(ctx context.Context, id int64, snapshot model.Track) error {
	wide := r.handle.Version.ThirdLoudnessBand

	summary := blob.TrackSummary{
		Sampling:        snapshot.Sampling,
		AverageLoudness: derefF64(snapshot.AverageLoudness),
		Key:             int32(snapshot.Key),
		Wide:            wide,
	}
	trackData, err := summary.Encode()
	if err != nil {
		return fmt.Errorf("encode track summary: %w", err)
	}
	if back, err := blob.DecodeTrackSummary(trackData, wide); err != nil || !reflect.DeepEqual(back, summary) {
		return &errs.DatabaseInconsistency{Reason: "track-summary encode/decode round trip mismatch", ID: &id}
	}

	beatInput := blob.NewAdjustedBeatData(snapshot.Sampling, snapshot.Analysis.AdjustedBeatGrid)
	beatData, err := beatInput.Encode()
	if err != nil {
		return fmt.Errorf("encode beat data: %w", err)
	}
	if back, err := blob.DecodeBeatData(beatData); err != nil || !beatDataEqual(back, beatInput) {
		return &errs.DatabaseInconsistency{Reason: "beat-data encode/decode round trip mismatch", ID: &id}
	}

	hotCues := blob.HotCues{Cues: snapshot.Analysis.HotCues}
	if snapshot.Analysis.MainCueSampleOffset != nil {
		hotCues.AdjustedMainCue = *snapshot.Analysis.MainCueSampleOffset
		hotCues.DefaultMainCue = *snapshot.Analysis.MainCueSampleOffset
	} else {
		hotCues.AdjustedMainCue = -1
		hotCues.DefaultMainCue = -1
	}
	quickCues, err := hotCues.Encode()
	if err != nil {
		return fmt.Errorf("encode hot cues: %w", err)
	}
	if back, err := blob.DecodeHotCues(quickCues); err != nil || !hotCuesEqual(back, hotCues) {
		return &errs.DatabaseInconsistency{Reason: "hot-cues encode/decode round trip mismatch", ID: &id}
	}

	loopsInput := blob.Loops{Loops: snapshot.Analysis.Loops}
	loops, err := loopsInput.Encode()
	if err != nil {
		return fmt.Errorf("encode loops: %w", err)
	}
	if back, err := blob.DecodeLoops(loops); err != nil || !reflect.DeepEqual(back, loopsInput) {
		return &errs.DatabaseInconsistency{Reason: "loops encode/decode round trip mismatch", ID: &id}
	}

	overview, hires, err := encodeWaveforms(id, snapshot)
	if err != nil {
		return err
	}

	_, execErr := r.perfDB().ExecContext(ctx, `
		INSERT INTO PerformanceData (id, isAnalyzed, isRendered, trackData, highResolutionWaveFormData, overviewWaveFormData, beatData, quickCues, loops, hasSeratoValues, hasRekordboxValues)
		VALUES (?, 1, 1, ?, ?, ?, ?, ?, ?, 0, 0)
		ON CONFLICT(id) DO UPDATE SET
			trackData = excluded.trackData,
			highResolutionWaveFormData = excluded.highResolutionWaveFormData,
			overviewWaveFormData = excluded.overviewWaveFormData,
			beatData = excluded.beatData,
			quickCues = excluded.quickCues,
			loops = excluded.loops
	`, id, trackData, hires, overview, beatData, quickCues, loops)
	if execErr != nil {
		return fmt.Errorf("write performance data row: %w", execErr)
	}
	return nil
}

// encodeWaveforms derives overview and high-resolution waveform blobs from
// snapshot.Analysis.Waveform, which repository callers populate at the
// quantization the track's sample rate implies. Each blob is immediately
// decoded and compared against what it encoded, per the same
// encode-invariant check writePerformanceData applies to every other blob.
func encodeWaveforms(id int64, snapshot model.Track) (overview, hires []byte, err error) {
	ov := blob.OverviewWaveform{SamplesPerEntry: blob.OverviewSamplesPerEntry(snapshot.Sampling.SampleCount, snapshot.Sampling.SampleRate)}
	n := len(snapshot.Analysis.Waveform)
	for i := 0; i < blob.OverviewEntryCount; i++ {
		if n == 0 {
			continue
		}
		ov.Entries[i] = snapshot.Analysis.Waveform[i*n/blob.OverviewEntryCount]
	}
	if n > 0 {
		ov.Max = snapshot.Analysis.Waveform[n-1]
	}
	// The overview format stores no opacity, so clear it before the
	// round-trip comparison.
	for i := range ov.Entries {
		ov.Entries[i].Low.Opacity, ov.Entries[i].Mid.Opacity, ov.Entries[i].High.Opacity = 0, 0, 0
	}
	ov.Max.Low.Opacity, ov.Max.Mid.Opacity, ov.Max.High.Opacity = 0, 0, 0
	overview, err = ov.Encode()
	if err != nil {
		return nil, nil, fmt.Errorf("encode overview waveform: %w", err)
	}
	if back, err := blob.DecodeOverviewWaveform(overview); err != nil || !overviewWaveformEqual(back, ov) {
		return nil, nil, &errs.DatabaseInconsistency{Reason: "overview-waveform encode/decode round trip mismatch", ID: &id}
	}

	hw := blob.HiresWaveform{
		SamplesPerEntry: float64(blob.QuantizationNumber(snapshot.Sampling.SampleRate)),
		Entries:         snapshot.Analysis.Waveform,
	}
	if n > 0 {
		hw.Max = snapshot.Analysis.Waveform[n-1]
	}
	hires, err = hw.Encode()
	if err != nil {
		return nil, nil, fmt.Errorf("encode high-resolution waveform: %w", err)
	}
	if back, err := blob.DecodeHiresWaveform(hires); err != nil || !hiresWaveformEqual(back, hw) {
		return nil, nil, &errs.DatabaseInconsistency{Reason: "high-resolution-waveform encode/decode round trip mismatch", ID: &id}
	}
	return overview, hires, nil
}

// beatDataEqual compares two BeatData values for the encode-invariant
// check, treating a nil grid and a zero-length grid as equal: Decode always
// produces a non-nil, zero-length grid for an empty one, but a caller-built
// BeatData may carry either.
func beatDataEqual(a, b blob.BeatData) bool {
	if len(a.DefaultGrid) == 0 {
		a.DefaultGrid = nil
	}
	if len(b.DefaultGrid) == 0 {
		b.DefaultGrid = nil
	}
	if len(a.AdjustedGrid) == 0 {
		a.AdjustedGrid = nil
	}
	if len(b.AdjustedGrid) == 0 {
		b.AdjustedGrid = nil
	}
	if len(a.Extra) == 0 {
		a.Extra = nil
	}
	if len(b.Extra) == 0 {
		b.Extra = nil
	}
	return reflect.DeepEqual(a, b)
}

// hotCuesEqual compares two HotCues values, normalizing a nil/empty Extra
// the same way beatDataEqual does.
func hotCuesEqual(a, b blob.HotCues) bool {
	if len(a.Extra) == 0 {
		a.Extra = nil
	}
	if len(b.Extra) == 0 {
		b.Extra = nil
	}
	return reflect.DeepEqual(a, b)
}

// overviewWaveformEqual compares two OverviewWaveform values, normalizing a
// nil/empty Extra the same way beatDataEqual does.
func overviewWaveformEqual(a, b blob.OverviewWaveform) bool {
	if len(a.Extra) == 0 {
		a.Extra = nil
	}
	if len(b.Extra) == 0 {
		b.Extra = nil
	}
	return reflect.DeepEqual(a, b)
}

// hiresWaveformEqual compares two HiresWaveform values, normalizing a
// nil/empty Entries slice the same way beatDataEqual normalizes grids:
// Decode always produces a non-nil, zero-length slice for an empty one.
func hiresWaveformEqual(a, b blob.HiresWaveform) bool {
	if len(a.Entries) == 0 {
		a.Entries = nil
	}
	if len(b.Entries) == 0 {
		b.Entries = nil
	}
	return reflect.DeepEqual(a, b)
}

// loadPerformanceData reads and decodes id's PerformanceData row (if any)
// into snapshot.Analysis. A missing row leaves Analysis at its zero value.
func (r *TrackRepository) loadPerformanceData(ctx context.Context, id int64, snapshot *model.Track) error {
	var trackData, hires, overview, beatData, quickCues, loops []byte
	row := r.perfDB().QueryRowContext(ctx,
		`SELECT trackData, highResolutionWaveFormData, overviewWaveFormData, beatData, quickCues, loops FROM PerformanceData WHERE id = ?`, id)
	if err := row.Scan(&trackData, &hires, &overview, &beatData, &quickCues, &loops); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	bd, err := blob.DecodeBeatData(beatData)
	if err != nil {
		return fmt.Errorf("decode beat data: %w", err)
	}
	snapshot.Analysis.AdjustedBeatGrid = bd.Adjusted()

	hc, err := blob.DecodeHotCues(quickCues)
	if err != nil {
		return fmt.Errorf("decode hot cues: %w", err)
	}
	snapshot.Analysis.HotCues = hc.Cues
	if hc.AdjustedMainCue != -1 {
		v := hc.AdjustedMainCue
		snapshot.Analysis.MainCueSampleOffset = &v
	}

	lp, err := blob.DecodeLoops(loops)
	if err != nil {
		return fmt.Errorf("decode loops: %w", err)
	}
	snapshot.Analysis.Loops = lp.Loops

	hw, err := blob.DecodeHiresWaveform(hires)
	if err != nil {
		return fmt.Errorf("decode high-resolution waveform: %w", err)
	}
	snapshot.Analysis.Waveform = hw.Entries

	return nil
}

func derefF64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
