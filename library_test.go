package enginelibrary_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginelibrary "github.com/deckwave/enginelibrary"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/model"
)

func floatp(f float64) *float64 { return &f }

// Scenario 1: v1.7.1 track round trip with a derived duration.
func TestScenarioTrackRoundTripWithDerivedDuration(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "lib1")

	lib, err := enginelibrary.Create(ctx, dir, schema.V1_7_1, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	snapshot := model.Track{
		RelativePath: "a/b.mp3",
		BPM:          floatp(123),
		Key:          model.KeyAMinor,
		Rating:       model.RatingNone,
		Sampling:     model.SamplingInfo{SampleRate: 44100, SampleCount: 17_452_800},
		Analysis: model.AnalysisPayload{
			AdjustedBeatGrid: model.BeatGrid{
				{BeatIndex: -4, SampleOffset: -83316.78},
				{BeatIndex: 812, SampleOffset: 17470734.439},
			},
		},
	}
	snapshot.Analysis.HotCues[0] = model.HotCue{
		Set: true, Label: "Cue 1", SampleOffset: 1377924.5,
		Colour: model.Colour{A: 0xFF, R: 0xEA, G: 0xC5, B: 0x32},
	}

	track, err := lib.CreateTrack(ctx, snapshot)
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	reopened, err := enginelibrary.Open(ctx, dir, enginelibrary.Options{})
	require.NoError(t, err)
	defer reopened.Close()

	handle, err := reopened.TrackByID(ctx, track.ID)
	require.NoError(t, err)
	result, err := handle.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "a/b.mp3", result.RelativePath)
	require.NotNil(t, result.BPM)
	assert.InDelta(t, 123, *result.BPM, 0.5)
	assert.Equal(t, model.KeyAMinor, result.Key)
	require.NotNil(t, result.Duration)
	assert.InDelta(t, 395_755*float64(time.Millisecond), float64(*result.Duration), float64(2*time.Millisecond))
	require.Len(t, result.Analysis.AdjustedBeatGrid, 2)
	assert.Equal(t, int64(812), result.Analysis.AdjustedBeatGrid[1].BeatIndex)
	assert.True(t, result.Analysis.HotCues[0].Set)
	assert.Equal(t, "Cue 1", result.Analysis.HotCues[0].Label)
}

// Scenario 2: v2.0.0 crate tree.
func TestScenarioCrateTree(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "lib2")

	lib, err := enginelibrary.Create(ctx, dir, schema.V2_0_0, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	house, err := lib.CreateRootCrate(ctx, "House")
	require.NoError(t, err)
	_, err = lib.CreateSubCrate(ctx, house, "Deep House")
	require.NoError(t, err)

	roots, err := lib.RootCrates(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	rootName, err := roots[0].Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "House", rootName)

	children, err := house.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 1)
	childName, err := children[0].Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Deep House", childName)
}

// Scenario 3: empty analysis payload omits PerformanceData; adding a
// beatgrid makes it appear.
func TestScenarioEmptyAnalysisThenUpdate(t *testing.T) {
	ctx := context.Background()
	lib, err := enginelibrary.CreateTemporary(ctx, schema.V3_0_1, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	track, err := lib.CreateTrack(ctx, model.Track{RelativePath: "x.mp3", Rating: model.RatingNone})
	require.NoError(t, err)

	snapshot, err := track.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.Analysis.Empty())

	snapshot.Analysis.AdjustedBeatGrid = model.BeatGrid{
		{BeatIndex: 0, SampleOffset: 0},
		{BeatIndex: 4, SampleOffset: 4410},
	}
	require.NoError(t, track.Update(ctx, snapshot))

	updated, err := track.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, updated.Analysis.AdjustedBeatGrid, 2)
}

// Scenario 5: invalid crate name.
func TestScenarioInvalidCrateName(t *testing.T) {
	ctx := context.Background()
	lib, err := enginelibrary.CreateTemporary(ctx, schema.V3_0_1, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	_, err = lib.CreateRootCrate(ctx, "Rock;Pop")
	require.Error(t, err)
	var invalid *enginelibrary.CrateInvalidName
	assert.ErrorAs(t, err, &invalid)
}

// v1-family libraries reject playlist operations.
func TestV1LibraryRejectsPlaylistOperations(t *testing.T) {
	ctx := context.Background()
	lib, err := enginelibrary.CreateTemporary(ctx, schema.V1_18_0, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	_, err = lib.CreateRootPlaylist(ctx, "Set")
	require.Error(t, err)
	var unsupported *enginelibrary.UnsupportedOperation
	assert.ErrorAs(t, err, &unsupported)
}

func TestV2LibrarySupportsPlaylists(t *testing.T) {
	ctx := context.Background()
	lib, err := enginelibrary.CreateTemporary(ctx, schema.V3_0_1, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	track, err := lib.CreateTrack(ctx, model.Track{RelativePath: "t.mp3", Rating: model.RatingNone})
	require.NoError(t, err)

	playlist, err := lib.CreateRootPlaylist(ctx, "Opening Set")
	require.NoError(t, err)
	require.NoError(t, playlist.AddTrack(ctx, track))

	tracks, err := playlist.Tracks(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.True(t, tracks[0].Equal(track))
}

func TestTrackRemoveMakesTrackUnreachable(t *testing.T) {
	ctx := context.Background()
	lib, err := enginelibrary.CreateTemporary(ctx, schema.V3_0_1, enginelibrary.Options{})
	require.NoError(t, err)
	defer lib.Close()

	track, err := lib.CreateTrack(ctx, model.Track{RelativePath: "z.mp3", Rating: model.RatingNone})
	require.NoError(t, err)
	require.NoError(t, track.Remove(ctx))

	_, err = lib.TrackByID(ctx, track.ID)
	require.Error(t, err)
}
