package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/config"
	"github.com/deckwave/enginelibrary/internal/errs"
	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/internal/storage"
	"github.com/deckwave/enginelibrary/model"
)

func newTempHandle(t *testing.T, v schema.Version) *storage.Handle {
	t.Helper()
	h, err := storage.CreateTemporary(context.Background(), v, config.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func strp(s string) *string { return &s }

func TestTrackCreateAndByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewTrackRepository(h)

	snapshot := model.Track{
		RelativePath: "Music/one.mp3",
		Title:        strp("One"),
		Artist:       strp("Artist"),
		Rating:       model.RatingNone,
		Sampling:     model.SamplingInfo{SampleRate: 44100, SampleCount: 441000},
	}

	id, created, err := repo.Create(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, "One", *created.Title)

	got, err := repo.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Music/one.mp3", got.RelativePath)
	require.NotNil(t, got.Title)
	assert.Equal(t, "One", *got.Title)
	require.NotNil(t, got.Duration)
}

func TestTrackCreateRequiresRelativePath(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewTrackRepository(h)

	_, _, err := repo.Create(ctx, model.Track{Rating: model.RatingNone})
	require.Error(t, err)
	var invalid *errs.InvalidTrackSnapshot
	assert.ErrorAs(t, err, &invalid)
}

func TestTrackWithAnalysisRoundTripsPerformanceData(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewTrackRepository(h)

	cueOffset := 1024.0
	snapshot := model.Track{
		RelativePath: "Music/two.mp3",
		Rating:       model.RatingNone,
		Sampling:     model.SamplingInfo{SampleRate: 44100, SampleCount: 441000},
		Analysis: model.AnalysisPayload{
			AdjustedBeatGrid: model.BeatGrid{
				{BeatIndex: 0, SampleOffset: 0},
				{BeatIndex: 4, SampleOffset: 4410},
			},
			MainCueSampleOffset: &cueOffset,
		},
	}
	snapshot.Analysis.HotCues[0] = model.HotCue{Set: true, Label: "Drop", SampleOffset: 2048, Colour: model.Colour{A: 255, R: 255}}

	id, _, err := repo.Create(ctx, snapshot)
	require.NoError(t, err)

	got, err := repo.ByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Analysis.AdjustedBeatGrid, 2)
	assert.Equal(t, int64(4), got.Analysis.AdjustedBeatGrid[1].BeatIndex)
	require.NotNil(t, got.Analysis.MainCueSampleOffset)
	assert.InDelta(t, cueOffset, *got.Analysis.MainCueSampleOffset, 0.001)
	assert.True(t, got.Analysis.HotCues[0].Set)
	assert.Equal(t, "Drop", got.Analysis.HotCues[0].Label)
}

func TestTrackRemoveDeletesRow(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewTrackRepository(h)

	id, _, err := repo.Create(ctx, model.Track{RelativePath: "Music/gone.mp3", Rating: model.RatingNone})
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, id))

	_, err = repo.ByID(ctx, id)
	require.Error(t, err)
	var deleted *errs.TrackDeleted
	assert.ErrorAs(t, err, &deleted)
}

func TestTrackByRelativePathFindsInsertedRow(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V3_0_1)
	repo := NewTrackRepository(h)

	_, _, err := repo.Create(ctx, model.Track{RelativePath: "Music/findme.mp3", Rating: model.RatingNone})
	require.NoError(t, err)

	id, got, err := repo.ByRelativePath(ctx, "Music/findme.mp3")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, "Music/findme.mp3", got.RelativePath)
}

func TestTrackV1UsesPerformanceFileForAnalysis(t *testing.T) {
	ctx := context.Background()
	h := newTempHandle(t, schema.V1_18_0)
	repo := NewTrackRepository(h)

	snapshot := model.Track{
		RelativePath: "Music/v1.mp3",
		Rating:       model.RatingNone,
		Sampling:     model.SamplingInfo{SampleRate: 44100, SampleCount: 44100},
		Analysis: model.AnalysisPayload{
			AdjustedBeatGrid: model.BeatGrid{{BeatIndex: 0, SampleOffset: 0}, {BeatIndex: 1, SampleOffset: 100}},
		},
	}
	id, _, err := repo.Create(ctx, snapshot)
	require.NoError(t, err)

	var count int
	require.NoError(t, h.PerfDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM PerformanceData WHERE id = ?", id).Scan(&count))
	assert.Equal(t, 1, count)
}
