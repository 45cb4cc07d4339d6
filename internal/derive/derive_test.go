package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/model"
)

func TestNormalizeBeatGridAnchorsFirstMarker(t *testing.T) {
	grid := []model.BeatGridMarker{
		{BeatIndex: 0, SampleOffset: 0},
		{BeatIndex: 100, SampleOffset: 44100},
	}

	out, err := NormalizeBeatGrid(grid, 1_000_000)
	require.NoError(t, err)

	assert.EqualValues(t, -4, out[0].BeatIndex)
	samplesPerBeat := 44100.0 / 100
	assert.InDelta(t, -4*samplesPerBeat, out[0].SampleOffset, 1e-6)
}

func TestNormalizeBeatGridAdvancesLastMarkerPastEnd(t *testing.T) {
	grid := []model.BeatGridMarker{
		{BeatIndex: 0, SampleOffset: 0},
		{BeatIndex: 100, SampleOffset: 44100},
	}

	const sampleCount = 1_000_000
	out, err := NormalizeBeatGrid(grid, sampleCount)
	require.NoError(t, err)

	last := out[len(out)-1]
	assert.Greater(t, last.SampleOffset, float64(sampleCount))
	assert.Greater(t, last.BeatIndex, grid[len(grid)-1].BeatIndex)
}

func TestNormalizeBeatGridRejectsSingleMarker(t *testing.T) {
	_, err := NormalizeBeatGrid([]model.BeatGridMarker{{BeatIndex: 0, SampleOffset: 0}}, 1000)
	assert.Error(t, err)
}

func TestDurationFromSamplesAbsentWhenZero(t *testing.T) {
	assert.Nil(t, DurationFromSamples(0, 44100))
	assert.Nil(t, DurationFromSamples(44100, 0))
}

func TestDurationFromSamplesRoundTrip(t *testing.T) {
	d := DurationFromSamples(17_452_800, 44100)
	require.NotNil(t, d)
	assert.InDelta(t, 395755, d.Milliseconds(), 1)
}

func TestSampleCountFromDurationAbsentWhenNil(t *testing.T) {
	assert.EqualValues(t, 0, SampleCountFromDuration(nil, 44100))
	d := 5 * time.Second
	assert.EqualValues(t, 0, SampleCountFromDuration(&d, 0))
}

func TestDurationStringFormatsMinutesSeconds(t *testing.T) {
	assert.Equal(t, "06:35", DurationString(395*time.Second))
	assert.Equal(t, "00:00", DurationString(0))
}

func TestClampRatingPassesThroughSentinel(t *testing.T) {
	assert.Equal(t, model.RatingNone, ClampRating(model.RatingNone))
}

func TestClampRatingClampsRange(t *testing.T) {
	assert.Equal(t, 0, ClampRating(-5))
	assert.Equal(t, 100, ClampRating(150))
	assert.Equal(t, 42, ClampRating(42))
}
