package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/model"
)

func markers(specs ...[2]float64) []rawMarker {
	out := make([]rawMarker, len(specs))
	for i, s := range specs {
		out[i] = rawMarker{
			BeatGridMarker: model.BeatGridMarker{
				SampleOffset: s[0],
				BeatIndex:    int64(s[1]),
			},
			Unknown: int32(i),
		}
	}
	return out
}

func TestBeatDataRoundTrip(t *testing.T) {
	in := BeatData{
		Sampling:     model.SamplingInfo{SampleRate: 44100, SampleCount: 1000000},
		IsSet:        true,
		DefaultGrid:  markers([2]float64{0, -4}, [2]float64{44100, 0}, [2]float64{88200, 4}),
		AdjustedGrid: markers([2]float64{100, -4}, [2]float64{44200, 0}),
		Extra:        []byte{0x01},
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeBeatData(wire)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBeatDataRoundTripEmptyGrids(t *testing.T) {
	in := BeatData{
		Sampling: model.SamplingInfo{SampleRate: 44100, SampleCount: 1000},
		IsSet:    false,
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeBeatData(wire)
	require.NoError(t, err)
	assert.Equal(t, in.Sampling, out.Sampling)
	assert.False(t, out.IsSet)
	assert.Empty(t, out.DefaultGrid)
	assert.Empty(t, out.AdjustedGrid)
}

func TestBeatDataRejectsSingleMarkerGrid(t *testing.T) {
	in := BeatData{
		Sampling:    model.SamplingInfo{SampleRate: 44100, SampleCount: 1000},
		DefaultGrid: markers([2]float64{0, -4}),
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	_, err = DecodeBeatData(wire)
	assert.Error(t, err)
}

func TestBeatDataRejectsNonIncreasingBeatIndex(t *testing.T) {
	wire, err := BeatData{
		Sampling:    model.SamplingInfo{SampleRate: 44100, SampleCount: 1000},
		DefaultGrid: markers([2]float64{0, -4}, [2]float64{100, -4}),
	}.Encode()
	require.NoError(t, err)

	_, err = DecodeBeatData(wire)
	assert.Error(t, err)
}

// TestBeatDataEncodeDecodeReencodeIsByteIdentical locks in the round-trip
// law for a two-marker grid: (-4, 0.0) and (404, 1_000_000.0).
func TestBeatDataEncodeDecodeReencodeIsByteIdentical(t *testing.T) {
	in := BeatData{
		Sampling:    model.SamplingInfo{SampleRate: 44100, SampleCount: 2_000_000},
		IsSet:       true,
		DefaultGrid: markers([2]float64{0.0, -4}, [2]float64{1_000_000.0, 404}),
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	decoded, err := DecodeBeatData(wire)
	require.NoError(t, err)

	rewire, err := decoded.Encode()
	require.NoError(t, err)

	assert.Equal(t, wire, rewire)
}
