package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/model"
)

func TestTrackSummaryRoundTripNarrow(t *testing.T) {
	in := TrackSummary{
		Sampling:        model.SamplingInfo{SampleRate: 44100, SampleCount: 12345678},
		AverageLoudness: 0.125,
		Key:             9,
		Wide:            false,
		Extra:           []byte{0xAB, 0xCD},
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeTrackSummary(wire, false)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTrackSummaryRoundTripWide(t *testing.T) {
	in := TrackSummary{
		Sampling:        model.SamplingInfo{SampleRate: 48000, SampleCount: 98765},
		AverageLoudness: 0.5,
		Key:             1,
		Wide:            true,
	}

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeTrackSummary(wire, true)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTrackSummaryDecodeWrongDialectFails(t *testing.T) {
	wire, err := TrackSummary{Wide: false}.Encode()
	require.NoError(t, err)

	_, err = DecodeTrackSummary(wire, true)
	assert.Error(t, err)
}
