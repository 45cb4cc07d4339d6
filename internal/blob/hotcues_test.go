package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

func TestHotCuesRoundTrip(t *testing.T) {
	var in HotCues
	in.Cues[0] = model.HotCue{Set: true, Label: "Intro", SampleOffset: 1000, Colour: model.Colour{A: 255, R: 255, G: 0, B: 0}}
	in.Cues[3] = model.HotCue{Set: true, Label: "Drop", SampleOffset: 50000, Colour: model.Colour{A: 255, G: 255}}
	in.AdjustedMainCue = 2000
	in.DefaultMainCue = 2000

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeHotCues(wire)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHotCuesRoundTripAdjustedMainCue(t *testing.T) {
	var in HotCues
	in.AdjustedMainCue = 5000
	in.DefaultMainCue = noCueSampleOffset

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeHotCues(wire)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHotCuesRejectsSetSlotWithEmptyLabel(t *testing.T) {
	var in HotCues
	in.Cues[0] = model.HotCue{Set: true, SampleOffset: 10}

	_, err := in.Encode()
	assert.Error(t, err)
}

func TestHotCuesRejectsWrongCount(t *testing.T) {
	var in HotCues
	wire, err := in.Encode()
	require.NoError(t, err)

	payload, err := codec.ZlibUnwrap(wire)
	require.NoError(t, err)
	payload[7] = 7 // corrupt the low byte of hot_cue_count

	corrupted, err := codec.ZlibWrap(payload)
	require.NoError(t, err)

	_, err = DecodeHotCues(corrupted)
	assert.Error(t, err)
}
