package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/model"
)

func TestOverviewWaveformRoundTrip(t *testing.T) {
	var in OverviewWaveform
	in.SamplesPerEntry = OverviewSamplesPerEntry(10_000_000, 44100)
	for i := range in.Entries {
		in.Entries[i] = model.WaveformEntry{
			Low:  model.WaveformBand{Value: uint8(i % 256), Opacity: OverviewOpacitySentinel},
			Mid:  model.WaveformBand{Value: uint8((i * 2) % 256), Opacity: OverviewOpacitySentinel},
			High: model.WaveformBand{Value: uint8((i * 3) % 256), Opacity: OverviewOpacitySentinel},
		}
	}
	in.Max = model.WaveformEntry{
		Low:  model.WaveformBand{Value: 255},
		Mid:  model.WaveformBand{Value: 255},
		High: model.WaveformBand{Value: 255},
	}
	in.Extra = []byte{0x01, 0x02}

	wire, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeOverviewWaveform(wire)
	require.NoError(t, err)

	// Opacity is never stored in the overview wire format: Encode drops it
	// silently, so the decoded entries come back with opacity zero.
	for i := range out.Entries {
		out.Entries[i].Low.Opacity = OverviewOpacitySentinel
		out.Entries[i].Mid.Opacity = OverviewOpacitySentinel
		out.Entries[i].High.Opacity = OverviewOpacitySentinel
	}
	assert.Equal(t, in, out)
}

func TestOverviewWaveformRejectsWrongEntryCount(t *testing.T) {
	var in OverviewWaveform
	wire, err := in.Encode()
	require.NoError(t, err)

	// Corrupt the first entry_count field's low byte.
	payload := mustUnwrap(t, wire)
	payload[7] = 5
	badWire := mustWrap(t, payload)

	_, err = DecodeOverviewWaveform(badWire)
	assert.Error(t, err)
}
