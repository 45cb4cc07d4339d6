package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// OverviewEntryCount is the fixed number of entries an overview waveform
// blob always carries.
const OverviewEntryCount = 1024

// OverviewOpacitySentinel is what a caller round-tripping an overview
// waveform must set WaveformBand.Opacity to before writing, since the
// overview format does not store opacity at all.
const OverviewOpacitySentinel = 255

// OverviewWaveform is the overview-waveform blob's decoded form: always
// exactly OverviewEntryCount entries plus one "max" entry.
type OverviewWaveform struct {
	SamplesPerEntry float64
	Entries         [OverviewEntryCount]model.WaveformEntry
	Max             model.WaveformEntry
	Extra           []byte
}

// Encode serializes w to its zlib-wrapped wire form.
func (w OverviewWaveform) Encode() ([]byte, error) {
	size := 8 + 8 + 8 + OverviewEntryCount*3 + 3 + len(w.Extra)
	payload := make([]byte, size)
	off := 0

	codec.PutI64BE(payload[off:], OverviewEntryCount)
	off += 8
	codec.PutI64BE(payload[off:], OverviewEntryCount)
	off += 8
	codec.PutF64BE(payload[off:], w.SamplesPerEntry)
	off += 8

	for _, e := range w.Entries {
		codec.PutU8(payload[off:off+1], e.Low.Value)
		codec.PutU8(payload[off+1:off+2], e.Mid.Value)
		codec.PutU8(payload[off+2:off+3], e.High.Value)
		off += 3
	}

	codec.PutU8(payload[off:off+1], w.Max.Low.Value)
	codec.PutU8(payload[off+1:off+2], w.Max.Mid.Value)
	codec.PutU8(payload[off+2:off+3], w.Max.High.Value)
	off += 3

	copy(payload[off:], w.Extra)

	return codec.ZlibWrap(payload)
}

// DecodeOverviewWaveform parses a zlib-wrapped overview-waveform blob.
func DecodeOverviewWaveform(data []byte) (OverviewWaveform, error) {
	payload, err := codec.ZlibUnwrap(data)
	if err != nil {
		return OverviewWaveform{}, err
	}
	const fixedLen = 8 + 8 + 8 + OverviewEntryCount*3 + 3
	if len(payload) < fixedLen {
		return OverviewWaveform{}, codec.Malformedf(
			"overview-waveform payload is %d bytes, need at least %d", len(payload), fixedLen)
	}

	off := 0
	count1 := codec.GetI64BE(payload[off:])
	off += 8
	count2 := codec.GetI64BE(payload[off:])
	off += 8
	if count1 != OverviewEntryCount || count2 != OverviewEntryCount || count1 != count2 {
		return OverviewWaveform{}, codec.Malformedf(
			"overview entry counts %d/%d must both equal %d", count1, count2, OverviewEntryCount)
	}

	var w OverviewWaveform
	w.SamplesPerEntry = codec.GetF64BE(payload[off:])
	off += 8

	for i := 0; i < OverviewEntryCount; i++ {
		w.Entries[i] = model.WaveformEntry{
			Low:  model.WaveformBand{Value: codec.GetU8(payload[off : off+1])},
			Mid:  model.WaveformBand{Value: codec.GetU8(payload[off+1 : off+2])},
			High: model.WaveformBand{Value: codec.GetU8(payload[off+2 : off+3])},
		}
		off += 3
	}

	w.Max = model.WaveformEntry{
		Low:  model.WaveformBand{Value: codec.GetU8(payload[off : off+1])},
		Mid:  model.WaveformBand{Value: codec.GetU8(payload[off+1 : off+2])},
		High: model.WaveformBand{Value: codec.GetU8(payload[off+2 : off+3])},
	}
	off += 3

	if off < len(payload) {
		w.Extra = append([]byte(nil), payload[off:]...)
	}

	return w, nil
}
