package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// HiresWaveform is the high-resolution waveform blob's decoded form. Unlike
// the overview waveform, its entry count varies with track length and each
// entry carries an opacity byte per band.
type HiresWaveform struct {
	SamplesPerEntry float64
	Entries         []model.WaveformEntry
	Max             model.WaveformEntry
}

// Encode serializes w to its zlib-wrapped wire form.
func (w HiresWaveform) Encode() ([]byte, error) {
	n := len(w.Entries)
	size := 8 + 8 + 8 + n*6 + 6
	payload := make([]byte, size)
	off := 0

	codec.PutI64BE(payload[off:], int64(n))
	off += 8
	codec.PutI64BE(payload[off:], int64(n))
	off += 8
	codec.PutF64BE(payload[off:], w.SamplesPerEntry)
	off += 8

	for _, e := range w.Entries {
		codec.PutU8(payload[off:off+1], e.Low.Value)
		codec.PutU8(payload[off+1:off+2], e.Mid.Value)
		codec.PutU8(payload[off+2:off+3], e.High.Value)
		codec.PutU8(payload[off+3:off+4], e.Low.Opacity)
		codec.PutU8(payload[off+4:off+5], e.Mid.Opacity)
		codec.PutU8(payload[off+5:off+6], e.High.Opacity)
		off += 6
	}

	codec.PutU8(payload[off:off+1], w.Max.Low.Value)
	codec.PutU8(payload[off+1:off+2], w.Max.Mid.Value)
	codec.PutU8(payload[off+2:off+3], w.Max.High.Value)
	codec.PutU8(payload[off+3:off+4], w.Max.Low.Opacity)
	codec.PutU8(payload[off+4:off+5], w.Max.Mid.Opacity)
	codec.PutU8(payload[off+5:off+6], w.Max.High.Opacity)
	off += 6

	return codec.ZlibWrap(payload)
}

// DecodeHiresWaveform parses a zlib-wrapped high-resolution waveform blob.
func DecodeHiresWaveform(data []byte) (HiresWaveform, error) {
	payload, err := codec.ZlibUnwrap(data)
	if err != nil {
		return HiresWaveform{}, err
	}
	if len(payload) < 24 {
		return HiresWaveform{}, codec.Malformedf(
			"hires-waveform payload too short: %d bytes", len(payload))
	}

	off := 0
	count1 := codec.GetI64BE(payload[off:])
	off += 8
	count2 := codec.GetI64BE(payload[off:])
	off += 8
	if count1 != count2 {
		return HiresWaveform{}, codec.Malformedf(
			"hires entry counts %d/%d do not match", count1, count2)
	}
	if count1 < 0 {
		return HiresWaveform{}, codec.Malformedf("negative entry count %d", count1)
	}

	var w HiresWaveform
	w.SamplesPerEntry = codec.GetF64BE(payload[off:])
	off += 8

	want := off + int(count1)*6 + 6
	if want != len(payload) {
		return HiresWaveform{}, codec.Malformedf(
			"hires-waveform payload is %d bytes, expected exactly %d for %d entries", len(payload), want, count1)
	}

	w.Entries = make([]model.WaveformEntry, count1)
	for i := int64(0); i < count1; i++ {
		w.Entries[i] = model.WaveformEntry{
			Low:  model.WaveformBand{Value: codec.GetU8(payload[off : off+1]), Opacity: codec.GetU8(payload[off+3 : off+4])},
			Mid:  model.WaveformBand{Value: codec.GetU8(payload[off+1 : off+2]), Opacity: codec.GetU8(payload[off+4 : off+5])},
			High: model.WaveformBand{Value: codec.GetU8(payload[off+2 : off+3]), Opacity: codec.GetU8(payload[off+5 : off+6])},
		}
		off += 6
	}

	w.Max = model.WaveformEntry{
		Low:  model.WaveformBand{Value: codec.GetU8(payload[off : off+1]), Opacity: codec.GetU8(payload[off+3 : off+4])},
		Mid:  model.WaveformBand{Value: codec.GetU8(payload[off+1 : off+2]), Opacity: codec.GetU8(payload[off+4 : off+5])},
		High: model.WaveformBand{Value: codec.GetU8(payload[off+2 : off+3]), Opacity: codec.GetU8(payload[off+5 : off+6])},
	}
	off += 6

	return w, nil
}
