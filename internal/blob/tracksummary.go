// Package blob implements the six zlib-wrapped (and one unwrapped) binary
// formats that make up a track's performance-data row: track summary,
// beatgrid, hot cues, loops, overview waveform, and high-resolution
// waveform. Each type's Encode is the exact inverse of its Decode for every
// value the type's invariants allow ("round-trip law", spec.md §8).
package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// TrackSummary is the track-summary blob's decoded form. AverageLoudness is
// the single loudness value; when Wide is set, Encode writes it to all three
// loudness band fields, since the three bands are always written equal.
type TrackSummary struct {
	Sampling model.SamplingInfo

	// AverageLoudness is 0 when absent.
	AverageLoudness float64

	// Key is 0 when absent, otherwise a 1-based musical key ordinal.
	Key int32

	// Wide selects the v2, 44-byte fixed-payload dialect (three loudness
	// bands) over the v1, 28-byte dialect (one band).
	Wide bool

	// Extra holds any trailing bytes beyond the fixed payload, preserved
	// verbatim across decode/encode.
	Extra []byte
}

const (
	trackSummaryNarrowLen = 28
	trackSummaryWideLen   = 44
)

// Encode serializes t to its zlib-wrapped wire form.
func (t TrackSummary) Encode() ([]byte, error) {
	fixedLen := trackSummaryNarrowLen
	if t.Wide {
		fixedLen = trackSummaryWideLen
	}

	payload := make([]byte, fixedLen+len(t.Extra))
	codec.PutF64BE(payload[0:8], t.Sampling.SampleRate)
	codec.PutI64BE(payload[8:16], t.Sampling.SampleCount)
	codec.PutF64BE(payload[16:24], t.AverageLoudness)
	if t.Wide {
		codec.PutF64BE(payload[24:32], t.AverageLoudness)
		codec.PutF64BE(payload[32:40], t.AverageLoudness)
		codec.PutI32BE(payload[40:44], t.Key)
	} else {
		codec.PutI32BE(payload[24:28], t.Key)
	}
	copy(payload[fixedLen:], t.Extra)

	return codec.ZlibWrap(payload)
}

// DecodeTrackSummary parses a zlib-wrapped track-summary blob. wide selects
// which schema-version dialect the bytes were written in.
func DecodeTrackSummary(data []byte, wide bool) (TrackSummary, error) {
	payload, err := codec.ZlibUnwrap(data)
	if err != nil {
		return TrackSummary{}, err
	}

	fixedLen := trackSummaryNarrowLen
	if wide {
		fixedLen = trackSummaryWideLen
	}
	if len(payload) < fixedLen {
		return TrackSummary{}, codec.Malformedf(
			"track-summary payload is %d bytes, need at least %d", len(payload), fixedLen)
	}

	t := TrackSummary{Wide: wide}
	t.Sampling.SampleRate = codec.GetF64BE(payload[0:8])
	t.Sampling.SampleCount = codec.GetI64BE(payload[8:16])
	t.AverageLoudness = codec.GetF64BE(payload[16:24])
	if wide {
		t.Key = codec.GetI32BE(payload[40:44])
	} else {
		t.Key = codec.GetI32BE(payload[24:28])
	}

	if len(payload) > fixedLen {
		t.Extra = append([]byte(nil), payload[fixedLen:]...)
	}

	return t, nil
}
