package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// markerWireLen is the little-endian, 24-byte wire size of one beatgrid
// marker: sample_offset(f64) + beat_index(i64) + beats_until_next(i32) +
// unknown(i32).
const markerWireLen = 24

// BeatData is the beat-data blob's decoded form: whether the grid has been
// set at all, the hardware-computed "default" grid, and the user-adjusted
// grid a DJ may have nudged. Only AdjustedGrid is exposed on model.Track;
// DefaultGrid and the per-marker Unknown fields exist purely to let a
// round-trip re-emit exactly what reference hardware wrote.
type BeatData struct {
	Sampling     model.SamplingInfo
	IsSet        bool
	DefaultGrid  []rawMarker
	AdjustedGrid []rawMarker
	Extra        []byte
}

// rawMarker is a beatgrid marker plus the hardware-internal "unknown" field
// that is preserved verbatim but never interpreted.
type rawMarker struct {
	model.BeatGridMarker
	Unknown int32
}

// NewAdjustedBeatData builds a BeatData from an adjusted grid alone, using it
// as both the default and the adjusted grid, for repository code that has no
// hardware-computed "default" grid to preserve (e.g. a freshly analyzed
// track). The unknown per-marker field is zeroed.
func NewAdjustedBeatData(sampling model.SamplingInfo, adjusted model.BeatGrid) BeatData {
	b := BeatData{Sampling: sampling, IsSet: len(adjusted) > 0}
	for _, m := range adjusted {
		b.AdjustedGrid = append(b.AdjustedGrid, rawMarker{BeatGridMarker: m})
	}
	b.DefaultGrid = b.AdjustedGrid
	return b
}

// Adjusted extracts the adjusted grid as a version-neutral model.BeatGrid,
// discarding the hardware-internal unknown field.
func (b BeatData) Adjusted() model.BeatGrid {
	grid := make(model.BeatGrid, len(b.AdjustedGrid))
	for i, m := range b.AdjustedGrid {
		grid[i] = m.BeatGridMarker
	}
	return grid
}

// Encode serializes b to its zlib-wrapped wire form. beats_until_next_marker
// is recomputed from each marker's neighbor, not taken from caller state.
func (b BeatData) Encode() ([]byte, error) {
	size := 8 + 8 + 1 + 8 + len(b.DefaultGrid)*markerWireLen + 8 + len(b.AdjustedGrid)*markerWireLen + len(b.Extra)
	payload := make([]byte, size)
	off := 0

	codec.PutF64BE(payload[off:], b.Sampling.SampleRate)
	off += 8
	codec.PutF64BE(payload[off:], float64(b.Sampling.SampleCount))
	off += 8
	if b.IsSet {
		codec.PutU8(payload[off:], 1)
	}
	off++

	off = encodeMarkerList(payload, off, b.DefaultGrid)
	off = encodeMarkerList(payload, off, b.AdjustedGrid)

	copy(payload[off:], b.Extra)

	return codec.ZlibWrap(payload)
}

func encodeMarkerList(payload []byte, off int, markers []rawMarker) int {
	codec.PutI64BE(payload[off:], int64(len(markers)))
	off += 8

	for i, m := range markers {
		beatsUntilNext := int32(0)
		if i+1 < len(markers) {
			beatsUntilNext = int32(markers[i+1].BeatIndex - m.BeatIndex)
		}

		mb := payload[off : off+markerWireLen]
		codec.PutF64LE(mb[0:8], m.SampleOffset)
		codec.PutI64LE(mb[8:16], m.BeatIndex)
		codec.PutI32LE(mb[16:20], beatsUntilNext)
		codec.PutI32LE(mb[20:24], m.Unknown)
		off += markerWireLen
	}

	return off
}

// DecodeBeatData parses a zlib-wrapped beat-data blob, validating that each
// grid (if non-empty) has at least two markers with strictly increasing
// indices and offsets, and that each marker's beats-until-next field is
// consistent with its neighbor.
func DecodeBeatData(data []byte) (BeatData, error) {
	payload, err := codec.ZlibUnwrap(data)
	if err != nil {
		return BeatData{}, err
	}
	if len(payload) < 17 {
		return BeatData{}, codec.Malformedf("beat-data payload too short: %d bytes", len(payload))
	}

	b := BeatData{}
	off := 0
	b.Sampling.SampleRate = codec.GetF64BE(payload[off:])
	off += 8
	b.Sampling.SampleCount = int64(codec.GetF64BE(payload[off:]))
	off += 8
	b.IsSet = codec.GetU8(payload[off:off+1]) != 0
	off++

	b.DefaultGrid, off, err = decodeMarkerList(payload, off)
	if err != nil {
		return BeatData{}, err
	}
	b.AdjustedGrid, off, err = decodeMarkerList(payload, off)
	if err != nil {
		return BeatData{}, err
	}

	if off < len(payload) {
		b.Extra = append([]byte(nil), payload[off:]...)
	}

	return b, nil
}

func decodeMarkerList(payload []byte, off int) ([]rawMarker, int, error) {
	if off+8 > len(payload) {
		return nil, 0, codec.Malformedf("truncated marker count at offset %d", off)
	}
	count := codec.GetI64BE(payload[off:])
	off += 8
	if count < 0 {
		return nil, 0, codec.Malformedf("negative marker count %d", count)
	}
	if count == 1 {
		return nil, 0, codec.Malformedf("beatgrid must have 0 or at least 2 markers, got 1")
	}

	markers := make([]rawMarker, 0, count)
	beatsUntilNext := make([]int32, 0, count)
	for i := int64(0); i < count; i++ {
		if off+markerWireLen > len(payload) {
			return nil, 0, codec.Malformedf("truncated marker %d", i)
		}
		mb := payload[off : off+markerWireLen]
		m := rawMarker{
			BeatGridMarker: model.BeatGridMarker{
				SampleOffset: codec.GetF64LE(mb[0:8]),
				BeatIndex:    codec.GetI64LE(mb[8:16]),
			},
			Unknown: codec.GetI32LE(mb[20:24]),
		}

		if i > 0 {
			prev := markers[i-1]
			if m.BeatIndex <= prev.BeatIndex {
				return nil, 0, codec.Malformedf("marker %d beat_index %d not strictly increasing after %d", i, m.BeatIndex, prev.BeatIndex)
			}
			if m.SampleOffset <= prev.SampleOffset {
				return nil, 0, codec.Malformedf("marker %d sample_offset %v not strictly increasing after %v", i, m.SampleOffset, prev.SampleOffset)
			}
			prevWant := int32(m.BeatIndex - prev.BeatIndex)
			if beatsUntilNext[i-1] != prevWant {
				return nil, 0, codec.Malformedf(
					"marker %d beats_until_next_marker %d does not equal next.beat_index-this.beat_index %d",
					i-1, beatsUntilNext[i-1], prevWant)
			}
		}

		beatsUntilNext = append(beatsUntilNext, codec.GetI32LE(mb[16:20]))
		markers = append(markers, m)
		off += markerWireLen
	}

	if len(markers) > 0 {
		if last := beatsUntilNext[len(beatsUntilNext)-1]; last != 0 {
			return nil, 0, codec.Malformedf("last marker's beats_until_next_marker must be 0, got %d", last)
		}
	}

	return markers, off, nil
}
