package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// noCueSampleOffset is the wire sentinel for "this slot/cue is unset".
const noCueSampleOffset = -1.0

// HotCues is the hot-cues (quick-cues) blob's decoded form. It always
// carries exactly model.HotCueCount slots.
type HotCues struct {
	Cues [model.HotCueCount]model.HotCue

	// AdjustedMainCue and DefaultMainCue are both absent (noCueSampleOffset)
	// when there is no main cue; model.Track only exposes the adjusted
	// value, but the wire format carries both for exact round-trip.
	AdjustedMainCue float64
	DefaultMainCue  float64

	Extra []byte
}

// Encode serializes h to its zlib-wrapped wire form. It returns a Malformed
// error if any set slot carries an empty label.
func (h HotCues) Encode() ([]byte, error) {
	size := 8
	for _, c := range h.Cues {
		size += 1 + len(cueLabel(c)) + 8 + 4
	}
	size += 8 + 1 + 8
	size += len(h.Extra)

	payload := make([]byte, size)
	off := 0
	codec.PutI64BE(payload[off:], int64(model.HotCueCount))
	off += 8

	for _, c := range h.Cues {
		label := cueLabel(c)
		if c.Set && label == "" {
			return nil, codec.Malformedf("hot cue slot has no label but is marked set")
		}

		codec.PutU8(payload[off:off+1], uint8(len(label)))
		off++
		copy(payload[off:], label)
		off += len(label)

		offset := noCueSampleOffset
		if c.Set {
			offset = c.SampleOffset
		}
		codec.PutF64BE(payload[off:], offset)
		off += 8

		codec.PutU8(payload[off:off+1], c.Colour.A)
		codec.PutU8(payload[off+1:off+2], c.Colour.R)
		codec.PutU8(payload[off+2:off+3], c.Colour.G)
		codec.PutU8(payload[off+3:off+4], c.Colour.B)
		off += 4
	}

	codec.PutF64BE(payload[off:], h.AdjustedMainCue)
	off += 8
	adjustedFlag := uint8(0)
	if h.AdjustedMainCue != h.DefaultMainCue {
		adjustedFlag = 1
	}
	codec.PutU8(payload[off:off+1], adjustedFlag)
	off++
	codec.PutF64BE(payload[off:], h.DefaultMainCue)
	off += 8

	copy(payload[off:], h.Extra)

	return codec.ZlibWrap(payload)
}

func cueLabel(c model.HotCue) string {
	if !c.Set {
		return ""
	}
	return c.Label
}

// DecodeHotCues parses a zlib-wrapped hot-cues blob.
func DecodeHotCues(data []byte) (HotCues, error) {
	payload, err := codec.ZlibUnwrap(data)
	if err != nil {
		return HotCues{}, err
	}
	if len(payload) < 8 {
		return HotCues{}, codec.Malformedf("hot-cues payload too short: %d bytes", len(payload))
	}

	off := 0
	count := codec.GetI64BE(payload[off:])
	off += 8
	if count != model.HotCueCount {
		return HotCues{}, codec.Malformedf("hot_cue_count %d, expected %d", count, model.HotCueCount)
	}

	var h HotCues
	for i := 0; i < model.HotCueCount; i++ {
		if off+1 > len(payload) {
			return HotCues{}, codec.Malformedf("truncated hot cue %d label length", i)
		}
		labelLen := int(codec.GetU8(payload[off : off+1]))
		off++
		if off+labelLen > len(payload) {
			return HotCues{}, codec.Malformedf("truncated hot cue %d label", i)
		}
		label := string(payload[off : off+labelLen])
		off += labelLen

		if off+12 > len(payload) {
			return HotCues{}, codec.Malformedf("truncated hot cue %d body", i)
		}
		sampleOffset := codec.GetF64BE(payload[off:])
		off += 8
		a := codec.GetU8(payload[off : off+1])
		r := codec.GetU8(payload[off+1 : off+2])
		g := codec.GetU8(payload[off+2 : off+3])
		b := codec.GetU8(payload[off+3 : off+4])
		off += 4

		set := sampleOffset != noCueSampleOffset
		if set && label == "" {
			return HotCues{}, codec.Malformedf("hot cue %d has a sample offset but an empty label", i)
		}
		if !set {
			sampleOffset = 0
		}
		h.Cues[i] = model.HotCue{
			Set:          set,
			Label:        label,
			SampleOffset: sampleOffset,
			Colour:       model.Colour{A: a, R: r, G: g, B: b},
		}
	}

	if off+17 > len(payload) {
		return HotCues{}, codec.Malformedf("truncated main cue trailer")
	}
	h.AdjustedMainCue = codec.GetF64BE(payload[off:])
	off += 8
	isAdjusted := codec.GetU8(payload[off:off+1]) != 0
	off++
	h.DefaultMainCue = codec.GetF64BE(payload[off:])
	off += 8

	if h.AdjustedMainCue != h.DefaultMainCue && !isAdjusted {
		return HotCues{}, codec.Malformedf("adjusted_main_cue differs from default but is_main_cue_adjusted is 0")
	}

	if off < len(payload) {
		h.Extra = append([]byte(nil), payload[off:]...)
	}

	return h, nil
}
