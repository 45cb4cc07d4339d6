package blob

import (
	"github.com/deckwave/enginelibrary/internal/codec"
	"github.com/deckwave/enginelibrary/model"
)

// noLoopSampleOffset is the wire sentinel for "this endpoint is unset".
const noLoopSampleOffset = -1.0

// Loops is the loops blob's decoded form. Unlike every other blob type, it
// is not zlib-wrapped. It always carries exactly model.LoopCount slots.
type Loops struct {
	Loops [model.LoopCount]model.Loop
}

// Encode serializes l to its (unwrapped) wire form.
func (l Loops) Encode() ([]byte, error) {
	size := 8
	for _, loop := range l.Loops {
		size += 1 + len(loopLabel(loop)) + 8 + 8 + 1 + 1 + 4
	}

	out := make([]byte, size)
	off := 0
	codec.PutI64LE(out[off:], int64(model.LoopCount))
	off += 8

	for _, loop := range l.Loops {
		label := loopLabel(loop)
		if loop.Set && label == "" {
			return nil, codec.Malformedf("loop slot has no label but is marked set")
		}

		codec.PutU8(out[off:off+1], uint8(len(label)))
		off++
		copy(out[off:], label)
		off += len(label)

		start, end := noLoopSampleOffset, noLoopSampleOffset
		if loop.Set {
			start, end = loop.StartSampleOffset, loop.EndSampleOffset
		}
		codec.PutF64LE(out[off:], start)
		off += 8
		codec.PutF64LE(out[off:], end)
		off += 8

		isStartSet, isEndSet := uint8(0), uint8(0)
		if loop.Set {
			isStartSet, isEndSet = 1, 1
		}
		codec.PutU8(out[off:off+1], isStartSet)
		off++
		codec.PutU8(out[off:off+1], isEndSet)
		off++

		codec.PutU8(out[off:off+1], loop.Colour.A)
		codec.PutU8(out[off+1:off+2], loop.Colour.R)
		codec.PutU8(out[off+2:off+3], loop.Colour.G)
		codec.PutU8(out[off+3:off+4], loop.Colour.B)
		off += 4
	}

	return out, nil
}

func loopLabel(l model.Loop) string {
	if !l.Set {
		return ""
	}
	return l.Label
}

// DecodeLoops parses an (unwrapped) loops blob. A slot is set iff both its
// start and end flags are 1.
func DecodeLoops(data []byte) (Loops, error) {
	if len(data) < 8 {
		return Loops{}, codec.Malformedf("loops payload too short: %d bytes", len(data))
	}

	off := 0
	count := codec.GetI64LE(data[off:])
	off += 8
	if count != model.LoopCount {
		return Loops{}, codec.Malformedf("loop_count %d, expected %d", count, model.LoopCount)
	}

	var l Loops
	for i := 0; i < model.LoopCount; i++ {
		if off+1 > len(data) {
			return Loops{}, codec.Malformedf("truncated loop %d label length", i)
		}
		labelLen := int(codec.GetU8(data[off : off+1]))
		off++
		if off+labelLen > len(data) {
			return Loops{}, codec.Malformedf("truncated loop %d label", i)
		}
		label := string(data[off : off+labelLen])
		off += labelLen

		if off+18 > len(data) {
			return Loops{}, codec.Malformedf("truncated loop %d body", i)
		}
		start := codec.GetF64LE(data[off:])
		off += 8
		end := codec.GetF64LE(data[off:])
		off += 8
		isStartSet := codec.GetU8(data[off:off+1]) != 0
		off++
		isEndSet := codec.GetU8(data[off:off+1]) != 0
		off++
		a := codec.GetU8(data[off : off+1])
		r := codec.GetU8(data[off+1 : off+2])
		g := codec.GetU8(data[off+2 : off+3])
		b := codec.GetU8(data[off+3 : off+4])
		off += 4

		set := isStartSet && isEndSet
		if set && label == "" {
			return Loops{}, codec.Malformedf("loop %d is set but has an empty label", i)
		}
		if !set {
			start, end = 0, 0
		}

		l.Loops[i] = model.Loop{
			Set:               set,
			Label:             label,
			StartSampleOffset: start,
			EndSampleOffset:   end,
			Colour:            model.Colour{A: a, R: r, G: g, B: b},
		}
	}

	if off != len(data) {
		return Loops{}, codec.Malformedf("trailing %d unexpected bytes after loops payload", len(data)-off)
	}

	return l, nil
}
