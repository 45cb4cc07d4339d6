// Package derive implements the small pieces of derived-quantity math that
// sit between the wire formats in internal/blob and the domain types in
// model: beatgrid normalization, sample/duration conversion, and rating
// clamping (spec.md §4.9).
package derive

import (
	"fmt"
	"math"

	"github.com/deckwave/enginelibrary/model"
)

// NormalizeBeatGrid rewrites grid (which must have at least two markers)
// for storage: the first marker's beat index becomes -4, with its sample
// offset shifted backward by the corresponding number of beats, and the
// last marker's index is advanced until its sample offset lands just past
// sampleCount. Interior markers are left unchanged.
func NormalizeBeatGrid(grid []model.BeatGridMarker, sampleCount int64) ([]model.BeatGridMarker, error) {
	if len(grid) < 2 {
		return nil, fmt.Errorf("derive: beatgrid normalization needs at least 2 markers, got %d", len(grid))
	}

	first, last := grid[0], grid[len(grid)-1]
	beatSpan := last.BeatIndex - first.BeatIndex
	if beatSpan == 0 {
		return nil, fmt.Errorf("derive: beatgrid first and last markers share beat_index %d", first.BeatIndex)
	}
	samplesPerBeat := (last.SampleOffset - first.SampleOffset) / float64(beatSpan)

	const anchorBeatIndex = -4
	deltaBeats := first.BeatIndex - anchorBeatIndex
	newFirst := model.BeatGridMarker{
		BeatIndex:    anchorBeatIndex,
		SampleOffset: first.SampleOffset - float64(deltaBeats)*samplesPerBeat,
	}

	beatsToEnd := (float64(sampleCount) - last.SampleOffset) / samplesPerBeat
	extraBeats := int64(math.Ceil(beatsToEnd)) + 1
	newLastBeatIndex := last.BeatIndex + extraBeats
	newLast := model.BeatGridMarker{
		BeatIndex:    newLastBeatIndex,
		SampleOffset: last.SampleOffset + float64(newLastBeatIndex-last.BeatIndex)*samplesPerBeat,
	}

	out := make([]model.BeatGridMarker, len(grid))
	copy(out, grid)
	out[0] = newFirst
	out[len(out)-1] = newLast
	return out, nil
}
