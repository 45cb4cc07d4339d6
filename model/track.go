// Package model holds the version-neutral domain types a caller builds and
// receives: track snapshots, crates, playlists, and the performance-data
// payloads that ride along with a track (beatgrid, hot cues, loops, waveform).
//
// Every field that reference hardware treats as independently present or
// absent is represented with a pointer or an explicit zero-value sentinel
// struct (e.g. HotCue.Set), never by overloading zero or the empty string.
package model

import (
	"time"

	"github.com/google/uuid"
)

// SamplingInfo groups a track's sample rate and total sample count, since
// every derived-quantity computation (duration, waveform quantization,
// beatgrid normalization) needs both together.
type SamplingInfo struct {
	SampleRate  float64
	SampleCount int64
}

// Empty reports whether both fields are their zero value, which every
// derived-quantity helper treats as "absent" rather than a track with zero
// duration.
func (s SamplingInfo) Empty() bool {
	return s.SampleRate == 0 && s.SampleCount == 0
}

// ImportOrigin records that a track was imported from another Engine Library
// database, identified by that database's UUID and the track's id within it.
type ImportOrigin struct {
	SourceUUID      uuid.UUID
	SourceTrackID   int64
}

// BeatGridMarker anchors a beat number to an absolute sample offset.
type BeatGridMarker struct {
	BeatIndex    int64
	SampleOffset float64
}

// HotCue is a named, coloured jump point at a sample offset. The zero value
// is an empty slot.
type HotCue struct {
	Set          bool
	Label        string
	SampleOffset float64
	Colour       Colour
}

// Loop is a named, coloured [start, end] interval over sample offsets. The
// zero value is an empty slot.
type Loop struct {
	Set               bool
	Label             string
	StartSampleOffset float64
	EndSampleOffset   float64
	Colour            Colour
}

// HotCueCount is the fixed number of hot-cue pad slots reference hardware
// exposes per track.
const HotCueCount = 8

// LoopCount is the fixed number of loop pad slots reference hardware exposes
// per track.
const LoopCount = 8

// WaveformBand is one of a waveform entry's three frequency sub-bands.
type WaveformBand struct {
	Value   uint8
	Opacity uint8
}

// WaveformEntry is one sample-aggregated slice of a waveform, split into
// low/mid/high frequency bands.
type WaveformEntry struct {
	Low, Mid, High WaveformBand
}

// RatingNone is the absent representation of Track.Rating; valid ratings are
// 0-100 inclusive.
const RatingNone = -1

// BeatGrid is an ordered, non-empty-or-at-least-two-marker sequence of
// beatgrid markers, strictly increasing in both BeatIndex and SampleOffset.
type BeatGrid []BeatGridMarker

// AnalysisPayload holds everything a track's performance-data row carries:
// beatgrid, cue point, hot cues, loops, and waveform. A track snapshot with
// a zero-value AnalysisPayload (Empty returns true) has no performance-data
// row at all.
type AnalysisPayload struct {
	AdjustedBeatGrid BeatGrid

	// MainCueSampleOffset is nil when there is no main cue.
	MainCueSampleOffset *float64

	HotCues [HotCueCount]HotCue
	Loops   [LoopCount]Loop
	Waveform []WaveformEntry
}

// Empty reports whether the payload carries no analysis data whatsoever,
// in which case the repository layer omits the PerformanceData row rather
// than writing one full of absent fields.
func (a AnalysisPayload) Empty() bool {
	if len(a.AdjustedBeatGrid) != 0 || a.MainCueSampleOffset != nil || len(a.Waveform) != 0 {
		return false
	}
	for _, c := range a.HotCues {
		if c.Set {
			return false
		}
	}
	for _, l := range a.Loops {
		if l.Set {
			return false
		}
	}
	return true
}

// Track is the version-neutral payload a caller uses to create or update a
// track. Every field beyond RelativePath is optional; a nil pointer (or,
// for Rating, RatingNone) means the metadata column is absent rather than
// zero.
type Track struct {
	// RelativePath is required on create; it is the track's file location
	// relative to the library's media root.
	RelativePath string

	Title     *string
	Artist    *string
	Album     *string
	Genre     *string
	Comment   *string
	Publisher *string
	Composer  *string
	Year      *int

	TrackNumber *int
	Bitrate     *int
	Duration    *time.Duration
	BPM         *float64
	Key         MusicalKey

	AverageLoudness *float64 // (0, 1], nil when absent
	Sampling        SamplingInfo

	// Rating is 0-100, or RatingNone when absent.
	Rating int

	FileSizeBytes *int64
	LastPlayedAt  *time.Time

	Import *ImportOrigin

	Analysis AnalysisPayload
}
