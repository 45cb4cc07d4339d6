package derive

import (
	"fmt"
	"time"
)

// DurationFromSamples derives a track's duration from its sample count and
// rate, dropping to the absent representation (nil) when either is zero.
func DurationFromSamples(sampleCount int64, sampleRate float64) *time.Duration {
	if sampleCount == 0 || sampleRate == 0 {
		return nil
	}
	millis := int64(float64(sampleCount) * 1000 / sampleRate)
	d := time.Duration(millis) * time.Millisecond
	return &d
}

// SampleCountFromDuration is the inverse of DurationFromSamples: it derives
// a sample count from a duration and rate, returning 0 (the absent
// representation for sample counts) when either input is absent/zero.
func SampleCountFromDuration(d *time.Duration, sampleRate float64) int64 {
	if d == nil || sampleRate == 0 {
		return 0
	}
	return int64(float64(d.Milliseconds()) * sampleRate / 1000)
}

// DurationString formats d as the "MM:SS" metadata string the reference
// consumer stores alongside the track's millisecond duration. Minutes are
// not clamped to two digits; seconds are always zero-padded.
func DurationString(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	minutes := total / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
