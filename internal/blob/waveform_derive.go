package blob

// QuantizationNumber derives the number of samples each high-resolution
// waveform entry summarizes from a track's sample rate. It is zero when
// sampleRate is zero.
//
// The formula mirrors the reference hardware's own fixed-point derivation:
// floor(sample_rate / 210), rounded to the nearest multiple of two by the
// final *2 (e.g. 420 for 44100 Hz).
func QuantizationNumber(sampleRate float64) int64 {
	if sampleRate == 0 {
		return 0
	}
	return int64(sampleRate/210) * 2
}

// OverviewSamplesPerEntry derives samples_per_entry for a fixed
// OverviewEntryCount-entry overview waveform from a track's sample count and
// rate. It is zero when either is zero.
func OverviewSamplesPerEntry(sampleCount int64, sampleRate float64) float64 {
	quantization := QuantizationNumber(sampleRate)
	if sampleCount == 0 || quantization == 0 {
		return 0
	}
	entries := (sampleCount / quantization) * quantization
	return float64(entries) / OverviewEntryCount
}
