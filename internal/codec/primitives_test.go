package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerRoundTrip(t *testing.T) {
	b := make([]byte, 8)

	PutI32LE(b, -123456)
	assert.Equal(t, int32(-123456), GetI32LE(b))

	PutI32BE(b, -123456)
	assert.Equal(t, int32(-123456), GetI32BE(b))

	PutI64LE(b, -9223372036854775800)
	assert.Equal(t, int64(-9223372036854775800), GetI64LE(b))

	PutI64BE(b, -9223372036854775800)
	assert.Equal(t, int64(-9223372036854775800), GetI64BE(b))
}

func TestFloatRoundTrip(t *testing.T) {
	b := make([]byte, 8)
	values := []float64{0, -1, 1.5, 44100.0, -83316.78, 1e300, -1e-300}

	for _, v := range values {
		PutF64LE(b, v)
		assert.Equal(t, v, GetF64LE(b))

		PutF64BE(b, v)
		assert.Equal(t, v, GetF64BE(b))
	}
}

func TestU8RoundTrip(t *testing.T) {
	b := make([]byte, 1)
	PutU8(b, 200)
	assert.Equal(t, uint8(200), GetU8(b))
}
