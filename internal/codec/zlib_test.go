package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZlibEmptyRoundTrip(t *testing.T) {
	wrapped, err := ZlibWrap(nil)
	require.NoError(t, err)
	assert.Empty(t, wrapped)

	unwrapped, err := ZlibUnwrap(wrapped)
	require.NoError(t, err)
	assert.Empty(t, unwrapped)
}

func TestZlibRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for good measure")

	wrapped, err := ZlibWrap(payload)
	require.NoError(t, err)
	require.Len(t, wrapped, len(wrapped))
	assert.Greater(t, len(wrapped), 4)

	unwrapped, err := ZlibUnwrap(wrapped)
	require.NoError(t, err)
	assert.Equal(t, payload, unwrapped)
}

func TestZlibUnwrapTooShort(t *testing.T) {
	_, err := ZlibUnwrap([]byte{1, 2, 3})
	require.Error(t, err)

	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, TooShort, codecErr.Kind)
}

func TestZlibUnwrapBadPayload(t *testing.T) {
	bad := make([]byte, 8)
	PutI32BE(bad[:4], 100)
	_, err := ZlibUnwrap(bad)
	require.Error(t, err)

	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, InflateFailed, codecErr.Kind)
}
