package blob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckwave/enginelibrary/internal/codec"
)

func mustUnwrap(t *testing.T, wire []byte) []byte {
	t.Helper()
	payload, err := codec.ZlibUnwrap(wire)
	require.NoError(t, err)
	return payload
}

func mustWrap(t *testing.T, payload []byte) []byte {
	t.Helper()
	wire, err := codec.ZlibWrap(payload)
	require.NoError(t, err)
	return wire
}
