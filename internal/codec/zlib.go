package codec

import (
	"bytes"
	"compress/zlib"
	"io"
)

// ZlibWrap prepends a 4-byte big-endian uncompressed length to the
// zlib-deflated form of data. An empty input wraps to an empty output, with
// no header at all — reference hardware never writes a zero-length blob
// with a length prefix.
func ZlibWrap(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	header := make([]byte, 4)
	PutI32BE(header, int32(len(data)))
	buf.Write(header)

	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ZlibUnwrap reads the 4-byte length prefix and inflates the remainder,
// asserting the inflated length matches what the prefix promised. Empty
// input decodes to empty output.
func ZlibUnwrap(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data) < 4 {
		return nil, TooShortf("zlib-wrapped blob needs a 4-byte length prefix, got %d bytes", len(data))
	}

	want := int(uint32(GetI32BE(data[:4])))
	r, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, InflateFailedf("%v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, InflateFailedf("%v", err)
	}
	if len(out) != want {
		return nil, InflateFailedf("inflated length %d does not match prefix %d", len(out), want)
	}

	return out, nil
}
