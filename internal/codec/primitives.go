// Package codec implements the fixed-width integer, float, and zlib-wrap
// byte-level primitives every performance-data blob is built from. Nothing
// here is specific to any one blob type or schema version.
package codec

import (
	"encoding/binary"
	"math"
)

// PutU8 writes a single byte to b (len(b) must be >= 1).
func PutU8(b []byte, v uint8) { b[0] = v }

// GetU8 reads a single byte from b (len(b) must be >= 1).
func GetU8(b []byte) uint8 { return b[0] }

// PutI32LE writes v to b in little-endian order (len(b) must be >= 4).
func PutI32LE(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) }

// GetI32LE reads a little-endian int32 from b (len(b) must be >= 4).
func GetI32LE(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) }

// PutI32BE writes v to b in big-endian order (len(b) must be >= 4).
func PutI32BE(b []byte, v int32) { binary.BigEndian.PutUint32(b, uint32(v)) }

// GetI32BE reads a big-endian int32 from b (len(b) must be >= 4).
func GetI32BE(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) }

// PutI64LE writes v to b in little-endian order (len(b) must be >= 8).
func PutI64LE(b []byte, v int64) { binary.LittleEndian.PutUint64(b, uint64(v)) }

// GetI64LE reads a little-endian int64 from b (len(b) must be >= 8).
func GetI64LE(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) }

// PutI64BE writes v to b in big-endian order (len(b) must be >= 8).
func PutI64BE(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) }

// GetI64BE reads a big-endian int64 from b (len(b) must be >= 8).
func GetI64BE(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) }

// PutF64LE writes v to b in little-endian order via its IEEE-754 bit
// representation (len(b) must be >= 8).
func PutF64LE(b []byte, v float64) { PutI64LE(b, int64(math.Float64bits(v))) }

// GetF64LE reads a little-endian IEEE-754 float64 from b (len(b) must be >= 8).
func GetF64LE(b []byte) float64 { return math.Float64frombits(uint64(GetI64LE(b))) }

// PutF64BE writes v to b in big-endian order via its IEEE-754 bit
// representation (len(b) must be >= 8).
func PutF64BE(b []byte, v float64) { PutI64BE(b, int64(math.Float64bits(v))) }

// GetF64BE reads a big-endian IEEE-754 float64 from b (len(b) must be >= 8).
func GetF64BE(b []byte) float64 { return math.Float64frombits(uint64(GetI64BE(b))) }
