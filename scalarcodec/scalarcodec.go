// Package scalarcodec implements fixed-width big-endian serialization of the
// scalar types the frame header uses (32-bit and 64-bit integers, plus
// bit-preserving float32/float64 reinterpretation), with length-checked
// parsers. These are the building blocks the frame codec interleaves bit by
// bit: a scalar is first serialized to its 4 or 8 big-endian bytes, and
// those bytes are then fed through bitops.InterleaveInto.
package scalarcodec

import (
	"encoding/binary"
	"math"

	"stegocodec/stegerr"
)

// Uint32Size is the number of bytes a 32-bit scalar serializes to.
const Uint32Size = 4

// Uint64Size is the number of bytes a 64-bit scalar serializes to.
const Uint64Size = 8

// PutUint32 returns the 4-byte big-endian encoding of v.
func PutUint32(v uint32) []byte {
	b := make([]byte, Uint32Size)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// PutUint64 returns the 8-byte big-endian encoding of v.
func PutUint64(v uint64) []byte {
	b := make([]byte, Uint64Size)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// PutFloat32 returns the 4-byte big-endian encoding of v's IEEE-754 bit
// pattern.
func PutFloat32(v float32) []byte {
	return PutUint32(math.Float32bits(v))
}

// PutFloat64 returns the 8-byte big-endian encoding of v's IEEE-754 bit
// pattern.
func PutFloat64(v float64) []byte {
	return PutUint64(math.Float64bits(v))
}

// Uint32 parses a 4-byte big-endian integer from source starting at
// startIndex. source must have at least 4 bytes remaining from startIndex.
func Uint32(source []byte, startIndex int) (uint32, error) {
	if startIndex < 0 || len(source)-startIndex < Uint32Size {
		return 0, stegerr.InsufficientBytesf("scalarcodec: need %d bytes from index %d, have %d", Uint32Size, startIndex, len(source)-startIndex)
	}
	return binary.BigEndian.Uint32(source[startIndex : startIndex+Uint32Size]), nil
}

// Uint64 parses an 8-byte big-endian integer from source starting at
// startIndex. source must have at least 8 bytes remaining from startIndex.
func Uint64(source []byte, startIndex int) (uint64, error) {
	if startIndex < 0 || len(source)-startIndex < Uint64Size {
		return 0, stegerr.InsufficientBytesf("scalarcodec: need %d bytes from index %d, have %d", Uint64Size, startIndex, len(source)-startIndex)
	}
	return binary.BigEndian.Uint64(source[startIndex : startIndex+Uint64Size]), nil
}

// Float32 parses a 4-byte big-endian IEEE-754 float from source starting at
// startIndex.
func Float32(source []byte, startIndex int) (float32, error) {
	bits, err := Uint32(source, startIndex)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// Float64 parses an 8-byte big-endian IEEE-754 double from source starting
// at startIndex.
func Float64(source []byte, startIndex int) (float64, error) {
	bits, err := Uint64(source, startIndex)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
