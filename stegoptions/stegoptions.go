// Package stegoptions carries the tunable parameters of the LSB codec
// (StegOptions in the spec): the verbatim prologue offset, the skip gap
// between blocks, the block size, which cover bit carries a payload bit,
// the starting bit-stream endianness, the flip cadence, and the in-band
// password identifier. Values are validated at construction and on the
// mutators that can put them out of range.
package stegoptions

import (
	"stegocodec/bitops"
	"stegocodec/stegerr"
)

// Options is a deeply-copyable value type. Its zero value is not valid —
// use Default() or New().
type Options struct {
	InitialOffset         int
	ByteSkipPerBlock      int
	DataBlockSize         int
	HiddenBitPosition     int
	StartingEndian        bitops.Endian
	EndianChangeFrequency int
	Password              []byte
}

// Default returns the StegOptions default: no offset, no skip, one byte per
// block, bit 0, big-endian, no flipping, no password.
func Default() Options {
	return Options{
		InitialOffset:         0,
		ByteSkipPerBlock:      0,
		DataBlockSize:         1,
		HiddenBitPosition:     0,
		StartingEndian:        bitops.BigEndian,
		EndianChangeFrequency: 0,
		Password:              nil,
	}
}

// New builds a fully-parameterized Options, validating dataBlockSize and
// hiddenBitPosition.
func New(initialOffset, byteSkipPerBlock, dataBlockSize, hiddenBitPosition int, startingEndian bitops.Endian, endianChangeFrequency int, password []byte) (Options, error) {
	o := Options{
		InitialOffset:         initialOffset,
		ByteSkipPerBlock:      byteSkipPerBlock,
		DataBlockSize:         dataBlockSize,
		HiddenBitPosition:     hiddenBitPosition,
		StartingEndian:        startingEndian,
		EndianChangeFrequency: endianChangeFrequency,
		Password:              cloneBytes(password),
	}

	if err := o.Validate(); err != nil {
		return Options{}, err
	}

	return o, nil
}

// Validate reports whether o's invariants hold: DataBlockSize >= 1 and
// 0 <= HiddenBitPosition <= 7.
func (o Options) Validate() error {
	if o.DataBlockSize < 1 {
		return stegerr.Invalidf("stegoptions: dataBlockSize must be >= 1, got %d", o.DataBlockSize)
	}
	if o.HiddenBitPosition < 0 || o.HiddenBitPosition > 7 {
		return stegerr.Invalidf("stegoptions: hiddenBitPosition must be in 0..7, got %d", o.HiddenBitPosition)
	}
	return nil
}

// SetDataBlockSize validates and sets DataBlockSize.
func (o *Options) SetDataBlockSize(size int) error {
	if size < 1 {
		return stegerr.Invalidf("stegoptions: dataBlockSize must be >= 1, got %d", size)
	}
	o.DataBlockSize = size
	return nil
}

// SetHiddenBitPosition validates and sets HiddenBitPosition.
func (o *Options) SetHiddenBitPosition(pos int) error {
	if pos < 0 || pos > 7 {
		return stegerr.Invalidf("stegoptions: hiddenBitPosition must be in 0..7, got %d", pos)
	}
	o.HiddenBitPosition = pos
	return nil
}

// HasPassword reports whether a non-empty password identifier is set.
func (o Options) HasPassword() bool {
	return len(o.Password) > 0
}

// Clone returns a deep copy of o: the Password byte slice is not shared with
// the receiver, so mutating the clone (e.g. a container adapter bumping
// InitialOffset) never aliases the caller's Options.
func (o Options) Clone() Options {
	clone := o
	clone.Password = cloneBytes(o.Password)
	return clone
}

// WithInitialOffset returns a deep copy of o with InitialOffset increased by
// delta, the pattern every container adapter uses to reserve a fixed-size
// header without mutating the caller's Options.
func (o Options) WithInitialOffset(delta int) Options {
	clone := o.Clone()
	clone.InitialOffset += delta
	return clone
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
