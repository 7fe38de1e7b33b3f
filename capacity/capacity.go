// Package capacity implements the capacity-validation arithmetic: given a
// set of StegOptions and a payload length, it computes the exact number of
// cover bytes the hidden frame will require and reports a structured
// breakdown, so a caller can decide up front whether a cover file is big
// enough (and, if not, by how much it falls short).
package capacity

import "stegocodec/stegoptions"

// Breakdown is the computed result of a capacity check (EncodeValidation in
// the spec).
type Breakdown struct {
	NumberOfDataBlocks int64
	TotalByteSkip      int64
	PasswordSize       int64
	TotalBytesRequired int64
	CoverFileSize      int64
}

// Sufficient reports whether the cover file is large enough for
// TotalBytesRequired.
func (b Breakdown) Sufficient() bool {
	return b.CoverFileSize >= b.TotalBytesRequired
}

// Compute derives a Breakdown from opts, payloadLen, and coverFileSize. It
// never errors: an insufficient cover is reported via Sufficient(), not as
// an error, so callers that only want the numbers (e.g. a "how much room is
// left" UI) don't have to handle one.
func Compute(opts stegoptions.Options, payloadLen int64, coverFileSize int64) Breakdown {
	passwordSize := int64(1)
	if opts.HasPassword() {
		passwordSize = int64(len(opts.Password))*8 + 32
	}

	numberOfDataBlocks := numberOfBlocks(payloadLen, int64(opts.DataBlockSize))

	totalByteSkip := int64(0)
	if numberOfDataBlocks > 0 {
		totalByteSkip = (numberOfDataBlocks - 1) * int64(opts.ByteSkipPerBlock)
	}

	totalBytesRequired := payloadLen*8 + totalByteSkip + int64(opts.InitialOffset) + passwordSize + 64

	return Breakdown{
		NumberOfDataBlocks: numberOfDataBlocks,
		TotalByteSkip:      totalByteSkip,
		PasswordSize:       passwordSize,
		TotalBytesRequired: totalBytesRequired,
		CoverFileSize:      coverFileSize,
	}
}

// Validate is Compute followed by the InsufficientCapacity check §4.4
// mandates for an actual encode attempt.
func Validate(opts stegoptions.Options, payloadLen int64, coverFileSize int64) (Breakdown, error) {
	b := Compute(opts, payloadLen, coverFileSize)
	if !b.Sufficient() {
		return b, insufficientCapacityf(b)
	}
	return b, nil
}

// numberOfBlocks computes ceil(payloadLen/blockSize), defined as 0 when
// payloadLen is 0 (the Java original's (payloadLen-1)/blockSize+1 is
// undefined there — see DESIGN.md's "zero-length payload" note).
func numberOfBlocks(payloadLen, blockSize int64) int64 {
	if payloadLen <= 0 {
		return 0
	}
	return (payloadLen-1)/blockSize + 1
}
