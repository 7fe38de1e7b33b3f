// Package framecodec implements the streaming encoder and decoder for the
// hidden frame: the block loop, the endianness-flip cadence, the skip gap,
// and the password/length header layout described in spec.md §3 and §4.5/4.6.
// Both directions are pure io.Reader/io.Writer pipelines; they never open a
// file themselves.
package framecodec

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"stegocodec/bitops"
	"stegocodec/capacity"
	"stegocodec/scalarcodec"
	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

// Result codes, stable per spec.md §6.
const (
	EncodingSuccessful = 0
	DecodingSuccessful = 1
	InvalidPassword    = 2
)

const (
	passwordLenFieldBytes = scalarcodec.Uint32Size * 8 // 32 cover bytes
	payloadLenFieldBytes  = scalarcodec.Uint64Size * 8 // 64 cover bytes
	passwordFlagBitPos    = 0                          // fixed, independent of HiddenBitPosition — see spec.md §6
)

// AvailablePayloadLen clamps requested to however much payload is actually
// available from r, when r's remaining length can be determined cheaply
// (bytes.Reader, bytes.Buffer, *os.File). Otherwise it returns requested
// unchanged, trusting the caller. This mirrors the Java original's use of
// BufferedInputStream.available() to cap dataAmountToEncode before encoding.
func AvailablePayloadLen(r io.Reader, requested int64) int64 {
	switch v := r.(type) {
	case *bytes.Reader:
		if n := int64(v.Len()); n < requested {
			return n
		}
	case *bytes.Buffer:
		if n := int64(v.Len()); n < requested {
			return n
		}
	case *os.File:
		if info, err := v.Stat(); err == nil {
			if pos, err := v.Seek(0, io.SeekCurrent); err == nil {
				if remaining := info.Size() - pos; remaining < requested {
					return remaining
				}
			}
		}
	}
	return requested
}

// Encode reads cover (coverSize bytes long) and up to payloadLen bytes from
// payload, writing a stego stream of exactly coverSize bytes to dest. It
// returns EncodingSuccessful on success.
func Encode(cover io.Reader, coverSize int64, payload io.Reader, payloadLen int64, dest io.Writer, opts stegoptions.Options) (int, error) {
	payloadLen = AvailablePayloadLen(payload, payloadLen)

	if _, err := capacity.Validate(opts, payloadLen, coverSize); err != nil {
		return 0, err
	}

	coverReader := bufio.NewReader(cover)
	destWriter := bufio.NewWriter(dest)

	if err := copyBytes(coverReader, destWriter, opts.InitialOffset); err != nil {
		return 0, err
	}

	if err := encodePasswordFlagAndBody(coverReader, destWriter, opts); err != nil {
		return 0, err
	}

	if err := encodeScalarField(coverReader, destWriter, scalarcodec.PutUint64(uint64(payloadLen)), opts.HiddenBitPosition, opts.StartingEndian); err != nil {
		return 0, err
	}

	if err := encodePayloadBlocks(coverReader, payload, payloadLen, destWriter, opts); err != nil {
		return 0, err
	}

	if _, err := io.Copy(destWriter, coverReader); err != nil {
		return 0, stegerr.Wrap(stegerr.ErrIO, err)
	}

	if err := destWriter.Flush(); err != nil {
		return 0, stegerr.Wrap(stegerr.ErrIO, err)
	}

	return EncodingSuccessful, nil
}

// Decode reads a stego stream and writes the recovered payload to dest. It
// returns DecodingSuccessful, or InvalidPassword (with a nil error) when the
// password check fails, or an error for any other failure.
func Decode(stego io.Reader, dest io.Writer, opts stegoptions.Options) (int, error) {
	srcReader := bufio.NewReader(stego)
	destWriter := bufio.NewWriter(dest)

	if err := discardBytes(srcReader, opts.InitialOffset); err != nil {
		return 0, err
	}

	result, err := decodePasswordFlagAndBody(srcReader, opts)
	if err != nil {
		return 0, err
	}
	if result == InvalidPassword {
		return InvalidPassword, nil
	}

	payloadLenBytes, err := decodeScalarField(srcReader, payloadLenFieldBytes, opts.HiddenBitPosition, opts.StartingEndian)
	if err != nil {
		return 0, err
	}
	payloadLen, err := scalarcodec.Uint64(payloadLenBytes, 0)
	if err != nil {
		return 0, err
	}

	if err := decodePayloadBlocks(srcReader, int64(payloadLen), destWriter, opts); err != nil {
		return 0, err
	}

	if err := destWriter.Flush(); err != nil {
		return 0, stegerr.Wrap(stegerr.ErrIO, err)
	}

	return DecodingSuccessful, nil
}

// copyBytes copies exactly n bytes verbatim from r to w (the initialOffset
// prologue, and the trailing tail is copied separately via io.Copy).
func copyBytes(r *bufio.Reader, w *bufio.Writer, n int) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(w, r, int64(n)); err != nil {
		return stegerr.Wrap(stegerr.ErrIO, err)
	}
	return nil
}

// discardBytes skips exactly n bytes from r without writing them anywhere.
func discardBytes(r *bufio.Reader, n int) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
		return stegerr.Wrap(stegerr.ErrIO, err)
	}
	return nil
}

func encodePasswordFlagAndBody(r *bufio.Reader, w *bufio.Writer, opts stegoptions.Options) error {
	flagByte, err := r.ReadByte()
	if err != nil {
		return stegerr.Wrap(stegerr.ErrIO, err)
	}

	flagValue := byte(0)
	if opts.HasPassword() {
		flagValue = 1
	}

	newFlag, err := bitops.SetBit(flagByte, flagValue, passwordFlagBitPos)
	if err != nil {
		return err
	}
	if err := w.WriteByte(newFlag); err != nil {
		return stegerr.Wrap(stegerr.ErrIO, err)
	}

	if !opts.HasPassword() {
		return nil
	}

	if err := encodeScalarField(r, w, scalarcodec.PutUint32(uint32(len(opts.Password))), opts.HiddenBitPosition, opts.StartingEndian); err != nil {
		return err
	}

	return encodeByteField(r, w, opts.Password, opts.HiddenBitPosition, opts.StartingEndian)
}

func decodePasswordFlagAndBody(r *bufio.Reader, opts stegoptions.Options) (int, error) {
	flagByte, err := r.ReadByte()
	if err != nil {
		return 0, stegerr.Wrap(stegerr.ErrIO, err)
	}

	pwFlag, err := bitops.GetBit(flagByte, passwordFlagBitPos)
	if err != nil {
		return 0, err
	}

	hasPasswordOption := opts.HasPassword()
	if (pwFlag == 1) != hasPasswordOption {
		return InvalidPassword, nil
	}
	if pwFlag == 0 {
		return DecodingSuccessful, nil
	}

	pwLenBytes, err := decodeScalarField(r, passwordLenFieldBytes, opts.HiddenBitPosition, opts.StartingEndian)
	if err != nil {
		return 0, err
	}
	pwLen, err := scalarcodec.Uint32(pwLenBytes, 0)
	if err != nil {
		return 0, err
	}

	pwBytes, err := decodeByteField(r, int(pwLen), opts.HiddenBitPosition, opts.StartingEndian)
	if err != nil {
		return 0, err
	}

	if !bytes.Equal(pwBytes, opts.Password) {
		return InvalidPassword, nil
	}

	return DecodingSuccessful, nil
}

// encodeScalarField interleaves the already-serialized scalar bytes (4 or 8
// bytes) into len(scalarBytes)*8 cover bytes read from r, writing the result
// to w. Endianness never flips within a header field.
func encodeScalarField(r *bufio.Reader, w *bufio.Writer, scalarBytes []byte, pos int, endian bitops.Endian) error {
	return encodeByteField(r, w, scalarBytes, pos, endian)
}

func decodeScalarField(r *bufio.Reader, coverByteCount int, pos int, endian bitops.Endian) ([]byte, error) {
	return decodeByteField(r, coverByteCount/8, pos, endian)
}

func encodeByteField(r *bufio.Reader, w *bufio.Writer, data []byte, pos int, endian bitops.Endian) error {
	if len(data) == 0 {
		return nil
	}

	coverBuf := make([]byte, len(data)*8)
	n, err := io.ReadFull(r, coverBuf)
	if err != nil {
		return stegerr.Wrap(stegerr.ErrInsufficientBytes, err)
	}
	if n < len(coverBuf) {
		return stegerr.InsufficientBytesf("framecodec: short read filling header field")
	}

	if err := bitops.InterleaveInto(coverBuf, 0, data, 0, len(data)-1, pos, endian); err != nil {
		return err
	}

	if _, err := w.Write(coverBuf); err != nil {
		return stegerr.Wrap(stegerr.ErrIO, err)
	}

	return nil
}

func decodeByteField(r *bufio.Reader, byteCount int, pos int, endian bitops.Endian) ([]byte, error) {
	if byteCount == 0 {
		return []byte{}, nil
	}

	coverBuf := make([]byte, byteCount*8)
	n, err := io.ReadFull(r, coverBuf)
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrInsufficientBytes, err)
	}
	if n < len(coverBuf) {
		return nil, stegerr.InsufficientBytesf("framecodec: short read decoding header field")
	}

	return bitops.DeinterleaveFrom(coverBuf, 0, byteCount, pos, endian)
}

// encodePayloadBlocks runs the block loop described in spec.md §4.5 steps
// 6-7: it never reads the trailing byteSkipPerBlock region on the final
// block (see DESIGN.md's resolution of the §9 open question), so the bytes
// the capacity formula doesn't charge for are never consumed.
func encodePayloadBlocks(coverReader *bufio.Reader, payload io.Reader, payloadLen int64, destWriter *bufio.Writer, opts stegoptions.Options) error {
	endian := opts.StartingEndian
	blocksInWindow := 0
	var encoded int64

	dataBuf := make([]byte, opts.DataBlockSize)

	for encoded < payloadLen {
		remaining := payloadLen - encoded
		n := opts.DataBlockSize
		if int64(n) > remaining {
			n = int(remaining)
		}
		isFinalBlock := encoded+int64(n) >= payloadLen

		dataRead, derr := io.ReadFull(payload, dataBuf[:n])
		if dataRead == 0 {
			break
		}
		if derr != nil {
			if derr == io.ErrUnexpectedEOF || derr == io.EOF {
				n = dataRead
				isFinalBlock = true
			} else {
				return stegerr.Wrap(stegerr.ErrIO, derr)
			}
		}

		skip := opts.ByteSkipPerBlock
		if isFinalBlock {
			skip = 0
		}

		coverNeeded := n*8 + skip
		coverBuf := make([]byte, coverNeeded)
		coverRead, cerr := io.ReadFull(coverReader, coverBuf)
		if coverRead < n*8 {
			if cerr != nil {
				return stegerr.Wrap(stegerr.ErrInsufficientBytes, cerr)
			}
			return stegerr.InsufficientBytesf("framecodec: cover exhausted mid-block")
		}

		if err := bitops.InterleaveInto(coverBuf, 0, dataBuf[:n], 0, n-1, opts.HiddenBitPosition, endian); err != nil {
			return err
		}

		if _, err := destWriter.Write(coverBuf[:coverRead]); err != nil {
			return stegerr.Wrap(stegerr.ErrIO, err)
		}

		encoded += int64(n)
		blocksInWindow++
		if opts.EndianChangeFrequency > 0 && blocksInWindow == opts.EndianChangeFrequency {
			endian = endian.Flip()
			blocksInWindow = 0
		}
	}

	return nil
}

// decodePayloadBlocks runs the §4.6 step 6 block loop: for each block it
// attempts to read n*8+byteSkipPerBlock stego bytes, where n is
// min(dataBlockSize, remaining payload bytes), and tolerates a short final
// read, which the encoder's omission of the final skip produces when no
// cover tail follows the frame (see DESIGN.md).
func decodePayloadBlocks(srcReader *bufio.Reader, payloadLen int64, destWriter *bufio.Writer, opts stegoptions.Options) error {
	endian := opts.StartingEndian
	blocksInWindow := 0
	remaining := payloadLen

	blockBuf := make([]byte, opts.DataBlockSize*8+opts.ByteSkipPerBlock)

	for remaining > 0 {
		n := opts.DataBlockSize
		if int64(n) > remaining {
			n = int(remaining)
		}
		readLen := n*8 + opts.ByteSkipPerBlock

		actualRead, rerr := io.ReadFull(srcReader, blockBuf[:readLen])
		if actualRead == 0 {
			break
		}
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return stegerr.Wrap(stegerr.ErrIO, rerr)
		}

		fullBytes := actualRead / 8
		if fullBytes > n {
			fullBytes = n
		}
		if fullBytes == 0 {
			break
		}

		decoded, err := bitops.DeinterleaveFrom(blockBuf, 0, fullBytes, opts.HiddenBitPosition, endian)
		if err != nil {
			return err
		}
		if _, err := destWriter.Write(decoded); err != nil {
			return stegerr.Wrap(stegerr.ErrIO, err)
		}
		remaining -= int64(fullBytes)

		if fullBytes < n {
			break
		}

		blocksInWindow++
		if opts.EndianChangeFrequency > 0 && blocksInWindow == opts.EndianChangeFrequency {
			endian = endian.Flip()
			blocksInWindow = 0
		}
	}

	return nil
}
