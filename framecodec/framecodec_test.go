package framecodec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stegocodec/bitops"
	"stegocodec/capacity"
	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

func allFF(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}

// TestEncodeSeedScenario1 mirrors spec.md §8 scenario 1: an all-0xFF 100-byte
// cover, payload 0x5A, default options. The flag byte (no password) clears
// bit 0 of cover[0]; the 64-cover-byte payload-length field (value 1)
// toggles bit 0 of cover[1..64] to the big-endian bits of 0x00*7,0x01; the
// single-byte payload block toggles bit 0 of cover[65..72] to 0x5A's bits;
// the remaining bytes are untouched.
func TestEncodeSeedScenario1(t *testing.T) {
	t.Parallel()

	cover := allFF(100)
	opts := stegoptions.Default()

	var dest bytes.Buffer
	result, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader([]byte{0x5A}), 1, &dest, opts)
	require.NoError(t, err)
	assert.Equal(t, EncodingSuccessful, result)

	stego := dest.Bytes()
	require.Len(t, stego, 100)

	assert.Equal(t, byte(0xFE), stego[0], "flag byte bit 0 cleared (no password)")

	for i := 1; i <= 56; i++ {
		assert.Equalf(t, byte(0xFE), stego[i], "payload-length high bytes are all-zero, index %d", i)
	}
	for i := 57; i <= 63; i++ {
		assert.Equalf(t, byte(0xFE), stego[i], "payload-length final byte 0x01, leading zero bits, index %d", i)
	}
	assert.Equal(t, byte(0xFF), stego[64], "payload-length final byte's bit 0 is 1")

	want := []byte{0xFE, 0xFF, 0xFE, 0xFF, 0xFF, 0xFE, 0xFF, 0xFE}
	assert.Equal(t, want, stego[65:73], "0x5A's bits toggle bit 0 of the 8 payload-block cover bytes")

	for i := 73; i < 100; i++ {
		assert.Equalf(t, byte(0xFF), stego[i], "bytes past the frame are untouched, index %d", i)
	}

	var recovered bytes.Buffer
	result, err = Decode(bytes.NewReader(stego), &recovered, opts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.Equal(t, []byte{0x5A}, recovered.Bytes())
}

// TestEncodeSeedScenario2 mirrors spec.md §8 scenario 2: a passworded,
// byte-skipping, flip-every-block encode of "ABC" round-trips with the
// matching password and returns InvalidPassword with a wrong one.
func TestEncodeSeedScenario2(t *testing.T) {
	t.Parallel()

	opts, err := stegoptions.New(7, 2, 3, 0, bitops.BigEndian, 1, []byte("ABC"))
	require.NoError(t, err)

	payload := []byte("ABC")
	breakdown := capacity.Compute(opts, int64(len(payload)), 0)
	cover := allFF(int(breakdown.TotalBytesRequired) + 50)

	var dest bytes.Buffer
	result, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	require.Equal(t, EncodingSuccessful, result)

	var recovered bytes.Buffer
	result, err = Decode(bytes.NewReader(dest.Bytes()), &recovered, opts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.Equal(t, payload, recovered.Bytes())

	wrongOpts, err := stegoptions.New(7, 2, 3, 0, bitops.BigEndian, 1, []byte("XYZ"))
	require.NoError(t, err)

	var garbled bytes.Buffer
	result, err = Decode(bytes.NewReader(dest.Bytes()), &garbled, wrongOpts)
	require.NoError(t, err)
	assert.Equal(t, InvalidPassword, result)
}

// TestEncodeSeedScenario3 mirrors spec.md §8 scenario 3: a million-byte
// random payload, 64-byte blocks, 16-byte skip, flip every 8 blocks, at the
// exact capacity boundary. The round-trip must be exact and the encode must
// consume precisely totalBytesRequired cover bytes (no more, no less).
func TestEncodeSeedScenario3(t *testing.T) {
	opts, err := stegoptions.New(0, 16, 64, 0, bitops.BigEndian, 8, nil)
	require.NoError(t, err)

	payload := make([]byte, 1_000_000)
	rng := rand.New(rand.NewSource(42))
	rng.Read(payload)

	breakdown := capacity.Compute(opts, int64(len(payload)), 0)
	cover := allFF(int(breakdown.TotalBytesRequired))

	coverReader := bytes.NewReader(cover)
	var dest bytes.Buffer
	result, err := Encode(coverReader, int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	require.Equal(t, EncodingSuccessful, result)
	assert.Equal(t, int64(len(cover)), coverReader.Size(), "cover reader was never re-sliced")
	assert.Equal(t, 0, coverReader.Len(), "every cover byte was consumed, matching totalBytesRequired exactly")

	var recovered bytes.Buffer
	result, err = Decode(bytes.NewReader(dest.Bytes()), &recovered, opts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.Equal(t, payload, recovered.Bytes())
}

// TestCapacityBoundary mirrors spec.md §8 scenario 5: exact-fit covers
// succeed, one byte short fails with InsufficientCapacity.
func TestCapacityBoundary(t *testing.T) {
	t.Parallel()

	opts := stegoptions.Default()
	payload := []byte("hello, world")

	breakdown := capacity.Compute(opts, int64(len(payload)), 0)
	exactCover := allFF(int(breakdown.TotalBytesRequired))

	var dest bytes.Buffer
	result, err := Encode(bytes.NewReader(exactCover), int64(len(exactCover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	assert.Equal(t, EncodingSuccessful, result)

	shortCover := exactCover[:len(exactCover)-1]
	_, err = Encode(bytes.NewReader(shortCover), int64(len(shortCover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, stegerr.ErrInsufficientCapacity)
}

// TestEndiannessSymmetry mirrors spec.md §8 scenario 6: encoding and
// decoding with matching LITTLE-endian, flip-every-3-blocks options
// round-trips exactly; decoding with BIG-endian instead yields some output
// without erroring, but not the original payload.
func TestEndiannessSymmetry(t *testing.T) {
	t.Parallel()

	opts, err := stegoptions.New(0, 0, 4, 0, bitops.LittleEndian, 3, nil)
	require.NoError(t, err)

	payload := []byte("the quick brown fox jumps over the lazy dog")
	breakdown := capacity.Compute(opts, int64(len(payload)), 0)
	cover := allFF(int(breakdown.TotalBytesRequired) + 10)

	var dest bytes.Buffer
	result, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	require.Equal(t, EncodingSuccessful, result)

	var recovered bytes.Buffer
	result, err = Decode(bytes.NewReader(dest.Bytes()), &recovered, opts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.Equal(t, payload, recovered.Bytes())

	bigOpts := opts
	bigOpts.StartingEndian = bitops.BigEndian

	var garbled bytes.Buffer
	result, err = Decode(bytes.NewReader(dest.Bytes()), &garbled, bigOpts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.NotEqual(t, payload, garbled.Bytes())
}

// TestLengthPreservation checks |stego| = |cover| for a successful encode.
func TestLengthPreservation(t *testing.T) {
	t.Parallel()

	opts := stegoptions.Default()
	cover := allFF(200)
	payload := []byte("payload")

	var dest bytes.Buffer
	_, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	assert.Len(t, dest.Bytes(), len(cover))
}

// TestPrefixInvariance checks the first initialOffset bytes of stego equal
// cover's.
func TestPrefixInvariance(t *testing.T) {
	t.Parallel()

	opts, err := stegoptions.New(10, 0, 1, 0, bitops.BigEndian, 0, nil)
	require.NoError(t, err)

	cover := allFF(200)
	for i := range cover[:10] {
		cover[i] = byte(i)
	}
	payload := []byte("x")

	var dest bytes.Buffer
	_, err = Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	assert.Equal(t, cover[:10], dest.Bytes()[:10])
}

// TestSuffixInvariance checks bytes beyond the hidden frame are untouched.
func TestSuffixInvariance(t *testing.T) {
	t.Parallel()

	opts := stegoptions.Default()
	payload := []byte("x")

	cover := allFF(200)
	for i := 150; i < 200; i++ {
		cover[i] = byte(i)
	}

	breakdown := capacity.Compute(opts, int64(len(payload)), 0)
	require.Less(t, breakdown.TotalBytesRequired, int64(150))

	var dest bytes.Buffer
	_, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)
	assert.Equal(t, cover[150:200], dest.Bytes()[150:200])
}

// TestBitIsolation checks that flipping a touched byte's untouched bits
// never changes the decoded payload.
func TestBitIsolation(t *testing.T) {
	t.Parallel()

	opts := stegoptions.Default()
	payload := []byte{0x5A}

	cover := allFF(100)
	var dest bytes.Buffer
	_, err := Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, opts)
	require.NoError(t, err)

	stego := dest.Bytes()
	for _, i := range []int{0, 5, 40, 70} {
		stego[i] ^= 0x80 // flip bit 7, never the hidden bit 0
	}

	var recovered bytes.Buffer
	result, err := Decode(bytes.NewReader(stego), &recovered, opts)
	require.NoError(t, err)
	assert.Equal(t, DecodingSuccessful, result)
	assert.Equal(t, payload, recovered.Bytes())
}

// TestPasswordDiscrimination checks empty-vs-nonempty password mismatches
// also surface as InvalidPassword.
func TestPasswordDiscrimination(t *testing.T) {
	t.Parallel()

	encodeOpts, err := stegoptions.New(0, 0, 1, 0, bitops.BigEndian, 0, []byte("pw"))
	require.NoError(t, err)

	payload := []byte("x")
	breakdown := capacity.Compute(encodeOpts, int64(len(payload)), 0)
	cover := allFF(int(breakdown.TotalBytesRequired) + 10)

	var dest bytes.Buffer
	_, err = Encode(bytes.NewReader(cover), int64(len(cover)), bytes.NewReader(payload), int64(len(payload)), &dest, encodeOpts)
	require.NoError(t, err)

	noPasswordOpts := stegoptions.Default()
	noPasswordOpts.InitialOffset = encodeOpts.InitialOffset

	var recovered bytes.Buffer
	result, err := Decode(bytes.NewReader(dest.Bytes()), &recovered, noPasswordOpts)
	require.NoError(t, err)
	assert.Equal(t, InvalidPassword, result)
}
