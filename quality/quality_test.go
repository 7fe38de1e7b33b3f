package quality

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePCMIdentical(t *testing.T) {
	t.Parallel()

	samples := []byte{1, 2, 3, 4, 5}
	report, err := ComparePCM(samples, samples)
	require.NoError(t, err)
	assert.True(t, report.Identical)
	assert.True(t, math.IsInf(report.PSNRDecibels, 1))
	assert.Equal(t, len(samples), report.SampleCount)
}

func TestComparePCMDiffering(t *testing.T) {
	t.Parallel()

	original := []byte{100, 100, 100, 100}
	stego := []byte{101, 100, 99, 100}

	report, err := ComparePCM(original, stego)
	require.NoError(t, err)
	assert.False(t, report.Identical)
	assert.Greater(t, report.PSNRDecibels, 0.0)
	assert.False(t, math.IsInf(report.PSNRDecibels, 1))
}

func TestComparePCMRejectsMismatchedLength(t *testing.T) {
	t.Parallel()

	_, err := ComparePCM([]byte{1, 2, 3}, []byte{1, 2})
	assert.Error(t, err)
}

func TestComparePCMRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := ComparePCM(nil, nil)
	assert.Error(t, err)
}

func TestValidateThreshold(t *testing.T) {
	t.Parallel()

	assert.True(t, Validate(math.Inf(1), 40))
	assert.True(t, Validate(45, 40))
	assert.True(t, Validate(40, 40))
	assert.False(t, Validate(39.9, 40))
}

func buildMinimalWAV(data []byte) []byte {
	var fmtChunk [16]byte
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 8000)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], 8000)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 1)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 8)

	buf := make([]byte, 0, 44+len(data))
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = append(buf, fmtChunk[:]...)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)

	return buf
}

func TestCompareWAVIdenticalFiles(t *testing.T) {
	t.Parallel()

	data := []byte{10, 20, 30, 40, 50}
	wavBytes := buildMinimalWAV(data)

	report, err := CompareWAV(wavBytes, wavBytes)
	require.NoError(t, err)
	assert.True(t, report.Identical)
}

func TestCompareWAVDifferingFiles(t *testing.T) {
	t.Parallel()

	cover := buildMinimalWAV([]byte{10, 20, 30, 40, 50})
	stego := buildMinimalWAV([]byte{11, 20, 30, 40, 51})

	report, err := CompareWAV(cover, stego)
	require.NoError(t, err)
	assert.False(t, report.Identical)
	assert.True(t, report.PSNRDecibels > 0)
}

func TestCompareWAVRejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := CompareWAV([]byte("not a wav"), []byte("not a wav"))
	assert.Error(t, err)
}
