// Package mp3parser scans just enough of an MP3 stream for container.Adapt
// to locate the boundary between the non-audio prologue (an optional ID3v2
// tag) and the first MPEG audio frame. It does not decode audio and does
// not walk frame bodies.
package mp3parser

import (
	"encoding/binary"
	"fmt"
	"io"
)

func syncSafeToInt(b []byte) int {
	return int(b[0]&0x7F)<<21 |
		int(b[1]&0x7F)<<14 |
		int(b[2]&0x7F)<<7 |
		int(b[3]&0x7F)
}

// ReadID3v2 reads the leading ID3v2 header and tag data from r, if present.
// When no "ID3" magic is found, it seeks r back by 10 bytes (if r supports
// seeking) and returns a nil header with no error.
func ReadID3v2(r io.Reader) (*ID3v2Header, []byte, error) {
	buf := make([]byte, 10)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, err
	}
	if string(buf[:3]) != "ID3" {
		if seeker, ok := r.(io.Seeker); ok {
			seeker.Seek(-10, io.SeekCurrent)
		}
		return nil, nil, nil
	}

	h := &ID3v2Header{
		Version: [2]byte{buf[3], buf[4]},
		Flags:   buf[5],
		Size:    syncSafeToInt(buf[6:10]),
	}

	id3Data := make([]byte, h.Size)
	if _, err := io.ReadFull(r, id3Data); err != nil {
		return nil, nil, err
	}

	return h, id3Data, nil
}

// ReadFrameHeader reads and validates one MPEG audio frame header (MPEG-1
// Layer III only) from r and reads the frame's payload bytes, returning
// the decoded header alongside the raw header and frame data.
func ReadFrameHeader(r io.Reader) (*MP3FrameHeader, []byte, []byte, error) {
	headerBytes := make([]byte, 4)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, nil, err
	}
	header := binary.BigEndian.Uint32(headerBytes)

	if (header & 0xFFE00000) != 0xFFE00000 {
		return nil, nil, nil, fmt.Errorf("invalid sync word: 0x%08X", header)
	}

	versionID := int((header >> 19) & 0x3)
	layer := int((header >> 17) & 0x3)
	prot := ((header >> 16) & 0x1) == 0
	bitrateIdx := int((header >> 12) & 0xF)
	sampleRateIdx := int((header >> 10) & 0x3)
	padding := ((header >> 9) & 0x1) == 1
	channelMode := int((header >> 6) & 0x3)

	if versionID != 3 || layer != 1 {
		return nil, nil, nil, fmt.Errorf("unsupported MPEG version %d or layer %d", versionID, layer)
	}

	bitrateTable := [16]int{
		0, 32, 40, 48, 56, 64, 80, 96,
		112, 128, 160, 192, 224, 256, 320, 0,
	}
	sampleRateTable := [4]int{44100, 48000, 32000, 0}

	bitrate := bitrateTable[bitrateIdx] * 1000
	sampleRate := sampleRateTable[sampleRateIdx]
	if bitrate == 0 || sampleRate == 0 {
		return nil, nil, nil, fmt.Errorf("unsupported bitrate or samplerate")
	}

	frameLen := (144*bitrate)/sampleRate + btoi(padding)

	h := &MP3FrameHeader{
		VersionID:     versionID,
		Layer:         layer,
		ProtectionBit: prot,
		Bitrate:       bitrate,
		SampleRate:    sampleRate,
		Padding:       padding,
		ChannelMode:   channelMode,
		FrameLength:   frameLen,
	}

	data := make([]byte, frameLen-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, nil, err
	}

	return h, headerBytes, data, nil
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
