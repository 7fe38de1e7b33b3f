package container

import (
	"bytes"

	"github.com/tosone/minimp3"

	"stegocodec/mp3parser"
	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

// adaptMP3 advances InitialOffset past the optional ID3v2 tag, so embedding
// never disturbs tag data. The first MPEG audio frame header must follow the
// tag directly; the offset lands on its sync word and embedding starts
// there, so frame headers are overwritten like any other cover byte and are
// not skipped. Unlike WAV, MP3 has no fixed-size header to hardcode — the
// tag, if present, is variable length.
func adaptMP3(cover []byte, opts stegoptions.Options) (stegoptions.Options, error) {
	dec, _, err := minimp3.DecodeFull(cover)
	if err != nil {
		return stegoptions.Options{}, stegerr.Invalidf("container: not a decodable MP3 stream: %v", err)
	}
	dec.Close()

	r := bytes.NewReader(cover)

	header, _, err := mp3parser.ReadID3v2(r)
	if err != nil {
		return stegoptions.Options{}, stegerr.Wrap(stegerr.ErrIO, err)
	}

	offset := 0
	if header != nil {
		offset = 10 + header.Size
	}

	if _, _, _, err := mp3parser.ReadFrameHeader(bytes.NewReader(cover[offset:])); err != nil {
		return stegoptions.Options{}, stegerr.Invalidf("container: no MPEG audio frame found at offset %d: %v", offset, err)
	}

	return opts.WithInitialOffset(offset), nil
}
