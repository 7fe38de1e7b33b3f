// Package fragment implements the fragmentation mode: splitting one payload
// stream across several cover files in a declared order (encode), and
// recombining the recovered slices back into a single stream in that same
// order (decode). It drives framecodec once per entry; it never touches
// bits itself.
package fragment

import (
	"io"

	"stegocodec/framecodec"
	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

// EncodeEntry is one (cover, destination, slice length, options) tuple in
// an ordered multi-cover encode plan (MultiEncodeSteg in the spec).
type EncodeEntry struct {
	Cover              io.Reader
	CoverSize          int64
	Destination        io.Writer
	DataAmountToEncode int64
	Options            stegoptions.Options
}

// DecodeEntry is one (encoded stream, options) pair in an ordered
// multi-cover decode plan (MultiDecodeSteg in the spec).
type DecodeEntry struct {
	Encoded io.Reader
	Options stegoptions.Options
}

// EncodeAll splits payload across entries in order: entry i consumes
// exactly min(entries[i].DataAmountToEncode, bytes remaining in payload)
// bytes, read from the shared payload stream so its read position advances
// naturally from one entry to the next. The sum of DataAmountToEncode must
// not exceed payloadSize, or EncodeAll fails with InvalidArgument before
// encoding anything.
func EncodeAll(entries []EncodeEntry, payload io.Reader, payloadSize int64) (int, error) {
	var total int64
	for _, e := range entries {
		total += e.DataAmountToEncode
	}
	if total > payloadSize {
		return 0, stegerr.Invalidf("fragment: total dataAmountToEncode %d exceeds payload size %d", total, payloadSize)
	}

	for _, e := range entries {
		if _, err := framecodec.Encode(e.Cover, e.CoverSize, payload, e.DataAmountToEncode, e.Destination, e.Options); err != nil {
			return 0, err
		}
	}

	return framecodec.EncodingSuccessful, nil
}

// DecodeAll decodes each entry in order, appending recovered payload bytes
// to destination. It short-circuits on the first InvalidPassword result,
// returning it without processing the remaining entries.
func DecodeAll(entries []DecodeEntry, destination io.Writer) (int, error) {
	for _, e := range entries {
		result, err := framecodec.Decode(e.Encoded, destination, e.Options)
		if err != nil {
			return 0, err
		}
		if result == framecodec.InvalidPassword {
			return framecodec.InvalidPassword, nil
		}
	}

	return framecodec.DecodingSuccessful, nil
}
