package container

import (
	"bytes"
	"io"

	"github.com/go-audio/wav"

	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

// adaptWAV locates the start of the "data" chunk's sample bytes in a
// RIFF/WAVE file and advances InitialOffset past it, replacing the
// hardcoded 44-byte header skip with the real chunk offset (a WAV file
// carrying LIST/fact/cue chunks ahead of "data" has a prologue longer than
// 44 bytes).
func adaptWAV(cover []byte, opts stegoptions.Options) (stegoptions.Options, error) {
	r := bytes.NewReader(cover)
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return stegoptions.Options{}, stegerr.Invalidf("container: not a valid WAV file")
	}
	if err := d.FwdToPCM(); err != nil {
		return stegoptions.Options{}, stegerr.Wrap(stegerr.ErrInvalidArgument, err)
	}

	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return stegoptions.Options{}, stegerr.Wrap(stegerr.ErrIO, err)
	}

	return opts.WithInitialOffset(int(offset)), nil
}
