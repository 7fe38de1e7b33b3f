// Package container implements §4.8 Container Adapter: thin shims that
// compute the size of a container family's non-audio prologue and fold it
// into a StegOptions' InitialOffset, so the core codec never has to know
// about RIFF chunks or ID3v2 tags. Each adapter clones the caller's
// Options (stegoptions.Options.WithInitialOffset) rather than mutating it.
package container

import (
	"stegocodec/stegerr"
	"stegocodec/stegoptions"
)

// Kind identifies a supported container family.
type Kind int

const (
	// Raw is no container at all: the cover bytes are the audio/data
	// bytes from byte 0, so the adapter is a no-op.
	Raw Kind = iota
	// WAV is a RIFF/WAVE file; the adapter locates the "data" chunk.
	WAV
	// MP3 is an MPEG audio file, optionally ID3v2-tagged; the adapter
	// locates the first audio frame.
	MP3
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case WAV:
		return "wav"
	case MP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Adapt dispatches to the adapter for kind and returns opts with
// InitialOffset advanced past kind's non-audio prologue. cover must hold
// the entire cover file (adapters need to seek within it to parse chunk
// headers).
func Adapt(kind Kind, cover []byte, opts stegoptions.Options) (stegoptions.Options, error) {
	switch kind {
	case Raw:
		return opts, nil
	case WAV:
		return adaptWAV(cover, opts)
	case MP3:
		return adaptMP3(cover, opts)
	default:
		return stegoptions.Options{}, stegerr.Invalidf("container: unknown container kind %d", kind)
	}
}
