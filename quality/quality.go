// Package quality reports how much a stego file's audio samples diverge
// from its cover's, as a PSNR figure. This is informational only — the
// codec never refuses or adjusts an encode based on it (there is no
// cover-fidelity enforcement in this system; see spec.md's Non-goals).
package quality

import (
	"bytes"
	"math"
	"os"

	"github.com/bogem/id3v2"
	"github.com/go-audio/wav"

	"stegocodec/stegerr"
)

// Report is the outcome of a cover/stego PSNR comparison.
type Report struct {
	PSNRDecibels float64
	SampleCount  int
	Identical    bool
}

// ComparePCM computes the PSNR, in dB, between two equal-length byte
// slices, treating each byte as an 8-bit sample. It is format-agnostic:
// callers that already have raw PCM (or any other fixed-width sample
// stream) can call it directly.
func ComparePCM(original, stego []byte) (Report, error) {
	if len(original) != len(stego) {
		return Report{}, stegerr.Invalidf("quality: cover and stego sample counts differ: %d vs %d", len(original), len(stego))
	}
	if len(original) == 0 {
		return Report{}, stegerr.Invalidf("quality: empty sample data")
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return Report{PSNRDecibels: math.Inf(1), SampleCount: len(original), Identical: true}, nil
	}

	const maxSampleValue = 255.0
	psnr := 20 * math.Log10(maxSampleValue/math.Sqrt(mse))

	return Report{PSNRDecibels: psnr, SampleCount: len(original)}, nil
}

// CompareWAV decodes cover and stego as WAV files and compares their PCM
// sample streams. It is the entry point a caller holding two whole WAV
// files (rather than already-decoded PCM) should use.
func CompareWAV(cover, stego []byte) (Report, error) {
	coverPCM, err := decodePCM(cover)
	if err != nil {
		return Report{}, err
	}
	stegoPCM, err := decodePCM(stego)
	if err != nil {
		return Report{}, err
	}
	return ComparePCM(coverPCM, stegoPCM)
}

func decodePCM(wavData []byte) ([]byte, error) {
	d := wav.NewDecoder(bytes.NewReader(wavData))
	if !d.IsValidFile() {
		return nil, stegerr.Invalidf("quality: not a valid WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrInvalidArgument, err)
	}

	bytesPerSample := buf.SourceBitDepth / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}

	out := make([]byte, 0, len(buf.Data)*bytesPerSample)
	for _, sample := range buf.Data {
		for b := 0; b < bytesPerSample; b++ {
			out = append(out, byte(sample>>(8*b)))
		}
	}

	return out, nil
}

// Validate reports whether psnr meets or exceeds threshold. An infinite
// PSNR (identical signals) always passes.
func Validate(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}

// PreserveMP3Tags copies the common ID3v2 tags (title, artist, album,
// genre, year) from original onto stego and returns the re-tagged bytes.
// Embedding through the MP3 adapter starts after the tag and never touches it, so this is a
// best-effort convenience for cases where an adapter's offset computation
// still left the tag byte-identical but a caller wants it refreshed — it
// is never required for decode correctness.
func PreserveMP3Tags(original, stego []byte) ([]byte, error) {
	origFile, err := os.CreateTemp("", "stegocodec-orig-*.mp3")
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	defer os.Remove(origFile.Name())
	defer origFile.Close()

	stegoFile, err := os.CreateTemp("", "stegocodec-stego-*.mp3")
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	defer os.Remove(stegoFile.Name())
	defer stegoFile.Close()

	if _, err := origFile.Write(original); err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	if _, err := stegoFile.Write(stego); err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	origFile.Close()
	stegoFile.Close()

	origTag, err := id3v2.Open(origFile.Name(), id3v2.Options{Parse: true})
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	defer origTag.Close()

	stegoTag, err := id3v2.Open(stegoFile.Name(), id3v2.Options{Parse: true})
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}
	defer stegoTag.Close()

	stegoTag.SetTitle(origTag.Title())
	stegoTag.SetArtist(origTag.Artist())
	stegoTag.SetAlbum(origTag.Album())
	stegoTag.SetGenre(origTag.Genre())
	stegoTag.SetYear(origTag.Year())

	if err := stegoTag.Save(); err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}

	updated, err := os.ReadFile(stegoFile.Name())
	if err != nil {
		return nil, stegerr.Wrap(stegerr.ErrIO, err)
	}

	return updated, nil
}
