// Package decoder implements the Decoder component of the player core
// (spec §4.2): given a canonical file path, probe its container, pick the
// first audio stream whose codec is supported, and expose a lazy sample
// sequence plus a time-based seek.
package decoder

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/DJ-Laser/homeslashmusic/internal/metadata"
	"github.com/DJ-Laser/homeslashmusic/internal/track"
)

// Decoder is a positioned, seekable sample source for a single track. It is
// the contract the Controlled Source (internal/source) wraps.
type Decoder interface {
	beep.Streamer

	// TrySeek clamps target to [0, total duration] when known, performs a
	// "seek to nearest keyframe then fast-forward to exact sample-aligned
	// position" seek, and returns the resulting position. The currently
	// active channel within an interleaved frame is preserved.
	TrySeek(target time.Duration) (time.Duration, error)

	// Position returns the last-decoded playback offset.
	Position() time.Duration

	// Format reports the stream's native sample rate and channel count.
	Format() beep.Format

	// TotalDuration reports the stream's total duration, when known.
	TotalDuration() (time.Duration, bool)

	// Close releases the underlying file handle.
	Close() error
}

// extDecoders maps a lowercased file extension to the constructor that
// probes it. Populated by each format's init() so adding a codec never
// requires touching this file (mirrors how player.go gates on a small
// extension switch, generalized to an open registry).
var extDecoders = map[string]func(path string, f *os.File) (Decoder, error){}

func registerExt(ext string, ctor func(path string, f *os.File) (Decoder, error)) {
	extDecoders[ext] = ctor
}

// Probe opens path, picks a decoder for its container/codec, and returns a
// ready Decoder positioned at the start of the stream along with the Track
// this file describes. Errors are CodecNotSupported, *OpenError, or
// *ProbeError per spec §4.2.
func Probe(path string) (Decoder, *track.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &OpenError{Path: path, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	ctor, ok := extDecoders[ext]
	if !ok {
		f.Close()
		return nil, nil, ErrCodecNotSupported
	}

	dec, err := ctor(path, f)
	if err != nil {
		f.Close()
		return nil, nil, &ProbeError{Path: path, Err: err}
	}

	meta, _ := metadata.Read(path)

	spec := track.AudioSpec{
		SampleRate:  int(dec.Format().SampleRate),
		NumChannels: dec.Format().NumChannels,
	}
	if bd := dec.Format().Precision * 8; bd > 0 {
		spec.BitsPerSample = bd
	}
	if d, ok := dec.TotalDuration(); ok {
		spec.HasDuration = true
		spec.Duration = d
	}

	t := &track.Track{Path: path, Spec: spec}
	if meta != nil {
		t.Meta = *meta
	}

	return dec, t, nil
}

// SupportedExtensions reports the file extensions (including the leading
// dot) that Probe can open. The Track Cache's directory expansion uses
// IsSupported, not this list, to skip non-audio files.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extDecoders))
	for ext := range extDecoders {
		exts = append(exts, ext)
	}
	return exts
}

// IsSupported reports whether path's extension names a registered decoder.
func IsSupported(path string) bool {
	_, ok := extDecoders[strings.ToLower(filepath.Ext(path))]
	return ok
}
