// Package track defines the immutable Track value that flows between the
// decoder, the track cache, and the track list.
package track

import "time"

// AudioSpec describes the physical layout of a decoded audio stream.
type AudioSpec struct {
	SampleRate    int
	NumChannels   int
	ChannelMask   uint32
	BitsPerSample int  // 0 when unknown
	HasDuration   bool
	Duration      time.Duration
}

// Metadata holds the descriptive tags extracted for a Track.
type Metadata struct {
	Title       string
	Album       string
	Artists     []string
	Genres      []string
	TrackNumber int // 0 when unknown
	Date        string
	Comments    []string
}

// Track is an immutable descriptor of one audio file, created once by the
// Decoder and shared by reference from the Track Cache into the Track List.
type Track struct {
	// Path is the canonical, symlink-resolved absolute file path. It is the
	// identity of a Track: two Tracks are equal iff their Paths are equal.
	Path string
	Spec AudioSpec
	Meta Metadata
}

// Equal compares Tracks by canonical path, per spec §4.1.
func (t *Track) Equal(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Path == other.Path
}

// Title returns the track title, falling back to the file's base name when
// no tag supplied one.
func (t *Track) Title() string {
	if t.Meta.Title != "" {
		return t.Meta.Title
	}
	return baseNameWithoutExt(t.Path)
}
