// Package metadata extracts descriptive tags for an audio file. It layers
// several libraries so that a file missing one tag format still yields a
// usable Track.Metadata: go.senan.xyz/taglib covers the common containers,
// dhowden/tag backs it up, id3v2 reads basic ID3v2 text frames, and the
// go-flac family reads native FLAC Vorbis comment and picture blocks.
package metadata

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	taglib "go.senan.xyz/taglib"

	"github.com/DJ-Laser/homeslashmusic/internal/track"
)

// Read extracts metadata for path, trying taglib first and falling back to
// format-specific readers. It never fails the caller: when every reader
// errors, it returns a zero Metadata so the Track still has a title derived
// from its file name.
func Read(path string) (*track.Metadata, error) {
	if m, err := readTaglib(path); err == nil {
		return m, nil
	}

	if m, err := readDhowden(path); err == nil {
		return m, nil
	}

	if strings.EqualFold(ext(path), ".flac") {
		if m, err := readFLACNative(path); err == nil {
			return m, nil
		}
	}

	if strings.EqualFold(ext(path), ".mp3") {
		if m, err := readID3v2(path); err == nil {
			return m, nil
		}
	}

	return &track.Metadata{}, nil
}

func ext(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}

func readTaglib(path string) (*track.Metadata, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}

	m := &track.Metadata{
		Title:   first(tags[taglib.Title]),
		Album:   first(tags[taglib.Album]),
		Artists: tags[taglib.Artist],
		Genres:  tags[taglib.Genre],
		Date:    first(tags[taglib.Date]),
	}
	if n := first(tags[taglib.TrackNumber]); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			m.TrackNumber = v
		}
	}
	if c := tags[taglib.Comment]; len(c) > 0 {
		m.Comments = c
	}

	return m, nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func readDhowden(path string) (*track.Metadata, error) {
	f, err := openForRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	m := &track.Metadata{
		Title: md.Title(),
		Album: md.Album(),
		Date:  md.Year4Digit(),
	}
	if md.Artist() != "" {
		m.Artists = []string{md.Artist()}
	}
	if md.Genre() != "" {
		m.Genres = []string{md.Genre()}
	}
	track_, _ := md.Track()
	m.TrackNumber = track_

	return m, nil
}

// readID3v2 reads the basic ID3v2 text frames (title, album, year, artist,
// genre, track number) through id3v2, for MP3 files taglib and dhowden/tag
// both fail on. TXXX/UFID custom frames are not read, and artist and genre
// each yield at most one value.
func readID3v2(path string) (*track.Metadata, error) {
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tg.Close()

	m := &track.Metadata{
		Title: tg.Title(),
		Album: tg.Album(),
		Date:  tg.Year(),
	}
	if tg.Artist() != "" {
		m.Artists = []string{tg.Artist()}
	}
	if tg.Genre() != "" {
		m.Genres = []string{tg.Genre()}
	}
	if trck := tg.GetTextFrame("TRCK").Text; trck != "" {
		if n, _, ok := strings.Cut(trck, "/"); ok {
			trck = n
		}
		if v, err := strconv.Atoi(trck); err == nil {
			m.TrackNumber = v
		}
	}

	return m, nil
}

// readFLACNative reads the Vorbis comment block embedded in a native FLAC
// file, for files whose comments taglib and dhowden/tag both choke on.
func readFLACNative(path string) (*track.Metadata, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, err
		}

		m := &track.Metadata{}
		if vals, err := cmt.Get(flacvorbis.FIELD_TITLE); err == nil && len(vals) > 0 {
			m.Title = vals[0]
		}
		if vals, err := cmt.Get(flacvorbis.FIELD_ALBUM); err == nil && len(vals) > 0 {
			m.Album = vals[0]
		}
		if vals, err := cmt.Get(flacvorbis.FIELD_ARTIST); err == nil {
			m.Artists = vals
		}
		if vals, err := cmt.Get("GENRE"); err == nil {
			m.Genres = vals
		}
		if vals, err := cmt.Get(flacvorbis.FIELD_DATE); err == nil && len(vals) > 0 {
			m.Date = vals[0]
		}
		if vals, err := cmt.Get(flacvorbis.FIELD_TRACKNUMBER); err == nil && len(vals) > 0 {
			if v, err := strconv.Atoi(vals[0]); err == nil {
				m.TrackNumber = v
			}
		}
		return m, nil
	}

	return nil, errNoVorbisComment
}

// EmbeddedArt returns the front-cover picture embedded in a native FLAC
// file's METADATA_BLOCK_PICTURE, if present. Most taggers only ever embed
// one; the first readable picture block wins.
func EmbeddedArt(path string) (mimeType string, data []byte, ok bool) {
	if !strings.EqualFold(ext(path), ".flac") {
		return "", nil, false
	}

	f, err := flac.ParseFile(path)
	if err != nil {
		return "", nil, false
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil || len(pic.ImageData) == 0 {
			continue
		}
		return pic.MIME, pic.ImageData, true
	}

	return "", nil, false
}
