//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/DJ-Laser/homeslashmusic/internal/metadata"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or an empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// embeddedArtCache maps a track path to the temp file URL its embedded
// cover was extracted to, or "" once a track has been checked and found to
// carry none, so the FLAC file is never re-parsed for the same track.
var embeddedArtCache sync.Map

// embeddedArtURL returns a file:// URL for trackPath's embedded cover
// picture, extracting it to a temp file on first use. Empty when the track
// carries no embedded picture the metadata package can read.
func embeddedArtURL(trackPath string) string {
	if v, ok := embeddedArtCache.Load(trackPath); ok {
		return v.(string)
	}

	url := extractEmbeddedArt(trackPath)
	embeddedArtCache.Store(trackPath, url)
	return url
}

func extractEmbeddedArt(trackPath string) string {
	mimeType, data, ok := metadata.EmbeddedArt(trackPath)
	if !ok {
		return ""
	}

	f, err := os.CreateTemp("", "homeslashmusic-art-*"+extensionForMIME(mimeType))
	if err != nil {
		return ""
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return ""
	}
	return "file://" + f.Name()
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
