package trackcache

import (
	"testing"

	"github.com/DJ-Laser/homeslashmusic/internal/track"
)

func TestSortSiblingsOrdersByAlbumThenTrackThenTitle(t *testing.T) {
	mk := func(album string, num int, title string) *track.Track {
		return &track.Track{
			Path: "/music/" + title + ".flac",
			Meta: track.Metadata{Album: album, TrackNumber: num, Title: title},
		}
	}

	tracks := []*track.Track{
		mk("B", 1, "B1"),
		mk("A", 2, "A2"),
		mk("A", 0, "AUnnumbered"),
		mk("A", 1, "A1"),
	}

	sortSiblings(tracks)

	want := []string{"A1", "A2", "AUnnumbered", "B1"}
	for i, w := range want {
		if got := tracks[i].Title(); got != w {
			t.Fatalf("position %d: got %q, want %q", i, got, w)
		}
	}
}

func TestSortSiblingsFallsBackToFileStemTitle(t *testing.T) {
	a := &track.Track{Path: "/music/02 Second.flac"}
	b := &track.Track{Path: "/music/01 First.flac"}

	tracks := []*track.Track{a, b}
	sortSiblings(tracks)

	if tracks[0] != b || tracks[1] != a {
		t.Fatal("expected file-stem fallback to order '01 First' before '02 Second'")
	}
}

func TestGetOrLoadMissingPathReportsError(t *testing.T) {
	c := New()
	tracks, errs := c.GetOrLoad([]string{"/nonexistent/path/track.mp3"})

	if len(tracks) != 0 {
		t.Fatalf("expected no tracks, got %d", len(tracks))
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
}

func TestGetOrLoadPartialFailureDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	c := New()

	tracks, errs := c.GetOrLoad([]string{
		"/nonexistent/a.mp3",
		dir, // empty directory: no files, no error
	})

	if len(tracks) != 0 {
		t.Fatalf("expected no tracks from an empty directory, got %d", len(tracks))
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error from the missing path, got %d", len(errs))
	}
}
