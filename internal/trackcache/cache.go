// Package trackcache implements the Track Cache (spec §4.6): a
// deduplicating, weakly-referenced store of loaded Tracks keyed by
// canonical path, plus directory expansion with deterministic sibling
// ordering.
package trackcache

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"weak"

	"github.com/DJ-Laser/homeslashmusic/internal/decoder"
	"github.com/DJ-Laser/homeslashmusic/internal/track"
)

// Cache deduplicates loaded Tracks by canonical path. It never keeps a
// Track alive by itself: once every strong reference held elsewhere (the
// Track List) is dropped, the entry is free to be collected, and the next
// lookup simply reloads it.
type Cache struct {
	// entries maps canonical path -> weak.Pointer[track.Track].
	entries sync.Map
}

// New returns an empty Cache, ready to use.
func New() *Cache {
	return &Cache{}
}

// LoadError pairs an input path with the reason it could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// GetOrLoad expands every input path (recursively, for directories),
// resolves each to a canonical file path, and returns the loaded Tracks in
// deterministic order alongside any per-path failures. A failure on one
// path never aborts the rest of the batch.
func (c *Cache) GetOrLoad(paths []string) ([]*track.Track, []LoadError) {
	var tracks []*track.Track
	var errs []LoadError

	for _, p := range paths {
		ts, es := c.expandAndLoad(p)
		tracks = append(tracks, ts...)
		errs = append(errs, es...)
	}

	return tracks, errs
}

func (c *Cache) expandAndLoad(path string) ([]*track.Track, []LoadError) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, []LoadError{{Path: path, Err: err}}
	}

	if !info.IsDir() {
		t, err := c.loadOne(path)
		if err != nil {
			return nil, []LoadError{{Path: path, Err: err}}
		}
		return []*track.Track{t}, nil
	}

	return c.walkDir(path)
}

// walkDir performs a bounded, explicit-stack pre-order traversal: all audio
// files directly within a directory are loaded and sibling-sorted before
// its subdirectories (visited in name order) are descended into, so the
// overall pre-order is preserved across the whole tree.
func (c *Cache) walkDir(root string) ([]*track.Track, []LoadError) {
	var tracks []*track.Track
	var errs []LoadError

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, LoadError{Path: dir, Err: err})
			continue
		}

		var files, subdirs []string
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				subdirs = append(subdirs, full)
			case decoder.IsSupported(full):
				files = append(files, full)
			}
		}

		siblings := make([]*track.Track, 0, len(files))
		for _, f := range files {
			t, err := c.loadOne(f)
			if err != nil {
				errs = append(errs, LoadError{Path: f, Err: err})
				continue
			}
			siblings = append(siblings, t)
		}
		sortSiblings(siblings)
		tracks = append(tracks, siblings...)

		sort.Strings(subdirs)
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return tracks, errs
}

// loadOne resolves path to its canonical form and upgrades the existing
// weak reference if one is still alive, otherwise probes the file fresh
// and stores a new weak reference.
func (c *Cache) loadOne(path string) (*track.Track, error) {
	canon, err := canonicalize(path)
	if err != nil {
		return nil, err
	}

	if v, ok := c.entries.Load(canon); ok {
		if t := v.(weak.Pointer[track.Track]).Value(); t != nil {
			return t, nil
		}
	}

	dec, t, err := decoder.Probe(canon)
	if err != nil {
		return nil, err
	}
	dec.Close()

	c.entries.Store(canon, weak.Make(t))
	return t, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// sortSiblings orders tracks within one directory level per spec §4.6:
// album ascending, track number ascending with unset (0) sorted last,
// title ascending with the file-stem fallback Track.Title already applies.
func sortSiblings(tracks []*track.Track) {
	const noTrackNumber = int(^uint(0) >> 1) // math.MaxInt, avoided to dodge an extra import

	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.Meta.Album != b.Meta.Album {
			return a.Meta.Album < b.Meta.Album
		}

		na, nb := a.Meta.TrackNumber, b.Meta.TrackNumber
		if na == 0 {
			na = noTrackNumber
		}
		if nb == 0 {
			nb = noTrackNumber
		}
		if na != nb {
			return na < nb
		}

		return a.Title() < b.Title()
	})
}
