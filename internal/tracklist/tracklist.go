// Package tracklist implements the Track List (spec §4.5): an ordered
// vector of Tracks plus a shuffle permutation over it, so that toggling
// shuffle never moves or copies the underlying Tracks themselves.
//
// Callers are expected to serialize access, the same way the Player serializes
// every other control-plane operation onto one logical thread.
package tracklist

import (
	"math/rand/v2"

	"github.com/DJ-Laser/homeslashmusic/internal/track"
)

// TrackList holds the underlying, insertion-ordered tracks and a
// permutation (shuffleIndices) describing play order. len(tracks) ==
// len(shuffleIndices) is an invariant checked at the start and end of
// every operation.
type TrackList struct {
	tracks         []*track.Track
	shuffleIndices []int
	shuffled       bool
}

// New returns an empty TrackList.
func New() *TrackList {
	return &TrackList{}
}

// Len returns the number of tracks currently held.
func (tl *TrackList) Len() int {
	tl.assertInvariant()
	return len(tl.tracks)
}

// Shuffled reports whether shuffle is currently enabled.
func (tl *TrackList) Shuffled() bool {
	return tl.shuffled
}

// InsertKind names the resolution rule spec §4.5 applies to an insertion.
type InsertKind int

const (
	// Absolute inserts at a clamped underlying index.
	Absolute InsertKind = iota
	// Next inserts immediately after the underlying track currently
	// playing, even when shuffle has reordered play order.
	Next
	// Start inserts at the very front of the underlying track list.
	Start
	// End appends to the very end of the underlying track list.
	End
	// Replace clears the list first, then inserts at index 0.
	Replace
)

// InsertPosition is the resolved-position argument to Insert.
type InsertPosition struct {
	Kind InsertKind
	// Index is only meaningful when Kind == Absolute.
	Index int
}

func AbsolutePosition(i int) InsertPosition { return InsertPosition{Kind: Absolute, Index: i} }
func NextPosition() InsertPosition           { return InsertPosition{Kind: Next} }
func StartPosition() InsertPosition          { return InsertPosition{Kind: Start} }
func EndPosition() InsertPosition            { return InsertPosition{Kind: End} }
func ReplacePosition() InsertPosition        { return InsertPosition{Kind: Replace} }

// Insert resolves position to an underlying insertion index j, splices
// newTracks into the underlying track list at j, then splices their freshly
// minted underlying indices into the shuffle permutation (randomly when
// shuffle is on, contiguously at j otherwise), and returns the adjusted
// current index. See spec §4.5 for the exact rules this follows.
func (tl *TrackList) Insert(currentIndex int, position InsertPosition, newTracks []*track.Track) (newCurrentIndex int) {
	tl.assertInvariant()
	defer tl.assertInvariant()

	if position.Kind == Replace {
		tl.tracks = nil
		tl.shuffleIndices = nil
		currentIndex = 0
	}

	n := len(tl.tracks)

	var j int
	switch position.Kind {
	case Absolute:
		j = clamp(position.Index, 0, n)
	case Start, Replace:
		j = 0
	case End:
		j = n
	case Next:
		if n == 0 {
			j = 0
		} else {
			j = tl.shuffleIndices[currentIndex] + 1
		}
	}

	newCurrentIndex = currentIndex

	tl.tracks = spliceTracks(tl.tracks, j, newTracks)

	for i := range tl.shuffleIndices {
		if tl.shuffleIndices[i] >= j {
			tl.shuffleIndices[i] += len(newTracks)
		}
	}

	mintedIndices := make([]int, len(newTracks))
	for i := range newTracks {
		mintedIndices[i] = j + i
	}

	if tl.shuffled {
		for _, u := range mintedIndices {
			pos := rand.IntN(len(tl.shuffleIndices) + 1)
			tl.shuffleIndices = spliceInts(tl.shuffleIndices, pos, []int{u})
			if n > 0 && pos <= newCurrentIndex {
				newCurrentIndex++
			}
		}
	} else {
		tl.shuffleIndices = spliceInts(tl.shuffleIndices, j, mintedIndices)
		if n > 0 && j <= currentIndex {
			newCurrentIndex += len(newTracks)
		}
	}

	if position.Kind == Replace {
		newCurrentIndex = 0
	}

	return newCurrentIndex
}

// SetShuffle turns shuffling on or off. Turning on relocates the currently
// playing underlying track to shuffle position 0 and returns 0; turning off
// resets the permutation to the identity and returns the underlying index
// the caller was at, so the Player can keep pointing at the same track.
func (tl *TrackList) SetShuffle(on bool, currentIndex int) (newCurrentIndex int) {
	tl.assertInvariant()
	defer tl.assertInvariant()

	if len(tl.shuffleIndices) == 0 {
		tl.shuffled = on
		return 0
	}

	u := tl.shuffleIndices[currentIndex]

	if on {
		rand.Shuffle(len(tl.shuffleIndices), func(i, j int) {
			tl.shuffleIndices[i], tl.shuffleIndices[j] = tl.shuffleIndices[j], tl.shuffleIndices[i]
		})
		pos := indexOf(tl.shuffleIndices, u)
		tl.shuffleIndices[0], tl.shuffleIndices[pos] = tl.shuffleIndices[pos], tl.shuffleIndices[0]
		tl.shuffled = true
		return 0
	}

	tl.shuffleIndices = identity(len(tl.tracks))
	tl.shuffled = false
	return u
}

// Clear empties the track list. The shuffle preference itself is sticky:
// it is not reset, so tracks inserted afterward splice in shuffled order if
// shuffle was already on.
func (tl *TrackList) Clear() {
	tl.tracks = nil
	tl.shuffleIndices = nil
}

// GetTracksToQueue returns the track at currentIndex (in play order) and,
// if one exists, the next one after it — the preload pair the Controlled
// Source and Output Source are armed with.
func (tl *TrackList) GetTracksToQueue(currentIndex int) (current, next *track.Track, ok bool) {
	tl.assertInvariant()

	if currentIndex < 0 || currentIndex >= len(tl.shuffleIndices) {
		return nil, nil, false
	}

	current = tl.tracks[tl.shuffleIndices[currentIndex]]
	if currentIndex+1 < len(tl.shuffleIndices) {
		next = tl.tracks[tl.shuffleIndices[currentIndex+1]]
	}
	return current, next, true
}

// OrderedTracks returns every track in current play order, for reporting
// the track list back to a client.
func (tl *TrackList) OrderedTracks() []*track.Track {
	tl.assertInvariant()

	out := make([]*track.Track, len(tl.shuffleIndices))
	for i, u := range tl.shuffleIndices {
		out[i] = tl.tracks[u]
	}
	return out
}

// Snapshot returns the underlying tracks (insertion order) and a copy of
// the shuffle permutation, for reporting the raw Track List state to a
// client (spec §4.8 QueryTrackList).
func (tl *TrackList) Snapshot() (tracks []*track.Track, shuffleIndices []int) {
	tl.assertInvariant()

	tracks = make([]*track.Track, len(tl.tracks))
	copy(tracks, tl.tracks)
	shuffleIndices = make([]int, len(tl.shuffleIndices))
	copy(shuffleIndices, tl.shuffleIndices)
	return tracks, shuffleIndices
}

func (tl *TrackList) assertInvariant() {
	if len(tl.tracks) != len(tl.shuffleIndices) {
		panic("tracklist: track list and shuffle index length diverged")
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func spliceTracks(xs []*track.Track, at int, ins []*track.Track) []*track.Track {
	out := make([]*track.Track, 0, len(xs)+len(ins))
	out = append(out, xs[:at]...)
	out = append(out, ins...)
	out = append(out, xs[at:]...)
	return out
}

func spliceInts(xs []int, at int, ins []int) []int {
	out := make([]int, 0, len(xs)+len(ins))
	out = append(out, xs[:at]...)
	out = append(out, ins...)
	out = append(out, xs[at:]...)
	return out
}
