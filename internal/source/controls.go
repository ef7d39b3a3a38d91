// Package source implements the audio-plane half of the player: the
// Controlled Source that mediates a single decoder against shared control
// state (spec §4.3), and the Output Source that splices successive
// controlled sources together gaplessly (spec §4.4).
package source

import (
	"sync"
	"sync/atomic"
	"time"
)

// PlaybackState mirrors spec §3's {Playing, Paused, Stopped}.
type PlaybackState int32

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// LoopMode mirrors spec §3's {None, Track, Playlist}.
type LoopMode int32

const (
	LoopNone LoopMode = iota
	LoopTrack
	LoopPlaylist
)

func (m LoopMode) String() string {
	switch m {
	case LoopTrack:
		return "Track"
	case LoopPlaylist:
		return "Playlist"
	default:
		return "None"
	}
}

// QueueStateKind is the Source Queue State tag of spec §3.
type QueueStateKind int32

const (
	QueueNone QueueStateKind = iota
	QueueQueued
	QueuePlaying
)

// QueueState is the single-slot handoff from control plane to audio
// thread: nothing armed, a decoded source armed and ready, or that source
// now actively producing samples.
type QueueState struct {
	Kind   QueueStateKind
	Source *ControlledSource
}

// SeekRequestKind names how a seek target is expressed relative to the
// current position.
type SeekRequestKind int

const (
	SeekTo SeekRequestKind = iota
	SeekForward
	SeekBackward
)

// SeekRequest is the Pending Seek payload, consumed by the next read-back.
type SeekRequest struct {
	Kind   SeekRequestKind
	Amount time.Duration // interpreted per Kind: absolute target for SeekTo, delta otherwise
}

// SeekOutcome is sent back on a seek's reply channel once the controlled
// source has attempted it.
type SeekOutcome struct {
	Position time.Duration
	Err      error
}

type pendingSeek struct {
	request SeekRequest
	reply   chan<- SeekOutcome
}

// Controls is the shared state board the control plane writes and the
// audio thread reads back on its periodic tick. Every field here is either
// a lock-free atomic or guarded by a short-lived mutex, so the audio thread
// never blocks for more than the duration of a memory copy.
type Controls struct {
	playbackState atomic.Int32
	loopMode      atomic.Int32
	shuffle       atomic.Bool
	currentIndex  atomic.Int64
	skipCounter   atomic.Int64

	volMu  sync.Mutex
	volume float64

	posMu    sync.Mutex
	position time.Duration

	seekMu sync.Mutex
	seek   *pendingSeek

	queueMu sync.Mutex
	queue   QueueState

	// preload is the gapless hand-off slot: the already-decoded source for
	// whatever comes after the current one, installed ahead of time so the
	// Output Source can splice it in the instant the current child
	// exhausts. It is a second, independent one-slot field rather than a
	// third QueueState tag, because "armed, about to start" (QueueState)
	// and "armed, to follow whatever is already playing" (preload) can be
	// true at the same time and a single combined slot cannot represent
	// both simultaneously.
	preloadMu sync.Mutex
	preload   *ControlledSource
}

// NewControls returns a Controls with volume 1.0 and every other field at
// its zero value (Stopped, LoopNone, shuffle off, Source Queue State None).
func NewControls() *Controls {
	c := &Controls{volume: 1.0}
	return c
}

func (c *Controls) PlaybackState() PlaybackState {
	return PlaybackState(c.playbackState.Load())
}

func (c *Controls) SetPlaybackState(s PlaybackState) {
	c.playbackState.Store(int32(s))
}

func (c *Controls) LoopMode() LoopMode {
	return LoopMode(c.loopMode.Load())
}

func (c *Controls) SetLoopMode(m LoopMode) {
	c.loopMode.Store(int32(m))
}

func (c *Controls) Shuffle() bool {
	return c.shuffle.Load()
}

func (c *Controls) SetShuffle(on bool) {
	c.shuffle.Store(on)
}

func (c *Controls) CurrentIndex() int {
	return int(c.currentIndex.Load())
}

func (c *Controls) SetCurrentIndex(i int) {
	c.currentIndex.Store(int64(i))
}

// BumpSkip increments the skip counter, causing the controlled source
// wrapping whatever is currently playing to terminate on its next
// read-back.
func (c *Controls) BumpSkip() {
	c.skipCounter.Add(1)
}

// TakeSkip decrements the skip counter if it is positive and reports
// whether a skip was consumed.
func (c *Controls) TakeSkip() bool {
	for {
		cur := c.skipCounter.Load()
		if cur <= 0 {
			return false
		}
		if c.skipCounter.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

func (c *Controls) Volume() float64 {
	c.volMu.Lock()
	defer c.volMu.Unlock()
	return c.volume
}

func (c *Controls) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volMu.Lock()
	c.volume = v
	c.volMu.Unlock()
}

func (c *Controls) Position() time.Duration {
	c.posMu.Lock()
	defer c.posMu.Unlock()
	return c.position
}

func (c *Controls) SetPosition(d time.Duration) {
	c.posMu.Lock()
	c.position = d
	c.posMu.Unlock()
}

// SetPendingSeek arms a seek to be performed on the next read-back and
// returns the channel its outcome will be delivered on.
func (c *Controls) SetPendingSeek(req SeekRequest) <-chan SeekOutcome {
	reply := make(chan SeekOutcome, 1)
	c.seekMu.Lock()
	c.seek = &pendingSeek{request: req, reply: reply}
	c.seekMu.Unlock()
	return reply
}

// TakePendingSeek consumes the pending seek, if any.
func (c *Controls) TakePendingSeek() (SeekRequest, chan<- SeekOutcome, bool) {
	c.seekMu.Lock()
	defer c.seekMu.Unlock()
	if c.seek == nil {
		return SeekRequest{}, nil, false
	}
	s := c.seek
	c.seek = nil
	return s.request, s.reply, true
}

func (c *Controls) QueueState() QueueState {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.queue
}

func (c *Controls) SetQueueState(s QueueState) {
	c.queueMu.Lock()
	c.queue = s
	c.queueMu.Unlock()
}

// SetPreload arms cs as the source to splice in once the current child
// exhausts, overwriting whatever was armed before (e.g. after shuffle or a
// track-list edit changes what "next" means).
func (c *Controls) SetPreload(cs *ControlledSource) {
	c.preloadMu.Lock()
	c.preload = cs
	c.preloadMu.Unlock()
}

// TakePreload consumes the preloaded source, if any.
func (c *Controls) TakePreload() *ControlledSource {
	c.preloadMu.Lock()
	defer c.preloadMu.Unlock()
	cs := c.preload
	c.preload = nil
	return cs
}

// PeekPreload reports the currently armed preload without consuming it.
func (c *Controls) PeekPreload() *ControlledSource {
	c.preloadMu.Lock()
	defer c.preloadMu.Unlock()
	return c.preload
}
